package rules

import (
	"sort"
	"strings"
)

// Render substitutes {placeholder} tokens in tmpl with vars. Unknown placeholders
// are left as-is.
func Render(tmpl string, vars map[string]string) string {
	if tmpl == "" || len(vars) == 0 || !strings.Contains(tmpl, "{") {
		return tmpl
	}
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", vars[k])
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
