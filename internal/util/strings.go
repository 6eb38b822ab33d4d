// Package util holds small list helpers shared by the binaries.
package util

import "strings"

// Unique drops repeated values, keeping the first occurrence of each.
// Empty input yields nil.
func Unique[T comparable](items []T) []T {
	var out []T
	seen := make(map[T]bool, len(items))
	for _, v := range items {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// SplitCSV splits a comma-separated flag value into trimmed, non-empty items.
func SplitCSV(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
