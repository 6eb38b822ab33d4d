// Package query filters, searches, sorts and aggregates list views. The same engine
// serves every entity collection and the alert list.
package query

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Record is anything that exposes its attributes as text by name.
type Record interface {
	Field(name string) (string, bool)
}

// Any is the filter value meaning "no constraint", as sent by list-view dropdowns.
const Any = "all"

// Order is a sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Sort orders results by one field.
type Sort struct {
	Field string
	Order Order
}

// Request describes one list-view query.
type Request struct {
	// Filters maps field name to the exact value it must equal. Empty and "all"
	// values impose no constraint. Filters are AND-combined.
	Filters map[string]string

	// SearchFields are the fields SearchText is matched against, case-insensitively
	// by substring. A record matches when any field contains the text.
	SearchFields []string
	SearchText   string

	// Sort is optional; without it the input order is kept.
	Sort *Sort
}

// Run returns the records of items that satisfy req, in req's order. The input
// slice is not modified.
func Run[T Record](items []T, req Request) []T {
	filters := activeFilters(req.Filters)
	needle := strings.ToLower(strings.TrimSpace(req.SearchText))

	out := make([]T, 0, len(items))
	for _, item := range items {
		if !matchesFilters(item, filters) {
			continue
		}
		if needle != "" && !matchesSearch(item, req.SearchFields, needle) {
			continue
		}
		out = append(out, item)
	}

	if req.Sort != nil && req.Sort.Field != "" {
		sortRecords(out, *req.Sort)
	}
	return out
}

func activeFilters(filters map[string]string) map[string]string {
	if len(filters) == 0 {
		return nil
	}
	active := make(map[string]string, len(filters))
	for field, value := range filters {
		if value == "" || value == Any {
			continue
		}
		active[field] = value
	}
	return active
}

func matchesFilters(r Record, filters map[string]string) bool {
	for field, want := range filters {
		got, ok := r.Field(field)
		if !ok || got != want {
			return false
		}
	}
	return true
}

func matchesSearch(r Record, fields []string, needle string) bool {
	for _, field := range fields {
		v, ok := r.Field(field)
		if ok && strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

// sortRecords sorts stably by one field. Numbers order numerically and come
// before any non-numeric text, which orders as strings; descending reverses both.
// Records missing the field always sort last.
func sortRecords[T Record](items []T, s Sort) {
	desc := s.Order == Desc
	sort.SliceStable(items, func(i, j int) bool {
		a, aok := items[i].Field(s.Field)
		b, bok := items[j].Field(s.Field)
		if !aok || !bok {
			return aok && !bok
		}
		c := compareValues(a, b)
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compareValues(a, b string) int {
	af, aNum := parseNumber(a)
	bf, bNum := parseNumber(b)
	switch {
	case aNum && bNum:
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	case aNum:
		return -1
	case bNum:
		return 1
	}
	return strings.Compare(a, b)
}

// parseNumber treats NaN as text so the numeric order stays total.
func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// ParseOrder maps user input to an Order, defaulting to ascending.
func ParseOrder(s string) Order {
	if strings.EqualFold(s, string(Desc)) {
		return Desc
	}
	return Asc
}
