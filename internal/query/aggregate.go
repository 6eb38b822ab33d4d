package query

import "strconv"

// CountBy counts records per value of field. Records without the field are counted
// under the empty key.
func CountBy[T Record](items []T, field string) map[string]int {
	out := make(map[string]int)
	for _, item := range items {
		v, _ := item.Field(field)
		out[v]++
	}
	return out
}

// SumBy totals the numeric valueField per value of groupField. Non-numeric or
// missing values contribute nothing.
func SumBy[T Record](items []T, valueField, groupField string) map[string]float64 {
	out := make(map[string]float64)
	for _, item := range items {
		group, _ := item.Field(groupField)
		raw, ok := item.Field(valueField)
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		out[group] += v
	}
	return out
}
