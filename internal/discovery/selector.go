package discovery

import (
	"fmt"
	"sort"
	"strings"
)

// SortKey orders the visible set. SortNone keeps catalog order so unrelated
// filter changes never shuffle the list or the camera.
type SortKey string

const (
	SortNone      SortKey = "none"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortRating    SortKey = "rating"
	SortName      SortKey = "name"
)

var SortKeys = []SortKey{SortNone, SortPriceAsc, SortPriceDesc, SortRating, SortName}

func ParseSortKey(raw string) (SortKey, error) {
	key := SortKey(strings.ToLower(strings.TrimSpace(raw)))
	if key == "" {
		return SortNone, nil
	}
	for _, k := range SortKeys {
		if k == key {
			return k, nil
		}
	}
	return SortNone, fmt.Errorf("unknown sort key %q", raw)
}

// Matches reports whether studio passes every active facet and the location
// query. InstantBook and the query date are accepted but do not filter until
// an availability source exists.
func Matches(s *Studio, f FilterState, q QueryParams) bool {
	if s == nil {
		return false
	}
	if !f.PriceRange.Contains(s.PricePerHour) {
		return false
	}
	if len(f.Equipment) > 0 && !anyEquipment(s, f.Equipment) {
		return false
	}
	if f.Capacity != nil && s.MaxCapacity < *f.Capacity {
		return false
	}
	if loc := strings.TrimSpace(q.Location); loc != "" &&
		!strings.Contains(strings.ToLower(s.Location), strings.ToLower(loc)) {
		return false
	}
	return true
}

func anyEquipment(s *Studio, tags []string) bool {
	for _, tag := range tags {
		if s.HasEquipment(tag) {
			return true
		}
	}
	return false
}

// Select returns the studios that match, in input order.
func Select(all []*Studio, f FilterState, q QueryParams) []*Studio {
	out := make([]*Studio, 0, len(all))
	for _, s := range all {
		if Matches(s, f, q) {
			out = append(out, s)
		}
	}
	return out
}

// SelectSorted is Select followed by a stable sort on key.
func SelectSorted(all []*Studio, f FilterState, q QueryParams, key SortKey) []*Studio {
	out := Select(all, f, q)
	less := sortLess(key)
	if less == nil {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func sortLess(key SortKey) func(a, b *Studio) bool {
	switch key {
	case SortPriceAsc:
		return func(a, b *Studio) bool { return a.PricePerHour < b.PricePerHour }
	case SortPriceDesc:
		return func(a, b *Studio) bool { return a.PricePerHour > b.PricePerHour }
	case SortRating:
		return func(a, b *Studio) bool {
			if a.Rating != b.Rating {
				return a.Rating > b.Rating
			}
			return a.ReviewCount > b.ReviewCount
		}
	case SortName:
		return func(a, b *Studio) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	default:
		return nil
	}
}
