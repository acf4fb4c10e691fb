// pattern: Functional Core

package project

import (
	"cmp"
	"slices"
	"strings"
)

// SortBy names a presentation order for the catalog.
type SortBy string

const (
	SortByHits       SortBy = "hits"
	SortByLastOpened SortBy = "last_opened"
	SortByName       SortBy = "name"
)

// ParseSortBy returns the sort key for s, falling back to SortByHits.
func ParseSortBy(s string) (SortBy, bool) {
	switch SortBy(s) {
	case SortByHits, SortByLastOpened, SortByName:
		return SortBy(s), true
	default:
		return SortByHits, false
	}
}

// Sort orders projects in place: pinned projects first, then by the given key.
// Ties fall back to path so the result is deterministic.
func Sort(projects []Project, by SortBy) {
	slices.SortStableFunc(projects, func(a, b Project) int {
		if a.Top != b.Top {
			if a.Top {
				return -1
			}
			return 1
		}
		var c int
		switch by {
		case SortByLastOpened:
			c = compareLastOpened(a, b)
		case SortByName:
			c = cmp.Compare(strings.ToLower(a.DisplayName()), strings.ToLower(b.DisplayName()))
		default:
			c = cmp.Compare(b.Hits, a.Hits)
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.Path, b.Path)
	})
}

// compareLastOpened puts the most recently opened first; never-opened projects sink.
func compareLastOpened(a, b Project) int {
	switch {
	case a.LastOpened == nil && b.LastOpened == nil:
		return 0
	case a.LastOpened == nil:
		return 1
	case b.LastOpened == nil:
		return -1
	}
	return b.LastOpened.Compare(*a.LastOpened)
}
