package story

import (
	"slices"
	"strings"
)

// Filter keeps stories whose title contains term, ignoring case. An empty
// term keeps everything, including untitled stories.
func Filter(stories []Story, term string) []Story {
	if term == "" {
		return stories
	}
	needle := strings.ToLower(term)
	filtered := make([]Story, 0, len(stories))
	for _, s := range stories {
		if s.Title != "" && strings.Contains(strings.ToLower(s.Title), needle) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// Paginate returns a copy of the 1-based page of items.
//
// A page number below 1 is treated as 1. A page size of 0 or less gives an
// empty page, as does a page past the end.
func Paginate[T any](items []T, pageNumber, pageSize int) []T {
	if pageSize <= 0 || len(items) == 0 {
		return []T{}
	}

	skip := 0
	if pageNumber > 1 {
		// Checked before multiplying so huge page numbers cannot overflow.
		if pageNumber-1 > len(items)/pageSize {
			return []T{}
		}
		skip = (pageNumber - 1) * pageSize
	}
	if skip >= len(items) {
		return []T{}
	}

	end := len(items)
	if pageSize < end-skip {
		end = skip + pageSize
	}
	return slices.Clone(items[skip:end])
}
