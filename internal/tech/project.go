package tech

import "strings"

// FilterAll disables status narrowing in Project.
const FilterAll = "all"

// Project derives the display view of a collection: case-insensitive
// substring search across title, description and notes, then exact status
// narrowing unless the filter is "all". Pure: the source slice is never
// mutated and relative order is preserved.
func Project(records []Technology, statusFilter string, search string) []Technology {
	out := make([]Technology, 0, len(records))

	needle := strings.ToLower(strings.TrimSpace(search))
	for _, t := range records {
		if needle != "" && !matches(t, needle) {
			continue
		}
		if statusFilter != "" && statusFilter != FilterAll && string(t.Status) != statusFilter {
			continue
		}
		out = append(out, t)
	}
	return out
}

func matches(t Technology, needle string) bool {
	return strings.Contains(strings.ToLower(t.Title), needle) ||
		strings.Contains(strings.ToLower(t.Description), needle) ||
		strings.Contains(strings.ToLower(t.Notes), needle)
}

// Stats summarizes a collection by status.
type Stats struct {
	Total      int `json:"total"`
	NotStarted int `json:"notStarted"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
}

// Progress returns the completion percentage, rounded to the nearest
// whole percent. An empty collection is 0%.
func (s Stats) Progress() int {
	if s.Total == 0 {
		return 0
	}
	return int(float64(s.Completed)/float64(s.Total)*100 + 0.5)
}

// Summarize counts records per status.
func Summarize(records []Technology) Stats {
	var s Stats
	s.Total = len(records)
	for _, t := range records {
		switch t.Status {
		case StatusNotStarted:
			s.NotStarted++
		case StatusInProgress:
			s.InProgress++
		case StatusCompleted:
			s.Completed++
		}
	}
	return s
}

// SummarizeOwned is Summarize restricted to user-owned records, excluding
// roadmap-seeded ones. The statistics page reports on these.
func SummarizeOwned(records []Technology) Stats {
	owned := make([]Technology, 0, len(records))
	for _, t := range records {
		if !t.IsFromAPI {
			owned = append(owned, t)
		}
	}
	return Summarize(owned)
}
