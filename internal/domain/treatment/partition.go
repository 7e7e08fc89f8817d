package treatment

import (
	"sort"
	"strings"
)

// Tab selects which partition of the board a view is looking at.
type Tab string

const (
	TabActive  Tab = "active"
	TabHistory Tab = "history"
)

// ParseTab maps a query-string value onto a Tab, defaulting to the active
// partition for anything unrecognized.
func ParseTab(s string) Tab {
	if Tab(s) == TabHistory {
		return TabHistory
	}
	return TabActive
}

// Partition selects the records belonging to the given tab, applies a
// case-insensitive substring filter across name, drug and location, and
// orders the result: active records oldest start first, history records
// most recently finished first (records without an end date sort last).
// The search term is matched verbatim apart from case folding; surrounding
// whitespace is part of the term.
//
// The input slice is never mutated; the result is a fresh slice and an empty
// result is a valid outcome, not an error.
func Partition(records []*PatientRecord, tab Tab, search string) []*PatientRecord {
	term := strings.ToLower(search)

	out := make([]*PatientRecord, 0, len(records))
	for _, rec := range records {
		if tab == TabHistory {
			if rec.Status != StatusHistory {
				continue
			}
		} else if !rec.IsActive() {
			continue
		}
		if term != "" && !matchesSearch(rec, term) {
			continue
		}
		out = append(out, rec)
	}

	if tab == TabHistory {
		// ISO dates compare lexicographically in chronological order.
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].EndDate > out[j].EndDate
		})
	} else {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Start < out[j].Start
		})
	}

	return out
}

func matchesSearch(rec *PatientRecord, term string) bool {
	return strings.Contains(strings.ToLower(rec.Name), term) ||
		strings.Contains(strings.ToLower(rec.Drug), term) ||
		strings.Contains(strings.ToLower(rec.Location), term)
}
