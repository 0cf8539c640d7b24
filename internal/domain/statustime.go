package domain

import (
	"sort"
	"time"
)

// StatusChange is a single status transition extracted from an issue's
// change history
type StatusChange struct {
	At   time.Time
	From string
	To   string
}

// ChangeItem is one field mutation inside a change history entry
type ChangeItem struct {
	Field      string
	FromString string
	ToString   string
}

// ChangeHistory is one entry of an issue's change history as the tracker
// reports it, timestamp still unparsed
type ChangeHistory struct {
	Created string
	Items   []ChangeItem
}

// Trackers are inconsistent about changelog timestamp formats, so parsing
// tries each known layout in order.
var changelogLayouts = []string{
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05.000Z0700",
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
}

// StatusChangesFromHistory filters raw change histories down to status
// transitions, in chronological order. Entries whose timestamp cannot be
// parsed are skipped rather than failing the whole issue.
func StatusChangesFromHistory(histories []ChangeHistory) []StatusChange {
	changes := make([]StatusChange, 0, len(histories))
	for _, h := range histories {
		at, ok := ParseTrackerTime(h.Created)
		if !ok {
			continue
		}
		for _, item := range h.Items {
			if item.Field != "status" {
				continue
			}
			changes = append(changes, StatusChange{
				At:   at,
				From: item.FromString,
				To:   item.ToString,
			})
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].At.Before(changes[j].At) })
	return changes
}

// TimeInStatuses computes how long an issue spent in each status it passed
// through. The walk starts at createdAt in the first transition's source
// status, closes each interval at the next transition and closes the final
// interval against now. The returned map holds every status walked, not just
// the targets, so the entries always tile the issue's full lifetime; target
// statuses are guaranteed present, zero-valued when the issue never entered
// them. An issue with no transitions yields an all-zero map because its
// initial status is unknown.
func TimeInStatuses(createdAt time.Time, changes []StatusChange, targets []string, now time.Time) map[string]time.Duration {
	result := make(map[string]time.Duration, len(targets))
	for _, target := range targets {
		result[target] = 0
	}

	if len(changes) == 0 {
		return result
	}

	sorted := make([]StatusChange, len(changes))
	copy(sorted, changes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].At.Before(sorted[j].At) })

	current := sorted[0].From
	lastAt := createdAt
	for _, change := range sorted {
		result[current] += change.At.Sub(lastAt)
		current = change.To
		lastAt = change.At
	}
	result[current] += now.Sub(lastAt)

	return result
}

// ParseTrackerTime parses a tracker timestamp, trying each known layout
func ParseTrackerTime(value string) (time.Time, bool) {
	for _, layout := range changelogLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
