package domain

import (
	"testing"
	"time"
)

var statusTargets = []string{"Ready to test", "In Test"}

func TestTimeInStatuses_SingleTransition(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	changes := []StatusChange{
		{At: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), From: "Ready to test", To: "In Test"},
	}

	result := TimeInStatuses(created, changes, statusTargets, now)

	if ms := result["Ready to test"].Milliseconds(); ms != 86400000 {
		t.Errorf("Expected 86400000ms in Ready to test, got %d", ms)
	}
	if ms := result["In Test"].Milliseconds(); ms != 86400000 {
		t.Errorf("Expected 86400000ms in In Test, got %d", ms)
	}
}

func TestTimeInStatuses_EmptyChanges(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	result := TimeInStatuses(created, nil, statusTargets, now)

	if len(result) != len(statusTargets) {
		t.Fatalf("Expected %d entries, got %d", len(statusTargets), len(result))
	}
	for _, target := range statusTargets {
		d, ok := result[target]
		if !ok {
			t.Errorf("Expected key %q to be present", target)
		}
		if d != 0 {
			t.Errorf("Expected zero duration for %q, got %v", target, d)
		}
	}
}

func TestTimeInStatuses_TilingInvariant(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	now := time.Date(2024, 3, 10, 17, 30, 0, 0, time.UTC)
	changes := []StatusChange{
		{At: time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC), From: "Backlog", To: "In Development"},
		{At: time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC), From: "In Development", To: "Ready to test"},
		{At: time.Date(2024, 3, 7, 8, 15, 0, 0, time.UTC), From: "Ready to test", To: "In Test"},
		{At: time.Date(2024, 3, 9, 18, 0, 0, 0, time.UTC), From: "In Test", To: "Done"},
	}

	result := TimeInStatuses(created, changes, statusTargets, now)

	var total time.Duration
	for _, d := range result {
		total += d
	}
	if expected := now.Sub(created); total != expected {
		t.Errorf("Intervals do not tile the issue lifetime: sum %v, expected %v", total, expected)
	}
}

func TestTimeInStatuses_UnsortedInput(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)
	// second transition listed first
	changes := []StatusChange{
		{At: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), From: "In Test", To: "Done"},
		{At: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), From: "Ready to test", To: "In Test"},
	}

	result := TimeInStatuses(created, changes, statusTargets, now)

	if h := result["Ready to test"].Hours(); h != 24 {
		t.Errorf("Expected 24h in Ready to test, got %v", h)
	}
	if h := result["In Test"].Hours(); h != 24 {
		t.Errorf("Expected 24h in In Test, got %v", h)
	}
}

func TestTimeInStatuses_NeverEnteredTarget(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	changes := []StatusChange{
		{At: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), From: "Backlog", To: "Ready to test"},
	}

	result := TimeInStatuses(created, changes, statusTargets, now)

	if d := result["In Test"]; d != 0 {
		t.Errorf("Expected zero duration for status never entered, got %v", d)
	}
	if h := result["Ready to test"].Hours(); h != 24 {
		t.Errorf("Expected 24h in Ready to test, got %v", h)
	}
}

func TestStatusChangesFromHistory(t *testing.T) {
	histories := []ChangeHistory{
		{
			Created: "2024-01-02T10:00:00.000-0300",
			Items: []ChangeItem{
				{Field: "assignee", FromString: "alice", ToString: "bob"},
				{Field: "status", FromString: "Backlog", ToString: "In Development"},
			},
		},
		{
			Created: "2024-01-05T09:30:00.000-0300",
			Items: []ChangeItem{
				{Field: "status", FromString: "In Development", ToString: "Ready to test"},
			},
		},
	}

	changes := StatusChangesFromHistory(histories)

	if len(changes) != 2 {
		t.Fatalf("Expected 2 status changes, got %d", len(changes))
	}
	if changes[0].From != "Backlog" || changes[0].To != "In Development" {
		t.Errorf("Unexpected first change: %+v", changes[0])
	}
	if changes[1].To != "Ready to test" {
		t.Errorf("Unexpected second change: %+v", changes[1])
	}
	if !changes[0].At.Before(changes[1].At) {
		t.Error("Expected changes in chronological order")
	}
}

func TestStatusChangesFromHistory_SkipsUnparsableTimestamps(t *testing.T) {
	histories := []ChangeHistory{
		{
			Created: "not a timestamp",
			Items:   []ChangeItem{{Field: "status", FromString: "A", ToString: "B"}},
		},
		{
			Created: "2024-01-05T09:30:00Z",
			Items:   []ChangeItem{{Field: "status", FromString: "B", ToString: "C"}},
		},
	}

	changes := StatusChangesFromHistory(histories)

	if len(changes) != 1 {
		t.Fatalf("Expected unparsable entry to be skipped, got %d changes", len(changes))
	}
	if changes[0].From != "B" || changes[0].To != "C" {
		t.Errorf("Unexpected change: %+v", changes[0])
	}
}

func TestStatusChangesFromHistory_LayoutFallbacks(t *testing.T) {
	timestamps := []string{
		"2024-01-02T10:00:00.000-0300",
		"2024-01-02T10:00:00.000Z",
		"2024-01-02T10:00:00Z",
		"2024-01-02T10:00:00-0300",
	}

	for _, ts := range timestamps {
		histories := []ChangeHistory{
			{Created: ts, Items: []ChangeItem{{Field: "status", FromString: "A", ToString: "B"}}},
		}
		if changes := StatusChangesFromHistory(histories); len(changes) != 1 {
			t.Errorf("Expected timestamp %q to parse", ts)
		}
	}
}
