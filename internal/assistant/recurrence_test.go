package assistant

import (
	"testing"
	"time"

	types "github.com/novafit/gymdesk-backend/internal/domain"
)

func TestNextOccurrencesWeeklyInclusiveEnd(t *testing.T) {
	start := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 23, 23, 59, 59, 0, time.UTC)

	got := NextOccurrences(start, types.RecurrenceWeekly, end)
	if len(got) != 3 {
		t.Fatalf("expected 3 occurrences, got %d: %v", len(got), got)
	}

	want := []time.Time{
		time.Date(2024, 1, 9, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 16, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 23, 9, 0, 0, 0, time.UTC),
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("occurrence %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestNextOccurrencesDaily(t *testing.T) {
	start := time.Date(2024, 3, 1, 7, 30, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 5)

	got := NextOccurrences(start, types.RecurrenceDaily, end)
	if len(got) != 5 {
		t.Fatalf("expected 5 occurrences, got %d", len(got))
	}
	if !got[0].Equal(start.AddDate(0, 0, 1)) {
		t.Errorf("first occurrence: got %v", got[0])
	}
}

func TestNextOccurrencesMonthlyKeepsDayOfMonth(t *testing.T) {
	start := time.Date(2024, 1, 15, 18, 0, 0, 0, time.UTC)
	end := time.Date(2024, 4, 15, 18, 0, 0, 0, time.UTC)

	got := NextOccurrences(start, types.RecurrenceMonthly, end)
	if len(got) != 3 {
		t.Fatalf("expected 3 occurrences, got %d", len(got))
	}
	for i, occ := range got {
		if occ.Day() != 15 {
			t.Errorf("occurrence %d landed on day %d", i, occ.Day())
		}
	}
}

func TestNextOccurrencesUnknownPattern(t *testing.T) {
	start := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	if got := NextOccurrences(start, "YEARLY", end); len(got) != 0 {
		t.Fatalf("unknown pattern should generate nothing, got %d", len(got))
	}
}
