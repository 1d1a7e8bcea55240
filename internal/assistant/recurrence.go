package assistant

import (
	"time"

	types "github.com/novafit/gymdesk-backend/internal/domain"
)

// DefaultRecurrenceHorizon bounds recurrence generation when the model did
// not supply an explicit end date.
const DefaultRecurrenceHorizon = 90 * 24 * time.Hour

// NextOccurrences returns the occurrence times strictly after start and not
// after end, advancing by the recurrence step: daily +1 day, weekly +7 days,
// biweekly +14 days, monthly +1 calendar month. The parent occurrence at
// start is not included.
func NextOccurrences(start time.Time, pattern string, end time.Time) []time.Time {
	var out []time.Time
	cur := advanceOccurrence(start, pattern)
	for !cur.After(end) {
		out = append(out, cur)
		cur = advanceOccurrence(cur, pattern)
	}
	return out
}

func advanceOccurrence(t time.Time, pattern string) time.Time {
	switch pattern {
	case types.RecurrenceDaily:
		return t.AddDate(0, 0, 1)
	case types.RecurrenceWeekly:
		return t.AddDate(0, 0, 7)
	case types.RecurrenceBiweekly:
		return t.AddDate(0, 0, 14)
	case types.RecurrenceMonthly:
		return t.AddDate(0, 1, 0)
	default:
		// Unrecognized patterns generate nothing; the schema should have
		// rejected them already. Jump past any plausible end date.
		return t.AddDate(100, 0, 0)
	}
}
