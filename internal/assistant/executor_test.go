package assistant

import (
	"context"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/novafit/gymdesk-backend/internal/data/repos/roster"
	"github.com/novafit/gymdesk-backend/internal/data/repos/scheduling"
	"github.com/novafit/gymdesk-backend/internal/data/repos/testutil"
	types "github.com/novafit/gymdesk-backend/internal/domain"
)

func newTestExecutor(t *testing.T, tx *gorm.DB) *Executor {
	t.Helper()
	log := testutil.Logger(t)
	e := NewExecutor(
		roster.NewAthleteRepo(tx, log),
		scheduling.NewSessionRepo(tx, log),
		time.UTC,
		log,
	)

	// Deterministic clock: strictly increasing per call.
	base := time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)
	calls := 0
	e.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Millisecond)
	}
	return e
}

func TestExecuteCreateSessionForNewAthlete(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	trainer := testutil.SeedTrainer(t, ctx, tx, "t1@studio.test")
	e := newTestExecutor(t, tx)

	parsed := ParsedAction{
		Action: ActionCreateSession,
		Data: ActionData{Session: &SessionData{
			AthleteName:  "Mike Jones",
			IsNewAthlete: true,
			ScheduledAt:  "2024-01-03T15:00:00Z",
		}},
	}

	res := e.Execute(ctx, trainer.ID, parsed)
	if !res.Success {
		t.Fatalf("execute failed: %s (%s)", res.Message, res.Error)
	}

	// The athlete row is created before the session and linked to it.
	var athletes []types.Athlete
	if err := tx.Where("first_name = ?", "Mike").Find(&athletes).Error; err != nil {
		t.Fatal(err)
	}
	if len(athletes) != 1 {
		t.Fatalf("expected 1 athlete, got %d", len(athletes))
	}
	if athletes[0].TrainerID == nil || *athletes[0].TrainerID != trainer.ID {
		t.Error("athlete not assigned to the trainer")
	}
	if !strings.Contains(athletes[0].Email, "@placeholder.gymdesk.local") {
		t.Errorf("expected placeholder email, got %q", athletes[0].Email)
	}

	var sessions []types.Session
	if err := tx.Where("athlete_id = ?", athletes[0].ID).Find(&sessions).Error; err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	if sessions[0].DurationMinutes != 60 {
		t.Errorf("default duration: got %d", sessions[0].DurationMinutes)
	}
}

func TestExecuteCreateAthleteTwicePlaceholderEmailsDiffer(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	trainer := testutil.SeedTrainer(t, ctx, tx, "t2@studio.test")
	e := newTestExecutor(t, tx)

	parsed := ParsedAction{
		Action: ActionCreateAthlete,
		Data:   ActionData{Athlete: &AthleteData{FirstName: "Alex", LastName: "Kim"}},
	}

	first := e.Execute(ctx, trainer.ID, parsed)
	second := e.Execute(ctx, trainer.ID, parsed)
	if !first.Success || !second.Success {
		t.Fatalf("creates failed: %s / %s", first.Message, second.Message)
	}

	var athletes []types.Athlete
	if err := tx.Where("first_name = ?", "Alex").Find(&athletes).Error; err != nil {
		t.Fatal(err)
	}
	if len(athletes) != 2 {
		t.Fatalf("expected 2 athlete rows, got %d", len(athletes))
	}
	if athletes[0].Email == athletes[1].Email {
		t.Errorf("placeholder emails collided: %q", athletes[0].Email)
	}
}

func TestExecuteCancelSessionNoMatchLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	trainer := testutil.SeedTrainer(t, ctx, tx, "t3@studio.test")
	athlete := testutil.SeedAthlete(t, ctx, tx, &trainer.ID, "Dana", "dana@example.test")
	session := testutil.SeedSession(t, ctx, tx, trainer.ID, athlete.ID,
		time.Date(2024, 1, 10, 16, 0, 0, 0, time.UTC))
	e := newTestExecutor(t, tx)

	// Wrong day: nothing cancellable on the 5th.
	parsed := ParsedAction{
		Action: ActionCancelSession,
		Data: ActionData{Session: &SessionData{
			AthleteName: "Dana",
			ScheduledAt: "2024-01-05T16:00:00Z",
		}},
	}

	res := e.Execute(ctx, trainer.ID, parsed)
	if res.Success {
		t.Fatal("expected a not-found failure")
	}
	if !strings.Contains(res.Message, "find a matching session") {
		t.Errorf("unexpected message: %q", res.Message)
	}

	var reloaded types.Session
	if err := tx.First(&reloaded, "id = ?", session.ID).Error; err != nil {
		t.Fatal(err)
	}
	if reloaded.Cancelled {
		t.Error("session was cancelled despite the miss")
	}
}

func TestExecuteCancelSessionByNameOnMatchingDay(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	trainer := testutil.SeedTrainer(t, ctx, tx, "t4@studio.test")
	athlete := testutil.SeedAthlete(t, ctx, tx, &trainer.ID, "Priya", "priya@example.test")
	session := testutil.SeedSession(t, ctx, tx, trainer.ID, athlete.ID,
		time.Date(2024, 1, 10, 16, 0, 0, 0, time.UTC))
	e := newTestExecutor(t, tx)

	parsed := ParsedAction{
		Action: ActionCancelSession,
		Data: ActionData{Session: &SessionData{
			AthleteName: "Priya",
			ScheduledAt: "2024-01-10T09:00:00Z",
		}},
	}

	res := e.Execute(ctx, trainer.ID, parsed)
	if !res.Success {
		t.Fatalf("cancel failed: %s (%s)", res.Message, res.Error)
	}

	var reloaded types.Session
	if err := tx.First(&reloaded, "id = ?", session.ID).Error; err != nil {
		t.Fatal(err)
	}
	if !reloaded.Cancelled {
		t.Error("session not cancelled")
	}
}

func TestExecuteCreateRecurringSessionDateOnlyEndIsInclusive(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	trainer := testutil.SeedTrainer(t, ctx, tx, "t5@studio.test")
	athlete := testutil.SeedAthlete(t, ctx, tx, &trainer.ID, "Leo", "leo@example.test")
	e := newTestExecutor(t, tx)

	parsed := ParsedAction{
		Action: ActionCreateRecurringSession,
		Data: ActionData{Session: &SessionData{
			AthleteID:         athlete.ID.String(),
			ScheduledAt:       "2024-01-02T09:00:00Z",
			RecurrencePattern: types.RecurrenceWeekly,
			RecurrenceEndDate: "2024-01-23",
		}},
	}

	res := e.Execute(ctx, trainer.ID, parsed)
	if !res.Success {
		t.Fatalf("execute failed: %s (%s)", res.Message, res.Error)
	}

	var sessions []types.Session
	if err := tx.Where("athlete_id = ?", athlete.ID).Order("scheduled_at ASC").Find(&sessions).Error; err != nil {
		t.Fatal(err)
	}
	// Parent on Jan 2 plus children on Jan 9, 16 and 23.
	if len(sessions) != 4 {
		t.Fatalf("expected 4 sessions, got %d", len(sessions))
	}
	if !sessions[0].IsRecurring || sessions[0].ParentSessionID != nil {
		t.Error("first row should be the recurring parent")
	}
	for i, s := range sessions[1:] {
		if s.ParentSessionID == nil || *s.ParentSessionID != sessions[0].ID {
			t.Errorf("child %d not linked to parent", i)
		}
	}
	last := sessions[len(sessions)-1].ScheduledAt.UTC()
	if last.Day() != 23 {
		t.Errorf("last occurrence on day %d, want 23", last.Day())
	}
}

func TestExecuteCreateRecurringSessionDefaultHorizonAnchorsAtNow(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	trainer := testutil.SeedTrainer(t, ctx, tx, "t8@studio.test")
	athlete := testutil.SeedAthlete(t, ctx, tx, &trainer.ID, "Vera", "vera@example.test")
	e := newTestExecutor(t, tx)

	// First occurrence 30 days out, no explicit end: generation stops 90
	// days after now, not 90 days after the first occurrence.
	parsed := ParsedAction{
		Action: ActionCreateRecurringSession,
		Data: ActionData{Session: &SessionData{
			AthleteID:         athlete.ID.String(),
			ScheduledAt:       "2024-02-01T09:00:00Z",
			RecurrencePattern: types.RecurrenceWeekly,
		}},
	}

	res := e.Execute(ctx, trainer.ID, parsed)
	if !res.Success {
		t.Fatalf("execute failed: %s (%s)", res.Message, res.Error)
	}

	var sessions []types.Session
	if err := tx.Where("athlete_id = ?", athlete.ID).Order("scheduled_at ASC").Find(&sessions).Error; err != nil {
		t.Fatal(err)
	}
	// Parent on Feb 1 plus weekly children through Mar 28; Apr 4 falls
	// past the Apr 1 horizon.
	if len(sessions) != 9 {
		t.Fatalf("expected 9 sessions, got %d", len(sessions))
	}
	horizon := time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC).Add(DefaultRecurrenceHorizon).Add(time.Minute)
	last := sessions[len(sessions)-1].ScheduledAt.UTC()
	if last.After(horizon) {
		t.Errorf("last occurrence %v past the 90-day horizon %v", last, horizon)
	}
}

func TestExecuteUnknownActionUsesClarification(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	trainer := testutil.SeedTrainer(t, ctx, tx, "t6@studio.test")
	e := newTestExecutor(t, tx)

	question := "Which athlete did you mean?"
	res := e.Execute(ctx, trainer.ID, ParsedAction{
		Action:              ActionUnknown,
		ClarificationNeeded: &question,
	})
	if res.Success {
		t.Fatal("UNKNOWN must not succeed")
	}
	if res.Message != question {
		t.Errorf("message: got %q want %q", res.Message, question)
	}

	var count int64
	if err := tx.Model(&types.Athlete{}).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("UNKNOWN wrote %d athlete rows", count)
	}
}

func TestExecuteQueryCountsAthletes(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	trainer := testutil.SeedTrainer(t, ctx, tx, "t7@studio.test")
	testutil.SeedAthlete(t, ctx, tx, &trainer.ID, "Ana", "ana@example.test")
	testutil.SeedAthlete(t, ctx, tx, &trainer.ID, "Bo", "bo@example.test")
	other := testutil.SeedTrainer(t, ctx, tx, "t8@studio.test")
	testutil.SeedAthlete(t, ctx, tx, &other.ID, "Cy", "cy@example.test")
	e := newTestExecutor(t, tx)

	res := e.Execute(ctx, trainer.ID, ParsedAction{
		Action: ActionQuery,
		Data:   ActionData{Query: &QueryData{Type: QueryAthletesCount}},
	})
	if !res.Success {
		t.Fatalf("query failed: %s", res.Message)
	}
	if count, ok := res.Data.(int64); !ok || count != 2 {
		t.Errorf("count: got %v", res.Data)
	}
}
