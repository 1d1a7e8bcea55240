package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/novafit/gymdesk-backend/internal/data/repos/testutil"
)

func TestFirstCancellableMatchesByName(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	repo := NewSessionRepo(tx, testutil.Logger(t))

	trainer := testutil.SeedTrainer(t, ctx, tx, "sr1@studio.test")
	athlete := testutil.SeedAthlete(t, ctx, tx, &trainer.ID, "Marcus", "marcus@example.test")
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	early := testutil.SeedSession(t, ctx, tx, trainer.ID, athlete.ID, day.Add(9*time.Hour))
	testutil.SeedSession(t, ctx, tx, trainer.ID, athlete.ID, day.Add(15*time.Hour))

	got, err := repo.FirstCancellable(ctx, tx, trainer.ID, nil, "marc", day, day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("expected a match")
	}
	if got.ID != early.ID {
		t.Errorf("expected the earliest session, got %v", got.ScheduledAt)
	}
}

func TestFirstCancellableSkipsCancelledAndOtherTrainers(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	repo := NewSessionRepo(tx, testutil.Logger(t))

	trainer := testutil.SeedTrainer(t, ctx, tx, "sr2@studio.test")
	other := testutil.SeedTrainer(t, ctx, tx, "sr3@studio.test")
	athlete := testutil.SeedAthlete(t, ctx, tx, &trainer.ID, "Ines", "ines@example.test")
	day := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)

	cancelled := testutil.SeedSession(t, ctx, tx, trainer.ID, athlete.ID, day.Add(9*time.Hour))
	if err := repo.MarkCancelled(ctx, tx, cancelled.ID); err != nil {
		t.Fatal(err)
	}
	testutil.SeedSession(t, ctx, tx, other.ID, athlete.ID, day.Add(11*time.Hour))

	got, err := repo.FirstCancellable(ctx, tx, trainer.ID, nil, "ines", day, day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("expected no cancellable session, got %v", got.ID)
	}
}

func TestMarkCompletedRefusesCancelledSession(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	repo := NewSessionRepo(tx, testutil.Logger(t))

	trainer := testutil.SeedTrainer(t, ctx, tx, "sr4@studio.test")
	athlete := testutil.SeedAthlete(t, ctx, tx, &trainer.ID, "Rui", "rui@example.test")
	session := testutil.SeedSession(t, ctx, tx, trainer.ID, athlete.ID,
		time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC))

	if err := repo.MarkCancelled(ctx, tx, session.ID); err != nil {
		t.Fatal(err)
	}
	if err := repo.MarkCompleted(ctx, tx, session.ID); err != nil {
		t.Fatal(err)
	}

	sessions, err := repo.GetByIDs(ctx, tx, []uuid.UUID{session.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 {
		t.Fatal("session vanished")
	}
	if sessions[0].Completed {
		t.Error("cancelled session was marked completed")
	}
}

func TestListByTrainerStatusFilters(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	repo := NewSessionRepo(tx, testutil.Logger(t))

	trainer := testutil.SeedTrainer(t, ctx, tx, "sr5@studio.test")
	athlete := testutil.SeedAthlete(t, ctx, tx, &trainer.ID, "Hana", "hana@example.test")
	past := time.Now().UTC().Add(-48 * time.Hour)
	future := time.Now().UTC().Add(48 * time.Hour)

	done := testutil.SeedSession(t, ctx, tx, trainer.ID, athlete.ID, past)
	if err := repo.MarkCompleted(ctx, tx, done.ID); err != nil {
		t.Fatal(err)
	}
	upcoming := testutil.SeedSession(t, ctx, tx, trainer.ID, athlete.ID, future)

	completed, err := repo.ListByTrainer(ctx, tx, trainer.ID, SessionFilter{Status: "completed"}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(completed) != 1 || completed[0].ID != done.ID {
		t.Errorf("completed filter: got %d rows", len(completed))
	}

	open, err := repo.ListByTrainer(ctx, tx, trainer.ID, SessionFilter{Status: "upcoming"}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(open) != 1 || open[0].ID != upcoming.ID {
		t.Errorf("upcoming filter: got %d rows", len(open))
	}

	count, err := repo.CountByTrainer(ctx, tx, trainer.ID, SessionFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("total count: got %d", count)
	}
}
