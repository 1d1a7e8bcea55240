package roster

import (
	"context"
	"testing"

	"github.com/novafit/gymdesk-backend/internal/data/repos/testutil"
)

func TestFirstByNameCaseInsensitiveContainment(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	repo := NewAthleteRepo(tx, testutil.Logger(t))

	trainer := testutil.SeedTrainer(t, ctx, tx, "ar1@studio.test")
	want := testutil.SeedAthlete(t, ctx, tx, &trainer.ID, "Gabriela", "gabriela@example.test")

	got, err := repo.FirstByName(ctx, tx, &trainer.ID, "GABRI")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.ID != want.ID {
		t.Fatalf("expected Gabriela, got %+v", got)
	}
}

func TestFirstByNameScopedToTrainer(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	repo := NewAthleteRepo(tx, testutil.Logger(t))

	mine := testutil.SeedTrainer(t, ctx, tx, "ar2@studio.test")
	other := testutil.SeedTrainer(t, ctx, tx, "ar3@studio.test")
	testutil.SeedAthlete(t, ctx, tx, &other.ID, "Felix", "felix@example.test")

	got, err := repo.FirstByName(ctx, tx, &mine.ID, "felix")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("another trainer's athlete leaked: %+v", got)
	}

	// Unscoped lookup still finds the athlete.
	got, err = repo.FirstByName(ctx, tx, nil, "felix")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("unscoped lookup missed the athlete")
	}
}

func TestFirstByNameEmptyInput(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	repo := NewAthleteRepo(tx, testutil.Logger(t))

	got, err := repo.FirstByName(ctx, tx, nil, "   ")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("blank name matched %+v", got)
	}
}

func TestEmailExistsAndCountByTrainer(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	repo := NewAthleteRepo(tx, testutil.Logger(t))

	trainer := testutil.SeedTrainer(t, ctx, tx, "ar4@studio.test")
	testutil.SeedAthlete(t, ctx, tx, &trainer.ID, "Noa", "noa@example.test")
	testutil.SeedAthlete(t, ctx, tx, &trainer.ID, "Iris", "iris@example.test")
	testutil.SeedAthlete(t, ctx, tx, nil, "Solo", "solo@example.test")

	exists, err := repo.EmailExists(ctx, tx, "noa@example.test")
	if err != nil {
		t.Fatal(err)
	}
	if !exists {
		t.Error("existing email not found")
	}
	exists, err = repo.EmailExists(ctx, tx, "nobody@example.test")
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Error("missing email reported as existing")
	}

	count, err := repo.CountByTrainer(ctx, tx, trainer.ID)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("count: got %d want 2", count)
	}
}

func TestDeleteIsSoft(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	repo := NewAthleteRepo(tx, testutil.Logger(t))

	trainer := testutil.SeedTrainer(t, ctx, tx, "ar5@studio.test")
	athlete := testutil.SeedAthlete(t, ctx, tx, &trainer.ID, "Gone", "gone@example.test")

	if err := repo.Delete(ctx, tx, athlete.ID); err != nil {
		t.Fatal(err)
	}

	got, err := repo.FirstByName(ctx, tx, &trainer.ID, "gone")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Error("soft-deleted athlete still visible")
	}

	var count int64
	if err := tx.Unscoped().Table("athlete").Where("id = ?", athlete.ID).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Error("row physically removed instead of soft-deleted")
	}
}
