package services

import (
	"context"
	"testing"
	"time"

	"github.com/novafit/gymdesk-backend/internal/data/repos/roster"
	"github.com/novafit/gymdesk-backend/internal/data/repos/scheduling"
	"github.com/novafit/gymdesk-backend/internal/data/repos/testutil"
	apperrors "github.com/novafit/gymdesk-backend/internal/pkg/errors"
	"gorm.io/gorm"

	"errors"
)

func newTestCheckInService(t *testing.T, tx *gorm.DB, now time.Time) CheckInService {
	t.Helper()
	log := testutil.Logger(t)
	svc := NewCheckInService(
		tx, log,
		scheduling.NewCheckInRepo(tx, log),
		scheduling.NewSessionRepo(tx, log),
		roster.NewAthleteRepo(tx, log),
		time.UTC,
	)
	svc.(*checkInService).now = func() time.Time { return now }
	return svc
}

func TestCheckInLinksSameDaySession(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	now := time.Date(2024, 4, 10, 8, 0, 0, 0, time.UTC)

	trainer := testutil.SeedTrainer(t, ctx, tx, "ci1@studio.test")
	athlete := testutil.SeedAthlete(t, ctx, tx, &trainer.ID, "Lena", "lena@example.test")
	session := testutil.SeedSession(t, ctx, tx, trainer.ID, athlete.ID, now.Add(2*time.Hour))

	svc := newTestCheckInService(t, tx, now)
	result, err := svc.CheckIn(ctx, CheckInInput{Email: "Lena@Example.Test"})
	if err != nil {
		t.Fatal(err)
	}
	if result.Session == nil || result.Session.ID != session.ID {
		t.Fatal("check-in not linked to the same-day session")
	}
	if result.CheckIn.SessionID == nil || *result.CheckIn.SessionID != session.ID {
		t.Error("check-in row missing the session reference")
	}
}

func TestCheckInWithoutSessionStillRecords(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	now := time.Date(2024, 4, 11, 8, 0, 0, 0, time.UTC)

	trainer := testutil.SeedTrainer(t, ctx, tx, "ci2@studio.test")
	testutil.SeedAthlete(t, ctx, tx, &trainer.ID, "Ben", "ben@example.test")

	svc := newTestCheckInService(t, tx, now)
	result, err := svc.CheckIn(ctx, CheckInInput{Email: "ben@example.test"})
	if err != nil {
		t.Fatal(err)
	}
	if result.Session != nil {
		t.Error("no session should have matched")
	}
	if result.CheckIn == nil || result.CheckIn.SessionID != nil {
		t.Error("check-in should be recorded unlinked")
	}
}

func TestCheckInUnknownEmail(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))

	svc := newTestCheckInService(t, tx, time.Now().UTC())
	_, err := svc.CheckIn(ctx, CheckInInput{Email: "stranger@example.test"})
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCheckInIgnoresCancelledSessions(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	now := time.Date(2024, 4, 12, 8, 0, 0, 0, time.UTC)

	trainer := testutil.SeedTrainer(t, ctx, tx, "ci3@studio.test")
	athlete := testutil.SeedAthlete(t, ctx, tx, &trainer.ID, "Mia", "mia@example.test")
	session := testutil.SeedSession(t, ctx, tx, trainer.ID, athlete.ID, now.Add(time.Hour))
	log := testutil.Logger(t)
	if err := scheduling.NewSessionRepo(tx, log).MarkCancelled(ctx, tx, session.ID); err != nil {
		t.Fatal(err)
	}

	svc := newTestCheckInService(t, tx, now)
	result, err := svc.CheckIn(ctx, CheckInInput{Email: "mia@example.test"})
	if err != nil {
		t.Fatal(err)
	}
	if result.Session != nil {
		t.Error("cancelled session must not match a check-in")
	}
}
