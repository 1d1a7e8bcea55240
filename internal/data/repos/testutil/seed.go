package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/novafit/gymdesk-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email, role string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  "pw",
		FirstName: "A",
		LastName:  "B",
		Role:      role,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedTrainer(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.Trainer {
	tb.Helper()
	u := SeedUser(tb, ctx, tx, email, types.RoleTrainer)
	tr := &types.Trainer{
		ID:     uuid.New(),
		UserID: u.ID,
	}
	if err := tx.WithContext(ctx).Create(tr).Error; err != nil {
		tb.Fatalf("seed trainer: %v", err)
	}
	return tr
}

func SeedAthlete(tb testing.TB, ctx context.Context, tx *gorm.DB, trainerID *uuid.UUID, firstName, email string) *types.Athlete {
	tb.Helper()
	a := &types.Athlete{
		ID:        uuid.New(),
		TrainerID: trainerID,
		FirstName: firstName,
		LastName:  "Smith",
		Email:     email,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed athlete: %v", err)
	}
	return a
}

func SeedSession(tb testing.TB, ctx context.Context, tx *gorm.DB, trainerID, athleteID uuid.UUID, scheduledAt time.Time) *types.Session {
	tb.Helper()
	s := &types.Session{
		ID:              uuid.New(),
		TrainerID:       trainerID,
		AthleteID:       athleteID,
		ScheduledAt:     scheduledAt,
		DurationMinutes: 60,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed session: %v", err)
	}
	return s
}
