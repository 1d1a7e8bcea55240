package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/novafit/gymdesk-backend/internal/data/repos/roster"
	"github.com/novafit/gymdesk-backend/internal/data/repos/scheduling"
	types "github.com/novafit/gymdesk-backend/internal/domain"
	apperrors "github.com/novafit/gymdesk-backend/internal/pkg/errors"
	"github.com/novafit/gymdesk-backend/internal/pkg/logger"
	"github.com/novafit/gymdesk-backend/internal/requestdata"
)

// TrainerStats is the roster/session rollup for one trainer.
type TrainerStats struct {
	Trainer       *types.Trainer `json:"trainer"`
	AthleteCount  int64          `json:"athlete_count"`
	SessionCount  int64          `json:"session_count"`
	UpcomingCount int64          `json:"upcoming_count"`
}

type TrainerService interface {
	List(ctx context.Context) ([]*types.Trainer, error)
	Get(ctx context.Context, trainerID uuid.UUID) (*types.Trainer, error)
	Stats(ctx context.Context, trainerID uuid.UUID) (*TrainerStats, error)
}

type trainerService struct {
	db          *gorm.DB
	log         *logger.Logger
	trainerRepo roster.TrainerRepo
	athleteRepo roster.AthleteRepo
	sessionRepo scheduling.SessionRepo
}

func NewTrainerService(
	db *gorm.DB,
	log *logger.Logger,
	trainerRepo roster.TrainerRepo,
	athleteRepo roster.AthleteRepo,
	sessionRepo scheduling.SessionRepo,
) TrainerService {
	serviceLog := log.With("service", "TrainerService")
	return &trainerService{
		db:          db,
		log:         serviceLog,
		trainerRepo: trainerRepo,
		athleteRepo: athleteRepo,
		sessionRepo: sessionRepo,
	}
}

func (s *trainerService) List(ctx context.Context) ([]*types.Trainer, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apperrors.ErrUnauthorized
	}
	if !rd.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}
	return s.trainerRepo.List(ctx, nil, 0)
}

func (s *trainerService) Get(ctx context.Context, trainerID uuid.UUID) (*types.Trainer, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apperrors.ErrUnauthorized
	}
	if !rd.IsAdmin() && (rd.TrainerID == nil || *rd.TrainerID != trainerID) {
		return nil, apperrors.ErrForbidden
	}

	trainers, err := s.trainerRepo.GetByIDs(ctx, nil, []uuid.UUID{trainerID})
	if err != nil {
		return nil, fmt.Errorf("lookup trainer: %w", err)
	}
	if len(trainers) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return trainers[0], nil
}

func (s *trainerService) Stats(ctx context.Context, trainerID uuid.UUID) (*TrainerStats, error) {
	trainer, err := s.Get(ctx, trainerID)
	if err != nil {
		return nil, err
	}

	athleteCount, err := s.athleteRepo.CountByTrainer(ctx, nil, trainerID)
	if err != nil {
		return nil, fmt.Errorf("count athletes: %w", err)
	}
	sessionCount, err := s.sessionRepo.CountByTrainer(ctx, nil, trainerID, scheduling.SessionFilter{})
	if err != nil {
		return nil, fmt.Errorf("count sessions: %w", err)
	}
	upcomingCount, err := s.sessionRepo.CountByTrainer(ctx, nil, trainerID, scheduling.SessionFilter{Status: "upcoming"})
	if err != nil {
		return nil, fmt.Errorf("count upcoming sessions: %w", err)
	}

	return &TrainerStats{
		Trainer:       trainer,
		AthleteCount:  athleteCount,
		SessionCount:  sessionCount,
		UpcomingCount: upcomingCount,
	}, nil
}
