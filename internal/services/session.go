package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/novafit/gymdesk-backend/internal/assistant"
	"github.com/novafit/gymdesk-backend/internal/data/repos/roster"
	"github.com/novafit/gymdesk-backend/internal/data/repos/scheduling"
	types "github.com/novafit/gymdesk-backend/internal/domain"
	apperrors "github.com/novafit/gymdesk-backend/internal/pkg/errors"
	"github.com/novafit/gymdesk-backend/internal/pkg/logger"
	"github.com/novafit/gymdesk-backend/internal/requestdata"
)

type SessionInput struct {
	AthleteID         uuid.UUID  `json:"athlete_id"`
	ScheduledAt       time.Time  `json:"scheduled_at"`
	DurationMinutes   int        `json:"duration_minutes"`
	Location          string     `json:"location"`
	Notes             string     `json:"notes"`
	RecurrencePattern string     `json:"recurrence_pattern"`
	RecurrenceEnd     *time.Time `json:"recurrence_end"`
}

type SessionListInput struct {
	AthleteID *uuid.UUID `json:"athlete_id"`
	From      *time.Time `json:"from"`
	To        *time.Time `json:"to"`
	Status    string     `json:"status"`
	Limit     int        `json:"limit"`
}

type SessionService interface {
	Create(ctx context.Context, input SessionInput) ([]*types.Session, error)
	Get(ctx context.Context, sessionID uuid.UUID) (*types.Session, error)
	List(ctx context.Context, input SessionListInput) ([]*types.Session, error)
	Complete(ctx context.Context, sessionID uuid.UUID) error
	Cancel(ctx context.Context, sessionID uuid.UUID) error
}

type sessionService struct {
	db          *gorm.DB
	log         *logger.Logger
	sessionRepo scheduling.SessionRepo
	athleteRepo roster.AthleteRepo
}

func NewSessionService(db *gorm.DB, log *logger.Logger, sessionRepo scheduling.SessionRepo, athleteRepo roster.AthleteRepo) SessionService {
	serviceLog := log.With("service", "SessionService")
	return &sessionService{db: db, log: serviceLog, sessionRepo: sessionRepo, athleteRepo: athleteRepo}
}

// Create books one session, or a parent plus generated children when a
// recurrence pattern is given. Returns every created row, parent first.
func (s *sessionService) Create(ctx context.Context, input SessionInput) ([]*types.Session, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apperrors.ErrUnauthorized
	}
	if rd.TrainerID == nil {
		return nil, apperrors.ErrForbidden
	}
	if input.ScheduledAt.IsZero() {
		return nil, fmt.Errorf("%w: scheduled_at required", apperrors.ErrInvalidArgument)
	}
	if input.RecurrencePattern != "" && !types.ValidRecurrencePattern(input.RecurrencePattern) {
		return nil, fmt.Errorf("%w: invalid recurrence pattern", apperrors.ErrInvalidArgument)
	}

	athletes, err := s.athleteRepo.GetByIDs(ctx, nil, []uuid.UUID{input.AthleteID})
	if err != nil {
		return nil, fmt.Errorf("lookup athlete: %w", err)
	}
	if len(athletes) == 0 {
		return nil, fmt.Errorf("%w: athlete not found", apperrors.ErrInvalidArgument)
	}
	if !visible(rd, athletes[0]) {
		return nil, apperrors.ErrForbidden
	}

	duration := input.DurationMinutes
	if duration <= 0 {
		duration = 60
	}

	parent := &types.Session{
		TrainerID:       *rd.TrainerID,
		AthleteID:       input.AthleteID,
		ScheduledAt:     input.ScheduledAt.UTC(),
		DurationMinutes: duration,
		Location:        input.Location,
		Notes:           input.Notes,
	}

	var children []*types.Session
	if input.RecurrencePattern != "" {
		end := input.ScheduledAt.Add(assistant.DefaultRecurrenceHorizon)
		if input.RecurrenceEnd != nil {
			end = input.RecurrenceEnd.UTC()
		}
		parent.IsRecurring = true
		parent.RecurrencePattern = input.RecurrencePattern
		parent.RecurrenceEnd = &end

		if _, err := s.sessionRepo.Create(ctx, nil, []*types.Session{parent}); err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
		for _, at := range assistant.NextOccurrences(parent.ScheduledAt, input.RecurrencePattern, end) {
			parentID := parent.ID
			children = append(children, &types.Session{
				TrainerID:       parent.TrainerID,
				AthleteID:       parent.AthleteID,
				ScheduledAt:     at,
				DurationMinutes: parent.DurationMinutes,
				Location:        parent.Location,
				Notes:           parent.Notes,
				ParentSessionID: &parentID,
			})
		}
		if len(children) > 0 {
			if _, err := s.sessionRepo.Create(ctx, nil, children); err != nil {
				return nil, fmt.Errorf("create recurring sessions: %w", err)
			}
		}
	} else {
		if _, err := s.sessionRepo.Create(ctx, nil, []*types.Session{parent}); err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
	}

	return append([]*types.Session{parent}, children...), nil
}

func (s *sessionService) Get(ctx context.Context, sessionID uuid.UUID) (*types.Session, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apperrors.ErrUnauthorized
	}

	sessions, err := s.sessionRepo.GetByIDs(ctx, nil, []uuid.UUID{sessionID})
	if err != nil {
		return nil, fmt.Errorf("lookup session: %w", err)
	}
	if len(sessions) == 0 {
		return nil, apperrors.ErrNotFound
	}
	if !sessionVisible(rd, sessions[0]) {
		return nil, apperrors.ErrForbidden
	}
	return sessions[0], nil
}

func (s *sessionService) List(ctx context.Context, input SessionListInput) ([]*types.Session, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apperrors.ErrUnauthorized
	}

	filter := scheduling.SessionFilter{
		AthleteID: input.AthleteID,
		From:      input.From,
		To:        input.To,
		Status:    input.Status,
	}

	if rd.IsAdmin() {
		from, to := time.Time{}, time.Now().AddDate(1, 0, 0)
		if input.From != nil {
			from = *input.From
		}
		if input.To != nil {
			to = *input.To
		}
		return s.sessionRepo.ListUpcoming(ctx, nil, from, to, input.Limit)
	}
	if rd.TrainerID == nil {
		return nil, apperrors.ErrForbidden
	}
	return s.sessionRepo.ListByTrainer(ctx, nil, *rd.TrainerID, filter, input.Limit)
}

func (s *sessionService) Complete(ctx context.Context, sessionID uuid.UUID) error {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.Cancelled {
		return fmt.Errorf("%w: session is cancelled", apperrors.ErrConflict)
	}
	return s.sessionRepo.MarkCompleted(ctx, nil, sessionID)
}

func (s *sessionService) Cancel(ctx context.Context, sessionID uuid.UUID) error {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.Cancelled {
		return nil
	}
	return s.sessionRepo.MarkCancelled(ctx, nil, sessionID)
}

func sessionVisible(rd *requestdata.RequestData, session *types.Session) bool {
	if rd.IsAdmin() {
		return true
	}
	return rd.TrainerID != nil && session.TrainerID == *rd.TrainerID
}
