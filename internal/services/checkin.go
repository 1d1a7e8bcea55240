package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/novafit/gymdesk-backend/internal/data/repos/roster"
	"github.com/novafit/gymdesk-backend/internal/data/repos/scheduling"
	types "github.com/novafit/gymdesk-backend/internal/domain"
	apperrors "github.com/novafit/gymdesk-backend/internal/pkg/errors"
	"github.com/novafit/gymdesk-backend/internal/pkg/logger"
	"github.com/novafit/gymdesk-backend/internal/requestdata"
)

type CheckInInput struct {
	Email string `json:"email"`
	Notes string `json:"notes"`
}

type CheckInResult struct {
	CheckIn *types.CheckIn `json:"check_in"`
	Session *types.Session `json:"session,omitempty"`
}

type CheckInService interface {
	CheckIn(ctx context.Context, input CheckInInput) (*CheckInResult, error)
	List(ctx context.Context, limit int) ([]*types.CheckIn, error)
	ListByAthlete(ctx context.Context, athleteID uuid.UUID, limit int) ([]*types.CheckIn, error)
}

type checkInService struct {
	db          *gorm.DB
	log         *logger.Logger
	checkInRepo scheduling.CheckInRepo
	sessionRepo scheduling.SessionRepo
	athleteRepo roster.AthleteRepo

	now func() time.Time
	loc *time.Location
}

func NewCheckInService(
	db *gorm.DB,
	log *logger.Logger,
	checkInRepo scheduling.CheckInRepo,
	sessionRepo scheduling.SessionRepo,
	athleteRepo roster.AthleteRepo,
	loc *time.Location,
) CheckInService {
	if loc == nil {
		loc = time.Local
	}
	serviceLog := log.With("service", "CheckInService")
	return &checkInService{
		db:          db,
		log:         serviceLog,
		checkInRepo: checkInRepo,
		sessionRepo: sessionRepo,
		athleteRepo: athleteRepo,
		now:         time.Now,
		loc:         loc,
	}
}

// CheckIn is the public kiosk path: the athlete identifies by email and the
// check-in is linked to their earliest same-day open session when one
// exists. Without a matching session the check-in still records, unlinked.
func (s *checkInService) CheckIn(ctx context.Context, input CheckInInput) (*CheckInResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, fmt.Errorf("%w: email required", apperrors.ErrInvalidArgument)
	}

	athletes, err := s.athleteRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return nil, fmt.Errorf("lookup athlete: %w", err)
	}
	if len(athletes) == 0 {
		return nil, apperrors.ErrNotFound
	}
	athlete := athletes[0]

	now := s.now()
	local := now.In(s.loc)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc).UTC()
	dayEnd := dayStart.AddDate(0, 0, 1)

	session, err := s.sessionRepo.FirstMatchForCheckIn(ctx, nil, athlete.ID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("match session: %w", err)
	}

	checkIn := &types.CheckIn{
		AthleteID:   athlete.ID,
		CheckedInAt: now.UTC(),
		Notes:       input.Notes,
	}
	if session != nil {
		checkIn.SessionID = &session.ID
	}
	if _, err := s.checkInRepo.Create(ctx, nil, []*types.CheckIn{checkIn}); err != nil {
		// The session_id unique index rejects a second check-in against the
		// same session; retry unlinked so the arrival is still recorded.
		if session != nil {
			checkIn.ID = uuid.Nil
			checkIn.SessionID = nil
			if _, retryErr := s.checkInRepo.Create(ctx, nil, []*types.CheckIn{checkIn}); retryErr != nil {
				return nil, fmt.Errorf("create check-in: %w", retryErr)
			}
		} else {
			return nil, fmt.Errorf("create check-in: %w", err)
		}
	}

	return &CheckInResult{CheckIn: checkIn, Session: session}, nil
}

func (s *checkInService) List(ctx context.Context, limit int) ([]*types.CheckIn, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apperrors.ErrUnauthorized
	}
	return s.checkInRepo.List(ctx, nil, limit)
}

func (s *checkInService) ListByAthlete(ctx context.Context, athleteID uuid.UUID, limit int) ([]*types.CheckIn, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apperrors.ErrUnauthorized
	}

	athletes, err := s.athleteRepo.GetByIDs(ctx, nil, []uuid.UUID{athleteID})
	if err != nil {
		return nil, fmt.Errorf("lookup athlete: %w", err)
	}
	if len(athletes) == 0 {
		return nil, apperrors.ErrNotFound
	}
	if !visible(rd, athletes[0]) {
		return nil, apperrors.ErrForbidden
	}
	return s.checkInRepo.ListByAthlete(ctx, nil, athleteID, limit)
}
