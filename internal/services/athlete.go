package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/novafit/gymdesk-backend/internal/data/repos/roster"
	types "github.com/novafit/gymdesk-backend/internal/domain"
	apperrors "github.com/novafit/gymdesk-backend/internal/pkg/errors"
	"github.com/novafit/gymdesk-backend/internal/pkg/logger"
	"github.com/novafit/gymdesk-backend/internal/requestdata"
)

type AthleteInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Goals     string `json:"goals"`
	Notes     string `json:"notes"`
}

type AthleteService interface {
	Create(ctx context.Context, input AthleteInput) (*types.Athlete, error)
	Get(ctx context.Context, athleteID uuid.UUID) (*types.Athlete, error)
	List(ctx context.Context, limit int) ([]*types.Athlete, error)
	Update(ctx context.Context, athleteID uuid.UUID, input AthleteInput) (*types.Athlete, error)
	Delete(ctx context.Context, athleteID uuid.UUID) error
	AssignTrainer(ctx context.Context, athleteID uuid.UUID, trainerID *uuid.UUID) error
	SelfRegister(ctx context.Context, input AthleteInput) (*types.Athlete, error)
}

type athleteService struct {
	db          *gorm.DB
	log         *logger.Logger
	athleteRepo roster.AthleteRepo
	trainerRepo roster.TrainerRepo
}

func NewAthleteService(db *gorm.DB, log *logger.Logger, athleteRepo roster.AthleteRepo, trainerRepo roster.TrainerRepo) AthleteService {
	serviceLog := log.With("service", "AthleteService")
	return &athleteService{db: db, log: serviceLog, athleteRepo: athleteRepo, trainerRepo: trainerRepo}
}

func validateAthleteInput(input AthleteInput) error {
	if strings.TrimSpace(input.FirstName) == "" {
		return fmt.Errorf("%w: first name required", apperrors.ErrInvalidArgument)
	}
	email := strings.TrimSpace(input.Email)
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: valid email required", apperrors.ErrInvalidArgument)
	}
	return nil
}

func (s *athleteService) Create(ctx context.Context, input AthleteInput) (*types.Athlete, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apperrors.ErrUnauthorized
	}
	if err := validateAthleteInput(input); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	exists, err := s.athleteRepo.EmailExists(ctx, nil, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: athlete email already registered", apperrors.ErrConflict)
	}

	athlete := &types.Athlete{
		TrainerID: rd.TrainerID,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Email:     email,
		Phone:     strings.TrimSpace(input.Phone),
		Goals:     input.Goals,
		Notes:     input.Notes,
	}
	if _, err := s.athleteRepo.Create(ctx, nil, []*types.Athlete{athlete}); err != nil {
		return nil, fmt.Errorf("create athlete: %w", err)
	}
	return athlete, nil
}

// SelfRegister is the public intake path: the athlete row is created without
// a trainer and waits for assignment.
func (s *athleteService) SelfRegister(ctx context.Context, input AthleteInput) (*types.Athlete, error) {
	if err := validateAthleteInput(input); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	exists, err := s.athleteRepo.EmailExists(ctx, nil, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: athlete email already registered", apperrors.ErrConflict)
	}

	athlete := &types.Athlete{
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Email:     email,
		Phone:     strings.TrimSpace(input.Phone),
		Goals:     input.Goals,
	}
	if _, err := s.athleteRepo.Create(ctx, nil, []*types.Athlete{athlete}); err != nil {
		return nil, fmt.Errorf("create athlete: %w", err)
	}
	return athlete, nil
}

// visible reports whether the caller may see the athlete: admins see all,
// trainers only their own roster.
func visible(rd *requestdata.RequestData, athlete *types.Athlete) bool {
	if rd.IsAdmin() {
		return true
	}
	return rd.TrainerID != nil && athlete.TrainerID != nil && *athlete.TrainerID == *rd.TrainerID
}

func (s *athleteService) Get(ctx context.Context, athleteID uuid.UUID) (*types.Athlete, error) {
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
	return athletes[0], nil
}

func (s *athleteService) List(ctx context.Context, limit int) ([]*types.Athlete, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apperrors.ErrUnauthorized
	}

	if rd.IsAdmin() {
		return s.athleteRepo.List(ctx, nil, limit)
	}
	if rd.TrainerID == nil {
		return nil, apperrors.ErrForbidden
	}
	return s.athleteRepo.ListByTrainer(ctx, nil, *rd.TrainerID, limit)
}

func (s *athleteService) Update(ctx context.Context, athleteID uuid.UUID, input AthleteInput) (*types.Athlete, error) {
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

	fields := map[string]any{}
	if strings.TrimSpace(input.FirstName) != "" {
		fields["first_name"] = strings.TrimSpace(input.FirstName)
	}
	if strings.TrimSpace(input.LastName) != "" {
		fields["last_name"] = strings.TrimSpace(input.LastName)
	}
	if strings.TrimSpace(input.Email) != "" {
		fields["email"] = strings.ToLower(strings.TrimSpace(input.Email))
	}
	if strings.TrimSpace(input.Phone) != "" {
		fields["phone"] = strings.TrimSpace(input.Phone)
	}
	if input.Goals != "" {
		fields["goals"] = input.Goals
	}
	if input.Notes != "" {
		fields["notes"] = input.Notes
	}
	if len(fields) == 0 {
		return athletes[0], nil
	}

	if err := s.athleteRepo.Update(ctx, nil, athleteID, fields); err != nil {
		return nil, fmt.Errorf("update athlete: %w", err)
	}

	updated, err := s.athleteRepo.GetByIDs(ctx, nil, []uuid.UUID{athleteID})
	if err != nil || len(updated) == 0 {
		return nil, fmt.Errorf("reload athlete: %w", err)
	}
	return updated[0], nil
}

func (s *athleteService) Delete(ctx context.Context, athleteID uuid.UUID) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return apperrors.ErrUnauthorized
	}

	athletes, err := s.athleteRepo.GetByIDs(ctx, nil, []uuid.UUID{athleteID})
	if err != nil {
		return fmt.Errorf("lookup athlete: %w", err)
	}
	if len(athletes) == 0 {
		return apperrors.ErrNotFound
	}
	if !visible(rd, athletes[0]) {
		return apperrors.ErrForbidden
	}
	return s.athleteRepo.Delete(ctx, nil, athleteID)
}

// AssignTrainer is admin-only; a nil trainerID detaches the athlete.
func (s *athleteService) AssignTrainer(ctx context.Context, athleteID uuid.UUID, trainerID *uuid.UUID) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return apperrors.ErrUnauthorized
	}
	if !rd.IsAdmin() {
		return apperrors.ErrForbidden
	}

	athletes, err := s.athleteRepo.GetByIDs(ctx, nil, []uuid.UUID{athleteID})
	if err != nil {
		return fmt.Errorf("lookup athlete: %w", err)
	}
	if len(athletes) == 0 {
		return apperrors.ErrNotFound
	}

	if trainerID != nil {
		trainers, err := s.trainerRepo.GetByIDs(ctx, nil, []uuid.UUID{*trainerID})
		if err != nil {
			return fmt.Errorf("lookup trainer: %w", err)
		}
		if len(trainers) == 0 {
			return fmt.Errorf("%w: trainer not found", apperrors.ErrInvalidArgument)
		}
	}
	return s.athleteRepo.AssignTrainer(ctx, nil, athleteID, trainerID)
}
