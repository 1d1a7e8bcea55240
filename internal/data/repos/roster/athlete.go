package roster

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/novafit/gymdesk-backend/internal/domain"
	"github.com/novafit/gymdesk-backend/internal/pkg/logger"
)

type AthleteRepo interface {
	Create(ctx context.Context, tx *gorm.DB, athletes []*types.Athlete) ([]*types.Athlete, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, athleteIDs []uuid.UUID) ([]*types.Athlete, error)
	GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*types.Athlete, error)
	EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error)
	List(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Athlete, error)
	ListByTrainer(ctx context.Context, tx *gorm.DB, trainerID uuid.UUID, limit int) ([]*types.Athlete, error)
	CountByTrainer(ctx context.Context, tx *gorm.DB, trainerID uuid.UUID) (int64, error)
	FirstByName(ctx context.Context, tx *gorm.DB, trainerID *uuid.UUID, namePart string) (*types.Athlete, error)
	Update(ctx context.Context, tx *gorm.DB, athleteID uuid.UUID, fields map[string]any) error
	AssignTrainer(ctx context.Context, tx *gorm.DB, athleteID uuid.UUID, trainerID *uuid.UUID) error
	Delete(ctx context.Context, tx *gorm.DB, athleteID uuid.UUID) error
}

type athleteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAthleteRepo(db *gorm.DB, baseLog *logger.Logger) AthleteRepo {
	repoLog := baseLog.With("repo", "AthleteRepo")
	return &athleteRepo{db: db, log: repoLog}
}

func (ar *athleteRepo) Create(ctx context.Context, tx *gorm.DB, athletes []*types.Athlete) ([]*types.Athlete, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	if len(athletes) == 0 {
		return []*types.Athlete{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&athletes).Error; err != nil {
		return nil, err
	}
	return athletes, nil
}

func (ar *athleteRepo) GetByIDs(ctx context.Context, tx *gorm.DB, athleteIDs []uuid.UUID) ([]*types.Athlete, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var results []*types.Athlete
	if len(athleteIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", athleteIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ar *athleteRepo) GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*types.Athlete, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var results []*types.Athlete
	if len(emails) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("email IN ?", emails).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ar *athleteRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Athlete{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (ar *athleteRepo) List(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Athlete, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var results []*types.Athlete
	q := transaction.WithContext(ctx).Model(&types.Athlete{})
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ar *athleteRepo) ListByTrainer(ctx context.Context, tx *gorm.DB, trainerID uuid.UUID, limit int) ([]*types.Athlete, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var results []*types.Athlete
	q := transaction.WithContext(ctx).
		Where("trainer_id = ?", trainerID)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ar *athleteRepo) CountByTrainer(ctx context.Context, tx *gorm.DB, trainerID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Athlete{}).
		Where("trainer_id = ?", trainerID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FirstByName resolves an athlete by case-insensitive first-name containment,
// optionally restricted to one trainer's roster. Returns (nil, nil) when no
// athlete matches.
func (ar *athleteRepo) FirstByName(ctx context.Context, tx *gorm.DB, trainerID *uuid.UUID, namePart string) (*types.Athlete, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	namePart = strings.ToLower(strings.TrimSpace(namePart))
	if namePart == "" {
		return nil, nil
	}

	q := transaction.WithContext(ctx).
		Where("lower(first_name) LIKE ?", "%"+namePart+"%")
	if trainerID != nil {
		q = q.Where("trainer_id = ?", *trainerID)
	}

	var result types.Athlete
	if err := q.First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (ar *athleteRepo) Update(ctx context.Context, tx *gorm.DB, athleteID uuid.UUID, fields map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Athlete{}).
		Where("id = ?", athleteID).
		Updates(fields).Error
}

func (ar *athleteRepo) AssignTrainer(ctx context.Context, tx *gorm.DB, athleteID uuid.UUID, trainerID *uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Athlete{}).
		Where("id = ?", athleteID).
		Update("trainer_id", trainerID).Error
}

func (ar *athleteRepo) Delete(ctx context.Context, tx *gorm.DB, athleteID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	return transaction.WithContext(ctx).
		Where("id = ?", athleteID).
		Delete(&types.Athlete{}).Error
}
