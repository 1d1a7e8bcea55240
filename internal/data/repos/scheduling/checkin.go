package scheduling

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/novafit/gymdesk-backend/internal/domain"
	"github.com/novafit/gymdesk-backend/internal/pkg/logger"
)

type CheckInRepo interface {
	Create(ctx context.Context, tx *gorm.DB, checkIns []*types.CheckIn) ([]*types.CheckIn, error)
	ListByAthlete(ctx context.Context, tx *gorm.DB, athleteID uuid.UUID, limit int) ([]*types.CheckIn, error)
	List(ctx context.Context, tx *gorm.DB, limit int) ([]*types.CheckIn, error)
}

type checkInRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCheckInRepo(db *gorm.DB, baseLog *logger.Logger) CheckInRepo {
	repoLog := baseLog.With("repo", "CheckInRepo")
	return &checkInRepo{db: db, log: repoLog}
}

func (cr *checkInRepo) Create(ctx context.Context, tx *gorm.DB, checkIns []*types.CheckIn) ([]*types.CheckIn, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	if len(checkIns) == 0 {
		return []*types.CheckIn{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&checkIns).Error; err != nil {
		return nil, err
	}
	return checkIns, nil
}

func (cr *checkInRepo) ListByAthlete(ctx context.Context, tx *gorm.DB, athleteID uuid.UUID, limit int) ([]*types.CheckIn, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var results []*types.CheckIn
	q := transaction.WithContext(ctx).
		Where("athlete_id = ?", athleteID).
		Order("checked_in_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *checkInRepo) List(ctx context.Context, tx *gorm.DB, limit int) ([]*types.CheckIn, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var results []*types.CheckIn
	q := transaction.WithContext(ctx).
		Preload("Athlete").
		Order("checked_in_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
