package roster

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/novafit/gymdesk-backend/internal/domain"
	"github.com/novafit/gymdesk-backend/internal/pkg/logger"
)

type TrainerRepo interface {
	Create(ctx context.Context, tx *gorm.DB, trainers []*types.Trainer) ([]*types.Trainer, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, trainerIDs []uuid.UUID) ([]*types.Trainer, error)
	GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.Trainer, error)
	List(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Trainer, error)
}

type trainerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTrainerRepo(db *gorm.DB, baseLog *logger.Logger) TrainerRepo {
	repoLog := baseLog.With("repo", "TrainerRepo")
	return &trainerRepo{db: db, log: repoLog}
}

func (tr *trainerRepo) Create(ctx context.Context, tx *gorm.DB, trainers []*types.Trainer) ([]*types.Trainer, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	if len(trainers) == 0 {
		return []*types.Trainer{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&trainers).Error; err != nil {
		return nil, err
	}
	return trainers, nil
}

func (tr *trainerRepo) GetByIDs(ctx context.Context, tx *gorm.DB, trainerIDs []uuid.UUID) ([]*types.Trainer, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	var results []*types.Trainer
	if len(trainerIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Preload("User").
		Where("id IN ?", trainerIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (tr *trainerRepo) GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.Trainer, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	var results []*types.Trainer
	if len(userIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (tr *trainerRepo) List(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Trainer, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	var results []*types.Trainer
	q := transaction.WithContext(ctx).Preload("User").Model(&types.Trainer{})
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
