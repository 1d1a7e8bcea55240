package assistant

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/novafit/gymdesk-backend/internal/domain"
	"github.com/novafit/gymdesk-backend/internal/pkg/logger"
)

type ActionLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, actions []*types.AssistantAction) ([]*types.AssistantAction, error)
	LatestByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.AssistantAction, error)
}

type actionLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActionLogRepo(db *gorm.DB, baseLog *logger.Logger) ActionLogRepo {
	repoLog := baseLog.With("repo", "ActionLogRepo")
	return &actionLogRepo{db: db, log: repoLog}
}

func (ar *actionLogRepo) Create(ctx context.Context, tx *gorm.DB, actions []*types.AssistantAction) ([]*types.AssistantAction, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	if len(actions) == 0 {
		return []*types.AssistantAction{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&actions).Error; err != nil {
		return nil, err
	}
	return actions, nil
}

// LatestByUser returns the most recent executed action for the user, or
// (nil, nil) when the user has none.
func (ar *actionLogRepo) LatestByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.AssistantAction, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var result types.AssistantAction
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}
