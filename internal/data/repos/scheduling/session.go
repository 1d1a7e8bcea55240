package scheduling

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/novafit/gymdesk-backend/internal/domain"
	"github.com/novafit/gymdesk-backend/internal/pkg/logger"
)

// SessionFilter narrows session list/count queries. Status is one of
// "all", "completed", "upcoming", "cancelled"; empty means "all".
type SessionFilter struct {
	AthleteID *uuid.UUID
	From      *time.Time
	To        *time.Time
	Status    string
}

type SessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, sessions []*types.Session) ([]*types.Session, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, sessionIDs []uuid.UUID) ([]*types.Session, error)
	ListUpcoming(ctx context.Context, tx *gorm.DB, from, to time.Time, limit int) ([]*types.Session, error)
	ListByTrainer(ctx context.Context, tx *gorm.DB, trainerID uuid.UUID, filter SessionFilter, limit int) ([]*types.Session, error)
	CountByTrainer(ctx context.Context, tx *gorm.DB, trainerID uuid.UUID, filter SessionFilter) (int64, error)
	FirstCancellable(ctx context.Context, tx *gorm.DB, trainerID uuid.UUID, athleteID *uuid.UUID, athleteName string, dayStart, dayEnd time.Time) (*types.Session, error)
	FirstMatchForCheckIn(ctx context.Context, tx *gorm.DB, athleteID uuid.UUID, dayStart, dayEnd time.Time) (*types.Session, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, fields map[string]any) error
	MarkCancelled(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) error
	MarkCompleted(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) error
	Delete(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) error
}

type sessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
	repoLog := baseLog.With("repo", "SessionRepo")
	return &sessionRepo{db: db, log: repoLog}
}

func (sr *sessionRepo) Create(ctx context.Context, tx *gorm.DB, sessions []*types.Session) ([]*types.Session, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if len(sessions) == 0 {
		return []*types.Session{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (sr *sessionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, sessionIDs []uuid.UUID) ([]*types.Session, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*types.Session
	if len(sessionIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Preload("Athlete").
		Where("id IN ?", sessionIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListUpcoming returns sessions scheduled inside [from, to), ascending by
// scheduled time. Used for the admin prompt snapshot.
func (sr *sessionRepo) ListUpcoming(ctx context.Context, tx *gorm.DB, from, to time.Time, limit int) ([]*types.Session, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*types.Session
	q := transaction.WithContext(ctx).
		Preload("Athlete").
		Where("scheduled_at >= ? AND scheduled_at < ?", from, to).
		Where("cancelled = ?", false).
		Order("scheduled_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func applyFilter(q *gorm.DB, filter SessionFilter, now time.Time) *gorm.DB {
	if filter.AthleteID != nil {
		q = q.Where("athlete_id = ?", *filter.AthleteID)
	}
	if filter.From != nil {
		q = q.Where("scheduled_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("scheduled_at < ?", *filter.To)
	}
	switch strings.ToLower(filter.Status) {
	case "completed":
		q = q.Where("completed = ?", true)
	case "cancelled":
		q = q.Where("cancelled = ?", true)
	case "upcoming":
		q = q.Where("completed = ? AND cancelled = ? AND scheduled_at >= ?", false, false, now)
	}
	return q
}

func (sr *sessionRepo) ListByTrainer(ctx context.Context, tx *gorm.DB, trainerID uuid.UUID, filter SessionFilter, limit int) ([]*types.Session, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*types.Session
	q := transaction.WithContext(ctx).
		Preload("Athlete").
		Where("trainer_id = ?", trainerID).
		Order("scheduled_at ASC")
	q = applyFilter(q, filter, time.Now().UTC())
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *sessionRepo) CountByTrainer(ctx context.Context, tx *gorm.DB, trainerID uuid.UUID, filter SessionFilter) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var count int64
	q := transaction.WithContext(ctx).
		Model(&types.Session{}).
		Where("trainer_id = ?", trainerID)
	q = applyFilter(q, filter, time.Now().UTC())
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FirstCancellable finds the first not-yet-cancelled session for the given
// trainer scheduled within [dayStart, dayEnd). The athlete is matched by id
// when given, otherwise by case-insensitive first-name containment.
// Returns (nil, nil) when nothing matches.
func (sr *sessionRepo) FirstCancellable(ctx context.Context, tx *gorm.DB, trainerID uuid.UUID, athleteID *uuid.UUID, athleteName string, dayStart, dayEnd time.Time) (*types.Session, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	q := transaction.WithContext(ctx).
		Model(&types.Session{}).
		Where("session.trainer_id = ?", trainerID).
		Where("session.cancelled = ?", false).
		Where("session.scheduled_at >= ? AND session.scheduled_at < ?", dayStart, dayEnd).
		Order("session.scheduled_at ASC")

	if athleteID != nil {
		q = q.Where("session.athlete_id = ?", *athleteID)
	} else {
		name := strings.ToLower(strings.TrimSpace(athleteName))
		if name == "" {
			return nil, nil
		}
		q = q.Joins("JOIN athlete ON athlete.id = session.athlete_id").
			Where("lower(athlete.first_name) LIKE ?", "%"+name+"%")
	}

	var result types.Session
	if err := q.First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

// FirstMatchForCheckIn returns the athlete's earliest same-day session that
// is neither completed nor cancelled, or (nil, nil).
func (sr *sessionRepo) FirstMatchForCheckIn(ctx context.Context, tx *gorm.DB, athleteID uuid.UUID, dayStart, dayEnd time.Time) (*types.Session, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var result types.Session
	if err := transaction.WithContext(ctx).
		Where("athlete_id = ?", athleteID).
		Where("completed = ? AND cancelled = ?", false, false).
		Where("scheduled_at >= ? AND scheduled_at < ?", dayStart, dayEnd).
		Order("scheduled_at ASC").
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (sr *sessionRepo) UpdateFields(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, fields map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Session{}).
		Where("id = ?", sessionID).
		Updates(fields).Error
}

func (sr *sessionRepo) MarkCancelled(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Session{}).
		Where("id = ?", sessionID).
		Update("cancelled", true).Error
}

func (sr *sessionRepo) MarkCompleted(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Session{}).
		Where("id = ? AND cancelled = ?", sessionID, false).
		Update("completed", true).Error
}

func (sr *sessionRepo) Delete(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	return transaction.WithContext(ctx).
		Where("id = ?", sessionID).
		Delete(&types.Session{}).Error
}
