package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RecurrenceDaily    = "DAILY"
	RecurrenceWeekly   = "WEEKLY"
	RecurrenceBiweekly = "BIWEEKLY"
	RecurrenceMonthly  = "MONTHLY"
)

// Session is a scheduled training appointment between one trainer and one
// athlete. Completed and cancelled both default to false; a cancelled session
// is never marked completed. Recurring sessions form a parent/children
// lineage: children carry ParentSessionID and deleting the parent nulls the
// reference instead of cascading.
type Session struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TrainerID       uuid.UUID `gorm:"type:uuid;index;not null;column:trainer_id" json:"trainer_id"`
	Trainer         *Trainer  `gorm:"foreignKey:TrainerID" json:"trainer,omitempty"`
	AthleteID       uuid.UUID `gorm:"type:uuid;index;not null;column:athlete_id" json:"athlete_id"`
	Athlete         *Athlete  `gorm:"foreignKey:AthleteID" json:"athlete,omitempty"`
	ScheduledAt     time.Time `gorm:"index;not null;column:scheduled_at" json:"scheduled_at"`
	DurationMinutes int       `gorm:"not null;default:60;column:duration_minutes" json:"duration_minutes"`
	Location        string    `gorm:"column:location" json:"location"`
	Notes           string    `gorm:"column:notes" json:"notes"`
	Completed       bool      `gorm:"not null;default:false;column:completed" json:"completed"`
	Cancelled       bool      `gorm:"not null;default:false;column:cancelled" json:"cancelled"`

	IsRecurring       bool       `gorm:"not null;default:false;column:is_recurring" json:"is_recurring"`
	RecurrencePattern string     `gorm:"column:recurrence_pattern" json:"recurrence_pattern,omitempty"`
	RecurrenceEnd     *time.Time `gorm:"column:recurrence_end" json:"recurrence_end,omitempty"`
	ParentSessionID   *uuid.UUID `gorm:"type:uuid;index;column:parent_session_id" json:"parent_session_id,omitempty"`
	ParentSession     *Session   `gorm:"foreignKey:ParentSessionID;constraint:OnDelete:SET NULL" json:"-"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Session) TableName() string { return "session" }

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func ValidRecurrencePattern(p string) bool {
	switch p {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceBiweekly, RecurrenceMonthly:
		return true
	}
	return false
}
