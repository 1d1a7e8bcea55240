package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CheckIn records an athlete's physical arrival. SessionID is set only when
// a same-day, not-completed, not-cancelled session exists for the athlete at
// check-in time; one check-in per session at most.
type CheckIn struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AthleteID   uuid.UUID  `gorm:"type:uuid;index;not null;column:athlete_id" json:"athlete_id"`
	Athlete     *Athlete   `gorm:"foreignKey:AthleteID" json:"athlete,omitempty"`
	SessionID   *uuid.UUID `gorm:"type:uuid;uniqueIndex;column:session_id" json:"session_id,omitempty"`
	Session     *Session   `gorm:"foreignKey:SessionID" json:"session,omitempty"`
	CheckedInAt time.Time  `gorm:"index;not null;column:checked_in_at" json:"checked_in_at"`
	Notes       string     `gorm:"column:notes" json:"notes"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (CheckIn) TableName() string { return "check_in" }

func (c *CheckIn) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
