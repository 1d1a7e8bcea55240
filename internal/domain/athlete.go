package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Athlete is a trainee. TrainerID is nil for self-registered athletes that
// have not been assigned yet.
type Athlete struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TrainerID *uuid.UUID `gorm:"type:uuid;index;column:trainer_id" json:"trainer_id,omitempty"`
	Trainer   *Trainer   `gorm:"foreignKey:TrainerID" json:"trainer,omitempty"`
	FirstName string     `gorm:"not null;column:first_name" json:"first_name"`
	LastName  string     `gorm:"not null;column:last_name" json:"last_name"`
	Email     string     `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Phone     string     `gorm:"column:phone" json:"phone"`
	Goals     string     `gorm:"column:goals" json:"goals"`
	Notes     string     `gorm:"column:notes" json:"notes"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Athlete) TableName() string { return "athlete" }

func (a *Athlete) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
