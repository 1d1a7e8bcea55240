package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Trainer wraps a User with role TRAINER. Exactly one trainer row per user.
type Trainer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null;column:user_id" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Specialty string    `gorm:"column:specialty" json:"specialty"`
	Bio       string    `gorm:"column:bio" json:"bio"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Trainer) TableName() string { return "trainer" }

func (t *Trainer) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
