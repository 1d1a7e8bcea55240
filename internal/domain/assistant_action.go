package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AssistantAction is the persisted record of one executed assistant
// invocation. UndoOps carries the best-effort undo descriptor list for
// admin free-form actions; it is empty for trainer-scoped actions and for
// read-only queries.
type AssistantAction struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null;column:user_id" json:"user_id"`
	InputText string    `gorm:"not null;column:input_text" json:"input_text"`
	Action    string    `gorm:"not null;column:action" json:"action"`
	Summary   string    `gorm:"column:summary" json:"summary"`
	Success   bool      `gorm:"not null;default:false;column:success" json:"success"`

	Parsed  datatypes.JSON `gorm:"column:parsed" json:"parsed,omitempty"`
	UndoOps datatypes.JSON `gorm:"column:undo_ops" json:"undo_ops,omitempty"`

	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (AssistantAction) TableName() string { return "assistant_action" }

func (a *AssistantAction) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
