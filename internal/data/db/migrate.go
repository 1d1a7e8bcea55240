package db

import (
	"gorm.io/gorm"

	types "github.com/novafit/gymdesk-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(

		// =========================
		// Identity + auth
		// =========================
		&types.User{},
		&types.UserToken{},

		// =========================
		// Studio roster
		// =========================
		&types.Trainer{},
		&types.Athlete{},

		// =========================
		// Scheduling
		// =========================
		&types.Session{},
		&types.CheckIn{},

		// =========================
		// Assistant audit + undo
		// =========================
		&types.AssistantAction{},
	)
}
