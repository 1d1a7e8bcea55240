package db

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/novafit/gymdesk-backend/internal/pkg/logger"
)

// Service is the storage handle handed to the rest of the application.
// The backend is selected exactly once at process start and injected
// everywhere; nothing else reads DB_BACKEND.
type Service interface {
	DB() *gorm.DB
	AutoMigrateAll() error
}

// Open selects the storage backend by name: "postgres" (remote) or
// "sqlite" (local file-backed).
func Open(backend string, log *logger.Logger) (Service, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", "postgres":
		return NewPostgresService(log)
	case "sqlite":
		return NewSqliteService(log)
	default:
		return nil, fmt.Errorf("unknown db backend %q (want postgres or sqlite)", backend)
	}
}
