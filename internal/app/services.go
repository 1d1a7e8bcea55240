package app

import (
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/novafit/gymdesk-backend/internal/assistant"
	redisclient "github.com/novafit/gymdesk-backend/internal/clients/redis"
	"github.com/novafit/gymdesk-backend/internal/pkg/logger"
	"github.com/novafit/gymdesk-backend/internal/services"
)

type Services struct {
	Auth      services.AuthService
	Athlete   services.AthleteService
	Session   services.SessionService
	CheckIn   services.CheckInService
	Trainer   services.TrainerService
	Assistant *assistant.Service
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, loc *time.Location) (Services, error) {
	authService := services.NewAuthService(
		db, log,
		repos.User, repos.UserToken, repos.Trainer,
		cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL,
	)
	athleteService := services.NewAthleteService(db, log, repos.Athlete, repos.Trainer)
	sessionService := services.NewSessionService(db, log, repos.Session, repos.Athlete)
	checkInService := services.NewCheckInService(db, log, repos.CheckIn, repos.Session, repos.Athlete, loc)
	trainerService := services.NewTrainerService(db, log, repos.Trainer, repos.Athlete, repos.Session)

	provider, err := assistant.NewOpenAIProvider(assistant.ProviderConfigFromEnv(log), log)
	if err != nil {
		return Services{}, err
	}

	// Redis is optional: without REDIS_ADDR every undo resolves through
	// the action log table.
	var lastActions redisclient.LastActionStore
	if os.Getenv("REDIS_ADDR") != "" {
		store, err := redisclient.NewLastActionStore(log)
		if err != nil {
			log.Warn("redis unavailable, undo falls back to the action log", "error", err)
		} else {
			lastActions = store
		}
	}

	snapshots := assistant.NewSnapshotBuilder(repos.Trainer, repos.Athlete, repos.Session, loc, log)
	executor := assistant.NewExecutor(repos.Athlete, repos.Session, loc, log)
	adminExecutor := assistant.NewAdminExecutor(db, log)
	assistantService := assistant.NewService(
		provider, snapshots, executor, adminExecutor,
		repos.ActionLog, lastActions, log,
	)

	return Services{
		Auth:      authService,
		Athlete:   athleteService,
		Session:   sessionService,
		CheckIn:   checkInService,
		Trainer:   trainerService,
		Assistant: assistantService,
	}, nil
}
