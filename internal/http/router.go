package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/novafit/gymdesk-backend/internal/http/handlers"
	httpMW "github.com/novafit/gymdesk-backend/internal/http/middleware"
	"github.com/novafit/gymdesk-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthHandler      *httpH.AuthHandler
	AuthMiddleware   *httpMW.AuthMiddleware
	UserHandler      *httpH.UserHandler
	AthleteHandler   *httpH.AthleteHandler
	SessionHandler   *httpH.SessionHandler
	TrainerHandler   *httpH.TrainerHandler
	CheckInHandler   *httpH.CheckInHandler
	AssistantHandler *httpH.AssistantHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
		}

		// Public intake + kiosk
		if cfg.AthleteHandler != nil {
			api.POST("/athletes/self-register", cfg.AthleteHandler.SelfRegister)
		}
		if cfg.CheckInHandler != nil {
			api.POST("/checkin", cfg.CheckInHandler.CheckIn)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Auth (protected)
		if cfg.AuthHandler != nil {
			protected.POST("/refresh", cfg.AuthHandler.Refresh)
			protected.POST("/logout", cfg.AuthHandler.Logout)
		}

		// User (Me)
		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
		}

		// Athletes
		if cfg.AthleteHandler != nil {
			protected.POST("/athletes", cfg.AthleteHandler.Create)
			protected.GET("/athletes", cfg.AthleteHandler.List)
			protected.GET("/athletes/:id", cfg.AthleteHandler.Get)
			protected.PATCH("/athletes/:id", cfg.AthleteHandler.Update)
			protected.DELETE("/athletes/:id", cfg.AthleteHandler.Delete)
			protected.GET("/athletes/:id/checkins", cfg.AthleteHandler.ListCheckIns)
		}

		// Sessions
		if cfg.SessionHandler != nil {
			protected.POST("/sessions", cfg.SessionHandler.Create)
			protected.GET("/sessions", cfg.SessionHandler.List)
			protected.GET("/sessions/:id", cfg.SessionHandler.Get)
			protected.POST("/sessions/:id/complete", cfg.SessionHandler.Complete)
			protected.POST("/sessions/:id/cancel", cfg.SessionHandler.Cancel)
		}

		// Check-ins (front desk view)
		if cfg.CheckInHandler != nil {
			protected.GET("/checkins", cfg.CheckInHandler.List)
		}

		// Assistant
		if cfg.AssistantHandler != nil {
			protected.POST("/assistant/parse", cfg.AssistantHandler.Parse)
			protected.POST("/assistant/undo", cfg.AssistantHandler.Undo)
			protected.GET("/assistant/last-action", cfg.AssistantHandler.LastAction)
		}

		// Trainers: the service layer scopes these (admins see all,
		// trainers only their own row).
		if cfg.TrainerHandler != nil {
			protected.GET("/trainers", cfg.TrainerHandler.List)
			protected.GET("/trainers/:id", cfg.TrainerHandler.Get)
			protected.GET("/trainers/:id/stats", cfg.TrainerHandler.Stats)
		}
	}

	admin := protected.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			admin.Use(cfg.AuthMiddleware.RequireAdmin())
		}

		if cfg.AthleteHandler != nil {
			admin.POST("/athletes/:id/assign", cfg.AthleteHandler.AssignTrainer)
		}
	}

	return r
}
