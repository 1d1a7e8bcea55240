package app

import (
	"github.com/gin-gonic/gin"

	httpx "github.com/novafit/gymdesk-backend/internal/http"
	httpH "github.com/novafit/gymdesk-backend/internal/http/handlers"
	httpMW "github.com/novafit/gymdesk-backend/internal/http/middleware"
	"github.com/novafit/gymdesk-backend/internal/pkg/logger"
)

type Handlers struct {
	Health    *httpH.HealthHandler
	Auth      *httpH.AuthHandler
	User      *httpH.UserHandler
	Athlete   *httpH.AthleteHandler
	Session   *httpH.SessionHandler
	Trainer   *httpH.TrainerHandler
	CheckIn   *httpH.CheckInHandler
	Assistant *httpH.AssistantHandler
}

func wireHandlers(repos Repos, svcs Services) Handlers {
	return Handlers{
		Health:    httpH.NewHealthHandler(),
		Auth:      httpH.NewAuthHandler(svcs.Auth),
		User:      httpH.NewUserHandler(repos.User),
		Athlete:   httpH.NewAthleteHandler(svcs.Athlete, svcs.CheckIn),
		Session:   httpH.NewSessionHandler(svcs.Session),
		Trainer:   httpH.NewTrainerHandler(svcs.Trainer),
		CheckIn:   httpH.NewCheckInHandler(svcs.CheckIn),
		Assistant: httpH.NewAssistantHandler(svcs.Assistant),
	}
}

func wireMiddleware(log *logger.Logger, svcs Services) *httpMW.AuthMiddleware {
	return httpMW.NewAuthMiddleware(log, svcs.Auth)
}

func wireRouter(log *logger.Logger, h Handlers, authMW *httpMW.AuthMiddleware) *gin.Engine {
	return httpx.NewRouter(httpx.RouterConfig{
		Log:              log,
		HealthHandler:    h.Health,
		AuthHandler:      h.Auth,
		AuthMiddleware:   authMW,
		UserHandler:      h.User,
		AthleteHandler:   h.Athlete,
		SessionHandler:   h.Session,
		TrainerHandler:   h.Trainer,
		CheckInHandler:   h.CheckIn,
		AssistantHandler: h.Assistant,
	})
}
