package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	userrepo "github.com/novafit/gymdesk-backend/internal/data/repos/user"
	apperrors "github.com/novafit/gymdesk-backend/internal/pkg/errors"
	"github.com/novafit/gymdesk-backend/internal/http/response"
	"github.com/novafit/gymdesk-backend/internal/requestdata"
)

type UserHandler struct {
	userRepo userrepo.UserRepo
}

func NewUserHandler(userRepo userrepo.UserRepo) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

func (uh *UserHandler) GetMe(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondServiceError(c, apperrors.ErrUnauthorized)
		return
	}
	users, err := uh.userRepo.GetByIDs(c.Request.Context(), nil, []uuid.UUID{rd.UserID})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	if len(users) == 0 {
		response.RespondServiceError(c, apperrors.ErrNotFound)
		return
	}
	response.RespondOK(c, gin.H{
		"user":       users[0],
		"trainer_id": rd.TrainerID,
	})
}
