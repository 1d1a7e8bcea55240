package app

import (
	"gorm.io/gorm"

	assistantrepo "github.com/novafit/gymdesk-backend/internal/data/repos/assistant"
	"github.com/novafit/gymdesk-backend/internal/data/repos/roster"
	"github.com/novafit/gymdesk-backend/internal/data/repos/scheduling"
	userrepo "github.com/novafit/gymdesk-backend/internal/data/repos/user"
	"github.com/novafit/gymdesk-backend/internal/pkg/logger"
)

type Repos struct {
	User      userrepo.UserRepo
	UserToken userrepo.UserTokenRepo
	Trainer   roster.TrainerRepo
	Athlete   roster.AthleteRepo
	Session   scheduling.SessionRepo
	CheckIn   scheduling.CheckInRepo
	ActionLog assistantrepo.ActionLogRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	return Repos{
		User:      userrepo.NewUserRepo(db, log),
		UserToken: userrepo.NewUserTokenRepo(db, log),
		Trainer:   roster.NewTrainerRepo(db, log),
		Athlete:   roster.NewAthleteRepo(db, log),
		Session:   scheduling.NewSessionRepo(db, log),
		CheckIn:   scheduling.NewCheckInRepo(db, log),
		ActionLog: assistantrepo.NewActionLogRepo(db, log),
	}
}
