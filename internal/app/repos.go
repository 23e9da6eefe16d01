package app

import (
	"github.com/velvetdesk/agencyops-backend/internal/logger"
	"github.com/velvetdesk/agencyops-backend/internal/repos"
	"gorm.io/gorm"
)

type Repos struct {
	Creators        repos.CreatorRepo
	Fans            repos.FanRepo
	Transactions    repos.FanTransactionRepo
	LifecycleEvents repos.FanLifecycleEventRepo
	HintCallLogs    repos.HintCallLogRepo
	Chatters        repos.ChatterRepo
}

func NewRepos(db *gorm.DB, log *logger.Logger) *Repos {
	return &Repos{
		Creators:        repos.NewCreatorRepo(db, log),
		Fans:            repos.NewFanRepo(db, log),
		Transactions:    repos.NewFanTransactionRepo(db, log),
		LifecycleEvents: repos.NewFanLifecycleEventRepo(db, log),
		HintCallLogs:    repos.NewHintCallLogRepo(db, log),
		Chatters:        repos.NewChatterRepo(db, log),
	}
}
