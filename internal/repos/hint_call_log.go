package repos

import (
	"github.com/velvetdesk/agencyops-backend/internal/logger"
	"github.com/velvetdesk/agencyops-backend/internal/types"
	"gorm.io/gorm"
)

type HintCallLogRepo interface {
	Create(entry *types.HintCallLog, tx *gorm.DB) error
}

type hintCallLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHintCallLogRepo(db *gorm.DB, baseLog *logger.Logger) HintCallLogRepo {
	return &hintCallLogRepo{db: db, log: baseLog.With("repo", "HintCallLogRepo")}
}

func (r *hintCallLogRepo) Create(entry *types.HintCallLog, tx *gorm.DB) error {
	db := r.db
	if tx != nil {
		db = tx
	}
	if err := db.Create(entry).Error; err != nil {
		r.log.Error("failed to create hint call log", "error", err)
		return err
	}
	return nil
}
