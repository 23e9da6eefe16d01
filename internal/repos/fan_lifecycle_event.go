package repos

import (
	"github.com/velvetdesk/agencyops-backend/internal/logger"
	"github.com/velvetdesk/agencyops-backend/internal/types"
	"gorm.io/gorm"
)

type FanLifecycleEventRepo interface {
	Create(event *types.FanLifecycleEvent, tx *gorm.DB) error
}

type fanLifecycleEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFanLifecycleEventRepo(db *gorm.DB, baseLog *logger.Logger) FanLifecycleEventRepo {
	return &fanLifecycleEventRepo{db: db, log: baseLog.With("repo", "FanLifecycleEventRepo")}
}

func (r *fanLifecycleEventRepo) Create(event *types.FanLifecycleEvent, tx *gorm.DB) error {
	db := r.db
	if tx != nil {
		db = tx
	}
	if err := db.Create(event).Error; err != nil {
		r.log.Error("failed to create lifecycle event", "error", err, "fan_id", event.FanID.String(), "type", event.Type)
		return err
	}
	return nil
}
