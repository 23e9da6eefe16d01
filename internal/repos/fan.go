package repos

import (
	"time"

	"github.com/google/uuid"
	"github.com/velvetdesk/agencyops-backend/internal/logger"
	"github.com/velvetdesk/agencyops-backend/internal/types"
	"gorm.io/gorm"
)

type FanRepo interface {
	// GetByExternalID loads the fan for a creator by its platform fan id,
	// preloading facts, preferences and recent lifecycle events. Returns
	// (nil, nil) when no such fan exists.
	GetByExternalID(creatorID uuid.UUID, externalID string, tx *gorm.DB) (*types.Fan, error)
}

type fanRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFanRepo(db *gorm.DB, baseLog *logger.Logger) FanRepo {
	return &fanRepo{db: db, log: baseLog.With("repo", "FanRepo")}
}

func (r *fanRepo) GetByExternalID(creatorID uuid.UUID, externalID string, tx *gorm.DB) (*types.Fan, error) {
	db := r.db
	if tx != nil {
		db = tx
	}
	var fan types.Fan
	err := db.
		Preload("Facts", func(db *gorm.DB) *gorm.DB {
			return db.Order("last_confirmed_at DESC").Limit(25)
		}).
		Preload("Preferences", func(db *gorm.DB) *gorm.DB {
			return db.Order("weight DESC").Limit(20)
		}).
		Preload("LifecycleEvents", func(db *gorm.DB) *gorm.DB {
			cutoff := time.Now().Add(-30 * 24 * time.Hour)
			return db.Where("created_at >= ?", cutoff).Order("created_at DESC").Limit(20)
		}).
		Where("creator_id = ? AND ofapi_fan_id = ?", creatorID, externalID).
		First(&fan).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.log.Error("failed to get fan", "error", err, "creator_id", creatorID.String(), "fan_id", externalID)
		return nil, err
	}
	return &fan, nil
}
