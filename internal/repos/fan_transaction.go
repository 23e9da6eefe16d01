package repos

import (
	"github.com/google/uuid"
	"github.com/velvetdesk/agencyops-backend/internal/logger"
	"github.com/velvetdesk/agencyops-backend/internal/types"
	"gorm.io/gorm"
)

type FanTransactionRepo interface {
	ListRecent(fanID uuid.UUID, limit int, tx *gorm.DB) ([]types.FanTransaction, error)
}

type fanTransactionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFanTransactionRepo(db *gorm.DB, baseLog *logger.Logger) FanTransactionRepo {
	return &fanTransactionRepo{db: db, log: baseLog.With("repo", "FanTransactionRepo")}
}

func (r *fanTransactionRepo) ListRecent(fanID uuid.UUID, limit int, tx *gorm.DB) ([]types.FanTransaction, error) {
	db := r.db
	if tx != nil {
		db = tx
	}
	var txs []types.FanTransaction
	if err := db.
		Where("fan_id = ?", fanID).
		Order("date DESC").
		Limit(limit).
		Find(&txs).Error; err != nil {
		r.log.Error("failed to list fan transactions", "error", err, "fan_id", fanID.String())
		return nil, err
	}
	return txs, nil
}
