package repos

import (
	"github.com/google/uuid"
	"github.com/velvetdesk/agencyops-backend/internal/logger"
	"github.com/velvetdesk/agencyops-backend/internal/types"
	"gorm.io/gorm"
)

type CreatorRepo interface {
	GetByID(id uuid.UUID, tx *gorm.DB) (*types.Creator, error)
}

type creatorRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCreatorRepo(db *gorm.DB, baseLog *logger.Logger) CreatorRepo {
	return &creatorRepo{db: db, log: baseLog.With("repo", "CreatorRepo")}
}

func (r *creatorRepo) GetByID(id uuid.UUID, tx *gorm.DB) (*types.Creator, error) {
	db := r.db
	if tx != nil {
		db = tx
	}
	var creator types.Creator
	if err := db.Where("id = ?", id).First(&creator).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.log.Error("failed to get creator by id", "error", err, "creator_id", id.String())
		return nil, err
	}
	return &creator, nil
}
