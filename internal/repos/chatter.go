package repos

import (
	"github.com/velvetdesk/agencyops-backend/internal/logger"
	"github.com/velvetdesk/agencyops-backend/internal/types"
	"gorm.io/gorm"
)

type ChatterRepo interface {
	GetByEmail(email string, tx *gorm.DB) (*types.Chatter, error)
}

type chatterRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChatterRepo(db *gorm.DB, baseLog *logger.Logger) ChatterRepo {
	return &chatterRepo{db: db, log: baseLog.With("repo", "ChatterRepo")}
}

func (r *chatterRepo) GetByEmail(email string, tx *gorm.DB) (*types.Chatter, error) {
	db := r.db
	if tx != nil {
		db = tx
	}
	var chatter types.Chatter
	if err := db.Where("email = ?", email).First(&chatter).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.log.Error("failed to get chatter by email", "error", err, "email", email)
		return nil, err
	}
	return &chatter, nil
}
