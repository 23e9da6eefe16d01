package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Creator struct {
	gorm.Model
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name           string    `gorm:"not null;column:name" json:"name"`
	OfapiAccount   string    `gorm:"column:ofapi_account" json:"ofapi_account"`
	OfapiToken     string    `gorm:"column:ofapi_token" json:"-"`
	Active         bool      `gorm:"not null;default:true;column:active" json:"active"`
	CreatedAt      time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Creator) TableName() string {
	return "creator"
}
