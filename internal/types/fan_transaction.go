package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FanTransaction struct {
	gorm.Model
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	FanID     uuid.UUID `gorm:"type:uuid;not null;index;column:fan_id" json:"fan_id"`
	Date      time.Time `gorm:"not null;index;column:date" json:"date"`
	Amount    float64   `gorm:"not null;column:amount" json:"amount"`
	Type      string    `gorm:"column:type" json:"type"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (FanTransaction) TableName() string {
	return "fan_transaction"
}
