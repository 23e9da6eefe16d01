package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FanPreference struct {
	gorm.Model
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	FanID     uuid.UUID `gorm:"type:uuid;not null;index;column:fan_id" json:"fan_id"`
	Kind      string    `gorm:"not null;column:kind" json:"kind"`
	Value     string    `gorm:"not null;column:value" json:"value"`
	Weight    float64   `gorm:"not null;default:0;column:weight" json:"weight"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (FanPreference) TableName() string {
	return "fan_preference"
}
