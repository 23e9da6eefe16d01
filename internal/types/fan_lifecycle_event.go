package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type FanLifecycleEvent struct {
	gorm.Model
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	FanID     uuid.UUID      `gorm:"type:uuid;not null;index;column:fan_id" json:"fan_id"`
	Type      string         `gorm:"not null;index;column:type" json:"type"`
	Metadata  datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (FanLifecycleEvent) TableName() string {
	return "fan_lifecycle_event"
}
