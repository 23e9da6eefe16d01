package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FanFact struct {
	gorm.Model
	ID              uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	FanID           uuid.UUID  `gorm:"type:uuid;not null;index;column:fan_id" json:"fan_id"`
	Key             string     `gorm:"not null;column:key" json:"key"`
	Value           string     `gorm:"not null;column:value" json:"value"`
	Confidence      float64    `gorm:"not null;default:0;column:confidence" json:"confidence"`
	LastConfirmedAt *time.Time `gorm:"column:last_confirmed_at" json:"last_confirmed_at,omitempty"`
	CreatedAt       time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (FanFact) TableName() string {
	return "fan_fact"
}

// ConfirmedAt is last_confirmed_at when present, created_at otherwise.
func (f *FanFact) ConfirmedAt() time.Time {
	if f.LastConfirmedAt != nil {
		return *f.LastConfirmedAt
	}
	return f.CreatedAt
}
