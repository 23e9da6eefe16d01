package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// HintCallLog records every remote advice call for cost tracking and QA
// scoring of what the model suggested vs what the chatter actually sent.
type HintCallLog struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CreatorID *uuid.UUID     `gorm:"type:uuid;index;column:creator_id" json:"creator_id,omitempty"`
	FanID     *uuid.UUID     `gorm:"type:uuid;index;column:fan_id" json:"fan_id,omitempty"`
	ChatID    string         `gorm:"column:chat_id" json:"chat_id"`
	Model     string         `gorm:"not null;column:model" json:"model"`
	Prompt    string         `gorm:"column:prompt" json:"prompt"`
	Response  string         `gorm:"column:response" json:"response"`
	Success   bool           `gorm:"not null;column:success" json:"success"`
	Error     string         `gorm:"column:error" json:"error"`
	Usage     datatypes.JSON `gorm:"type:jsonb;column:usage" json:"usage"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (HintCallLog) TableName() string {
	return "hint_call_log"
}
