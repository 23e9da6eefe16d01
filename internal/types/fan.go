package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Fan carries both identity and the upstream-classified intelligence fields.
// Everything here is written by the ingestion/classification crons; this
// subsystem only reads it.
type Fan struct {
	gorm.Model
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CreatorID     uuid.UUID `gorm:"type:uuid;not null;index;column:creator_id" json:"creator_id"`
	OfapiFanID    string    `gorm:"not null;index;column:ofapi_fan_id" json:"ofapi_fan_id"`
	Name          string    `gorm:"column:name" json:"name"`

	Stage                string   `gorm:"column:stage" json:"stage"`
	FanType              string   `gorm:"column:fan_type" json:"fan_type"`
	TonePreference       string   `gorm:"column:tone_preference" json:"tone_preference"`
	PriceRange           string   `gorm:"column:price_range" json:"price_range"`
	IntentScore          *int     `gorm:"column:intent_score" json:"intent_score,omitempty"`
	EmotionalDrivers     string   `gorm:"column:emotional_drivers" json:"emotional_drivers"`
	EmotionalNeeds       string   `gorm:"column:emotional_needs" json:"emotional_needs"`
	NextBestAction       string   `gorm:"column:next_best_action" json:"next_best_action"`
	NextBestActionReason string   `gorm:"column:next_best_action_reason" json:"next_best_action_reason"`
	BuyerType            string   `gorm:"column:buyer_type" json:"buyer_type"`
	FormatPreference     string   `gorm:"column:format_preference" json:"format_preference"`
	LastObjection        string   `gorm:"column:last_objection" json:"last_objection"`
	TopObjection         string   `gorm:"column:top_objection" json:"top_objection"`

	LifetimeSpend  float64    `gorm:"not null;default:0;column:lifetime_spend" json:"lifetime_spend"`
	AvgOrderValue  float64    `gorm:"not null;default:0;column:avg_order_value" json:"avg_order_value"`
	LastPurchaseAt *time.Time `gorm:"column:last_purchase_at" json:"last_purchase_at,omitempty"`
	LastMessageAt  *time.Time `gorm:"column:last_message_at" json:"last_message_at,omitempty"`

	Facts           []FanFact           `gorm:"foreignKey:FanID" json:"facts,omitempty"`
	Preferences     []FanPreference     `gorm:"foreignKey:FanID" json:"preferences,omitempty"`
	LifecycleEvents []FanLifecycleEvent `gorm:"foreignKey:FanID" json:"lifecycle_events,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Fan) TableName() string {
	return "fan"
}
