// Package hints implements the context-assembly and advice-caching pipeline
// behind per-conversation closing hints: it gathers a bounded, recency-aware
// knowledge bundle about a fan, compresses it under a character budget,
// classifies pitch readiness, and wraps the remote advice call with a short
// cache and a per-conversation rate limit.
package hints

import "github.com/velvetdesk/agencyops-backend/internal/services"

// Quality rates how much evidence the assembled bundle actually carries.
type Quality string

const (
	QualityRich    Quality = "rich"
	QualityPartial Quality = "partial"
	QualityMinimal Quality = "minimal"
)

// Zone is the deterministic pitch-readiness signal.
type Zone string

const (
	ZoneGreen  Zone = "green"
	ZoneYellow Zone = "yellow"
	ZoneRed    Zone = "red"
)

type StrikeZoneResult struct {
	Zone   Zone   `json:"zone"`
	Reason string `json:"reason"`
}

// FactLine is a fan fact annotated with a human-readable age.
type FactLine struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Age   string `json:"age"`
}

// Anchor is a time-sensitive fact worth acting on in the next message.
type Anchor struct {
	Key     string `json:"key"`
	Value   string `json:"value"`
	DaysAgo int    `json:"daysAgo"`
}

type PurchaseContext struct {
	When    string  `json:"when"`
	Amount  float64 `json:"amount"`
	Context string  `json:"context"`
}

// ChatMessage is one conversation message with a millisecond timestamp.
type ChatMessage struct {
	Text    string
	FromFan bool
	TS      int64
}

// ContextBundle is the per-request aggregate of everything known about a
// conversation. It is built once and never mutated; compression produces a
// separate string artifact.
type ContextBundle struct {
	RecentMessages    []string          `json:"recentMessages"`
	TopFacts          []FactLine        `json:"topFacts"`
	TemporalAnchors   []Anchor          `json:"temporalAnchors"`
	ObjectionHistory  []string          `json:"objectionHistory"`
	PurchaseSummary   string            `json:"purchaseSummary"`
	PurchaseContexts  []PurchaseContext `json:"purchaseContexts"`
	RetrievedSnippets []string          `json:"retrievedSnippets"`
	MissingContext    []string          `json:"missingContext"`
	ContextQuality    Quality           `json:"contextQuality"`

	// LastFanMessageTs is the true max timestamp (ms) of fan-authored
	// messages in the fetched window. The cache key depends on it, so a
	// new inbound message always produces a cache miss. Zero means no fan
	// message was seen.
	LastFanMessageTs int64 `json:"lastFanMessageTs"`
}

type BuyCue struct {
	Detected bool   `json:"detected"`
	Quote    string `json:"quote"`
	Meaning  string `json:"meaning"`
}

type PersonalBridge struct {
	Detected   bool   `json:"detected"`
	Fact       string `json:"fact"`
	Value      string `json:"value"`
	Suggestion string `json:"suggestion"`
}

type ObjectionSniper struct {
	Detected  bool     `json:"detected"`
	Objection string   `json:"objection"`
	Rebuttals []string `json:"rebuttals"`
}

// HintResult is the fixed-shape advice record returned to callers. Every
// field is always populated regardless of what the remote model omitted.
type HintResult struct {
	Version          string               `json:"version"`
	StrikeZone       Zone                 `json:"strikeZone"`
	StrikeZoneReason string               `json:"strikeZoneReason"`
	BuyCue           BuyCue               `json:"buyCue"`
	PersonalBridge   PersonalBridge       `json:"personalBridge"`
	ObjectionSniper  ObjectionSniper      `json:"objectionSniper"`
	DraftMessage     string               `json:"draftMessage"`
	Confidence       float64              `json:"confidence"`
	ContextQuality   Quality              `json:"contextQuality"`
	MissingContext   []string             `json:"missingContext"`
	IsLowConfidence  bool                 `json:"isLowConfidence"`
	TokenUsage       *services.TokenUsage `json:"tokenUsage,omitempty"`
}
