package hints

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/velvetdesk/agencyops-backend/internal/services"
)

// ErrAdviceUnavailable means the remote advice call failed or returned a
// document missing required sections. Callers surface "hints unavailable"
// and wait for the next user action; nothing here retries.
var ErrAdviceUnavailable = errors.New("closing hints unavailable")

const resultVersion = "v1"

type rawBuyCue struct {
	Detected *bool  `json:"detected"`
	Quote    string `json:"quote"`
	Meaning  string `json:"meaning"`
}

type rawPersonalBridge struct {
	Detected   *bool  `json:"detected"`
	Fact       string `json:"fact"`
	Value      string `json:"value"`
	Suggestion string `json:"suggestion"`
}

type rawObjectionSniper struct {
	Detected  *bool    `json:"detected"`
	Objection string   `json:"objection"`
	Rebuttals []string `json:"rebuttals"`
}

type rawAdvice struct {
	BuyCue          *rawBuyCue          `json:"buyCue"`
	PersonalBridge  *rawPersonalBridge  `json:"personalBridge"`
	ObjectionSniper *rawObjectionSniper `json:"objectionSniper"`
	DraftMessage    string              `json:"draftMessage"`
	Confidence      *float64            `json:"confidence"`
}

// normalizeAdvice validates the model's JSON and builds the fixed-shape
// result. Validation fails closed: an unparseable body and a body missing a
// required section are the same outcome. Optional fields (draft message,
// rebuttals) default leniently.
func normalizeAdvice(content string, zone StrikeZoneResult, quality Quality, missingContext []string, usage *services.TokenUsage) (*HintResult, error) {
	var raw rawAdvice
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("%w: decode advice response: %v", ErrAdviceUnavailable, err)
	}
	if raw.BuyCue == nil || raw.PersonalBridge == nil || raw.ObjectionSniper == nil || raw.Confidence == nil {
		return nil, fmt.Errorf("%w: advice response missing required sections", ErrAdviceUnavailable)
	}

	adjusted := clampConfidence(*raw.Confidence, quality)

	meaning := raw.BuyCue.Meaning
	if meaning == "" {
		meaning = "No buying signal detected"
	}
	objection := raw.ObjectionSniper.Objection
	if objection == "" {
		objection = "none"
	}
	rebuttals := raw.ObjectionSniper.Rebuttals
	if rebuttals == nil {
		rebuttals = []string{}
	}
	if len(rebuttals) > 2 {
		rebuttals = rebuttals[:2]
	}
	if missingContext == nil {
		missingContext = []string{}
	}

	return &HintResult{
		Version:          resultVersion,
		StrikeZone:       zone.Zone,
		StrikeZoneReason: zone.Reason,
		BuyCue: BuyCue{
			Detected: raw.BuyCue.Detected != nil && *raw.BuyCue.Detected,
			Quote:    raw.BuyCue.Quote,
			Meaning:  meaning,
		},
		PersonalBridge: PersonalBridge{
			Detected:   raw.PersonalBridge.Detected != nil && *raw.PersonalBridge.Detected,
			Fact:       raw.PersonalBridge.Fact,
			Value:      raw.PersonalBridge.Value,
			Suggestion: raw.PersonalBridge.Suggestion,
		},
		ObjectionSniper: ObjectionSniper{
			Detected:  raw.ObjectionSniper.Detected != nil && *raw.ObjectionSniper.Detected && objection != "none",
			Objection: objection,
			Rebuttals: rebuttals,
		},
		DraftMessage:    raw.DraftMessage,
		Confidence:      adjusted,
		ContextQuality:  quality,
		MissingContext:  missingContext,
		IsLowConfidence: adjusted < 0.4,
		TokenUsage:      usage,
	}, nil
}

// clampConfidence caps the model's self-reported confidence by how much
// evidence actually backed the prompt. Thin context cannot yield a
// high-certainty suggestion no matter what the model claims.
func clampConfidence(raw float64, quality Quality) float64 {
	switch quality {
	case QualityMinimal:
		if raw > 0.3 {
			return 0.3
		}
	case QualityPartial:
		if raw > 0.6 {
			return 0.6
		}
	}
	return raw
}
