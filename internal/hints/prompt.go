package hints

import (
	"fmt"
	"strings"

	"github.com/velvetdesk/agencyops-backend/internal/types"
)

// hintsSystemPrompt is the fixed contract with the advice model. The response
// must be a JSON object carrying every section even when nothing was found.
const hintsSystemPrompt = `You are a closing coach for an OnlyFans chatter. You analyze a fan's context bundle and give real-time selling advice.

The context bundle includes timestamped data — use recency to judge relevance.
If data is missing or sparse, lower your confidence and say so.

Return a JSON object with ALL of these fields (even if empty):

{
  "buyCue": {
    "detected": true/false,
    "quote": "exact phrase from messages or empty string",
    "meaning": "what this means for selling"
  },
  "personalBridge": {
    "detected": true/false,
    "fact": "which fact key",
    "value": "the fact value",
    "suggestion": "how to bridge to content"
  },
  "objectionSniper": {
    "detected": true/false,
    "objection": "price|trust|value|timing|none",
    "rebuttals": ["witty rebuttal 1", "witty rebuttal 2"]
  },
  "draftMessage": "suggested next message (under 40 words)",
  "confidence": 0.0-1.0
}

Rules:
- ALL sections must be present. Use detected=false when nothing found.
- Match the fan's tone preference and emotional needs
- If Strike Zone is green: soft sell in draft
- If yellow: rapport building in draft
- If red: pure connection, no selling in draft
- Keep draftMessage natural, flirty, under 40 words
- Be honest about confidence — low data = low confidence`

// intelligenceLine flattens the structured fan fields into one compact line.
func intelligenceLine(fan *types.Fan) string {
	if fan == nil {
		return "No intelligence data (new fan)"
	}
	score := 0
	if fan.IntentScore != nil {
		score = *fan.IntentScore
	}
	return fmt.Sprintf("Stage=%s Type=%s Tone=%s Price=%s Intent=%d/100 Buyer=%s Emotion=%s Format=%s",
		orUnknown(fan.Stage), orUnknown(fan.FanType), orUnknown(fan.TonePreference),
		orUnknown(fan.PriceRange), score, orUnknown(fan.BuyerType),
		orUnknown(fan.EmotionalDrivers), orUnknown(fan.FormatPreference))
}

func orUnknown(s string) string {
	if s == "" {
		return "?"
	}
	return s
}

func buildUserPrompt(fanName string, zone StrikeZoneResult, quality Quality, intelLine, compressedContext string) string {
	if fanName == "" {
		fanName = "Anonymous"
	}
	return fmt.Sprintf("Fan: %s\nStrike Zone: %s — %s\nContext Quality: %s\n\n%s\n\n%s",
		fanName, strings.ToUpper(string(zone.Zone)), zone.Reason, quality, intelLine, compressedContext)
}
