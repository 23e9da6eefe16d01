package hints

import (
	"fmt"
	"time"
)

// noMessageHours stands in for "never messaged" so the staleness rule fires
// for fans with no message history.
const noMessageHours = 999

// ComputeStrikeZone classifies pitch readiness from the fan's intent score,
// lifecycle stage, and last-message recency. Deterministic, no remote calls.
func ComputeStrikeZone(intentScore *int, stage string, lastMessageAt *time.Time, now time.Time) StrikeZoneResult {
	score := 0
	if intentScore != nil {
		score = *intentScore
	}
	if stage == "" {
		stage = "new"
	}
	hoursSince := float64(noMessageHours)
	if lastMessageAt != nil {
		hoursSince = now.Sub(*lastMessageAt).Hours()
	}
	return strikeZoneAt(score, stage, hoursSince)
}

// strikeZoneAt is an ordered if-chain; the rule order is the contract.
func strikeZoneAt(score int, stage string, hoursSince float64) StrikeZoneResult {
	if score > 60 && (stage == "warming" || stage == "active_buyer" || stage == "reactivated") {
		return StrikeZoneResult{Zone: ZoneGreen, Reason: "High intent + active buyer — pitch now"}
	}
	if score > 80 {
		return StrikeZoneResult{Zone: ZoneGreen, Reason: fmt.Sprintf("Intent score %d — strong buying signals", score)}
	}
	if score < 30 && (stage == "at_risk" || stage == "churned") {
		return StrikeZoneResult{Zone: ZoneRed, Reason: "Low intent + at risk — rebuild rapport first"}
	}
	if hoursSince > 72 {
		return StrikeZoneResult{Zone: ZoneRed, Reason: "No messages in 3+ days — re-engage before pitching"}
	}
	if score < 20 {
		return StrikeZoneResult{Zone: ZoneRed, Reason: "Very low intent — focus on connection, not selling"}
	}
	if stage == "cooling_off" && hoursSince < 24 {
		return StrikeZoneResult{Zone: ZoneYellow, Reason: "Cooling off but recently active — tread carefully"}
	}
	return StrikeZoneResult{Zone: ZoneYellow, Reason: fmt.Sprintf("Moderate intent (%d) — warm up before pitching", score)}
}
