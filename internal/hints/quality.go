package hints

// classifyQuality rates bundle coverage. Rich requires facts, an active
// conversation, and purchase history all at once; partial needs only a
// foothold in one of the first two.
func classifyQuality(factCount, messageCount int, lifetimeSpend float64) Quality {
	if factCount >= 5 && messageCount >= 10 && lifetimeSpend > 0 {
		return QualityRich
	}
	if factCount >= 2 || messageCount >= 5 {
		return QualityPartial
	}
	return QualityMinimal
}
