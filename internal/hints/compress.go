package hints

import (
	"fmt"
	"strings"
)

// maxContextChars bounds the compressed bundle at roughly 1500 tokens.
const maxContextChars = 6000

// messageFloorChars guarantees the recent-message section some room even
// when higher-priority sections consumed the budget.
const messageFloorChars = 500

// Compress serializes the bundle into one prompt-ready text block under the
// character budget. Sections are written whole in strict priority order and
// skipped entirely once they no longer fit; only the trailing message section
// is allowed to consume a partial remainder, truncated line by line.
func Compress(bundle *ContextBundle) string {
	var parts []string
	charCount := 0

	addIfBudget := func(label, content string) {
		if charCount+len(content) > maxContextChars {
			return
		}
		parts = append(parts, fmt.Sprintf("## %s\n%s", label, content))
		charCount += len(label) + len(content) + 5
	}

	if len(bundle.TemporalAnchors) > 0 {
		lines := make([]string, 0, len(bundle.TemporalAnchors))
		for _, a := range bundle.TemporalAnchors {
			lines = append(lines, fmt.Sprintf("- %s: %q (%dd ago)", a.Key, a.Value, a.DaysAgo))
		}
		addIfBudget("Temporal Anchors (ACT ON THESE FIRST)", strings.Join(lines, "\n"))
	}

	addIfBudget("Purchase Profile", bundle.PurchaseSummary)

	if len(bundle.TopFacts) > 0 {
		facts := bundle.TopFacts
		if len(facts) > 10 {
			facts = facts[:10]
		}
		lines := make([]string, 0, len(facts))
		for _, f := range facts {
			lines = append(lines, fmt.Sprintf("- %s: %q (%s)", f.Key, f.Value, f.Age))
		}
		addIfBudget("Personal Facts", strings.Join(lines, "\n"))
	}

	if len(bundle.ObjectionHistory) > 0 {
		addIfBudget("Objection History", strings.Join(bundle.ObjectionHistory, "\n"))
	}

	if len(bundle.RetrievedSnippets) > 0 {
		snippets := bundle.RetrievedSnippets
		if len(snippets) > 5 {
			snippets = snippets[:5]
		}
		addIfBudget("Relevant Historical Messages", strings.Join(snippets, "\n"))
	}

	msgBudget := maxContextChars - charCount
	if msgBudget < messageFloorChars {
		msgBudget = messageFloorChars
	}
	var msgContent strings.Builder
	for _, msg := range bundle.RecentMessages {
		if msgContent.Len()+len(msg) > msgBudget {
			break
		}
		msgContent.WriteString(msg)
		msgContent.WriteString("\n")
	}
	if msgContent.Len() > 0 {
		parts = append(parts, "## Recent Fan Messages\n"+strings.TrimSpace(msgContent.String()))
	}

	if len(bundle.MissingContext) > 0 {
		parts = append(parts, "## Missing Context: "+strings.Join(bundle.MissingContext, ", "))
	}

	return strings.Join(parts, "\n\n")
}
