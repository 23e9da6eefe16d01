package hints

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/velvetdesk/agencyops-backend/internal/clients/ofapi"
	"github.com/velvetdesk/agencyops-backend/internal/logger"
	"github.com/velvetdesk/agencyops-backend/internal/repos"
	"github.com/velvetdesk/agencyops-backend/internal/types"
	"golang.org/x/sync/errgroup"
)

const (
	factMaxAgeDays     = 90
	factKeepConfidence = 0.7
	maxStoredFacts     = 15
	anchorMaxAge       = 7 * 24 * time.Hour
	recentWindowAge    = 24 * time.Hour
	messageFetchLimit  = 60
)

// temporalAnchorKeys is the fixed set of fact keys treated as act-now
// signals when fresh.
var temporalAnchorKeys = map[string]bool{
	"pet_sick":      true,
	"promise_made":  true,
	"birthday":      true,
	"avoid_topic":   true,
	"trigger_topic": true,
	"vacation":      true,
	"payday":        true,
	"breakup":       true,
	"promotion":     true,
	"loss":          true,
}

// AssembleParams identifies one conversation plus the platform credentials
// needed to read its message history.
type AssembleParams struct {
	CreatorID     uuid.UUID
	ChatID        string
	FanExternalID string
	AccountName   string
	APIKey        string
}

// Assembler builds context bundles. Sub-fetch failures never abort assembly;
// they degrade into missingContext tags so a hint can still be produced from
// whatever data survived.
type Assembler struct {
	fans         repos.FanRepo
	transactions repos.FanTransactionRepo
	messages     ofapi.Client
	keywords     []KeywordCategory
	log          *logger.Logger
	now          func() time.Time
}

func NewAssembler(fans repos.FanRepo, transactions repos.FanTransactionRepo, messages ofapi.Client, keywords []KeywordCategory, log *logger.Logger) *Assembler {
	return &Assembler{
		fans:         fans,
		transactions: transactions,
		messages:     messages,
		keywords:     keywords,
		log:          log.With("component", "Assembler"),
		now:          time.Now,
	}
}

// Assemble builds the full context bundle for a conversation. The returned
// bundle always carries a quality rating and lastFanMessageTs, even when
// every source was empty or unreachable.
func (a *Assembler) Assemble(ctx context.Context, params AssembleParams) (*ContextBundle, *types.Fan) {
	now := a.now()
	bundle := &ContextBundle{MissingContext: []string{}}

	fan, err := a.fans.GetByExternalID(params.CreatorID, params.FanExternalID, nil)
	if err != nil {
		a.log.Warn("fan profile fetch failed, degrading", "error", err, "fan_id", params.FanExternalID)
		fan = nil
	}

	var (
		transactions []types.FanTransaction
		rawMessages  []ofapi.Message
		fetchFailed  bool
	)
	g, gctx := errgroup.WithContext(ctx)
	if fan != nil {
		fanID := fan.ID
		g.Go(func() error {
			txs, err := a.transactions.ListRecent(fanID, 10, nil)
			if err != nil {
				a.log.Warn("transaction fetch failed, degrading", "error", err, "fan_id", fanID.String())
				return nil
			}
			transactions = txs
			return nil
		})
	}
	g.Go(func() error {
		msgs, err := a.messages.GetChatMessages(gctx, params.AccountName, params.ChatID, params.APIKey, messageFetchLimit)
		if err != nil {
			a.log.Warn("message fetch failed, degrading", "error", err, "chat_id", params.ChatID)
			fetchFailed = true
			return nil
		}
		rawMessages = msgs
		return nil
	})
	_ = g.Wait()

	bundle.TopFacts = a.topFacts(fan, now)
	if len(bundle.TopFacts) == 0 {
		bundle.MissingContext = append(bundle.MissingContext, "no_personal_facts")
	}
	bundle.TemporalAnchors = a.temporalAnchors(fan, now)
	bundle.ObjectionHistory = a.objectionHistory(fan)

	lifetimeSpend := 0.0
	if fan != nil {
		lifetimeSpend = fan.LifetimeSpend
	}
	bundle.PurchaseSummary, bundle.PurchaseContexts = a.purchaseSummary(fan, transactions, now)
	if lifetimeSpend == 0 {
		bundle.MissingContext = append(bundle.MissingContext, "no_purchase_history")
	}

	allMessages := toChatMessages(rawMessages, params.FanExternalID)
	if fetchFailed {
		bundle.MissingContext = append(bundle.MissingContext, "could_not_fetch_messages")
	}
	bundle.RecentMessages = selectRecentWindow(allMessages, now)
	if len(bundle.RecentMessages) < 3 {
		bundle.MissingContext = append(bundle.MissingContext, "very_few_messages")
	}
	bundle.LastFanMessageTs = lastFanMessageTs(allMessages)
	bundle.RetrievedSnippets = retrieveSnippets(a.keywords, allMessages, now)

	bundle.ContextQuality = classifyQuality(len(bundle.TopFacts), len(bundle.RecentMessages), lifetimeSpend)
	return bundle, fan
}

// topFacts drops stale low-confidence facts, orders by recency, and caps the
// list. A fact older than 90 days survives only at confidence 0.7 or above.
func (a *Assembler) topFacts(fan *types.Fan, now time.Time) []FactLine {
	if fan == nil {
		return nil
	}
	kept := make([]types.FanFact, 0, len(fan.Facts))
	for _, f := range fan.Facts {
		ageDays := now.Sub(f.ConfirmedAt()).Hours() / 24
		if ageDays > factMaxAgeDays && f.Confidence < factKeepConfidence {
			continue
		}
		kept = append(kept, f)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].ConfirmedAt().After(kept[j].ConfirmedAt())
	})
	if len(kept) > maxStoredFacts {
		kept = kept[:maxStoredFacts]
	}
	lines := make([]FactLine, 0, len(kept))
	for _, f := range kept {
		ageDays := int(now.Sub(f.ConfirmedAt()).Hours() / 24)
		age := fmt.Sprintf("%dd ago", ageDays)
		switch ageDays {
		case 0:
			age = "today"
		case 1:
			age = "yesterday"
		}
		lines = append(lines, FactLine{Key: f.Key, Value: f.Value, Age: age})
	}
	return lines
}

func (a *Assembler) temporalAnchors(fan *types.Fan, now time.Time) []Anchor {
	if fan == nil {
		return nil
	}
	var anchors []Anchor
	for _, f := range fan.Facts {
		if !temporalAnchorKeys[f.Key] {
			continue
		}
		age := now.Sub(f.ConfirmedAt())
		if age >= anchorMaxAge {
			continue
		}
		anchors = append(anchors, Anchor{
			Key:     f.Key,
			Value:   f.Value,
			DaysAgo: int(age.Hours() / 24),
		})
	}
	return anchors
}

// objectionHistory synthesizes at most 3 lines: last objection, top
// objection when different, and recent purchase-type evidence from
// lifecycle events.
func (a *Assembler) objectionHistory(fan *types.Fan) []string {
	if fan == nil {
		return nil
	}
	var history []string
	if fan.LastObjection != "" {
		history = append(history, "Last objection: "+fan.LastObjection)
	}
	if fan.TopObjection != "" && fan.TopObjection != fan.LastObjection {
		history = append(history, "Most common objection: "+fan.TopObjection)
	}
	var evidence []string
	for _, e := range fan.LifecycleEvents {
		if e.Type != "purchase" || len(e.Metadata) == 0 {
			continue
		}
		meta := parseEventMetadata(e.Metadata)
		if meta.PurchaseType == "" {
			continue
		}
		evidence = append(evidence, fmt.Sprintf("$%v (%s)", meta.Amount, meta.PurchaseType))
		if len(evidence) == 3 {
			break
		}
	}
	if len(evidence) > 0 {
		history = append(history, fmt.Sprintf("Last %d purchases were: %s", len(evidence), strings.Join(evidence, ", ")))
	}
	return history
}

func (a *Assembler) purchaseSummary(fan *types.Fan, transactions []types.FanTransaction, now time.Time) (string, []PurchaseContext) {
	if fan == nil {
		return "No purchase data", nil
	}
	last30d := 0.0
	cutoff := now.Add(-30 * 24 * time.Hour)
	for _, t := range transactions {
		if t.Date.After(cutoff) {
			last30d += t.Amount
		}
	}
	buyerType := fan.BuyerType
	if buyerType == "" {
		buyerType = "unknown"
	}
	lastPurchase := "never"
	if fan.LastPurchaseAt != nil {
		lastPurchase = fmt.Sprintf("%dd ago", int(now.Sub(*fan.LastPurchaseAt).Hours()/24))
	}
	summary := fmt.Sprintf("Lifetime: $%.0f | Last 30d: $%.0f | Avg order: $%.0f | Type: %s | Last purchase: %s",
		fan.LifetimeSpend, last30d, fan.AvgOrderValue, buyerType, lastPurchase)

	n := len(transactions)
	if n > 5 {
		n = 5
	}
	contexts := make([]PurchaseContext, 0, n)
	for _, t := range transactions[:n] {
		label := t.Type
		if label == "" {
			label = "purchase"
		}
		contexts = append(contexts, PurchaseContext{
			When:    fmt.Sprintf("%dd ago", int(now.Sub(t.Date).Hours()/24)),
			Amount:  t.Amount,
			Context: fmt.Sprintf("$%v %s", t.Amount, label),
		})
	}
	return summary, contexts
}

func toChatMessages(raw []ofapi.Message, fanExternalID string) []ChatMessage {
	msgs := make([]ChatMessage, 0, len(raw))
	for _, m := range raw {
		if m.Text == "" {
			continue
		}
		msgs = append(msgs, ChatMessage{
			Text:    m.Text,
			FromFan: m.FromUserID == fanExternalID,
			TS:      m.CreatedAt.UnixMilli(),
		})
	}
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].TS < msgs[j].TS })
	return msgs
}

// selectRecentWindow picks the fan messages to show the model. An active
// conversation (5+ messages inside 24h) is annotated in hours so month-old
// chatter cannot dilute it; a quiet one falls back to the last 20 fan
// messages annotated in days.
func selectRecentWindow(all []ChatMessage, now time.Time) []string {
	windowStart := now.Add(-recentWindowAge).UnixMilli()
	var window []ChatMessage
	for _, m := range all {
		if m.TS > windowStart {
			window = append(window, m)
		}
	}
	if len(window) >= 5 {
		var out []string
		for _, m := range window {
			if !m.FromFan {
				continue
			}
			out = append(out, fmt.Sprintf("[%dh ago] %s", roundHours(now, m.TS), m.Text))
		}
		return out
	}
	var fanMsgs []ChatMessage
	for _, m := range all {
		if m.FromFan {
			fanMsgs = append(fanMsgs, m)
		}
	}
	if len(fanMsgs) > 20 {
		fanMsgs = fanMsgs[len(fanMsgs)-20:]
	}
	var out []string
	for _, m := range fanMsgs {
		out = append(out, fmt.Sprintf("[%dd ago] %s", roundDays(now, m.TS), m.Text))
	}
	return out
}

func lastFanMessageTs(all []ChatMessage) int64 {
	var max int64
	for _, m := range all {
		if m.FromFan && m.TS > max {
			max = m.TS
		}
	}
	return max
}

type eventMetadata struct {
	PurchaseType string
	Amount       float64
}

func parseEventMetadata(raw []byte) eventMetadata {
	var parsed struct {
		PurchaseType string  `json:"purchaseType"`
		Amount       float64 `json:"amount"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return eventMetadata{}
	}
	return eventMetadata{PurchaseType: parsed.PurchaseType, Amount: parsed.Amount}
}
