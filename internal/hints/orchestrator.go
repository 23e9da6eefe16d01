package hints

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/velvetdesk/agencyops-backend/internal/logger"
	"github.com/velvetdesk/agencyops-backend/internal/observability"
	"github.com/velvetdesk/agencyops-backend/internal/repos"
	"github.com/velvetdesk/agencyops-backend/internal/services"
	"github.com/velvetdesk/agencyops-backend/internal/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
)

// HintRequest identifies one conversation for which hints are wanted.
type HintRequest struct {
	Creator       *types.Creator
	ChatID        string
	FanExternalID string
}

// Orchestrator runs the full pipeline: assemble, cache lookup, strike zone,
// compression, remote advice call, normalization, cache store. Rate limiting
// is the transport layer's concern; by the time a request reaches here it has
// already been admitted.
type Orchestrator struct {
	assembler *Assembler
	advice    services.AdviceClient
	cache     *HintCache
	callLogs  repos.HintCallLogRepo
	events    repos.FanLifecycleEventRepo
	log       *logger.Logger
}

func NewOrchestrator(assembler *Assembler, advice services.AdviceClient, cache *HintCache, callLogs repos.HintCallLogRepo, events repos.FanLifecycleEventRepo, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		assembler: assembler,
		advice:    advice,
		cache:     cache,
		callLogs:  callLogs,
		events:    events,
		log:       log.With("component", "Orchestrator"),
	}
}

// GetClosingHints returns the advice record for a conversation and whether it
// was served from cache. The cache key includes the true last fan message
// timestamp observed during assembly, so new inbound messages always miss.
func (o *Orchestrator) GetClosingHints(ctx context.Context, req HintRequest) (*HintResult, bool, error) {
	if !o.advice.Configured() {
		return nil, false, services.ErrNotConfigured
	}

	bundle, fan := o.assembler.Assemble(ctx, AssembleParams{
		CreatorID:     req.Creator.ID,
		ChatID:        req.ChatID,
		FanExternalID: req.FanExternalID,
		AccountName:   req.Creator.OfapiAccount,
		APIKey:        req.Creator.OfapiToken,
	})

	key := BuildCacheKey(req.Creator.ID.String(), req.ChatID, bundle.LastFanMessageTs)
	if cached := o.cache.Get(key); cached != nil {
		observability.Current().HintCache.Inc("hit")
		return cached, true, nil
	}
	observability.Current().HintCache.Inc("miss")

	result, err := o.computeHints(ctx, req, bundle, fan)
	if err != nil {
		return nil, false, err
	}
	o.cache.Set(key, result)
	o.recordGenerated(fan, result)
	return result, false, nil
}

func (o *Orchestrator) computeHints(ctx context.Context, req HintRequest, bundle *ContextBundle, fan *types.Fan) (*HintResult, error) {
	var (
		intentScore   *int
		stage         string
		lastMessageAt *time.Time
		fanName       string
	)
	if fan != nil {
		intentScore = fan.IntentScore
		stage = fan.Stage
		lastMessageAt = fan.LastMessageAt
		fanName = fan.Name
	}
	zone := ComputeStrikeZone(intentScore, stage, lastMessageAt, time.Now())
	userPrompt := buildUserPrompt(fanName, zone, bundle.ContextQuality, intelligenceLine(fan), Compress(bundle))

	tracer := otel.Tracer("agencyops/hints")
	spanCtx, span := tracer.Start(ctx, "advice.chat", trace.WithAttributes(
		attribute.String("advice.model", o.advice.Model()),
		attribute.String("hints.context_quality", string(bundle.ContextQuality)),
		attribute.String("hints.strike_zone", string(zone.Zone)),
	))
	start := time.Now()
	content, usage, err := o.advice.ChatJSON(spanCtx, hintsSystemPrompt, userPrompt)
	span.End()
	observability.Current().AdviceLatency.Observe(time.Since(start).Seconds(), o.advice.Model())

	o.logCall(req, fan, userPrompt, content, usage, err)

	if err != nil {
		if errors.Is(err, services.ErrNotConfigured) {
			observability.Current().AdviceRequests.Inc("not_configured")
			return nil, err
		}
		observability.Current().AdviceRequests.Inc("error")
		o.log.Warn("advice call failed", "error", err, "chat_id", req.ChatID)
		return nil, ErrAdviceUnavailable
	}
	if usage != nil {
		observability.Current().AdviceTokens.Add(float64(usage.PromptTokens), "prompt")
		observability.Current().AdviceTokens.Add(float64(usage.CompletionTokens), "completion")
	}

	result, err := normalizeAdvice(content, zone, bundle.ContextQuality, bundle.MissingContext, usage)
	if err != nil {
		observability.Current().AdviceRequests.Inc("error")
		o.log.Warn("advice response rejected", "error", err, "chat_id", req.ChatID)
		return nil, err
	}
	observability.Current().AdviceRequests.Inc("ok")
	return result, nil
}

// logCall persists the advice exchange for cost tracking. Best effort; a
// write failure never blocks the hint from being returned.
func (o *Orchestrator) logCall(req HintRequest, fan *types.Fan, prompt, response string, usage *services.TokenUsage, callErr error) {
	if o.callLogs == nil {
		return
	}
	entry := &types.HintCallLog{
		CreatorID: &req.Creator.ID,
		ChatID:    req.ChatID,
		Model:     o.advice.Model(),
		Prompt:    prompt,
		Response:  response,
		Success:   callErr == nil,
	}
	if fan != nil {
		entry.FanID = &fan.ID
	}
	if callErr != nil {
		entry.Error = callErr.Error()
	}
	if usage != nil {
		if raw, err := json.Marshal(usage); err == nil {
			entry.Usage = datatypes.JSON(raw)
		}
	}
	_ = o.callLogs.Create(entry, nil)
}

// recordGenerated appends an ai_hint_generated lifecycle event so downstream
// analytics can correlate hints with later purchases. Best effort.
func (o *Orchestrator) recordGenerated(fan *types.Fan, result *HintResult) {
	if o.events == nil || fan == nil {
		return
	}
	meta := map[string]any{
		"strikeZone":     result.StrikeZone,
		"confidence":     result.Confidence,
		"contextQuality": result.ContextQuality,
		"hasBuyCue":      result.BuyCue.Detected,
		"hasBridge":      result.PersonalBridge.Detected,
		"hasObjection":   result.ObjectionSniper.Detected,
		"draftLength":    len(result.DraftMessage),
		"missingContext": result.MissingContext,
	}
	if result.TokenUsage != nil {
		meta["tokenUsage"] = result.TokenUsage.TotalTokens
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return
	}
	_ = o.events.Create(&types.FanLifecycleEvent{
		FanID:    fan.ID,
		Type:     "ai_hint_generated",
		Metadata: datatypes.JSON(raw),
	}, nil)
}
