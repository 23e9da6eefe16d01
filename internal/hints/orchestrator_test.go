package hints

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/velvetdesk/agencyops-backend/internal/clients/ofapi"
	"github.com/velvetdesk/agencyops-backend/internal/services"
	"github.com/velvetdesk/agencyops-backend/internal/types"
	"gorm.io/gorm"
)

type fakeAdviceClient struct {
	content    string
	usage      *services.TokenUsage
	err        error
	calls      int
	configured bool
}

func (f *fakeAdviceClient) ChatJSON(ctx context.Context, system, user string) (string, *services.TokenUsage, error) {
	f.calls++
	return f.content, f.usage, f.err
}

func (f *fakeAdviceClient) Model() string    { return "gpt-4o-mini" }
func (f *fakeAdviceClient) Configured() bool { return f.configured }

type fakeCallLogRepo struct {
	entries []*types.HintCallLog
}

func (f *fakeCallLogRepo) Create(entry *types.HintCallLog, tx *gorm.DB) error {
	f.entries = append(f.entries, entry)
	return nil
}

type fakeEventRepo struct {
	events []*types.FanLifecycleEvent
}

func (f *fakeEventRepo) Create(event *types.FanLifecycleEvent, tx *gorm.DB) error {
	f.events = append(f.events, event)
	return nil
}

func newTestOrchestrator(t *testing.T, advice *fakeAdviceClient, fan *types.Fan) (*Orchestrator, *fakeCallLogRepo, *fakeEventRepo) {
	t.Helper()
	now := time.Now()
	assembler := newTestAssembler(t, &fakeFanRepo{fan: fan}, &fakeTransactionRepo{}, &fakeMessageClient{
		messages: []ofapi.Message{
			{Text: "hey", FromUserID: "fan-ext-1", CreatedAt: now.Add(-time.Hour)},
		},
	}, now)
	callLogs := &fakeCallLogRepo{}
	events := &fakeEventRepo{}
	o := NewOrchestrator(assembler, advice, NewHintCache(), callLogs, events, hintsTestLogger(t))
	return o, callLogs, events
}

func testHintRequest() HintRequest {
	return HintRequest{
		Creator: &types.Creator{
			ID:           uuid.New(),
			OfapiAccount: "acct",
			OfapiToken:   "key",
		},
		ChatID:        "chat-1",
		FanExternalID: "fan-ext-1",
	}
}

func TestGetClosingHintsNotConfigured(t *testing.T) {
	o, _, _ := newTestOrchestrator(t, &fakeAdviceClient{configured: false}, nil)
	_, _, err := o.GetClosingHints(context.Background(), testHintRequest())
	if !errors.Is(err, services.ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestGetClosingHintsCaching(t *testing.T) {
	advice := &fakeAdviceClient{
		configured: true,
		content:    fullAdvice,
		usage:      &services.TokenUsage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150},
	}
	fan := &types.Fan{ID: uuid.New(), Name: "Mike", Stage: "warming"}
	o, callLogs, events := newTestOrchestrator(t, advice, fan)
	req := testHintRequest()

	first, cached, err := o.GetClosingHints(context.Background(), req)
	if err != nil {
		t.Fatalf("GetClosingHints: %v", err)
	}
	if cached {
		t.Error("first call must not be cached")
	}
	if advice.calls != 1 {
		t.Fatalf("advice calls = %d, want 1", advice.calls)
	}

	second, cached, err := o.GetClosingHints(context.Background(), req)
	if err != nil {
		t.Fatalf("GetClosingHints: %v", err)
	}
	if !cached {
		t.Error("second call within TTL must be cached")
	}
	if second != first {
		t.Error("cached call must return the stored result unchanged")
	}
	if advice.calls != 1 {
		t.Errorf("advice calls = %d after cache hit, want 1", advice.calls)
	}

	if len(callLogs.entries) != 1 {
		t.Fatalf("call logs = %d, want 1", len(callLogs.entries))
	}
	if !callLogs.entries[0].Success || callLogs.entries[0].Model != "gpt-4o-mini" {
		t.Errorf("call log = %+v", callLogs.entries[0])
	}
	if len(events.events) != 1 || events.events[0].Type != "ai_hint_generated" {
		t.Fatalf("lifecycle events = %+v", events.events)
	}
}

func TestGetClosingHintsAdviceFailure(t *testing.T) {
	advice := &fakeAdviceClient{configured: true, err: errors.New("status 500")}
	o, callLogs, events := newTestOrchestrator(t, advice, &types.Fan{ID: uuid.New()})

	_, _, err := o.GetClosingHints(context.Background(), testHintRequest())
	if !errors.Is(err, ErrAdviceUnavailable) {
		t.Fatalf("err = %v, want ErrAdviceUnavailable", err)
	}
	if len(callLogs.entries) != 1 || callLogs.entries[0].Success {
		t.Errorf("failed call should be logged unsuccessful: %+v", callLogs.entries)
	}
	if len(events.events) != 0 {
		t.Errorf("no lifecycle event on failure, got %+v", events.events)
	}
}

func TestGetClosingHintsMalformedResponse(t *testing.T) {
	advice := &fakeAdviceClient{configured: true, content: `{"draftMessage":"hi"}`}
	o, _, _ := newTestOrchestrator(t, advice, &types.Fan{ID: uuid.New()})

	_, _, err := o.GetClosingHints(context.Background(), testHintRequest())
	if !errors.Is(err, ErrAdviceUnavailable) {
		t.Fatalf("err = %v, want ErrAdviceUnavailable on missing sections", err)
	}
}

func TestGetClosingHintsFailureNotCached(t *testing.T) {
	advice := &fakeAdviceClient{configured: true, err: errors.New("boom")}
	o, _, _ := newTestOrchestrator(t, advice, &types.Fan{ID: uuid.New()})
	req := testHintRequest()

	if _, _, err := o.GetClosingHints(context.Background(), req); err == nil {
		t.Fatal("expected failure")
	}
	advice.err = nil
	advice.content = fullAdvice
	result, cached, err := o.GetClosingHints(context.Background(), req)
	if err != nil {
		t.Fatalf("recovery call: %v", err)
	}
	if cached || result == nil {
		t.Error("failure must not poison the cache")
	}
	if advice.calls != 2 {
		t.Errorf("advice calls = %d, want 2", advice.calls)
	}
}

func TestGetClosingHintsNilFan(t *testing.T) {
	advice := &fakeAdviceClient{configured: true, content: fullAdvice}
	o, callLogs, events := newTestOrchestrator(t, advice, nil)

	result, _, err := o.GetClosingHints(context.Background(), testHintRequest())
	if err != nil {
		t.Fatalf("GetClosingHints: %v", err)
	}
	// Unknown fan still produces a result; confidence is clamped by the
	// minimal context and no lifecycle event can be attributed.
	if result.ContextQuality != QualityMinimal {
		t.Errorf("quality = %s", result.ContextQuality)
	}
	if result.Confidence > 0.3 {
		t.Errorf("confidence = %v, want clamped to 0.3", result.Confidence)
	}
	if len(events.events) != 0 {
		t.Errorf("lifecycle event recorded without a fan: %+v", events.events)
	}
	if len(callLogs.entries) != 1 || callLogs.entries[0].FanID != nil {
		t.Errorf("call log fan attribution = %+v", callLogs.entries)
	}
}
