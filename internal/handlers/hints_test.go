package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/velvetdesk/agencyops-backend/internal/hints"
	"github.com/velvetdesk/agencyops-backend/internal/logger"
	"github.com/velvetdesk/agencyops-backend/internal/types"
	"gorm.io/gorm"
)

type fakeCreatorRepo struct {
	creator *types.Creator
	err     error
}

func (f *fakeCreatorRepo) GetByID(id uuid.UUID, tx *gorm.DB) (*types.Creator, error) {
	return f.creator, f.err
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func newHintsTestRouter(t *testing.T, creators *fakeCreatorRepo, cache *hints.HintCache, limiter *hints.RateLimiter) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewHintsHandler(creators, nil, cache, limiter, testLogger(t))
	router := gin.New()
	router.POST("/api/inbox/ai-hints", h.GetClosingHints)
	return router
}

func postHints(t *testing.T, router *gin.Engine, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/inbox/ai-hints", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetClosingHintsInvalidBody(t *testing.T) {
	router := newHintsTestRouter(t, &fakeCreatorRepo{}, hints.NewHintCache(), hints.NewRateLimiter())
	w := postHints(t, router, gin.H{"chatId": "c1"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetClosingHintsBadCreatorID(t *testing.T) {
	router := newHintsTestRouter(t, &fakeCreatorRepo{}, hints.NewHintCache(), hints.NewRateLimiter())
	w := postHints(t, router, gin.H{"creatorId": "not-a-uuid", "chatId": "c1", "fanId": "f1"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetClosingHintsCreatorNotFound(t *testing.T) {
	router := newHintsTestRouter(t, &fakeCreatorRepo{creator: nil}, hints.NewHintCache(), hints.NewRateLimiter())
	w := postHints(t, router, gin.H{"creatorId": uuid.NewString(), "chatId": "c1", "fanId": "f1"})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestGetClosingHintsCreatorNotConfigured(t *testing.T) {
	creator := &types.Creator{ID: uuid.New(), Name: "Ava"}
	router := newHintsTestRouter(t, &fakeCreatorRepo{creator: creator}, hints.NewHintCache(), hints.NewRateLimiter())
	w := postHints(t, router, gin.H{"creatorId": creator.ID.String(), "chatId": "c1", "fanId": "f1"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	var envelope ErrorEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error.Code != "creator_not_configured" {
		t.Errorf("code = %q", envelope.Error.Code)
	}
}

func TestGetClosingHintsRateLimited(t *testing.T) {
	creator := &types.Creator{ID: uuid.New(), OfapiAccount: "acct", OfapiToken: "key"}
	limiter := hints.NewRateLimiter()
	limiter.Allow(creator.ID.String() + ":c1")

	router := newHintsTestRouter(t, &fakeCreatorRepo{creator: creator}, hints.NewHintCache(), limiter)
	w := postHints(t, router, gin.H{"creatorId": creator.ID.String(), "chatId": "c1", "fanId": "f1"})
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", w.Code)
	}
}

func TestGetClosingHintsRateLimitedWithFallback(t *testing.T) {
	creator := &types.Creator{ID: uuid.New(), OfapiAccount: "acct", OfapiToken: "key"}
	limiter := hints.NewRateLimiter()
	limiter.Allow(creator.ID.String() + ":c1")

	cache := hints.NewHintCache()
	prior := &hints.HintResult{Version: "v1", DraftMessage: "stored"}
	cache.Set(hints.BuildCacheKey(creator.ID.String(), "c1", 0), prior)

	router := newHintsTestRouter(t, &fakeCreatorRepo{creator: creator}, cache, limiter)
	w := postHints(t, router, gin.H{"creatorId": creator.ID.String(), "chatId": "c1", "fanId": "f1"})
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	var body struct {
		Error  string            `json:"error"`
		Cached bool              `json:"cached"`
		Hints  *hints.HintResult `json:"hints"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "rate_limited" || !body.Cached {
		t.Errorf("body = %+v", body)
	}
	if body.Hints == nil || body.Hints.DraftMessage != "stored" {
		t.Errorf("fallback hints = %+v", body.Hints)
	}
}
