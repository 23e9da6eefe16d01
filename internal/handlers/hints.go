package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/velvetdesk/agencyops-backend/internal/hints"
	"github.com/velvetdesk/agencyops-backend/internal/logger"
	"github.com/velvetdesk/agencyops-backend/internal/observability"
	"github.com/velvetdesk/agencyops-backend/internal/repos"
	"github.com/velvetdesk/agencyops-backend/internal/services"
)

type HintsHandler struct {
	creators     repos.CreatorRepo
	orchestrator *hints.Orchestrator
	cache        *hints.HintCache
	limiter      *hints.RateLimiter
	log          *logger.Logger
}

func NewHintsHandler(creators repos.CreatorRepo, orchestrator *hints.Orchestrator, cache *hints.HintCache, limiter *hints.RateLimiter, log *logger.Logger) *HintsHandler {
	return &HintsHandler{
		creators:     creators,
		orchestrator: orchestrator,
		cache:        cache,
		limiter:      limiter,
		log:          log.With("handler", "HintsHandler"),
	}
}

type hintsRequest struct {
	CreatorID string `json:"creatorId" binding:"required"`
	ChatID    string `json:"chatId" binding:"required"`
	FanID     string `json:"fanId" binding:"required"`
}

// GetClosingHints serves the inbox coaching panel. Rate-limit rejection is
// answered with the last cached result when one exists so the UI keeps
// showing advice while it waits out the window.
func (h *HintsHandler) GetClosingHints(c *gin.Context) {
	var req hintsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	creatorID, err := uuid.Parse(req.CreatorID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("invalid creatorId"))
		return
	}

	creator, err := h.creators.GetByID(creatorID, nil)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "internal_error", errors.New("could not load creator"))
		return
	}
	if creator == nil {
		RespondError(c, http.StatusNotFound, "creator_not_found", errors.New("creator not found"))
		return
	}
	if creator.OfapiAccount == "" || creator.OfapiToken == "" {
		RespondError(c, http.StatusBadRequest, "creator_not_configured", errors.New("creator has no platform credentials"))
		return
	}

	rateKey := creator.ID.String() + ":" + req.ChatID
	if !h.limiter.Allow(rateKey) {
		observability.Current().RateLimited.Inc()
		// Best effort: the key without a message timestamp may still hold
		// the last result stored for a quiet conversation.
		if prior := h.cache.Get(hints.BuildCacheKey(creator.ID.String(), req.ChatID, 0)); prior != nil {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":  "rate_limited",
				"hints":  prior,
				"cached": true,
			})
			return
		}
		RespondError(c, http.StatusTooManyRequests, "rate_limited", errors.New("please wait before requesting hints again"))
		return
	}

	result, cached, err := h.orchestrator.GetClosingHints(c.Request.Context(), hints.HintRequest{
		Creator:       creator,
		ChatID:        req.ChatID,
		FanExternalID: req.FanID,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotConfigured):
			RespondError(c, http.StatusServiceUnavailable, "hints_disabled", errors.New("closing hints are not configured"))
		case errors.Is(err, hints.ErrAdviceUnavailable):
			RespondError(c, http.StatusServiceUnavailable, "hints_unavailable", errors.New("closing hints unavailable"))
		default:
			h.log.Error("closing hints failed", "error", err, "chat_id", req.ChatID)
			RespondError(c, http.StatusInternalServerError, "internal_error", errors.New("closing hints failed"))
		}
		return
	}

	RespondOK(c, gin.H{"hints": result, "cached": cached})
}
