package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/velvetdesk/agencyops-backend/internal/logger"
	"github.com/velvetdesk/agencyops-backend/internal/utils"
)

// ErrNotConfigured is returned when no advice API key is set. Callers treat
// this as "feature off", not as a failure.
var ErrNotConfigured = errors.New("advice client not configured")

// TokenUsage mirrors the usage block of a chat completion response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// AdviceClient sends a system+user prompt pair to the chat completion API
// and returns the raw JSON content of the first choice. Calls are a single
// attempt; anything time-sensitive enough to want hints is too time-sensitive
// to wait on retries.
type AdviceClient interface {
	ChatJSON(ctx context.Context, system, user string) (string, *TokenUsage, error)
	Model() string
	Configured() bool
}

type adviceClient struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
	log         *logger.Logger
}

func NewAdviceClient(log *logger.Logger) AdviceClient {
	apiKey := utils.GetEnv("OPENAI_API_KEY", "", nil)
	baseURL := utils.GetEnv("OPENAI_BASE_URL", "https://api.openai.com/v1", log)
	model := utils.GetEnv("OPENAI_MODEL", "gpt-4o-mini", log)
	timeout := utils.GetEnvAsInt("OPENAI_TIMEOUT_SECONDS", 30, log)
	temperature := utils.GetEnvAsFloat("OPENAI_TEMPERATURE", 0.4, log)
	maxTokens := utils.GetEnvAsInt("OPENAI_MAX_TOKENS", 500, log)

	if apiKey == "" {
		log.Warn("OPENAI_API_KEY not set, closing hints disabled")
	}
	return &adviceClient{
		apiKey:      apiKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		httpClient:  &http.Client{Timeout: time.Duration(timeout) * time.Second},
		log:         log.With("service", "AdviceClient"),
	}
}

func (c *adviceClient) Model() string {
	return c.model
}

func (c *adviceClient) Configured() bool {
	return c.apiKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	MaxTokens      int           `json:"max_tokens"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *TokenUsage `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *adviceClient) ChatJSON(ctx context.Context, system, user string) (string, *TokenUsage, error) {
	if c.apiKey == "" {
		return "", nil, ErrNotConfigured
	}

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	reqBody.ResponseFormat.Type = "json_object"

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", nil, fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", nil, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("chat completion request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", nil, fmt.Errorf("read chat completion response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", nil, fmt.Errorf("decode chat completion response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := "unknown error"
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		c.log.Warn("chat completion failed", "status", resp.StatusCode, "error", msg)
		return "", parsed.Usage, fmt.Errorf("chat completion: status %d: %s", resp.StatusCode, msg)
	}
	if len(parsed.Choices) == 0 {
		return "", parsed.Usage, fmt.Errorf("chat completion: no choices returned")
	}

	c.log.Debug("chat completion ok",
		"model", c.model,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return parsed.Choices[0].Message.Content, parsed.Usage, nil
}
