// Package ofapi wraps the fan-platform proxy API used to read chat history.
package ofapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/velvetdesk/agencyops-backend/internal/logger"
	"github.com/velvetdesk/agencyops-backend/internal/utils"
)

// Message is a single chat message as returned by the proxy.
type Message struct {
	Text       string
	FromUserID string
	CreatedAt  time.Time
}

type Client interface {
	// GetChatMessages returns the most recent messages for a chat, newest
	// first, as the upstream API serves them.
	GetChatMessages(ctx context.Context, accountName, chatID, apiKey string, limit int) ([]Message, error)
}

type client struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

func NewClient(log *logger.Logger) Client {
	baseURL := utils.GetEnv("OFAPI_BASE_URL", "https://app.ofapi.com/api", log)
	timeout := utils.GetEnvAsInt("OFAPI_TIMEOUT_SECONDS", 15, log)
	return &client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: time.Duration(timeout) * time.Second},
		log:        log.With("client", "ofapi"),
	}
}

type rawMessage struct {
	Text     string `json:"text"`
	FromUser struct {
		ID json.Number `json:"id"`
	} `json:"fromUser"`
	CreatedAt string `json:"createdAt"`
	PostedAt  string `json:"postedAt"`
}

type chatMessagesResponse struct {
	Data struct {
		List []rawMessage `json:"list"`
	} `json:"data"`
	List []rawMessage `json:"list"`
}

func (c *client) GetChatMessages(ctx context.Context, accountName, chatID, apiKey string, limit int) ([]Message, error) {
	endpoint := fmt.Sprintf("%s/%s/chats/%s/messages?limit=%d",
		c.baseURL, url.PathEscape(accountName), url.PathEscape(chatID), limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build chat messages request: %w", err)
	}
	req.Header.Set("apikey", apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat messages request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read chat messages response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Warn("chat messages request failed", "status", resp.StatusCode, "chat_id", chatID)
		return nil, fmt.Errorf("chat messages request: status %d", resp.StatusCode)
	}

	var parsed chatMessagesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode chat messages response: %w", err)
	}
	list := parsed.Data.List
	if len(list) == 0 {
		list = parsed.List
	}

	messages := make([]Message, 0, len(list))
	for _, raw := range list {
		msg := Message{
			Text:       StripMarkup(raw.Text),
			FromUserID: raw.FromUser.ID.String(),
		}
		ts := raw.CreatedAt
		if ts == "" {
			ts = raw.PostedAt
		}
		if ts != "" {
			if parsedTS, err := time.Parse(time.RFC3339, ts); err == nil {
				msg.CreatedAt = parsedTS
			}
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

var (
	brTagRe   = regexp.MustCompile(`(?i)<br\s*/?>`)
	htmlTagRe = regexp.MustCompile(`<[^>]+>`)
)

var htmlEntities = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&nbsp;", " ",
)

// StripMarkup flattens the platform's HTML message bodies to plain text.
func StripMarkup(s string) string {
	s = brTagRe.ReplaceAllString(s, "\n")
	s = htmlTagRe.ReplaceAllString(s, "")
	s = htmlEntities.Replace(s)
	return strings.TrimSpace(s)
}
