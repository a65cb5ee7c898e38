package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultAPIBaseURL is the messaging API endpoint.
	DefaultAPIBaseURL = "https://api.line.me"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 10 * time.Second
	// MaxMessagesPerReply is the platform limit on messages per reply/push.
	MaxMessagesPerReply = 5
)

// Client is a minimal messaging-API client: replying to webhook events and
// pushing messages to users.
type Client struct {
	channelToken string
	baseURL      string
	httpClient   *http.Client
	logger       *zap.Logger
}

// NewClient creates a messaging client for the given channel token.
func NewClient(channelToken string, logger *zap.Logger) *Client {
	return NewClientWithBaseURL(channelToken, DefaultAPIBaseURL, logger)
}

// NewClientWithBaseURL creates a messaging client against a custom endpoint.
func NewClientWithBaseURL(channelToken, baseURL string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}
	return &Client{
		channelToken: channelToken,
		baseURL:      baseURL,
		httpClient:   &http.Client{Timeout: DefaultTimeout},
		logger:       logger,
	}
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Reply sends text messages in response to a webhook event. Texts beyond the
// platform per-reply limit are folded into the last message.
func (c *Client) Reply(ctx context.Context, replyToken string, texts []string) error {
	payload := map[string]any{
		"replyToken": replyToken,
		"messages":   toTextMessages(texts),
	}
	return c.post(ctx, "/v2/bot/message/reply", payload)
}

// Push sends text messages to a user outside of a reply context.
func (c *Client) Push(ctx context.Context, to string, texts []string) error {
	payload := map[string]any{
		"to":       to,
		"messages": toTextMessages(texts),
	}
	return c.post(ctx, "/v2/bot/message/push", payload)
}

func toTextMessages(texts []string) []textMessage {
	if len(texts) > MaxMessagesPerReply {
		head := texts[:MaxMessagesPerReply-1]
		tail := texts[MaxMessagesPerReply-1:]
		merged := tail[0]
		for _, t := range tail[1:] {
			merged += "\n" + t
		}
		texts = append(append([]string{}, head...), merged)
	}

	messages := make([]textMessage, 0, len(texts))
	for _, t := range texts {
		messages = append(messages, textMessage{Type: "text", Text: t})
	}
	return messages
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.channelToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call messaging API: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			_ = closeErr
		}
	}()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if c.logger != nil {
			c.logger.Warn("messaging_api_error",
				zap.String("path", path),
				zap.Int("status_code", resp.StatusCode),
				zap.ByteString("response", detail),
			)
		}
		return fmt.Errorf("messaging API returned status %d", resp.StatusCode)
	}

	return nil
}
