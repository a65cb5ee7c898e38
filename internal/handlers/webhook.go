package handlers

import (
	"context"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/tasuku-app/tasuku/internal/line"
)

// MessageHandler interprets one inbound chat message and returns reply texts.
type MessageHandler interface {
	HandleMessage(ctx context.Context, userID, text string) ([]string, error)
}

// Replier sends reply messages back through the chat platform.
type Replier interface {
	Reply(ctx context.Context, replyToken string, texts []string) error
}

// WebhookHandler receives chat platform webhook deliveries and dispatches
// text messages to the command executor.
type WebhookHandler struct {
	channelSecret string
	executor      MessageHandler
	replier       Replier
	logger        *zap.Logger
}

// NewWebhookHandler creates a webhook handler.
func NewWebhookHandler(channelSecret string, executor MessageHandler, replier Replier, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		channelSecret: channelSecret,
		executor:      executor,
		replier:       replier,
		logger:        logger,
	}
}

const maxWebhookBodySize = 1 << 20

const msgProcessingFailed = "処理に失敗しました。時間をおいてもう一度お試しください"

// Handle processes one webhook delivery. A bad signature stops everything
// before any event is looked at.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodySize))
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Failed to read request body")
		return
	}

	if !line.ValidateSignature(h.channelSecret, body, r.Header.Get(line.SignatureHeader)) {
		h.logger.Warn("webhook_signature_invalid")
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Invalid signature")
		return
	}

	webhook, err := line.ParseWebhook(body)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid webhook payload")
		return
	}

	for _, event := range webhook.Events {
		h.dispatch(r.Context(), event)
	}

	respondJSON(w, http.StatusOK, map[string]any{"events": len(webhook.Events)})
}

// dispatch handles a single event. Errors are logged, never surfaced to the
// platform; the delivery as a whole still succeeds, but the user gets a
// generic failure reply instead of silence.
func (h *WebhookHandler) dispatch(ctx context.Context, event line.Event) {
	if event.Type != "message" || event.Message == nil || event.Message.Type != "text" {
		return
	}
	userID := event.Source.UserID
	if userID == "" {
		return
	}

	replies, err := h.executor.HandleMessage(ctx, userID, event.Message.Text)
	if err != nil {
		h.logger.Error("message_handling_failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		replies = []string{msgProcessingFailed}
	}
	if len(replies) == 0 {
		return
	}

	if err := h.replier.Reply(ctx, event.ReplyToken, replies); err != nil {
		h.logger.Error("reply_failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}
