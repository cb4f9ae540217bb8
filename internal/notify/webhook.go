package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"EventSync/internal/config"
	"EventSync/internal/interfaces"
	"EventSync/internal/model"

	"github.com/sirupsen/logrus"
)

// WebhookMessage chat-bot text payload
type WebhookMessage struct {
	MsgType string      `json:"msg_type"`
	Content TextContent `json:"content"`
}

type TextContent struct {
	Text string `json:"text"`
}

// WebhookNotifier posts lifecycle milestones to a chat webhook
type WebhookNotifier struct {
	webhookURL string
	client     *http.Client
	logger     *logrus.Logger
}

// New returns a webhook notifier, or a no-op one when no webhook is configured
func New(cfg config.NotifyConfig, logger *logrus.Logger) interfaces.Notifier {
	if cfg.WebhookURL == "" {
		logger.Info("notifications disabled (no webhook url)")
		return Noop{}
	}
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	logger.Info("webhook notifications enabled")
	return &WebhookNotifier{
		webhookURL: cfg.WebhookURL,
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (n *WebhookNotifier) Notify(ctx context.Context, notice model.SyncNotice) error {
	return n.SendText(ctx, format(notice))
}

// SendText posts a plain text message
func (n *WebhookNotifier) SendText(ctx context.Context, text string) error {
	body, err := json.Marshal(WebhookMessage{MsgType: "text", Content: TextContent{Text: text}})
	if err != nil {
		return fmt.Errorf("marshal webhook message: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	n.logger.WithField("notice", text).Debug("webhook notification sent")
	return nil
}

func format(notice model.SyncNotice) string {
	var icon string
	switch notice.Kind {
	case model.NoticeEventWinner:
		icon = "🏆"
	case model.NoticeMatchReplayed:
		icon = "🔁"
	default:
		icon = "📋"
	}
	return fmt.Sprintf("%s [%s] %s", icon, notice.Kind, notice.Message)
}

// Noop drops every notice
type Noop struct{}

func (Noop) Notify(context.Context, model.SyncNotice) error { return nil }
