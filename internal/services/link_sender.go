package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/terraincognita07/miffy/internal/logging"
)

// LinkSender delivers a sign-in link to the address it was issued for.
type LinkSender interface {
	SendSignInLink(ctx context.Context, email string, link string) error
}

// LogLinkSender writes links to the log. It is the development default when
// no delivery webhook is configured.
type LogLinkSender struct {
	logger *logging.Logger
}

func NewLogLinkSender(logger *logging.Logger) *LogLinkSender {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &LogLinkSender{logger: logger.WithComponent("auth")}
}

func (sender *LogLinkSender) SendSignInLink(ctx context.Context, email string, link string) error {
	sender.logger.Infow("sign-in link issued", "email", email, "link", link)
	return nil
}

// WebhookLinkSender posts {"email", "link"} as JSON to a mail relay.
type WebhookLinkSender struct {
	endpoint string
	client   *http.Client
}

func NewWebhookLinkSender(endpoint string) *WebhookLinkSender {
	return &WebhookLinkSender{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: 8 * time.Second,
		},
	}
}

func (sender *WebhookLinkSender) SendSignInLink(ctx context.Context, email string, link string) error {
	body, err := json.Marshal(map[string]string{"email": email, "link": link})
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sender.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := sender.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("webhook status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
