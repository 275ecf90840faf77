package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/batemapf/site-differ/internal/config"
	"github.com/batemapf/site-differ/internal/fetcher"
	"github.com/batemapf/site-differ/internal/models"
	"github.com/batemapf/site-differ/internal/urlhandler"
)

// WebhookPayload is the JSON document posted to the configured webhook:
// the rendered subject and text body plus the structured digest, so
// receivers can either display the text or process the data.
type WebhookPayload struct {
	Subject string        `json:"subject"`
	Body    string        `json:"body"`
	Digest  models.Digest `json:"digest"`
}

// WebhookNotifier delivers digests as JSON POSTs to a configured webhook
// URL. Delivery is one attempt per digest; the caller decides whether a
// failed delivery matters.
type WebhookNotifier struct {
	webhookURL string
	httpClient *fetcher.HTTPClient
	formatter  *DigestFormatter
	logger     zerolog.Logger
}

// NewWebhookNotifier creates a WebhookNotifier. The webhook URL is
// validated here so a malformed target fails at startup, not at delivery
// time.
func NewWebhookNotifier(
	cfg config.NotificationConfig,
	httpClient *fetcher.HTTPClient,
	logger zerolog.Logger,
) (*WebhookNotifier, error) {
	notifierLogger := logger.With().Str("component", "WebhookNotifier").Logger()

	if cfg.WebhookURL != "" {
		if err := urlhandler.ValidateURLFormat(cfg.WebhookURL); err != nil {
			return nil, fmt.Errorf("invalid webhook URL: %w", err)
		}
		// Webhook URLs often embed tokens, so only the host is logged.
		notifierLogger.Info().
			Str("webhook_host", urlhandler.HostnameOf(cfg.WebhookURL)).
			Msg("Webhook delivery configured")
	}

	return &WebhookNotifier{
		webhookURL: cfg.WebhookURL,
		httpClient: httpClient,
		formatter:  NewDigestFormatter(),
		logger:     notifierLogger,
	}, nil
}

// Notify posts the digest to the webhook. An empty webhook URL disables
// delivery without error.
func (wn *WebhookNotifier) Notify(ctx context.Context, digest models.Digest) error {
	if wn.webhookURL == "" {
		wn.logger.Debug().Msg("Webhook URL is empty, skipping webhook notification")
		return nil
	}

	payload := WebhookPayload{
		Subject: wn.formatter.Subject(digest),
		Body:    wn.formatter.TextBody(digest),
		Digest:  digest,
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	resp, err := wn.httpClient.Do(&fetcher.HTTPRequest{
		URL:    wn.webhookURL,
		Method: http.MethodPost,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body:    bytes.NewReader(payloadJSON),
		Context: ctx,
	})
	if err != nil {
		return fmt.Errorf("failed to send webhook notification: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook notification failed with status %d: %s", resp.StatusCode, string(resp.Body))
	}

	wn.logger.Info().
		Int("status_code", resp.StatusCode).
		Int("changes", len(digest.Changes)).
		Int("failures", len(digest.Failures)).
		Msg("Webhook notification sent")

	return nil
}
