package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/commonprefix/solana-dummy-contracts-and-scripts/internal/eventmonitor/types"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/logging"
)

// Config tunes webhook delivery
type Config struct {
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// Client handles webhook delivery
type Client struct {
	httpClient *http.Client
	cfg        Config
	logger     logging.Logger
}

// NewClient creates a new webhook client
func NewClient(cfg Config, logger logging.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		logger:     logger,
	}
}

// Send delivers an event notification to a webhook URL, retrying transient
// failures with exponential backoff.
func (c *Client) Send(webhookURL string, notification *types.EventNotification) error {
	body, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.cfg.RetryDelay * time.Duration(1<<uint(attempt-1))
			c.logger.Debug("Retrying webhook delivery",
				"webhook_url", webhookURL,
				"attempt", attempt,
				"delay", delay)
			time.Sleep(delay)
		}

		lastErr = c.post(webhookURL, body)
		if lastErr == nil {
			c.logger.Debug("Webhook delivered",
				"webhook_url", webhookURL,
				"request_id", notification.RequestID)
			return nil
		}

		c.logger.Warn("Webhook delivery failed",
			"webhook_url", webhookURL,
			"attempt", attempt+1,
			"error", lastErr)
	}

	return fmt.Errorf("failed to deliver webhook after %d attempts: %w", c.cfg.MaxRetries+1, lastErr)
}

func (c *Client) post(webhookURL string, body []byte) error {
	req, err := http.NewRequest(http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
