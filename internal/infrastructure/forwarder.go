package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"chatfuse/internal/entities"
)

// WebhookForwarder POSTs relay envelopes to per-connection downstream webhooks.
type WebhookForwarder struct {
	httpClient *http.Client
}

func NewWebhookForwarder() *WebhookForwarder {
	return &WebhookForwarder{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (f *WebhookForwarder) Forward(ctx context.Context, webhookURL string, env *entities.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, body)
	}
	return nil
}
