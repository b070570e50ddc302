package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"chatfuse/internal/entities"
)

// Events registered on every provider instance so the relay receives messages,
// QR refreshes and connection state changes.
var instanceEvents = []string{"MESSAGES_UPSERT", "QRCODE_UPDATED", "CONNECTION_UPDATE"}

// EvolutionClient wraps the messaging provider's REST API. Every call takes a
// context; the transport timeout is the only deadline, no retries.
type EvolutionClient struct {
	baseURL    string
	apiKey     string
	queueURL   string
	httpClient *http.Client
}

func NewEvolutionClient(baseURL, apiKey, queueURL string) *EvolutionClient {
	return &EvolutionClient{
		baseURL:  baseURL,
		apiKey:   apiKey,
		queueURL: queueURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *EvolutionClient) do(ctx context.Context, method, path string, payload interface{}) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)

	return c.httpClient.Do(req)
}

func (c *EvolutionClient) doJSON(ctx context.Context, method, path string, payload interface{}, out interface{}) error {
	resp, err := c.do(ctx, method, path, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return entities.ErrInstanceNotFound
	}
	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("provider returned %d: %s", resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode provider response: %w", err)
	}
	return nil
}

// CreateInstance creates the provider-side session for a connection, with all
// inbound events webhooked (base64 media inline) to the relay's intake URL.
func (c *EvolutionClient) CreateInstance(ctx context.Context, name string) error {
	payload := map[string]interface{}{
		"instanceName": name,
		"webhook": map[string]interface{}{
			"url":               c.queueURL,
			"webhook_by_events": true,
			"webhook_base64":    true,
			"base64":            true,
			"events":            instanceEvents,
		},
		"qrcode":        false,
		"integration":   "WHATSAPP-BAILEYS",
		"reject_call":   false,
		"groups_ignore": false,
	}
	return c.doJSON(ctx, http.MethodPost, "/instance/create", payload, nil)
}

func (c *EvolutionClient) DeleteInstance(ctx context.Context, name string) error {
	return c.doJSON(ctx, http.MethodDelete, "/instance/delete/"+name, nil, nil)
}

// FetchInstance returns the provider's view of one instance. A provider 404 or
// an empty result set maps to entities.ErrInstanceNotFound.
func (c *EvolutionClient) FetchInstance(ctx context.Context, name string) (*entities.Instance, error) {
	path := "/instance/fetchInstances?instanceName=" + url.QueryEscape(name)

	var raw []map[string]any
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, entities.ErrInstanceNotFound
	}

	inst := &entities.Instance{Raw: raw[0]}
	if v, ok := raw[0]["name"].(string); ok {
		inst.Name = v
	}
	if v, ok := raw[0]["connectionStatus"].(string); ok {
		inst.ConnectionStatus = v
	}
	if v, ok := raw[0]["ownerJid"].(string); ok {
		inst.OwnerJid = v
	}
	if v, ok := raw[0]["profilePicUrl"].(string); ok {
		inst.ProfilePicURL = v
	}
	return inst, nil
}

// ConnectInstance asks the provider for a fresh pairing code.
func (c *EvolutionClient) ConnectInstance(ctx context.Context, name string) (string, error) {
	var out struct {
		Code string `json:"code"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/instance/connect/"+name, nil, &out); err != nil {
		return "", err
	}
	if out.Code == "" {
		return "", fmt.Errorf("provider returned no pairing code for %s", name)
	}
	return out.Code, nil
}

func (c *EvolutionClient) SetWebhook(ctx context.Context, name, webhookURL string, events []string) error {
	payload := map[string]interface{}{
		"webhook": map[string]interface{}{
			"enabled": true,
			"url":     webhookURL,
			"events":  events,
		},
	}
	return c.doJSON(ctx, http.MethodPost, "/webhook/set/"+name, payload, nil)
}

func (c *EvolutionClient) FindWebhook(ctx context.Context, name string) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/webhook/find/"+name, nil, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

func (c *EvolutionClient) SendText(ctx context.Context, instance, number, text string) (map[string]any, error) {
	payload := map[string]interface{}{
		"number": number,
		"text":   text,
	}
	var out map[string]any
	if err := c.doJSON(ctx, http.MethodPost, "/message/sendText/"+instance, payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *EvolutionClient) SendMedia(ctx context.Context, instance, number, mediaType, caption, media string) (map[string]any, error) {
	payload := map[string]interface{}{
		"number":    number,
		"mediatype": mediaType,
		"caption":   caption,
		"media":     media,
	}
	var out map[string]any
	if err := c.doJSON(ctx, http.MethodPost, "/message/sendMedia/"+instance, payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *EvolutionClient) SendAudio(ctx context.Context, instance, number, audio string) (map[string]any, error) {
	payload := map[string]interface{}{
		"number": number,
		"audio":  audio,
	}
	var out map[string]any
	if err := c.doJSON(ctx, http.MethodPost, "/message/sendWhatsAppAudio/"+instance, payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}
