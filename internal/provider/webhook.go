package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/notifyhub/jobboard/internal/domain"
)

// WebhookProvider delivers email by POSTing it to an HTTP mail relay.
// The URL is injected from config so tests can point to a local server.
type WebhookProvider struct {
	url        string
	from       string
	httpClient *http.Client
}

func NewWebhookProvider(url, from string, timeout time.Duration) *WebhookProvider {
	return &WebhookProvider{
		url:  url,
		from: from,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Send posts the email and treats any 2xx as accepted. A JSON body with
// messageId is decoded when present.
func (p *WebhookProvider) Send(ctx context.Context, e *domain.Email) (*SendResponse, error) {
	body, err := json.Marshal(SendRequest{
		From:    p.from,
		To:      e.To,
		Subject: e.Subject,
		HTML:    e.HTML,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected provider status: %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	sendResp := SendResponse{Status: "accepted"}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &sendResp); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
	}
	return &sendResp, nil
}

var _ Provider = (*WebhookProvider)(nil)
