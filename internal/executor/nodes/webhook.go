package nodes

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/SHXZ7/autofloww/internal/adapter"
	"github.com/SHXZ7/autofloww/internal/executor"
)

const (
	defaultWebhookTimeout = 30 * time.Second
	webhookBodyEmbedLimit = 200
)

type webhookConfig struct {
	URL       string            `json:"webhook_url"`
	Method    string            `json:"method"`
	Body      json.RawMessage   `json:"body"`
	Headers   map[string]string `json:"headers"`
	AuthToken string            `json:"auth_token"`
	Timeout   int               `json:"timeout"`

	// injected by webhookstore.Store.Trigger into every webhook node's
	// config before the engine runs it (spec §4.6).
	WebhookPayload json.RawMessage `json:"webhook_payload"`
	WebhookSource  string          `json:"webhook_source"`
}

// Webhook makes an outbound HTTP request via resty, per spec §4.3's
// `webhook` node contract. Grounded on the teacher's HTTPAction
// (internal/executor/actions/http.go) for the method/timeout/status-class
// shape, adapted to resty since the domain-stack table assigns REST
// fan-out nodes to go-resty/resty/v2 rather than a hand-rolled net/http
// client.
type Webhook struct{}

func NewWebhook() *Webhook { return &Webhook{} }

func (Webhook) Execute(ctx context.Context, req executor.Request) adapter.Result {
	var cfg webhookConfig
	if len(req.Node.Config) > 0 {
		if err := json.Unmarshal(req.Node.Config, &cfg); err != nil {
			return adapter.Error("Error: invalid webhook config: %v", err)
		}
	}

	if cfg.URL == "" {
		return adapter.Notification("Webhook triggered (no URL provided)")
	}

	method := strings.ToUpper(cfg.Method)
	if method == "" {
		method = "POST"
	}

	timeout := defaultWebhookTimeout
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := resty.New().SetTimeout(timeout)
	r := client.R().SetContext(ctx).
		SetHeader("User-Agent", "AutoFlow-Webhook/1.0").
		SetHeader("X-AutoFlow-Timestamp", timestampHeader())
	for k, v := range cfg.Headers {
		r.SetHeader(k, v)
	}
	if cfg.AuthToken != "" {
		r.SetAuthToken(cfg.AuthToken)
	}

	body := requestBody(cfg)
	if len(body) > 0 {
		var generic interface{}
		if err := json.Unmarshal(body, &generic); err == nil {
			if _, isObject := generic.(map[string]interface{}); isObject {
				r.SetBody(generic)
			} else if s, isString := generic.(string); isString {
				r.SetBody(map[string]string{"data": s})
			} else {
				r.SetBody(generic)
			}
		} else {
			r.SetBody(map[string]string{"data": string(body)})
		}
	}

	resp, err := r.Execute(method, cfg.URL)
	if err != nil {
		return adapter.Error("Error: webhook request failed: %v", err)
	}

	snippet := resp.String()
	if len(snippet) > webhookBodyEmbedLimit {
		snippet = snippet[:webhookBodyEmbedLimit]
	}

	status := resp.StatusCode()
	switch {
	case status >= 200 && status < 300:
		return adapter.Notification(fmt.Sprintf("Webhook triggered successfully (status %d): %s", status, snippet))
	case status >= 400 && status < 500:
		return adapter.Error("Error: webhook client error (status %d): %s", status, snippet)
	default:
		return adapter.Error("Error: webhook server error (status %d): %s", status, snippet)
	}
}

// requestBody prefers the configured body, falling back to the injected
// webhook_payload (for a webhook node re-firing an inbound payload
// outward) when none is set.
func requestBody(cfg webhookConfig) []byte {
	if len(cfg.Body) > 0 {
		return cfg.Body
	}
	if len(cfg.WebhookPayload) > 0 && string(cfg.WebhookPayload) != "null" {
		return cfg.WebhookPayload
	}
	return nil
}
