package provider

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const (
	airwallexAPIVersion = "2024-01-01"
	// Tokens are valid for an hour; refresh five minutes early.
	airwallexTokenTTL = 55 * time.Minute
)

// AirwallexConfig holds Airwallex credentials and endpoints.
type AirwallexConfig struct {
	ClientID      string
	APIKey        string
	APIURL        string
	WebhookSecret string
	Timeout       time.Duration
}

// AirwallexProvider implements Provider against the Airwallex payment
// acceptance API. There is no official Go SDK, so requests go through a
// plain HTTP client behind a circuit breaker.
type AirwallexProvider struct {
	cfg     *AirwallexConfig
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  *zap.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewAirwallexProvider creates an Airwallex provider.
func NewAirwallexProvider(cfg *AirwallexConfig, logger *zap.Logger) *AirwallexProvider {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "airwallex",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &AirwallexProvider{
		cfg:     cfg,
		client:  &http.Client{Timeout: timeout},
		breaker: breaker,
		logger:  logger,
	}
}

// Name returns the provider name.
func (p *AirwallexProvider) Name() string {
	return "airwallex"
}

// accessToken returns a cached bearer token, logging in again when the
// cached one is about to expire.
func (p *AirwallexProvider) accessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && time.Now().Before(p.tokenExpiry) {
		return p.token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.cfg.APIURL+"/authentication/login", nil)
	if err != nil {
		return "", fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-client-id", p.cfg.ClientID)
	req.Header.Set("x-api-key", p.cfg.APIKey)

	body, err := p.do(req)
	if err != nil {
		return "", fmt.Errorf("airwallex login: %w", err)
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	if resp.Token == "" {
		return "", fmt.Errorf("airwallex login returned no token")
	}

	p.token = resp.Token
	p.tokenExpiry = time.Now().Add(airwallexTokenTTL)
	p.logger.Debug("airwallex token refreshed")

	return p.token, nil
}

type airwallexIntent struct {
	ID           string            `json:"id"`
	ClientSecret string            `json:"client_secret"`
	Status       string            `json:"status"`
	Amount       int64             `json:"amount"`
	Currency     string            `json:"currency"`
	Metadata     map[string]string `json:"metadata"`
}

// CreateIntent opens a payment intent.
func (p *AirwallexProvider) CreateIntent(ctx context.Context, req *CreateIntentRequest) (*Intent, error) {
	metadata := map[string]string{"order_no": req.OrderNo}
	for k, v := range req.Metadata {
		metadata[k] = v
	}

	payload := map[string]any{
		"request_id":        req.OrderNo,
		"amount":            req.Amount,
		"currency":          req.Currency,
		"merchant_order_id": req.OrderNo,
		"descriptor":        req.Description,
		"metadata":          metadata,
		"return_url":        req.ReturnURL,
		"customer": map[string]string{
			"email":      req.CustomerEmail,
			"first_name": req.CustomerName,
		},
	}

	body, err := p.authorized(ctx, http.MethodPost, "/pa/payment_intents", payload)
	if err != nil {
		return nil, err
	}
	return decodeAirwallexIntent(body)
}

// ConfirmIntent confirms a payment intent.
func (p *AirwallexProvider) ConfirmIntent(ctx context.Context, intentID string) (*Intent, error) {
	path := fmt.Sprintf("/pa/payment_intents/%s/confirm", intentID)
	body, err := p.authorized(ctx, http.MethodPost, path, map[string]any{})
	if err != nil {
		return nil, err
	}
	return decodeAirwallexIntent(body)
}

// GetIntent fetches a payment intent.
func (p *AirwallexProvider) GetIntent(ctx context.Context, intentID string) (*Intent, error) {
	body, err := p.authorized(ctx, http.MethodGet, "/pa/payment_intents/"+intentID, nil)
	if err != nil {
		return nil, err
	}
	return decodeAirwallexIntent(body)
}

// VerifyWebhookSignature checks the x-signature header: an HMAC-SHA256
// hex digest of the raw payload, optionally prefixed with "sha256=".
func (p *AirwallexProvider) VerifyWebhookSignature(payload []byte, signature string) error {
	signature = strings.TrimPrefix(signature, "sha256=")

	received, err := hex.DecodeString(signature)
	if err != nil {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(p.cfg.WebhookSecret))
	mac.Write(payload)
	if !hmac.Equal(mac.Sum(nil), received) {
		return ErrInvalidSignature
	}
	return nil
}

// ParseWebhookEvent decodes an Airwallex notification.
func (p *AirwallexProvider) ParseWebhookEvent(payload []byte) (*Event, error) {
	var raw struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Data struct {
			Object airwallexIntent `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("decode webhook payload: %w", err)
	}

	obj := raw.Data.Object
	return &Event{
		ID:       raw.ID,
		Type:     raw.Name,
		IntentID: obj.ID,
		OrderNo:  obj.Metadata["order_no"],
		Status:   obj.Status,
		Amount:   obj.Amount,
		Raw:      json.RawMessage(payload),
	}, nil
}

// authorized performs an API call with a bearer token.
func (p *AirwallexProvider) authorized(ctx context.Context, method, path string, payload any) ([]byte, error) {
	token, err := p.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.cfg.APIURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-version", airwallexAPIVersion)

	body, err := p.do(req)
	if err != nil {
		return nil, fmt.Errorf("airwallex %s %s: %w", method, path, err)
	}
	return body, nil
}

// do executes a request through the circuit breaker and returns the
// response body. Non-2xx responses are errors carrying the gateway's
// error code when one is present.
func (p *AirwallexProvider) do(req *http.Request) ([]byte, error) {
	body, err := p.breaker.Execute(func() ([]byte, error) {
		resp, err := p.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, err
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			var gwErr struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			}
			if json.Unmarshal(data, &gwErr) == nil && gwErr.Code != "" {
				return nil, fmt.Errorf("status %d: %s (%s)", resp.StatusCode, gwErr.Message, gwErr.Code)
			}
			return nil, fmt.Errorf("status %d", resp.StatusCode)
		}
		return data, nil
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	return body, err
}

func decodeAirwallexIntent(body []byte) (*Intent, error) {
	var in airwallexIntent
	if err := json.Unmarshal(body, &in); err != nil {
		return nil, fmt.Errorf("decode intent: %w", err)
	}
	return &Intent{
		ID:           in.ID,
		ClientSecret: in.ClientSecret,
		Status:       in.Status,
		Amount:       in.Amount,
		Currency:     in.Currency,
		Metadata:     in.Metadata,
	}, nil
}
