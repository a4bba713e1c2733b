package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-pay/gopay"
	"github.com/go-pay/gopay/alipay"
)

// AlipayConfig holds Alipay credentials.
type AlipayConfig struct {
	AppID           string
	PrivateKey      string
	AlipayPublicKey string
	IsProd          bool
	NotifyURL       string
	ReturnURL       string
}

// AlipayProvider implements Provider for Alipay's redirect-based page
// payment. Instead of a client secret, CreateIntent returns the pay
// page URL to redirect the customer to. Intent IDs are our order
// numbers (Alipay's out_trade_no).
type AlipayProvider struct {
	client *alipay.Client
	cfg    *AlipayConfig
}

// NewAlipayProvider creates an Alipay provider.
func NewAlipayProvider(cfg *AlipayConfig) (*AlipayProvider, error) {
	client, err := alipay.NewClient(cfg.AppID, cfg.PrivateKey, cfg.IsProd)
	if err != nil {
		return nil, fmt.Errorf("create alipay client: %w", err)
	}
	client.AutoVerifySign([]byte(cfg.AlipayPublicKey))

	return &AlipayProvider{client: client, cfg: cfg}, nil
}

// Name returns the provider name.
func (p *AlipayProvider) Name() string {
	return "alipay"
}

// CreateIntent creates a page payment and returns the redirect URL.
func (p *AlipayProvider) CreateIntent(ctx context.Context, req *CreateIntentRequest) (*Intent, error) {
	// Alipay amounts are yuan strings with two decimals.
	amountStr := fmt.Sprintf("%.2f", float64(req.Amount)/100)

	bm := make(gopay.BodyMap)
	bm.Set("out_trade_no", req.OrderNo)
	bm.Set("total_amount", amountStr)
	bm.Set("subject", req.Description)
	bm.Set("product_code", "FAST_INSTANT_TRADE_PAY")
	bm.Set("timeout_express", "30m")
	if p.cfg.ReturnURL != "" {
		bm.Set("return_url", p.cfg.ReturnURL)
	}
	if p.cfg.NotifyURL != "" {
		bm.Set("notify_url", p.cfg.NotifyURL)
	}

	metadata := map[string]string{"order_no": req.OrderNo}
	for k, v := range req.Metadata {
		metadata[k] = v
	}
	passback, _ := json.Marshal(metadata)
	bm.Set("passback_params", string(passback))

	payURL, err := p.client.TradePagePay(ctx, bm)
	if err != nil {
		return nil, fmt.Errorf("create page payment: %w", err)
	}

	return &Intent{
		ID:          req.OrderNo,
		Status:      "requires_action",
		Amount:      req.Amount,
		Currency:    "CNY",
		RedirectURL: payURL,
		Metadata:    metadata,
	}, nil
}

// ConfirmIntent is not applicable to the redirect flow.
func (p *AlipayProvider) ConfirmIntent(ctx context.Context, intentID string) (*Intent, error) {
	return nil, ErrNotSupported
}

// GetIntent queries the trade by out_trade_no.
func (p *AlipayProvider) GetIntent(ctx context.Context, intentID string) (*Intent, error) {
	bm := make(gopay.BodyMap)
	bm.Set("out_trade_no", intentID)

	resp, err := p.client.TradeQuery(ctx, bm)
	if err != nil {
		return nil, fmt.Errorf("query trade: %w", err)
	}
	if resp.Response.Code != "10000" {
		return nil, fmt.Errorf("alipay query error: %s - %s", resp.Response.Code, resp.Response.Msg)
	}

	amount, _ := strconv.ParseFloat(resp.Response.TotalAmount, 64)

	return &Intent{
		ID:       resp.Response.OutTradeNo,
		Status:   mapAlipayTradeStatus(resp.Response.TradeStatus),
		Amount:   int64(amount * 100),
		Currency: "CNY",
	}, nil
}

// VerifyWebhookSignature is a no-op: the RSA signature is part of the
// notification form and is checked in ParseWebhookEvent.
func (p *AlipayProvider) VerifyWebhookSignature(payload []byte, signature string) error {
	return nil
}

// ParseWebhookEvent parses and verifies a form-encoded async notify.
func (p *AlipayProvider) ParseWebhookEvent(payload []byte) (*Event, error) {
	req, err := http.NewRequest(http.MethodPost, "/", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build notify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	notify, err := alipay.ParseNotifyToBodyMap(req)
	if err != nil {
		return nil, fmt.Errorf("parse notify: %w", err)
	}

	ok, err := alipay.VerifySign(p.cfg.AlipayPublicKey, notify)
	if err != nil || !ok {
		return nil, ErrInvalidSignature
	}

	amount, _ := strconv.ParseFloat(notify.GetString("total_amount"), 64)
	status := mapAlipayTradeStatus(notify.GetString("trade_status"))

	eventType := EventPaymentFailed
	switch status {
	case "succeeded":
		eventType = EventPaymentSucceeded
	case "cancelled":
		eventType = EventPaymentCancelled
	}

	return &Event{
		ID:       notify.GetString("notify_id"),
		Type:     eventType,
		IntentID: notify.GetString("out_trade_no"),
		OrderNo:  notify.GetString("out_trade_no"),
		Status:   status,
		Amount:   int64(amount * 100),
		Raw:      json.RawMessage(strconv.AppendQuote(nil, string(payload))),
	}, nil
}

func mapAlipayTradeStatus(status string) string {
	switch status {
	case "TRADE_SUCCESS", "TRADE_FINISHED":
		return "succeeded"
	case "WAIT_BUYER_PAY":
		return "pending"
	case "TRADE_CLOSED":
		return "cancelled"
	default:
		return "failed"
	}
}
