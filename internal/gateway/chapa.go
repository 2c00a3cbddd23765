package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/addisrides/service-rental/pkg/domain"
)

// VerifyStatus is the gateway's verdict on a transaction.
type VerifyStatus string

const (
	VerifySuccess VerifyStatus = "success"
	VerifyFailed  VerifyStatus = "failed"
	VerifyPending VerifyStatus = "pending"
)

// InitializeRequest holds the inputs for opening a checkout session.
type InitializeRequest struct {
	AmountCents int64
	Currency    string
	Email       string
	FirstName   string
	LastName    string
	TxRef       string
}

// InitializeResult is the outcome of a successful checkout initialization.
type InitializeResult struct {
	CheckoutURL string
}

// VerifyResult is the outcome of a transaction verification.
type VerifyResult struct {
	Status      VerifyStatus
	AmountCents int64
	Currency    string
}

// PaymentGateway abstracts the external payment provider so the payment
// service can be tested against a fake.
type PaymentGateway interface {
	// Initialize opens a hosted checkout session and returns its URL.
	Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error)

	// Verify asks the provider for the transaction's current status.
	Verify(ctx context.Context, txRef string) (*VerifyResult, error)
}

// ChapaConfig holds settings for the Chapa client.
type ChapaConfig struct {
	BaseURL     string
	SecretKey   string
	CallbackURL string
	ReturnURL   string
	Timeout     time.Duration
}

// ChapaClient implements PaymentGateway against the Chapa REST API. Every
// call is bounded by the configured timeout; a timed-out call is a failure.
type ChapaClient struct {
	baseURL     string
	secretKey   string
	callbackURL string
	returnURL   string
	client      *http.Client
}

// NewChapaClient creates a ChapaClient from config.
func NewChapaClient(cfg ChapaConfig) *ChapaClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &ChapaClient{
		baseURL:     cfg.BaseURL,
		secretKey:   cfg.SecretKey,
		callbackURL: cfg.CallbackURL,
		returnURL:   cfg.ReturnURL,
		client:      &http.Client{Timeout: timeout},
	}
}

type chapaInitRequest struct {
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	TxRef       string `json:"tx_ref"`
	CallbackURL string `json:"callback_url,omitempty"`
	ReturnURL   string `json:"return_url,omitempty"`
}

type chapaInitResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
	Data    struct {
		CheckoutURL string `json:"checkout_url"`
	} `json:"data"`
}

type chapaVerifyResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
	Data    struct {
		Status   string  `json:"status"`
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
		TxRef    string  `json:"tx_ref"`
	} `json:"data"`
}

// Initialize opens a hosted checkout session for the transaction.
func (c *ChapaClient) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error) {
	body := chapaInitRequest{
		Amount:      formatAmount(req.AmountCents),
		Currency:    req.Currency,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		TxRef:       req.TxRef,
		CallbackURL: c.callbackURL,
		ReturnURL:   c.returnURL,
	}

	var resp chapaInitResponse
	if err := c.post(ctx, "/transaction/initialize", body, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "success" || resp.Data.CheckoutURL == "" {
		return nil, domain.NewUpstreamError("chapa", fmt.Errorf("initialization rejected: %s", resp.Message))
	}
	return &InitializeResult{CheckoutURL: resp.Data.CheckoutURL}, nil
}

// Verify asks Chapa for the transaction's current status.
func (c *ChapaClient) Verify(ctx context.Context, txRef string) (*VerifyResult, error) {
	var resp chapaVerifyResponse
	if err := c.get(ctx, "/transaction/verify/"+txRef, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "success" {
		return nil, domain.NewUpstreamError("chapa", fmt.Errorf("verification rejected: %s", resp.Message))
	}

	status := VerifyPending
	switch resp.Data.Status {
	case "success":
		status = VerifySuccess
	case "failed":
		status = VerifyFailed
	}

	return &VerifyResult{
		Status:      status,
		// Chapa reports the amount as a decimal number; many cent values are
		// not float-exact (0.29 decodes just below 29.0), so round rather
		// than truncate.
		AmountCents: int64(math.Round(resp.Data.Amount * 100)),
		Currency:    resp.Data.Currency,
	}, nil
}

func (c *ChapaClient) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *ChapaClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	return c.do(req, out)
}

func (c *ChapaClient) do(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.NewUpstreamError("chapa", fmt.Errorf("request failed: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.NewUpstreamError("chapa", fmt.Errorf("failed to read response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.NewUpstreamError("chapa", fmt.Errorf("returned %d: %s", resp.StatusCode, string(raw)))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return domain.NewUpstreamError("chapa", fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

// formatAmount renders cents as a decimal amount string, e.g. 250050 -> "2500.50".
func formatAmount(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
