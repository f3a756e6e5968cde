package rail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vendorpay/vendorpay-backend/internal/domain"
	"github.com/vendorpay/vendorpay-backend/internal/logging"
)

// Client talks to the external payment rail. When the rail is unreachable
// (connection refused), every operation returns a fixed mock payload instead
// of an error so local development works without the real service; any other
// failure propagates.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type RecipientWallet struct {
	Type    string `json:"type"`
	Address string `json:"address"`
}

type RecipientStatus struct {
	Email         string            `json:"email"`
	Registered    bool              `json:"registered"`
	AcceptsCrypto bool              `json:"accepts_crypto"`
	Wallets       []RecipientWallet `json:"wallets,omitempty"`
}

type ExchangeRates struct {
	FromCurrency string                                 `json:"from_currency"`
	ToCurrency   string                                 `json:"to_currency"`
	Rates        map[domain.PaymentType]decimal.Decimal `json:"rates"`
	Fees         map[domain.PaymentType]decimal.Decimal `json:"fees"`
}

type PaymentRequest struct {
	Amount         decimal.Decimal    `json:"amount"`
	Currency       string             `json:"currency"`
	RecipientEmail string             `json:"recipient_email"`
	Method         domain.PaymentType `json:"payment_method"`
	Description    string             `json:"description,omitempty"`
}

type Savings struct {
	Amount     decimal.Decimal `json:"amount"`
	Percentage float64         `json:"percentage"`
}

type Payment struct {
	ID             string             `json:"id"`
	Amount         decimal.Decimal    `json:"amount"`
	Currency       string             `json:"currency"`
	RecipientEmail string             `json:"recipient_email"`
	Method         domain.PaymentType `json:"payment_method"`
	Status         string             `json:"status"`
	ExchangeRate   decimal.Decimal    `json:"exchange_rate"`
	Fee            decimal.Decimal    `json:"fee"`
	Savings        *Savings           `json:"savings,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	CompletedAt    *time.Time         `json:"completed_at,omitempty"`
	PaymentLink    *string            `json:"payment_link,omitempty"`
}

type InviteRequest struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Message string `json:"message,omitempty"`
}

type Invite struct {
	Success  bool   `json:"success"`
	InviteID string `json:"invite_id"`
}

func (c *Client) CheckRecipientStatus(ctx context.Context, email string) (*RecipientStatus, error) {
	var out RecipientStatus
	err := c.get(ctx, "/recipients/check?email="+url.QueryEscape(email), &out)
	if err != nil {
		if isConnRefused(err) {
			logging.FromContext(ctx).Warn("payment rail unreachable, using mock recipient status", "email", email)
			return &RecipientStatus{Email: email, Registered: false, AcceptsCrypto: false}, nil
		}
		return nil, fmt.Errorf("CheckRecipientStatus: %w", err)
	}
	return &out, nil
}

func (c *Client) GetExchangeRates(ctx context.Context, fromCurrency, toCurrency string) (*ExchangeRates, error) {
	var out ExchangeRates
	path := "/exchange-rates?from=" + url.QueryEscape(fromCurrency) + "&to=" + url.QueryEscape(toCurrency)
	err := c.get(ctx, path, &out)
	if err != nil {
		if isConnRefused(err) {
			logging.FromContext(ctx).Warn("payment rail unreachable, using mock exchange rates",
				"from", fromCurrency, "to", toCurrency)
			return mockExchangeRates(fromCurrency, toCurrency), nil
		}
		return nil, fmt.Errorf("GetExchangeRates: %w", err)
	}
	return &out, nil
}

func (c *Client) CreatePayment(ctx context.Context, req PaymentRequest) (*Payment, error) {
	var out Payment
	err := c.post(ctx, "/payments", req, &out)
	if err != nil {
		if isConnRefused(err) {
			logging.FromContext(ctx).Warn("payment rail unreachable, using mock payment",
				"recipient", req.RecipientEmail, "method", req.Method)
			return mockPayment(req), nil
		}
		return nil, fmt.Errorf("CreatePayment: %w", err)
	}
	return &out, nil
}

func (c *Client) InviteRecipient(ctx context.Context, req InviteRequest) (*Invite, error) {
	var out Invite
	err := c.post(ctx, "/recipients/invite", req, &out)
	if err != nil {
		if isConnRefused(err) {
			logging.FromContext(ctx).Warn("payment rail unreachable, using mock invite", "email", req.Email)
			return &Invite{
				Success:  true,
				InviteID: fmt.Sprintf("mock-invite-%d", time.Now().UnixMilli()),
			}, nil
		}
		return nil, fmt.Errorf("InviteRecipient: %w", err)
	}
	return &out, nil
}

func (c *Client) GetPaymentStatus(ctx context.Context, paymentID string) (*Payment, error) {
	var out Payment
	err := c.get(ctx, "/payments/"+url.PathEscape(paymentID), &out)
	if err != nil {
		if isConnRefused(err) {
			logging.FromContext(ctx).Warn("payment rail unreachable, using mock payment status", "payment_id", paymentID)
			return mockPaymentStatus(paymentID), nil
		}
		return nil, fmt.Errorf("GetPaymentStatus: %w", err)
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

type railError struct {
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("do: marshal: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("do: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var railErr railError
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if err := json.Unmarshal(data, &railErr); err != nil || railErr.Message == "" {
			railErr.Message = fmt.Sprintf("unexpected status %d", resp.StatusCode)
		}
		return fmt.Errorf("do: %s: %w", railErr.Message, domain.ErrRailRejected)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("do: decode: %w", err)
	}
	return nil
}

// isConnRefused matches the connection-refused class of transport failures
// only. HTTP-level errors never reach here.
func isConnRefused(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED)
}

func mockExchangeRates(fromCurrency, toCurrency string) *ExchangeRates {
	swiftFee := decimal.NewFromInt(20)
	if fromCurrency == "USD" {
		swiftFee = decimal.NewFromInt(10)
	}
	return &ExchangeRates{
		FromCurrency: fromCurrency,
		ToCurrency:   toCurrency,
		Rates: map[domain.PaymentType]decimal.Decimal{
			domain.PaymentTypeSWIFT: decimal.NewFromInt(1),
			domain.PaymentTypeUSDC:  decimal.NewFromInt(1),
		},
		Fees: map[domain.PaymentType]decimal.Decimal{
			domain.PaymentTypeSWIFT: swiftFee,
			domain.PaymentTypeUSDC:  decimal.Zero,
		},
	}
}

func mockPayment(req PaymentRequest) *Payment {
	id := fmt.Sprintf("mock-%d", time.Now().UnixMilli())
	link := "https://pay.rail.example/" + id

	rate := decimal.NewFromFloat(1.05)
	fee := decimal.Max(decimal.NewFromInt(25), req.Amount.Mul(decimal.NewFromFloat(0.05)))
	var savings *Savings
	if req.Method == domain.PaymentTypeUSDC {
		rate = decimal.NewFromFloat(1.01)
		fee = decimal.Max(decimal.NewFromInt(5), req.Amount.Mul(decimal.NewFromFloat(0.01)))
		savings = &Savings{
			Amount:     decimal.Max(decimal.NewFromInt(20), req.Amount.Mul(decimal.NewFromFloat(0.04))),
			Percentage: 4,
		}
	}

	return &Payment{
		ID:             id,
		Amount:         req.Amount,
		Currency:       req.Currency,
		RecipientEmail: req.RecipientEmail,
		Method:         req.Method,
		Status:         "processing",
		ExchangeRate:   rate,
		Fee:            fee,
		Savings:        savings,
		CreatedAt:      time.Now().UTC(),
		PaymentLink:    &link,
	}
}

// The status mock always reports "processing" so a transaction is never moved
// to a terminal state on fabricated data.
func mockPaymentStatus(paymentID string) *Payment {
	return &Payment{
		ID:           paymentID,
		Amount:       decimal.NewFromInt(100),
		Currency:     "USD",
		Method:       domain.PaymentTypeUSDC,
		Status:       "processing",
		ExchangeRate: decimal.NewFromFloat(1.01),
		Fee:          decimal.NewFromInt(5),
		CreatedAt:    time.Now().UTC(),
	}
}
