package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vendorpay/vendorpay-backend/internal/logging"
)

// Standalone stand-in for the external payment rail used in local
// development and docker-compose. Payments created here progress from
// processing to completed after a short delay so status reconciliation
// can be exercised end to end.

type payment struct {
	ID             string          `json:"id"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	RecipientEmail string          `json:"recipient_email"`
	Method         string          `json:"payment_method"`
	Status         string          `json:"status"`
	ExchangeRate   decimal.Decimal `json:"exchange_rate"`
	Fee            decimal.Decimal `json:"fee"`
	Savings        *savings        `json:"savings,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
	PaymentLink    *string         `json:"payment_link,omitempty"`
}

type savings struct {
	Amount     decimal.Decimal `json:"amount"`
	Percentage float64         `json:"percentage"`
}

type store struct {
	mu       sync.Mutex
	payments map[string]*payment
}

func main() {
	logging.Init("mock-rail", "info", os.Getenv("APP_ENV"))

	s := &store{payments: make(map[string]*payment)}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /v1/recipients/check", handleRecipientCheck)
	mux.HandleFunc("POST /v1/recipients/invite", handleInvite)
	mux.HandleFunc("GET /v1/exchange-rates", handleExchangeRates)
	mux.HandleFunc("POST /v1/payments", s.handleCreatePayment)
	mux.HandleFunc("GET /v1/payments/{id}", s.handleGetPayment)

	addr := ":8081"
	if p := os.Getenv("PORT"); p != "" {
		addr = ":" + p
	}

	slog.Info("mock rail started", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func respond(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Registration is keyed off the email so repeated checks stay consistent:
// addresses containing "crypto" are registered crypto-capable recipients.
func handleRecipientCheck(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		respond(w, http.StatusBadRequest, map[string]string{"message": "email is required"})
		return
	}

	registered := strings.Contains(email, "crypto")
	respond(w, http.StatusOK, map[string]any{
		"email":          email,
		"registered":     registered,
		"accepts_crypto": registered,
	})
}

func handleInvite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		respond(w, http.StatusBadRequest, map[string]string{"message": "email is required"})
		return
	}

	respond(w, http.StatusOK, map[string]any{
		"success":   true,
		"invite_id": fmt.Sprintf("invite-%d", time.Now().UnixMilli()),
	})
}

func handleExchangeRates(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		respond(w, http.StatusBadRequest, map[string]string{"message": "from and to are required"})
		return
	}

	swiftFee := decimal.NewFromInt(20)
	if from == "USD" {
		swiftFee = decimal.NewFromInt(10)
	}

	respond(w, http.StatusOK, map[string]any{
		"from_currency": from,
		"to_currency":   to,
		"rates": map[string]decimal.Decimal{
			"SWIFT": decimal.NewFromFloat(1.05),
			"WIRE":  decimal.NewFromFloat(1.03),
			"USDC":  decimal.NewFromFloat(1.01),
		},
		"fees": map[string]decimal.Decimal{
			"SWIFT": swiftFee,
			"WIRE":  decimal.NewFromInt(15),
			"USDC":  decimal.NewFromInt(1),
		},
	})
}

func (s *store) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount         decimal.Decimal `json:"amount"`
		Currency       string          `json:"currency"`
		RecipientEmail string          `json:"recipient_email"`
		Method         string          `json:"payment_method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}
	if !req.Amount.IsPositive() || req.Currency == "" || req.RecipientEmail == "" {
		respond(w, http.StatusUnprocessableEntity, map[string]string{"message": "amount, currency and recipient_email are required"})
		return
	}

	id := fmt.Sprintf("rail-%d-%04d", time.Now().UnixMilli(), rand.Intn(10000))
	link := "https://pay.rail.example/" + id

	rate := decimal.NewFromFloat(1.05)
	fee := decimal.Max(decimal.NewFromInt(25), req.Amount.Mul(decimal.NewFromFloat(0.05)))
	var sav *savings
	if req.Method == "USDC" {
		rate = decimal.NewFromFloat(1.01)
		fee = decimal.Max(decimal.NewFromInt(5), req.Amount.Mul(decimal.NewFromFloat(0.01)))
		sav = &savings{
			Amount:     decimal.Max(decimal.NewFromInt(20), req.Amount.Mul(decimal.NewFromFloat(0.04))),
			Percentage: 4,
		}
	}

	p := &payment{
		ID:             id,
		Amount:         req.Amount,
		Currency:       req.Currency,
		RecipientEmail: req.RecipientEmail,
		Method:         req.Method,
		Status:         "processing",
		ExchangeRate:   rate,
		Fee:            fee,
		Savings:        sav,
		CreatedAt:      time.Now().UTC(),
		PaymentLink:    &link,
	}

	s.mu.Lock()
	s.payments[id] = p
	s.mu.Unlock()

	respond(w, http.StatusCreated, p)
}

func (s *store) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.Lock()
	p, ok := s.payments[id]
	if ok && p.Status == "processing" && time.Since(p.CreatedAt) > 10*time.Second {
		p.Status = "completed"
		now := time.Now().UTC()
		p.CompletedAt = &now
	}
	s.mu.Unlock()

	if !ok {
		respond(w, http.StatusNotFound, map[string]string{"message": "payment not found"})
		return
	}
	respond(w, http.StatusOK, p)
}
