package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendorpay/vendorpay-backend/internal/domain"
	"github.com/vendorpay/vendorpay-backend/internal/logging"
	"github.com/vendorpay/vendorpay-backend/internal/rail"
)

const advisorSystemPrompt = "You are a financial advisor specializing in international payments and FX optimization"

type vendorRepo interface {
	GetByOwner(ctx context.Context, userID, vendorID uuid.UUID) (*domain.Vendor, error)
}

type railClient interface {
	CheckRecipientStatus(ctx context.Context, email string) (*rail.RecipientStatus, error)
	GetExchangeRates(ctx context.Context, fromCurrency, toCurrency string) (*rail.ExchangeRates, error)
}

type textGenerator interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

type interactionRepo interface {
	Create(ctx context.Context, a *domain.AIInteraction) error
}

// Service ranks the settlement options for a payment and explains the pick.
// The explanation comes from a text-generation service and is advisory only;
// every decision the caller can branch on is computed locally.
type Service struct {
	vendors      vendorRepo
	rail         railClient
	textGen      textGenerator
	interactions interactionRepo
}

func NewService(vendors vendorRepo, railClient railClient, textGen textGenerator, interactions interactionRepo) *Service {
	return &Service{
		vendors:      vendors,
		rail:         railClient,
		textGen:      textGen,
		interactions: interactions,
	}
}

func (s *Service) Recommend(ctx context.Context, userID, vendorID uuid.UUID, amount decimal.Decimal, currency string) (*domain.Recommendation, error) {
	vendor, err := s.vendors.GetByOwner(ctx, userID, vendorID)
	if err != nil {
		return nil, fmt.Errorf("Recommend: %w", err)
	}

	recipientStatus, err := s.rail.CheckRecipientStatus(ctx, vendor.Email)
	if err != nil {
		return nil, fmt.Errorf("Recommend: %w", err)
	}

	rates, err := s.rail.GetExchangeRates(ctx, currency, vendor.Currency)
	if err != nil {
		return nil, fmt.Errorf("Recommend: %w", err)
	}

	acceptsCrypto := recipientStatus.AcceptsCrypto || vendor.AcceptsCrypto
	options := buildOptions(amount, rates, acceptsCrypto)

	sort.Slice(options, func(i, j int) bool {
		return options[i].TotalCost.LessThan(options[j].TotalCost)
	})

	savings := computeSavings(options)
	advisoryText := s.generateAdvisory(ctx, vendor, amount, currency, options, recipientStatus, savings)

	rec := &domain.Recommendation{
		Recipient: domain.RecipientInfo{
			AcceptsCrypto:   acceptsCrypto,
			NeedsOnboarding: options[0].Method == domain.PaymentTypeUSDC && !recipientStatus.Registered,
		},
		Options:          options,
		BestOption:       options[0],
		PotentialSavings: savings,
		AdvisoryText:     advisoryText,
	}

	s.recordInteraction(ctx, userID, vendorID, vendor.Name, amount, currency, rec)

	return rec, nil
}

func buildOptions(amount decimal.Decimal, rates *rail.ExchangeRates, acceptsCrypto bool) []domain.PaymentOption {
	options := []domain.PaymentOption{
		newOption(domain.PaymentTypeSWIFT, "2-5 business days", amount,
			rates.Rates[domain.PaymentTypeSWIFT], rates.Fees[domain.PaymentTypeSWIFT]),
	}

	wireRate, haveRate := rates.Rates[domain.PaymentTypeWIRE]
	wireFee, haveFee := rates.Fees[domain.PaymentTypeWIRE]
	if haveRate && haveFee {
		options = append(options,
			newOption(domain.PaymentTypeWIRE, "1-3 business days", amount, wireRate, wireFee))
	}

	if acceptsCrypto {
		options = append(options,
			newOption(domain.PaymentTypeUSDC, "Instant", amount,
				rates.Rates[domain.PaymentTypeUSDC], rates.Fees[domain.PaymentTypeUSDC]))
	}

	return options
}

func newOption(method domain.PaymentType, estimatedTime string, amount, rate, fee decimal.Decimal) domain.PaymentOption {
	return domain.PaymentOption{
		Method:        method,
		Category:      method.Category(),
		EstimatedFee:  fee,
		EstimatedTime: estimatedTime,
		ExchangeRate:  rate,
		TotalCost:     amount.Mul(rate).Add(fee),
	}
}

// computeSavings compares the cheapest option against the most expensive one.
// Options must already be sorted ascending by total cost.
func computeSavings(options []domain.PaymentOption) domain.Savings {
	if len(options) < 2 {
		return domain.Savings{Amount: decimal.Zero, Percentage: 0}
	}

	cheapest := options[0]
	mostExpensive := options[len(options)-1]
	amount := mostExpensive.TotalCost.Sub(cheapest.TotalCost)

	var percentage float64
	if mostExpensive.TotalCost.IsPositive() {
		percentage, _ = amount.Div(mostExpensive.TotalCost).Mul(decimal.NewFromInt(100)).Float64()
	}

	return domain.Savings{Amount: amount, Percentage: percentage}
}

func (s *Service) generateAdvisory(
	ctx context.Context,
	vendor *domain.Vendor,
	amount decimal.Decimal,
	currency string,
	options []domain.PaymentOption,
	recipientStatus *rail.RecipientStatus,
	savings domain.Savings,
) string {
	prompt := buildPrompt(vendor, amount, currency, options, recipientStatus)

	text, err := s.textGen.Complete(ctx, advisorSystemPrompt, prompt)
	if err != nil {
		logging.FromContext(ctx).Warn("advisory generation failed, using fallback",
			"vendor_id", vendor.ID, "error", err)
		return fallbackAdvisory(options[0], savings)
	}
	return text
}

func buildPrompt(
	vendor *domain.Vendor,
	amount decimal.Decimal,
	currency string,
	options []domain.PaymentOption,
	recipientStatus *rail.RecipientStatus,
) string {
	var b strings.Builder

	fmt.Fprintf(&b, "I need a concise recommendation for a cross-border payment:\n\n")
	fmt.Fprintf(&b, "Payment amount: %s %s\n", amount, currency)
	fmt.Fprintf(&b, "Recipient: %s in %s\n", vendor.Name, vendor.Country)
	fmt.Fprintf(&b, "Recipient currency: %s\n", vendor.Currency)
	fmt.Fprintf(&b, "Recipient accepts crypto: %s\n", yesNo(recipientStatus.AcceptsCrypto || vendor.AcceptsCrypto))
	fmt.Fprintf(&b, "Recipient is registered with the payment rail: %s\n\n", yesNo(recipientStatus.Registered))

	b.WriteString("Payment options:\n")
	for _, opt := range options {
		fmt.Fprintf(&b, "- %s: Fee %s %s, Exchange rate %s, Settlement time %s, Total cost %s %s\n",
			opt.Method, opt.EstimatedFee, currency, opt.ExchangeRate,
			opt.EstimatedTime, opt.TotalCost.StringFixed(2), currency)
	}

	b.WriteString("\nProvide a brief, business-focused recommendation (under 100 words) that highlights:\n")
	b.WriteString("1. The most cost-effective method\n")
	b.WriteString("2. Time savings\n")
	b.WriteString("3. Any actions needed (like inviting the recipient to the payment rail)\n")
	b.WriteString("4. Quantified savings compared to the most expensive option\n")

	return b.String()
}

func fallbackAdvisory(best domain.PaymentOption, savings domain.Savings) string {
	if savings.Percentage > 0 {
		return fmt.Sprintf("Recommend using %s for this payment to save %.1f%% compared to traditional methods.",
			best.Method, savings.Percentage)
	}
	return fmt.Sprintf("Recommend using %s which is the most cost-effective option for this payment.", best.Method)
}

// recordInteraction keeps an audit trail of what was asked and answered.
// A failed write degrades to a warning; it never fails the recommendation.
func (s *Service) recordInteraction(
	ctx context.Context,
	userID, vendorID uuid.UUID,
	vendorName string,
	amount decimal.Decimal,
	currency string,
	rec *domain.Recommendation,
) {
	log := logging.FromContext(ctx)

	query, err := json.Marshal(map[string]any{
		"vendor_id":   vendorID,
		"vendor_name": vendorName,
		"amount":      amount,
		"currency":    currency,
	})
	if err != nil {
		log.Warn("failed to encode interaction query", "error", err)
		return
	}

	response, err := json.Marshal(map[string]any{
		"options":           rec.Options,
		"best_option":       rec.BestOption,
		"potential_savings": rec.PotentialSavings,
		"recommendation":    rec.AdvisoryText,
	})
	if err != nil {
		log.Warn("failed to encode interaction response", "error", err)
		return
	}

	err = s.interactions.Create(ctx, &domain.AIInteraction{
		ID:        uuid.New(),
		UserID:    userID,
		Query:     query,
		Response:  response,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		log.Warn("failed to record advisor interaction", "user_id", userID, "error", err)
	}
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
