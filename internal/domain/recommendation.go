package domain

import "github.com/shopspring/decimal"

// PaymentOption is one candidate settlement method for a payment. Options are
// built fresh per recommendation request and never persisted.
type PaymentOption struct {
	Method        PaymentType     `json:"method"`
	Category      MethodCategory  `json:"type"`
	EstimatedFee  decimal.Decimal `json:"estimated_fee"`
	EstimatedTime string          `json:"estimated_time"`
	ExchangeRate  decimal.Decimal `json:"exchange_rate"`
	TotalCost     decimal.Decimal `json:"total_cost"`
}

type Savings struct {
	Amount     decimal.Decimal `json:"amount"`
	Percentage float64         `json:"percentage"`
}

type RecipientInfo struct {
	AcceptsCrypto   bool `json:"accepts_crypto"`
	NeedsOnboarding bool `json:"needs_onboarding"`
}

// Recommendation is the advisor's ranked view of the settlement options for
// one payment. Options are sorted ascending by total cost; BestOption is
// always the first element.
type Recommendation struct {
	Recipient        RecipientInfo   `json:"recipient"`
	Options          []PaymentOption `json:"options"`
	BestOption       PaymentOption   `json:"best_option"`
	PotentialSavings Savings         `json:"potential_savings"`
	AdvisoryText     string          `json:"advisory_text"`
}
