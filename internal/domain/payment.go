package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentType string

const (
	PaymentTypeSWIFT PaymentType = "SWIFT"
	PaymentTypeWIRE  PaymentType = "WIRE"
	PaymentTypeACH   PaymentType = "ACH"
	PaymentTypeSEPA  PaymentType = "SEPA"
	PaymentTypeUSDC  PaymentType = "USDC"
)

func (t PaymentType) IsValid() bool {
	switch t {
	case PaymentTypeSWIFT, PaymentTypeWIRE, PaymentTypeACH, PaymentTypeSEPA, PaymentTypeUSDC:
		return true
	default:
		return false
	}
}

type MethodCategory string

const (
	MethodCategoryBank   MethodCategory = "BANK"
	MethodCategoryCrypto MethodCategory = "CRYPTO"
)

func (t PaymentType) Category() MethodCategory {
	if t == PaymentTypeUSDC {
		return MethodCategoryCrypto
	}
	return MethodCategoryBank
}

type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "PENDING"
	TransactionStatusProcessing TransactionStatus = "PROCESSING"
	TransactionStatusCompleted  TransactionStatus = "COMPLETED"
	TransactionStatusFailed     TransactionStatus = "FAILED"
)

func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusFailed
}

// MapRailStatus maps a rail-reported status string onto our transaction
// statuses. Unknown values deliberately land on PENDING.
func MapRailStatus(railStatus string) TransactionStatus {
	switch railStatus {
	case "processing":
		return TransactionStatusProcessing
	case "completed":
		return TransactionStatusCompleted
	case "failed":
		return TransactionStatusFailed
	default:
		return TransactionStatusPending
	}
}

type Transaction struct {
	ID              uuid.UUID
	SenderID        uuid.UUID
	VendorID        uuid.UUID
	Amount          decimal.Decimal
	Currency        string
	Status          TransactionStatus
	Type            PaymentType
	Description     *string
	InvoiceNumber   *string
	ExchangeRate    *decimal.Decimal
	Fee             *decimal.Decimal
	AdvisoryText    *string
	RailPaymentID   *string
	PaymentMethodID *uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
	CompletedAt     *time.Time
}

type PaymentMethod struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Type      PaymentType
	Name      string
	IsDefault bool
	CreatedAt time.Time
}

// FXOptimization records the savings achieved by settling through a cheaper
// method; one per transaction, immutable after creation.
type FXOptimization struct {
	ID                uuid.UUID
	TransactionID     uuid.UUID
	OptimalMethod     PaymentType
	PredictedRate     decimal.Decimal
	SavingsAmount     decimal.Decimal
	SavingsPercentage float64
	Reasoning         string
	CreatedAt         time.Time
}
