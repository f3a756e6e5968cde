package domain

import (
	"time"

	"github.com/google/uuid"
)

type VendorStatus string

const (
	VendorStatusActive   VendorStatus = "ACTIVE"
	VendorStatusInactive VendorStatus = "INACTIVE"
)

type Vendor struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Name          string
	Email         string
	Country       string
	Currency      string
	ContactName   *string
	ContactPhone  *string
	Website       *string
	AcceptsCrypto bool
	PaymentTerms  *string
	Notes         *string
	Status        VendorStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type BankAccount struct {
	ID            uuid.UUID
	VendorID      uuid.UUID
	BankName      string
	AccountNumber string
	AccountName   string
	SwiftCode     *string
	RoutingNumber *string
	IBAN          *string
	Currency      string
	IsDefault     bool
	CreatedAt     time.Time
}

// VendorUpdate carries a partial update; nil fields are left untouched.
type VendorUpdate struct {
	Name          *string
	Email         *string
	Country       *string
	Currency      *string
	ContactName   *string
	ContactPhone  *string
	Website       *string
	AcceptsCrypto *bool
	PaymentTerms  *string
	Notes         *string
	Status        *VendorStatus
}
