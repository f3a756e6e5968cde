package domain

import (
	"time"

	"github.com/google/uuid"
)

// Wallet is a crypto wallet attached to either a user or a vendor;
// exactly one of UserID/VendorID is set.
type Wallet struct {
	ID        uuid.UUID
	UserID    *uuid.UUID
	VendorID  *uuid.UUID
	Address   string
	Network   string
	Type      string
	Label     *string
	IsDefault bool
	CreatedAt time.Time
}
