package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/vendorpay/vendorpay-backend/internal/domain"
)

const TestPassword = "password123"

func SeedTestUser(t *testing.T, db *sql.DB, email, name string) *domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Country:      "US",
		Currency:     "USD",
		CreatedAt:    time.Now().UTC(),
	}

	_, err = db.Exec(
		`INSERT INTO users (id, email, name, password_hash, country, currency, accepts_crypto, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.Country, u.Currency, u.AcceptsCrypto, u.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed test user %s: %v", email, err)
	}
	return u
}

func SeedTestVendor(t *testing.T, db *sql.DB, userID uuid.UUID, name, email string, acceptsCrypto bool) *domain.Vendor {
	t.Helper()

	now := time.Now().UTC()
	v := &domain.Vendor{
		ID:            uuid.New(),
		UserID:        userID,
		Name:          name,
		Email:         email,
		Country:       "DE",
		Currency:      "EUR",
		AcceptsCrypto: acceptsCrypto,
		Status:        domain.VendorStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	_, err := db.Exec(
		`INSERT INTO vendors (id, user_id, name, email, country, currency, accepts_crypto, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		v.ID, v.UserID, v.Name, v.Email, v.Country, v.Currency, v.AcceptsCrypto, v.Status, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("seed test vendor %s: %v", name, err)
	}
	return v
}

func SeedTestTransaction(t *testing.T, db *sql.DB, senderID, vendorID uuid.UUID, amount string, status domain.TransactionStatus, paymentType domain.PaymentType) *domain.Transaction {
	t.Helper()

	now := time.Now().UTC()
	tx := &domain.Transaction{
		ID:        uuid.New(),
		SenderID:  senderID,
		VendorID:  vendorID,
		Amount:    decimal.RequireFromString(amount),
		Currency:  "USD",
		Status:    status,
		Type:      paymentType,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if status == domain.TransactionStatusCompleted {
		tx.CompletedAt = &now
	}

	_, err := db.Exec(
		`INSERT INTO transactions (id, sender_id, vendor_id, amount, currency, status, type, created_at, updated_at, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		tx.ID, tx.SenderID, tx.VendorID, tx.Amount, tx.Currency, tx.Status, tx.Type, tx.CreatedAt, tx.UpdatedAt, tx.CompletedAt,
	)
	if err != nil {
		t.Fatalf("seed test transaction: %v", err)
	}
	return tx
}

func SeedTestWallet(t *testing.T, db *sql.DB, vendorID uuid.UUID, address, network string) *domain.Wallet {
	t.Helper()

	w := &domain.Wallet{
		ID:        uuid.New(),
		VendorID:  &vendorID,
		Address:   address,
		Network:   network,
		Type:      "USDC",
		CreatedAt: time.Now().UTC(),
	}

	_, err := db.Exec(
		`INSERT INTO wallets (id, vendor_id, address, network, type, is_default, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		w.ID, w.VendorID, w.Address, w.Network, w.Type, w.IsDefault, w.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed test wallet %s: %v", address, err)
	}
	return w
}
