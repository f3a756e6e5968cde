package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/vendorpay/vendorpay-backend/internal/domain"
)

const bankAccountColumns = `id, vendor_id, bank_name, account_number, account_name, swift_code,
	routing_number, iban, currency, is_default, created_at`

type BankAccountRepository struct {
	db *sql.DB
}

func NewBankAccountRepository(db *sql.DB) *BankAccountRepository {
	return &BankAccountRepository{db: db}
}

// Create inserts the account. When it is flagged as default, the vendor's
// previous default is cleared in the same transaction so exactly one default
// survives concurrent writers.
func (r *BankAccountRepository) Create(ctx context.Context, a *domain.BankAccount) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Create: begin tx: %w", err)
	}
	defer tx.Rollback()

	if a.IsDefault {
		_, err := tx.ExecContext(ctx,
			`UPDATE bank_accounts SET is_default = false WHERE vendor_id = $1 AND is_default = true`,
			a.VendorID,
		)
		if err != nil {
			return fmt.Errorf("Create: clear defaults: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO bank_accounts (
			id, vendor_id, bank_name, account_number, account_name, swift_code,
			routing_number, iban, currency, is_default, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.VendorID, a.BankName, a.AccountNumber, a.AccountName, a.SwiftCode,
		a.RoutingNumber, a.IBAN, a.Currency, a.IsDefault, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("Create: commit: %w", err)
	}
	return nil
}

func (r *BankAccountRepository) ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]domain.BankAccount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bankAccountColumns+` FROM bank_accounts WHERE vendor_id = $1 ORDER BY created_at ASC`,
		vendorID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByVendor: %w", err)
	}
	defer rows.Close()

	var accounts []domain.BankAccount
	for rows.Next() {
		a, err := scanBankAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByVendor: %w", err)
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByVendor: %w", err)
	}
	return accounts, nil
}

func scanBankAccount(s scanner) (*domain.BankAccount, error) {
	var a domain.BankAccount
	err := s.Scan(
		&a.ID, &a.VendorID, &a.BankName, &a.AccountNumber, &a.AccountName, &a.SwiftCode,
		&a.RoutingNumber, &a.IBAN, &a.Currency, &a.IsDefault, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
