package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/vendorpay/vendorpay-backend/internal/domain"
)

const walletColumns = `id, user_id, vendor_id, address, network, type, label, is_default, created_at`

type WalletRepository struct {
	db *sql.DB
}

func NewWalletRepository(db *sql.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// Create inserts the wallet and, when it is flagged as default, clears the
// owner's previous default in the same transaction. For vendor wallets the
// vendor's accepts_crypto flag is forced true as part of the same commit.
func (r *WalletRepository) Create(ctx context.Context, w *domain.Wallet) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Create: begin tx: %w", err)
	}
	defer tx.Rollback()

	if w.IsDefault {
		switch {
		case w.VendorID != nil:
			_, err = tx.ExecContext(ctx,
				`UPDATE wallets SET is_default = false WHERE vendor_id = $1 AND is_default = true`, w.VendorID)
		case w.UserID != nil:
			_, err = tx.ExecContext(ctx,
				`UPDATE wallets SET is_default = false WHERE user_id = $1 AND is_default = true`, w.UserID)
		}
		if err != nil {
			return fmt.Errorf("Create: clear defaults: %w", err)
		}
	}

	if w.VendorID != nil {
		_, err = tx.ExecContext(ctx,
			`UPDATE vendors SET accepts_crypto = true, updated_at = now() WHERE id = $1`, w.VendorID)
		if err != nil {
			return fmt.Errorf("Create: set accepts_crypto: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO wallets (id, user_id, vendor_id, address, network, type, label, is_default, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		w.ID, w.UserID, w.VendorID, w.Address, w.Network, w.Type, w.Label, w.IsDefault, w.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("Create: %w", domain.ErrWalletExists)
		}
		return fmt.Errorf("Create: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("Create: commit: %w", err)
	}
	return nil
}

func (r *WalletRepository) VendorWalletExists(ctx context.Context, address, network string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM wallets WHERE address = $1 AND network = $2 AND vendor_id IS NOT NULL
		)`, address, network,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("VendorWalletExists: %w", err)
	}
	return exists, nil
}

func (r *WalletRepository) UserWalletExists(ctx context.Context, userID uuid.UUID, address, network string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM wallets WHERE address = $1 AND network = $2 AND user_id = $3
		)`, address, network, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("UserWalletExists: %w", err)
	}
	return exists, nil
}

func (r *WalletRepository) ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]domain.Wallet, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+walletColumns+` FROM wallets WHERE vendor_id = $1 ORDER BY created_at ASC`, vendorID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByVendor: %w", err)
	}
	defer rows.Close()
	return collectWallets(rows, "ListByVendor")
}

func (r *WalletRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+walletColumns+` FROM wallets WHERE user_id = $1 ORDER BY created_at ASC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByUser: %w", err)
	}
	defer rows.Close()
	return collectWallets(rows, "ListByUser")
}

func collectWallets(rows *sql.Rows, op string) ([]domain.Wallet, error) {
	var wallets []domain.Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		wallets = append(wallets, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return wallets, nil
}

func scanWallet(s scanner) (*domain.Wallet, error) {
	var w domain.Wallet
	var userID, vendorID uuid.NullUUID
	err := s.Scan(
		&w.ID, &userID, &vendorID, &w.Address, &w.Network, &w.Type, &w.Label, &w.IsDefault, &w.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		w.UserID = &userID.UUID
	}
	if vendorID.Valid {
		w.VendorID = &vendorID.UUID
	}
	return &w, nil
}
