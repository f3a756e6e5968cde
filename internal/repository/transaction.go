package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendorpay/vendorpay-backend/internal/domain"
)

const transactionColumns = `t.id, t.sender_id, t.vendor_id, t.amount, t.currency, t.status, t.type,
	t.description, t.invoice_number, t.exchange_rate, t.fee, t.advisory_text, t.rail_payment_id,
	t.payment_method_id, t.created_at, t.updated_at, t.completed_at`

// TransactionRecord is a transaction joined with its recipient vendor's name
// for list/detail views.
type TransactionRecord struct {
	domain.Transaction
	VendorName string
}

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (
			id, sender_id, vendor_id, amount, currency, status, type,
			description, invoice_number, exchange_rate, fee, advisory_text, rail_payment_id,
			payment_method_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		t.ID, t.SenderID, t.VendorID, t.Amount, t.Currency, t.Status, t.Type,
		t.Description, t.InvoiceNumber, t.ExchangeRate, t.Fee, t.AdvisoryText, t.RailPaymentID,
		t.PaymentMethodID, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// GetForSender fetches a transaction scoped to the sending user. Absence and
// foreign ownership both come back as ErrNotFound.
func (r *TransactionRepository) GetForSender(ctx context.Context, senderID, transactionID uuid.UUID) (*TransactionRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+`, v.name
		 FROM transactions t JOIN vendors v ON v.id = t.vendor_id
		 WHERE t.id = $1 AND t.sender_id = $2`,
		transactionID, senderID,
	)
	t, err := scanTransactionRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForSender: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetForSender: %w", err)
	}
	return t, nil
}

func (r *TransactionRepository) ListBySender(ctx context.Context, senderID uuid.UUID, limit int) ([]TransactionRecord, error) {
	query := `SELECT ` + transactionColumns + `, v.name
		FROM transactions t JOIN vendors v ON v.id = t.vendor_id
		WHERE t.sender_id = $1 ORDER BY t.created_at DESC`
	args := []any{senderID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListBySender: %w", err)
	}
	defer rows.Close()
	return collectTransactionRecords(rows, "ListBySender")
}

func (r *TransactionRepository) ListByVendor(ctx context.Context, vendorID uuid.UUID, limit int) ([]TransactionRecord, error) {
	query := `SELECT ` + transactionColumns + `, v.name
		FROM transactions t JOIN vendors v ON v.id = t.vendor_id
		WHERE t.vendor_id = $1 ORDER BY t.created_at DESC`
	args := []any{vendorID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListByVendor: %w", err)
	}
	defer rows.Close()
	return collectTransactionRecords(rows, "ListByVendor")
}

func (r *TransactionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TransactionStatus, completedAt *time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET status = $1, completed_at = COALESCE($2, completed_at), updated_at = now()
		 WHERE id = $3`,
		status, completedAt, id,
	)
	if err != nil {
		return fmt.Errorf("UpdateStatus: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateStatus: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("UpdateStatus: %w", domain.ErrNotFound)
	}
	return nil
}

func collectTransactionRecords(rows *sql.Rows, op string) ([]TransactionRecord, error) {
	var records []TransactionRecord
	for rows.Next() {
		t, err := scanTransactionRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		records = append(records, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return records, nil
}

func scanTransactionRecord(s scanner) (*TransactionRecord, error) {
	var t TransactionRecord
	var exchangeRate, fee decimal.NullDecimal
	var paymentMethodID uuid.NullUUID

	err := s.Scan(
		&t.ID, &t.SenderID, &t.VendorID, &t.Amount, &t.Currency, &t.Status, &t.Type,
		&t.Description, &t.InvoiceNumber, &exchangeRate, &fee, &t.AdvisoryText, &t.RailPaymentID,
		&paymentMethodID, &t.CreatedAt, &t.UpdatedAt, &t.CompletedAt,
		&t.VendorName,
	)
	if err != nil {
		return nil, err
	}

	if exchangeRate.Valid {
		t.ExchangeRate = &exchangeRate.Decimal
	}
	if fee.Valid {
		t.Fee = &fee.Decimal
	}
	if paymentMethodID.Valid {
		t.PaymentMethodID = &paymentMethodID.UUID
	}
	return &t, nil
}
