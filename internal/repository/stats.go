package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendorpay/vendorpay-backend/internal/domain"
)

// TypeBreakdown is one row of the per-settlement-type aggregate.
type TypeBreakdown struct {
	Type  domain.PaymentType
	Count int64
	Sum   decimal.Decimal
}

// StatsRepository serves the read-only aggregates behind the dashboard and
// payment-stats views.
type StatsRepository struct {
	db *sql.DB
}

func NewStatsRepository(db *sql.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) CountVendors(ctx context.Context, userID uuid.UUID) (total, acceptingCrypto int64, err error) {
	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE accepts_crypto) FROM vendors WHERE user_id = $1`,
		userID,
	).Scan(&total, &acceptingCrypto)
	if err != nil {
		return 0, 0, fmt.Errorf("CountVendors: %w", err)
	}
	return total, acceptingCrypto, nil
}

func (r *StatsRepository) CountTransactions(ctx context.Context, senderID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE sender_id = $1`, senderID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("CountTransactions: %w", err)
	}
	return count, nil
}

func (r *StatsRepository) SumCompletedAmount(ctx context.Context, senderID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE sender_id = $1 AND status = $2`,
		senderID, domain.TransactionStatusCompleted,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("SumCompletedAmount: %w", err)
	}
	return sum, nil
}

func (r *StatsRepository) SumSavings(ctx context.Context, senderID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(f.savings_amount), 0)
		 FROM fx_optimizations f JOIN transactions t ON t.id = f.transaction_id
		 WHERE t.sender_id = $1`,
		senderID,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("SumSavings: %w", err)
	}
	return sum, nil
}

func (r *StatsRepository) TransactionsByType(ctx context.Context, senderID uuid.UUID) ([]TypeBreakdown, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT type, COUNT(*), COALESCE(SUM(amount), 0)
		 FROM transactions WHERE sender_id = $1
		 GROUP BY type ORDER BY type`,
		senderID,
	)
	if err != nil {
		return nil, fmt.Errorf("TransactionsByType: %w", err)
	}
	defer rows.Close()

	var breakdown []TypeBreakdown
	for rows.Next() {
		var b TypeBreakdown
		if err := rows.Scan(&b.Type, &b.Count, &b.Sum); err != nil {
			return nil, fmt.Errorf("TransactionsByType: %w", err)
		}
		breakdown = append(breakdown, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("TransactionsByType: %w", err)
	}
	return breakdown, nil
}
