package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vendorpay/vendorpay-backend/internal/domain"
)

const fxOptimizationColumns = `id, transaction_id, optimal_method, predicted_rate, savings_amount,
	savings_percentage, reasoning, created_at`

type FXOptimizationRepository struct {
	db *sql.DB
}

func NewFXOptimizationRepository(db *sql.DB) *FXOptimizationRepository {
	return &FXOptimizationRepository{db: db}
}

func (r *FXOptimizationRepository) Create(ctx context.Context, f *domain.FXOptimization) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO fx_optimizations (
			id, transaction_id, optimal_method, predicted_rate, savings_amount,
			savings_percentage, reasoning, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		f.ID, f.TransactionID, f.OptimalMethod, f.PredictedRate, f.SavingsAmount,
		f.SavingsPercentage, f.Reasoning, f.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *FXOptimizationRepository) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*domain.FXOptimization, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+fxOptimizationColumns+` FROM fx_optimizations WHERE transaction_id = $1`,
		transactionID,
	)

	var f domain.FXOptimization
	err := row.Scan(
		&f.ID, &f.TransactionID, &f.OptimalMethod, &f.PredictedRate, &f.SavingsAmount,
		&f.SavingsPercentage, &f.Reasoning, &f.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByTransactionID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByTransactionID: %w", err)
	}
	return &f, nil
}
