package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vendorpay/vendorpay-backend/internal/domain"
)

const paymentMethodColumns = `id, user_id, type, name, is_default, created_at`

type PaymentMethodRepository struct {
	db *sql.DB
}

func NewPaymentMethodRepository(db *sql.DB) *PaymentMethodRepository {
	return &PaymentMethodRepository{db: db}
}

// FindOrCreate returns the user's payment-method record for the settlement
// type, creating one with the given display name on first use.
func (r *PaymentMethodRepository) FindOrCreate(ctx context.Context, userID uuid.UUID, methodType domain.PaymentType, name string) (*domain.PaymentMethod, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+paymentMethodColumns+` FROM payment_methods
		 WHERE user_id = $1 AND type = $2
		 ORDER BY created_at ASC LIMIT 1`,
		userID, methodType,
	)
	m, err := scanPaymentMethod(row)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("FindOrCreate: %w", err)
	}

	created := &domain.PaymentMethod{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      methodType,
		Name:      name,
		IsDefault: false,
		CreatedAt: time.Now().UTC(),
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO payment_methods (id, user_id, type, name, is_default, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		created.ID, created.UserID, created.Type, created.Name, created.IsDefault, created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("FindOrCreate: %w", err)
	}
	return created, nil
}

func (r *PaymentMethodRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.PaymentMethod, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+paymentMethodColumns+` FROM payment_methods WHERE user_id = $1 ORDER BY created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByUser: %w", err)
	}
	defer rows.Close()

	var methods []domain.PaymentMethod
	for rows.Next() {
		m, err := scanPaymentMethod(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByUser: %w", err)
		}
		methods = append(methods, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByUser: %w", err)
	}
	return methods, nil
}

func scanPaymentMethod(s scanner) (*domain.PaymentMethod, error) {
	var m domain.PaymentMethod
	err := s.Scan(&m.ID, &m.UserID, &m.Type, &m.Name, &m.IsDefault, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
