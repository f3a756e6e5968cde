package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vendorpay/vendorpay-backend/internal/domain"
)

type AIInteractionRepository struct {
	db *sql.DB
}

func NewAIInteractionRepository(db *sql.DB) *AIInteractionRepository {
	return &AIInteractionRepository{db: db}
}

func (r *AIInteractionRepository) Create(ctx context.Context, a *domain.AIInteraction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ai_interactions (id, user_id, query, response, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		a.ID, a.UserID, []byte(a.Query), []byte(a.Response), a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}
