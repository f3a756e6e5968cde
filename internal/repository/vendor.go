package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vendorpay/vendorpay-backend/internal/domain"
)

const vendorColumns = `id, user_id, name, email, country, currency, contact_name, contact_phone,
	website, accepts_crypto, payment_terms, notes, status, created_at, updated_at`

type VendorRepository struct {
	db *sql.DB
}

func NewVendorRepository(db *sql.DB) *VendorRepository {
	return &VendorRepository{db: db}
}

func (r *VendorRepository) Create(ctx context.Context, v *domain.Vendor) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO vendors (
			id, user_id, name, email, country, currency, contact_name, contact_phone,
			website, accepts_crypto, payment_terms, notes, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		v.ID, v.UserID, v.Name, v.Email, v.Country, v.Currency, v.ContactName, v.ContactPhone,
		v.Website, v.AcceptsCrypto, v.PaymentTerms, v.Notes, v.Status, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("Create: %w", domain.ErrVendorExists)
		}
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// GetByOwner resolves a vendor scoped to its owning user. A vendor owned by
// someone else is indistinguishable from a missing one.
func (r *VendorRepository) GetByOwner(ctx context.Context, userID, vendorID uuid.UUID) (*domain.Vendor, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+vendorColumns+` FROM vendors WHERE id = $1 AND user_id = $2`, vendorID, userID,
	)
	v, err := scanVendor(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByOwner: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByOwner: %w", err)
	}
	return v, nil
}

func (r *VendorRepository) ListByOwner(ctx context.Context, userID uuid.UUID) ([]domain.Vendor, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+vendorColumns+` FROM vendors WHERE user_id = $1 ORDER BY name ASC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByOwner: %w", err)
	}
	defer rows.Close()
	return collectVendors(rows, "ListByOwner")
}

func (r *VendorRepository) ListCryptoByOwner(ctx context.Context, userID uuid.UUID) ([]domain.Vendor, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+vendorColumns+` FROM vendors
		 WHERE user_id = $1 AND accepts_crypto = true ORDER BY name ASC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListCryptoByOwner: %w", err)
	}
	defer rows.Close()
	return collectVendors(rows, "ListCryptoByOwner")
}

func (r *VendorRepository) Update(ctx context.Context, userID, vendorID uuid.UUID, upd domain.VendorUpdate) (*domain.Vendor, error) {
	var status sql.NullString
	if upd.Status != nil {
		status = sql.NullString{String: string(*upd.Status), Valid: true}
	}

	row := r.db.QueryRowContext(ctx,
		`UPDATE vendors SET
			name = COALESCE($1, name),
			email = COALESCE($2, email),
			country = COALESCE($3, country),
			currency = COALESCE($4, currency),
			contact_name = COALESCE($5, contact_name),
			contact_phone = COALESCE($6, contact_phone),
			website = COALESCE($7, website),
			accepts_crypto = COALESCE($8, accepts_crypto),
			payment_terms = COALESCE($9, payment_terms),
			notes = COALESCE($10, notes),
			status = COALESCE($11, status),
			updated_at = now()
		 WHERE id = $12 AND user_id = $13
		 RETURNING `+vendorColumns,
		nullableString(upd.Name), nullableString(upd.Email), nullableString(upd.Country),
		nullableString(upd.Currency), nullableString(upd.ContactName), nullableString(upd.ContactPhone),
		nullableString(upd.Website), nullableBool(upd.AcceptsCrypto), nullableString(upd.PaymentTerms),
		nullableString(upd.Notes), status, vendorID, userID,
	)
	v, err := scanVendor(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("Update: %w", domain.ErrNotFound)
		}
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("Update: %w", domain.ErrVendorExists)
		}
		return nil, fmt.Errorf("Update: %w", err)
	}
	return v, nil
}

func (r *VendorRepository) Delete(ctx context.Context, userID, vendorID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM vendors WHERE id = $1 AND user_id = $2`, vendorID, userID,
	)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Delete: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func collectVendors(rows *sql.Rows, op string) ([]domain.Vendor, error) {
	var vendors []domain.Vendor
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		vendors = append(vendors, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return vendors, nil
}

func scanVendor(s scanner) (*domain.Vendor, error) {
	var v domain.Vendor
	err := s.Scan(
		&v.ID, &v.UserID, &v.Name, &v.Email, &v.Country, &v.Currency, &v.ContactName, &v.ContactPhone,
		&v.Website, &v.AcceptsCrypto, &v.PaymentTerms, &v.Notes, &v.Status, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
