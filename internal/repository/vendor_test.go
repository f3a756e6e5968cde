package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendorpay/vendorpay-backend/internal/domain"
	"github.com/vendorpay/vendorpay-backend/internal/repository"
	"github.com/vendorpay/vendorpay-backend/internal/testutil"
)

func newVendor(userID uuid.UUID, name, email string) *domain.Vendor {
	now := time.Now().UTC()
	return &domain.Vendor{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		Email:     email,
		Country:   "DE",
		Currency:  "EUR",
		Status:    domain.VendorStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestVendorRepository_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewVendorRepository(db)
	ctx := context.Background()

	owner := testutil.SeedTestUser(t, db, "owner@test.com", "Owner")
	v := newVendor(owner.ID, "Acme GmbH", "billing@acme.test")
	require.NoError(t, repo.Create(ctx, v))

	got, err := repo.GetByOwner(ctx, owner.ID, v.ID)
	require.NoError(t, err)
	assert.Equal(t, v.ID, got.ID)
	assert.Equal(t, "Acme GmbH", got.Name)
	assert.Equal(t, domain.VendorStatusActive, got.Status)
}

func TestVendorRepository_DuplicateEmailPerOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewVendorRepository(db)
	ctx := context.Background()

	owner := testutil.SeedTestUser(t, db, "owner@test.com", "Owner")
	other := testutil.SeedTestUser(t, db, "other@test.com", "Other")

	require.NoError(t, repo.Create(ctx, newVendor(owner.ID, "Acme", "billing@acme.test")))

	err := repo.Create(ctx, newVendor(owner.ID, "Acme Again", "billing@acme.test"))
	require.ErrorIs(t, err, domain.ErrVendorExists)

	// Uniqueness is scoped per owner, not global.
	require.NoError(t, repo.Create(ctx, newVendor(other.ID, "Acme", "billing@acme.test")))
}

func TestVendorRepository_GetByOwnerScoping(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewVendorRepository(db)
	ctx := context.Background()

	owner := testutil.SeedTestUser(t, db, "owner@test.com", "Owner")
	stranger := testutil.SeedTestUser(t, db, "stranger@test.com", "Stranger")
	v := testutil.SeedTestVendor(t, db, owner.ID, "Acme", "billing@acme.test", false)

	_, err := repo.GetByOwner(ctx, stranger.ID, v.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVendorRepository_PartialUpdate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewVendorRepository(db)
	ctx := context.Background()

	owner := testutil.SeedTestUser(t, db, "owner@test.com", "Owner")
	v := testutil.SeedTestVendor(t, db, owner.ID, "Acme", "billing@acme.test", false)

	name := "Acme International"
	crypto := true
	got, err := repo.Update(ctx, owner.ID, v.ID, domain.VendorUpdate{
		Name:          &name,
		AcceptsCrypto: &crypto,
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme International", got.Name)
	assert.True(t, got.AcceptsCrypto)
	assert.Equal(t, "billing@acme.test", got.Email, "untouched fields survive")
	assert.Equal(t, "DE", got.Country)
}

func TestVendorRepository_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewVendorRepository(db)
	ctx := context.Background()

	owner := testutil.SeedTestUser(t, db, "owner@test.com", "Owner")
	v := testutil.SeedTestVendor(t, db, owner.ID, "Acme", "billing@acme.test", false)

	require.NoError(t, repo.Delete(ctx, owner.ID, v.ID))
	require.ErrorIs(t, repo.Delete(ctx, owner.ID, v.ID), domain.ErrNotFound)

	_, err := repo.GetByOwner(ctx, owner.ID, v.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVendorRepository_ListCryptoByOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewVendorRepository(db)
	ctx := context.Background()

	owner := testutil.SeedTestUser(t, db, "owner@test.com", "Owner")
	testutil.SeedTestVendor(t, db, owner.ID, "Bank Only", "bank@test.com", false)
	cryptoVendor := testutil.SeedTestVendor(t, db, owner.ID, "Crypto Inc", "crypto@test.com", true)

	vendors, err := repo.ListCryptoByOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, vendors, 1)
	assert.Equal(t, cryptoVendor.ID, vendors[0].ID)
}
