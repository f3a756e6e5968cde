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

func newVendorWallet(vendorID uuid.UUID, address string, isDefault bool) *domain.Wallet {
	return &domain.Wallet{
		ID:        uuid.New(),
		VendorID:  &vendorID,
		Address:   address,
		Network:   "ethereum",
		Type:      "USDC",
		IsDefault: isDefault,
		CreatedAt: time.Now().UTC(),
	}
}

func TestWalletRepository_CreateForcesAcceptsCrypto(t *testing.T) {
	db := testutil.SetupTestDB(t)
	wallets := repository.NewWalletRepository(db)
	vendors := repository.NewVendorRepository(db)
	ctx := context.Background()

	owner := testutil.SeedTestUser(t, db, "owner@test.com", "Owner")
	v := testutil.SeedTestVendor(t, db, owner.ID, "Acme", "billing@acme.test", false)

	require.NoError(t, wallets.Create(ctx, newVendorWallet(v.ID, "0xabc", false)))

	got, err := vendors.GetByOwner(ctx, owner.ID, v.ID)
	require.NoError(t, err)
	assert.True(t, got.AcceptsCrypto, "adding a wallet marks the vendor crypto-capable")
}

func TestWalletRepository_DefaultExclusivity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	wallets := repository.NewWalletRepository(db)
	ctx := context.Background()

	owner := testutil.SeedTestUser(t, db, "owner@test.com", "Owner")
	v := testutil.SeedTestVendor(t, db, owner.ID, "Acme", "billing@acme.test", true)

	first := newVendorWallet(v.ID, "0xaaa", true)
	second := newVendorWallet(v.ID, "0xbbb", true)
	require.NoError(t, wallets.Create(ctx, first))
	require.NoError(t, wallets.Create(ctx, second))

	list, err := wallets.ListByVendor(ctx, v.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	defaults := 0
	for _, w := range list {
		if w.IsDefault {
			defaults++
			assert.Equal(t, second.ID, w.ID, "latest default wins")
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestWalletRepository_DuplicateVendorAddress(t *testing.T) {
	db := testutil.SetupTestDB(t)
	wallets := repository.NewWalletRepository(db)
	ctx := context.Background()

	owner := testutil.SeedTestUser(t, db, "owner@test.com", "Owner")
	v1 := testutil.SeedTestVendor(t, db, owner.ID, "Acme", "billing@acme.test", true)
	v2 := testutil.SeedTestVendor(t, db, owner.ID, "Other", "billing@other.test", true)

	require.NoError(t, wallets.Create(ctx, newVendorWallet(v1.ID, "0xabc", false)))

	// The same address+network cannot back two vendors.
	err := wallets.Create(ctx, newVendorWallet(v2.ID, "0xabc", false))
	require.ErrorIs(t, err, domain.ErrWalletExists)

	exists, err := wallets.VendorWalletExists(ctx, "0xabc", "ethereum")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestWalletRepository_UserWalletScoping(t *testing.T) {
	db := testutil.SetupTestDB(t)
	wallets := repository.NewWalletRepository(db)
	ctx := context.Background()

	alice := testutil.SeedTestUser(t, db, "alice@test.com", "Alice")
	bob := testutil.SeedTestUser(t, db, "bob@test.com", "Bob")

	w := &domain.Wallet{
		ID:        uuid.New(),
		UserID:    &alice.ID,
		Address:   "0xshared",
		Network:   "ethereum",
		Type:      "USDC",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, wallets.Create(ctx, w))

	exists, err := wallets.UserWalletExists(ctx, alice.ID, "0xshared", "ethereum")
	require.NoError(t, err)
	assert.True(t, exists)

	// Two users may register the same address.
	exists, err = wallets.UserWalletExists(ctx, bob.ID, "0xshared", "ethereum")
	require.NoError(t, err)
	assert.False(t, exists)

	w2 := &domain.Wallet{
		ID:        uuid.New(),
		UserID:    &bob.ID,
		Address:   "0xshared",
		Network:   "ethereum",
		Type:      "USDC",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, wallets.Create(ctx, w2))
}
