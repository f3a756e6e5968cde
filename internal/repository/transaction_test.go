package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendorpay/vendorpay-backend/internal/domain"
	"github.com/vendorpay/vendorpay-backend/internal/repository"
	"github.com/vendorpay/vendorpay-backend/internal/testutil"
)

func TestTransactionRepository_GetForSenderScoping(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewTransactionRepository(db)
	ctx := context.Background()

	sender := testutil.SeedTestUser(t, db, "sender@test.com", "Sender")
	stranger := testutil.SeedTestUser(t, db, "stranger@test.com", "Stranger")
	vendor := testutil.SeedTestVendor(t, db, sender.ID, "Acme", "billing@acme.test", false)
	tx := testutil.SeedTestTransaction(t, db, sender.ID, vendor.ID, "100", domain.TransactionStatusPending, domain.PaymentTypeSWIFT)

	got, err := repo.GetForSender(ctx, sender.ID, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.VendorName)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(100)))

	_, err = repo.GetForSender(ctx, stranger.ID, tx.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransactionRepository_ListBySenderNewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewTransactionRepository(db)
	ctx := context.Background()

	sender := testutil.SeedTestUser(t, db, "sender@test.com", "Sender")
	vendor := testutil.SeedTestVendor(t, db, sender.ID, "Acme", "billing@acme.test", false)

	for _, amount := range []string{"10", "20", "30"} {
		testutil.SeedTestTransaction(t, db, sender.ID, vendor.ID, amount, domain.TransactionStatusCompleted, domain.PaymentTypeSWIFT)
		time.Sleep(5 * time.Millisecond)
	}

	records, err := repo.ListBySender(ctx, sender.ID, 0)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.True(t, records[0].Amount.Equal(decimal.NewFromInt(30)), "newest first")

	limited, err := repo.ListBySender(ctx, sender.ID, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestTransactionRepository_UpdateStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewTransactionRepository(db)
	ctx := context.Background()

	sender := testutil.SeedTestUser(t, db, "sender@test.com", "Sender")
	vendor := testutil.SeedTestVendor(t, db, sender.ID, "Acme", "billing@acme.test", false)
	tx := testutil.SeedTestTransaction(t, db, sender.ID, vendor.ID, "100", domain.TransactionStatusProcessing, domain.PaymentTypeSWIFT)

	now := time.Now().UTC()
	require.NoError(t, repo.UpdateStatus(ctx, tx.ID, domain.TransactionStatusCompleted, &now))

	got, err := repo.GetForSender(ctx, sender.ID, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)

	// A nil completedAt must not clear the stored timestamp.
	require.NoError(t, repo.UpdateStatus(ctx, tx.ID, domain.TransactionStatusCompleted, nil))
	got, err = repo.GetForSender(ctx, sender.ID, tx.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.CompletedAt)
}

func TestStatsRepository(t *testing.T) {
	db := testutil.SetupTestDB(t)
	stats := repository.NewStatsRepository(db)
	ctx := context.Background()

	sender := testutil.SeedTestUser(t, db, "sender@test.com", "Sender")
	vendor := testutil.SeedTestVendor(t, db, sender.ID, "Acme", "billing@acme.test", true)
	testutil.SeedTestVendor(t, db, sender.ID, "Bank Only", "bank@test.com", false)

	testutil.SeedTestTransaction(t, db, sender.ID, vendor.ID, "100", domain.TransactionStatusCompleted, domain.PaymentTypeSWIFT)
	testutil.SeedTestTransaction(t, db, sender.ID, vendor.ID, "200", domain.TransactionStatusCompleted, domain.PaymentTypeUSDC)
	testutil.SeedTestTransaction(t, db, sender.ID, vendor.ID, "50", domain.TransactionStatusPending, domain.PaymentTypeUSDC)

	total, crypto, err := stats.CountVendors(ctx, sender.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, int64(1), crypto)

	count, err := stats.CountTransactions(ctx, sender.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	sum, err := stats.SumCompletedAmount(ctx, sender.ID)
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.NewFromInt(300)), "pending amounts excluded, got %s", sum)

	byType, err := stats.TransactionsByType(ctx, sender.ID)
	require.NoError(t, err)
	require.Len(t, byType, 2)
}
