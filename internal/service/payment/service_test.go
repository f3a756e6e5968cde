package payment_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendorpay/vendorpay-backend/internal/domain"
	"github.com/vendorpay/vendorpay-backend/internal/rail"
	"github.com/vendorpay/vendorpay-backend/internal/repository"
	"github.com/vendorpay/vendorpay-backend/internal/service/payment"
)

type fakeVendors struct {
	vendor *domain.Vendor
	err    error
}

func (f *fakeVendors) GetByOwner(_ context.Context, _, _ uuid.UUID) (*domain.Vendor, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vendor, nil
}

type fakeTransactions struct {
	created       []*domain.Transaction
	record        *repository.TransactionRecord
	recordErr     error
	listed        []repository.TransactionRecord
	statusUpdates []domain.TransactionStatus
}

func (f *fakeTransactions) Create(_ context.Context, t *domain.Transaction) error {
	f.created = append(f.created, t)
	return nil
}

func (f *fakeTransactions) GetForSender(_ context.Context, _, _ uuid.UUID) (*repository.TransactionRecord, error) {
	if f.recordErr != nil {
		return nil, f.recordErr
	}
	return f.record, nil
}

func (f *fakeTransactions) ListBySender(_ context.Context, _ uuid.UUID, limit int) ([]repository.TransactionRecord, error) {
	if limit > 0 && limit < len(f.listed) {
		return f.listed[:limit], nil
	}
	return f.listed, nil
}

func (f *fakeTransactions) UpdateStatus(_ context.Context, _ uuid.UUID, status domain.TransactionStatus, _ *time.Time) error {
	f.statusUpdates = append(f.statusUpdates, status)
	return nil
}

type fakeMethods struct {
	names []string
}

func (f *fakeMethods) FindOrCreate(_ context.Context, userID uuid.UUID, methodType domain.PaymentType, name string) (*domain.PaymentMethod, error) {
	f.names = append(f.names, name)
	return &domain.PaymentMethod{
		ID:     uuid.New(),
		UserID: userID,
		Type:   methodType,
		Name:   name,
	}, nil
}

type fakeOptimizations struct {
	created []*domain.FXOptimization
}

func (f *fakeOptimizations) Create(_ context.Context, o *domain.FXOptimization) error {
	f.created = append(f.created, o)
	return nil
}

type fakeStats struct{}

func (fakeStats) CountTransactions(context.Context, uuid.UUID) (int64, error) { return 3, nil }
func (fakeStats) SumCompletedAmount(context.Context, uuid.UUID) (decimal.Decimal, error) {
	return decimal.NewFromInt(4500), nil
}
func (fakeStats) SumSavings(context.Context, uuid.UUID) (decimal.Decimal, error) {
	return decimal.NewFromInt(120), nil
}
func (fakeStats) TransactionsByType(context.Context, uuid.UUID) ([]repository.TypeBreakdown, error) {
	return []repository.TypeBreakdown{
		{Type: domain.PaymentTypeSWIFT, Count: 2, Sum: decimal.NewFromInt(3000)},
		{Type: domain.PaymentTypeUSDC, Count: 1, Sum: decimal.NewFromInt(1500)},
	}, nil
}

type fakeRailClient struct {
	recipientStatus *rail.RecipientStatus
	payment         *rail.Payment
	paymentErr      error
	status          *rail.Payment
	statusErr       error

	createRequests []rail.PaymentRequest
	invites        []rail.InviteRequest
	statusCalls    int
}

func (f *fakeRailClient) CheckRecipientStatus(_ context.Context, email string) (*rail.RecipientStatus, error) {
	if f.recipientStatus != nil {
		return f.recipientStatus, nil
	}
	return &rail.RecipientStatus{Email: email}, nil
}

func (f *fakeRailClient) CreatePayment(_ context.Context, req rail.PaymentRequest) (*rail.Payment, error) {
	f.createRequests = append(f.createRequests, req)
	if f.paymentErr != nil {
		return nil, f.paymentErr
	}
	return f.payment, nil
}

func (f *fakeRailClient) InviteRecipient(_ context.Context, req rail.InviteRequest) (*rail.Invite, error) {
	f.invites = append(f.invites, req)
	return &rail.Invite{Success: true, InviteID: "invite-1"}, nil
}

func (f *fakeRailClient) GetPaymentStatus(_ context.Context, _ string) (*rail.Payment, error) {
	f.statusCalls++
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return f.status, nil
}

type fakeAdvisor struct {
	rec   *domain.Recommendation
	calls int
}

func (f *fakeAdvisor) Recommend(_ context.Context, _, _ uuid.UUID, _ decimal.Decimal, _ string) (*domain.Recommendation, error) {
	f.calls++
	return f.rec, nil
}

func testVendor() *domain.Vendor {
	return &domain.Vendor{
		ID:       uuid.New(),
		UserID:   uuid.New(),
		Name:     "Acme GmbH",
		Email:    "billing@acme.test",
		Country:  "DE",
		Currency: "EUR",
		Status:   domain.VendorStatusActive,
	}
}

func railPayment(method domain.PaymentType, withSavings bool) *rail.Payment {
	link := "https://pay.rail.example/rail-1"
	p := &rail.Payment{
		ID:           "rail-1",
		Method:       method,
		Status:       "processing",
		ExchangeRate: decimal.NewFromFloat(1.01),
		Fee:          decimal.NewFromInt(10),
		CreatedAt:    time.Now().UTC(),
		PaymentLink:  &link,
	}
	if withSavings {
		p.Savings = &rail.Savings{Amount: decimal.NewFromInt(40), Percentage: 4}
	}
	return p
}

func newService(vendor *domain.Vendor, railFake *fakeRailClient, adv *fakeAdvisor) (*payment.Service, *fakeTransactions, *fakeMethods, *fakeOptimizations) {
	txs := &fakeTransactions{}
	methods := &fakeMethods{}
	opts := &fakeOptimizations{}
	svc := payment.NewService(&fakeVendors{vendor: vendor}, txs, methods, opts, fakeStats{}, railFake, adv)
	return svc, txs, methods, opts
}

func TestCreatePayment_ExplicitMethodSkipsAdvisor(t *testing.T) {
	vendor := testVendor()
	railFake := &fakeRailClient{payment: railPayment(domain.PaymentTypeSWIFT, false)}
	adv := &fakeAdvisor{}
	svc, txs, methods, opts := newService(vendor, railFake, adv)

	method := domain.PaymentTypeSWIFT
	receipt, err := svc.CreatePayment(context.Background(), vendor.UserID, payment.CreatePaymentInput{
		VendorID: vendor.ID,
		Amount:   decimal.NewFromInt(1000),
		Currency: "USD",
		Method:   &method,
	})
	require.NoError(t, err)

	assert.Zero(t, adv.calls, "explicit method must not consult the advisor")
	require.Len(t, railFake.createRequests, 1)
	assert.Equal(t, domain.PaymentTypeSWIFT, railFake.createRequests[0].Method)
	assert.Equal(t, "Payment to Acme GmbH", railFake.createRequests[0].Description)

	require.Len(t, txs.created, 1)
	tx := txs.created[0]
	assert.Equal(t, domain.TransactionStatusProcessing, tx.Status)
	assert.Equal(t, domain.PaymentTypeSWIFT, tx.Type)
	assert.Nil(t, tx.AdvisoryText)
	require.NotNil(t, tx.RailPaymentID)
	assert.Equal(t, "rail-1", *tx.RailPaymentID)

	assert.Equal(t, []string{"SWIFT Bank Transfer"}, methods.names)
	assert.Empty(t, opts.created, "no savings reported, nothing to record")
	assert.Empty(t, railFake.invites, "bank methods never trigger invites")

	assert.Equal(t, "rail-1", receipt.RailPaymentID)
	assert.Equal(t, "processing", receipt.RailStatus)
	assert.Equal(t, "Acme GmbH", receipt.Transaction.VendorName)
	require.NotNil(t, receipt.PaymentLink)
}

func TestCreatePayment_AdvisorPicksMethodAndSavingsRecorded(t *testing.T) {
	vendor := testVendor()
	railFake := &fakeRailClient{
		payment:         railPayment(domain.PaymentTypeUSDC, true),
		recipientStatus: &rail.RecipientStatus{Email: vendor.Email, Registered: false},
	}
	adv := &fakeAdvisor{rec: &domain.Recommendation{
		BestOption:   domain.PaymentOption{Method: domain.PaymentTypeUSDC},
		AdvisoryText: "USDC is cheapest and settles instantly.",
	}}
	svc, txs, methods, opts := newService(vendor, railFake, adv)

	_, err := svc.CreatePayment(context.Background(), vendor.UserID, payment.CreatePaymentInput{
		VendorID: vendor.ID,
		Amount:   decimal.NewFromInt(1000),
		Currency: "USD",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, adv.calls)
	require.Len(t, railFake.createRequests, 1)
	assert.Equal(t, domain.PaymentTypeUSDC, railFake.createRequests[0].Method)

	require.Len(t, railFake.invites, 1, "unregistered USDC recipient gets an invite")
	assert.Equal(t, vendor.Email, railFake.invites[0].Email)

	require.Len(t, txs.created, 1)
	require.NotNil(t, txs.created[0].AdvisoryText)
	assert.Equal(t, "USDC is cheapest and settles instantly.", *txs.created[0].AdvisoryText)

	assert.Equal(t, []string{"USDC Stablecoin"}, methods.names)

	require.Len(t, opts.created, 1)
	opt := opts.created[0]
	assert.Equal(t, txs.created[0].ID, opt.TransactionID)
	assert.Equal(t, domain.PaymentTypeUSDC, opt.OptimalMethod)
	assert.True(t, opt.SavingsAmount.Equal(decimal.NewFromInt(40)))
	assert.Equal(t, "USDC is cheapest and settles instantly.", opt.Reasoning)
}

func TestCreatePayment_RegisteredRecipientNotInvited(t *testing.T) {
	vendor := testVendor()
	railFake := &fakeRailClient{
		payment:         railPayment(domain.PaymentTypeUSDC, false),
		recipientStatus: &rail.RecipientStatus{Email: vendor.Email, Registered: true, AcceptsCrypto: true},
	}
	method := domain.PaymentTypeUSDC
	svc, _, _, _ := newService(vendor, railFake, &fakeAdvisor{})

	_, err := svc.CreatePayment(context.Background(), vendor.UserID, payment.CreatePaymentInput{
		VendorID: vendor.ID,
		Amount:   decimal.NewFromInt(100),
		Currency: "USD",
		Method:   &method,
	})
	require.NoError(t, err)
	assert.Empty(t, railFake.invites)
}

func TestCreatePayment_Validation(t *testing.T) {
	vendor := testVendor()
	svc, _, _, _ := newService(vendor, &fakeRailClient{}, &fakeAdvisor{})
	ctx := context.Background()

	_, err := svc.CreatePayment(ctx, vendor.UserID, payment.CreatePaymentInput{
		VendorID: vendor.ID,
		Amount:   decimal.Zero,
		Currency: "USD",
	})
	require.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.CreatePayment(ctx, vendor.UserID, payment.CreatePaymentInput{
		VendorID: vendor.ID,
		Amount:   decimal.NewFromInt(100),
	})
	require.ErrorIs(t, err, domain.ErrInvalidCurrency)

	bad := domain.PaymentType("PAYPAL")
	_, err = svc.CreatePayment(ctx, vendor.UserID, payment.CreatePaymentInput{
		VendorID: vendor.ID,
		Amount:   decimal.NewFromInt(100),
		Currency: "USD",
		Method:   &bad,
	})
	require.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestCreatePayment_RailRejectionPropagates(t *testing.T) {
	vendor := testVendor()
	railFake := &fakeRailClient{paymentErr: domain.ErrRailRejected}
	method := domain.PaymentTypeSWIFT
	svc, txs, _, _ := newService(vendor, railFake, &fakeAdvisor{})

	_, err := svc.CreatePayment(context.Background(), vendor.UserID, payment.CreatePaymentInput{
		VendorID: vendor.ID,
		Amount:   decimal.NewFromInt(100),
		Currency: "USD",
		Method:   &method,
	})
	require.ErrorIs(t, err, domain.ErrRailRejected)
	assert.Empty(t, txs.created, "rejected payments are never persisted")
}

func storedRecord(status domain.TransactionStatus, railID string) *repository.TransactionRecord {
	rec := &repository.TransactionRecord{VendorName: "Acme GmbH"}
	rec.ID = uuid.New()
	rec.SenderID = uuid.New()
	rec.VendorID = uuid.New()
	rec.Amount = decimal.NewFromInt(500)
	rec.Currency = "USD"
	rec.Status = status
	rec.Type = domain.PaymentTypeSWIFT
	if railID != "" {
		rec.RailPaymentID = &railID
	}
	return rec
}

func TestGetTransaction_TerminalStatusIsNotPolled(t *testing.T) {
	railFake := &fakeRailClient{}
	svc := payment.NewService(&fakeVendors{}, &fakeTransactions{
		record: storedRecord(domain.TransactionStatusCompleted, "rail-1"),
	}, &fakeMethods{}, &fakeOptimizations{}, fakeStats{}, railFake, &fakeAdvisor{})

	rec, err := svc.GetTransaction(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusCompleted, rec.Status)
	assert.Zero(t, railFake.statusCalls, "terminal transactions are never reconciled")
}

func TestGetTransaction_ReconcilesChangedStatus(t *testing.T) {
	railFake := &fakeRailClient{status: &rail.Payment{ID: "rail-1", Status: "completed"}}
	txs := &fakeTransactions{record: storedRecord(domain.TransactionStatusProcessing, "rail-1")}
	svc := payment.NewService(&fakeVendors{}, txs, &fakeMethods{}, &fakeOptimizations{}, fakeStats{}, railFake, &fakeAdvisor{})

	rec, err := svc.GetTransaction(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 1, railFake.statusCalls)
	assert.Equal(t, []domain.TransactionStatus{domain.TransactionStatusCompleted}, txs.statusUpdates)
	assert.Equal(t, domain.TransactionStatusCompleted, rec.Status)
	assert.NotNil(t, rec.CompletedAt)
}

func TestGetTransaction_UnchangedStatusNotRewritten(t *testing.T) {
	railFake := &fakeRailClient{status: &rail.Payment{ID: "rail-1", Status: "processing"}}
	txs := &fakeTransactions{record: storedRecord(domain.TransactionStatusProcessing, "rail-1")}
	svc := payment.NewService(&fakeVendors{}, txs, &fakeMethods{}, &fakeOptimizations{}, fakeStats{}, railFake, &fakeAdvisor{})

	rec, err := svc.GetTransaction(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, txs.statusUpdates)
	assert.Equal(t, domain.TransactionStatusProcessing, rec.Status)
}

func TestGetTransaction_PollFailureReturnsStored(t *testing.T) {
	railFake := &fakeRailClient{statusErr: domain.ErrRailRejected}
	txs := &fakeTransactions{record: storedRecord(domain.TransactionStatusPending, "rail-1")}
	svc := payment.NewService(&fakeVendors{}, txs, &fakeMethods{}, &fakeOptimizations{}, fakeStats{}, railFake, &fakeAdvisor{})

	rec, err := svc.GetTransaction(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err, "a failed poll degrades to the stored view")
	assert.Equal(t, domain.TransactionStatusPending, rec.Status)
}

func TestGetTransaction_NotFound(t *testing.T) {
	txs := &fakeTransactions{recordErr: domain.ErrNotFound}
	svc := payment.NewService(&fakeVendors{}, txs, &fakeMethods{}, &fakeOptimizations{}, fakeStats{}, &fakeRailClient{}, &fakeAdvisor{})

	_, err := svc.GetTransaction(context.Background(), uuid.New(), uuid.New())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetPaymentStats(t *testing.T) {
	txs := &fakeTransactions{listed: make([]repository.TransactionRecord, 8)}
	svc := payment.NewService(&fakeVendors{}, txs, &fakeMethods{}, &fakeOptimizations{}, fakeStats{}, &fakeRailClient{}, &fakeAdvisor{})

	stats, err := svc.GetPaymentStats(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalTransactions)
	assert.True(t, stats.TotalAmountSent.Equal(decimal.NewFromInt(4500)))
	assert.True(t, stats.TotalSavings.Equal(decimal.NewFromInt(120)))
	assert.Len(t, stats.ByType, 2)
	assert.Len(t, stats.RecentTransactions, 5, "recent list is capped")
}
