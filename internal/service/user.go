package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/vendorpay/vendorpay-backend/internal/domain"
	"github.com/vendorpay/vendorpay-backend/internal/repository"
)

// UserService covers the authenticated user's own account: profile, wallets,
// payment methods and the dashboard summary.
type UserService struct {
	users          userStore
	wallets        walletStore
	paymentMethods paymentMethodStore
	transactions   transactionStore
	stats          statsStore
}

func NewUserService(users userStore, wallets walletStore, paymentMethods paymentMethodStore, transactions transactionStore, stats statsStore) *UserService {
	return &UserService{
		users:          users,
		wallets:        wallets,
		paymentMethods: paymentMethods,
		transactions:   transactions,
		stats:          stats,
	}
}

type Profile struct {
	User           domain.User
	Wallets        []domain.Wallet
	PaymentMethods []domain.PaymentMethod
}

func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("GetProfile: %w", err)
	}

	wallets, err := s.wallets.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("GetProfile: %w", err)
	}
	methods, err := s.paymentMethods.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("GetProfile: %w", err)
	}

	user.PasswordHash = ""
	return &Profile{
		User:           *user,
		Wallets:        wallets,
		PaymentMethods: methods,
	}, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, upd repository.UserUpdate) (*domain.User, error) {
	user, err := s.users.Update(ctx, userID, upd)
	if err != nil {
		return nil, fmt.Errorf("UpdateProfile: %w", err)
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("ChangePassword: %w", domain.ErrInvalidRequest)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("ChangePassword: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return fmt.Errorf("ChangePassword: %w", domain.ErrInvalidCredentials)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("ChangePassword: hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("ChangePassword: %w", err)
	}
	return nil
}

// AddWallet attaches a wallet to the user's own account. Duplicates are
// scoped per user; two users may register the same address.
func (s *UserService) AddWallet(ctx context.Context, userID uuid.UUID, in WalletInput) (*domain.Wallet, error) {
	if in.Address == "" || in.Network == "" || in.Type == "" {
		return nil, fmt.Errorf("AddWallet: %w", domain.ErrInvalidRequest)
	}

	exists, err := s.wallets.UserWalletExists(ctx, userID, in.Address, in.Network)
	if err != nil {
		return nil, fmt.Errorf("AddWallet: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("AddWallet: %w", domain.ErrWalletExists)
	}

	wallet := &domain.Wallet{
		ID:        uuid.New(),
		UserID:    &userID,
		Address:   in.Address,
		Network:   in.Network,
		Type:      in.Type,
		Label:     in.Label,
		IsDefault: in.IsDefault,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.wallets.Create(ctx, wallet); err != nil {
		return nil, fmt.Errorf("AddWallet: %w", err)
	}
	return wallet, nil
}

func (s *UserService) GetWallets(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error) {
	wallets, err := s.wallets.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("GetWallets: %w", err)
	}
	return wallets, nil
}

func (s *UserService) GetPaymentMethods(ctx context.Context, userID uuid.UUID) ([]domain.PaymentMethod, error) {
	methods, err := s.paymentMethods.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("GetPaymentMethods: %w", err)
	}
	return methods, nil
}

type DashboardSummary struct {
	TotalVendors           int64
	VendorsAcceptingCrypto int64
	CryptoPercentage       float64
	TotalTransactions      int64
	TotalAmountSent        decimal.Decimal
	TotalSavings           decimal.Decimal
	ByType                 []repository.TypeBreakdown
	RecentTransactions     []repository.TransactionRecord
}

func (s *UserService) GetDashboardSummary(ctx context.Context, userID uuid.UUID) (*DashboardSummary, error) {
	totalVendors, cryptoVendors, err := s.stats.CountVendors(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("GetDashboardSummary: %w", err)
	}
	txCount, err := s.stats.CountTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("GetDashboardSummary: %w", err)
	}
	totalSent, err := s.stats.SumCompletedAmount(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("GetDashboardSummary: %w", err)
	}
	savings, err := s.stats.SumSavings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("GetDashboardSummary: %w", err)
	}
	byType, err := s.stats.TransactionsByType(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("GetDashboardSummary: %w", err)
	}
	recent, err := s.transactions.ListBySender(ctx, userID, 5)
	if err != nil {
		return nil, fmt.Errorf("GetDashboardSummary: %w", err)
	}

	var cryptoPct float64
	if totalVendors > 0 {
		cryptoPct = float64(cryptoVendors) / float64(totalVendors) * 100
	}

	return &DashboardSummary{
		TotalVendors:           totalVendors,
		VendorsAcceptingCrypto: cryptoVendors,
		CryptoPercentage:       cryptoPct,
		TotalTransactions:      txCount,
		TotalAmountSent:        totalSent,
		TotalSavings:           savings,
		ByType:                 byType,
		RecentTransactions:     recent,
	}, nil
}
