package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vendorpay/vendorpay-backend/internal/domain"
	"github.com/vendorpay/vendorpay-backend/internal/repository"
)

// VendorService owns the vendor directory: profiles, bank accounts, wallets
// and the payments a vendor has received. Every operation is scoped to the
// calling user.
type VendorService struct {
	vendors      vendorStore
	bankAccounts bankAccountStore
	wallets      walletStore
	transactions transactionStore
}

func NewVendorService(vendors vendorStore, bankAccounts bankAccountStore, wallets walletStore, transactions transactionStore) *VendorService {
	return &VendorService{
		vendors:      vendors,
		bankAccounts: bankAccounts,
		wallets:      wallets,
		transactions: transactions,
	}
}

type CreateVendorInput struct {
	Name          string
	Email         string
	Country       string
	Currency      string
	ContactName   *string
	ContactPhone  *string
	Website       *string
	AcceptsCrypto bool
	PaymentTerms  *string
	Notes         *string
}

func (s *VendorService) CreateVendor(ctx context.Context, userID uuid.UUID, in CreateVendorInput) (*domain.Vendor, error) {
	if in.Name == "" || in.Email == "" || in.Country == "" || in.Currency == "" {
		return nil, fmt.Errorf("CreateVendor: %w", domain.ErrInvalidRequest)
	}

	now := time.Now().UTC()
	vendor := &domain.Vendor{
		ID:            uuid.New(),
		UserID:        userID,
		Name:          in.Name,
		Email:         in.Email,
		Country:       in.Country,
		Currency:      in.Currency,
		ContactName:   in.ContactName,
		ContactPhone:  in.ContactPhone,
		Website:       in.Website,
		AcceptsCrypto: in.AcceptsCrypto,
		PaymentTerms:  in.PaymentTerms,
		Notes:         in.Notes,
		Status:        domain.VendorStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.vendors.Create(ctx, vendor); err != nil {
		return nil, fmt.Errorf("CreateVendor: %w", err)
	}
	return vendor, nil
}

func (s *VendorService) GetVendors(ctx context.Context, userID uuid.UUID) ([]domain.Vendor, error) {
	vendors, err := s.vendors.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("GetVendors: %w", err)
	}
	return vendors, nil
}

func (s *VendorService) GetVendorsAcceptingCrypto(ctx context.Context, userID uuid.UUID) ([]domain.Vendor, error) {
	vendors, err := s.vendors.ListCryptoByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("GetVendorsAcceptingCrypto: %w", err)
	}
	return vendors, nil
}

// VendorDetail is a vendor together with its payout destinations and the
// most recent payments it received.
type VendorDetail struct {
	Vendor         domain.Vendor
	BankAccounts   []domain.BankAccount
	Wallets        []domain.Wallet
	RecentPayments []repository.TransactionRecord
}

func (s *VendorService) GetVendor(ctx context.Context, userID, vendorID uuid.UUID) (*VendorDetail, error) {
	vendor, err := s.vendors.GetByOwner(ctx, userID, vendorID)
	if err != nil {
		return nil, fmt.Errorf("GetVendor: %w", err)
	}

	accounts, err := s.bankAccounts.ListByVendor(ctx, vendor.ID)
	if err != nil {
		return nil, fmt.Errorf("GetVendor: %w", err)
	}
	wallets, err := s.wallets.ListByVendor(ctx, vendor.ID)
	if err != nil {
		return nil, fmt.Errorf("GetVendor: %w", err)
	}
	recent, err := s.transactions.ListByVendor(ctx, vendor.ID, 5)
	if err != nil {
		return nil, fmt.Errorf("GetVendor: %w", err)
	}

	return &VendorDetail{
		Vendor:         *vendor,
		BankAccounts:   accounts,
		Wallets:        wallets,
		RecentPayments: recent,
	}, nil
}

func (s *VendorService) UpdateVendor(ctx context.Context, userID, vendorID uuid.UUID, upd domain.VendorUpdate) (*domain.Vendor, error) {
	if upd.Status != nil && *upd.Status != domain.VendorStatusActive && *upd.Status != domain.VendorStatusInactive {
		return nil, fmt.Errorf("UpdateVendor: %w", domain.ErrInvalidRequest)
	}

	vendor, err := s.vendors.Update(ctx, userID, vendorID, upd)
	if err != nil {
		return nil, fmt.Errorf("UpdateVendor: %w", err)
	}
	return vendor, nil
}

func (s *VendorService) DeleteVendor(ctx context.Context, userID, vendorID uuid.UUID) error {
	if err := s.vendors.Delete(ctx, userID, vendorID); err != nil {
		return fmt.Errorf("DeleteVendor: %w", err)
	}
	return nil
}

type BankAccountInput struct {
	BankName      string
	AccountNumber string
	AccountName   string
	SwiftCode     *string
	RoutingNumber *string
	IBAN          *string
	Currency      string
	IsDefault     bool
}

func (s *VendorService) AddBankAccount(ctx context.Context, userID, vendorID uuid.UUID, in BankAccountInput) (*domain.BankAccount, error) {
	if in.BankName == "" || in.AccountNumber == "" || in.AccountName == "" || in.Currency == "" {
		return nil, fmt.Errorf("AddBankAccount: %w", domain.ErrInvalidRequest)
	}

	vendor, err := s.vendors.GetByOwner(ctx, userID, vendorID)
	if err != nil {
		return nil, fmt.Errorf("AddBankAccount: %w", err)
	}

	account := &domain.BankAccount{
		ID:            uuid.New(),
		VendorID:      vendor.ID,
		BankName:      in.BankName,
		AccountNumber: in.AccountNumber,
		AccountName:   in.AccountName,
		SwiftCode:     in.SwiftCode,
		RoutingNumber: in.RoutingNumber,
		IBAN:          in.IBAN,
		Currency:      in.Currency,
		IsDefault:     in.IsDefault,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.bankAccounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("AddBankAccount: %w", err)
	}
	return account, nil
}

func (s *VendorService) GetBankAccounts(ctx context.Context, userID, vendorID uuid.UUID) ([]domain.BankAccount, error) {
	vendor, err := s.vendors.GetByOwner(ctx, userID, vendorID)
	if err != nil {
		return nil, fmt.Errorf("GetBankAccounts: %w", err)
	}
	accounts, err := s.bankAccounts.ListByVendor(ctx, vendor.ID)
	if err != nil {
		return nil, fmt.Errorf("GetBankAccounts: %w", err)
	}
	return accounts, nil
}

type WalletInput struct {
	Address   string
	Network   string
	Type      string
	Label     *string
	IsDefault bool
}

// AddWallet attaches a crypto wallet to a vendor. The same address on the
// same network cannot be registered for two vendors, and a vendor with a
// wallet is always considered crypto-capable afterwards.
func (s *VendorService) AddWallet(ctx context.Context, userID, vendorID uuid.UUID, in WalletInput) (*domain.Wallet, error) {
	if in.Address == "" || in.Network == "" || in.Type == "" {
		return nil, fmt.Errorf("AddWallet: %w", domain.ErrInvalidRequest)
	}

	vendor, err := s.vendors.GetByOwner(ctx, userID, vendorID)
	if err != nil {
		return nil, fmt.Errorf("AddWallet: %w", err)
	}

	exists, err := s.wallets.VendorWalletExists(ctx, in.Address, in.Network)
	if err != nil {
		return nil, fmt.Errorf("AddWallet: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("AddWallet: %w", domain.ErrWalletExists)
	}

	wallet := &domain.Wallet{
		ID:        uuid.New(),
		VendorID:  &vendor.ID,
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

func (s *VendorService) GetWallets(ctx context.Context, userID, vendorID uuid.UUID) ([]domain.Wallet, error) {
	vendor, err := s.vendors.GetByOwner(ctx, userID, vendorID)
	if err != nil {
		return nil, fmt.Errorf("GetWallets: %w", err)
	}
	wallets, err := s.wallets.ListByVendor(ctx, vendor.ID)
	if err != nil {
		return nil, fmt.Errorf("GetWallets: %w", err)
	}
	return wallets, nil
}

func (s *VendorService) GetVendorPayments(ctx context.Context, userID, vendorID uuid.UUID) ([]repository.TransactionRecord, error) {
	vendor, err := s.vendors.GetByOwner(ctx, userID, vendorID)
	if err != nil {
		return nil, fmt.Errorf("GetVendorPayments: %w", err)
	}
	payments, err := s.transactions.ListByVendor(ctx, vendor.ID, 0)
	if err != nil {
		return nil, fmt.Errorf("GetVendorPayments: %w", err)
	}
	return payments, nil
}
