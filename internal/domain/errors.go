package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrVendorExists       = errors.New("a vendor with this email already exists")
	ErrWalletExists       = errors.New("a wallet with this address already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrInvalidCurrency    = errors.New("invalid currency")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrRailRejected       = errors.New("payment rail rejected the request")
)
