package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendorpay/vendorpay-backend/internal/auth"
	"github.com/vendorpay/vendorpay-backend/internal/domain"
	"github.com/vendorpay/vendorpay-backend/internal/repository"
	"github.com/vendorpay/vendorpay-backend/internal/service"
)

// memUserStore keeps users in memory with the same uniqueness semantics as
// the real repository.
type memUserStore struct {
	byEmail map[string]*domain.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{byEmail: make(map[string]*domain.User)}
}

func (s *memUserStore) Create(_ context.Context, u *domain.User) error {
	if _, ok := s.byEmail[u.Email]; ok {
		return domain.ErrEmailTaken
	}
	cp := *u
	s.byEmail[u.Email] = &cp
	return nil
}

func (s *memUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	for _, u := range s.byEmail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := s.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memUserStore) Update(_ context.Context, id uuid.UUID, upd repository.UserUpdate) (*domain.User, error) {
	for _, u := range s.byEmail {
		if u.ID != id {
			continue
		}
		if upd.Name != nil {
			u.Name = *upd.Name
		}
		if upd.Country != nil {
			u.Country = *upd.Country
		}
		if upd.Currency != nil {
			u.Currency = *upd.Currency
		}
		if upd.AcceptsCrypto != nil {
			u.AcceptsCrypto = *upd.AcceptsCrypto
		}
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (s *memUserStore) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	for _, u := range s.byEmail {
		if u.ID == id {
			u.PasswordHash = hash
			return nil
		}
	}
	return domain.ErrNotFound
}

const testSecret = "test-jwt-secret"

func registerInput() service.RegisterInput {
	return service.RegisterInput{
		Email:    "alice@test.com",
		Name:     "Alice",
		Password: "password123",
		Country:  "US",
		Currency: "USD",
	}
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	store := newMemUserStore()
	svc := service.NewAuthService(store, testSecret, time.Hour)
	ctx := context.Background()

	result, err := svc.Register(ctx, registerInput())
	require.NoError(t, err)
	assert.Equal(t, "alice@test.com", result.User.Email)
	assert.Empty(t, result.User.PasswordHash, "hash never leaves the service")

	claims, err := auth.ValidateToken(result.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)

	login, err := svc.Login(ctx, "alice@test.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, login.User.ID)
	assert.Empty(t, login.User.PasswordHash)
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	store := newMemUserStore()
	svc := service.NewAuthService(store, testSecret, time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerInput())
	require.NoError(t, err)

	_, err = svc.Register(ctx, registerInput())
	require.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc := service.NewAuthService(newMemUserStore(), testSecret, time.Hour)
	ctx := context.Background()

	in := registerInput()
	in.Password = "short"
	_, err := svc.Register(ctx, in)
	require.ErrorIs(t, err, domain.ErrInvalidRequest)

	in = registerInput()
	in.Email = ""
	_, err = svc.Register(ctx, in)
	require.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestAuthService_LoginFailures(t *testing.T) {
	store := newMemUserStore()
	svc := service.NewAuthService(store, testSecret, time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerInput())
	require.NoError(t, err)

	// Unknown email and wrong password are indistinguishable to the caller.
	_, err = svc.Login(ctx, "nobody@test.com", "password123")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "alice@test.com", "wrong-password")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestUserService_ChangePassword(t *testing.T) {
	store := newMemUserStore()
	authSvc := service.NewAuthService(store, testSecret, time.Hour)
	userSvc := service.NewUserService(store, nil, nil, nil, nil)
	ctx := context.Background()

	result, err := authSvc.Register(ctx, registerInput())
	require.NoError(t, err)
	userID := result.User.ID

	err = userSvc.ChangePassword(ctx, userID, "wrong-password", "newpassword123")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	err = userSvc.ChangePassword(ctx, userID, "password123", "short")
	require.ErrorIs(t, err, domain.ErrInvalidRequest)

	require.NoError(t, userSvc.ChangePassword(ctx, userID, "password123", "newpassword123"))

	_, err = authSvc.Login(ctx, "alice@test.com", "newpassword123")
	require.NoError(t, err)
	_, err = authSvc.Login(ctx, "alice@test.com", "password123")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
}
