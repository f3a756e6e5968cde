package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendorpay/vendorpay-backend/internal/domain"
	"github.com/vendorpay/vendorpay-backend/internal/handler"
	"github.com/vendorpay/vendorpay-backend/internal/service"
)

type fakeAuthService struct {
	result *service.AuthResult
	err    error
}

func (f *fakeAuthService) Register(_ context.Context, in service.RegisterInput) (*service.AuthResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeAuthService) Login(_ context.Context, _, _ string) (*service.AuthResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func doRequest(t *testing.T, h http.HandlerFunc, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestRegister_Success(t *testing.T) {
	svc := &fakeAuthService{result: &service.AuthResult{
		User:  domain.User{ID: uuid.New(), Email: "alice@test.com", Name: "Alice", Country: "US", Currency: "USD"},
		Token: "token-123",
	}}
	h := handler.NewAuthHandler(svc)

	rec, env := doRequest(t, h.Register, http.MethodPost, "/api/v1/auth/register",
		`{"email":"alice@test.com","name":"Alice","password":"password123","country":"US","currency":"USD"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)
	assert.Nil(t, env.Error)
	assert.Contains(t, string(env.Data), "token-123")
	assert.NotContains(t, string(env.Data), "password", "no credential material in responses")
}

func TestRegister_ValidationErrors(t *testing.T) {
	h := handler.NewAuthHandler(&fakeAuthService{})

	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{
			name:      "missing email",
			body:      `{"name":"Alice","password":"password123","country":"US","currency":"USD"}`,
			wantField: "email",
		},
		{
			name:      "bad email",
			body:      `{"email":"not-an-email","name":"Alice","password":"password123","country":"US","currency":"USD"}`,
			wantField: "email",
		},
		{
			name:      "short password",
			body:      `{"email":"a@test.com","name":"Alice","password":"short","country":"US","currency":"USD"}`,
			wantField: "password",
		},
		{
			name:      "bad currency",
			body:      `{"email":"a@test.com","name":"Alice","password":"password123","country":"US","currency":"DOLLARS"}`,
			wantField: "currency",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, env := doRequest(t, h.Register, http.MethodPost, "/api/v1/auth/register", tc.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
			assert.Contains(t, string(env.Error.Details), tc.wantField)
		})
	}
}

func TestRegister_EmailTaken(t *testing.T) {
	h := handler.NewAuthHandler(&fakeAuthService{err: domain.ErrEmailTaken})

	rec, env := doRequest(t, h.Register, http.MethodPost, "/api/v1/auth/register",
		`{"email":"alice@test.com","name":"Alice","password":"password123","country":"US","currency":"USD"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "EMAIL_ALREADY_REGISTERED", env.Error.Code)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	h := handler.NewAuthHandler(&fakeAuthService{err: domain.ErrInvalidCredentials})

	rec, env := doRequest(t, h.Login, http.MethodPost, "/api/v1/auth/login",
		`{"email":"alice@test.com","password":"wrong"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)
}

func TestLogin_MalformedBody(t *testing.T) {
	h := handler.NewAuthHandler(&fakeAuthService{})

	rec, env := doRequest(t, h.Login, http.MethodPost, "/api/v1/auth/login", `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_REQUEST", env.Error.Code)
}
