package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/surgefare/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockLedgerUseCase struct {
	mock.Mock
}

func (m *MockLedgerUseCase) GetBalance(ctx context.Context, userID string) (*domain.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockLedgerUseCase) Debit(ctx context.Context, userID string, amount int64, reference string) (int64, error) {
	args := m.Called(ctx, userID, amount, reference)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerUseCase) Credit(ctx context.Context, userID string, amount int64, reference string) (int64, error) {
	args := m.Called(ctx, userID, amount, reference)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerUseCase) Statement(ctx context.Context, userID string, limit int) ([]domain.WalletEntry, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WalletEntry), args.Error(1)
}

func TestWalletHandler_balance(t *testing.T) {
	mockService := &MockLedgerUseCase{}
	handler := NewWalletHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/wallet", nil)
	c.Set(userIDKey, "u1")

	mockService.On("GetBalance", c.Request.Context(), "u1").Return(&domain.Wallet{UserID: "u1", Balance: 50000}, nil)

	handler.balance(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"balance":50000`)
}

func TestWalletHandler_transactions(t *testing.T) {
	mockService := &MockLedgerUseCase{}
	handler := NewWalletHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/wallet/transactions?limit=5", nil)
	c.Set(userIDKey, "u1")

	mockService.On("Statement", c.Request.Context(), "u1", 5).Return([]domain.WalletEntry{{
		ID:           1,
		UserID:       "u1",
		Kind:         domain.WalletEntryDebit,
		Amount:       2500,
		BalanceAfter: 47500,
		Reference:    "7d0f3c7a",
		CreatedAt:    time.Now(),
	}}, nil)

	handler.transactions(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"type":"DEBIT"`)
	assert.Contains(t, w.Body.String(), `"balance_after":47500`)
}

func TestWalletHandler_transactionsBadLimit(t *testing.T) {
	mockService := &MockLedgerUseCase{}
	handler := NewWalletHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/wallet/transactions?limit=abc", nil)
	c.Set(userIDKey, "u1")

	handler.transactions(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Statement", mock.Anything, mock.Anything, mock.Anything)
}
