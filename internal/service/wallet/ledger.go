package wallet

import (
	"context"
	"strings"

	"github.com/Domenick1991/surgefare/internal/domain"
	"github.com/Domenick1991/surgefare/internal/repository"
	"go.uber.org/zap"
)

const defaultStatementLimit = 50

type LedgerUseCase interface {
	GetBalance(ctx context.Context, userID string) (*domain.Wallet, error)
	Debit(ctx context.Context, userID string, amount int64, reference string) (int64, error)
	Credit(ctx context.Context, userID string, amount int64, reference string) (int64, error)
	Statement(ctx context.Context, userID string, limit int) ([]domain.WalletEntry, error)
}

// Ledger is the only writer of wallet balances. Wallets are created lazily
// with the starting balance on first access.
type Ledger struct {
	wallets         repository.WalletRepository
	startingBalance int64
	log             *zap.Logger
}

func NewLedger(wallets repository.WalletRepository, startingBalance int64, log *zap.Logger) *Ledger {
	return &Ledger{wallets: wallets, startingBalance: startingBalance, log: log}
}

func (l *Ledger) GetBalance(ctx context.Context, userID string) (*domain.Wallet, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ValidationError{Field: "user_id", Msg: "user_id is required"}
	}
	w, err := l.wallets.Ensure(ctx, userID, l.startingBalance)
	if err != nil {
		return nil, domain.DependencyError{Dependency: "wallet store", Err: err}
	}
	return w, nil
}

// Debit subtracts amount in one conditional write. It fails with
// domain.InsufficientFundsError when the balance is below amount.
func (l *Ledger) Debit(ctx context.Context, userID string, amount int64, reference string) (int64, error) {
	if err := validateAmount(amount); err != nil {
		return 0, err
	}
	if _, err := l.GetBalance(ctx, userID); err != nil {
		return 0, err
	}

	balance, err := l.wallets.Debit(ctx, userID, amount, reference)
	if err != nil {
		if domain.IsInsufficientFunds(err) {
			return 0, err
		}
		return 0, domain.DependencyError{Dependency: "wallet store", Err: err}
	}
	l.log.Debug("wallet debited", zap.String("user_id", userID), zap.Int64("amount", amount), zap.Int64("balance", balance))
	return balance, nil
}

func (l *Ledger) Credit(ctx context.Context, userID string, amount int64, reference string) (int64, error) {
	if err := validateAmount(amount); err != nil {
		return 0, err
	}
	if _, err := l.GetBalance(ctx, userID); err != nil {
		return 0, err
	}

	balance, err := l.wallets.Credit(ctx, userID, amount, reference)
	if err != nil {
		return 0, domain.DependencyError{Dependency: "wallet store", Err: err}
	}
	l.log.Debug("wallet credited", zap.String("user_id", userID), zap.Int64("amount", amount), zap.Int64("balance", balance))
	return balance, nil
}

// Statement returns the most recent ledger entries, newest first.
func (l *Ledger) Statement(ctx context.Context, userID string, limit int) ([]domain.WalletEntry, error) {
	if _, err := l.GetBalance(ctx, userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultStatementLimit
	}
	entries, err := l.wallets.Entries(ctx, userID, limit)
	if err != nil {
		return nil, domain.DependencyError{Dependency: "wallet store", Err: err}
	}
	return entries, nil
}

func validateAmount(amount int64) error {
	if amount <= 0 {
		return domain.ValidationError{Field: "amount", Msg: "amount must be positive"}
	}
	return nil
}

var _ LedgerUseCase = (*Ledger)(nil)
