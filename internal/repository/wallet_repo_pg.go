package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/surgefare/internal/domain"
	"github.com/jackc/pgx/v5"
)

// WalletRepository owns wallet balances. Debit is a single conditional
// statement: the balance check and the decrement cannot be separated.
type WalletRepository interface {
	Ensure(ctx context.Context, userID string, initial int64) (*domain.Wallet, error)
	Debit(ctx context.Context, userID string, amount int64, reference string) (int64, error)
	Credit(ctx context.Context, userID string, amount int64, reference string) (int64, error)
	Entries(ctx context.Context, userID string, limit int) ([]domain.WalletEntry, error)
}

type PGWalletRepository struct {
	db DB
}

func NewWalletRepository(db DB) WalletRepository {
	return &PGWalletRepository{db: db}
}

func (r *PGWalletRepository) Ensure(ctx context.Context, userID string, initial int64) (*domain.Wallet, error) {
	if _, err := r.db.Exec(ctx, `INSERT INTO wallets (user_id, balance) VALUES ($1, $2) ON CONFLICT (user_id) DO NOTHING`, userID, initial); err != nil {
		return nil, err
	}
	var w domain.Wallet
	if err := r.db.QueryRow(ctx, `SELECT user_id, balance, created_at, updated_at FROM wallets WHERE user_id=$1`, userID).
		Scan(&w.UserID, &w.Balance, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, notFound(err, "wallet", userID)
	}
	return &w, nil
}

func (r *PGWalletRepository) Debit(ctx context.Context, userID string, amount int64, reference string) (int64, error) {
	var balance int64
	err := r.db.QueryRow(ctx, `WITH debited AS (
			UPDATE wallets SET balance = balance - $2, updated_at = now()
			WHERE user_id = $1 AND balance >= $2
			RETURNING user_id, balance
		)
		INSERT INTO wallet_entries (user_id, kind, amount, balance_after, reference)
		SELECT user_id, $3, $2, balance, $4 FROM debited
		RETURNING balance_after`, userID, amount, string(domain.WalletEntryDebit), reference).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	// The debit was rejected atomically; this read only reports the shortfall.
	var current int64
	if err := r.db.QueryRow(ctx, `SELECT balance FROM wallets WHERE user_id=$1`, userID).Scan(&current); err != nil {
		return 0, notFound(err, "wallet", userID)
	}
	return 0, domain.InsufficientFundsError{Balance: current, Required: amount}
}

func (r *PGWalletRepository) Credit(ctx context.Context, userID string, amount int64, reference string) (int64, error) {
	var balance int64
	err := r.db.QueryRow(ctx, `WITH credited AS (
			UPDATE wallets SET balance = balance + $2, updated_at = now()
			WHERE user_id = $1
			RETURNING user_id, balance
		)
		INSERT INTO wallet_entries (user_id, kind, amount, balance_after, reference)
		SELECT user_id, $3, $2, balance, $4 FROM credited
		RETURNING balance_after`, userID, amount, string(domain.WalletEntryCredit), reference).Scan(&balance)
	if err != nil {
		return 0, notFound(err, "wallet", userID)
	}
	return balance, nil
}

func (r *PGWalletRepository) Entries(ctx context.Context, userID string, limit int) ([]domain.WalletEntry, error) {
	rows, err := r.db.Query(ctx, `SELECT id, user_id, kind, amount, balance_after, reference, created_at
		FROM wallet_entries WHERE user_id=$1 ORDER BY id DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.WalletEntry, 0)
	for rows.Next() {
		var e domain.WalletEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Kind, &e.Amount, &e.BalanceAfter, &e.Reference, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

var _ WalletRepository = (*PGWalletRepository)(nil)
