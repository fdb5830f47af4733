package domain

import "time"

type Wallet struct {
	UserID    string
	Balance   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

type WalletEntryKind string

const (
	WalletEntryDebit  WalletEntryKind = "DEBIT"
	WalletEntryCredit WalletEntryKind = "CREDIT"
)

// WalletEntry is one line of the wallet audit trail, written together with
// the balance change it describes.
type WalletEntry struct {
	ID           int64
	UserID       string
	Kind         WalletEntryKind
	Amount       int64
	BalanceAfter int64
	Reference    string
	CreatedAt    time.Time
}
