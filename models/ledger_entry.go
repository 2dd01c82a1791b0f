package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntryKind represents the direction of a fund movement
type LedgerEntryKind string

const (
	LedgerKindDeposit  LedgerEntryKind = "deposit"
	LedgerKindWithdraw LedgerEntryKind = "withdraw"
)

// LedgerEntryStatus represents the processing state of a ledger entry
type LedgerEntryStatus string

const (
	LedgerStatusPending   LedgerEntryStatus = "pending"
	LedgerStatusCompleted LedgerEntryStatus = "completed"
	LedgerStatusFailed    LedgerEntryStatus = "failed"
	LedgerStatusCancelled LedgerEntryStatus = "cancelled"
)

// WalletLedgerEntry is an append-only record of a fund movement affecting a
// user's wallet balance. The sum of completed deposits minus completed
// withdraws (plus administrative adjustments) must equal the wallet balance;
// the balance column is a materialized cache of this ledger.
type WalletLedgerEntry struct {
	ID          int64             `db:"id"`
	OwnerID     int64             `db:"owner_id"`
	Kind        LedgerEntryKind   `db:"kind"`
	Amount      decimal.Decimal   `db:"amount"`
	Status      LedgerEntryStatus `db:"status"`
	Reference   string            `db:"reference"`
	Description string            `db:"description"`
	CreatedAt   time.Time         `db:"created_at"`
}
