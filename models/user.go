package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User holds the wallet fields of a user account. Balance is mutated only by
// settlement credits, withdrawal debits/refunds and administrative
// adjustments; VipTier is derived from cumulative completed deposits.
type User struct {
	ID        int64           `db:"id"`
	Balance   decimal.Decimal `db:"balance"`
	VipTier   int             `db:"vip_tier"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}
