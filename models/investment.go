package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvestmentStatus represents the lifecycle state of an investment
type InvestmentStatus string

const (
	InvestmentStatusActive    InvestmentStatus = "active"
	InvestmentStatusCompleted InvestmentStatus = "completed"
)

var oneHundred = decimal.NewFromInt(100)

// Investment represents a fixed-term, fixed-rate funded position held by a user.
// PrincipalAmount, DailyProfitRate and TermDays are frozen at creation time;
// AccruedProfit and LastAccrualAt advance only through the accrual processor,
// and Status flips to completed only through the settlement claim.
type Investment struct {
	ID              int64            `db:"id"`
	OwnerID         int64            `db:"owner_id"`
	PrincipalAmount decimal.Decimal  `db:"principal_amount"`
	DailyProfitRate decimal.Decimal  `db:"daily_profit_rate"` // percent per day
	TermDays        int              `db:"term_days"`
	AccruedProfit   decimal.Decimal  `db:"accrued_profit"`
	MaturityDate    time.Time        `db:"maturity_date"`
	LastAccrualAt   time.Time        `db:"last_accrual_at"`
	Status          InvestmentStatus `db:"status"`
	CreatedAt       time.Time        `db:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at"`
}

// TotalProfit returns the full-term profit computed from the frozen inputs:
// principal * rate/100 * term_days. This is the authoritative settlement
// value and the upper bound for incremental accrual.
func (i *Investment) TotalProfit() decimal.Decimal {
	return i.PrincipalAmount.
		Mul(i.DailyProfitRate).
		Div(oneHundred).
		Mul(decimal.NewFromInt(int64(i.TermDays))).
		Round(2)
}

// DailyProfit returns the profit earned per whole elapsed day.
func (i *Investment) DailyProfit() decimal.Decimal {
	return i.PrincipalAmount.Mul(i.DailyProfitRate).Div(oneHundred)
}

// IsMatured reports whether the investment is eligible for settlement.
func (i *Investment) IsMatured(now time.Time) bool {
	return !i.MaturityDate.After(now)
}
