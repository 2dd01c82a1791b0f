package service

import (
	"github.com/shopspring/decimal"

	"yieldvault/models"
)

// DefaultDailyRate is the daily profit rate (percent) used when no tier table
// has been configured.
var DefaultDailyRate = decimal.RequireFromString("1.00")

func intPtr(v int) *int { return &v }

// DefaultRateTable is the built-in duration tier table
var DefaultRateTable = models.RateTable{
	{MinDays: 1, MaxDays: intPtr(6), Rate: decimal.RequireFromString("1.00")},
	{MinDays: 7, MaxDays: intPtr(14), Rate: decimal.RequireFromString("2.00")},
	{MinDays: 15, MaxDays: intPtr(29), Rate: decimal.RequireFromString("3.00")},
	{MinDays: 30, MaxDays: nil, Rate: decimal.RequireFromString("5.00")},
}

// DefaultVipThresholds are the built-in cumulative deposit thresholds
var DefaultVipThresholds = models.VipThresholds{
	decimal.NewFromInt(50_000_000),
	decimal.NewFromInt(150_000_000),
}

// ResolveDailyRate maps a term length in days to a daily profit rate percent.
// The first tier containing the term wins. Any term no tier contains resolves
// to the rate of the tier with the largest min_days, whether it falls past the
// top of the table or below the lowest tier. Only an empty table falls back to
// DefaultDailyRate. Resolution is total, it never fails.
func ResolveDailyRate(termDays int, table models.RateTable) decimal.Decimal {
	if len(table) == 0 {
		return DefaultDailyRate
	}

	sorted := table.Sorted()
	for _, tier := range sorted {
		if termDays >= tier.MinDays && (tier.MaxDays == nil || termDays <= *tier.MaxDays) {
			return tier.Rate
		}
	}

	return sorted[len(sorted)-1].Rate
}
