package models

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Settings store keys. Values are stored as JSON in the settings table.
const (
	SettingRateTiers     = "rate_tiers"
	SettingVipThresholds = "vip_thresholds"
)

// RateTier maps a range of term lengths (in days) to a daily profit rate
// percentage. MaxDays nil means the tier is open-ended.
type RateTier struct {
	MinDays int             `json:"min_days"`
	MaxDays *int            `json:"max_days,omitempty"`
	Rate    decimal.Decimal `json:"rate"`
}

// RateTable is an ordered, non-overlapping list of rate tiers.
type RateTable []RateTier

// Validate rejects malformed tier tables at write time. Tiers must have
// positive bounds, must not overlap, and must not leave a finite gap between
// two bounded tiers. Resolution itself never fails (see service.ResolveDailyRate).
func (t RateTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("rate table must contain at least one tier")
	}

	sorted := make(RateTable, len(t))
	copy(sorted, t)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinDays < sorted[j].MinDays })

	for i, tier := range sorted {
		if tier.MinDays < 1 {
			return fmt.Errorf("tier %d: min_days must be positive, got %d", i, tier.MinDays)
		}
		if tier.MaxDays != nil && *tier.MaxDays < tier.MinDays {
			return fmt.Errorf("tier %d: max_days %d is below min_days %d", i, *tier.MaxDays, tier.MinDays)
		}
		if tier.Rate.IsNegative() {
			return fmt.Errorf("tier %d: rate must not be negative", i)
		}

		if i == 0 {
			continue
		}
		prev := sorted[i-1]
		if prev.MaxDays == nil {
			return fmt.Errorf("tier %d: open-ended tier starting at %d days must be the last tier", i, prev.MinDays)
		}
		if tier.MinDays <= *prev.MaxDays {
			return fmt.Errorf("tier %d: overlaps previous tier ending at %d days", i, *prev.MaxDays)
		}
		if tier.MinDays > *prev.MaxDays+1 {
			return fmt.Errorf("tier %d: gap between %d and %d days is uncovered", i, *prev.MaxDays, tier.MinDays)
		}
	}

	return nil
}

// Sorted returns a copy of the table ordered by min_days ascending.
func (t RateTable) Sorted() RateTable {
	sorted := make(RateTable, len(t))
	copy(sorted, t)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinDays < sorted[j].MinDays })
	return sorted
}

// VipThresholds is a strictly increasing list of cumulative completed-deposit
// amounts. The tier index of a user is the number of thresholds their total
// meets or exceeds.
type VipThresholds []decimal.Decimal

// Validate rejects malformed threshold lists at write time.
func (v VipThresholds) Validate() error {
	for i, threshold := range v {
		if !threshold.IsPositive() {
			return fmt.Errorf("threshold %d: must be positive, got %s", i, threshold)
		}
		if i > 0 && !threshold.GreaterThan(v[i-1]) {
			return fmt.Errorf("threshold %d: %s does not exceed previous threshold %s", i, threshold, v[i-1])
		}
	}
	return nil
}

// TierFor returns the VIP tier index for a cumulative deposit total: the
// count of thresholds the total meets or exceeds, capped at the threshold
// count. Recomputing with unchanged inputs always yields the same result.
func (v VipThresholds) TierFor(totalDeposits decimal.Decimal) int {
	tier := 0
	for _, threshold := range v {
		if totalDeposits.GreaterThanOrEqual(threshold) {
			tier++
		}
	}
	return tier
}
