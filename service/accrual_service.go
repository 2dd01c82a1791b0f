package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"yieldvault/config"
	"yieldvault/models"
)

// accrualProcessor implements the AccrualProcessor interface
type accrualProcessor struct {
	uowFactory UnitOfWorkFactory
}

// NewAccrualProcessor creates a new accrual processor
func NewAccrualProcessor(uowFactory UnitOfWorkFactory) AccrualProcessor {
	return &accrualProcessor{
		uowFactory: uowFactory,
	}
}

// Run advances accrued profit on active, unmatured investments. Each row is
// updated in its own transaction with a conditional update keyed on the
// accrual watermark read here, so overlapping invocations can never credit
// the same elapsed days twice. Rows that lose the conditional update, or have
// less than a whole day elapsed, are skipped, not failed.
func (p *accrualProcessor) Run(ctx context.Context) (*ProcessorSummary, error) {
	start := time.Now()
	now := start.UTC()
	summary := &ProcessorSummary{Kind: models.RunKindAccrual, TotalAmount: decimal.Zero}

	candidates, err := p.listCandidates(ctx, now)
	if err != nil {
		return nil, err
	}

	for _, inv := range candidates {
		accrued, err := p.accrueOne(ctx, inv, now)
		if err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, rowError(inv.ID, err))
			log.WithError(err).WithField("investmentId", inv.ID).Error("Accrual failed")
			continue
		}
		if accrued.IsZero() {
			summary.Skipped++
			continue
		}
		summary.Processed++
		summary.TotalAmount = summary.TotalAmount.Add(accrued)
	}

	summary.Duration = time.Since(start)
	recordRun(ctx, p.uowFactory, summary)

	log.WithFields(log.Fields{
		"processed":   summary.Processed,
		"skipped":     summary.Skipped,
		"failed":      summary.Failed,
		"totalAmount": summary.TotalAmount,
		"duration":    summary.Duration,
	}).Info("Accrual run finished")

	return summary, nil
}

func (p *accrualProcessor) listCandidates(ctx context.Context, now time.Time) ([]*models.Investment, error) {
	uow := p.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	candidates, err := uow.InvestmentRepository().ListActiveUnmatured(ctx, now, config.Get().MaxBatchSize)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return candidates, nil
}

// accrueOne applies the accrual window of a single investment. Returns zero
// when nothing was credited.
func (p *accrualProcessor) accrueOne(ctx context.Context, inv *models.Investment, now time.Time) (decimal.Decimal, error) {
	elapsedDays := int(now.Sub(inv.LastAccrualAt) / (24 * time.Hour))
	if elapsedDays < 1 {
		return decimal.Zero, nil
	}
	if elapsedDays > inv.TermDays {
		elapsedDays = inv.TermDays
	}

	// Clamp so accrued profit never exceeds the full-term total.
	delta := inv.DailyProfit().Mul(decimal.NewFromInt(int64(elapsedDays))).Round(2)
	remaining := inv.TotalProfit().Sub(inv.AccruedProfit)
	if delta.GreaterThan(remaining) {
		delta = remaining
	}
	if !delta.IsPositive() {
		return decimal.Zero, nil
	}

	// Advance the watermark by whole days only so a fractional remainder
	// keeps accruing from the correct point.
	newLastAccrualAt := inv.LastAccrualAt.Add(time.Duration(elapsedDays) * 24 * time.Hour)

	uow := p.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return decimal.Zero, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	applied, err := uow.InvestmentRepository().ApplyAccrual(ctx, inv.ID, delta, inv.LastAccrualAt, newLastAccrualAt)
	if err != nil {
		return decimal.Zero, err
	}
	if !applied {
		// Another invocation already covered this window.
		return decimal.Zero, nil
	}

	if err := uow.Commit(); err != nil {
		return decimal.Zero, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return delta, nil
}
