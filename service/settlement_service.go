package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"yieldvault/config"
	"yieldvault/events"
	"yieldvault/models"
)

// settlementProcessor implements the SettlementProcessor interface
type settlementProcessor struct {
	uowFactory UnitOfWorkFactory
}

// NewSettlementProcessor creates a new settlement processor
func NewSettlementProcessor(uowFactory UnitOfWorkFactory) SettlementProcessor {
	return &settlementProcessor{
		uowFactory: uowFactory,
	}
}

// Run settles matured active investments. Each investment is handled in its
// own transaction, so one bad row never blocks the rest of the batch and a
// failed row stays claimable for the next run.
func (p *settlementProcessor) Run(ctx context.Context) (*ProcessorSummary, error) {
	start := time.Now()
	now := start.UTC()
	summary := &ProcessorSummary{Kind: models.RunKindSettlement, TotalAmount: decimal.Zero}

	ids, err := p.listCandidates(ctx, now)
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		credited, settled, err := p.SettleOne(ctx, id, now)
		if err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, rowError(id, err))
			log.WithError(err).WithField("investmentId", id).Error("Settlement failed")
			continue
		}
		if !settled {
			summary.Skipped++
			continue
		}
		summary.Processed++
		summary.TotalAmount = summary.TotalAmount.Add(credited)
	}

	summary.Duration = time.Since(start)
	recordRun(ctx, p.uowFactory, summary)

	log.WithFields(log.Fields{
		"settled":       summary.Processed,
		"skipped":       summary.Skipped,
		"failed":        summary.Failed,
		"totalCredited": summary.TotalAmount,
		"duration":      summary.Duration,
	}).Info("Settlement run finished")

	return summary, nil
}

func (p *settlementProcessor) listCandidates(ctx context.Context, now time.Time) ([]int64, error) {
	uow := p.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	ids, err := uow.InvestmentRepository().ListMaturedActiveIDs(ctx, now, config.Get().MaxBatchSize)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return ids, nil
}

// SettleOne claims a matured investment and credits principal and profit back
// to the owner's wallet, all in one transaction. The profit is recomputed
// from the frozen terms, which is the authoritative value even when the
// incremental accrual fell behind. Returns false when another invocation won
// the claim first.
func (p *settlementProcessor) SettleOne(ctx context.Context, id int64, now time.Time) (decimal.Decimal, bool, error) {
	uow := p.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	inv, err := uow.InvestmentRepository().Claim(ctx, id, now)
	if err != nil {
		return decimal.Zero, false, err
	}
	if inv == nil {
		return decimal.Zero, false, nil
	}

	finalProfit := inv.TotalProfit()
	total := inv.PrincipalAmount.Add(finalProfit)

	// Pin the stored accrual to the authoritative total before paying out.
	if err := uow.InvestmentRepository().SetAccruedProfit(ctx, inv.ID, finalProfit); err != nil {
		return decimal.Zero, false, err
	}

	termDesc := fmt.Sprintf("investment #%d (%d days at %s%% daily)", inv.ID, inv.TermDays, inv.DailyProfitRate)
	if _, err := creditWithLedger(ctx, uow, inv.OwnerID, inv.PrincipalAmount, "Principal return for "+termDesc); err != nil {
		return decimal.Zero, false, err
	}
	if _, err := creditWithLedger(ctx, uow, inv.OwnerID, finalProfit, "Profit return for "+termDesc); err != nil {
		return decimal.Zero, false, err
	}

	thresholds, err := loadVipThresholds(ctx, uow)
	if err != nil {
		return decimal.Zero, false, err
	}
	if _, _, err := recomputeVipTier(ctx, uow, thresholds, inv.OwnerID); err != nil {
		return decimal.Zero, false, err
	}

	uow.EventBus().Publish(events.InvestmentSettledEvent{
		InvestmentID: inv.ID,
		OwnerID:      inv.OwnerID,
		Principal:    inv.PrincipalAmount,
		Profit:       finalProfit,
		TotalCredit:  total,
	})

	if err := uow.Commit(); err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return total, true, nil
}
