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

// statusReconciler implements the StatusReconciler interface
type statusReconciler struct {
	uowFactory UnitOfWorkFactory
	settlement SettlementProcessor
}

// NewStatusReconciler creates a new status reconciler
func NewStatusReconciler(uowFactory UnitOfWorkFactory, settlement SettlementProcessor) StatusReconciler {
	return &statusReconciler{
		uowFactory: uowFactory,
		settlement: settlement,
	}
}

// Run corrects status drift in both directions. Matured rows still marked
// active are pushed through the regular settlement claim path so they are
// credited exactly once; completed rows whose maturity is still in the future
// can only come from manual or buggy writes and are flipped back to active
// with a warning. Safe to run at any frequency.
func (r *statusReconciler) Run(ctx context.Context) (*ProcessorSummary, error) {
	start := time.Now()
	now := start.UTC()
	summary := &ProcessorSummary{Kind: models.RunKindReconcile, TotalAmount: decimal.Zero}

	settled, err := r.settleOverdue(ctx, now, summary)
	if err != nil {
		return nil, err
	}
	reverted, err := r.revertPremature(ctx, now, summary)
	if err != nil {
		return nil, err
	}
	summary.Processed = settled + reverted

	summary.Duration = time.Since(start)
	recordRun(ctx, r.uowFactory, summary)

	log.WithFields(log.Fields{
		"settled":  settled,
		"reverted": reverted,
		"failed":   summary.Failed,
		"duration": summary.Duration,
	}).Info("Reconcile run finished")

	return summary, nil
}

func (r *statusReconciler) settleOverdue(ctx context.Context, now time.Time, summary *ProcessorSummary) (int, error) {
	uow := r.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	ids, err := uow.InvestmentRepository().ListMaturedActiveIDs(ctx, now, config.Get().MaxBatchSize)
	uow.Rollback()
	if err != nil {
		return 0, err
	}

	settled := 0
	for _, id := range ids {
		credited, ok, err := r.settlement.SettleOne(ctx, id, now)
		if err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, rowError(id, err))
			log.WithError(err).WithField("investmentId", id).Error("Reconcile settlement failed")
			continue
		}
		if !ok {
			summary.Skipped++
			continue
		}
		settled++
		summary.TotalAmount = summary.TotalAmount.Add(credited)
	}

	return settled, nil
}

func (r *statusReconciler) revertPremature(ctx context.Context, now time.Time, summary *ProcessorSummary) (int, error) {
	uow := r.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	ids, err := uow.InvestmentRepository().ListCompletedFutureIDs(ctx, now, config.Get().MaxBatchSize)
	if err != nil {
		return 0, err
	}

	reverted := 0
	for _, id := range ids {
		ok, err := uow.InvestmentRepository().ReopenCompleted(ctx, id, now)
		if err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, rowError(id, err))
			continue
		}
		if !ok {
			summary.Skipped++
			continue
		}
		reverted++
		log.WithField("investmentId", id).Warn("Reverted prematurely completed investment to active")
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return reverted, nil
}
