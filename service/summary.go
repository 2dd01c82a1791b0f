package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"yieldvault/models"
)

// ProcessorSummary is the outcome of one processor invocation
type ProcessorSummary struct {
	Kind        models.RunKind
	Processed   int
	Skipped     int
	Failed      int
	TotalAmount decimal.Decimal
	Errors      []string
	Duration    time.Duration
}

// recordRun persists the summary as a processor_runs audit row. Recording
// failures are logged but never fail the run itself.
func recordRun(ctx context.Context, uowFactory UnitOfWorkFactory, summary *ProcessorSummary) {
	run := &models.ProcessorRun{
		Kind:            summary.Kind,
		Processed:       summary.Processed,
		Failed:          summary.Failed,
		TotalAmount:     summary.TotalAmount,
		ErrorList:       summary.Errors,
		ExecutionTimeMS: summary.Duration.Milliseconds(),
	}

	uow := uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		log.WithError(err).WithField("kind", summary.Kind).Error("Failed to begin transaction for run record")
		return
	}
	defer uow.Rollback()

	if err := uow.ProcessorRunRepository().Record(ctx, run); err != nil {
		log.WithError(err).WithField("kind", summary.Kind).Error("Failed to record processor run")
		return
	}

	if err := uow.Commit(); err != nil {
		log.WithError(err).WithField("kind", summary.Kind).Error("Failed to commit run record")
	}
}

func rowError(id int64, err error) string {
	return fmt.Sprintf("investment %d: %v", id, err)
}
