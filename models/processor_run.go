package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RunKind identifies which processor produced a run record
type RunKind string

const (
	RunKindAccrual    RunKind = "accrual"
	RunKindSettlement RunKind = "settlement"
	RunKindReconcile  RunKind = "reconcile"
)

// ProcessorRun is the audit record written after each processor invocation
type ProcessorRun struct {
	ID              int64           `db:"id"`
	Kind            RunKind         `db:"kind"`
	Processed       int             `db:"processed"`
	Failed          int             `db:"failed"`
	TotalAmount     decimal.Decimal `db:"total_amount"`
	ErrorList       []string        `db:"error_list"`
	ExecutionTimeMS int64           `db:"execution_time_ms"`
	CreatedAt       time.Time       `db:"created_at"`
}
