package services

import (
	"context"
	"time"

	"github.com/meridianfx/ledger-core/internal/core/domain"
)

// ReportingService derives financial statements from the general ledger.
type ReportingService interface {
	// ProfitAndLoss nets revenue against expenses over a window.
	ProfitAndLoss(ctx context.Context, caller domain.CallContext, from, to time.Time) (*domain.PAndLReport, error)
	// BalanceSheet snapshots assets, liabilities, and equity as of a date.
	BalanceSheet(ctx context.Context, caller domain.CallContext, asOf time.Time) (*domain.BalanceSheetReport, error)
}
