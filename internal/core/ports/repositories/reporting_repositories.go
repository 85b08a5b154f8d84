package repositories

import (
	"context"
	"time"

	"github.com/meridianfx/ledger-core/internal/core/domain"
)

// ReportingRepository reads reporting projections straight from the general
// ledger, never from cached account balances, so reports stay correct while
// a cache rebuild is in progress.
type ReportingRepository interface {
	GetTrialBalanceData(ctx context.Context, tenantID string, asOf time.Time) ([]domain.TrialBalanceRow, error)
	GetProfitAndLossData(ctx context.Context, tenantID string, from, to time.Time) ([]domain.AccountAmount, []domain.AccountAmount, error)
	GetBalanceSheetData(ctx context.Context, tenantID string, asOf time.Time) ([]domain.AccountAmount, []domain.AccountAmount, []domain.AccountAmount, error)
}

// RemittanceRepository persists remittance intents.
type RemittanceRepository interface {
	SaveIntent(ctx context.Context, intent domain.RemittanceIntent) error
	FindIntentByTransactionID(ctx context.Context, tenantID, transactionID string) (*domain.RemittanceIntent, error)
	UpdateIntentStatus(ctx context.Context, tenantID, intentID string, status domain.RemittanceStatus, partnerRef *string, userID string, now time.Time) error
}
