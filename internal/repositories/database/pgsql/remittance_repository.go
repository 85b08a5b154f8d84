package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridianfx/ledger-core/internal/apperrors"
	"github.com/meridianfx/ledger-core/internal/core/domain"
	portsrepo "github.com/meridianfx/ledger-core/internal/core/ports/repositories"
)

type PgxRemittanceRepository struct {
	BaseRepository
}

// newPgxRemittanceRepository creates a new repository for remittance intents.
func newPgxRemittanceRepository(pool *pgxpool.Pool) portsrepo.RemittanceRepository {
	return &PgxRemittanceRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.RemittanceRepository = (*PgxRemittanceRepository)(nil)

const intentColumns = `
	intent_id, tenant_id, transaction_id, sender_name, sender_phone,
	beneficiary_name, beneficiary_phone, delivery_method, tracking_code,
	partner_ref, status, created_at, created_by, last_updated_at, last_updated_by`

func (r *PgxRemittanceRepository) SaveIntent(ctx context.Context, intent domain.RemittanceIntent) error {
	query := `
		INSERT INTO remittance_intents (` + intentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := r.Pool.Exec(ctx, query,
		intent.IntentID,
		intent.TenantID,
		intent.TransactionID,
		intent.SenderName,
		intent.SenderPhone,
		intent.BeneficiaryName,
		intent.BeneficiaryPhone,
		intent.DeliveryMethod,
		intent.TrackingCode,
		intent.PartnerRef,
		intent.Status,
		intent.CreatedAt,
		intent.CreatedBy,
		intent.LastUpdatedAt,
		intent.LastUpdatedBy,
	)
	if err != nil {
		return mapPgError(err, "failed to save remittance intent "+intent.IntentID)
	}
	return nil
}

func (r *PgxRemittanceRepository) FindIntentByTransactionID(ctx context.Context, tenantID, transactionID string) (*domain.RemittanceIntent, error) {
	query := `SELECT ` + intentColumns + ` FROM remittance_intents WHERE tenant_id = $1 AND transaction_id = $2;`
	var in domain.RemittanceIntent
	err := r.Pool.QueryRow(ctx, query, tenantID, transactionID).Scan(
		&in.IntentID,
		&in.TenantID,
		&in.TransactionID,
		&in.SenderName,
		&in.SenderPhone,
		&in.BeneficiaryName,
		&in.BeneficiaryPhone,
		&in.DeliveryMethod,
		&in.TrackingCode,
		&in.PartnerRef,
		&in.Status,
		&in.CreatedAt,
		&in.CreatedBy,
		&in.LastUpdatedAt,
		&in.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan remittance intent: %w", err)
	}
	return &in, nil
}

func (r *PgxRemittanceRepository) UpdateIntentStatus(ctx context.Context, tenantID, intentID string, status domain.RemittanceStatus, partnerRef *string, userID string, now time.Time) error {
	query := `
		UPDATE remittance_intents
		SET status = $3, partner_ref = COALESCE($4, partner_ref),
		    last_updated_at = $5, last_updated_by = $6
		WHERE tenant_id = $1 AND intent_id = $2;
	`
	tag, err := r.Pool.Exec(ctx, query, tenantID, intentID, status, partnerRef, now, userID)
	if err != nil {
		return mapPgError(err, "failed to update remittance intent")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
