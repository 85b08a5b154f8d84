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

type PgxRateRepository struct {
	BaseRepository
}

// newPgxRateRepository creates a new repository for exchange rates.
func newPgxRateRepository(pool *pgxpool.Pool) portsrepo.RateRepository {
	return &PgxRateRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.RateRepository = (*PgxRateRepository)(nil)

const rateColumns = `
	rate_id, tenant_id, from_currency, to_currency, bid, ask, vip_bid, vip_ask,
	valid_from, valid_to, source, min_amount, max_amount, daily_limit,
	created_at, created_by, last_updated_at, last_updated_by`

// ReplaceActiveRate truncates the open window for the pair and inserts the
// new rate plus its history record in one serialisable transaction, keeping
// validity windows disjoint.
func (r *PgxRateRepository) ReplaceActiveRate(ctx context.Context, rate domain.ExchangeRate, change domain.RateChange) error {
	tx, err := r.BeginSerializable(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	truncate := `
		UPDATE exchange_rates
		SET valid_to = $4, last_updated_at = $5, last_updated_by = $6
		WHERE tenant_id IS NOT DISTINCT FROM $1
		  AND from_currency = $2 AND to_currency = $3
		  AND valid_from < $4 AND (valid_to IS NULL OR valid_to > $4);
	`
	if _, err := tx.Exec(ctx, truncate,
		rate.TenantID, rate.FromCurrency, rate.ToCurrency,
		rate.ValidFrom, rate.LastUpdatedAt, rate.LastUpdatedBy,
	); err != nil {
		return mapPgError(err, "failed to truncate previous rate window")
	}

	insert := `
		INSERT INTO exchange_rates (` + rateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	if _, err := tx.Exec(ctx, insert,
		rate.RateID, rate.TenantID, rate.FromCurrency, rate.ToCurrency,
		rate.Bid, rate.Ask, rate.VIPBid, rate.VIPAsk,
		rate.ValidFrom, rate.ValidTo, rate.Source,
		rate.MinAmount, rate.MaxAmount, rate.DailyLimit,
		rate.CreatedAt, rate.CreatedBy, rate.LastUpdatedAt, rate.LastUpdatedBy,
	); err != nil {
		return mapPgError(err, "failed to insert exchange rate")
	}

	history := `
		INSERT INTO exchange_rate_history (
			change_id, rate_id, tenant_id, from_currency, to_currency,
			old_bid, old_ask, new_bid, new_ask, reason, changed_by, changed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	if _, err := tx.Exec(ctx, history,
		change.ChangeID, change.RateID, change.TenantID, change.FromCurrency, change.ToCurrency,
		change.OldBid, change.OldAsk, change.NewBid, change.NewAsk,
		change.Reason, change.ChangedBy, change.ChangedAt,
	); err != nil {
		return mapPgError(err, "failed to append rate history")
	}

	return r.Commit(ctx, tx)
}

func scanRate(row pgx.Row) (*domain.ExchangeRate, error) {
	var rate domain.ExchangeRate
	err := row.Scan(
		&rate.RateID, &rate.TenantID, &rate.FromCurrency, &rate.ToCurrency,
		&rate.Bid, &rate.Ask, &rate.VIPBid, &rate.VIPAsk,
		&rate.ValidFrom, &rate.ValidTo, &rate.Source,
		&rate.MinAmount, &rate.MaxAmount, &rate.DailyLimit,
		&rate.CreatedAt, &rate.CreatedBy, &rate.LastUpdatedAt, &rate.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan exchange rate: %w", err)
	}
	return &rate, nil
}

// FindCurrentRate prefers the tenant-scoped window and falls back to the
// global one when the tenant has no rate of its own.
func (r *PgxRateRepository) FindCurrentRate(ctx context.Context, tenantID, fromCurrency, toCurrency string, at time.Time) (*domain.ExchangeRate, error) {
	query := `
		SELECT ` + rateColumns + `
		FROM exchange_rates
		WHERE (tenant_id = $1 OR tenant_id IS NULL)
		  AND from_currency = $2 AND to_currency = $3
		  AND valid_from <= $4 AND (valid_to IS NULL OR valid_to > $4)
		ORDER BY (tenant_id IS NULL), valid_from DESC
		LIMIT 1;
	`
	return scanRate(r.Pool.QueryRow(ctx, query, tenantID, fromCurrency, toCurrency, at))
}

func (r *PgxRateRepository) ListRateHistory(ctx context.Context, tenantID, fromCurrency, toCurrency string, limit int) ([]domain.RateChange, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := `
		SELECT change_id, rate_id, tenant_id, from_currency, to_currency,
		       old_bid, old_ask, new_bid, new_ask, reason, changed_by, changed_at
		FROM exchange_rate_history
		WHERE (tenant_id = $1 OR tenant_id IS NULL)
		  AND from_currency = $2 AND to_currency = $3
		ORDER BY changed_at DESC
		LIMIT $4;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID, fromCurrency, toCurrency, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list rate history: %w", err)
	}
	defer rows.Close()

	var changes []domain.RateChange
	for rows.Next() {
		var c domain.RateChange
		err := rows.Scan(
			&c.ChangeID, &c.RateID, &c.TenantID, &c.FromCurrency, &c.ToCurrency,
			&c.OldBid, &c.OldAsk, &c.NewBid, &c.NewAsk, &c.Reason, &c.ChangedBy, &c.ChangedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rate change: %w", err)
		}
		changes = append(changes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rate history: %w", err)
	}
	return changes, nil
}
