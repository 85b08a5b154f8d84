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

type PgxTenantRepository struct {
	BaseRepository
}

// newPgxTenantRepository creates a new repository for tenant data.
func newPgxTenantRepository(pool *pgxpool.Pool) portsrepo.TenantRepository {
	return &PgxTenantRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.TenantRepository = (*PgxTenantRepository)(nil)

const tenantColumns = `
	tenant_id, name, slug, status, plan, base_currency, parent_tenant_id,
	max_users, max_daily_postings, allowed_currencies,
	created_at, created_by, last_updated_at, last_updated_by`

func (r *PgxTenantRepository) SaveTenant(ctx context.Context, tenant domain.Tenant) error {
	query := `
		INSERT INTO tenants (` + tenantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := r.Pool.Exec(ctx, query,
		tenant.TenantID,
		tenant.Name,
		tenant.Slug,
		tenant.Status,
		tenant.Plan,
		tenant.BaseCurrency,
		tenant.ParentTenantID,
		tenant.Limits.MaxUsers,
		tenant.Limits.MaxDailyPostings,
		tenant.Limits.AllowedCurrencies,
		tenant.CreatedAt,
		tenant.CreatedBy,
		tenant.LastUpdatedAt,
		tenant.LastUpdatedBy,
	)
	if err != nil {
		return mapPgError(err, "failed to save tenant "+tenant.TenantID)
	}
	return nil
}

func (r *PgxTenantRepository) scanTenant(row pgx.Row) (*domain.Tenant, error) {
	var t domain.Tenant
	err := row.Scan(
		&t.TenantID,
		&t.Name,
		&t.Slug,
		&t.Status,
		&t.Plan,
		&t.BaseCurrency,
		&t.ParentTenantID,
		&t.Limits.MaxUsers,
		&t.Limits.MaxDailyPostings,
		&t.Limits.AllowedCurrencies,
		&t.CreatedAt,
		&t.CreatedBy,
		&t.LastUpdatedAt,
		&t.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan tenant: %w", err)
	}
	return &t, nil
}

func (r *PgxTenantRepository) FindTenantByID(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE tenant_id = $1;`
	return r.scanTenant(r.Pool.QueryRow(ctx, query, tenantID))
}

func (r *PgxTenantRepository) FindTenantBySlug(ctx context.Context, slug string) (*domain.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE slug = $1;`
	return r.scanTenant(r.Pool.QueryRow(ctx, query, slug))
}

func (r *PgxTenantRepository) UpdateTenantStatus(ctx context.Context, tenantID string, status domain.TenantStatus, updatedBy string) error {
	query := `
		UPDATE tenants
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE tenant_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, tenantID, status, time.Now(), updatedBy)
	if err != nil {
		return mapPgError(err, "failed to update tenant status")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxTenantRepository) UpdateBaseCurrency(ctx context.Context, tenantID string, baseCurrency string, updatedBy string) error {
	query := `
		UPDATE tenants
		SET base_currency = $2, last_updated_at = $3, last_updated_by = $4
		WHERE tenant_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, tenantID, baseCurrency, time.Now(), updatedBy)
	if err != nil {
		return mapPgError(err, "failed to update base currency")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxTenantRepository) HasTransactions(ctx context.Context, tenantID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM transactions WHERE tenant_id = $1);`
	var exists bool
	if err := r.Pool.QueryRow(ctx, query, tenantID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check tenant transactions: %w", err)
	}
	return exists, nil
}
