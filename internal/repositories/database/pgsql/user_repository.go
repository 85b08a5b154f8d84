package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridianfx/ledger-core/internal/apperrors"
	"github.com/meridianfx/ledger-core/internal/core/domain"
	portsrepo "github.com/meridianfx/ledger-core/internal/core/ports/repositories"
)

type PgxUserRepository struct {
	BaseRepository
}

// newPgxUserRepository creates a new repository for user data.
func newPgxUserRepository(pool *pgxpool.Pool) portsrepo.UserRepository {
	return &PgxUserRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.UserRepository = (*PgxUserRepository)(nil)

const userColumns = `
	user_id, tenant_id, branch_id, name, email, password_hash, role, vip_tier,
	created_at, created_by, last_updated_at, last_updated_by, deleted_at`

func (r *PgxUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.Pool.Exec(ctx, query,
		user.UserID,
		user.TenantID,
		user.BranchID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.VIPTier,
		user.CreatedAt,
		user.CreatedBy,
		user.LastUpdatedAt,
		user.LastUpdatedBy,
		user.DeletedAt,
	)
	if err != nil {
		return mapPgError(err, "failed to save user "+user.UserID)
	}
	return nil
}

func (r *PgxUserRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.UserID,
		&u.TenantID,
		&u.BranchID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.VIPTier,
		&u.CreatedAt,
		&u.CreatedBy,
		&u.LastUpdatedAt,
		&u.LastUpdatedBy,
		&u.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1 AND deleted_at IS NULL;`
	return r.scanUser(r.Pool.QueryRow(ctx, query, userID))
}

func (r *PgxUserRepository) FindUserByEmail(ctx context.Context, tenantID *string, email string) (*domain.User, error) {
	if tenantID == nil {
		query := `SELECT ` + userColumns + ` FROM users WHERE tenant_id IS NULL AND email = $1 AND deleted_at IS NULL;`
		return r.scanUser(r.Pool.QueryRow(ctx, query, email))
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE tenant_id = $1 AND email = $2 AND deleted_at IS NULL;`
	return r.scanUser(r.Pool.QueryRow(ctx, query, *tenantID, email))
}

func (r *PgxUserRepository) CountUsersByTenant(ctx context.Context, tenantID string) (int, error) {
	query := `SELECT COUNT(*) FROM users WHERE tenant_id = $1 AND deleted_at IS NULL;`
	var count int
	if err := r.Pool.QueryRow(ctx, query, tenantID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users for tenant %s: %w", tenantID, err)
	}
	return count, nil
}
