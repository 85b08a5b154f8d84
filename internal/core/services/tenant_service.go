package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/meridianfx/ledger-core/internal/apperrors"
	"github.com/meridianfx/ledger-core/internal/core/domain"
	portsrepo "github.com/meridianfx/ledger-core/internal/core/ports/repositories"
	portssvc "github.com/meridianfx/ledger-core/internal/core/ports/services"
	"github.com/meridianfx/ledger-core/internal/dto"
)

type tenantService struct {
	BaseService
	tenantRepo   portsrepo.TenantRepository
	currencyRepo portsrepo.CurrencyRepository
	accountSvc   portssvc.AccountService
}

// NewTenantService creates the tenant service. The account service is used
// to seed the default chart on tenant creation.
func NewTenantService(tenantRepo portsrepo.TenantRepository, currencyRepo portsrepo.CurrencyRepository, accountSvc portssvc.AccountService) portssvc.TenantService {
	return &tenantService{
		tenantRepo:   tenantRepo,
		currencyRepo: currencyRepo,
		accountSvc:   accountSvc,
	}
}

var _ portssvc.TenantService = (*tenantService)(nil)

func (s *tenantService) CreateTenant(ctx context.Context, caller domain.CallContext, req dto.CreateTenantRequest) (*domain.Tenant, error) {
	if !caller.Role.IsPlatform() {
		return nil, fmt.Errorf("tenant provisioning is platform-only: %w", apperrors.ErrForbidden)
	}

	if _, err := s.currencyRepo.FindCurrencyByCode(ctx, req.BaseCurrency); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("base currency %s: %w", req.BaseCurrency, apperrors.ErrUnknownCurrency)
		}
		return nil, fmt.Errorf("failed to check base currency: %w", err)
	}

	if req.ParentTenantID != nil {
		if _, err := s.tenantRepo.FindTenantByID(ctx, *req.ParentTenantID); err != nil {
			return nil, fmt.Errorf("parent tenant %s: %w", *req.ParentTenantID, err)
		}
	}

	now := time.Now()
	tenant := domain.Tenant{
		TenantID:       uuid.NewString(),
		Name:           req.Name,
		Slug:           req.Slug,
		Status:         domain.TenantTrial,
		Plan:           req.Plan,
		BaseCurrency:   req.BaseCurrency,
		ParentTenantID: req.ParentTenantID,
		Limits: domain.TenantLimits{
			MaxUsers:          req.MaxUsers,
			MaxDailyPostings:  req.MaxDailyPostings,
			AllowedCurrencies: req.AllowedCurrencies,
		},
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     caller.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: caller.UserID,
		},
	}

	if err := s.tenantRepo.SaveTenant(ctx, tenant); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("slug %s already taken: %w", req.Slug, apperrors.ErrDuplicate)
		}
		s.LogError(ctx, err, "failed to save tenant", slog.String("slug", req.Slug))
		return nil, fmt.Errorf("failed to save tenant: %w", err)
	}

	if err := s.accountSvc.SeedDefaultChart(ctx, caller, tenant.TenantID, tenant.BaseCurrency); err != nil {
		s.LogError(ctx, err, "failed to seed default chart", slog.String("tenant_id", tenant.TenantID))
		return nil, fmt.Errorf("failed to seed default chart: %w", err)
	}

	s.LogInfo(ctx, "tenant created", slog.String("tenant_id", tenant.TenantID), slog.String("slug", tenant.Slug))
	return &tenant, nil
}

func (s *tenantService) GetTenant(ctx context.Context, caller domain.CallContext, tenantID string) (*domain.Tenant, error) {
	if !caller.SameTenant(tenantID) {
		return nil, fmt.Errorf("tenant %s: %w", tenantID, apperrors.ErrForbidden)
	}
	tenant, err := s.tenantRepo.FindTenantByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return tenant, nil
}

func (s *tenantService) SetTenantStatus(ctx context.Context, caller domain.CallContext, tenantID string, status domain.TenantStatus) error {
	if !caller.Role.IsPlatform() {
		return fmt.Errorf("tenant lifecycle is platform-only: %w", apperrors.ErrForbidden)
	}
	switch status {
	case domain.TenantTrial, domain.TenantActive, domain.TenantSuspended, domain.TenantCancelled:
	default:
		return fmt.Errorf("unknown tenant status %q: %w", status, apperrors.ErrValidation)
	}
	if err := s.tenantRepo.UpdateTenantStatus(ctx, tenantID, status, caller.UserID); err != nil {
		return fmt.Errorf("failed to update tenant status: %w", err)
	}
	s.LogInfo(ctx, "tenant status updated", slog.String("tenant_id", tenantID), slog.String("status", string(status)))
	return nil
}

func (s *tenantService) UpdateBaseCurrency(ctx context.Context, caller domain.CallContext, tenantID string, baseCurrency string) error {
	if !caller.Role.IsPlatform() {
		return fmt.Errorf("base currency changes are platform-only: %w", apperrors.ErrForbidden)
	}
	if _, err := s.currencyRepo.FindCurrencyByCode(ctx, baseCurrency); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("currency %s: %w", baseCurrency, apperrors.ErrUnknownCurrency)
		}
		return fmt.Errorf("failed to check currency: %w", err)
	}

	has, err := s.tenantRepo.HasTransactions(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("failed to check tenant activity: %w", err)
	}
	if has {
		return fmt.Errorf("tenant %s already has postings: %w", tenantID, apperrors.ErrBaseCurrencyLocked)
	}

	if err := s.tenantRepo.UpdateBaseCurrency(ctx, tenantID, baseCurrency, caller.UserID); err != nil {
		return fmt.Errorf("failed to update base currency: %w", err)
	}
	return nil
}
