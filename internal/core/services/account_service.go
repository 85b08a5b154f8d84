package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meridianfx/ledger-core/internal/apperrors"
	"github.com/meridianfx/ledger-core/internal/core/domain"
	portsrepo "github.com/meridianfx/ledger-core/internal/core/ports/repositories"
	portssvc "github.com/meridianfx/ledger-core/internal/core/ports/services"
	"github.com/meridianfx/ledger-core/internal/dto"
)

type accountService struct {
	BaseService
	accountRepo  portsrepo.AccountRepository
	currencyRepo portsrepo.CurrencyRepository
}

// NewAccountService creates the chart-of-accounts service.
func NewAccountService(accountRepo portsrepo.AccountRepository, currencyRepo portsrepo.CurrencyRepository) portssvc.AccountService {
	return &accountService{accountRepo: accountRepo, currencyRepo: currencyRepo}
}

var _ portssvc.AccountService = (*accountService)(nil)

func (s *accountService) CreateAccount(ctx context.Context, caller domain.CallContext, req dto.CreateAccountRequest) (*domain.Account, error) {
	if err := caller.Require(domain.CapAccountWrite); err != nil {
		return nil, err
	}
	if !domain.ValidAccountType(req.AccountType) {
		return nil, fmt.Errorf("unknown account type %q: %w", req.AccountType, apperrors.ErrValidation)
	}
	if _, err := s.currencyRepo.FindCurrencyByCode(ctx, req.CurrencyCode); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("currency %s: %w", req.CurrencyCode, apperrors.ErrUnknownCurrency)
		}
		return nil, fmt.Errorf("failed to check currency: %w", err)
	}

	if existing, err := s.accountRepo.FindAccountByCode(ctx, caller.TenantID, req.Code, req.CurrencyCode); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check account code: %w", err)
	} else if existing != nil {
		return nil, fmt.Errorf("code %s already used for %s: %w", req.Code, req.CurrencyCode, apperrors.ErrDuplicateCode)
	}

	if req.ParentAccountID != nil {
		parent, err := s.accountRepo.FindAccountByID(ctx, caller.TenantID, *req.ParentAccountID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("parent account %s: %w", *req.ParentAccountID, apperrors.ErrUnknownAccount)
			}
			return nil, fmt.Errorf("failed to load parent account: %w", err)
		}
		if parent.AccountType != req.AccountType {
			return nil, fmt.Errorf("parent %s is %s, child is %s: %w",
				parent.AccountID, parent.AccountType, req.AccountType, apperrors.ErrParentMismatch)
		}
	}

	now := time.Now()
	account := domain.Account{
		AccountID:       uuid.NewString(),
		TenantID:        caller.TenantID,
		Code:            req.Code,
		Name:            req.Name,
		AccountType:     req.AccountType,
		Subtype:         req.Subtype,
		ParentAccountID: req.ParentAccountID,
		CurrencyCode:    req.CurrencyCode,
		Balance:         decimal.Zero,
		FrozenBalance:   decimal.Zero,
		IsActive:        true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     caller.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: caller.UserID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("code %s already used for %s: %w", req.Code, req.CurrencyCode, apperrors.ErrDuplicateCode)
		}
		s.LogError(ctx, err, "failed to save account", slog.String("code", req.Code))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}
	return &account, nil
}

func (s *accountService) GetAccount(ctx context.Context, caller domain.CallContext, accountID string) (*domain.Account, error) {
	if err := caller.Require(domain.CapAccountRead); err != nil {
		return nil, err
	}
	account, err := s.accountRepo.FindAccountByID(ctx, caller.TenantID, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

func (s *accountService) ListAccounts(ctx context.Context, caller domain.CallContext, params dto.ListAccountsParams) ([]domain.Account, error) {
	if err := caller.Require(domain.CapAccountRead); err != nil {
		return nil, err
	}
	filter := portsrepo.AccountListFilter{
		Type:         domain.AccountType(params.Type),
		CurrencyCode: params.CurrencyCode,
		ActiveOnly:   params.ActiveOnly,
		Limit:        params.Limit,
		Offset:       params.Offset,
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, caller.TenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if accounts == nil {
		accounts = []domain.Account{}
	}
	return accounts, nil
}

func (s *accountService) DeactivateAccount(ctx context.Context, caller domain.CallContext, accountID string) error {
	if err := caller.Require(domain.CapAccountWrite); err != nil {
		return err
	}
	account, err := s.accountRepo.FindAccountByID(ctx, caller.TenantID, accountID)
	if err != nil {
		return fmt.Errorf("failed to load account: %w", err)
	}
	if !account.Balance.IsZero() {
		return fmt.Errorf("account %s balance is %s: %w", accountID, account.Balance, apperrors.ErrValidation)
	}
	pending, err := s.accountRepo.HasPendingEntries(ctx, caller.TenantID, accountID)
	if err != nil {
		return fmt.Errorf("failed to check pending entries: %w", err)
	}
	if pending {
		return fmt.Errorf("account %s has pending entries: %w", accountID, apperrors.ErrValidation)
	}
	if err := s.accountRepo.DeactivateAccount(ctx, caller.TenantID, accountID, caller.UserID, time.Now()); err != nil {
		return fmt.Errorf("failed to deactivate account: %w", err)
	}
	s.LogInfo(ctx, "account deactivated", slog.String("account_id", accountID))
	return nil
}

// SeedDefaultChart creates the standard chart for a tenant in its base
// currency. Codes already present are skipped so reseeding is safe.
func (s *accountService) SeedDefaultChart(ctx context.Context, caller domain.CallContext, tenantID string, baseCurrency string) error {
	if !caller.SameTenant(tenantID) {
		return fmt.Errorf("tenant %s: %w", tenantID, apperrors.ErrForbidden)
	}
	now := time.Now()
	accounts := make([]domain.Account, 0, len(domain.DefaultChart()))
	for _, entry := range domain.DefaultChart() {
		existing, err := s.accountRepo.FindAccountByCode(ctx, tenantID, entry.Code, baseCurrency)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("failed to check code %s: %w", entry.Code, err)
		}
		if existing != nil {
			continue
		}
		accounts = append(accounts, domain.Account{
			AccountID:     uuid.NewString(),
			TenantID:      tenantID,
			Code:          entry.Code,
			Name:          entry.Name,
			AccountType:   entry.Type,
			Subtype:       entry.Subtype,
			CurrencyCode:  baseCurrency,
			Balance:       decimal.Zero,
			FrozenBalance: decimal.Zero,
			AllowNegative: entry.AllowNegative,
			IsActive:      true,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     caller.UserID,
				LastUpdatedAt: now,
				LastUpdatedBy: caller.UserID,
			},
		})
	}
	if len(accounts) == 0 {
		return nil
	}
	if err := s.accountRepo.SaveAccounts(ctx, accounts); err != nil {
		return fmt.Errorf("failed to seed chart: %w", err)
	}
	s.LogInfo(ctx, "default chart seeded", slog.String("tenant_id", tenantID), slog.Int("accounts", len(accounts)))
	return nil
}
