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
	"github.com/meridianfx/ledger-core/internal/utils/accounting"
)

var validKinds = map[domain.TransactionKind]bool{
	domain.KindCashReceipt:       true,
	domain.KindCashPayment:       true,
	domain.KindBankDeposit:       true,
	domain.KindBankWithdrawal:    true,
	domain.KindCurrencyExchange:  true,
	domain.KindRemittanceSend:    true,
	domain.KindRemittanceReceive: true,
	domain.KindTransfer:          true,
	domain.KindCommission:        true,
	domain.KindFee:               true,
	domain.KindRefund:            true,
	domain.KindAdjustment:        true,
}

type postingService struct {
	BaseService
	txnRepo      portsrepo.TransactionRepository
	accountRepo  portsrepo.AccountRepository
	tenantRepo   portsrepo.TenantRepository
	currencyRepo portsrepo.CurrencyRepository
	rateSvc      portssvc.RateService
	maxAttempts  int
	retryBackoff time.Duration
}

// NewPostingService creates the journal engine. maxAttempts and retryBackoff
// control retries of the serialisable write set when the database reports a
// serialization failure.
func NewPostingService(
	txnRepo portsrepo.TransactionRepository,
	accountRepo portsrepo.AccountRepository,
	tenantRepo portsrepo.TenantRepository,
	currencyRepo portsrepo.CurrencyRepository,
	rateSvc portssvc.RateService,
	maxAttempts int,
	retryBackoff time.Duration,
) portssvc.PostingService {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &postingService{
		txnRepo:      txnRepo,
		accountRepo:  accountRepo,
		tenantRepo:   tenantRepo,
		currencyRepo: currencyRepo,
		rateSvc:      rateSvc,
		maxAttempts:  maxAttempts,
		retryBackoff: retryBackoff,
	}
}

var _ portssvc.PostingService = (*postingService)(nil)

// withRetry reruns fn while it fails with a retryable storage error, backing
// off exponentially between attempts.
func (s *postingService) withRetry(ctx context.Context, op string, fn func() error) error {
	backoff := s.retryBackoff
	var err error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		err = fn()
		if err == nil || !apperrors.IsRetryable(err) {
			return err
		}
		if attempt == s.maxAttempts {
			break
		}
		s.LogDebug(ctx, "retrying after serialization failure",
			slog.String("op", op), slog.Int("attempt", attempt))
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s aborted: %w", op, ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return fmt.Errorf("%s exhausted %d attempts: %w", op, s.maxAttempts, err)
}

func (s *postingService) Post(ctx context.Context, caller domain.CallContext, draft dto.TransactionDraft, idempotencyKey *string) (*domain.Transaction, error) {
	if err := caller.Require(domain.CapTransactionCreate); err != nil {
		return nil, err
	}

	if idempotencyKey != nil && *idempotencyKey != "" {
		prior, err := s.txnRepo.FindByIdempotencyKey(ctx, caller.TenantID, *idempotencyKey)
		if err == nil {
			s.LogInfo(ctx, "idempotent replay", slog.String("key", *idempotencyKey),
				slog.String("transaction_id", prior.TransactionID))
			return prior, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to check idempotency key: %w", err)
		}
	}

	tenant, err := s.tenantRepo.FindTenantByID(ctx, caller.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant: %w", err)
	}
	if !tenant.CanTransact() {
		return nil, fmt.Errorf("tenant %s is %s: %w", tenant.TenantID, tenant.Status, apperrors.ErrForbidden)
	}
	if tenant.Limits.MaxDailyPostings > 0 {
		dayStart := time.Now().Truncate(24 * time.Hour)
		count, err := s.txnRepo.CountTransactionsSince(ctx, tenant.TenantID, dayStart)
		if err != nil {
			return nil, fmt.Errorf("failed to count daily postings: %w", err)
		}
		if count >= tenant.Limits.MaxDailyPostings {
			return nil, fmt.Errorf("daily posting limit %d reached: %w",
				tenant.Limits.MaxDailyPostings, apperrors.ErrForbidden)
		}
	}

	txn, balanceChanges, err := s.buildTransaction(ctx, caller, *tenant, draft, idempotencyKey)
	if err != nil {
		return nil, err
	}

	if draft.Staged {
		var stored *domain.Transaction
		err := s.withRetry(ctx, "stage transaction", func() error {
			var err error
			stored, err = s.txnRepo.SaveStaged(ctx, *txn)
			return err
		})
		if err != nil {
			return nil, err
		}
		s.LogInfo(ctx, "transaction staged",
			slog.String("transaction_id", stored.TransactionID),
			slog.String("number", stored.TransactionNumber))
		return stored, nil
	}

	var stored *domain.Transaction
	err = s.withRetry(ctx, "apply posting", func() error {
		var err error
		stored, err = s.txnRepo.ApplyPosting(ctx, *txn, balanceChanges)
		return err
	})
	if err != nil {
		// A concurrent request may have won the idempotency race.
		if idempotencyKey != nil && errors.Is(err, apperrors.ErrDuplicate) {
			if prior, lookupErr := s.txnRepo.FindByIdempotencyKey(ctx, caller.TenantID, *idempotencyKey); lookupErr == nil {
				return prior, nil
			}
		}
		return nil, err
	}

	s.LogInfo(ctx, "transaction posted",
		slog.String("transaction_id", stored.TransactionID),
		slog.String("number", stored.TransactionNumber),
		slog.String("kind", string(stored.Kind)),
		slog.String("amount", stored.Amount.String()),
		slog.String("currency", stored.CurrencyCode))
	return stored, nil
}

// buildTransaction validates the draft against the chart, the rate gate, and
// the balance invariant, and assembles the domain transaction with its signed
// balance deltas.
func (s *postingService) buildTransaction(ctx context.Context, caller domain.CallContext, tenant domain.Tenant, draft dto.TransactionDraft, idempotencyKey *string) (*domain.Transaction, map[string]decimal.Decimal, error) {
	if !validKinds[draft.Kind] {
		return nil, nil, fmt.Errorf("unknown transaction kind %q: %w", draft.Kind, apperrors.ErrValidation)
	}
	if draft.Description == "" {
		return nil, nil, fmt.Errorf("description is required: %w", apperrors.ErrValidation)
	}
	if len(draft.Entries) < 2 {
		return nil, nil, fmt.Errorf("a transaction needs at least two entries: %w", apperrors.ErrValidation)
	}
	if !tenant.CurrencyAllowed(draft.CurrencyCode) {
		return nil, nil, fmt.Errorf("currency %s not enabled for tenant: %w", draft.CurrencyCode, apperrors.ErrForbidden)
	}

	headerCurrency, err := s.currencyRepo.FindCurrencyByCode(ctx, draft.CurrencyCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, fmt.Errorf("currency %s: %w", draft.CurrencyCode, apperrors.ErrUnknownCurrency)
		}
		return nil, nil, fmt.Errorf("failed to load header currency: %w", err)
	}

	accountIDs := make([]string, 0, len(draft.Entries))
	seen := make(map[string]bool, len(draft.Entries))
	for _, e := range draft.Entries {
		if !seen[e.AccountID] {
			seen[e.AccountID] = true
			accountIDs = append(accountIDs, e.AccountID)
		}
	}
	if len(accountIDs) < 2 {
		return nil, nil, fmt.Errorf("a transaction must touch at least two accounts: %w", apperrors.ErrValidation)
	}

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, tenant.TenantID, accountIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	effectiveDate := draft.EffectiveDate
	if effectiveDate.IsZero() {
		effectiveDate = time.Now()
	}

	now := time.Now()
	transactionID := uuid.NewString()
	accountTypes := make(map[string]domain.AccountType, len(accounts))
	entries := make([]domain.Entry, 0, len(draft.Entries))

	for i, de := range draft.Entries {
		account, ok := accounts[de.AccountID]
		if !ok {
			return nil, nil, fmt.Errorf("account %s: %w", de.AccountID, apperrors.ErrUnknownAccount)
		}
		if !account.IsActive {
			return nil, nil, fmt.Errorf("account %s: %w", de.AccountID, apperrors.ErrAccountInactive)
		}
		if account.CurrencyCode != de.CurrencyCode {
			return nil, nil, fmt.Errorf("entry %d currency %s does not match account currency %s: %w",
				i, de.CurrencyCode, account.CurrencyCode, apperrors.ErrValidation)
		}
		accountTypes[account.AccountID] = account.AccountType

		rate := de.RateToHeader
		if de.CurrencyCode == draft.CurrencyCode {
			if rate.IsZero() {
				rate = decimal.NewFromInt(1)
			}
			if !rate.Equal(decimal.NewFromInt(1)) {
				return nil, nil, fmt.Errorf("entry %d in header currency must carry rate 1: %w", i, apperrors.ErrValidation)
			}
		} else {
			if err := s.rateSvc.ValidatePostingRate(ctx, caller, de.CurrencyCode, draft.CurrencyCode, rate, effectiveDate); err != nil {
				return nil, nil, fmt.Errorf("entry %d: %w", i, err)
			}
		}

		entries = append(entries, domain.Entry{
			EntryID:       uuid.NewString(),
			TransactionID: transactionID,
			AccountID:     de.AccountID,
			Debit:         de.Debit,
			Credit:        de.Credit,
			CurrencyCode:  de.CurrencyCode,
			RateToHeader:  rate,
			LineOrder:     i,
			Memo:          de.Memo,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     caller.UserID,
				LastUpdatedAt: now,
				LastUpdatedBy: caller.UserID,
			},
		})
	}

	if err := accounting.ValidateBalanced(entries, *headerCurrency); err != nil {
		return nil, nil, err
	}

	balanceChanges, err := accounting.NetChanges(entries, accountTypes)
	if err != nil {
		return nil, nil, err
	}

	amount := decimal.Zero
	for _, e := range entries {
		amount = amount.Add(e.HeaderDebit())
	}

	txn := &domain.Transaction{
		TransactionID:  transactionID,
		TenantID:       tenant.TenantID,
		Kind:           draft.Kind,
		EffectiveDate:  effectiveDate,
		Description:    draft.Description,
		Reference:      draft.Reference,
		Amount:         headerCurrency.Round(amount),
		CurrencyCode:   draft.CurrencyCode,
		Status:         domain.StatusCompleted,
		ReversesID:     draft.ReversesID,
		IdempotencyKey: idempotencyKey,
		Metadata:       draft.Metadata,
		Entries:        entries,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     caller.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: caller.UserID,
		},
	}
	if draft.Staged {
		txn.Status = domain.StatusPending
	}
	return txn, balanceChanges, nil
}

func (s *postingService) Approve(ctx context.Context, caller domain.CallContext, transactionID string) (*domain.Transaction, error) {
	if err := caller.Require(domain.CapTransactionApprove); err != nil {
		return nil, err
	}

	txn, err := s.txnRepo.FindTransactionByID(ctx, caller.TenantID, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}
	if txn.Status != domain.StatusPending {
		return nil, fmt.Errorf("transaction %s is %s: %w", transactionID, txn.Status, apperrors.ErrNotPending)
	}
	if txn.CreatedBy == caller.UserID && !caller.Role.IsPlatform() && caller.Role != domain.RoleTenantAdmin {
		return nil, fmt.Errorf("creator cannot approve their own transaction: %w", apperrors.ErrForbidden)
	}

	entries, err := s.txnRepo.FindEntriesByTransactionID(ctx, caller.TenantID, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}
	accountIDs := make([]string, 0, len(entries))
	for _, e := range entries {
		accountIDs = append(accountIDs, e.AccountID)
	}
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, caller.TenantID, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	accountTypes := make(map[string]domain.AccountType, len(accounts))
	for id, a := range accounts {
		if !a.IsActive {
			return nil, fmt.Errorf("account %s: %w", id, apperrors.ErrAccountInactive)
		}
		accountTypes[id] = a.AccountType
	}
	balanceChanges, err := accounting.NetChanges(entries, accountTypes)
	if err != nil {
		return nil, err
	}

	var completed *domain.Transaction
	err = s.withRetry(ctx, "complete pending", func() error {
		var err error
		completed, err = s.txnRepo.CompletePending(ctx, caller.TenantID, transactionID, caller.UserID, balanceChanges, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "transaction approved",
		slog.String("transaction_id", transactionID), slog.String("approver", caller.UserID))
	return completed, nil
}

func (s *postingService) Cancel(ctx context.Context, caller domain.CallContext, transactionID string, reason string) error {
	if err := caller.Require(domain.CapTransactionCancel); err != nil {
		return err
	}
	err := s.withRetry(ctx, "cancel pending", func() error {
		return s.txnRepo.CancelPending(ctx, caller.TenantID, transactionID, reason, caller.UserID, time.Now())
	})
	if err != nil {
		return err
	}
	s.LogInfo(ctx, "transaction cancelled",
		slog.String("transaction_id", transactionID), slog.String("reason", reason))
	return nil
}

// Reverse posts the mirror image of a completed transaction: same accounts
// and amounts with debit and credit swapped, linked both ways.
func (s *postingService) Reverse(ctx context.Context, caller domain.CallContext, transactionID string, description string, idempotencyKey *string) (*domain.Transaction, error) {
	if err := caller.Require(domain.CapTransactionCreate); err != nil {
		return nil, err
	}

	original, err := s.txnRepo.FindTransactionByID(ctx, caller.TenantID, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load original transaction: %w", err)
	}
	if original.Status != domain.StatusCompleted {
		return nil, fmt.Errorf("only completed transactions can be reversed, %s is %s: %w",
			transactionID, original.Status, apperrors.ErrValidation)
	}
	if original.ReversedByID != nil {
		return nil, fmt.Errorf("transaction %s already reversed by %s: %w",
			transactionID, *original.ReversedByID, apperrors.ErrConflict)
	}

	entries, err := s.txnRepo.FindEntriesByTransactionID(ctx, caller.TenantID, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load original entries: %w", err)
	}

	if description == "" {
		description = fmt.Sprintf("Reversal of %s", original.TransactionNumber)
	}
	draft := dto.TransactionDraft{
		Kind:          domain.KindRefund,
		EffectiveDate: time.Now(),
		Description:   description,
		Reference:     original.Reference,
		CurrencyCode:  original.CurrencyCode,
		ReversesID:    &original.TransactionID,
	}
	for _, e := range entries {
		draft.Entries = append(draft.Entries, dto.EntryDraft{
			AccountID:    e.AccountID,
			Debit:        e.Credit, // swapped on purpose
			Credit:       e.Debit,
			CurrencyCode: e.CurrencyCode,
			RateToHeader: e.RateToHeader,
			Memo:         e.Memo,
		})
	}

	tenant, err := s.tenantRepo.FindTenantByID(ctx, caller.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant: %w", err)
	}
	if !tenant.CanTransact() {
		return nil, fmt.Errorf("tenant %s is %s: %w", tenant.TenantID, tenant.Status, apperrors.ErrForbidden)
	}

	// The reversal reuses the original entry rates verbatim so the mirrored
	// amounts cancel exactly, bypassing the rate gate re-check.
	txn, balanceChanges, err := s.buildReversal(ctx, caller, *tenant, draft, idempotencyKey)
	if err != nil {
		return nil, err
	}

	var stored *domain.Transaction
	err = s.withRetry(ctx, "apply reversal", func() error {
		var err error
		stored, err = s.txnRepo.ApplyPosting(ctx, *txn, balanceChanges)
		return err
	})
	if err != nil {
		if idempotencyKey != nil && errors.Is(err, apperrors.ErrDuplicate) {
			if prior, lookupErr := s.txnRepo.FindByIdempotencyKey(ctx, caller.TenantID, *idempotencyKey); lookupErr == nil {
				return prior, nil
			}
		}
		return nil, err
	}
	s.LogInfo(ctx, "transaction reversed",
		slog.String("original_id", transactionID),
		slog.String("reversal_id", stored.TransactionID))
	return stored, nil
}

// buildReversal assembles the mirrored transaction without consulting the
// rate gate: the original's rates are already proven by its own posting.
func (s *postingService) buildReversal(ctx context.Context, caller domain.CallContext, tenant domain.Tenant, draft dto.TransactionDraft, idempotencyKey *string) (*domain.Transaction, map[string]decimal.Decimal, error) {
	now := time.Now()
	transactionID := uuid.NewString()
	entries := make([]domain.Entry, 0, len(draft.Entries))
	amount := decimal.Zero
	for i, de := range draft.Entries {
		entries = append(entries, domain.Entry{
			EntryID:       uuid.NewString(),
			TransactionID: transactionID,
			AccountID:     de.AccountID,
			Debit:         de.Debit,
			Credit:        de.Credit,
			CurrencyCode:  de.CurrencyCode,
			RateToHeader:  de.RateToHeader,
			LineOrder:     i,
			Memo:          de.Memo,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     caller.UserID,
				LastUpdatedAt: now,
				LastUpdatedBy: caller.UserID,
			},
		})
		amount = amount.Add(de.Debit.Mul(de.RateToHeader))
	}

	accountTypes := make(map[string]domain.AccountType)
	accountIDs := make([]string, 0, len(entries))
	for _, e := range entries {
		accountIDs = append(accountIDs, e.AccountID)
	}
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, tenant.TenantID, accountIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	for id, a := range accounts {
		accountTypes[id] = a.AccountType
	}
	balanceChanges, err := accounting.NetChanges(entries, accountTypes)
	if err != nil {
		return nil, nil, err
	}

	return &domain.Transaction{
		TransactionID:  transactionID,
		TenantID:       tenant.TenantID,
		Kind:           draft.Kind,
		EffectiveDate:  draft.EffectiveDate,
		Description:    draft.Description,
		Reference:      draft.Reference,
		Amount:         amount,
		CurrencyCode:   draft.CurrencyCode,
		Status:         domain.StatusCompleted,
		ReversesID:     draft.ReversesID,
		IdempotencyKey: idempotencyKey,
		Entries:        entries,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     caller.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: caller.UserID,
		},
	}, balanceChanges, nil
}

func (s *postingService) GetTransaction(ctx context.Context, caller domain.CallContext, transactionID string) (*domain.Transaction, error) {
	if err := caller.Require(domain.CapAccountRead); err != nil {
		return nil, err
	}
	txn, err := s.txnRepo.FindTransactionByID(ctx, caller.TenantID, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	entries, err := s.txnRepo.FindEntriesByTransactionID(ctx, caller.TenantID, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get entries: %w", err)
	}
	txn.Entries = entries
	return txn, nil
}

func (s *postingService) ListTransactions(ctx context.Context, caller domain.CallContext, query dto.LedgerQuery) ([]domain.Transaction, *string, error) {
	if err := caller.Require(domain.CapAccountRead); err != nil {
		return nil, nil, err
	}
	limit := query.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	txns, next, err := s.txnRepo.ListTransactions(ctx, caller.TenantID, limit, query.NextToken)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txns, next, nil
}
