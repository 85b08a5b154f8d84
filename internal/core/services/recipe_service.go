package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meridianfx/ledger-core/internal/apperrors"
	"github.com/meridianfx/ledger-core/internal/core/domain"
	portsrepo "github.com/meridianfx/ledger-core/internal/core/ports/repositories"
	portssvc "github.com/meridianfx/ledger-core/internal/core/ports/services"
	"github.com/meridianfx/ledger-core/internal/dto"
)

type recipeService struct {
	BaseService
	postingSvc     portssvc.PostingService
	rateSvc        portssvc.RateService
	accountRepo    portsrepo.AccountRepository
	remittanceRepo portsrepo.RemittanceRepository
}

// NewRecipeService creates the transaction recipe service. Recipes expand
// named business operations into balanced drafts and hand them to the journal
// engine; they never write ledger state themselves. Trade recipes clear their
// quoted rate through the rate gate before building the draft.
func NewRecipeService(postingSvc portssvc.PostingService, rateSvc portssvc.RateService, accountRepo portsrepo.AccountRepository, remittanceRepo portsrepo.RemittanceRepository) portssvc.RecipeService {
	return &recipeService{
		postingSvc:     postingSvc,
		rateSvc:        rateSvc,
		accountRepo:    accountRepo,
		remittanceRepo: remittanceRepo,
	}
}

var _ portssvc.RecipeService = (*recipeService)(nil)

// chartAccount resolves a well-known chart code in the given currency.
// Recipes fail before reaching the engine when the account is missing.
func (s *recipeService) chartAccount(ctx context.Context, tenantID, code, currencyCode string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, tenantID, code, currencyCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("chart account %s in %s: %w", code, currencyCode, apperrors.ErrMissingAccount)
		}
		return nil, fmt.Errorf("failed to resolve chart account %s: %w", code, err)
	}
	return account, nil
}

func requirePositive(amount decimal.Decimal, what string) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%s %s must be positive: %w", what, amount, apperrors.ErrInvalidAmount)
	}
	return nil
}

func debit(accountID, currency string, amount decimal.Decimal, memo string) dto.EntryDraft {
	return dto.EntryDraft{AccountID: accountID, Debit: amount, CurrencyCode: currency, RateToHeader: decimal.NewFromInt(1), Memo: memo}
}

func credit(accountID, currency string, amount decimal.Decimal, memo string) dto.EntryDraft {
	return dto.EntryDraft{AccountID: accountID, Credit: amount, CurrencyCode: currency, RateToHeader: decimal.NewFromInt(1), Memo: memo}
}

// cashMovement posts a two-entry movement between a chart cash/bank account
// and a counterparty account.
func (s *recipeService) cashMovement(ctx context.Context, caller domain.CallContext, req dto.CashMovementRequest, kind domain.TransactionKind, debitCode, creditCode string, description string) (*domain.Transaction, error) {
	if err := requirePositive(req.Amount, "amount"); err != nil {
		return nil, err
	}

	debitID := req.CustomerAccountID
	if debitCode != "" {
		account, err := s.chartAccount(ctx, caller.TenantID, debitCode, req.CurrencyCode)
		if err != nil {
			return nil, err
		}
		debitID = account.AccountID
	}
	creditID := req.CustomerAccountID
	if creditCode != "" {
		account, err := s.chartAccount(ctx, caller.TenantID, creditCode, req.CurrencyCode)
		if err != nil {
			return nil, err
		}
		creditID = account.AccountID
	}
	if debitID == "" || creditID == "" {
		return nil, fmt.Errorf("counterparty account is required: %w", apperrors.ErrMissingAccount)
	}

	if req.Description != "" {
		description = req.Description
	}
	draft := dto.TransactionDraft{
		Kind:          kind,
		EffectiveDate: req.EffectiveDate,
		Description:   description,
		Reference:     req.Reference,
		CurrencyCode:  req.CurrencyCode,
		Entries: []dto.EntryDraft{
			debit(debitID, req.CurrencyCode, req.Amount, ""),
			credit(creditID, req.CurrencyCode, req.Amount, ""),
		},
	}
	return s.postingSvc.Post(ctx, caller, draft, req.IdempotencyKey)
}

func (s *recipeService) CashReceipt(ctx context.Context, caller domain.CallContext, req dto.CashMovementRequest) (*domain.Transaction, error) {
	creditCode := ""
	if req.CustomerAccountID == "" {
		creditCode = domain.ChartReceivable
	}
	return s.cashMovement(ctx, caller, req, domain.KindCashReceipt, domain.ChartCash, creditCode, "Cash receipt")
}

func (s *recipeService) CashPayment(ctx context.Context, caller domain.CallContext, req dto.CashMovementRequest) (*domain.Transaction, error) {
	debitCode := ""
	if req.CustomerAccountID == "" {
		debitCode = domain.ChartPayable
	}
	return s.cashMovement(ctx, caller, req, domain.KindCashPayment, debitCode, domain.ChartCash, "Cash payment")
}

func (s *recipeService) BankDeposit(ctx context.Context, caller domain.CallContext, req dto.CashMovementRequest) (*domain.Transaction, error) {
	req.CustomerAccountID = ""
	return s.cashMovement(ctx, caller, req, domain.KindBankDeposit, domain.ChartBank, domain.ChartCash, "Bank deposit")
}

func (s *recipeService) BankWithdrawal(ctx context.Context, caller domain.CallContext, req dto.CashMovementRequest) (*domain.Transaction, error) {
	req.CustomerAccountID = ""
	return s.cashMovement(ctx, caller, req, domain.KindBankWithdrawal, domain.ChartCash, domain.ChartBank, "Bank withdrawal")
}

// tradeFee validates the optional fee on a currency trade.
func tradeFee(req dto.CurrencyTradeRequest) (decimal.Decimal, error) {
	if req.Fee == nil {
		return decimal.Zero, nil
	}
	if req.Fee.IsNegative() {
		return decimal.Zero, fmt.Errorf("fee %s is negative: %w", *req.Fee, apperrors.ErrInvalidAmount)
	}
	return *req.Fee, nil
}

// tradeRateAt is the instant the quoted rate is checked against the gate.
func tradeRateAt(req dto.CurrencyTradeRequest) time.Time {
	if req.EffectiveDate.IsZero() {
		return time.Now()
	}
	return req.EffectiveDate
}

// CurrencyBuy books the customer paying in the source currency for a balance
// in the target currency: cash grows by the full source amount, the customer's
// balance grows by source × rate, and the fee stays behind as commission
// revenue. The header is the source currency, so the customer leg is valued at
// source − fee.
func (s *recipeService) CurrencyBuy(ctx context.Context, caller domain.CallContext, req dto.CurrencyTradeRequest) (*domain.Transaction, error) {
	if err := requirePositive(req.SourceAmount, "source amount"); err != nil {
		return nil, err
	}
	if err := requirePositive(req.Rate, "rate"); err != nil {
		return nil, err
	}
	fee, err := tradeFee(req)
	if err != nil {
		return nil, err
	}
	net := req.SourceAmount.Sub(fee)
	if !net.IsPositive() {
		return nil, fmt.Errorf("fee %s consumes the trade: %w", fee, apperrors.ErrInvalidAmount)
	}
	if req.CustomerAccountID == "" {
		return nil, fmt.Errorf("customer account is required: %w", apperrors.ErrMissingAccount)
	}
	if err := s.rateSvc.ValidatePostingRate(ctx, caller, req.FromCurrency, req.ToCurrency, req.Rate, tradeRateAt(req)); err != nil {
		return nil, err
	}

	cash, err := s.chartAccount(ctx, caller.TenantID, domain.ChartCash, req.FromCurrency)
	if err != nil {
		return nil, err
	}

	converted := req.SourceAmount.Mul(req.Rate)
	customerRate := net.Div(converted)

	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Buy %s %s at %s", converted, req.ToCurrency, req.Rate)
	}

	entries := []dto.EntryDraft{
		debit(cash.AccountID, req.FromCurrency, req.SourceAmount, ""),
		{AccountID: req.CustomerAccountID, Credit: converted, CurrencyCode: req.ToCurrency, RateToHeader: customerRate},
	}
	if fee.IsPositive() {
		revenue, err := s.chartAccount(ctx, caller.TenantID, domain.ChartCommissionRevenue, req.FromCurrency)
		if err != nil {
			return nil, err
		}
		entries = append(entries, credit(revenue.AccountID, req.FromCurrency, fee, "trade fee"))
	}

	draft := dto.TransactionDraft{
		Kind:          domain.KindCurrencyExchange,
		EffectiveDate: req.EffectiveDate,
		Description:   description,
		CurrencyCode:  req.FromCurrency,
		Entries:       entries,
	}
	return s.postingSvc.Post(ctx, caller, draft, req.IdempotencyKey)
}

// CurrencySell mirrors CurrencyBuy: the customer's balance is drawn down in
// the target currency and cash pays out the source amount; the fee stays as
// commission revenue. The customer leg is valued at source + fee.
func (s *recipeService) CurrencySell(ctx context.Context, caller domain.CallContext, req dto.CurrencyTradeRequest) (*domain.Transaction, error) {
	if err := requirePositive(req.SourceAmount, "source amount"); err != nil {
		return nil, err
	}
	if err := requirePositive(req.Rate, "rate"); err != nil {
		return nil, err
	}
	fee, err := tradeFee(req)
	if err != nil {
		return nil, err
	}
	if req.CustomerAccountID == "" {
		return nil, fmt.Errorf("customer account is required: %w", apperrors.ErrMissingAccount)
	}
	if err := s.rateSvc.ValidatePostingRate(ctx, caller, req.FromCurrency, req.ToCurrency, req.Rate, tradeRateAt(req)); err != nil {
		return nil, err
	}

	cash, err := s.chartAccount(ctx, caller.TenantID, domain.ChartCash, req.FromCurrency)
	if err != nil {
		return nil, err
	}

	converted := req.SourceAmount.Mul(req.Rate)
	customerRate := req.SourceAmount.Add(fee).Div(converted)

	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Sell %s %s at %s", converted, req.ToCurrency, req.Rate)
	}

	entries := []dto.EntryDraft{
		{AccountID: req.CustomerAccountID, Debit: converted, CurrencyCode: req.ToCurrency, RateToHeader: customerRate},
		credit(cash.AccountID, req.FromCurrency, req.SourceAmount, ""),
	}
	if fee.IsPositive() {
		revenue, err := s.chartAccount(ctx, caller.TenantID, domain.ChartCommissionRevenue, req.FromCurrency)
		if err != nil {
			return nil, err
		}
		entries = append(entries, credit(revenue.AccountID, req.FromCurrency, fee, "trade fee"))
	}

	draft := dto.TransactionDraft{
		Kind:          domain.KindCurrencyExchange,
		EffectiveDate: req.EffectiveDate,
		Description:   description,
		CurrencyCode:  req.FromCurrency,
		Entries:       entries,
	}
	return s.postingSvc.Post(ctx, caller, draft, req.IdempotencyKey)
}

func (s *recipeService) Transfer(ctx context.Context, caller domain.CallContext, req dto.TransferRequest) (*domain.Transaction, error) {
	if err := requirePositive(req.Amount, "amount"); err != nil {
		return nil, err
	}
	if req.FromAccountID == req.ToAccountID {
		return nil, fmt.Errorf("transfer needs two distinct accounts: %w", apperrors.ErrValidation)
	}
	description := req.Description
	if description == "" {
		description = "Internal transfer"
	}
	draft := dto.TransactionDraft{
		Kind:          domain.KindTransfer,
		EffectiveDate: req.EffectiveDate,
		Description:   description,
		CurrencyCode:  req.CurrencyCode,
		Entries: []dto.EntryDraft{
			debit(req.ToAccountID, req.CurrencyCode, req.Amount, ""),
			credit(req.FromAccountID, req.CurrencyCode, req.Amount, ""),
		},
	}
	return s.postingSvc.Post(ctx, caller, draft, req.IdempotencyKey)
}

// RemittanceSend takes the sender's cash, moves the principal into the
// remittance-in-transit account until the partner delivers, books the fee,
// and opens a remittance intent carrying the tracking code. RemittanceReceive
// drains the same transit account, so a send/receive cycle nets it to zero.
func (s *recipeService) RemittanceSend(ctx context.Context, caller domain.CallContext, req dto.RemittanceSendRequest) (*domain.Transaction, *domain.RemittanceIntent, error) {
	if err := requirePositive(req.Amount, "amount"); err != nil {
		return nil, nil, err
	}
	if req.Fee.IsNegative() {
		return nil, nil, fmt.Errorf("fee %s is negative: %w", req.Fee, apperrors.ErrInvalidAmount)
	}

	cash, err := s.chartAccount(ctx, caller.TenantID, domain.ChartCash, req.CurrencyCode)
	if err != nil {
		return nil, nil, err
	}
	transit, err := s.chartAccount(ctx, caller.TenantID, domain.ChartRemittanceTransit, req.CurrencyCode)
	if err != nil {
		return nil, nil, err
	}

	entries := []dto.EntryDraft{
		debit(cash.AccountID, req.CurrencyCode, req.Amount.Add(req.Fee), ""),
		credit(transit.AccountID, req.CurrencyCode, req.Amount, "funds in transit"),
	}
	if req.Fee.IsPositive() {
		revenue, err := s.chartAccount(ctx, caller.TenantID, domain.ChartRemittanceRevenue, req.CurrencyCode)
		if err != nil {
			return nil, nil, err
		}
		entries = append(entries, credit(revenue.AccountID, req.CurrencyCode, req.Fee, "remittance fee"))
	}

	draft := dto.TransactionDraft{
		Kind:          domain.KindRemittanceSend,
		EffectiveDate: req.EffectiveDate,
		Description:   fmt.Sprintf("Remittance to %s", req.BeneficiaryName),
		CurrencyCode:  req.CurrencyCode,
		Entries:       entries,
	}
	txn, err := s.postingSvc.Post(ctx, caller, draft, req.IdempotencyKey)
	if err != nil {
		return nil, nil, err
	}

	// Replays of an idempotent posting reuse the intent already opened.
	if existing, err := s.remittanceRepo.FindIntentByTransactionID(ctx, caller.TenantID, txn.TransactionID); err == nil {
		return txn, existing, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil, fmt.Errorf("failed to check remittance intent: %w", err)
	}

	now := time.Now()
	intent := domain.RemittanceIntent{
		IntentID:         uuid.NewString(),
		TenantID:         caller.TenantID,
		TransactionID:    txn.TransactionID,
		SenderName:       req.SenderName,
		SenderPhone:      req.SenderPhone,
		BeneficiaryName:  req.BeneficiaryName,
		BeneficiaryPhone: req.BeneficiaryPhone,
		DeliveryMethod:   req.DeliveryMethod,
		TrackingCode:     newTrackingCode(),
		Status:           domain.RemittanceInitiated,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     caller.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: caller.UserID,
		},
	}
	if err := s.remittanceRepo.SaveIntent(ctx, intent); err != nil {
		s.LogError(ctx, err, "failed to save remittance intent",
			slog.String("transaction_id", txn.TransactionID))
		return nil, nil, fmt.Errorf("failed to save remittance intent: %w", err)
	}
	return txn, &intent, nil
}

// RemittanceReceive pays out an incoming remittance: the partner settlement
// claim grows in transit, cash leaves net of fee.
func (s *recipeService) RemittanceReceive(ctx context.Context, caller domain.CallContext, req dto.RemittanceReceiveRequest) (*domain.Transaction, error) {
	if err := requirePositive(req.Amount, "amount"); err != nil {
		return nil, err
	}
	if req.Fee.IsNegative() {
		return nil, fmt.Errorf("fee %s is negative: %w", req.Fee, apperrors.ErrInvalidAmount)
	}
	payout := req.Amount.Sub(req.Fee)
	if !payout.IsPositive() {
		return nil, fmt.Errorf("fee %s consumes the payout: %w", req.Fee, apperrors.ErrInvalidAmount)
	}

	transit, err := s.chartAccount(ctx, caller.TenantID, domain.ChartRemittanceTransit, req.CurrencyCode)
	if err != nil {
		return nil, err
	}

	payoutID := req.BeneficiaryAccountID
	if payoutID == "" {
		cash, err := s.chartAccount(ctx, caller.TenantID, domain.ChartCash, req.CurrencyCode)
		if err != nil {
			return nil, err
		}
		payoutID = cash.AccountID
	}

	entries := []dto.EntryDraft{
		debit(transit.AccountID, req.CurrencyCode, req.Amount, "partner settlement claim"),
		credit(payoutID, req.CurrencyCode, payout, ""),
	}
	if req.Fee.IsPositive() {
		revenue, err := s.chartAccount(ctx, caller.TenantID, domain.ChartRemittanceRevenue, req.CurrencyCode)
		if err != nil {
			return nil, err
		}
		entries = append(entries, credit(revenue.AccountID, req.CurrencyCode, req.Fee, "payout fee"))
	}

	description := "Remittance payout"
	if req.TrackingCode != "" {
		description = fmt.Sprintf("Remittance payout %s", req.TrackingCode)
	}
	draft := dto.TransactionDraft{
		Kind:          domain.KindRemittanceReceive,
		EffectiveDate: req.EffectiveDate,
		Description:   description,
		CurrencyCode:  req.CurrencyCode,
		Entries:       entries,
	}
	return s.postingSvc.Post(ctx, caller, draft, req.IdempotencyKey)
}

func (s *recipeService) ChargeFee(ctx context.Context, caller domain.CallContext, req dto.FeeRequest) (*domain.Transaction, error) {
	if err := requirePositive(req.Amount, "amount"); err != nil {
		return nil, err
	}
	revenue, err := s.chartAccount(ctx, caller.TenantID, domain.ChartCommissionRevenue, req.CurrencyCode)
	if err != nil {
		return nil, err
	}
	description := req.Description
	if description == "" {
		description = "Service fee"
	}
	draft := dto.TransactionDraft{
		Kind:          domain.KindFee,
		EffectiveDate: req.EffectiveDate,
		Description:   description,
		CurrencyCode:  req.CurrencyCode,
		Entries: []dto.EntryDraft{
			debit(req.CustomerAccountID, req.CurrencyCode, req.Amount, ""),
			credit(revenue.AccountID, req.CurrencyCode, req.Amount, ""),
		},
	}
	return s.postingSvc.Post(ctx, caller, draft, req.IdempotencyKey)
}

func (s *recipeService) Refund(ctx context.Context, caller domain.CallContext, req dto.RefundRequest) (*domain.Transaction, error) {
	return s.postingSvc.Reverse(ctx, caller, req.OriginalTransactionID, req.Description, req.IdempotencyKey)
}

func (s *recipeService) UpdateRemittanceStatus(ctx context.Context, caller domain.CallContext, intentID string, status domain.RemittanceStatus, partnerRef *string) error {
	if err := caller.Require(domain.CapTransactionCreate); err != nil {
		return err
	}
	switch status {
	case domain.RemittanceInitiated, domain.RemittanceInTransit, domain.RemittanceDelivered, domain.RemittanceFailed:
	default:
		return fmt.Errorf("unknown remittance status %q: %w", status, apperrors.ErrValidation)
	}
	if err := s.remittanceRepo.UpdateIntentStatus(ctx, caller.TenantID, intentID, status, partnerRef, caller.UserID, time.Now()); err != nil {
		return fmt.Errorf("failed to update remittance intent: %w", err)
	}
	return nil
}

// newTrackingCode mints a short human-readable remittance code.
func newTrackingCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "RMT-" + raw[:10]
}
