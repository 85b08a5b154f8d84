package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridianfx/ledger-core/internal/core/domain"
)

// CashMovementRequest covers cash_receipt, cash_payment, bank_deposit, and
// bank_withdrawal: a single amount moving between two chart accounts.
type CashMovementRequest struct {
	CustomerAccountID string          `json:"customerAccountID"`
	Amount            decimal.Decimal `json:"amount" binding:"required"`
	CurrencyCode      string          `json:"currencyCode" binding:"required,len=3"`
	EffectiveDate     time.Time       `json:"effectiveDate"`
	Description       string          `json:"description"`
	Reference         *string         `json:"reference"`
	IdempotencyKey    *string         `json:"idempotencyKey"`
}

// CurrencyTradeRequest covers currency_buy and currency_sell.
type CurrencyTradeRequest struct {
	CustomerAccountID string           `json:"customerAccountID" binding:"required"`
	FromCurrency      string           `json:"fromCurrency" binding:"required,len=3"`
	ToCurrency        string           `json:"toCurrency" binding:"required,len=3"`
	SourceAmount      decimal.Decimal  `json:"sourceAmount" binding:"required"`
	Rate              decimal.Decimal  `json:"rate" binding:"required"`
	Fee               *decimal.Decimal `json:"fee"`
	EffectiveDate     time.Time        `json:"effectiveDate"`
	Description       string           `json:"description"`
	IdempotencyKey    *string          `json:"idempotencyKey"`
}

// TransferRequest moves an amount between two same-currency accounts.
type TransferRequest struct {
	FromAccountID  string          `json:"fromAccountID" binding:"required"`
	ToAccountID    string          `json:"toAccountID" binding:"required"`
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	CurrencyCode   string          `json:"currencyCode" binding:"required,len=3"`
	EffectiveDate  time.Time       `json:"effectiveDate"`
	Description    string          `json:"description"`
	IdempotencyKey *string         `json:"idempotencyKey"`
}

// RemittanceSendRequest posts a remittance_send transaction and creates the
// companion remittance intent.
type RemittanceSendRequest struct {
	CustomerAccountID string                `json:"customerAccountID" binding:"required"`
	Amount            decimal.Decimal       `json:"amount" binding:"required"`
	CurrencyCode      string                `json:"currencyCode" binding:"required,len=3"`
	Fee               decimal.Decimal       `json:"fee"`
	SenderName        string                `json:"senderName" binding:"required"`
	SenderPhone       string                `json:"senderPhone"`
	BeneficiaryName   string                `json:"beneficiaryName" binding:"required"`
	BeneficiaryPhone  string                `json:"beneficiaryPhone"`
	DeliveryMethod    domain.DeliveryMethod `json:"deliveryMethod" binding:"required"`
	EffectiveDate     time.Time             `json:"effectiveDate"`
	IdempotencyKey    *string               `json:"idempotencyKey"`
}

// RemittanceReceiveRequest posts a remittance_receive transaction.
type RemittanceReceiveRequest struct {
	BeneficiaryAccountID string          `json:"beneficiaryAccountID"`
	Amount               decimal.Decimal `json:"amount" binding:"required"`
	CurrencyCode         string          `json:"currencyCode" binding:"required,len=3"`
	Fee                  decimal.Decimal `json:"fee"`
	TrackingCode         string          `json:"trackingCode"`
	EffectiveDate        time.Time       `json:"effectiveDate"`
	IdempotencyKey       *string         `json:"idempotencyKey"`
}

// FeeRequest charges a customer a service fee.
type FeeRequest struct {
	CustomerAccountID string          `json:"customerAccountID" binding:"required"`
	Amount            decimal.Decimal `json:"amount" binding:"required"`
	CurrencyCode      string          `json:"currencyCode" binding:"required,len=3"`
	EffectiveDate     time.Time       `json:"effectiveDate"`
	Description       string          `json:"description"`
	IdempotencyKey    *string         `json:"idempotencyKey"`
}

// RefundRequest reverses a previously completed transaction in full.
type RefundRequest struct {
	OriginalTransactionID string    `json:"originalTransactionID" binding:"required"`
	EffectiveDate         time.Time `json:"effectiveDate"`
	Description           string    `json:"description"`
	IdempotencyKey        *string   `json:"idempotencyKey"`
}
