package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind is the business operation a journal header records.
type TransactionKind string

const (
	KindCashReceipt       TransactionKind = "CASH_RECEIPT"
	KindCashPayment       TransactionKind = "CASH_PAYMENT"
	KindBankDeposit       TransactionKind = "BANK_DEPOSIT"
	KindBankWithdrawal    TransactionKind = "BANK_WITHDRAWAL"
	KindCurrencyExchange  TransactionKind = "CURRENCY_EXCHANGE"
	KindRemittanceSend    TransactionKind = "REMITTANCE_SEND"
	KindRemittanceReceive TransactionKind = "REMITTANCE_RECEIVE"
	KindTransfer          TransactionKind = "TRANSFER"
	KindCommission        TransactionKind = "COMMISSION"
	KindFee               TransactionKind = "FEE"
	KindRefund            TransactionKind = "REFUND"
	KindAdjustment        TransactionKind = "ADJUSTMENT"
)

// TransactionStatus is the lifecycle state of a journal header. Once
// COMPLETED the header is immutable; corrections require a reversing
// transaction.
type TransactionStatus string

const (
	StatusPending    TransactionStatus = "PENDING"
	StatusApproved   TransactionStatus = "APPROVED"
	StatusProcessing TransactionStatus = "PROCESSING"
	StatusCompleted  TransactionStatus = "COMPLETED"
	StatusRejected   TransactionStatus = "REJECTED"
	StatusCancelled  TransactionStatus = "CANCELLED"
)

// Transaction is a journal header grouping two or more balanced entries.
// TransactionNumber is assigned exactly once from the per-tenant monotonic
// counter and never reused, even on abort.
type Transaction struct {
	TransactionID     string            `json:"transactionID"` // Primary key (UUID)
	TenantID          string            `json:"tenantID"`
	TransactionNumber string            `json:"transactionNumber"` // TXN-<tenant-suffix>-<seq>
	Kind              TransactionKind   `json:"kind"`
	EffectiveDate     time.Time         `json:"effectiveDate"`
	Description       string            `json:"description"`
	Reference         *string           `json:"reference"` // Optional external reference
	Amount            decimal.Decimal   `json:"amount"`    // Total in header currency
	CurrencyCode      string            `json:"currencyCode"`
	Status            TransactionStatus `json:"status"`
	ApprovedBy        *string           `json:"approvedBy"`
	ReversesID        *string           `json:"reversesID"`    // Set on reversing transactions
	ReversedByID      *string           `json:"reversedByID"`  // Set on the original once reversed
	IdempotencyKey    *string           `json:"-"`             // Caller-supplied, tenant-scoped
	Metadata          []byte            `json:"-"`             // Opaque, validated by the recipe that wrote it
	Entries           []Entry           `json:"entries,omitempty"`
	AuditFields
}

// IsFinal reports whether the transaction can no longer change state.
func (t Transaction) IsFinal() bool {
	switch t.Status {
	case StatusCompleted, StatusRejected, StatusCancelled:
		return true
	}
	return false
}
