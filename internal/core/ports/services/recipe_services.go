package services

import (
	"context"

	"github.com/meridianfx/ledger-core/internal/core/domain"
	"github.com/meridianfx/ledger-core/internal/dto"
)

// RecipeService expands named business operations into balanced drafts and
// posts them through the journal engine.
type RecipeService interface {
	CashReceipt(ctx context.Context, caller domain.CallContext, req dto.CashMovementRequest) (*domain.Transaction, error)
	CashPayment(ctx context.Context, caller domain.CallContext, req dto.CashMovementRequest) (*domain.Transaction, error)
	BankDeposit(ctx context.Context, caller domain.CallContext, req dto.CashMovementRequest) (*domain.Transaction, error)
	BankWithdrawal(ctx context.Context, caller domain.CallContext, req dto.CashMovementRequest) (*domain.Transaction, error)
	CurrencyBuy(ctx context.Context, caller domain.CallContext, req dto.CurrencyTradeRequest) (*domain.Transaction, error)
	CurrencySell(ctx context.Context, caller domain.CallContext, req dto.CurrencyTradeRequest) (*domain.Transaction, error)
	Transfer(ctx context.Context, caller domain.CallContext, req dto.TransferRequest) (*domain.Transaction, error)
	RemittanceSend(ctx context.Context, caller domain.CallContext, req dto.RemittanceSendRequest) (*domain.Transaction, *domain.RemittanceIntent, error)
	RemittanceReceive(ctx context.Context, caller domain.CallContext, req dto.RemittanceReceiveRequest) (*domain.Transaction, error)
	ChargeFee(ctx context.Context, caller domain.CallContext, req dto.FeeRequest) (*domain.Transaction, error)
	Refund(ctx context.Context, caller domain.CallContext, req dto.RefundRequest) (*domain.Transaction, error)
	// UpdateRemittanceStatus advances a remittance intent along its partner
	// lifecycle. Ledger state is untouched; only the intent row changes.
	UpdateRemittanceStatus(ctx context.Context, caller domain.CallContext, intentID string, status domain.RemittanceStatus, partnerRef *string) error
}
