package accounting

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/meridianfx/ledger-core/internal/apperrors"
	"github.com/meridianfx/ledger-core/internal/core/domain"
)

// SignedDelta applies the double-entry sign rule to an entry for a given
// account type. Assets and expenses grow with debits; liabilities, equity,
// and revenue grow with credits. An unknown account type is a data-integrity
// fault, not a user error.
func SignedDelta(entry domain.Entry, accountType domain.AccountType) (decimal.Decimal, error) {
	switch accountType {
	case domain.Asset, domain.Expense:
		return entry.Debit.Sub(entry.Credit), nil
	case domain.Liability, domain.Equity, domain.Revenue:
		return entry.Credit.Sub(entry.Debit), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown account type %q for account %s", accountType, entry.AccountID)
	}
}

// HeaderImbalance converts every entry into the header currency via its
// RateToHeader and returns sum(debits) - sum(credits).
func HeaderImbalance(entries []domain.Entry) decimal.Decimal {
	debits := decimal.Zero
	credits := decimal.Zero
	for _, e := range entries {
		debits = debits.Add(e.HeaderDebit())
		credits = credits.Add(e.HeaderCredit())
	}
	return debits.Sub(credits)
}

// ValidateBalanced checks the transaction-level invariant: at least two
// entries, each individually valid, and the header-currency imbalance within
// half the smallest unit of the header currency.
func ValidateBalanced(entries []domain.Entry, headerCurrency domain.Currency) error {
	if len(entries) < 2 {
		return fmt.Errorf("%w: a transaction needs at least two entries", apperrors.ErrValidation)
	}
	for i, e := range entries {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}
	imbalance := HeaderImbalance(entries)
	if imbalance.Abs().GreaterThan(headerCurrency.BalanceTolerance()) {
		return fmt.Errorf("%w: imbalance %s %s exceeds tolerance %s",
			apperrors.ErrUnbalanced, imbalance.String(), headerCurrency.CurrencyCode,
			headerCurrency.BalanceTolerance().String())
	}
	return nil
}

// ValidateCoverage enforces the overdraft policy on a set of balance changes:
// an asset account may not spend past its available balance (balance minus
// frozen reserve). Accounts flagged AllowNegative, such as clearing accounts,
// are exempt.
func ValidateCoverage(accounts map[string]domain.Account, changes map[string]decimal.Decimal) error {
	for id, change := range changes {
		account, ok := accounts[id]
		if !ok {
			return fmt.Errorf("%w: account %s not loaded", apperrors.ErrUnknownAccount, id)
		}
		if account.AccountType != domain.Asset || account.AllowNegative {
			continue
		}
		if account.Available().Add(change).IsNegative() {
			return fmt.Errorf("account %s has %s available, cannot absorb %s: %w",
				id, account.Available(), change, apperrors.ErrInsufficientBalance)
		}
	}
	return nil
}

// NetChanges aggregates the signed balance delta per account across entries.
func NetChanges(entries []domain.Entry, accountTypes map[string]domain.AccountType) (map[string]decimal.Decimal, error) {
	changes := make(map[string]decimal.Decimal, len(entries))
	for _, e := range entries {
		t, ok := accountTypes[e.AccountID]
		if !ok {
			return nil, fmt.Errorf("%w: no type known for account %s", apperrors.ErrUnknownAccount, e.AccountID)
		}
		delta, err := SignedDelta(e, t)
		if err != nil {
			return nil, err
		}
		changes[e.AccountID] = changes[e.AccountID].Add(delta)
	}
	return changes, nil
}
