package fixedassets

import (
	"fmt"

	"github.com/meridian-erp/meridian-erp/internal/ledger"
	"github.com/meridian-erp/meridian-erp/internal/masterdata/assetcategories"
)

// accountPair is the resolved debit/credit pair a schedule entry posts to.
type accountPair struct {
	debit  int64
	credit int64
}

// resolvePostingAccounts maps the asset's classification onto the account
// pair configured for its category and company. The classification is a
// closed variant: each arm carries its own account selection, so there is no
// runtime flag inspection downstream.
func resolvePostingAccounts(class Classification, categoryCode string, accounts assetcategories.CategoryAccounts) (accountPair, ledger.JournalType, error) {
	switch class {
	case ClassAmortizable:
		pair := accountPair{
			debit:  accounts.AmortizationExpenseAccountID,
			credit: accounts.PrepaidAmortizationAccountID,
		}
		if pair.debit == 0 || pair.credit == 0 {
			return accountPair{}, "", fmt.Errorf("%w: amortization accounts missing for category %s", ErrAccountsNotConfigured, categoryCode)
		}
		return pair, ledger.TypeAmortization, nil
	case ClassDepreciable:
		pair := accountPair{
			debit:  accounts.DepreciationExpenseAccountID,
			credit: accounts.AccumulatedDepreciationAccountID,
		}
		if pair.debit == 0 || pair.credit == 0 {
			return accountPair{}, "", fmt.Errorf("%w: depreciation accounts missing for category %s", ErrAccountsNotConfigured, categoryCode)
		}
		return pair, ledger.TypeDepreciation, nil
	default:
		return accountPair{}, "", fmt.Errorf("%w: asset classification %q cannot post", ErrAccountsNotConfigured, class)
	}
}
