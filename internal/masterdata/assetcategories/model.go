package assetcategories

// Category classifies assets and determines which ledger accounts
// depreciation and amortization post against.
type Category struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// CategoryAccounts holds the classification account pairs configured for one
// (category, company) combination. A zero account ID means unconfigured; the
// batch processor treats that as a configuration error.
type CategoryAccounts struct {
	ID         int64 `json:"id"`
	CategoryID int64 `json:"category_id"`
	CompanyID  int64 `json:"company_id"`

	DepreciationExpenseAccountID     int64 `json:"depreciation_expense_account_id"`
	AccumulatedDepreciationAccountID int64 `json:"accumulated_depreciation_account_id"`
	AmortizationExpenseAccountID     int64 `json:"amortization_expense_account_id"`
	PrepaidAmortizationAccountID     int64 `json:"prepaid_amortization_account_id"`
}
