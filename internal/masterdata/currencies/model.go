package currencies

// Currency represents a transaction currency.
type Currency struct {
	ID        int64  `json:"id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Symbol    string `json:"symbol"`
	IsPrimary bool   `json:"is_primary"`
}

// CompanyRate is the company-specific exchange rate from a currency into the
// primary reporting currency.
type CompanyRate struct {
	ID         int64   `json:"id"`
	CurrencyID int64   `json:"currency_id"`
	CompanyID  int64   `json:"company_id"`
	Rate       float64 `json:"rate"`
}
