package companies

// Company is a legal entity owning branches and account configuration.
type Company struct {
	ID                int64  `json:"id"`
	Code              string `json:"code"`
	Name              string `json:"name"`
	PrimaryCurrencyID int64  `json:"primary_currency_id"`
}
