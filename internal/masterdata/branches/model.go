package branches

// Branch belongs to one company. Assets and debts resolve their company,
// and through it the primary currency, via their branch.
type Branch struct {
	ID        int64  `json:"id"`
	CompanyID int64  `json:"company_id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Address   string `json:"address,omitempty"`
}
