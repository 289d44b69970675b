package taxes

// Jurisdiction is a taxing authority (country, province, city).
type Jurisdiction struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// Component is a single tax rate levied by a jurisdiction.
type Component struct {
	ID             int64   `json:"id"`
	JurisdictionID int64   `json:"jurisdiction_id"`
	Name           string  `json:"name"`
	Rate           float64 `json:"rate"`
}

// TaxCategory groups components that apply together to a transaction class.
type TaxCategory struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	ComponentIDs []int64 `json:"component_ids"`
}
