package shared

// ListFilters represents the standard list filters, carried explicitly per
// request rather than persisted anywhere between requests.
type ListFilters struct {
	Page    int
	Limit   int
	Search  string
	SortBy  string
	SortDir string

	// Entity specific filters
	CompanyID *int64
	BranchID  *int64
}

// Offset computes the row offset for the current page.
func (f ListFilters) Offset() int {
	if f.Page < 2 || f.Limit < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// Normalize clamps page and limit into sane bounds.
func (f ListFilters) Normalize() ListFilters {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	if f.Limit > 200 {
		f.Limit = 200
	}
	return f
}
