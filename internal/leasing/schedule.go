package leasing

import (
	mdshared "github.com/meridian-erp/meridian-erp/internal/masterdata/shared"
)

// GenerateSchedule derives the full installment plan from the lease terms
// without touching storage. Installments fall on the start date's day of
// month, stepped by the payment frequency, and one is emitted for every
// step that lands inside the date window. Each installment carries the
// lease payment amount and splits into interest on the outstanding
// obligation plus a principal remainder.
func GenerateSchedule(l Lease) ([]Payment, error) {
	if err := validateTerms(l); err != nil {
		return nil, err
	}

	periodRate := l.AnnualRatePct / 100 / 12 * float64(l.Frequency.Months())
	remaining := l.TotalObligation

	var out []Payment
	seq := 0
	for due := l.StartDate; !due.After(l.EndDate); due = due.AddDate(0, l.Frequency.Months(), 0) {
		seq++

		interest := remaining * periodRate
		principal := l.PaymentAmount - interest

		out = append(out, Payment{
			Seq:       seq,
			DueDate:   due,
			Amount:    l.PaymentAmount,
			Principal: principal,
			Interest:  interest,
			Status:    StatusPending,
		})
		remaining -= principal
	}
	if len(out) == 0 {
		return nil, mdshared.Invalid("lease terms produce no installments")
	}
	return out, nil
}

func validateTerms(l Lease) error {
	switch {
	case l.TotalObligation <= 0:
		return mdshared.Invalid("total obligation must be positive")
	case l.AnnualRatePct < 0:
		return mdshared.Invalid("annual rate cannot be negative")
	case l.PaymentAmount <= 0:
		return mdshared.Invalid("payment amount must be positive")
	case !l.Frequency.valid():
		return mdshared.Invalid("unknown payment frequency")
	case l.StartDate.IsZero() || l.EndDate.IsZero():
		return mdshared.Invalid("lease start and end dates are required")
	case l.EndDate.Before(l.StartDate):
		return mdshared.Invalid("lease end date precedes start date")
	}
	return nil
}
