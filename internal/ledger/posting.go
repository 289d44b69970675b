package ledger

// Build materializes a balanced two-line journal from a posting input
// without touching storage. One line debits the full amount, the other
// credits it; both carry the primary-currency conversion at the given rate.
func Build(in PostingInput) (Journal, error) {
	if err := in.Validate(); err != nil {
		return Journal{}, err
	}

	primary := in.Amount * in.ExchangeRate

	journal := Journal{
		Date:         in.Date,
		Type:         in.Type,
		Description:  in.Description,
		SourceModule: in.SourceModule,
		SourceID:     in.SourceID,
		Entries: []Entry{
			{
				AccountID:    in.DebitAccountID,
				Debit:        in.Amount,
				CurrencyID:   in.CurrencyID,
				ExchangeRate: in.ExchangeRate,
				PrimaryDebit: primary,
			},
			{
				AccountID:     in.CreditAccountID,
				Credit:        in.Amount,
				CurrencyID:    in.CurrencyID,
				ExchangeRate:  in.ExchangeRate,
				PrimaryCredit: primary,
			},
		},
	}
	return journal, nil
}
