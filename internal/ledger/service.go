package ledger

import (
	"context"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]Journal, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Get(ctx context.Context, id int64) (Journal, error) {
	return s.repo.Get(ctx, id)
}

// Post validates the input, builds the balanced two-line journal and
// persists it atomically. No write happens when validation fails.
func (s *Service) Post(ctx context.Context, input PostingInput) (Journal, error) {
	journal, err := Build(input)
	if err != nil {
		return Journal{}, err
	}
	var posted Journal
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inserted, err := tx.InsertJournal(ctx, journal)
		if err != nil {
			return err
		}
		posted = inserted
		return nil
	})
	if err != nil {
		return Journal{}, err
	}
	return posted, nil
}
