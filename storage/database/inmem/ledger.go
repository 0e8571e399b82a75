package inmem

import (
	"context"
	"sort"

	"github.com/trezcool/baraza/core"
	"github.com/trezcool/baraza/core/ledger"
)

type ledgerRepository struct {
	db *ledgerTable
}

var _ ledger.Repository = (*ledgerRepository)(nil) // interface compliance check

func NewLedgerRepository(db *DB) *ledgerRepository {
	return &ledgerRepository{db: db.ledger}
}

func (repo *ledgerRepository) AppendTransaction(_ context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pkCount++
	tx.ID = repo.db.pkCount
	repo.db.entries = append(repo.db.entries, tx)
	return tx, nil
}

func (repo *ledgerRepository) QueryTransactions(_ context.Context, filter ledger.Filter, ordering ...core.DBOrdering) ([]ledger.Transaction, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var matches []ledger.Transaction
	for _, tx := range repo.db.entries {
		if filter.UserID != nil && tx.UserID != *filter.UserID {
			continue
		}
		if filter.Type != "" && tx.Type != filter.Type {
			continue
		}
		matches = append(matches, tx)
	}

	asc := false
	if len(ordering) > 0 {
		asc = ordering[0].Ascending
	}
	sort.SliceStable(matches, func(i, j int) bool {
		var less bool
		if matches[i].Timestamp.Equal(matches[j].Timestamp) {
			less = matches[i].ID < matches[j].ID
		} else {
			less = matches[i].Timestamp.Before(matches[j].Timestamp)
		}
		if asc {
			return less
		}
		return !less
	})
	return matches, nil
}
