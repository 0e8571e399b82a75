package ledger

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/baraza/core"
)

type (
	Repository interface {
		// AppendTransaction inserts the entry; the log is append-only so no
		// update or delete operations exist.
		AppendTransaction(ctx context.Context, tx Transaction) (Transaction, error)
		// QueryTransactions lists entries newest first.
		QueryTransactions(ctx context.Context, filter Filter, ordering ...core.DBOrdering) ([]Transaction, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Append records a new ledger entry for userID.
func (svc *Service) Append(ctx context.Context, userID, amount int, txType, reason string) (Transaction, error) {
	tx := Transaction{
		UserID:    userID,
		Amount:    amount,
		Type:      txType,
		Timestamp: time.Now().UTC(),
		Reason:    reason,
	}
	tx, err := svc.repo.AppendTransaction(ctx, tx)
	if err != nil {
		return Transaction{}, errors.Wrap(err, "appending transaction")
	}
	return tx, nil
}

// HistoryFor returns a user's transactions, newest first.
func (svc *Service) HistoryFor(ctx context.Context, userID int) ([]Transaction, error) {
	txs, err := svc.repo.QueryTransactions(ctx, Filter{UserID: &userID})
	if err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []Transaction{}
	}
	return txs, nil
}

// QueryAll returns every transaction, newest first; admin use only.
func (svc *Service) QueryAll(ctx context.Context, filter Filter) ([]Transaction, error) {
	txs, err := svc.repo.QueryTransactions(ctx, filter)
	if err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []Transaction{}
	}
	return txs, nil
}
