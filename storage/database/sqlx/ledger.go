package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/baraza/core"
	"github.com/trezcool/baraza/core/ledger"
)

type ledgerRepository struct {
	db *sqlx.DB
}

var _ ledger.Repository = (*ledgerRepository)(nil) // interface compliance check

func NewLedgerRepository(db *sqlx.DB) *ledgerRepository {
	return &ledgerRepository{db: db}
}

type transactionRow struct {
	ID        int         `db:"id"`
	UserID    int         `db:"user_id"`
	Amount    int         `db:"amount"`
	Type      string      `db:"type"`
	Timestamp time.Time   `db:"timestamp"`
	Reason    null.String `db:"reason"`
}

func (r transactionRow) toTransaction() ledger.Transaction {
	return ledger.Transaction{
		ID:        r.ID,
		UserID:    r.UserID,
		Amount:    r.Amount,
		Type:      r.Type,
		Timestamp: r.Timestamp,
		Reason:    r.Reason.String,
	}
}

func (repo ledgerRepository) AppendTransaction(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	query := `
		INSERT INTO paras_transaction (user_id, amount, type, timestamp, reason)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := repo.db.QueryRowxContext(
		ctx, query,
		tx.UserID,
		tx.Amount,
		tx.Type,
		tx.Timestamp.UTC(),
		null.NewString(tx.Reason, tx.Reason != ""),
	).Scan(&tx.ID)
	if err != nil {
		return ledger.Transaction{}, errors.Wrap(err, "inserting transaction")
	}
	return tx, nil
}

func (repo ledgerRepository) QueryTransactions(ctx context.Context, filter ledger.Filter, ordering ...core.DBOrdering) ([]ledger.Transaction, error) {
	query := `SELECT id, user_id, amount, type, timestamp, reason FROM paras_transaction`
	var clauses []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + itoa(len(args))
	}

	if filter.UserID != nil {
		clauses = append(clauses, `user_id = `+arg(*filter.UserID))
	}
	if filter.Type != "" {
		clauses = append(clauses, `type = `+arg(filter.Type))
	}
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, " AND ")
	}
	query += orderBy(ordering, map[string]string{"timestamp": "timestamp, id"}, "timestamp DESC, id DESC")

	var rows []transactionRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying transactions")
	}
	txs := make([]ledger.Transaction, 0, len(rows))
	for _, r := range rows {
		txs = append(txs, r.toTransaction())
	}
	return txs, nil
}
