package main

import (
	"context"
	"time"

	"github.com/trezcool/baraza/core"
	"github.com/trezcool/baraza/core/ledger"
)

// award appends a ledger entry and shifts the user's stored balance in step.
func (cli *commandLine) award(uname string, amount int, reason string) error {
	ctx := context.Background()
	usr, err := cli.usrRepo.GetUserByUsernameOrEmail(ctx, core.CleanString(uname, true /* lower */))
	if err != nil {
		return err
	}

	tx := ledger.Transaction{
		UserID:    usr.ID,
		Amount:    amount,
		Type:      ledger.TypeAward,
		Timestamp: time.Now().UTC(),
		Reason:    reason,
	}
	if _, err := cli.ledgerRepo.AppendTransaction(ctx, tx); err != nil {
		return err
	}

	usr.ParasStones += amount
	usr.UpdatedAt = time.Now().UTC()
	_, err = cli.usrRepo.UpdateUser(ctx, usr, nil)
	return err
}
