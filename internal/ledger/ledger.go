package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ticket-exchange/models"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/tools/security"
)

const accountsTable = "accounts"

// Ledger stores account balances. Credits and debits are single relative
// updates against the stored balance; there is no cross-account atomicity,
// so a transfer is two independently committed writes.
type Ledger struct {
	db dbx.Builder
}

func New(db dbx.Builder) *Ledger {
	return &Ledger{db: db}
}

// FindAccount returns the account for username, or nil when it does not
// exist.
func (l *Ledger) FindAccount(ctx context.Context, username string) (*models.Account, error) {
	acc := &models.Account{}
	err := l.db.Select("username", "password_hash", "balance").
		From(accountsTable).
		Where(dbx.HashExp{"username": username}).
		Limit(1).
		WithContext(ctx).
		One(acc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: find account: %w", err)
	}
	return acc, nil
}

func (l *Ledger) CreateAccount(ctx context.Context, acc *models.Account) error {
	_, err := l.db.Insert(accountsTable, dbx.Params{
		"id":            security.RandomString(15),
		"username":      acc.Username,
		"password_hash": acc.PasswordHash,
		"balance":       acc.Balance,
	}).WithContext(ctx).Execute()
	if err != nil {
		return fmt.Errorf("ledger: create account: %w", err)
	}
	return nil
}

func (l *Ledger) CreditBalance(ctx context.Context, username string, amount int64) error {
	return l.adjustBalance(ctx, username, amount)
}

func (l *Ledger) DebitBalance(ctx context.Context, username string, amount int64) error {
	return l.adjustBalance(ctx, username, -amount)
}

func (l *Ledger) adjustBalance(ctx context.Context, username string, delta int64) error {
	_, err := l.db.Update(accountsTable,
		dbx.Params{"balance": dbx.NewExp("balance + {:delta}", dbx.Params{"delta": delta})},
		dbx.HashExp{"username": username},
	).WithContext(ctx).Execute()
	if err != nil {
		return fmt.Errorf("ledger: adjust balance for %s: %w", username, err)
	}
	return nil
}
