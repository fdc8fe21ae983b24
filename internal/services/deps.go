package services

import (
	"context"

	"ticket-exchange/models"

	"github.com/pocketbase/dbx"
)

// TicketStore is the record-store surface the engines are written against.
// The store offers no transaction or session primitive; every call commits
// on its own, and the engines detect lost races through the returned row
// counts.
type TicketStore interface {
	FindOne(ctx context.Context, filter dbx.HashExp) (*models.Ticket, error)
	FindMany(ctx context.Context, filter dbx.HashExp) ([]*models.Ticket, error)
	Insert(ctx context.Context, t *models.Ticket) error
	DeleteOne(ctx context.Context, filter dbx.HashExp) (int64, error)
	DeleteMany(ctx context.Context, filter dbx.HashExp) (int64, error)
	UpdateOne(ctx context.Context, filter dbx.HashExp, fields dbx.Params) (int64, error)
}

// AccountLedger holds balances. Debit and credit are independent writes;
// there is no two-account atomicity for the purchase engine to lean on.
type AccountLedger interface {
	FindAccount(ctx context.Context, username string) (*models.Account, error)
	CreateAccount(ctx context.Context, acc *models.Account) error
	CreditBalance(ctx context.Context, username string, amount int64) error
	DebitBalance(ctx context.Context, username string, amount int64) error
}
