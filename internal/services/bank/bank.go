package bank

import (
	"context"

	"ticket-exchange/internal/status"

	"github.com/shopspring/decimal"
)

// Provider identifies a deposit provider.
type Provider string

const ProviderJDB Provider = "jdb"

// DepositRequest is a provider-agnostic request for a deposit QR code.
type DepositRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	UUID            string          `json:"uuid"`
	ReferenceNumber string          `json:"reference_number"`
	Phone           string          `json:"phone"`
	MerchantID      string          `json:"merchant_id,omitempty"`
	TerminalLabel   string          `json:"terminal_label,omitempty"`
}

// Gateway is the common surface for bank deposit providers. Settled
// deposits arrive asynchronously on the transaction channel.
type Gateway interface {
	Provider() Provider
	GenerateQR(ctx context.Context, req *DepositRequest) (string, error)
	CheckTransaction(ctx context.Context, uuid string) (*status.Transaction, error)
	SetTransactionChannel(ch chan *status.Transaction)
	Close(ctx context.Context) error
}
