package status

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a settled deposit reported by the bank gateway.
type Transaction struct {
	RefID         string          `json:"ref_id"`
	UUID          string          `json:"uuid"`
	FCCRef        string          `json:"fcc_ref"`
	Ccy           string          `json:"ccy"`
	Payer         string          `json:"payer"`
	AccountNumber string          `json:"account_number"`
	Amount        decimal.Decimal `json:"amount"`
	CreatedAt     time.Time       `json:"created_at"`
}

// FormQR is the input for generating a bank deposit QR code.
type FormQR struct {
	UUID           string
	Phone          string
	MerchantID     string
	ReferenceLabel string
	TerminalLabel  string
	Amount         decimal.Decimal
}
