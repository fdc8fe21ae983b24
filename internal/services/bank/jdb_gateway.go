package bank

import (
	"context"
	"fmt"

	"ticket-exchange/internal/services/bank/jdb"
	"ticket-exchange/internal/status"
)

// JDBGateway adapts the JDB client to the Gateway interface.
type JDBGateway struct {
	client *jdb.Yespay
}

func NewJDBGateway(ctx context.Context, cfg *jdb.Config) (*JDBGateway, error) {
	client, err := jdb.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("bank: jdb gateway: %w", err)
	}
	return &JDBGateway{client: client}, nil
}

func (g *JDBGateway) Provider() Provider {
	return ProviderJDB
}

func (g *JDBGateway) GenerateQR(ctx context.Context, req *DepositRequest) (string, error) {
	return g.client.GenQRCode(ctx, &status.FormQR{
		UUID:           req.UUID,
		Phone:          req.Phone,
		MerchantID:     req.MerchantID,
		ReferenceLabel: req.ReferenceNumber,
		TerminalLabel:  req.TerminalLabel,
		Amount:         req.Amount,
	})
}

func (g *JDBGateway) CheckTransaction(ctx context.Context, uuid string) (*status.Transaction, error) {
	return g.client.CheckTransaction(ctx, uuid)
}

func (g *JDBGateway) SetTransactionChannel(ch chan *status.Transaction) {
	g.client.SetTranChannel(ch)
}

func (g *JDBGateway) Close(ctx context.Context) error {
	g.client.Unsubscribe(ctx)
	return nil
}
