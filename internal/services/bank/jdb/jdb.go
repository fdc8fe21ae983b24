// Package jdb implements the JDB deposit gateway: QR code generation over
// the bank's HTTP API and settled-deposit notifications over the bank's
// PubNub channel.
package jdb

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"ticket-exchange/internal/status"

	pubnub "github.com/pubnub/go/v7"
	"github.com/shopspring/decimal"
)

type Config struct {
	// Merchant identity.
	ReceiverID string `json:"receiverId" mapstructure:"receiver_id"`
	CCy        string `json:"ccy" mapstructure:"ccy"`

	// Notification channel.
	PNSubKey    string `json:"pn_subkey" mapstructure:"pn_subkey"`
	PNSubSecret string `json:"pn_subsecret" mapstructure:"pn_subsecret"`
	PNUUID      string `json:"pn_uuid" mapstructure:"pn_uuid"`
	PNChannel   string `json:"pn_channel" mapstructure:"pn_channel"`
	PNCipherKey string `json:"pn_cipherKey" mapstructure:"pn_cipherkey"`

	// API credentials.
	BaseURL   string `json:"baseUrl" mapstructure:"base_url"`
	PartnerID string `json:"partnerId" mapstructure:"partner_id"`
	ClientID  string `json:"clientId" mapstructure:"client_id"`
	ClientKey string `json:"clientKey" mapstructure:"client_key"`
	HMACKey   string `json:"hmacKey" mapstructure:"hmac_key"`
}

type Yespay struct {
	MerchantID string
	CCy        string

	pnChannel string

	sub    *subscription
	client *Client
}

// payload is the bank's wire shape for a settled transaction.
type payload struct {
	RefID         string          `json:"refNo"`
	UUID          string          `json:"billNumber"`
	FCCRef        string          `json:"exReferenceNo"`
	Ccy           string          `json:"sourceCurrency"`
	Payer         string          `json:"sourceName"`
	AccountNumber string          `json:"sourceAccount"`
	Amount        decimal.Decimal `json:"txnAmount"`
	CreatedAt     string          `json:"txnDateTime"`
}

// New authenticates against the JDB backend and starts the notification
// subscription.
func New(ctx context.Context, cfg *Config) (*Yespay, error) {
	client := newClient(&ClientConfig{
		BaseURL:   cfg.BaseURL,
		PartnerID: cfg.PartnerID,
		ClientID:  cfg.ClientID,
		ClientKey: cfg.ClientKey,
		HMACKey:   cfg.HMACKey,
	})

	token, err := client.connect(ctx)
	if err != nil {
		return nil, err
	}
	client.setAccessToken(token)

	go client.refreshAccessToken(ctx)

	y := &Yespay{
		MerchantID: cfg.ReceiverID,
		CCy:        cfg.CCy,
		pnChannel:  cfg.PNChannel,
		client:     client,
	}

	pnCfg := pubnub.NewConfigWithUserId(pubnub.UserId(cfg.PNUUID))
	pnCfg.SubscribeKey = cfg.PNSubKey
	pnCfg.CipherKey = cfg.PNCipherKey
	pnCfg.SecretKey = cfg.PNSubSecret

	y.sub = newSubscription(ctx, pnCfg)

	return y, nil
}

type subscription struct {
	pn  *pubnub.PubNub
	lis *pubnub.Listener
	ch  chan *status.Transaction
}

func newSubscription(ctx context.Context, pnCfg *pubnub.Config) *subscription {
	sub := &subscription{
		pn:  pubnub.NewPubNub(pnCfg),
		lis: pubnub.NewListener(),
	}
	sub.pn.AddListener(sub.lis)

	go sub.run(ctx)

	return sub
}

func (s *subscription) run(ctx context.Context) {
	for {
		select {
		case st := <-s.lis.Status:
			switch st.Category {
			case pubnub.PNConnectedCategory:
				log.Println("connected to pubnub")
			case pubnub.PNReconnectedCategory:
				log.Println("reconnected to pubnub")
			case pubnub.PNDisconnectedCategory:
				log.Println("disconnected from pubnub")
			case pubnub.PNAccessDeniedCategory:
				log.Println("access denied connect to pubnub")
			case pubnub.PNTimeoutCategory:
				log.Println("timeout connect to pubnub")
			default:
				log.Printf("pubnub status category: %v", st.Category)
			}

		case message := <-s.lis.Message:
			raw, ok := message.Message.(string)
			if !ok {
				log.Printf("jdb: unexpected notification payload type: %T", message.Message)
				continue
			}

			var p payload
			if err := json.NewDecoder(strings.NewReader(raw)).Decode(&p); err != nil {
				log.Printf("jdb: decode notification: %v", err)
				continue
			}

			tran, err := p.ToDomain()
			if err != nil {
				log.Printf("jdb: parse notification: %v", err)
				continue
			}

			if s.ch != nil {
				s.ch <- tran
			}

		case <-ctx.Done():
			log.Println("close subscribe")
			return
		}
	}
}

func (p *payload) ToDomain() (*status.Transaction, error) {
	ts, err := time.ParseInLocation("2006-01-02 15:04:05", p.CreatedAt, time.Local)
	if err != nil {
		return nil, err
	}

	return &status.Transaction{
		RefID:         p.RefID,
		UUID:          p.UUID,
		FCCRef:        p.FCCRef,
		Ccy:           p.Ccy,
		Payer:         p.Payer,
		AccountNumber: p.AccountNumber,
		Amount:        p.Amount,
		CreatedAt:     ts,
	}, nil
}

// addChannel subscribes to the per-bill notification channel, backdated a
// couple of minutes so a payment settled during QR generation is not lost.
func (y *Yespay) addChannel(uuid string) {
	channel := fmt.Sprintf("%s_%s", y.MerchantID, uuid)
	tt := time.Now().Add(-2*time.Minute).Unix() * 10000
	y.sub.pn.Subscribe().Channels([]string{channel}).Timetoken(tt).Execute()
}

func (y *Yespay) Unsubscribe(_ context.Context) {
	y.sub.pn.UnsubscribeAll()
}

func (y *Yespay) SetTranChannel(ch chan *status.Transaction) {
	y.sub.ch = ch
}

func (y *Yespay) CheckTransaction(ctx context.Context, uuid string) (*status.Transaction, error) {
	return y.client.checkTransaction(ctx, uuid)
}

func (y *Yespay) GenQRCode(ctx context.Context, f *status.FormQR) (string, error) {
	if f.MerchantID == "" {
		f.MerchantID = y.MerchantID
	}

	emvCode, err := y.client.generateQR(ctx, f)
	if err != nil {
		return "", err
	}

	y.addChannel(f.UUID)

	return emvCode, nil
}
