package jdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"ticket-exchange/internal/status"
)

type ClientConfig struct {
	BaseURL   string `json:"baseUrl" mapstructure:"base_url"`
	PartnerID string `json:"partnerId" mapstructure:"partner_id"`
	ClientID  string `json:"clientId" mapstructure:"client_id"`
	ClientKey string `json:"clientKey" mapstructure:"client_key"`
	HMACKey   string `json:"hmacKey" mapstructure:"hmac_key"`
}

// Client talks to the JDB backend. Every request body is HMAC-signed; the
// access token is refreshed in the background and on 401 responses.
type Client struct {
	baseURL   string
	partnerID string
	clientID  string
	clientKey string
	hmacKey   string

	mu          sync.Mutex
	accessToken string

	// tokenExpired wakes the refresher early after a 401.
	tokenExpired chan struct{}

	hc *http.Client
}

func newClient(c *ClientConfig) *Client {
	return &Client{
		baseURL:      c.BaseURL,
		partnerID:    c.PartnerID,
		clientID:     c.ClientID,
		clientKey:    c.ClientKey,
		hmacKey:      c.HMACKey,
		tokenExpired: make(chan struct{}, 1),
		hc: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// refreshAccessToken renews the token on a timer and whenever a request
// hits a 401, retrying with exponential backoff until it gets one.
func (c *Client) refreshAccessToken(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-c.tokenExpired:
			log.Println("jdb: access token expired, refreshing")
		}

		backOff := time.Second
		for {
			token, err := c.connect(ctx)
			if err == nil {
				c.setAccessToken(token)
				break
			}

			log.Printf("jdb: refresh access token: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backOff):
				backOff *= 2
			}
		}
	}
}

func (c *Client) setAccessToken(accessToken string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = accessToken
}

func (c *Client) getAccessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken
}

// post signs body, sends it, and decodes the enveloped reply into data.
// authorized requests carry the current access token; a 401 wakes the token
// refresher before failing the call.
func (c *Client) post(ctx context.Context, path, body string, authorized bool, reply any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader([]byte(body)))
	if err != nil {
		return fmt.Errorf("jdb: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("SignedHash", Hmac256([]byte(body), []byte(c.hmacKey)))
	if authorized {
		req.Header.Set("Authorization", c.getAccessToken())
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("jdb: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		select {
		case c.tokenExpired <- struct{}{}:
		default:
		}
		return errors.New("jdb: unauthorized")
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("jdb: unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(reply); err != nil {
		return fmt.Errorf("jdb: decode reply: %w", err)
	}
	return nil
}

// connect authenticates and returns a bearer token.
func (c *Client) connect(ctx context.Context) (string, error) {
	number, err := randomNumber()
	if err != nil {
		return "", fmt.Errorf("jdb: connect: %w", err)
	}

	body := fmt.Sprintf(`{"requestId":%q,"partnerId":%q,"clientId":%q,"clientScret":"%s"}`,
		number, c.partnerID, c.clientID, c.clientKey)

	var reply struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Data    struct {
			AccessToken string `json:"accessToken"`
			TokenType   string `json:"tokenType"`
		} `json:"data"`
	}
	if err := c.post(ctx, "/api/pro/dynamic/autenticate", body, false, &reply); err != nil {
		return "", err
	}
	if reply.Status != "OK" {
		return "", fmt.Errorf("jdb: connect: status %v: %v", reply.Status, reply.Message)
	}

	return fmt.Sprintf("%s %s", reply.Data.TokenType, reply.Data.AccessToken), nil
}

// generateQR requests an EMV QR payload for a deposit bill.
func (c *Client) generateQR(ctx context.Context, f *status.FormQR) (string, error) {
	number, err := randomNumber()
	if err != nil {
		return "", fmt.Errorf("jdb: generate qr: %w", err)
	}

	body := fmt.Sprintf(`{"requestId":%q,"partnerId":%q,"txnAmount":%s,"mechantId":%q,"billNumber":%q,"terminalId":%q,"terminalLabel":%q,"mobileNo":%q}`,
		number, c.partnerID, f.Amount, f.MerchantID, f.UUID, f.TerminalLabel, f.ReferenceLabel, f.Phone)

	var reply struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Data    struct {
			MerchantID string `json:"mcid"`
			EmvCode    string `json:"emv"`
		} `json:"data"`
	}
	if err := c.post(ctx, "/api/pro/dynamic/generateQr", body, true, &reply); err != nil {
		return "", err
	}
	if reply.Status != "OK" {
		return "", fmt.Errorf("jdb: generate qr: status %v: %v", reply.Status, reply.Message)
	}

	return reply.Data.EmvCode, nil
}

// checkTransaction polls the settlement status of a deposit bill.
func (c *Client) checkTransaction(ctx context.Context, uuid string) (*status.Transaction, error) {
	number, err := randomNumber()
	if err != nil {
		return nil, fmt.Errorf("jdb: check transaction: %w", err)
	}

	body := fmt.Sprintf(`{"requestId":%q,"billNumber":%q}`, number, uuid)

	var reply struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Data    struct {
			payload
		} `json:"data"`
	}
	if err := c.post(ctx, "/api/pro/dynamic/checkTransaction", body, true, &reply); err != nil {
		return nil, err
	}
	if reply.Status != "OK" {
		if reply.Status == "NOT_FOUND" {
			return nil, status.ErrFailedPayment
		}
		return nil, fmt.Errorf("jdb: check transaction: status %v: %v", reply.Status, reply.Message)
	}

	tran, err := reply.Data.payload.ToDomain()
	if err != nil {
		return nil, fmt.Errorf("jdb: check transaction: %w", err)
	}
	return tran, nil
}
