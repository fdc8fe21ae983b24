package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"ticket-exchange/internal/services/bank"
	"ticket-exchange/internal/status"
	"ticket-exchange/models"
	"ticket-exchange/monitoring"
	"ticket-exchange/utils"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// AccountService handles registration, login, and balance top-ups. Top-ups
// come in two flavors: a direct credit, and a bank QR deposit that settles
// asynchronously through the gateway's notification channel.
type AccountService struct {
	ledger   AccountLedger
	Redis    *redis.Client
	gateway  bank.Gateway
	breaker  *utils.CircuitBreaker
	notifier *Notifier

	StartingBalance int64
	TopUpSessionTTL time.Duration
}

func NewAccountService(ledger AccountLedger, redisClient *redis.Client, gateway bank.Gateway, notifier *Notifier, startingBalance int64, topUpTTL time.Duration) *AccountService {
	return &AccountService{
		ledger:          ledger,
		Redis:           redisClient,
		gateway:         gateway,
		breaker:         utils.NewCircuitBreaker("bank-gateway"),
		notifier:        notifier,
		StartingBalance: startingBalance,
		TopUpSessionTTL: topUpTTL,
	}
}

func (s *AccountService) Register(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return status.Validation("missing fields")
	}

	existing, err := s.ledger.FindAccount(ctx, username)
	if err != nil {
		return status.Internal(err, "failed to register")
	}
	if existing != nil {
		return status.Validation("username exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return status.Internal(err, "failed to register")
	}

	if err := s.ledger.CreateAccount(ctx, &models.Account{
		Username:     username,
		PasswordHash: string(hash),
		Balance:      s.StartingBalance,
	}); err != nil {
		return status.Internal(err, "failed to register")
	}

	return nil
}

func (s *AccountService) Login(ctx context.Context, username, password string) (*models.Account, error) {
	acc, err := s.ledger.FindAccount(ctx, username)
	if err != nil {
		return nil, status.Internal(err, "failed to log in")
	}
	if acc == nil {
		return nil, status.Validation("invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)) != nil {
		return nil, status.Validation("invalid credentials")
	}
	return acc, nil
}

// Balance returns the current balance, 0 for unknown accounts.
func (s *AccountService) Balance(ctx context.Context, username string) (int64, error) {
	acc, err := s.ledger.FindAccount(ctx, username)
	if err != nil {
		return 0, status.Internal(err, "failed to load balance")
	}
	if acc == nil {
		return 0, nil
	}
	return acc.Balance, nil
}

// TopUp credits the account directly and returns the new balance.
func (s *AccountService) TopUp(ctx context.Context, username string, amount int64) (int64, error) {
	if username == "" || amount <= 0 {
		return 0, status.Validation("invalid request")
	}

	acc, err := s.ledger.FindAccount(ctx, username)
	if err != nil {
		return 0, status.Internal(err, "failed to top up")
	}
	if acc == nil {
		return 0, status.Validation("invalid account, please log in again")
	}

	if err := s.ledger.CreditBalance(ctx, username, amount); err != nil {
		return 0, status.Internal(err, "failed to top up")
	}
	monitoring.TrackTopUp(amount)

	// Re-read after the credit; concurrent top-ups make the earlier read
	// stale.
	acc, err = s.ledger.FindAccount(ctx, username)
	if err != nil || acc == nil {
		return 0, status.Internal(err, "failed to top up")
	}
	return acc.Balance, nil
}

// CreateTopUpQR opens a pending deposit session and returns the bank QR
// code for it. The credit happens later, when the gateway reports the
// deposit settled.
func (s *AccountService) CreateTopUpQR(ctx context.Context, username string, amount int64, phone string) (*models.TopUpSession, error) {
	if username == "" || amount <= 0 {
		return nil, status.Validation("invalid request")
	}
	if s.gateway == nil {
		return nil, status.Validation("bank top-up is not configured")
	}

	acc, err := s.ledger.FindAccount(ctx, username)
	if err != nil {
		return nil, status.Internal(err, "failed to create top-up")
	}
	if acc == nil {
		return nil, status.Validation("invalid account, please log in again")
	}

	refID, _ := utils.GenerateCode(4)
	session := &models.TopUpSession{
		ID:       fmt.Sprintf("topup_%s_%d", username, time.Now().Unix()),
		Username: username,
		Amount:   amount,
		Status:   "pending",
	}

	emvCode, err := s.breaker.Execute(ctx, func() (any, error) {
		return s.gateway.GenerateQR(ctx, &bank.DepositRequest{
			Amount:          decimal.NewFromInt(amount),
			UUID:            session.ID,
			ReferenceNumber: fmt.Sprintf("%s-%s", session.ID, refID),
			TerminalLabel:   refID,
			Phone:           phone,
		})
	})
	if err != nil {
		return nil, status.Internal(err, "failed to generate top-up QR")
	}
	session.QRCode = emvCode.(string)

	sessionKey := fmt.Sprintf("topup:%s", session.ID)
	s.Redis.HSet(ctx, sessionKey,
		"username", session.Username,
		"amount", session.Amount,
		"status", session.Status,
	)
	s.Redis.Expire(ctx, sessionKey, s.TopUpSessionTTL)

	return session, nil
}

// ConfirmTopUp settles a pending deposit session from a gateway
// notification.
func (s *AccountService) ConfirmTopUp(ctx context.Context, tran *status.Transaction) error {
	sessionKey := fmt.Sprintf("topup:%s", tran.UUID)
	session := s.Redis.HGetAll(ctx, sessionKey).Val()
	if len(session) == 0 {
		return status.NotFound(fmt.Sprintf("no pending top-up for bill %s", tran.UUID))
	}
	if session["status"] == "completed" {
		// Duplicate notification; the credit already happened.
		return nil
	}

	username := session["username"]
	amount, err := strconv.ParseInt(session["amount"], 10, 64)
	if err != nil {
		return status.Internal(err, "corrupt top-up session")
	}
	if !tran.Amount.Equal(decimal.NewFromInt(amount)) {
		slog.Warn("topup: settled amount differs from session",
			"bill", tran.UUID,
			"session_amount", amount,
			"settled_amount", tran.Amount.String(),
		)
	}

	if err := s.ledger.CreditBalance(ctx, username, amount); err != nil {
		return status.Internal(err, "failed to credit top-up")
	}

	s.Redis.HSet(ctx, sessionKey, "status", "completed")
	monitoring.TrackTopUp(amount)

	s.notifier.NotifyUser(username, map[string]any{
		"type":     "topup_completed",
		"topup_id": tran.UUID,
		"amount":   amount,
	})

	return nil
}
