package handlers

import (
	"net/http"

	"ticket-exchange/internal/services"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type AccountHandler struct {
	accountService *services.AccountService
}

func NewAccountHandler(accountService *services.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register - Create an account with the starting balance
func (h *AccountHandler) Register(e *core.RequestEvent) error {
	var req credentialsRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	if err := h.accountService.Register(e.Request.Context(), req.Username, req.Password); err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"success":  true,
		"username": req.Username,
	})
}

// Login - Verify credentials and return the account snapshot
func (h *AccountHandler) Login(e *core.RequestEvent) error {
	var req credentialsRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	acc, err := h.accountService.Login(e.Request.Context(), req.Username, req.Password)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"success":  true,
		"username": acc.Username,
		"balance":  acc.Balance,
	})
}

// Balance - Current balance for the requesting user
func (h *AccountHandler) Balance(e *core.RequestEvent) error {
	username := e.Request.Header.Get("X-Username")

	balance, err := h.accountService.Balance(e.Request.Context(), username)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{"balance": balance})
}

type topUpRequest struct {
	Amount int64  `json:"amount"`
	Phone  string `json:"phone"`
}

// TopUp - Credit the account directly
func (h *AccountHandler) TopUp(e *core.RequestEvent) error {
	username := e.Request.Header.Get("X-Username")

	var req topUpRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	balance, err := h.accountService.TopUp(e.Request.Context(), username, req.Amount)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"success": true,
		"balance": balance,
	})
}

// GenTopUpQr - Open a bank deposit session and return its QR code
func (h *AccountHandler) GenTopUpQr(e *core.RequestEvent) error {
	username := e.Request.Header.Get("X-Username")

	var req topUpRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	session, err := h.accountService.CreateTopUpQR(e.Request.Context(), username, req.Amount, req.Phone)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"topup_id": session.ID,
		"amount":   session.Amount,
		"status":   session.Status,
		"qr_code":  session.QRCode,
	})
}
