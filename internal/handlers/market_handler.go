package handlers

import (
	"net/http"

	"ticket-exchange/internal/services"
	"ticket-exchange/models"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type MarketHandler struct {
	marketService   *services.MarketService
	resaleService   *services.ResaleService
	purchaseService *services.PurchaseService
	editService     *services.EditService
}

func NewMarketHandler(market *services.MarketService, resale *services.ResaleService, purchase *services.PurchaseService, edit *services.EditService) *MarketHandler {
	return &MarketHandler{
		marketService:   market,
		resaleService:   resale,
		purchaseService: purchase,
		editService:     edit,
	}
}

// ListTickets - All tickets currently available for purchase
func (h *MarketHandler) ListTickets(e *core.RequestEvent) error {
	tickets, err := h.marketService.Listings(e.Request.Context())
	if err != nil {
		return toAPIError(err)
	}
	return e.JSON(http.StatusOK, tickets)
}

// MyTickets - Every ticket owned by the requesting user
func (h *MarketHandler) MyTickets(e *core.RequestEvent) error {
	username := e.Request.Header.Get("X-Username")

	tickets, err := h.marketService.OwnedBy(e.Request.Context(), username)
	if err != nil {
		return toAPIError(err)
	}
	return e.JSON(http.StatusOK, tickets)
}

type createTicketRequest struct {
	Type  string `json:"type"`
	Event string `json:"event"`
	Date  string `json:"date"`
	Price int64  `json:"price"`
	Image string `json:"image"`
}

// CreateTicket - Mint a new ticket and list it
func (h *MarketHandler) CreateTicket(e *core.RequestEvent) error {
	username := e.Request.Header.Get("X-Username")

	var req createTicketRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	ticket, err := h.marketService.Mint(e.Request.Context(), username, models.TicketFields{
		Type:  req.Type,
		Event: req.Event,
		Date:  req.Date,
		Price: req.Price,
	}, req.Image)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, ticket)
}

type resaleRequest struct {
	Price int64 `json:"price"`
}

// ResaleTicket - Put an owned ticket back on the market
func (h *MarketHandler) ResaleTicket(e *core.RequestEvent) error {
	username := e.Request.Header.Get("X-Username")
	ticketID := e.Request.PathValue("ticketId")

	var req resaleRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	if err := h.resaleService.Resell(e.Request.Context(), username, ticketID, req.Price); err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{"success": true})
}

// BuyTicket - Purchase a listed ticket
func (h *MarketHandler) BuyTicket(e *core.RequestEvent) error {
	username := e.Request.Header.Get("X-Username")
	ticketID := e.Request.PathValue("ticketId")

	ticket, err := h.purchaseService.Purchase(e.Request.Context(), username, ticketID)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"success": true,
		"ticket":  ticket,
	})
}

type editTicketRequest struct {
	Type  string `json:"type"`
	Event string `json:"event"`
	Date  string `json:"date"`
	Price int64  `json:"price"`
}

// UpdateTicket - Edit an owned, unsold ticket
func (h *MarketHandler) UpdateTicket(e *core.RequestEvent) error {
	username := e.Request.Header.Get("X-Username")
	ticketID := e.Request.PathValue("ticketId")

	var req editTicketRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	if err := h.editService.Edit(e.Request.Context(), username, ticketID, models.TicketFields{
		Type:  req.Type,
		Event: req.Event,
		Date:  req.Date,
		Price: req.Price,
	}); err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{"success": true})
}

// DeleteTicket - Remove an owned ticket from the marketplace
func (h *MarketHandler) DeleteTicket(e *core.RequestEvent) error {
	username := e.Request.Header.Get("X-Username")
	ticketID := e.Request.PathValue("ticketId")

	if err := h.marketService.Delete(e.Request.Context(), username, ticketID); err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{"success": true})
}
