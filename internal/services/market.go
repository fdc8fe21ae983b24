package services

import (
	"context"
	"log/slog"

	"ticket-exchange/internal/status"
	"ticket-exchange/models"
	"ticket-exchange/monitoring"
	"ticket-exchange/utils"

	"github.com/pocketbase/dbx"
)

// MarketService covers the plain CRUD side of the marketplace: browsing the
// listing, minting new tickets, and deleting owned ones.
type MarketService struct {
	store    TicketStore
	ledger   AccountLedger
	cache    *ListingCache
	notifier *Notifier
}

func NewMarketService(store TicketStore, ledger AccountLedger, cache *ListingCache, notifier *Notifier) *MarketService {
	return &MarketService{
		store:    store,
		ledger:   ledger,
		cache:    cache,
		notifier: notifier,
	}
}

// Listings returns every ticket currently purchasable, cache first.
func (s *MarketService) Listings(ctx context.Context) ([]*models.Ticket, error) {
	if tickets, ok := s.cache.Get(ctx); ok {
		return tickets, nil
	}

	tickets, err := s.store.FindMany(ctx, dbx.HashExp{"resale": true})
	if err != nil {
		return nil, status.Internal(err, "failed to load listings")
	}
	if tickets == nil {
		tickets = []*models.Ticket{}
	}

	s.cache.Set(ctx, tickets)
	return tickets, nil
}

// OwnedBy returns all tickets owned by username, listed and sold included.
func (s *MarketService) OwnedBy(ctx context.Context, username string) ([]*models.Ticket, error) {
	if username == "" {
		return nil, status.Validation("missing username")
	}

	tickets, err := s.store.FindMany(ctx, dbx.HashExp{"owner": username})
	if err != nil {
		return nil, status.Internal(err, "failed to load tickets")
	}
	if tickets == nil {
		tickets = []*models.Ticket{}
	}
	return tickets, nil
}

// Mint creates a brand-new ticket. New tickets go straight onto the listing,
// and their own price becomes the root for every later resale of the chain.
func (s *MarketService) Mint(ctx context.Context, caller string, fields models.TicketFields, image string) (*models.Ticket, error) {
	if caller == "" || fields.Type == "" || fields.Event == "" || fields.Date == "" {
		return nil, status.Validation("missing required fields")
	}
	if fields.Price < 1 {
		return nil, status.Validation("price must be greater than 0")
	}

	owner, err := s.ledger.FindAccount(ctx, caller)
	if err != nil {
		return nil, status.Internal(err, "failed to look up owner")
	}
	if owner == nil {
		return nil, status.Validation("invalid owner, please log in again")
	}

	ticket := &models.Ticket{
		ID:        utils.NewTicketID(),
		Type:      fields.Type,
		Event:     fields.Event,
		Date:      fields.Date,
		Price:     fields.Price,
		Image:     image,
		Owner:     caller,
		CreatedAt: utils.NowISO(),
		Resale:    true,
	}

	if err := s.store.Insert(ctx, ticket); err != nil {
		monitoring.TrackOperation("mint", "error")
		return nil, status.Internal(err, "failed to create ticket")
	}

	s.cache.Invalidate(ctx)
	s.notifier.NotifyMarketplace(map[string]any{
		"type":   "listing_created",
		"ticket": ticket.ID,
		"price":  ticket.Price,
	})
	monitoring.TrackOperation("mint", "success")

	return ticket, nil
}

// Delete removes an owned ticket. Sold records are history and stay put.
func (s *MarketService) Delete(ctx context.Context, caller, ticketID string) error {
	if caller == "" || ticketID == "" {
		return status.Validation("missing username or ticket id")
	}

	ticket, err := s.store.FindOne(ctx, dbx.HashExp{"ticket_id": ticketID, "owner": caller})
	if err != nil {
		monitoring.TrackOperation("delete", "error")
		return status.Internal(err, "failed to look up ticket")
	}
	if ticket == nil {
		monitoring.TrackOperation("delete", "not_found")
		return status.NotFound("ticket not found")
	}
	if ticket.Sold {
		monitoring.TrackOperation("delete", "validation")
		return status.Validation("sold tickets are retained as history")
	}

	deleted, err := s.store.DeleteOne(ctx, dbx.HashExp{"ticket_id": ticketID, "owner": caller})
	if err != nil {
		monitoring.TrackOperation("delete", "error")
		return status.Internal(err, "failed to delete ticket")
	}
	if deleted == 0 {
		monitoring.TrackOperation("delete", "conflict")
		return status.Conflict("ticket already removed")
	}

	// A listed ticket may have left lingering listed duplicates behind.
	if ticket.Resale {
		if _, err := s.store.DeleteMany(ctx, dbx.HashExp{"ticket_id": ticketID, "resale": true}); err != nil {
			slog.Warn("delete: duplicate cleanup failed", "ticket_id", ticketID, "error", err)
		}
	}

	s.cache.Invalidate(ctx)
	monitoring.TrackOperation("delete", "success")
	return nil
}
