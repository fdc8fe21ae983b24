package services

import (
	"context"
	"log/slog"

	"ticket-exchange/internal/status"
	"ticket-exchange/monitoring"
	"ticket-exchange/utils"

	"github.com/pocketbase/dbx"
)

// ResaleService lists an owned ticket for resale. The store has no atomic
// conditional update, so listing is a move: delete the exact eligible
// record, then reinsert it flagged for resale under the same id.
type ResaleService struct {
	store    TicketStore
	resolver *LineageResolver
	cache    *ListingCache
	notifier *Notifier
}

func NewResaleService(store TicketStore, resolver *LineageResolver, cache *ListingCache, notifier *Notifier) *ResaleService {
	return &ResaleService{
		store:    store,
		resolver: resolver,
		cache:    cache,
		notifier: notifier,
	}
}

func (s *ResaleService) Resell(ctx context.Context, caller, ticketID string, newPrice int64) error {
	if caller == "" || ticketID == "" {
		return status.Validation("missing username or ticket id")
	}

	eligible := dbx.HashExp{
		"ticket_id": ticketID,
		"owner":     caller,
		"resale":    false,
		"sold":      false,
	}

	ticket, err := s.store.FindOne(ctx, eligible)
	if err != nil {
		monitoring.TrackOperation("resale", "error")
		return status.Internal(err, "failed to look up ticket")
	}
	if ticket == nil {
		monitoring.TrackOperation("resale", "not_found")
		return status.NotFound("ticket not found or not available for resale")
	}

	// The cap is always the very first mint price in the chain, not the
	// price of the previous hop.
	rootPrice := s.resolver.RootPrice(ctx, ticket)

	if newPrice > rootPrice {
		monitoring.TrackOperation("resale", "validation")
		return status.Validationf("resale price (%d) cannot exceed original price (%d)", newPrice, rootPrice)
	}
	if newPrice <= 0 {
		monitoring.TrackOperation("resale", "validation")
		return status.Validation("price must be greater than 0")
	}

	deleted, err := s.store.DeleteOne(ctx, eligible)
	if err != nil {
		monitoring.TrackOperation("resale", "error")
		return status.Internal(err, "failed to list ticket for resale")
	}
	if deleted == 0 {
		// A concurrent resale, purchase, or edit took the record between the
		// lookup and the delete.
		monitoring.TrackOperation("resale", "conflict")
		return status.Conflict("ticket already listed, sold, or not found")
	}

	// Edge case cleanup: drop any lingering unlisted duplicates of this id.
	if _, err := s.store.DeleteMany(ctx, dbx.HashExp{
		"ticket_id": ticketID,
		"owner":     caller,
		"resale":    false,
	}); err != nil {
		slog.Warn("resale: duplicate cleanup failed", "ticket_id", ticketID, "error", err)
	}

	listing := *ticket
	listing.Price = newPrice
	listing.Resale = true
	listing.OriginalPrice = rootPrice
	if listing.OriginalOwner == "" {
		listing.OriginalOwner = ticket.Owner
	}
	listing.Origin = ticket.ID
	listing.CreatedAt = utils.NowISO()

	// A crash between the delete above and this insert leaves the id with no
	// live record. The store gives us nothing to close that window with; the
	// gap is documented behavior, not masked.
	if err := s.store.Insert(ctx, &listing); err != nil {
		monitoring.TrackOperation("resale", "error")
		return status.Internal(err, "failed to list ticket for resale")
	}

	s.cache.Invalidate(ctx)
	s.notifier.NotifyMarketplace(map[string]any{
		"type":   "listing_created",
		"ticket": listing.ID,
		"price":  listing.Price,
	})
	monitoring.TrackOperation("resale", "success")

	return nil
}
