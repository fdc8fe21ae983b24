package services

import (
	"context"

	"ticket-exchange/internal/status"
	"ticket-exchange/models"
	"ticket-exchange/monitoring"
	"ticket-exchange/utils"

	"github.com/pocketbase/dbx"
)

// EditService updates the descriptive fields of an owned, unsold ticket.
type EditService struct {
	store TicketStore
	cache *ListingCache
}

func NewEditService(store TicketStore, cache *ListingCache) *EditService {
	return &EditService{store: store, cache: cache}
}

func (s *EditService) Edit(ctx context.Context, caller, ticketID string, fields models.TicketFields) error {
	if caller == "" || ticketID == "" ||
		fields.Type == "" || fields.Event == "" || fields.Date == "" || fields.Price <= 0 {
		return status.Validation("missing required fields")
	}

	now := utils.NowISO()

	// First choice: narrow in-place update.
	matched, err := s.store.UpdateOne(ctx,
		dbx.HashExp{"ticket_id": ticketID, "owner": caller, "sold": false},
		dbx.Params{
			"type":       fields.Type,
			"event":      fields.Event,
			"date":       fields.Date,
			"price":      fields.Price,
			"updated_at": now,
		},
	)
	if err != nil {
		monitoring.TrackOperation("edit", "error")
		return status.Internal(err, "failed to update ticket")
	}
	if matched > 0 {
		s.cache.Invalidate(ctx)
		monitoring.TrackOperation("edit", "success")
		return nil
	}

	// The narrow filter can miss on a stale flag even though the ticket
	// exists. Fall back to a move keyed only by id and owner, so the id ends
	// up with exactly one record carrying the edit.
	old, err := s.store.FindOne(ctx, dbx.HashExp{"ticket_id": ticketID, "owner": caller})
	if err != nil {
		monitoring.TrackOperation("edit", "error")
		return status.Internal(err, "failed to update ticket")
	}
	if old == nil {
		monitoring.TrackOperation("edit", "not_found")
		return status.NotFound("ticket not found or not available for editing")
	}

	if _, err := s.store.DeleteOne(ctx, dbx.HashExp{"ticket_id": ticketID, "owner": caller}); err != nil {
		monitoring.TrackOperation("edit", "error")
		return status.Internal(err, "failed to update ticket")
	}

	edited := *old
	edited.Type = fields.Type
	edited.Event = fields.Event
	edited.Date = fields.Date
	edited.Price = fields.Price
	edited.UpdatedAt = now

	if err := s.store.Insert(ctx, &edited); err != nil {
		monitoring.TrackOperation("edit", "error")
		return status.Internal(err, "failed to update ticket")
	}

	s.cache.Invalidate(ctx)
	monitoring.TrackOperation("edit", "success")
	return nil
}
