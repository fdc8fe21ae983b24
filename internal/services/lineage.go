package services

import (
	"context"

	"ticket-exchange/models"
	"ticket-exchange/monitoring"

	"github.com/pocketbase/dbx"
)

// LineageResolver computes the mint-time (root) price of a ticket, the
// ceiling for every resale of it.
type LineageResolver struct {
	store TicketStore
}

func NewLineageResolver(store TicketStore) *LineageResolver {
	return &LineageResolver{store: store}
}

// RootPrice resolves the root price of t.
//
// Records written by this system denormalize the root into original_price
// and carry an explicit origin reference, so resolution is a single field
// read. Records imported from the legacy system may carry only the
// field-matched back-pointers; those are resolved by walking ancestors and
// keeping the last known value when the chain breaks or goes ambiguous. The
// walk never fails the caller.
func (r *LineageResolver) RootPrice(ctx context.Context, t *models.Ticket) int64 {
	root := t.Price
	if t.OriginalPrice > 0 {
		root = t.OriginalPrice
	}

	// Mint records have no ancestors; origin-stamped records already carry
	// the authoritative root.
	if t.Origin != "" || t.OriginalOwner == "" || t.OriginalPrice == 0 {
		return root
	}

	depth := 0
	ancestor := t
	for ancestor.OriginalPrice > 0 && ancestor.OriginalOwner != "" {
		root = ancestor.OriginalPrice

		// The legacy data has no parent key; the ancestor is whichever
		// record matches the inherited fields. A miss ends the walk with the
		// best-known value.
		next, err := r.store.FindOne(ctx, dbx.HashExp{
			"owner": ancestor.OriginalOwner,
			"event": ancestor.Event,
			"date":  ancestor.Date,
			"type":  ancestor.Type,
			"price": ancestor.OriginalPrice,
		})
		if err != nil || next == nil {
			break
		}
		ancestor = next
		depth++
	}

	monitoring.TrackLineageWalk(depth)
	return root
}
