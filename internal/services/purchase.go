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

// PurchaseService transfers a listed ticket to a buyer: funds move between
// the two accounts, the listed record is retired as history, and a fresh id
// is minted for the buyer.
type PurchaseService struct {
	store    TicketStore
	ledger   AccountLedger
	cache    *ListingCache
	notifier *Notifier
}

func NewPurchaseService(store TicketStore, ledger AccountLedger, cache *ListingCache, notifier *Notifier) *PurchaseService {
	return &PurchaseService{
		store:    store,
		ledger:   ledger,
		cache:    cache,
		notifier: notifier,
	}
}

func (s *PurchaseService) Purchase(ctx context.Context, caller, ticketID string) (*models.Ticket, error) {
	if caller == "" || ticketID == "" {
		return nil, status.Validation("missing username or ticket id")
	}

	ticket, err := s.store.FindOne(ctx, dbx.HashExp{"ticket_id": ticketID, "resale": true})
	if err != nil {
		monitoring.TrackOperation("purchase", "error")
		return nil, status.Internal(err, "failed to look up ticket")
	}
	if ticket == nil {
		monitoring.TrackOperation("purchase", "not_found")
		return nil, status.NotFound("ticket not found or not available for sale")
	}

	if ticket.Owner == caller {
		monitoring.TrackOperation("purchase", "validation")
		return nil, status.Validation("cannot purchase your own ticket")
	}

	buyer, err := s.ledger.FindAccount(ctx, caller)
	if err != nil {
		monitoring.TrackOperation("purchase", "error")
		return nil, status.Internal(err, "failed to look up buyer")
	}
	if buyer == nil {
		monitoring.TrackOperation("purchase", "validation")
		return nil, status.Validation("invalid buyer, please log in again")
	}

	seller, err := s.ledger.FindAccount(ctx, ticket.Owner)
	if err != nil {
		monitoring.TrackOperation("purchase", "error")
		return nil, status.Internal(err, "failed to look up seller")
	}
	if seller == nil {
		monitoring.TrackOperation("purchase", "validation")
		return nil, status.Validation("invalid seller for this ticket")
	}

	price := ticket.Price

	// Checked before any mutation: a rejection here leaves both balances
	// untouched.
	if buyer.Balance < price {
		monitoring.TrackOperation("purchase", "validation")
		return nil, status.Validation("insufficient balance")
	}

	// From here on each step commits independently. An uninterrupted run
	// conserves funds; a crash mid-sequence leaves a transient imbalance for
	// the surrounding system to reconcile, and nothing below papers over it.
	if err := s.ledger.DebitBalance(ctx, caller, price); err != nil {
		monitoring.TrackOperation("purchase", "error")
		return nil, status.Internal(err, "failed to process purchase")
	}
	if err := s.ledger.CreditBalance(ctx, ticket.Owner, price); err != nil {
		monitoring.TrackOperation("purchase", "error")
		return nil, status.Internal(err, "failed to process purchase")
	}

	// Retire the listed record. It stays in the store as history: a terminal
	// leaf that never reappears in the listing.
	matched, err := s.store.UpdateOne(ctx,
		dbx.HashExp{"ticket_id": ticketID},
		dbx.Params{"sold": true, "resale": false},
	)
	if err != nil {
		monitoring.TrackOperation("purchase", "error")
		return nil, status.Internal(err, "failed to process purchase")
	}
	if matched == 0 {
		slog.Warn("purchase: listing vanished after funds moved",
			"ticket_id", ticketID,
			"buyer", caller,
			"seller", ticket.Owner,
		)
	}

	owned := *ticket
	owned.ID = utils.NewTicketID()
	owned.Owner = caller
	owned.Resale = false
	owned.Sold = false
	owned.PreviousOwner = ticket.Owner
	owned.PurchaseDate = utils.NowISO()
	owned.Origin = ticket.ID
	// original_price and original_owner ride along unchanged, so the root
	// price ceiling survives the ownership fork.

	if err := s.store.Insert(ctx, &owned); err != nil {
		monitoring.TrackOperation("purchase", "error")
		return nil, status.Internal(err, "failed to process purchase")
	}

	s.cache.Invalidate(ctx)
	s.notifier.NotifyUser(seller.Username, map[string]any{
		"type":   "ticket_sold",
		"ticket": ticketID,
		"buyer":  caller,
		"price":  price,
	})
	s.notifier.NotifyUser(caller, map[string]any{
		"type":   "purchase_completed",
		"ticket": owned.ID,
		"price":  price,
	})
	monitoring.TrackOperation("purchase", "success")
	monitoring.TrackPurchase(price)

	return &owned, nil
}
