package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"ticket-exchange/internal/status"
	"ticket-exchange/models"

	"github.com/go-redis/redismock/v9"
	"github.com/pocketbase/dbx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListings_OnlyResaleTickets(t *testing.T) {
	store := newFakeTicketStore(
		&models.Ticket{ID: "1", Owner: "alice", Resale: true, Price: 100},
		&models.Ticket{ID: "2", Owner: "bob", Resale: false, Price: 50},
		&models.Ticket{ID: "3", Owner: "carol", Resale: false, Sold: true, Price: 70},
	)
	svc := NewMarketService(store, newFakeLedger(), nil, nil)

	listings, err := svc.Listings(context.Background())
	require.NoError(t, err)

	require.Len(t, listings, 1)
	assert.Equal(t, "1", listings[0].ID)
}

func TestListings_Empty(t *testing.T) {
	svc := NewMarketService(newFakeTicketStore(), newFakeLedger(), nil, nil)

	listings, err := svc.Listings(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, listings)
	assert.Empty(t, listings)
}

func TestListings_CacheHitSkipsStore(t *testing.T) {
	cached := []*models.Ticket{{ID: "9", Owner: "alice", Resale: true, Price: 10}}
	raw, err := json.Marshal(cached)
	require.NoError(t, err)

	db, mock := redismock.NewClientMock()
	mock.ExpectGet("listing:resale").SetVal(string(raw))

	store := newFakeTicketStore()
	store.findErr = assert.AnError // the store must not be touched
	svc := NewMarketService(store, newFakeLedger(), NewListingCache(db, 30*time.Second), nil)

	listings, err := svc.Listings(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "9", listings[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListings_CacheMissFillsCache(t *testing.T) {
	store := newFakeTicketStore(
		&models.Ticket{ID: "1", Owner: "alice", Resale: true, Price: 100},
	)

	expected, err := store.FindMany(context.Background(), dbx.HashExp{"resale": true})
	require.NoError(t, err)
	raw, err := json.Marshal(expected)
	require.NoError(t, err)

	db, mock := redismock.NewClientMock()
	mock.ExpectGet("listing:resale").RedisNil()
	mock.ExpectSet("listing:resale", raw, 30*time.Second).SetVal("OK")

	svc := NewMarketService(store, newFakeLedger(), NewListingCache(db, 30*time.Second), nil)

	listings, err := svc.Listings(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOwnedBy_IncludesListedAndSold(t *testing.T) {
	store := newFakeTicketStore(
		&models.Ticket{ID: "1", Owner: "alice", Resale: true},
		&models.Ticket{ID: "2", Owner: "alice", Sold: true},
		&models.Ticket{ID: "3", Owner: "alice"},
		&models.Ticket{ID: "4", Owner: "bob"},
	)
	svc := NewMarketService(store, newFakeLedger(), nil, nil)

	tickets, err := svc.OwnedBy(context.Background(), "alice")
	require.NoError(t, err)
	assert.Len(t, tickets, 3)

	_, err = svc.OwnedBy(context.Background(), "")
	assert.True(t, status.IsValidation(err))
}

func TestMint_CreatesListedTicket(t *testing.T) {
	store := newFakeTicketStore()
	ledger := newFakeLedger(&models.Account{Username: "alice", Balance: 1000})
	svc := NewMarketService(store, ledger, nil, nil)

	ticket, err := svc.Mint(context.Background(), "alice", models.TicketFields{
		Type: "vip", Event: "gig", Date: "2026-09-01", Price: 100,
	}, "img.png")
	require.NoError(t, err)

	assert.NotEmpty(t, ticket.ID)
	assert.Equal(t, "alice", ticket.Owner)
	assert.True(t, ticket.Resale)
	assert.False(t, ticket.Sold)
	assert.Equal(t, int64(100), ticket.Price)
	assert.Zero(t, ticket.OriginalPrice)
	assert.Empty(t, ticket.OriginalOwner)
	assert.Empty(t, ticket.Origin)
	assert.NotEmpty(t, ticket.CreatedAt)

	assert.NotNil(t, store.byID(ticket.ID))
}

func TestMint_UnknownOwnerRejected(t *testing.T) {
	svc := NewMarketService(newFakeTicketStore(), newFakeLedger(), nil, nil)

	_, err := svc.Mint(context.Background(), "ghost", models.TicketFields{
		Type: "vip", Event: "gig", Date: "2026-09-01", Price: 100,
	}, "")
	assert.True(t, status.IsValidation(err))
}

func TestMint_InvalidFieldsRejected(t *testing.T) {
	ledger := newFakeLedger(&models.Account{Username: "alice"})
	svc := NewMarketService(newFakeTicketStore(), ledger, nil, nil)
	ctx := context.Background()

	_, err := svc.Mint(ctx, "alice", models.TicketFields{Event: "gig", Date: "d", Price: 1}, "")
	assert.True(t, status.IsValidation(err))

	_, err = svc.Mint(ctx, "alice", models.TicketFields{Type: "vip", Event: "gig", Date: "d", Price: 0}, "")
	assert.True(t, status.IsValidation(err))
}

func TestDelete_RemovesOwnedTicket(t *testing.T) {
	store := newFakeTicketStore(&models.Ticket{ID: "1", Owner: "alice"})
	svc := NewMarketService(store, newFakeLedger(), nil, nil)

	require.NoError(t, svc.Delete(context.Background(), "alice", "1"))
	assert.Equal(t, 0, store.count())
}

func TestDelete_SoldTicketRetained(t *testing.T) {
	store := newFakeTicketStore(&models.Ticket{ID: "1", Owner: "alice", Sold: true})
	svc := NewMarketService(store, newFakeLedger(), nil, nil)

	err := svc.Delete(context.Background(), "alice", "1")
	assert.True(t, status.IsValidation(err))
	assert.Equal(t, 1, store.count())
}

func TestDelete_NonOwnerNotFound(t *testing.T) {
	store := newFakeTicketStore(&models.Ticket{ID: "1", Owner: "alice"})
	svc := NewMarketService(store, newFakeLedger(), nil, nil)

	err := svc.Delete(context.Background(), "mallory", "1")
	assert.True(t, status.IsNotFound(err))
	assert.Equal(t, 1, store.count())
}
