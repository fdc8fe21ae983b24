package services

import (
	"context"
	"testing"

	"ticket-exchange/models"

	"github.com/stretchr/testify/assert"
)

func TestRootPrice_MintRecord(t *testing.T) {
	store := newFakeTicketStore()
	resolver := NewLineageResolver(store)

	ticket := &models.Ticket{ID: "1", Type: "vip", Event: "gig", Date: "2026-09-01", Price: 100, Owner: "alice"}

	assert.Equal(t, int64(100), resolver.RootPrice(context.Background(), ticket))
}

func TestRootPrice_OriginStamped(t *testing.T) {
	// Records with an origin reference already carry the authoritative root;
	// no store access should be needed.
	store := newFakeTicketStore()
	store.findErr = assert.AnError
	resolver := NewLineageResolver(store)

	ticket := &models.Ticket{
		ID:            "2",
		Price:         80,
		Owner:         "bob",
		OriginalPrice: 100,
		OriginalOwner: "alice",
		Origin:        "1",
	}

	assert.Equal(t, int64(100), resolver.RootPrice(context.Background(), ticket))
}

func TestRootPrice_LegacyWalk(t *testing.T) {
	// Three-hop legacy chain without origin references. The mint price must
	// win over every intermediate hop's price.
	mint := &models.Ticket{
		ID: "1", Type: "vip", Event: "gig", Date: "2026-09-01",
		Price: 100, Owner: "alice", Sold: true,
	}
	hop1 := &models.Ticket{
		ID: "2", Type: "vip", Event: "gig", Date: "2026-09-01",
		Price: 90, Owner: "bob", Sold: true,
		OriginalPrice: 100, OriginalOwner: "alice",
	}
	hop2 := &models.Ticket{
		ID: "3", Type: "vip", Event: "gig", Date: "2026-09-01",
		Price: 70, Owner: "carol",
		OriginalPrice: 90, OriginalOwner: "bob",
	}
	store := newFakeTicketStore(mint, hop1, hop2)
	resolver := NewLineageResolver(store)

	// Walking from hop2: ancestor hop1 carries original_price 100, whose
	// ancestor is the mint record and ends the chain.
	assert.Equal(t, int64(100), resolver.RootPrice(context.Background(), hop2))
}

func TestRootPrice_BrokenChainKeepsLastKnown(t *testing.T) {
	// The ancestor referenced by the back-pointers does not exist. The walk
	// must stop and keep the last value instead of failing.
	orphan := &models.Ticket{
		ID: "9", Type: "vip", Event: "gig", Date: "2026-09-01",
		Price: 50, Owner: "dave",
		OriginalPrice: 120, OriginalOwner: "ghost",
	}
	store := newFakeTicketStore(orphan)
	resolver := NewLineageResolver(store)

	assert.Equal(t, int64(120), resolver.RootPrice(context.Background(), orphan))
}

func TestRootPrice_StoreErrorKeepsLastKnown(t *testing.T) {
	orphan := &models.Ticket{
		ID: "9", Type: "vip", Event: "gig", Date: "2026-09-01",
		Price: 50, Owner: "dave",
		OriginalPrice: 120, OriginalOwner: "bob",
	}
	store := newFakeTicketStore(orphan)
	store.findErr = assert.AnError
	resolver := NewLineageResolver(store)

	assert.Equal(t, int64(120), resolver.RootPrice(context.Background(), orphan))
}
