package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"ticket-exchange/models"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingCache_GetMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewListingCache(db, 30*time.Second)

	mock.ExpectGet("listing:resale").RedisNil()

	tickets, ok := cache.Get(context.Background())

	assert.False(t, ok)
	assert.Nil(t, tickets)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingCache_SetThenGet(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewListingCache(db, 30*time.Second)

	tickets := []*models.Ticket{
		{ID: "100", Type: "vip", Event: "gig", Price: 80, Owner: "alice", Resale: true},
	}
	raw, err := json.Marshal(tickets)
	require.NoError(t, err)

	mock.ExpectSet("listing:resale", raw, 30*time.Second).SetVal("OK")
	cache.Set(context.Background(), tickets)

	mock.ExpectGet("listing:resale").SetVal(string(raw))
	cached, ok := cache.Get(context.Background())

	assert.True(t, ok)
	require.Len(t, cached, 1)
	assert.Equal(t, "100", cached[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingCache_CorruptEntryDropped(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewListingCache(db, 30*time.Second)

	mock.ExpectGet("listing:resale").SetVal("{not json")
	mock.ExpectDel("listing:resale").SetVal(1)

	_, ok := cache.Get(context.Background())

	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingCache_Invalidate(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewListingCache(db, 30*time.Second)

	mock.ExpectDel("listing:resale").SetVal(1)
	cache.Invalidate(context.Background())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingCache_NilSafe(t *testing.T) {
	var cache *ListingCache

	_, ok := cache.Get(context.Background())
	assert.False(t, ok)

	// No panic on the write paths either.
	cache.Set(context.Background(), nil)
	cache.Invalidate(context.Background())
}
