package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicket_JSONShape(t *testing.T) {
	ticket := Ticket{
		ID:        "1756500000000",
		Type:      "vip",
		Event:     "gig",
		Date:      "2026-09-01",
		Price:     100,
		Owner:     "alice",
		CreatedAt: "2026-08-30T10:00:00Z",
		Resale:    true,
	}

	raw, err := json.Marshal(ticket)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	// The public id key is "id", not "ticket_id".
	assert.Equal(t, "1756500000000", decoded["id"])
	assert.NotContains(t, decoded, "ticket_id")

	// Fork metadata is omitted until set.
	assert.NotContains(t, decoded, "previous_owner")
	assert.NotContains(t, decoded, "purchase_date")
	assert.NotContains(t, decoded, "original_price")
	assert.NotContains(t, decoded, "origin")
}

func TestAccount_PasswordHashNeverSerialized(t *testing.T) {
	acc := Account{Username: "alice", PasswordHash: "$2a$10$secret", Balance: 1000}

	raw, err := json.Marshal(acc)
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "secret")
	assert.Contains(t, string(raw), `"username":"alice"`)
	assert.Contains(t, string(raw), `"balance":1000`)
}
