package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

func GenerateCode(n int) (string, error) {
	// Make a slice of nBytes random bytes.
	byt := make([]byte, n)

	// Read into the slice.
	if _, err := rand.Read(byt); err != nil {
		return "", err
	}

	// Return the hexadecimal string.
	return strings.ToUpper(hex.EncodeToString(byt)), nil
}

var lastTicketID atomic.Int64

// NewTicketID mints a public ticket id. Ids are millisecond timestamps,
// matching the ids already in circulation; the counter bump keeps two mints
// inside the same millisecond from colliding.
func NewTicketID() string {
	now := time.Now().UnixMilli()
	for {
		last := lastTicketID.Load()
		if now <= last {
			now = last + 1
		}
		if lastTicketID.CompareAndSwap(last, now) {
			return strconv.FormatInt(now, 10)
		}
	}
}

// NowISO returns the current time the way records store timestamps.
func NowISO() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
