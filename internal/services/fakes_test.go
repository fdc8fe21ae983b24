package services

import (
	"context"
	"fmt"
	"sync"

	"ticket-exchange/models"

	"github.com/pocketbase/dbx"
)

// fakeTicketStore is an in-memory TicketStore with the same observable
// semantics as the real one: no transactions, filter-matched lookups,
// honest row counts.
type fakeTicketStore struct {
	mu      sync.Mutex
	tickets []*models.Ticket

	findErr   error
	insertErr error
	deleteErr error
	updateErr error
}

func newFakeTicketStore(tickets ...*models.Ticket) *fakeTicketStore {
	s := &fakeTicketStore{}
	for _, t := range tickets {
		copied := *t
		s.tickets = append(s.tickets, &copied)
	}
	return s
}

func matches(t *models.Ticket, filter dbx.HashExp) bool {
	for column, want := range filter {
		var got any
		switch column {
		case "ticket_id":
			got = t.ID
		case "type":
			got = t.Type
		case "event":
			got = t.Event
		case "date":
			got = t.Date
		case "price":
			got = t.Price
		case "owner":
			got = t.Owner
		case "resale":
			got = t.Resale
		case "sold":
			got = t.Sold
		case "original_price":
			got = t.OriginalPrice
		case "original_owner":
			got = t.OriginalOwner
		case "origin":
			got = t.Origin
		default:
			panic(fmt.Sprintf("fake store: unknown filter column %q", column))
		}
		if got != want {
			return false
		}
	}
	return true
}

func applyFields(t *models.Ticket, fields dbx.Params) {
	for column, value := range fields {
		switch column {
		case "type":
			t.Type = value.(string)
		case "event":
			t.Event = value.(string)
		case "date":
			t.Date = value.(string)
		case "price":
			t.Price = value.(int64)
		case "resale":
			t.Resale = value.(bool)
		case "sold":
			t.Sold = value.(bool)
		case "updated_at":
			t.UpdatedAt = value.(string)
		default:
			panic(fmt.Sprintf("fake store: unknown update column %q", column))
		}
	}
}

func (s *fakeTicketStore) FindOne(ctx context.Context, filter dbx.HashExp) (*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	for _, t := range s.tickets {
		if matches(t, filter) {
			copied := *t
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeTicketStore) FindMany(ctx context.Context, filter dbx.HashExp) ([]*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	var out []*models.Ticket
	for _, t := range s.tickets {
		if matches(t, filter) {
			copied := *t
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *fakeTicketStore) Insert(ctx context.Context, t *models.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	copied := *t
	s.tickets = append(s.tickets, &copied)
	return nil
}

func (s *fakeTicketStore) DeleteOne(ctx context.Context, filter dbx.HashExp) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return 0, s.deleteErr
	}
	for i, t := range s.tickets {
		if matches(t, filter) {
			s.tickets = append(s.tickets[:i], s.tickets[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (s *fakeTicketStore) DeleteMany(ctx context.Context, filter dbx.HashExp) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return 0, s.deleteErr
	}
	var kept []*models.Ticket
	var deleted int64
	for _, t := range s.tickets {
		if matches(t, filter) {
			deleted++
			continue
		}
		kept = append(kept, t)
	}
	s.tickets = kept
	return deleted, nil
}

func (s *fakeTicketStore) UpdateOne(ctx context.Context, filter dbx.HashExp, fields dbx.Params) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return 0, s.updateErr
	}
	for _, t := range s.tickets {
		if matches(t, filter) {
			applyFields(t, fields)
			return 1, nil
		}
	}
	return 0, nil
}

// byID returns the stored record with the given public id, nil if absent.
func (s *fakeTicketStore) byID(id string) *models.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tickets {
		if t.ID == id {
			copied := *t
			return &copied
		}
	}
	return nil
}

func (s *fakeTicketStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tickets)
}

// fakeLedger is an in-memory AccountLedger. Credit and debit are separate
// writes, like the real one.
type fakeLedger struct {
	mu       sync.Mutex
	accounts map[string]*models.Account

	findErr   error
	creditErr error
	debitErr  error
}

func newFakeLedger(accounts ...*models.Account) *fakeLedger {
	l := &fakeLedger{accounts: map[string]*models.Account{}}
	for _, acc := range accounts {
		copied := *acc
		l.accounts[acc.Username] = &copied
	}
	return l
}

func (l *fakeLedger) FindAccount(ctx context.Context, username string) (*models.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.findErr != nil {
		return nil, l.findErr
	}
	acc, ok := l.accounts[username]
	if !ok {
		return nil, nil
	}
	copied := *acc
	return &copied, nil
}

func (l *fakeLedger) CreateAccount(ctx context.Context, acc *models.Account) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	copied := *acc
	l.accounts[acc.Username] = &copied
	return nil
}

func (l *fakeLedger) CreditBalance(ctx context.Context, username string, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.creditErr != nil {
		return l.creditErr
	}
	if acc, ok := l.accounts[username]; ok {
		acc.Balance += amount
	}
	return nil
}

func (l *fakeLedger) DebitBalance(ctx context.Context, username string, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.debitErr != nil {
		return l.debitErr
	}
	if acc, ok := l.accounts[username]; ok {
		acc.Balance -= amount
	}
	return nil
}

func (l *fakeLedger) balance(username string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if acc, ok := l.accounts[username]; ok {
		return acc.Balance
	}
	return 0
}
