package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ticket-exchange/models"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/tools/security"
)

const ticketsTable = "tickets"

// TicketStore gives the engines the record-store primitives they are
// specified against: point/predicate lookups, insert, and single-row
// delete/update that report how many rows they hit. Every call commits
// independently; there is no transaction here, and the engines are written
// to survive that.
type TicketStore struct {
	db dbx.Builder
}

func NewTicketStore(db dbx.Builder) *TicketStore {
	return &TicketStore{db: db}
}

// FindOne returns the first record matching filter, or nil when nothing
// matches.
func (s *TicketStore) FindOne(ctx context.Context, filter dbx.HashExp) (*models.Ticket, error) {
	t := &models.Ticket{}
	err := s.db.Select(ticketColumns...).
		From(ticketsTable).
		Where(filter).
		Limit(1).
		WithContext(ctx).
		One(t)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ticket store: find one: %w", err)
	}
	return t, nil
}

func (s *TicketStore) FindMany(ctx context.Context, filter dbx.HashExp) ([]*models.Ticket, error) {
	var tickets []*models.Ticket
	q := s.db.Select(ticketColumns...).
		From(ticketsTable).
		OrderBy("created_at ASC").
		WithContext(ctx)
	if len(filter) > 0 {
		q.Where(filter)
	}
	if err := q.All(&tickets); err != nil {
		return nil, fmt.Errorf("ticket store: find many: %w", err)
	}
	return tickets, nil
}

func (s *TicketStore) Insert(ctx context.Context, t *models.Ticket) error {
	_, err := s.db.Insert(ticketsTable, dbx.Params{
		"id":             security.RandomString(15),
		"ticket_id":      t.ID,
		"type":           t.Type,
		"event":          t.Event,
		"date":           t.Date,
		"price":          t.Price,
		"image":          t.Image,
		"owner":          t.Owner,
		"created_at":     t.CreatedAt,
		"resale":         t.Resale,
		"sold":           t.Sold,
		"original_price": t.OriginalPrice,
		"original_owner": t.OriginalOwner,
		"previous_owner": t.PreviousOwner,
		"purchase_date":  t.PurchaseDate,
		"updated_at":     t.UpdatedAt,
		"origin":         t.Origin,
	}).WithContext(ctx).Execute()
	if err != nil {
		return fmt.Errorf("ticket store: insert: %w", err)
	}
	return nil
}

// DeleteOne removes at most one record matching filter and returns how many
// rows were removed. The row is located first and deleted by primary key, so
// a concurrent delete of the same row yields a zero count rather than eating
// a different record.
func (s *TicketStore) DeleteOne(ctx context.Context, filter dbx.HashExp) (int64, error) {
	pk, err := s.lookupPK(ctx, filter)
	if err != nil {
		return 0, err
	}
	if pk == "" {
		return 0, nil
	}
	res, err := s.db.Delete(ticketsTable, dbx.HashExp{"id": pk}).WithContext(ctx).Execute()
	if err != nil {
		return 0, fmt.Errorf("ticket store: delete one: %w", err)
	}
	return res.RowsAffected()
}

func (s *TicketStore) DeleteMany(ctx context.Context, filter dbx.HashExp) (int64, error) {
	res, err := s.db.Delete(ticketsTable, filter).WithContext(ctx).Execute()
	if err != nil {
		return 0, fmt.Errorf("ticket store: delete many: %w", err)
	}
	return res.RowsAffected()
}

// UpdateOne applies fields to at most one record matching filter and returns
// the matched row count (0 when the filter hit nothing). The row is located
// first and updated by primary key, so unlike a predicate-atomic update the
// filter is only a selector: a row deleted between lookup and write reports
// zero, but a row mutated out of the filter in that window still takes the
// update. Callers that need the filtered state to hold must tolerate the
// stale write.
func (s *TicketStore) UpdateOne(ctx context.Context, filter dbx.HashExp, fields dbx.Params) (int64, error) {
	pk, err := s.lookupPK(ctx, filter)
	if err != nil {
		return 0, err
	}
	if pk == "" {
		return 0, nil
	}
	res, err := s.db.Update(ticketsTable, fields, dbx.HashExp{"id": pk}).WithContext(ctx).Execute()
	if err != nil {
		return 0, fmt.Errorf("ticket store: update one: %w", err)
	}
	return res.RowsAffected()
}

func (s *TicketStore) lookupPK(ctx context.Context, filter dbx.HashExp) (string, error) {
	var row struct {
		ID string `db:"id"`
	}
	err := s.db.Select("id").
		From(ticketsTable).
		Where(filter).
		Limit(1).
		WithContext(ctx).
		One(&row)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("ticket store: lookup: %w", err)
	}
	return row.ID, nil
}

var ticketColumns = []string{
	"ticket_id", "type", "event", "date", "price", "image", "owner",
	"created_at", "resale", "sold", "original_price", "original_owner",
	"previous_owner", "purchase_date", "updated_at", "origin",
}
