package models

// Ticket is one live (or retired) marketplace record. The same public id is
// kept across resale hops; a purchase retires the id and mints a fresh one
// for the buyer.
//
// Two back-pointer sets coexist:
//   - OriginalPrice/OriginalOwner point toward the mint record and carry the
//     price ceiling for every later resale (0 / "" on mint records);
//   - PreviousOwner/PurchaseDate are set on records minted by a purchase.
//
// Origin holds the record id this record descended from. It is stamped on
// every resale and purchase hop; records imported from the legacy system may
// lack it and fall back to the field-matched ancestor walk.
type Ticket struct {
	ID            string `db:"ticket_id" json:"id"`
	Type          string `db:"type" json:"type"`
	Event         string `db:"event" json:"event"`
	Date          string `db:"date" json:"date"`
	Price         int64  `db:"price" json:"price"`
	Image         string `db:"image" json:"image,omitempty"`
	Owner         string `db:"owner" json:"owner"`
	CreatedAt     string `db:"created_at" json:"created_at"`
	Resale        bool   `db:"resale" json:"resale"`
	Sold          bool   `db:"sold" json:"sold"`
	OriginalPrice int64  `db:"original_price" json:"original_price,omitempty"`
	OriginalOwner string `db:"original_owner" json:"original_owner,omitempty"`
	PreviousOwner string `db:"previous_owner" json:"previous_owner,omitempty"`
	PurchaseDate  string `db:"purchase_date" json:"purchase_date,omitempty"`
	UpdatedAt     string `db:"updated_at" json:"updated_at,omitempty"`
	Origin        string `db:"origin" json:"origin,omitempty"`
}

// TicketFields is the editable subset of a ticket.
type TicketFields struct {
	Type  string `json:"type"`
	Event string `json:"event"`
	Date  string `json:"date"`
	Price int64  `json:"price"`
}
