package models

// Account holds a marketplace balance. Accounts are created at registration,
// mutated only by debit/credit, and never deleted.
type Account struct {
	Username     string `db:"username" json:"username"`
	PasswordHash string `db:"password_hash" json:"-"`
	Balance      int64  `db:"balance" json:"balance"`
}

// TopUpSession is a pending bank deposit awaiting the gateway notification.
type TopUpSession struct {
	ID       string `json:"topup_id"`
	Username string `json:"username"`
	Amount   int64  `json:"amount"`
	Status   string `json:"status"` // pending, completed
	QRCode   string `json:"qr_code,omitempty"`
}
