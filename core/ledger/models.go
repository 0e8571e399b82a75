package ledger

import "time"

// Transaction types
const (
	TypeAward    = "award"
	TypeSpend    = "spend"
	TypeAdjust   = "adjustment"
	TypePurchase = "purchase"
)

// Transaction is one append-only entry in a user's paras-stone ledger.
// Entries are never updated or deleted; balances are projections.
type Transaction struct {
	ID        int       `json:"-"`
	UserID    int       `json:"-"`
	Amount    int       `json:"amount"`
	Type      string    `json:"transaction_type"`
	Timestamp time.Time `json:"timestamp"` // UTC, set at append time
	Reason    string    `json:"reason"`
}

// Filter narrows a transaction listing.
type Filter struct {
	UserID *int
	Type   string
}
