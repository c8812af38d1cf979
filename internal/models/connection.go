package models

import (
	"strings"
	"time"
)

const (
	ConnectionPending  = "pending"
	ConnectionAccepted = "accepted"
	ConnectionRejected = "rejected"
)

// Relationship of a pair as seen from one side, derived from the single
// connection record (if any) between the two users.
const (
	StatusNone      = "none"
	StatusSent      = "sent"
	StatusReceived  = "received"
	StatusConnected = "connected"
)

type Connection struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	RequesterID string    `bson:"requester_id" json:"requester_id"`
	ReceiverID  string    `bson:"receiver_id" json:"receiver_id"`
	// PairKey is the sorted "a:b" form of the two user ids. A unique index
	// over it makes concurrent requests for the same pair collide at the
	// storage layer instead of racing past an application-level check.
	PairKey   string    `bson:"pair_key" json:"-"`
	Status    string    `bson:"status" json:"status"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

func (c *Connection) Involves(userID string) bool {
	return c.RequesterID == userID || c.ReceiverID == userID
}

// PairKey builds the order-independent key for a user pair.
func PairKey(a, b string) string {
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return a + ":" + b
}
