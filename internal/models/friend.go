package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "pending"
	FriendRequestAccepted FriendRequestStatus = "accepted"
)

// FriendRequest is a directed proposal from Sender to Recipient. PairKey is
// identical for both directions of the same pair and carries a unique index.
type FriendRequest struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	Sender    primitive.ObjectID  `bson:"sender" json:"sender"`
	Recipient primitive.ObjectID  `bson:"recipient" json:"recipient"`
	Status    FriendRequestStatus `bson:"status" json:"status"`
	PairKey   string              `bson:"pair_key" json:"-"`
	CreatedAt time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updated_at" json:"updatedAt"`
}

// PairKey returns the order-independent key for the pair (a, b).
func PairKey(a, b primitive.ObjectID) string {
	x, y := a.Hex(), b.Hex()
	if x > y {
		x, y = y, x
	}
	return x + ":" + y
}

// FriendRequestView is a request with both parties resolved to their
// public profiles.
type FriendRequestView struct {
	ID        primitive.ObjectID  `json:"_id"`
	Sender    PublicUser          `json:"sender"`
	Recipient PublicUser          `json:"recipient"`
	Status    FriendRequestStatus `json:"status"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}
