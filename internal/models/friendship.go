package models

import (
	"time"

	"gorm.io/gorm"
)

// FriendshipStatus enumerates the states of the relationship state machine.
type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipBlocked  FriendshipStatus = "blocked"
)

// Friendship is the single relationship record between two users. User1ID is
// always the party that initiated the current state (requester or blocker),
// User2ID the addressee. PairLow/PairHigh hold the normalized unordered pair
// so a unique index can guarantee at most one row per pair without the
// double-ordering lookup an ordered composite key would require.
type Friendship struct {
	ID       uint             `gorm:"primaryKey" json:"id"`
	User1ID  uint             `gorm:"not null;index" json:"user1_id"`
	User2ID  uint             `gorm:"not null;index" json:"user2_id"`
	PairLow  uint             `gorm:"not null;uniqueIndex:idx_friendship_pair,priority:1" json:"-"`
	PairHigh uint             `gorm:"not null;uniqueIndex:idx_friendship_pair,priority:2" json:"-"`
	Status   FriendshipStatus `gorm:"size:16;not null;default:pending" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeSave keeps the normalized pair columns in sync with the directional ones.
func (f *Friendship) BeforeSave(_ *gorm.DB) error {
	f.PairLow, f.PairHigh = NormalizePair(f.User1ID, f.User2ID)
	return nil
}

// OtherUser returns the counterpart of userID in the relationship.
func (f Friendship) OtherUser(userID uint) uint {
	if f.User1ID == userID {
		return f.User2ID
	}
	return f.User1ID
}

// Involves reports whether userID is one of the two parties.
func (f Friendship) Involves(userID uint) bool {
	return f.User1ID == userID || f.User2ID == userID
}

// NormalizePair orders two user ids as (low, high).
func NormalizePair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}
