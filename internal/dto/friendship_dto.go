package dto

import (
	"time"

	"github.com/daniswara/kumpul-api/internal/models"
)

// FriendRequestCreate is the payload for sending a friend request.
type FriendRequestCreate struct {
	TargetID uint `json:"target_id" validate:"required"`
}

// FriendshipResponse is the serialized relationship row. RequesterID is the
// party that initiated the current state.
type FriendshipResponse struct {
	ID          uint      `json:"id"`
	RequesterID uint      `json:"requester_id"`
	AddresseeID uint      `json:"addressee_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewFriendshipResponse converts a model into a DTO.
func NewFriendshipResponse(friendship models.Friendship) FriendshipResponse {
	return FriendshipResponse{
		ID:          friendship.ID,
		RequesterID: friendship.User1ID,
		AddresseeID: friendship.User2ID,
		Status:      string(friendship.Status),
		CreatedAt:   friendship.CreatedAt,
		UpdatedAt:   friendship.UpdatedAt,
	}
}

// PendingRequestResponse pairs an incoming request with its sender profile.
type PendingRequestResponse struct {
	Friendship FriendshipResponse `json:"friendship"`
	Requester  UserResponse       `json:"requester"`
}
