package contract_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/daniswara/kumpul-api/internal/dto"
	"github.com/daniswara/kumpul-api/internal/handler"
)

type stubFriendshipService struct {
	pending []dto.PendingRequestResponse
}

func (s stubFriendshipService) SendRequest(context.Context, uint, uint) (dto.FriendshipResponse, error) {
	return dto.FriendshipResponse{}, nil
}

func (s stubFriendshipService) Accept(context.Context, uint, uint) (dto.FriendshipResponse, error) {
	return dto.FriendshipResponse{}, nil
}

func (s stubFriendshipService) Decline(context.Context, uint, uint) error { return nil }

func (s stubFriendshipService) Remove(context.Context, uint, uint) error { return nil }

func (s stubFriendshipService) Block(context.Context, uint, uint) (dto.FriendshipResponse, error) {
	return dto.FriendshipResponse{}, nil
}

func (s stubFriendshipService) Unblock(context.Context, uint, uint) error { return nil }

func (s stubFriendshipService) ListFriends(context.Context, uint) ([]dto.UserResponse, error) {
	return nil, nil
}

func (s stubFriendshipService) ListPendingIncoming(context.Context, uint) ([]dto.PendingRequestResponse, error) {
	return s.pending, nil
}

func (s stubFriendshipService) Suggestions(context.Context, uint, int) ([]dto.UserResponse, error) {
	return nil, nil
}

func TestPendingFriendRequestsContract(t *testing.T) {
	schema := compileSchema(t, "friendships.schema.json")

	now := time.Now().UTC()
	svc := stubFriendshipService{pending: []dto.PendingRequestResponse{
		{
			Friendship: dto.FriendshipResponse{
				ID:          1,
				RequesterID: 4,
				AddresseeID: 1,
				Status:      "pending",
				CreatedAt:   now,
				UpdatedAt:   now,
			},
			Requester: dto.UserResponse{
				ID:        4,
				Name:      "Dana",
				Email:     "dana@example.com",
				Role:      "user",
				Status:    "active",
				CreatedAt: now.Add(-30 * 24 * time.Hour),
			},
		},
	}}

	h := handler.NewFriendshipHandler(svc, zerolog.Nop())

	app := fiber.New()
	group := app.Group("/api/v1/friends", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(1))
		c.Locals("user_role", "user")
		return c.Next()
	})
	h.Register(group)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/friends/requests", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	validateBody(t, schema, resp)
}
