package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/daniswara/kumpul-api/internal/dto"
	"github.com/daniswara/kumpul-api/internal/models"
	"github.com/daniswara/kumpul-api/internal/repository"
)

// NotificationDispatcher is the subset of the notification service the other
// services fan events into.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, event dto.NotificationEvent) (*dto.NotificationResponse, error)
}

// FriendshipService implements the relationship state machine: request,
// accept, decline, remove, block, unblock and the read-only projections.
type FriendshipService interface {
	SendRequest(ctx context.Context, actorID, targetID uint) (dto.FriendshipResponse, error)
	Accept(ctx context.Context, actorID, requesterID uint) (dto.FriendshipResponse, error)
	Decline(ctx context.Context, actorID, requesterID uint) error
	Remove(ctx context.Context, actorID, otherID uint) error
	Block(ctx context.Context, actorID, targetID uint) (dto.FriendshipResponse, error)
	Unblock(ctx context.Context, actorID, targetID uint) error
	ListFriends(ctx context.Context, actorID uint) ([]dto.UserResponse, error)
	ListPendingIncoming(ctx context.Context, actorID uint) ([]dto.PendingRequestResponse, error)
	Suggestions(ctx context.Context, actorID uint, limit int) ([]dto.UserResponse, error)
}

type friendshipService struct {
	friendships   repository.FriendshipRepository
	users         repository.UserRepository
	notifications NotificationDispatcher
	logger        zerolog.Logger
	tracer        trace.Tracer
}

// NewFriendshipService constructs the relationship engine.
func NewFriendshipService(friendships repository.FriendshipRepository, users repository.UserRepository, notifications NotificationDispatcher, logger zerolog.Logger) FriendshipService {
	return &friendshipService{
		friendships:   friendships,
		users:         users,
		notifications: notifications,
		logger:        logger.With().Str("component", "friendship_service").Logger(),
		tracer:        otel.Tracer("github.com/daniswara/kumpul-api/internal/service/friendship"),
	}
}

func (s *friendshipService) SendRequest(ctx context.Context, actorID, targetID uint) (dto.FriendshipResponse, error) {
	if actorID == targetID {
		return dto.FriendshipResponse{}, ErrSelfReference
	}

	spanCtx, span := s.tracer.Start(ctx, "friendship.send_request", trace.WithAttributes(
		attribute.Int64("friendship.actor_id", int64(actorID)),
		attribute.Int64("friendship.target_id", int64(targetID)),
	))
	defer span.End()

	target, err := s.users.FindByID(spanCtx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FriendshipResponse{}, ErrNotFound
		}
		return dto.FriendshipResponse{}, err
	}

	friendship := models.Friendship{
		User1ID: actorID,
		User2ID: targetID,
		Status:  models.FriendshipPending,
	}

	created, err := s.friendships.CreateIfAbsent(spanCtx, &friendship)
	if err != nil {
		span.RecordError(err)
		return dto.FriendshipResponse{}, err
	}
	if !created {
		return dto.FriendshipResponse{}, ErrConflict
	}

	actor, err := s.users.FindByID(spanCtx, actorID)
	actorName := fmt.Sprintf("user %d", actorID)
	if err == nil {
		actorName = actor.Name
	}

	s.dispatch(spanCtx, dto.NotificationEvent{
		RecipientID: target.ID,
		ActorID:     &actorID,
		Type:        models.NotificationFriendRequest,
		Message:     fmt.Sprintf("%s sent you a friend request", actorName),
	})

	return dto.NewFriendshipResponse(friendship), nil
}

func (s *friendshipService) Accept(ctx context.Context, actorID, requesterID uint) (dto.FriendshipResponse, error) {
	friendship, err := s.findPair(ctx, actorID, requesterID)
	if err != nil {
		return dto.FriendshipResponse{}, err
	}

	// Only the addressee of a pending request may accept it.
	if friendship.Status != models.FriendshipPending || friendship.User2ID != actorID {
		return dto.FriendshipResponse{}, ErrInvalidState
	}

	friendship.Status = models.FriendshipAccepted
	if err := s.friendships.Save(ctx, &friendship); err != nil {
		return dto.FriendshipResponse{}, err
	}

	s.logger.Info().
		Uint("actor_id", actorID).
		Uint("requester_id", requesterID).
		Msg("friend request accepted")

	return dto.NewFriendshipResponse(friendship), nil
}

func (s *friendshipService) Decline(ctx context.Context, actorID, requesterID uint) error {
	friendship, err := s.findPair(ctx, actorID, requesterID)
	if err != nil {
		return err
	}

	if friendship.Status != models.FriendshipPending || friendship.User2ID != actorID {
		return ErrInvalidState
	}

	return s.friendships.Delete(ctx, friendship.ID)
}

// Remove deletes the relationship row entirely; no tombstone is kept, so a
// later request between the same pair starts from scratch.
func (s *friendshipService) Remove(ctx context.Context, actorID, otherID uint) error {
	friendship, err := s.findPair(ctx, actorID, otherID)
	if err != nil {
		return err
	}

	return s.friendships.Delete(ctx, friendship.ID)
}

// Block is idempotent: it creates a blocked row when none exists and
// overwrites the status in place otherwise.
func (s *friendshipService) Block(ctx context.Context, actorID, targetID uint) (dto.FriendshipResponse, error) {
	if actorID == targetID {
		return dto.FriendshipResponse{}, ErrSelfReference
	}

	if _, err := s.users.FindByID(ctx, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FriendshipResponse{}, ErrNotFound
		}
		return dto.FriendshipResponse{}, err
	}

	friendship, err := s.friendships.UpsertBlocked(ctx, actorID, targetID)
	if err != nil {
		return dto.FriendshipResponse{}, err
	}

	s.logger.Info().
		Uint("actor_id", actorID).
		Uint("target_id", targetID).
		Msg("user blocked")

	return dto.NewFriendshipResponse(friendship), nil
}

func (s *friendshipService) Unblock(ctx context.Context, actorID, targetID uint) error {
	friendship, err := s.friendships.FindByPair(ctx, actorID, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidState
		}
		return err
	}

	if friendship.Status != models.FriendshipBlocked {
		return ErrInvalidState
	}

	return s.friendships.Delete(ctx, friendship.ID)
}

func (s *friendshipService) ListFriends(ctx context.Context, actorID uint) ([]dto.UserResponse, error) {
	friendships, err := s.friendships.ListByUserAndStatus(ctx, actorID, models.FriendshipAccepted)
	if err != nil {
		return nil, err
	}

	friends := make([]dto.UserResponse, 0, len(friendships))
	for _, friendship := range friendships {
		user, err := s.users.FindByID(ctx, friendship.OtherUser(actorID))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		friends = append(friends, dto.NewUserResponse(user))
	}
	return friends, nil
}

func (s *friendshipService) ListPendingIncoming(ctx context.Context, actorID uint) ([]dto.PendingRequestResponse, error) {
	friendships, err := s.friendships.ListPendingIncoming(ctx, actorID)
	if err != nil {
		return nil, err
	}

	pending := make([]dto.PendingRequestResponse, 0, len(friendships))
	for _, friendship := range friendships {
		requester, err := s.users.FindByID(ctx, friendship.User1ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		pending = append(pending, dto.PendingRequestResponse{
			Friendship: dto.NewFriendshipResponse(friendship),
			Requester:  dto.NewUserResponse(requester),
		})
	}
	return pending, nil
}

// Suggestions excludes the actor and anyone already sharing a relationship
// row in any status; only active accounts are proposed.
func (s *friendshipService) Suggestions(ctx context.Context, actorID uint, limit int) ([]dto.UserResponse, error) {
	related, err := s.friendships.RelatedUserIDs(ctx, actorID)
	if err != nil {
		return nil, err
	}

	exclude := append(related, actorID)
	users, err := s.users.ListActiveExcluding(ctx, exclude, limit)
	if err != nil {
		return nil, err
	}

	return dto.NewUserResponseSlice(users), nil
}

func (s *friendshipService) findPair(ctx context.Context, a, b uint) (models.Friendship, error) {
	friendship, err := s.friendships.FindByPair(ctx, a, b)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Friendship{}, ErrNotFound
		}
		return models.Friendship{}, err
	}
	return friendship, nil
}

// dispatch is fire-and-forget; a failed or suppressed notification never
// fails the relationship operation itself.
func (s *friendshipService) dispatch(ctx context.Context, event dto.NotificationEvent) {
	if s.notifications == nil {
		return
	}
	if _, err := s.notifications.Dispatch(ctx, event); err != nil {
		s.logger.Warn().Err(err).Uint("recipient_id", event.RecipientID).Msg("failed to dispatch notification")
	}
}
