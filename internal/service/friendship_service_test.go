package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/daniswara/kumpul-api/internal/dto"
	"github.com/daniswara/kumpul-api/internal/models"
)

type stubFriendshipRepo struct {
	rows   map[uint]*models.Friendship
	nextID uint
}

func newStubFriendshipRepo() *stubFriendshipRepo {
	return &stubFriendshipRepo{rows: map[uint]*models.Friendship{}, nextID: 1}
}

func (s *stubFriendshipRepo) find(a, b uint) *models.Friendship {
	low, high := models.NormalizePair(a, b)
	for _, row := range s.rows {
		if row.PairLow == low && row.PairHigh == high {
			return row
		}
	}
	return nil
}

func (s *stubFriendshipRepo) CreateIfAbsent(ctx context.Context, friendship *models.Friendship) (bool, error) {
	if s.find(friendship.User1ID, friendship.User2ID) != nil {
		return false, nil
	}
	friendship.ID = s.nextID
	friendship.PairLow, friendship.PairHigh = models.NormalizePair(friendship.User1ID, friendship.User2ID)
	s.nextID++
	copied := *friendship
	s.rows[friendship.ID] = &copied
	return true, nil
}

func (s *stubFriendshipRepo) UpsertBlocked(ctx context.Context, actorID, targetID uint) (models.Friendship, error) {
	if existing := s.find(actorID, targetID); existing != nil {
		existing.Status = models.FriendshipBlocked
		existing.User1ID = actorID
		existing.User2ID = targetID
		return *existing, nil
	}
	row := models.Friendship{ID: s.nextID, User1ID: actorID, User2ID: targetID, Status: models.FriendshipBlocked}
	row.PairLow, row.PairHigh = models.NormalizePair(actorID, targetID)
	s.nextID++
	s.rows[row.ID] = &row
	return row, nil
}

func (s *stubFriendshipRepo) FindByPair(ctx context.Context, a, b uint) (models.Friendship, error) {
	if row := s.find(a, b); row != nil {
		return *row, nil
	}
	return models.Friendship{}, gorm.ErrRecordNotFound
}

func (s *stubFriendshipRepo) Save(ctx context.Context, friendship *models.Friendship) error {
	copied := *friendship
	s.rows[friendship.ID] = &copied
	return nil
}

func (s *stubFriendshipRepo) Delete(ctx context.Context, id uint) error {
	delete(s.rows, id)
	return nil
}

func (s *stubFriendshipRepo) ListByUserAndStatus(ctx context.Context, userID uint, status models.FriendshipStatus) ([]models.Friendship, error) {
	var out []models.Friendship
	for _, row := range s.rows {
		if row.Status == status && row.Involves(userID) {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (s *stubFriendshipRepo) ListPendingIncoming(ctx context.Context, userID uint) ([]models.Friendship, error) {
	var out []models.Friendship
	for _, row := range s.rows {
		if row.Status == models.FriendshipPending && row.User2ID == userID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (s *stubFriendshipRepo) RelatedUserIDs(ctx context.Context, userID uint) ([]uint, error) {
	var out []uint
	for _, row := range s.rows {
		if row.Involves(userID) {
			out = append(out, row.OtherUser(userID))
		}
	}
	return out, nil
}

type stubUserRepo struct {
	users map[uint]models.User
}

func newStubUserRepo(ids ...uint) *stubUserRepo {
	users := make(map[uint]models.User, len(ids))
	for _, id := range ids {
		users[id] = models.User{
			ID:     id,
			Name:   "user",
			Status: models.UserStatusActive,
		}
	}
	return &stubUserRepo{users: users}
}

func (s *stubUserRepo) Create(ctx context.Context, user *models.User) error {
	s.users[user.ID] = *user
	return nil
}

func (s *stubUserRepo) FindByID(ctx context.Context, id uint) (models.User, error) {
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (models.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) Update(ctx context.Context, user *models.User) error {
	s.users[user.ID] = *user
	return nil
}

func (s *stubUserRepo) UpdateStatus(ctx context.Context, id uint, status models.UserStatus) error {
	user, ok := s.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.Status = status
	s.users[id] = user
	return nil
}

func (s *stubUserRepo) ListActiveExcluding(ctx context.Context, exclude []uint, limit int) ([]models.User, error) {
	excluded := make(map[uint]struct{}, len(exclude))
	for _, id := range exclude {
		excluded[id] = struct{}{}
	}
	var out []models.User
	for _, user := range s.users {
		if _, skip := excluded[user.ID]; skip {
			continue
		}
		if user.Status != models.UserStatusActive {
			continue
		}
		out = append(out, user)
	}
	return out, nil
}

type stubDispatcher struct {
	events []dto.NotificationEvent
}

func (s *stubDispatcher) Dispatch(ctx context.Context, event dto.NotificationEvent) (*dto.NotificationResponse, error) {
	s.events = append(s.events, event)
	return &dto.NotificationResponse{Type: string(event.Type)}, nil
}

func newFriendshipFixture(userIDs ...uint) (FriendshipService, *stubFriendshipRepo, *stubDispatcher) {
	repo := newStubFriendshipRepo()
	dispatcher := &stubDispatcher{}
	svc := NewFriendshipService(repo, newStubUserRepo(userIDs...), dispatcher, zerolog.Nop())
	return svc, repo, dispatcher
}

func TestSendRequestNotifiesTarget(t *testing.T) {
	svc, _, dispatcher := newFriendshipFixture(1, 2)

	friendship, err := svc.SendRequest(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Equal(t, uint(1), friendship.RequesterID)
	require.Equal(t, uint(2), friendship.AddresseeID)
	require.Equal(t, string(models.FriendshipPending), friendship.Status)

	require.Len(t, dispatcher.events, 1)
	require.Equal(t, uint(2), dispatcher.events[0].RecipientID)
	require.Equal(t, models.NotificationFriendRequest, dispatcher.events[0].Type)
}

func TestSendRequestToSelfRejected(t *testing.T) {
	svc, _, _ := newFriendshipFixture(1)

	_, err := svc.SendRequest(context.Background(), 1, 1)
	require.ErrorIs(t, err, ErrSelfReference)
}

func TestSendRequestUnknownTarget(t *testing.T) {
	svc, _, _ := newFriendshipFixture(1)

	_, err := svc.SendRequest(context.Background(), 1, 99)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSendRequestDuplicateConflictBothOrderings(t *testing.T) {
	svc, _, _ := newFriendshipFixture(1, 2)

	_, err := svc.SendRequest(context.Background(), 1, 2)
	require.NoError(t, err)

	_, err = svc.SendRequest(context.Background(), 1, 2)
	require.ErrorIs(t, err, ErrConflict)

	// The reverse ordering hits the same pair row.
	_, err = svc.SendRequest(context.Background(), 2, 1)
	require.ErrorIs(t, err, ErrConflict)
}

func TestAcceptOnlyByAddressee(t *testing.T) {
	svc, _, _ := newFriendshipFixture(1, 2)

	_, err := svc.SendRequest(context.Background(), 1, 2)
	require.NoError(t, err)

	// The requester cannot accept their own request.
	_, err = svc.Accept(context.Background(), 1, 2)
	require.ErrorIs(t, err, ErrInvalidState)

	friendship, err := svc.Accept(context.Background(), 2, 1)
	require.NoError(t, err)
	require.Equal(t, string(models.FriendshipAccepted), friendship.Status)

	// A second accept finds no pending row in that state.
	_, err = svc.Accept(context.Background(), 2, 1)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestDeclineDeletesRequest(t *testing.T) {
	svc, repo, _ := newFriendshipFixture(1, 2)

	_, err := svc.SendRequest(context.Background(), 1, 2)
	require.NoError(t, err)

	require.NoError(t, svc.Decline(context.Background(), 2, 1))
	require.Empty(t, repo.rows)

	// A fresh request is possible after a decline.
	_, err = svc.SendRequest(context.Background(), 1, 2)
	require.NoError(t, err)
}

func TestBlockIsIdempotentAndOverwrites(t *testing.T) {
	svc, repo, _ := newFriendshipFixture(1, 2)

	_, err := svc.SendRequest(context.Background(), 1, 2)
	require.NoError(t, err)

	blocked, err := svc.Block(context.Background(), 2, 1)
	require.NoError(t, err)
	require.Equal(t, string(models.FriendshipBlocked), blocked.Status)
	require.Equal(t, uint(2), blocked.RequesterID)

	again, err := svc.Block(context.Background(), 2, 1)
	require.NoError(t, err)
	require.Equal(t, blocked.ID, again.ID)
	require.Len(t, repo.rows, 1)
}

func TestUnblockRequiresBlockedState(t *testing.T) {
	svc, _, _ := newFriendshipFixture(1, 2)

	require.ErrorIs(t, svc.Unblock(context.Background(), 1, 2), ErrInvalidState)

	_, err := svc.SendRequest(context.Background(), 1, 2)
	require.NoError(t, err)
	require.ErrorIs(t, svc.Unblock(context.Background(), 1, 2), ErrInvalidState)

	_, err = svc.Block(context.Background(), 1, 2)
	require.NoError(t, err)
	require.NoError(t, svc.Unblock(context.Background(), 1, 2))

	// The pair can start over after the block is lifted.
	_, err = svc.SendRequest(context.Background(), 2, 1)
	require.NoError(t, err)
}

func TestRemoveResetsRelationship(t *testing.T) {
	svc, _, _ := newFriendshipFixture(1, 2)

	_, err := svc.SendRequest(context.Background(), 1, 2)
	require.NoError(t, err)
	_, err = svc.Accept(context.Background(), 2, 1)
	require.NoError(t, err)

	require.NoError(t, svc.Remove(context.Background(), 1, 2))
	require.ErrorIs(t, svc.Remove(context.Background(), 1, 2), ErrNotFound)

	// Either side may unfriend, regardless of who initiated the row.
	_, err = svc.SendRequest(context.Background(), 2, 1)
	require.NoError(t, err)
	_, err = svc.Accept(context.Background(), 1, 2)
	require.NoError(t, err)
	require.NoError(t, svc.Remove(context.Background(), 1, 2))
}

func TestListFriendsResolvesOtherSide(t *testing.T) {
	svc, _, _ := newFriendshipFixture(1, 2, 3)

	_, err := svc.SendRequest(context.Background(), 1, 2)
	require.NoError(t, err)
	_, err = svc.Accept(context.Background(), 2, 1)
	require.NoError(t, err)

	_, err = svc.SendRequest(context.Background(), 3, 1)
	require.NoError(t, err)

	friends, err := svc.ListFriends(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	require.Equal(t, uint(2), friends[0].ID)

	pending, err := svc.ListPendingIncoming(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, uint(3), pending[0].Requester.ID)
}

func TestSuggestionsExcludeRelatedUsers(t *testing.T) {
	svc, _, _ := newFriendshipFixture(1, 2, 3, 4)

	_, err := svc.SendRequest(context.Background(), 1, 2)
	require.NoError(t, err)
	_, err = svc.Block(context.Background(), 1, 3)
	require.NoError(t, err)

	suggestions, err := svc.Suggestions(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	require.Equal(t, uint(4), suggestions[0].ID)
}
