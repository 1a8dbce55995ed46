package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/daniswara/kumpul-api/internal/dto"
	"github.com/daniswara/kumpul-api/internal/models"
)

type stubNotificationRepo struct {
	rows   map[uint]*models.Notification
	nextID uint
}

func newStubNotificationRepo() *stubNotificationRepo {
	return &stubNotificationRepo{rows: map[uint]*models.Notification{}, nextID: 1}
}

func (s *stubNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	notification.ID = s.nextID
	s.nextID++
	copied := *notification
	s.rows[notification.ID] = &copied
	return nil
}

func (s *stubNotificationRepo) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Notification, error) {
	var out []models.Notification
	for _, row := range s.rows {
		if row.UserID == userID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (s *stubNotificationRepo) MarkRead(ctx context.Context, id, userID uint) (models.Notification, error) {
	row, ok := s.rows[id]
	if !ok || row.UserID != userID {
		return models.Notification{}, gorm.ErrRecordNotFound
	}
	row.Read = true
	return *row, nil
}

func (s *stubNotificationRepo) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	var updated int64
	for _, row := range s.rows {
		if row.UserID == userID && !row.Read {
			row.Read = true
			updated++
		}
	}
	return updated, nil
}

func (s *stubNotificationRepo) Delete(ctx context.Context, id, userID uint) error {
	row, ok := s.rows[id]
	if !ok || row.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	delete(s.rows, id)
	return nil
}

func (s *stubNotificationRepo) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	for _, row := range s.rows {
		if row.UserID == userID && !row.Read {
			count++
		}
	}
	return count, nil
}

func newNotificationFixture(recipient models.User) (NotificationService, *stubNotificationRepo) {
	repo := newStubNotificationRepo()
	users := &stubUserRepo{users: map[uint]models.User{recipient.ID: recipient}}
	svc := NewNotificationService(repo, users, nil, "", nil, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())
	return svc, repo
}

func allowAllUser(id uint) models.User {
	return models.User{
		ID:               id,
		Name:             "recipient",
		Status:           models.UserStatusActive,
		PushNewFollowers: true,
		PushMessages:     true,
		PushPostLikes:    true,
		PushPostComments: true,
		PushPostShares:   true,
		PushReports:      true,
	}
}

func TestDispatchPersistsWhenPreferenceEnabled(t *testing.T) {
	svc, repo := newNotificationFixture(allowAllUser(7))

	actor := uint(3)
	response, err := svc.Dispatch(context.Background(), dto.NotificationEvent{
		RecipientID: 7,
		ActorID:     &actor,
		Type:        models.NotificationNewMessage,
		Message:     "<b>alice</b> sent you a message",
	})
	require.NoError(t, err)
	require.NotNil(t, response)
	require.Equal(t, "alice sent you a message", response.Message)
	require.Len(t, repo.rows, 1)
}

func TestDispatchSuppressedByPreference(t *testing.T) {
	recipient := allowAllUser(7)
	recipient.PushMessages = false
	svc, repo := newNotificationFixture(recipient)

	response, err := svc.Dispatch(context.Background(), dto.NotificationEvent{
		RecipientID: 7,
		Type:        models.NotificationNewMessage,
		Message:     "you have a new message",
	})
	require.NoError(t, err)
	require.Nil(t, response)
	require.Empty(t, repo.rows)
}

func TestDispatchUnknownRecipient(t *testing.T) {
	svc, _ := newNotificationFixture(allowAllUser(7))

	_, err := svc.Dispatch(context.Background(), dto.NotificationEvent{
		RecipientID: 99,
		Type:        models.NotificationNewMessage,
		Message:     "hello",
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDispatchDeliversToSubscriber(t *testing.T) {
	svc, _ := newNotificationFixture(allowAllUser(7))

	stream, cleanup := svc.Subscribe(7)
	defer cleanup()

	_, err := svc.Dispatch(context.Background(), dto.NotificationEvent{
		RecipientID: 7,
		Type:        models.NotificationFriendRequest,
		Message:     "bob sent you a friend request",
	})
	require.NoError(t, err)

	select {
	case notification := <-stream:
		require.Equal(t, uint(7), notification.UserID)
		require.Equal(t, string(models.NotificationFriendRequest), notification.Type)
	case <-time.After(time.Second):
		t.Fatal("expected a streamed notification")
	}
}

func TestMarkReadScopedToOwner(t *testing.T) {
	svc, repo := newNotificationFixture(allowAllUser(7))

	_, err := svc.Dispatch(context.Background(), dto.NotificationEvent{
		RecipientID: 7,
		Type:        models.NotificationPostLike,
		Message:     "carol liked your post",
	})
	require.NoError(t, err)

	var id uint
	for notificationID := range repo.rows {
		id = notificationID
	}

	_, err = svc.MarkRead(context.Background(), id, 99)
	require.ErrorIs(t, err, ErrNotFound)

	notification, err := svc.MarkRead(context.Background(), id, 7)
	require.NoError(t, err)
	require.True(t, notification.Read)

	// Marking again stays read without error.
	notification, err = svc.MarkRead(context.Background(), id, 7)
	require.NoError(t, err)
	require.True(t, notification.Read)

	count, err := svc.UnreadCount(context.Background(), 7)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestMarkAllReadCountsUpdates(t *testing.T) {
	svc, _ := newNotificationFixture(allowAllUser(7))

	for _, message := range []string{"one", "two", "three"} {
		_, err := svc.Dispatch(context.Background(), dto.NotificationEvent{
			RecipientID: 7,
			Type:        models.NotificationPostComment,
			Message:     message,
		})
		require.NoError(t, err)
	}

	updated, err := svc.MarkAllRead(context.Background(), 7)
	require.NoError(t, err)
	require.EqualValues(t, 3, updated)

	updated, err = svc.MarkAllRead(context.Background(), 7)
	require.NoError(t, err)
	require.Zero(t, updated)
}
