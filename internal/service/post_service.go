package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/daniswara/kumpul-api/internal/dto"
	"github.com/daniswara/kumpul-api/internal/models"
	"github.com/daniswara/kumpul-api/internal/repository"
)

// PostService exposes feed use-cases: posts, reactions, comments and shares.
type PostService interface {
	Create(ctx context.Context, authorID uint, payload dto.PostCreateRequest) (dto.PostResponse, error)
	Get(ctx context.Context, id uint) (dto.PostResponse, error)
	ListFeed(ctx context.Context, limit, offset int) ([]dto.PostResponse, error)
	Delete(ctx context.Context, id, actorID uint, actorRole models.UserRole) error
	Like(ctx context.Context, postID, actorID uint) error
	Unlike(ctx context.Context, postID, actorID uint) error
	Comment(ctx context.Context, postID, authorID uint, payload dto.CommentCreateRequest) (dto.CommentResponse, error)
	ListComments(ctx context.Context, postID uint, limit, offset int) ([]dto.CommentResponse, error)
	Share(ctx context.Context, postID, actorID uint, payload dto.PostShareRequest) (dto.PostResponse, error)
}

type postService struct {
	posts         repository.PostRepository
	users         repository.UserRepository
	notifications NotificationDispatcher
	validator     *validator.Validate
	logger        zerolog.Logger
	tracer        trace.Tracer
	sanitizer     *bluemonday.Policy
}

// NewPostService constructs the feed service.
func NewPostService(posts repository.PostRepository, users repository.UserRepository, notifications NotificationDispatcher, validate *validator.Validate, logger zerolog.Logger) PostService {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("br")

	return &postService{
		posts:         posts,
		users:         users,
		notifications: notifications,
		validator:     validate,
		logger:        logger.With().Str("component", "post_service").Logger(),
		tracer:        otel.Tracer("github.com/daniswara/kumpul-api/internal/service/post"),
		sanitizer:     policy,
	}
}

func (s *postService) Create(ctx context.Context, authorID uint, payload dto.PostCreateRequest) (dto.PostResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PostResponse{}, err
	}

	clean := strings.TrimSpace(s.sanitizer.Sanitize(payload.Content))
	if clean == "" {
		return dto.PostResponse{}, errors.New("post content empty after sanitization")
	}

	post := models.Post{
		AuthorID: authorID,
		Content:  clean,
		MediaURL: payload.MediaURL,
	}

	if err := s.posts.Create(ctx, &post); err != nil {
		return dto.PostResponse{}, err
	}

	return dto.NewPostResponse(post, 0), nil
}

func (s *postService) Get(ctx context.Context, id uint) (dto.PostResponse, error) {
	post, err := s.findPost(ctx, id)
	if err != nil {
		return dto.PostResponse{}, err
	}

	reactions, err := s.posts.CountReactions(ctx, id)
	if err != nil {
		return dto.PostResponse{}, err
	}

	return dto.NewPostResponse(post, reactions), nil
}

func (s *postService) ListFeed(ctx context.Context, limit, offset int) ([]dto.PostResponse, error) {
	posts, err := s.posts.ListRecent(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	feed := make([]dto.PostResponse, 0, len(posts))
	for _, post := range posts {
		reactions, err := s.posts.CountReactions(ctx, post.ID)
		if err != nil {
			return nil, err
		}
		feed = append(feed, dto.NewPostResponse(post, reactions))
	}
	return feed, nil
}

// Delete removes the post and its dependents. Authors delete their own
// posts; admins may delete anything.
func (s *postService) Delete(ctx context.Context, id, actorID uint, actorRole models.UserRole) error {
	post, err := s.findPost(ctx, id)
	if err != nil {
		return err
	}

	if post.AuthorID != actorID && actorRole != models.RoleAdmin {
		return ErrForbidden
	}

	return s.posts.DeleteCascade(ctx, id)
}

// Like is idempotent; repeated likes by the same user are no-ops and the
// author is only notified on the first one.
func (s *postService) Like(ctx context.Context, postID, actorID uint) error {
	spanCtx, span := s.tracer.Start(ctx, "post.like", trace.WithAttributes(
		attribute.Int64("post.id", int64(postID)),
		attribute.Int64("post.actor_id", int64(actorID)),
	))
	defer span.End()

	post, err := s.findPost(spanCtx, postID)
	if err != nil {
		return err
	}

	created, err := s.posts.AddReaction(spanCtx, postID, actorID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	if created && post.AuthorID != actorID {
		s.dispatch(spanCtx, dto.NotificationEvent{
			RecipientID: post.AuthorID,
			ActorID:     &actorID,
			Type:        models.NotificationPostLike,
			Message:     "Someone liked your post",
			PostID:      &postID,
		})
	}

	return nil
}

func (s *postService) Unlike(ctx context.Context, postID, actorID uint) error {
	if _, err := s.findPost(ctx, postID); err != nil {
		return err
	}
	return s.posts.RemoveReaction(ctx, postID, actorID)
}

func (s *postService) Comment(ctx context.Context, postID, authorID uint, payload dto.CommentCreateRequest) (dto.CommentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CommentResponse{}, err
	}

	clean := strings.TrimSpace(s.sanitizer.Sanitize(payload.Content))
	if clean == "" {
		return dto.CommentResponse{}, errors.New("comment content empty after sanitization")
	}

	post, err := s.findPost(ctx, postID)
	if err != nil {
		return dto.CommentResponse{}, err
	}

	comment := models.Comment{
		PostID:   postID,
		AuthorID: authorID,
		Content:  clean,
	}

	if err := s.posts.CreateComment(ctx, &comment); err != nil {
		return dto.CommentResponse{}, err
	}

	if post.AuthorID != authorID {
		s.dispatch(ctx, dto.NotificationEvent{
			RecipientID: post.AuthorID,
			ActorID:     &authorID,
			Type:        models.NotificationPostComment,
			Message:     "Someone commented on your post",
			PostID:      &postID,
			CommentID:   &comment.ID,
		})
	}

	return dto.NewCommentResponse(comment), nil
}

func (s *postService) ListComments(ctx context.Context, postID uint, limit, offset int) ([]dto.CommentResponse, error) {
	if _, err := s.findPost(ctx, postID); err != nil {
		return nil, err
	}

	comments, err := s.posts.ListComments(ctx, postID, limit, offset)
	if err != nil {
		return nil, err
	}
	return dto.NewCommentResponseSlice(comments), nil
}

// Share republishes an existing post as a new feed entry referencing the
// original, optionally with commentary.
func (s *postService) Share(ctx context.Context, postID, actorID uint, payload dto.PostShareRequest) (dto.PostResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PostResponse{}, err
	}

	original, err := s.findPost(ctx, postID)
	if err != nil {
		return dto.PostResponse{}, err
	}

	content := strings.TrimSpace(s.sanitizer.Sanitize(payload.Comment))
	if content == "" {
		content = fmt.Sprintf("Shared post %d", original.ID)
	}

	share := models.Post{
		AuthorID:     actorID,
		Content:      content,
		SharedPostID: &original.ID,
	}

	if err := s.posts.Create(ctx, &share); err != nil {
		return dto.PostResponse{}, err
	}

	if original.AuthorID != actorID {
		s.dispatch(ctx, dto.NotificationEvent{
			RecipientID: original.AuthorID,
			ActorID:     &actorID,
			Type:        models.NotificationPostShare,
			Message:     "Someone shared your post",
			PostID:      &original.ID,
		})
	}

	return dto.NewPostResponse(share, 0), nil
}

func (s *postService) findPost(ctx context.Context, id uint) (models.Post, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Post{}, ErrNotFound
		}
		return models.Post{}, err
	}
	return post, nil
}

func (s *postService) dispatch(ctx context.Context, event dto.NotificationEvent) {
	if s.notifications == nil {
		return
	}
	if _, err := s.notifications.Dispatch(ctx, event); err != nil {
		s.logger.Warn().Err(err).Uint("recipient_id", event.RecipientID).Msg("failed to dispatch notification")
	}
}
