package dto

import (
	"time"

	"github.com/daniswara/kumpul-api/internal/models"
)

// PostCreateRequest is the payload for publishing a feed entry.
type PostCreateRequest struct {
	Content  string `json:"content" validate:"required,min=1,max=8000"`
	MediaURL string `json:"media_url" validate:"omitempty,url,max=512"`
}

// PostShareRequest republishes an existing post with optional commentary.
type PostShareRequest struct {
	Comment string `json:"comment" validate:"omitempty,max=8000"`
}

// CommentCreateRequest attaches a reply to a post.
type CommentCreateRequest struct {
	Content string `json:"content" validate:"required,min=1,max=4000"`
}

// PostResponse is the serialized feed entry.
type PostResponse struct {
	ID           uint      `json:"id"`
	AuthorID     uint      `json:"author_id"`
	Content      string    `json:"content"`
	MediaURL     string    `json:"media_url,omitempty"`
	SharedPostID *uint     `json:"shared_post_id,omitempty"`
	Reactions    int64     `json:"reactions"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewPostResponse converts a model into a DTO.
func NewPostResponse(post models.Post, reactions int64) PostResponse {
	return PostResponse{
		ID:           post.ID,
		AuthorID:     post.AuthorID,
		Content:      post.Content,
		MediaURL:     post.MediaURL,
		SharedPostID: post.SharedPostID,
		Reactions:    reactions,
		CreatedAt:    post.CreatedAt,
	}
}

// CommentResponse is the serialized comment.
type CommentResponse struct {
	ID        uint      `json:"id"`
	PostID    uint      `json:"post_id"`
	AuthorID  uint      `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCommentResponse converts a model into a DTO.
func NewCommentResponse(comment models.Comment) CommentResponse {
	return CommentResponse{
		ID:        comment.ID,
		PostID:    comment.PostID,
		AuthorID:  comment.AuthorID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}
}

// NewCommentResponseSlice converts a slice of models into DTOs.
func NewCommentResponseSlice(comments []models.Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(comments))
	for _, comment := range comments {
		out = append(out, NewCommentResponse(comment))
	}
	return out
}
