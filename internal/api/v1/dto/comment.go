package dto

import "time"

// CommentCreateRequest is the payload for posting a comment.
type CommentCreateRequest struct {
	Content  string `json:"content" validate:"required,min=1,max=2000"`
	ParentID string `json:"parent_id" validate:"omitempty,uuid4"`
}

// CommentResponse is a comment returned in API responses.
type CommentResponse struct {
	CommentID    string    `json:"comment_id"`
	BlogID       string    `json:"blog_id"`
	UserID       string    `json:"user_id"`
	AuthorName   string    `json:"author_name"`
	AuthorAvatar string    `json:"author_avatar"`
	Content      string    `json:"content"`
	ParentID     *string   `json:"parent_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// CommentListResponse wraps a page of comments.
type CommentListResponse struct {
	Comments []CommentResponse `json:"comments"`
	Total    int               `json:"total"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}
