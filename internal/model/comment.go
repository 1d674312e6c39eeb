package model

import "time"

// Comment moderation statuses.
const (
	CommentApproved = "approved"
	CommentPending  = "pending"
	CommentRejected = "rejected"
)

// Comment represents a comment on a blog post.
type Comment struct {
	CommentID       string    `db:"comment_id" json:"comment_id"`
	BlogID          string    `db:"blog_id" json:"blog_id"`
	UserID          string    `db:"user_id" json:"user_id"`
	AuthorName      string    `db:"author_name" json:"author_name,omitempty"`
	AuthorAvatar    string    `db:"author_avatar" json:"author_avatar,omitempty"`
	Content         string    `db:"content" json:"content"`
	ParentCommentID *string   `db:"parent_comment_id" json:"parent_comment_id,omitempty"`
	Status          string    `db:"status" json:"status"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
