package repository

import (
	"context"
	"fmt"

	"app/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CommentRepository defines methods for accessing comments.
type CommentRepository interface {
	CreateComment(ctx context.Context, c *model.Comment) error
	// ListByBlog returns approved top-level comments for a blog, newest first.
	ListByBlog(ctx context.Context, blogID string, limit, offset int) ([]model.Comment, int, error)
}

type commentRepo struct {
	pool *pgxpool.Pool
}

// NewCommentRepo creates a new CommentRepository.
func NewCommentRepo(pool *pgxpool.Pool) CommentRepository {
	return &commentRepo{pool: pool}
}

func (r *commentRepo) CreateComment(ctx context.Context, c *model.Comment) error {
	const q = `
        INSERT INTO comments (comment_id, blog_id, user_id, content, parent_comment_id, status)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at`
	err := r.pool.QueryRow(ctx, q,
		c.CommentID, c.BlogID, c.UserID, c.Content, c.ParentCommentID, c.Status,
	).Scan(&c.CreatedAt)
	if err != nil {
		return fmt.Errorf("create comment on blog %s: %w", c.BlogID, err)
	}
	return nil
}

func (r *commentRepo) ListByBlog(ctx context.Context, blogID string, limit, offset int) ([]model.Comment, int, error) {
	var total int
	const countQ = `
        SELECT COUNT(*) FROM comments
        WHERE blog_id = $1 AND parent_comment_id IS NULL AND status = 'approved'`
	if err := r.pool.QueryRow(ctx, countQ, blogID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count comments for blog %s: %w", blogID, err)
	}

	const q = `
        SELECT c.comment_id, c.blog_id, c.user_id, u.name, u.avatar_url,
               c.content, c.parent_comment_id, c.status, c.created_at
        FROM comments c
        JOIN users u ON u.user_id = c.user_id
        WHERE c.blog_id = $1 AND c.parent_comment_id IS NULL AND c.status = 'approved'
        ORDER BY c.created_at DESC
        LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, q, blogID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list comments for blog %s: %w", blogID, err)
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(
			&c.CommentID, &c.BlogID, &c.UserID, &c.AuthorName, &c.AuthorAvatar,
			&c.Content, &c.ParentCommentID, &c.Status, &c.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan comment row: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate comment rows: %w", err)
	}
	return comments, total, nil
}
