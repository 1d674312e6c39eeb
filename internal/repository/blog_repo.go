package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"app/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// BlogRepository defines methods for accessing blog posts.
type BlogRepository interface {
	CreateBlog(ctx context.Context, b *model.Blog) error
	GetBlogByID(ctx context.Context, blogID string) (*model.Blog, error)
	GetBlogBySlug(ctx context.Context, slug string) (*model.Blog, error)
	ListBlogs(ctx context.Context, f model.BlogFilter) ([]model.Blog, int, error)
	UpdateBlog(ctx context.Context, b *model.Blog) error
	UpdateSEO(ctx context.Context, blogID, seoTitle, seoDescription string, keywords []string) error
	UpdateTags(ctx context.Context, blogID string, tags []string) error
	DeleteBlog(ctx context.Context, blogID string) error
	IncrementCounter(ctx context.Context, blogID, counter string) error
}

type blogRepo struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewBlogRepo creates a new BlogRepository.
func NewBlogRepo(pool *pgxpool.Pool, logger zerolog.Logger) BlogRepository {
	return &blogRepo{pool: pool, logger: logger.With().Str("repository", "BlogRepository").Logger()}
}

const blogColumns = `b.blog_id, b.user_id, u.name, u.avatar_url, b.title, b.slug, b.content, b.excerpt,
       b.cover_image_url, b.tags, b.category, b.status,
       b.seo_title, b.seo_description, b.seo_keywords,
       b.views, b.likes, b.shares, b.read_time_minutes, b.is_premium,
       b.published_at, b.created_at, b.updated_at`

func scanBlog(row pgx.Row) (*model.Blog, error) {
	var b model.Blog
	err := row.Scan(
		&b.BlogID, &b.UserID, &b.AuthorName, &b.AuthorAvatar, &b.Title, &b.Slug, &b.Content, &b.Excerpt,
		&b.CoverImageURL, &b.Tags, &b.Category, &b.Status,
		&b.SEOTitle, &b.SEODescription, &b.SEOKeywords,
		&b.Views, &b.Likes, &b.Shares, &b.ReadTimeMinutes, &b.IsPremium,
		&b.PublishedAt, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *blogRepo) CreateBlog(ctx context.Context, b *model.Blog) error {
	const q = `
        INSERT INTO blogs (blog_id, user_id, title, slug, content, excerpt, cover_image_url,
                           tags, category, status, read_time_minutes, is_premium, published_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	var publishedAt *time.Time
	if b.PublishedAt != nil {
		publishedAt = b.PublishedAt
	}
	_, err := r.pool.Exec(ctx, q,
		b.BlogID, b.UserID, b.Title, b.Slug, b.Content, b.Excerpt, b.CoverImageURL,
		b.Tags, b.Category, b.Status, b.ReadTimeMinutes, b.IsPremium, publishedAt)
	if err != nil {
		return fmt.Errorf("create blog %s: %w", b.Slug, err)
	}
	return nil
}

func (r *blogRepo) GetBlogByID(ctx context.Context, blogID string) (*model.Blog, error) {
	const q = `SELECT ` + blogColumns + ` FROM blogs b JOIN users u ON u.user_id = b.user_id WHERE b.blog_id = $1`
	b, err := scanBlog(r.pool.QueryRow(ctx, q, blogID))
	if err != nil {
		return nil, fmt.Errorf("fetch blog %s: %w", blogID, err)
	}
	return b, nil
}

func (r *blogRepo) GetBlogBySlug(ctx context.Context, slug string) (*model.Blog, error) {
	const q = `SELECT ` + blogColumns + ` FROM blogs b JOIN users u ON u.user_id = b.user_id WHERE b.slug = $1`
	b, err := scanBlog(r.pool.QueryRow(ctx, q, slug))
	if err != nil {
		return nil, fmt.Errorf("fetch blog by slug %s: %w", slug, err)
	}
	return b, nil
}

func (r *blogRepo) ListBlogs(ctx context.Context, f model.BlogFilter) ([]model.Blog, int, error) {
	where := `WHERE b.status = $1`
	args := []interface{}{f.Status}
	idx := 2
	if f.Category != "" {
		where += fmt.Sprintf(` AND b.category = $%d`, idx)
		args = append(args, f.Category)
		idx++
	}
	if len(f.Tags) > 0 {
		where += fmt.Sprintf(` AND b.tags && $%d`, idx)
		args = append(args, f.Tags)
		idx++
	}
	if f.Search != "" {
		where += fmt.Sprintf(` AND (b.title ILIKE '%%' || $%d || '%%' OR b.content ILIKE '%%' || $%d || '%%')`, idx, idx)
		args = append(args, f.Search)
		idx++
	}
	if f.UserID != "" {
		where += fmt.Sprintf(` AND b.user_id = $%d`, idx)
		args = append(args, f.UserID)
		idx++
	}

	var total int
	countQ := `SELECT COUNT(*) FROM blogs b ` + where
	if err := r.pool.QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count blogs: %w", err)
	}

	listQ := `SELECT ` + blogColumns + ` FROM blogs b JOIN users u ON u.user_id = b.user_id ` + where +
		fmt.Sprintf(` ORDER BY b.published_at DESC NULLS LAST, b.created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.pool.Query(ctx, listQ, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list blogs: %w", err)
	}
	defer rows.Close()

	var blogs []model.Blog
	for rows.Next() {
		b, err := scanBlog(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan blog row: %w", err)
		}
		blogs = append(blogs, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate blog rows: %w", err)
	}
	return blogs, total, nil
}

func (r *blogRepo) UpdateBlog(ctx context.Context, b *model.Blog) error {
	const q = `
        UPDATE blogs
        SET title = $2, content = $3, excerpt = $4, cover_image_url = $5, tags = $6,
            category = $7, status = $8, is_premium = $9, read_time_minutes = $10,
            published_at = $11, updated_at = NOW()
        WHERE blog_id = $1`
	_, err := r.pool.Exec(ctx, q,
		b.BlogID, b.Title, b.Content, b.Excerpt, b.CoverImageURL, b.Tags,
		b.Category, b.Status, b.IsPremium, b.ReadTimeMinutes, b.PublishedAt)
	if err != nil {
		return fmt.Errorf("update blog %s: %w", b.BlogID, err)
	}
	return nil
}

func (r *blogRepo) UpdateSEO(ctx context.Context, blogID, seoTitle, seoDescription string, keywords []string) error {
	const q = `
        UPDATE blogs
        SET seo_title = $2, seo_description = $3, seo_keywords = $4, updated_at = NOW()
        WHERE blog_id = $1`
	if _, err := r.pool.Exec(ctx, q, blogID, seoTitle, seoDescription, keywords); err != nil {
		return fmt.Errorf("update seo for blog %s: %w", blogID, err)
	}
	return nil
}

func (r *blogRepo) UpdateTags(ctx context.Context, blogID string, tags []string) error {
	const q = `UPDATE blogs SET tags = $2, updated_at = NOW() WHERE blog_id = $1`
	if _, err := r.pool.Exec(ctx, q, blogID, tags); err != nil {
		return fmt.Errorf("update tags for blog %s: %w", blogID, err)
	}
	return nil
}

func (r *blogRepo) DeleteBlog(ctx context.Context, blogID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM blogs WHERE blog_id = $1`, blogID); err != nil {
		return fmt.Errorf("delete blog %s: %w", blogID, err)
	}
	return nil
}

// IncrementCounter bumps one of the denormalized engagement counters.
func (r *blogRepo) IncrementCounter(ctx context.Context, blogID, counter string) error {
	var q string
	switch counter {
	case model.EventView:
		q = `UPDATE blogs SET views = views + 1 WHERE blog_id = $1`
	case model.EventLike:
		q = `UPDATE blogs SET likes = likes + 1 WHERE blog_id = $1`
	case model.EventShare:
		q = `UPDATE blogs SET shares = shares + 1 WHERE blog_id = $1`
	default:
		return nil
	}
	if _, err := r.pool.Exec(ctx, q, blogID); err != nil {
		return fmt.Errorf("increment %s counter for blog %s: %w", counter, blogID, err)
	}
	return nil
}
