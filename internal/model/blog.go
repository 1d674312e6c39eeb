package model

import "time"

// Blog statuses.
const (
	BlogDraft     = "draft"
	BlogPublished = "published"
	BlogArchived  = "archived"
)

// Blog represents a blog post.
type Blog struct {
	BlogID        string     `db:"blog_id" json:"blog_id"`
	UserID        string     `db:"user_id" json:"user_id"`
	AuthorName    string     `db:"author_name" json:"author_name,omitempty"`
	AuthorAvatar  string     `db:"author_avatar" json:"author_avatar,omitempty"`
	Title         string     `db:"title" json:"title"`
	Slug          string     `db:"slug" json:"slug"`
	Content       string     `db:"content" json:"content"`
	Excerpt       string     `db:"excerpt" json:"excerpt"`
	CoverImageURL string     `db:"cover_image_url" json:"cover_image_url"`
	Tags          []string   `db:"tags" json:"tags"`
	Category      string     `db:"category" json:"category"`
	Status        string     `db:"status" json:"status"`

	SEOTitle       string   `db:"seo_title" json:"seo_title"`
	SEODescription string   `db:"seo_description" json:"seo_description"`
	SEOKeywords    []string `db:"seo_keywords" json:"seo_keywords"`

	Views           int  `db:"views" json:"views"`
	Likes           int  `db:"likes" json:"likes"`
	Shares          int  `db:"shares" json:"shares"`
	ReadTimeMinutes int  `db:"read_time_minutes" json:"read_time_minutes"`
	IsPremium       bool `db:"is_premium" json:"is_premium"`

	PublishedAt *time.Time `db:"published_at" json:"published_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// BlogFilter narrows blog listings.
type BlogFilter struct {
	Status   string
	Category string
	Tags     []string
	Search   string
	UserID   string
	Limit    int
	Offset   int
}
