package dto

import "time"

// BlogCreateRequest is the payload for creating a blog.
type BlogCreateRequest struct {
	Title     string   `json:"title" validate:"required,min=3,max=200"`
	Content   string   `json:"content" validate:"required,min=10"`
	Excerpt   string   `json:"excerpt" validate:"omitempty,max=500"`
	Category  string   `json:"category" validate:"omitempty,max=100"`
	Tags      []string `json:"tags" validate:"omitempty,max=10,dive,max=50"`
	CoverURL  string   `json:"cover_url" validate:"omitempty,url"`
	Status    string   `json:"status" validate:"omitempty,oneof=draft published"`
	IsPremium bool     `json:"is_premium"`
}

// BlogUpdateRequest is the payload for updating a blog.
type BlogUpdateRequest struct {
	Title     string   `json:"title" validate:"omitempty,min=3,max=200"`
	Content   string   `json:"content" validate:"omitempty,min=10"`
	Excerpt   string   `json:"excerpt" validate:"omitempty,max=500"`
	Category  string   `json:"category" validate:"omitempty,max=100"`
	Tags      []string `json:"tags" validate:"omitempty,max=10,dive,max=50"`
	CoverURL  string   `json:"cover_url" validate:"omitempty,url"`
	Status    string   `json:"status" validate:"omitempty,oneof=draft published archived"`
	IsPremium bool     `json:"is_premium"`
}

// BlogResponse is a blog returned in API responses.
type BlogResponse struct {
	BlogID          string     `json:"blog_id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Content         string     `json:"content,omitempty"`
	Excerpt         string     `json:"excerpt"`
	Category        string     `json:"category"`
	Tags            []string   `json:"tags"`
	CoverURL        string     `json:"cover_url"`
	Status          string     `json:"status"`
	IsPremium       bool       `json:"is_premium"`
	AuthorID        string     `json:"author_id"`
	AuthorName      string     `json:"author_name"`
	AuthorAvatar    string     `json:"author_avatar"`
	SEOTitle        string     `json:"seo_title,omitempty"`
	MetaDescription string     `json:"meta_description,omitempty"`
	Keywords        []string   `json:"keywords,omitempty"`
	ViewCount       int        `json:"view_count"`
	LikeCount       int        `json:"like_count"`
	ShareCount      int        `json:"share_count"`
	ReadTimeMinutes int        `json:"read_time_minutes"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// BlogListResponse wraps a page of blogs with the total match count.
type BlogListResponse struct {
	Blogs  []BlogResponse `json:"blogs"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// SuggestionsResponse carries generated content ideas.
type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
	Provider    string   `json:"provider"`
}

// SEOResponse carries generated SEO metadata.
type SEOResponse struct {
	SEOTitle        string   `json:"seo_title"`
	MetaDescription string   `json:"meta_description"`
	Keywords        []string `json:"keywords"`
	Provider        string   `json:"provider"`
}

// TagsResponse carries generated tags.
type TagsResponse struct {
	Tags     []string `json:"tags"`
	Provider string   `json:"provider"`
}

// AIStatusResponse reports whether the configured AI provider answers.
type AIStatusResponse struct {
	Provider string `json:"provider"`
	Status   string `json:"status"`
	Detail   string `json:"detail,omitempty"`
}
