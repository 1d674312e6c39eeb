package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"app/internal/model"
	"app/internal/repository"
	"app/internal/util"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrBlogNotFound = errors.New("blog not found")
	ErrAccessDenied = errors.New("access denied")
)

// BlogInput carries the writable fields of a blog post.
type BlogInput struct {
	Title         string
	Content       string
	Excerpt       string
	CoverImageURL string
	Tags          []string
	Category      string
	Status        string
	IsPremium     bool
}

// BlogService manages blog posts, including the quota-gated AI assists.
type BlogService interface {
	Create(ctx context.Context, userID string, in BlogInput) (*model.Blog, error)
	GetBySlug(ctx context.Context, slug string) (*model.Blog, error)
	GetByID(ctx context.Context, blogID string) (*model.Blog, error)
	List(ctx context.Context, f model.BlogFilter) ([]model.Blog, int, error)
	Update(ctx context.Context, blogID, userID, role string, in BlogInput) (*model.Blog, error)
	Delete(ctx context.Context, blogID, userID, role string) error

	// The AI assists require ownership; callers gate them through
	// UsageService.CheckAndConsume first.
	SuggestContent(ctx context.Context, blogID, userID string) (*SuggestionsResult, error)
	OptimizeSEO(ctx context.Context, blogID, userID string) (*SEOResult, error)
	GenerateTags(ctx context.Context, blogID, userID string) ([]string, error)
}

type blogService struct {
	repo     repository.BlogRepository
	userRepo repository.UserRepository
	ai       AIService
	logger   zerolog.Logger
}

// NewBlogService creates a new BlogService with a scoped logger.
func NewBlogService(repo repository.BlogRepository, userRepo repository.UserRepository, ai AIService, logger zerolog.Logger) BlogService {
	return &blogService{
		repo:     repo,
		userRepo: userRepo,
		ai:       ai,
		logger:   logger.With().Str("service", "BlogService").Logger(),
	}
}

func (s *blogService) Create(ctx context.Context, userID string, in BlogInput) (*model.Blog, error) {
	status := in.Status
	if status == "" {
		status = model.BlogDraft
	}

	now := time.Now()
	blog := &model.Blog{
		BlogID: uuid.NewString(),
		UserID: userID,
		Title:  in.Title,
		// Timestamp suffix keeps slugs unique across posts with equal titles.
		Slug:            fmt.Sprintf("%s-%d", util.Slugify(in.Title), now.UnixMilli()),
		Content:         in.Content,
		Excerpt:         in.Excerpt,
		CoverImageURL:   in.CoverImageURL,
		Tags:            in.Tags,
		Category:        in.Category,
		Status:          status,
		IsPremium:       in.IsPremium,
		ReadTimeMinutes: util.ReadTimeMinutes(in.Content),
	}
	if blog.Tags == nil {
		blog.Tags = []string{}
	}
	if status == model.BlogPublished {
		blog.PublishedAt = &now
	}

	if err := s.repo.CreateBlog(ctx, blog); err != nil {
		return nil, err
	}
	if err := s.userRepo.AdjustTotalBlogs(ctx, userID, 1); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("Failed to bump blog count")
	}
	return s.repo.GetBlogByID(ctx, blog.BlogID)
}

func (s *blogService) GetBySlug(ctx context.Context, slug string) (*model.Blog, error) {
	blog, err := s.repo.GetBlogBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if blog == nil {
		return nil, ErrBlogNotFound
	}
	return blog, nil
}

func (s *blogService) GetByID(ctx context.Context, blogID string) (*model.Blog, error) {
	blog, err := s.repo.GetBlogByID(ctx, blogID)
	if err != nil {
		return nil, err
	}
	if blog == nil {
		return nil, ErrBlogNotFound
	}
	return blog, nil
}

func (s *blogService) List(ctx context.Context, f model.BlogFilter) ([]model.Blog, int, error) {
	if f.Status == "" {
		f.Status = model.BlogPublished
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 10
	}
	return s.repo.ListBlogs(ctx, f)
}

// requireOwner loads the blog and checks that the caller owns it or is an admin.
func (s *blogService) requireOwner(ctx context.Context, blogID, userID, role string) (*model.Blog, error) {
	blog, err := s.GetByID(ctx, blogID)
	if err != nil {
		return nil, err
	}
	if blog.UserID != userID && role != "admin" {
		return nil, ErrAccessDenied
	}
	return blog, nil
}

func (s *blogService) Update(ctx context.Context, blogID, userID, role string, in BlogInput) (*model.Blog, error) {
	blog, err := s.requireOwner(ctx, blogID, userID, role)
	if err != nil {
		return nil, err
	}

	if in.Title != "" {
		blog.Title = in.Title
	}
	if in.Content != "" {
		blog.Content = in.Content
		blog.ReadTimeMinutes = util.ReadTimeMinutes(in.Content)
	}
	if in.Excerpt != "" {
		blog.Excerpt = in.Excerpt
	}
	if in.CoverImageURL != "" {
		blog.CoverImageURL = in.CoverImageURL
	}
	if in.Tags != nil {
		blog.Tags = in.Tags
	}
	if in.Category != "" {
		blog.Category = in.Category
	}
	if in.Status != "" {
		if in.Status == model.BlogPublished && blog.Status != model.BlogPublished {
			now := time.Now()
			blog.PublishedAt = &now
		}
		blog.Status = in.Status
	}
	blog.IsPremium = in.IsPremium

	if err := s.repo.UpdateBlog(ctx, blog); err != nil {
		return nil, err
	}
	return s.repo.GetBlogByID(ctx, blogID)
}

func (s *blogService) Delete(ctx context.Context, blogID, userID, role string) error {
	blog, err := s.requireOwner(ctx, blogID, userID, role)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteBlog(ctx, blog.BlogID); err != nil {
		return err
	}
	if err := s.userRepo.AdjustTotalBlogs(ctx, blog.UserID, -1); err != nil {
		s.logger.Warn().Err(err).Str("user_id", blog.UserID).Msg("Failed to decrement blog count")
	}
	return nil
}

func (s *blogService) SuggestContent(ctx context.Context, blogID, userID string) (*SuggestionsResult, error) {
	blog, err := s.requireOwner(ctx, blogID, userID, "")
	if err != nil {
		return nil, err
	}
	return s.ai.GenerateContentSuggestions(ctx, blog.Title, blog.Content), nil
}

func (s *blogService) OptimizeSEO(ctx context.Context, blogID, userID string) (*SEOResult, error) {
	blog, err := s.requireOwner(ctx, blogID, userID, "")
	if err != nil {
		return nil, err
	}
	result := s.ai.OptimizeSEO(ctx, blog.Title, blog.Content)
	if err := s.repo.UpdateSEO(ctx, blog.BlogID, result.SEOTitle, result.MetaDescription, result.Keywords); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *blogService) GenerateTags(ctx context.Context, blogID, userID string) ([]string, error) {
	blog, err := s.requireOwner(ctx, blogID, userID, "")
	if err != nil {
		return nil, err
	}
	tags := s.ai.GenerateTags(ctx, blog.Title, blog.Content)
	if err := s.repo.UpdateTags(ctx, blog.BlogID, tags); err != nil {
		return nil, err
	}
	return tags, nil
}
