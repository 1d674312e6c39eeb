package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"app/internal/model"

	"github.com/rs/zerolog"
)

type fakeBlogRepo struct {
	mu    sync.Mutex
	blogs map[string]*model.Blog
}

func newFakeBlogRepo() *fakeBlogRepo {
	return &fakeBlogRepo{blogs: make(map[string]*model.Blog)}
}

func (r *fakeBlogRepo) CreateBlog(ctx context.Context, b *model.Blog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *b
	r.blogs[b.BlogID] = &cp
	return nil
}

func (r *fakeBlogRepo) GetBlogByID(ctx context.Context, blogID string) (*model.Blog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.blogs[blogID]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBlogRepo) GetBlogBySlug(ctx context.Context, slug string) (*model.Blog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.blogs {
		if b.Slug == slug {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeBlogRepo) ListBlogs(ctx context.Context, f model.BlogFilter) ([]model.Blog, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Blog
	for _, b := range r.blogs {
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		out = append(out, *b)
	}
	return out, len(out), nil
}

func (r *fakeBlogRepo) UpdateBlog(ctx context.Context, b *model.Blog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *b
	r.blogs[b.BlogID] = &cp
	return nil
}

func (r *fakeBlogRepo) UpdateSEO(ctx context.Context, blogID, seoTitle, seoDescription string, keywords []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.blogs[blogID]; ok {
		b.SEOTitle, b.SEODescription, b.SEOKeywords = seoTitle, seoDescription, keywords
	}
	return nil
}

func (r *fakeBlogRepo) UpdateTags(ctx context.Context, blogID string, tags []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.blogs[blogID]; ok {
		b.Tags = tags
	}
	return nil
}

func (r *fakeBlogRepo) DeleteBlog(ctx context.Context, blogID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.blogs, blogID)
	return nil
}

func (r *fakeBlogRepo) IncrementCounter(ctx context.Context, blogID, counter string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.blogs[blogID]
	if !ok {
		return nil
	}
	switch counter {
	case model.EventView:
		b.Views++
	case model.EventLike:
		b.Likes++
	case model.EventShare:
		b.Shares++
	}
	return nil
}

func newTestBlogService(repo *fakeBlogRepo, store *fakeUserStore) BlogService {
	return NewBlogService(repo, store, newStubAIService(nil), zerolog.Nop())
}

func TestBlogCreateDefaults(t *testing.T) {
	repo := newFakeBlogRepo()
	store := newFakeUserStore(&model.User{UserID: "u1"})
	svc := newTestBlogService(repo, store)

	blog, err := svc.Create(context.Background(), "u1", BlogInput{
		Title:   "Hello, World!",
		Content: strings.Repeat("word ", 400),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if blog.Status != model.BlogDraft {
		t.Fatalf("status = %q, want draft by default", blog.Status)
	}
	if blog.PublishedAt != nil {
		t.Fatal("draft must not carry a publish time")
	}
	if !strings.HasPrefix(blog.Slug, "hello-world-") {
		t.Fatalf("slug = %q", blog.Slug)
	}
	if blog.ReadTimeMinutes != 2 {
		t.Fatalf("read time = %d, want 2", blog.ReadTimeMinutes)
	}

	u, _ := store.GetUserByID(context.Background(), "u1")
	if u.TotalBlogs != 1 {
		t.Fatalf("total blogs = %d, want 1", u.TotalBlogs)
	}
}

func TestBlogCreatePublishedSetsPublishTime(t *testing.T) {
	repo := newFakeBlogRepo()
	svc := newTestBlogService(repo, newFakeUserStore(&model.User{UserID: "u1"}))

	blog, err := svc.Create(context.Background(), "u1", BlogInput{
		Title:   "Launch Post",
		Content: "short",
		Status:  model.BlogPublished,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if blog.PublishedAt == nil {
		t.Fatal("published blog has no publish time")
	}
}

func TestBlogUpdateOwnership(t *testing.T) {
	repo := newFakeBlogRepo()
	svc := newTestBlogService(repo, newFakeUserStore(&model.User{UserID: "owner"}))

	blog, err := svc.Create(context.Background(), "owner", BlogInput{Title: "Mine", Content: "body"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Update(context.Background(), blog.BlogID, "intruder", "user", BlogInput{Title: "Stolen"}); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}

	// Admins can edit anyone's post.
	updated, err := svc.Update(context.Background(), blog.BlogID, "someone-else", "admin", BlogInput{Title: "Moderated"})
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if updated.Title != "Moderated" {
		t.Fatalf("title = %q", updated.Title)
	}
}

func TestBlogUpdatePublishTransition(t *testing.T) {
	repo := newFakeBlogRepo()
	svc := newTestBlogService(repo, newFakeUserStore(&model.User{UserID: "u1"}))

	blog, err := svc.Create(context.Background(), "u1", BlogInput{Title: "Draft", Content: "body"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	published, err := svc.Update(context.Background(), blog.BlogID, "u1", "user", BlogInput{Status: model.BlogPublished})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if published.PublishedAt == nil {
		t.Fatal("publish transition did not set publish time")
	}
	first := *published.PublishedAt

	// Re-publishing an already published post keeps the original time.
	again, err := svc.Update(context.Background(), blog.BlogID, "u1", "user", BlogInput{Status: model.BlogPublished})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !again.PublishedAt.Equal(first) {
		t.Fatalf("publish time changed on replay: %v vs %v", again.PublishedAt, first)
	}
}

func TestBlogDeleteAdjustsCount(t *testing.T) {
	repo := newFakeBlogRepo()
	store := newFakeUserStore(&model.User{UserID: "u1"})
	svc := newTestBlogService(repo, store)

	blog, err := svc.Create(context.Background(), "u1", BlogInput{Title: "Gone Soon", Content: "body"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(context.Background(), blog.BlogID, "u1", "user"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), blog.BlogID); !errors.Is(err, ErrBlogNotFound) {
		t.Fatalf("expected ErrBlogNotFound, got %v", err)
	}

	u, _ := store.GetUserByID(context.Background(), "u1")
	if u.TotalBlogs != 0 {
		t.Fatalf("total blogs = %d, want 0", u.TotalBlogs)
	}
}

func TestOptimizeSEOPersists(t *testing.T) {
	repo := newFakeBlogRepo()
	svc := newTestBlogService(repo, newFakeUserStore(&model.User{UserID: "u1"}))

	blog, err := svc.Create(context.Background(), "u1", BlogInput{
		Title:   "Observability in Practice",
		Content: "Structured logging and tracing pay for themselves quickly.",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	res, err := svc.OptimizeSEO(context.Background(), blog.BlogID, "u1")
	if err != nil {
		t.Fatalf("OptimizeSEO: %v", err)
	}
	stored, _ := svc.GetByID(context.Background(), blog.BlogID)
	if stored.SEOTitle != res.SEOTitle {
		t.Fatalf("stored seo title = %q, want %q", stored.SEOTitle, res.SEOTitle)
	}
	if stored.SEODescription != res.MetaDescription {
		t.Fatalf("stored seo description = %q", stored.SEODescription)
	}
}

func TestListDefaultsToPublished(t *testing.T) {
	repo := newFakeBlogRepo()
	svc := newTestBlogService(repo, newFakeUserStore(&model.User{UserID: "u1"}))

	if _, err := svc.Create(context.Background(), "u1", BlogInput{Title: "Draft", Content: "x"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(context.Background(), "u1", BlogInput{Title: "Live", Content: "x", Status: model.BlogPublished}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	blogs, total, err := svc.List(context.Background(), model.BlogFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(blogs) != 1 || blogs[0].Status != model.BlogPublished {
		t.Fatalf("list returned %d blogs (total %d)", len(blogs), total)
	}
}
