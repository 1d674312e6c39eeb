package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"app/internal/middleware"
	"app/internal/model"
	"app/internal/service"
	"app/internal/util"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type fakeUsageService struct {
	snap *model.UsageSnapshot
	err  error
}

func (s *fakeUsageService) CheckAndConsume(ctx context.Context, userID string) (*model.UsageSnapshot, error) {
	return s.snap, s.err
}

func (s *fakeUsageService) GetUsage(ctx context.Context, userID string) (*model.UsageSnapshot, error) {
	return s.snap, s.err
}

type fakeBlogService struct {
	blog        *model.Blog
	suggestions *service.SuggestionsResult
}

func (s *fakeBlogService) Create(ctx context.Context, userID string, in service.BlogInput) (*model.Blog, error) {
	return s.blog, nil
}

func (s *fakeBlogService) GetBySlug(ctx context.Context, slug string) (*model.Blog, error) {
	if s.blog == nil || s.blog.Slug != slug {
		return nil, service.ErrBlogNotFound
	}
	return s.blog, nil
}

func (s *fakeBlogService) GetByID(ctx context.Context, blogID string) (*model.Blog, error) {
	if s.blog == nil || s.blog.BlogID != blogID {
		return nil, service.ErrBlogNotFound
	}
	return s.blog, nil
}

func (s *fakeBlogService) List(ctx context.Context, f model.BlogFilter) ([]model.Blog, int, error) {
	if s.blog == nil {
		return nil, 0, nil
	}
	return []model.Blog{*s.blog}, 1, nil
}

func (s *fakeBlogService) Update(ctx context.Context, blogID, userID, role string, in service.BlogInput) (*model.Blog, error) {
	return s.blog, nil
}

func (s *fakeBlogService) Delete(ctx context.Context, blogID, userID, role string) error {
	return nil
}

func (s *fakeBlogService) SuggestContent(ctx context.Context, blogID, userID string) (*service.SuggestionsResult, error) {
	return s.suggestions, nil
}

func (s *fakeBlogService) OptimizeSEO(ctx context.Context, blogID, userID string) (*service.SEOResult, error) {
	return &service.SEOResult{SEOTitle: "t", Source: "fallback"}, nil
}

func (s *fakeBlogService) GenerateTags(ctx context.Context, blogID, userID string) ([]string, error) {
	return []string{"go"}, nil
}

type fakeAIService struct {
	provider string
	err      error
}

func (s *fakeAIService) GenerateContentSuggestions(ctx context.Context, title, content string) *service.SuggestionsResult {
	return &service.SuggestionsResult{Source: "fallback"}
}

func (s *fakeAIService) OptimizeSEO(ctx context.Context, title, content string) *service.SEOResult {
	return &service.SEOResult{Source: "fallback"}
}

func (s *fakeAIService) GenerateTags(ctx context.Context, title, content string) []string {
	return nil
}

func (s *fakeAIService) TestConnection(ctx context.Context) (string, error) {
	return s.provider, s.err
}

func newTestMux(t *testing.T, blogSvc service.BlogService, usageSvc service.UsageService) *http.ServeMux {
	t.Helper()
	v := validator.New(validator.WithRequiredStructEnabled())
	h := NewBlogHandler(blogSvc, usageSvc, &fakeAIService{provider: "openai"}, nil, nil, v, zerolog.Nop())
	mux := http.NewServeMux()
	h.RegisterRoutes(mux, middleware.AuthMiddleware("test-secret"))
	return mux
}

func bearer(t *testing.T, userID string) string {
	return bearerWithRole(t, userID, "user")
}

func bearerWithRole(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := util.GenerateToken(userID, role, "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return "Bearer " + token
}

func TestAIAssistQuotaExceededReturns429(t *testing.T) {
	usage := &fakeUsageService{err: &service.QuotaExceededError{Limit: 10, Used: 10, Plan: model.PlanFree}}
	blog := &fakeBlogService{blog: &model.Blog{BlogID: "b1", UserID: "u1"}}
	mux := newTestMux(t, blog, usage)

	req := httptest.NewRequest(http.MethodPost, "/blogs/b1/ai/suggestions", nil)
	req.Header.Set("Authorization", bearer(t, "u1"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	var body struct {
		Plan  string `json:"plan"`
		Used  int    `json:"used"`
		Limit int    `json:"limit"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Plan != model.PlanFree || body.Used != 10 || body.Limit != 10 {
		t.Fatalf("body = %+v", body)
	}
}

func TestAIAssistWithinQuota(t *testing.T) {
	usage := &fakeUsageService{snap: &model.UsageSnapshot{MonthlyCount: 1, Limit: 10, Plan: model.PlanFree}}
	blog := &fakeBlogService{
		blog:        &model.Blog{BlogID: "b1", UserID: "u1"},
		suggestions: &service.SuggestionsResult{Suggestions: []string{"one"}, Source: "fallback"},
	}
	mux := newTestMux(t, blog, usage)

	req := httptest.NewRequest(http.MethodPost, "/blogs/b1/ai/suggestions", nil)
	req.Header.Set("Authorization", bearer(t, "u1"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Suggestions []string `json:"suggestions"`
		Provider    string   `json:"provider"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Suggestions) != 1 || body.Provider != "fallback" {
		t.Fatalf("body = %+v", body)
	}
}

func TestAIAssistRequiresAuth(t *testing.T) {
	mux := newTestMux(t, &fakeBlogService{}, &fakeUsageService{})

	req := httptest.NewRequest(http.MethodPost, "/blogs/b1/ai/suggestions", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAIStatusReportsProvider(t *testing.T) {
	mux := newTestMux(t, &fakeBlogService{}, &fakeUsageService{})

	req := httptest.NewRequest(http.MethodGet, "/blogs/ai-status", nil)
	req.Header.Set("Authorization", bearerWithRole(t, "admin1", "admin"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Provider string `json:"provider"`
		Status   string `json:"status"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Provider != "openai" || body.Status != "ok" {
		t.Fatalf("body = %+v", body)
	}
}

func TestAIStatusRequiresAdmin(t *testing.T) {
	mux := newTestMux(t, &fakeBlogService{}, &fakeUsageService{})

	req := httptest.NewRequest(http.MethodGet, "/blogs/ai-status", nil)
	req.Header.Set("Authorization", bearer(t, "u1"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 for non-admin", rec.Code)
	}
}

func TestGetBlogByIDPublic(t *testing.T) {
	blog := &fakeBlogService{blog: &model.Blog{BlogID: "b1", Slug: "hello", Title: "Hello"}}
	mux := newTestMux(t, blog, &fakeUsageService{})

	req := httptest.NewRequest(http.MethodGet, "/blogs/b1", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 without auth", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/blogs/missing", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
