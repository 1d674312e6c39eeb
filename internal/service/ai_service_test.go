package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

type stubProvider struct {
	reply string
	err   error
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return p.reply, p.err
}

func newStubAIService(p CompletionProvider) *aiService {
	return &aiService{provider: p, logger: zerolog.Nop()}
}

func TestSuggestionsFallbackWithoutProvider(t *testing.T) {
	svc := newStubAIService(nil)

	res := svc.GenerateContentSuggestions(context.Background(), "Go Concurrency", "")
	if res.Source != "fallback" {
		t.Fatalf("source = %q, want fallback", res.Source)
	}
	if len(res.Suggestions) != 3 {
		t.Fatalf("got %d suggestions, want 3", len(res.Suggestions))
	}
	if !strings.Contains(res.Suggestions[0], "Go Concurrency") {
		t.Fatalf("first suggestion does not mention the title: %q", res.Suggestions[0])
	}
}

func TestSuggestionsFallbackOnProviderError(t *testing.T) {
	svc := newStubAIService(&stubProvider{err: errors.New("rate limited")})

	res := svc.GenerateContentSuggestions(context.Background(), "Go Concurrency", "goroutines and channels")
	if res.Source != "fallback" {
		t.Fatalf("source = %q, want fallback after provider error", res.Source)
	}
}

func TestSuggestionsFromProvider(t *testing.T) {
	svc := newStubAIService(&stubProvider{reply: "1. Hook the reader\n\n2. Add headings\n3. Close with a summary\n4. extra"})

	res := svc.GenerateContentSuggestions(context.Background(), "t", "c")
	if res.Source != "stub" {
		t.Fatalf("source = %q, want stub", res.Source)
	}
	if len(res.Suggestions) != 3 {
		t.Fatalf("got %d suggestions, want 3 (capped)", len(res.Suggestions))
	}
}

func TestOptimizeSEOExtraction(t *testing.T) {
	reply := "SEO Title: Mastering Go Concurrency\nMeta Description: A practical guide to goroutines.\nKeywords: go, concurrency, goroutines"
	svc := newStubAIService(&stubProvider{reply: reply})

	res := svc.OptimizeSEO(context.Background(), "title", "content here with enough words to matter.")
	if res.Source != "stub" {
		t.Fatalf("source = %q", res.Source)
	}
	if res.SEOTitle != "Mastering Go Concurrency" {
		t.Fatalf("seo title = %q", res.SEOTitle)
	}
	if res.MetaDescription != "A practical guide to goroutines." {
		t.Fatalf("meta description = %q", res.MetaDescription)
	}
	if len(res.Keywords) != 3 || res.Keywords[0] != "go" {
		t.Fatalf("keywords = %v", res.Keywords)
	}
}

func TestOptimizeSEOFallbackShape(t *testing.T) {
	svc := newStubAIService(nil)

	longTitle := strings.Repeat("very long title ", 10)
	res := svc.OptimizeSEO(context.Background(), longTitle, "This sentence is comfortably longer than twenty characters. Short.")
	if res.Source != "fallback" {
		t.Fatalf("source = %q", res.Source)
	}
	if len(res.SEOTitle) > 60 {
		t.Fatalf("seo title too long: %d chars", len(res.SEOTitle))
	}
	if !strings.HasSuffix(res.SEOTitle, "...") {
		t.Fatalf("truncated title should end with ellipsis: %q", res.SEOTitle)
	}
	if len(res.MetaDescription) > 160 {
		t.Fatalf("meta description too long: %d chars", len(res.MetaDescription))
	}
}

func TestGenerateTagsFromProvider(t *testing.T) {
	svc := newStubAIService(&stubProvider{reply: "go, concurrency, , goroutines , channels"})

	tags := svc.GenerateTags(context.Background(), "t", "c")
	want := []string{"go", "concurrency", "goroutines", "channels"}
	if len(tags) != len(want) {
		t.Fatalf("tags = %v", tags)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Fatalf("tags[%d] = %q, want %q", i, tags[i], want[i])
		}
	}
}

func TestGenerateTagsFallbackSkipsShortWords(t *testing.T) {
	svc := newStubAIService(nil)

	tags := svc.GenerateTags(context.Background(), "The Art of Building Distributed Systems", "")
	for _, tag := range tags {
		if len(tag) <= 3 {
			t.Fatalf("fallback tags include short word %q", tag)
		}
	}
	if len(tags) == 0 {
		t.Fatal("no fallback tags generated")
	}
}

func TestTestConnectionWithoutProvider(t *testing.T) {
	svc := newStubAIService(nil)
	if _, err := svc.TestConnection(context.Background()); err == nil {
		t.Fatal("expected error with no provider configured")
	}
}

func TestTopWords(t *testing.T) {
	words := topWords("kafka kafka kafka streams streams topic", 2, 4)
	if len(words) != 2 || words[0] != "kafka" || words[1] != "streams" {
		t.Fatalf("topWords = %v", words)
	}
}
