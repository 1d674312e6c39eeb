package service

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"app/internal/config"

	"github.com/rs/zerolog"
)

// CompletionProvider is a minimal text-completion client. Implementations
// wrap one hosted AI API each.
type CompletionProvider interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
	Name() string
}

// SEOResult holds AI- or heuristic-derived SEO metadata.
type SEOResult struct {
	SEOTitle        string   `json:"seo_title"`
	MetaDescription string   `json:"meta_description"`
	Keywords        []string `json:"keywords"`
	Source          string   `json:"source"`
}

// SuggestionsResult holds content improvement suggestions.
type SuggestionsResult struct {
	Suggestions []string `json:"suggestions"`
	Source      string   `json:"source"`
	Message     string   `json:"message"`
}

// AIService produces writing assistance: content suggestions, SEO metadata
// and tags. Every operation degrades to deterministic heuristics when no
// provider is configured or the provider call fails; AI assistance is best
// effort, never a hard dependency.
type AIService interface {
	GenerateContentSuggestions(ctx context.Context, title, content string) *SuggestionsResult
	OptimizeSEO(ctx context.Context, title, content string) *SEOResult
	GenerateTags(ctx context.Context, title, content string) []string
	// TestConnection probes the configured provider with a one-token prompt.
	TestConnection(ctx context.Context) (provider string, err error)
}

type aiService struct {
	provider CompletionProvider
	logger   zerolog.Logger
}

// NewAIService selects the provider named by AI_PROVIDER. With no usable key
// the service runs in fallback-only mode.
func NewAIService(cfg *config.Config, logger zerolog.Logger) AIService {
	lg := logger.With().Str("service", "AIService").Logger()

	var provider CompletionProvider
	switch cfg.AIProvider {
	case "gemini":
		if cfg.GeminiAPIKey != "" {
			provider = NewGeminiProvider(cfg.GeminiAPIKey)
		}
	case "openai":
		if cfg.OpenAIAPIKey != "" {
			provider = NewOpenAIProvider(cfg.OpenAIAPIKey)
		}
	default:
		lg.Warn().Str("provider", cfg.AIProvider).Msg("Unknown AI provider, running in fallback mode")
	}
	if provider == nil {
		lg.Warn().Msg("No AI provider configured, running in fallback mode")
	} else {
		lg.Info().Str("provider", provider.Name()).Msg("AI provider initialized")
	}
	return &aiService{provider: provider, logger: lg}
}

func (s *aiService) TestConnection(ctx context.Context) (string, error) {
	if s.provider == nil {
		return "", fmt.Errorf("no AI provider configured")
	}
	if _, err := s.provider.Complete(ctx, "Hello", 5); err != nil {
		return s.provider.Name(), err
	}
	return s.provider.Name(), nil
}

func (s *aiService) GenerateContentSuggestions(ctx context.Context, title, content string) *SuggestionsResult {
	fallback := fallbackSuggestions(title)
	if s.provider == nil {
		return &SuggestionsResult{Suggestions: fallback, Source: "fallback", Message: "Using smart suggestions (no AI provider configured)"}
	}

	prompt := fmt.Sprintf(
		"Based on the blog title %q and content %q, provide 3 specific content improvement suggestions. Focus on structure, engagement, and value for readers.",
		title, truncate(content, 500))
	raw, err := s.provider.Complete(ctx, prompt, 300)
	if err != nil {
		s.logger.Warn().Err(err).Str("provider", s.provider.Name()).Msg("AI suggestion call failed, using fallback")
		return &SuggestionsResult{Suggestions: fallback, Source: "fallback", Message: fmt.Sprintf("Using smart suggestions (%s API error)", s.provider.Name())}
	}

	suggestions := nonEmptyLines(raw, 3)
	if len(suggestions) == 0 {
		return &SuggestionsResult{Suggestions: fallback, Source: "fallback", Message: "Using fallback suggestions"}
	}
	return &SuggestionsResult{
		Suggestions: suggestions,
		Source:      s.provider.Name(),
		Message:     fmt.Sprintf("AI-powered suggestions (%s)", s.provider.Name()),
	}
}

func (s *aiService) OptimizeSEO(ctx context.Context, title, content string) *SEOResult {
	fallback := fallbackSEO(title, content)
	if s.provider == nil {
		return fallback
	}

	prompt := fmt.Sprintf(
		"Optimize SEO for this blog post:\nTitle: %q\nContent: %q\n\nProvide:\n1. SEO Title (max 60 chars)\n2. Meta Description (max 160 chars)\n3. 5 keywords (comma-separated)",
		title, truncate(content, 800))
	raw, err := s.provider.Complete(ctx, prompt, 200)
	if err != nil {
		s.logger.Warn().Err(err).Str("provider", s.provider.Name()).Msg("AI SEO call failed, using fallback")
		return fallback
	}

	result := &SEOResult{
		SEOTitle:        extractSEOTitle(raw),
		MetaDescription: extractMetaDescription(raw),
		Keywords:        extractKeywords(raw),
		Source:          s.provider.Name(),
	}
	if result.SEOTitle == "" {
		result.SEOTitle = fallback.SEOTitle
	}
	if result.MetaDescription == "" {
		result.MetaDescription = fallback.MetaDescription
	}
	if len(result.Keywords) == 0 {
		result.Keywords = fallback.Keywords
	}
	return result
}

func (s *aiService) GenerateTags(ctx context.Context, title, content string) []string {
	fallback := fallbackTags(title, content)
	if s.provider == nil {
		return fallback
	}

	prompt := fmt.Sprintf(
		"Generate 5-8 relevant tags for this blog post:\nTitle: %q\nContent: %q\n\nReturn only the tags, separated by commas.",
		title, truncate(content, 500))
	raw, err := s.provider.Complete(ctx, prompt, 100)
	if err != nil {
		s.logger.Warn().Err(err).Str("provider", s.provider.Name()).Msg("AI tag call failed, using fallback")
		return fallback
	}

	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			tags = append(tags, tag)
		}
		if len(tags) == 8 {
			break
		}
	}
	if len(tags) == 0 {
		return fallback
	}
	return tags
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func nonEmptyLines(s string, max int) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == max {
			break
		}
	}
	return lines
}

func fallbackSuggestions(title string) []string {
	return []string{
		fmt.Sprintf("Add a compelling introduction that hooks readers with a question or interesting fact about %q.", title),
		"Break your content into clear sections with descriptive headings to improve readability.",
		"Include practical examples or actionable tips that readers can apply immediately.",
	}
}

func fallbackSEO(title, content string) *SEOResult {
	seoTitle := title
	if len(seoTitle) > 60 {
		seoTitle = seoTitle[:57] + "..."
	}

	var metaDescription string
	if content != "" {
		for _, sentence := range strings.Split(content, ".") {
			if len(strings.TrimSpace(sentence)) > 20 {
				metaDescription = strings.TrimSpace(sentence) + "."
				break
			}
		}
		if metaDescription == "" {
			metaDescription = strings.TrimSpace(truncate(content, 150))
		}
	} else {
		metaDescription = fmt.Sprintf("Learn about %s. Comprehensive guide and insights.", title)
	}
	if len(metaDescription) > 160 {
		metaDescription = metaDescription[:157] + "..."
	}

	return &SEOResult{
		SEOTitle:        seoTitle,
		MetaDescription: metaDescription,
		Keywords:        topWords(title+" "+content, 5, 4),
		Source:          "fallback",
	}
}

func fallbackTags(title, content string) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, word := range strings.Fields(strings.ToLower(title + " " + content)) {
		word = nonAlnum.ReplaceAllString(word, "")
		if len(word) <= 3 || seen[word] {
			continue
		}
		seen[word] = true
		tags = append(tags, word)
		if len(tags) == 5 {
			break
		}
	}
	return tags
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]`)

// topWords returns the most frequent words of at least minLen letters.
func topWords(text string, n, minLen int) []string {
	freq := make(map[string]int)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		clean := nonAlnum.ReplaceAllString(word, "")
		if len(clean) >= minLen {
			freq[clean]++
		}
	}
	words := make([]string, 0, len(freq))
	for word := range freq {
		words = append(words, word)
	}
	sort.Slice(words, func(i, j int) bool {
		if freq[words[i]] != freq[words[j]] {
			return freq[words[i]] > freq[words[j]]
		}
		return words[i] < words[j]
	})
	if len(words) > n {
		words = words[:n]
	}
	return words
}

var (
	seoTitleRe = regexp.MustCompile(`(?i)(?:seo title|title)[:\s]*([^\n]+)`)
	metaDescRe = regexp.MustCompile(`(?i)(?:meta description|description)[:\s]*([^\n]+)`)
	keywordsRe = regexp.MustCompile(`(?i)keywords?[:\s]*([^\n]+)`)
)

func extractSEOTitle(text string) string {
	m := seoTitleRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return truncate(strings.TrimSpace(m[1]), 60)
}

func extractMetaDescription(text string) string {
	m := metaDescRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return truncate(strings.TrimSpace(m[1]), 160)
}

func extractKeywords(text string) []string {
	m := keywordsRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	var keywords []string
	for _, k := range strings.Split(m[1], ",") {
		k = strings.TrimSpace(k)
		if k != "" {
			keywords = append(keywords, k)
		}
	}
	return keywords
}
