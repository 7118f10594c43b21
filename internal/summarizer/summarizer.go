// Package summarizer turns one page URL into a short markdown summary.
package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"pagebrief/internal/domain"
	"pagebrief/internal/prompt"
)

// Summarizer produces a markdown summary for a given page URL.
type Summarizer interface {
	Summarize(ctx context.Context, pageURL string) (string, error)
}

// ContentFetcher retrieves the visible text of a page.
type ContentFetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// CompletionClient sends an ordered chat request and returns the generated text.
type CompletionClient interface {
	Complete(ctx context.Context, messages []domain.Message) (string, error)
}

// PageSummarizer composes fetch, prompt assembly, and the inference call.
type PageSummarizer struct {
	fetcher ContentFetcher
	client  CompletionClient
	log     *slog.Logger
}

func NewPageSummarizer(
	fetcher ContentFetcher,
	client CompletionClient,
	log *slog.Logger,
) *PageSummarizer {
	return &PageSummarizer{
		fetcher: fetcher,
		client:  client,
		log:     log,
	}
}

// Summarize fetches pageURL and asks the model for a summary. A failure at
// either step is returned to the caller; no retries are attempted.
func (s *PageSummarizer) Summarize(ctx context.Context, pageURL string) (string, error) {
	s.log.InfoContext(ctx, "Fetching website content",
		"url", pageURL)

	content, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("fetch content: %w", err)
	}

	messages := prompt.Build(content)

	s.log.InfoContext(ctx, "Requesting summary",
		"url", pageURL,
		"contentLen", len(content))

	summary, err := s.client.Complete(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("complete chat: %w", err)
	}

	return strings.TrimSpace(summary), nil
}
