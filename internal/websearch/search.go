package websearch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ykykj/assistant/internal/logging"
)

// Topics accepted by Search.
const (
	TopicGeneral = "general"
	TopicNews    = "news"
)

// MaxRawContent caps the page text Format includes per result.
const MaxRawContent = 2000

// DefaultMaxResults is used when Query.MaxResults is not positive.
const DefaultMaxResults = 5

// ErrNotConfigured is returned by New when no provider has credentials.
var ErrNotConfigured = errors.New("no web search provider configured")

// NotConfiguredMessage is what the webSearch tool answers without a provider.
const NotConfiguredMessage = "Error: Web search is not available. TAVILY_API_KEY is not configured."

// Query describes a search.
type Query struct {
	Text       string
	MaxResults int
	Topic      string
	// IncludeRawContent asks for full page text where the provider supports it.
	IncludeRawContent bool
}

func (q Query) normalized() (Query, error) {
	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" {
		return q, errors.New("query is required")
	}
	if q.MaxResults <= 0 {
		q.MaxResults = DefaultMaxResults
	}
	switch strings.ToLower(q.Topic) {
	case "", TopicGeneral:
		q.Topic = TopicGeneral
	case TopicNews:
		q.Topic = TopicNews
	default:
		return q, fmt.Errorf("unsupported topic %q, use general or news", q.Topic)
	}
	return q, nil
}

// Result is a single hit.
type Result struct {
	Title   string
	URL     string
	Content string
	// RawContent is the full page text, set only when requested and
	// supported.
	RawContent string
}

// Searcher runs web searches.
type Searcher interface {
	Search(ctx context.Context, q Query) ([]Result, error)
}

// Config selects providers.
type Config struct {
	TavilyAPIKey   string
	GoogleAPIKey   string
	GoogleEngineID string
}

// New returns the preferred configured provider.
func New(ctx context.Context, cfg Config) (Searcher, error) {
	switch {
	case cfg.TavilyAPIKey != "":
		return NewTavily(cfg.TavilyAPIKey), nil
	case cfg.GoogleAPIKey != "" && cfg.GoogleEngineID != "":
		return NewGoogle(ctx, cfg.GoogleAPIKey, cfg.GoogleEngineID)
	default:
		return nil, ErrNotConfigured
	}
}

// Format renders results for the language model.
func Format(results []Result) string {
	if len(results) == 0 {
		return "No results found."
	}
	blocks := make([]string, 0, len(results))
	for i, r := range results {
		block := fmt.Sprintf("%d. %s\n   URL: %s\n   %s\n",
			i+1, orDefault(r.Title, "No title"), orDefault(r.URL, "No URL"), orDefault(r.Content, "No content"))
		if raw := strings.TrimSpace(r.RawContent); raw != "" {
			block += "   Full content:\n   " + logging.Truncate(raw, MaxRawContent) + "\n"
		}
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, "\n")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
