package websearch

import (
	"context"
	"fmt"

	customsearch "google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// googleMaxResults is the Custom Search API page size limit.
const googleMaxResults = 10

// Google searches through the Programmable Search (Custom Search) API.
type Google struct {
	svc      *customsearch.Service
	engineID string
}

// NewGoogle creates a Custom Search searcher. Extra options are appended
// after the API key.
func NewGoogle(ctx context.Context, apiKey, engineID string, opts ...option.ClientOption) (*Google, error) {
	svc, err := customsearch.NewService(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Custom Search service: %w", err)
	}
	return &Google{svc: svc, engineID: engineID}, nil
}

func (g *Google) Search(ctx context.Context, q Query) ([]Result, error) {
	q, err := q.normalized()
	if err != nil {
		return nil, err
	}
	num := q.MaxResults
	if num > googleMaxResults {
		num = googleMaxResults
	}

	call := g.svc.Cse.List().Q(q.Text).Cx(g.engineID).Num(int64(num)).Context(ctx)
	if q.Topic == TopicNews {
		call = call.DateRestrict("d7").Sort("date")
	}

	res, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("google search failed: %w", err)
	}

	results := make([]Result, 0, len(res.Items))
	for _, item := range res.Items {
		results = append(results, Result{Title: item.Title, URL: item.Link, Content: item.Snippet})
	}
	return results, nil
}
