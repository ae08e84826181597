package scrape

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/PuerkitoBio/goquery"

	"hnscrape/internal/domain"
)

// Renderer is the capability boundary around the rendering engine: load a
// page to rendered HTML, and report the network loads observed while doing
// so. Keeping it an interface means nothing above this line depends on the
// browser library's log schema.
type Renderer interface {
	Load(ctx context.Context, url string) (string, error)
	Events() []domain.RequestEvent
	Close() error
}

// BrowserScraper drives a headless browser over the same pages the HTML
// variant fetches, but its telemetry comes from the browser's own network
// log rather than a wrapper around the HTTP client.
type BrowserScraper struct {
	frontPage   string
	newRenderer func(ctx context.Context) (Renderer, error)
}

func NewBrowserScraper(cfg Config) *BrowserScraper {
	s := &BrowserScraper{
		frontPage:   cfg.FrontPageURL,
		newRenderer: cfg.NewRenderer,
	}
	if s.newRenderer == nil {
		timeout := cfg.Timeout
		s.newRenderer = func(ctx context.Context) (Renderer, error) {
			return newChromeRenderer(ctx, timeout)
		}
	}
	return s
}

func (s *BrowserScraper) Method() domain.Method { return domain.MethodBrowser }

func (s *BrowserScraper) Run(ctx context.Context, limit int) (*domain.ScraperResult, error) {
	result := &domain.ScraperResult{Method: domain.MethodBrowser, StartedAt: time.Now()}
	if limit <= 0 {
		result.FinishedAt = time.Now()
		return result, nil
	}

	renderer, err := s.newRenderer(ctx)
	if err != nil {
		return nil, fmt.Errorf("start renderer: %w", err)
	}
	defer renderer.Close()

	page, err := renderer.Load(ctx, s.frontPage)
	if err != nil {
		return nil, fmt.Errorf("render front page: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(page)))
	if err != nil {
		return nil, fmt.Errorf("parse rendered front page: %w", err)
	}

	for _, item := range parseFrontPage(doc, limit) {
		rec := domain.PostRecord{
			Method:       domain.MethodBrowser,
			PostID:       item.ID,
			Title:        item.Title,
			URL:          item.URL,
			Points:       item.Points,
			CommentCount: item.CommentCount,
			Author:       item.Author,
			FetchedAt:    time.Now().UTC(),
		}
		if item.CommentCount > 0 {
			discussion, err := renderer.Load(ctx, discussionURL(s.frontPage, item.ID))
			if err != nil {
				slog.Warn("discussion render failed",
					"method", domain.MethodBrowser, "post_id", item.ID, "err", err)
			} else if ddoc, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(discussion))); err == nil {
				rec.FirstCommentAuthor, rec.FirstComment = parseFirstComment(ddoc)
			}
		}
		result.Records = append(result.Records, rec)
	}

	result.Events = renderer.Events()
	result.FinishedAt = time.Now()
	return result, nil
}
