package scrape

import (
	"context"
	"fmt"
	"time"

	"hnscrape/internal/domain"
)

// Config carries the knobs shared by all scraper variants.
type Config struct {
	APIBaseURL   string
	FrontPageURL string
	Timeout      time.Duration
	Throttle     time.Duration
	Workers      int

	// NewRenderer overrides the headless-browser factory; tests inject a
	// fake renderer here. Nil selects Chrome.
	NewRenderer func(ctx context.Context) (Renderer, error)
}

// New selects the scraper implementation for a method.
func New(method domain.Method, cfg Config) (domain.Scraper, error) {
	switch method {
	case domain.MethodAPI:
		return NewAPIScraper(cfg), nil
	case domain.MethodHTML:
		return NewHTMLScraper(cfg), nil
	case domain.MethodBrowser:
		return NewBrowserScraper(cfg), nil
	default:
		return nil, fmt.Errorf("unknown scraper method: %q", method)
	}
}
