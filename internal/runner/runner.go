// Package runner orchestrates the scraper variants for one collection batch
// and persists their artifacts.
package runner

import (
	"context"
	"fmt"
	"log/slog"

	"hnscrape/internal/domain"
	"hnscrape/internal/report"
	"hnscrape/internal/scrape"
	"hnscrape/internal/storage"
)

type Runner struct {
	store *storage.Store

	// newScraper is swappable so tests can inject failing or canned
	// variants without touching the network.
	newScraper func(domain.Method) (domain.Scraper, error)
}

func New(cfg scrape.Config, store *storage.Store) *Runner {
	return &Runner{
		store: store,
		newScraper: func(m domain.Method) (domain.Scraper, error) {
			return scrape.New(m, cfg)
		},
	}
}

// RunAll runs the HTML and API variants, plus the browser variant unless
// excluded, all with the same limit. A variant failure is recorded in the
// summary and the batch continues; only persistence failures abort.
func (r *Runner) RunAll(ctx context.Context, limit int, includeBrowser bool) (map[domain.Method]*domain.ScraperResult, domain.RunSummary, error) {
	methods := []domain.Method{domain.MethodHTML, domain.MethodAPI}
	if includeBrowser {
		methods = append(methods, domain.MethodBrowser)
	}

	results := make(map[domain.Method]*domain.ScraperResult, len(methods))
	summary := make(domain.RunSummary, len(methods))

	for _, method := range methods {
		res, err := r.runOne(ctx, method, limit)
		if err != nil {
			slog.Error("scraper variant failed", "method", method, "err", err)
			summary[method] = &domain.MethodSummary{Failed: true, Err: err.Error()}
			continue
		}
		slog.Info("scraper variant finished",
			"method", method,
			"records", len(res.Records),
			"skipped", res.Skipped,
			"requests", len(res.Events),
			"duration", res.Duration())
		results[method] = res
		summary[method] = &domain.MethodSummary{
			Records: len(res.Records),
			Skipped: res.Skipped,
		}
	}

	if err := r.persist(results); err != nil {
		return nil, nil, err
	}
	return results, summary, nil
}

func (r *Runner) runOne(ctx context.Context, method domain.Method, limit int) (*domain.ScraperResult, error) {
	s, err := r.newScraper(method)
	if err != nil {
		return nil, fmt.Errorf("build %s scraper: %w", method, err)
	}
	return s.Run(ctx, limit)
}

func (r *Runner) persist(results map[domain.Method]*domain.ScraperResult) error {
	var metrics []domain.AggregateMetrics
	for _, method := range domain.Methods {
		res, ok := results[method]
		if !ok {
			continue
		}
		if err := r.store.SaveResult(res); err != nil {
			return err
		}
		metrics = append(metrics, report.FromResult(res))
	}
	if len(metrics) == 0 {
		return nil
	}
	if err := r.store.SaveMetrics(metrics); err != nil {
		return err
	}
	return r.store.SaveCombined(results)
}
