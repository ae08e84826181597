package domain

import (
	"context"
	"time"
)

// Method identifies one of the interchangeable scraping transports.
type Method string

const (
	MethodAPI     Method = "api"
	MethodHTML    Method = "html"
	MethodBrowser Method = "browser"
)

// Methods lists all transports in the order the collector runs them.
var Methods = []Method{MethodHTML, MethodAPI, MethodBrowser}

// PostRecord is one scraped front-page post, normalized across transports.
type PostRecord struct {
	Method             Method    `json:"method"`
	PostID             int       `json:"post_id"`
	Title              string    `json:"title"`
	URL                string    `json:"url"`
	Points             int       `json:"points"`
	CommentCount       int       `json:"comment_count"`
	Author             string    `json:"author"`
	FirstComment       string    `json:"first_comment,omitempty"`
	FirstCommentAuthor string    `json:"first_comment_author,omitempty"`
	FetchedAt          time.Time `json:"fetched_at"`
}

// RequestEvent is per-request instrumentation data. One event is recorded
// for every outbound attempt, including failed ones (status code 0).
type RequestEvent struct {
	URL        string  `json:"url"`
	HTTPMethod string  `json:"method"`
	StatusCode int     `json:"status_code"`
	ElapsedMS  float64 `json:"elapsed_ms"`
	BytesRead  int64   `json:"bytes_read"`
	Timestamp  float64 `json:"timestamp"`
}

// ScraperResult is the uniform output of one scraper invocation. Immutable
// once returned from Run; the orchestrator owns it from there.
type ScraperResult struct {
	Method     Method         `json:"method"`
	Records    []PostRecord   `json:"records"`
	Events     []RequestEvent `json:"events"`
	Skipped    int            `json:"skipped"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

// Duration is the wall-clock window of the run.
func (r *ScraperResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// AggregateMetrics summarizes one method's network behaviour. Derived data,
// recomputed from persisted artifacts on every report run.
type AggregateMetrics struct {
	Method       Method  `json:"method"`
	TotalTimeS   float64 `json:"total_time_s"`
	RequestCount int     `json:"total_requests"`
	TotalBytes   int64   `json:"total_bytes"`
	AvgLatencyMS float64 `json:"avg_latency_ms"`
}

// MethodSummary reports the per-method outcome of a collection batch.
type MethodSummary struct {
	Records int
	Skipped int
	Failed  bool
	Err     string
}

// RunSummary maps each attempted method to its outcome.
type RunSummary map[Method]*MethodSummary

// Scraper is the contract every transport variant implements.
type Scraper interface {
	Method() Method
	Run(ctx context.Context, limit int) (*ScraperResult, error)
}
