package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"hnscrape/internal/domain"
)

// Store persists and reloads per-method scrape artifacts under a data
// directory: data/raw/<method>_records.csv, data/raw/<method>_network.json,
// data/raw/scraper_metrics.csv and data/processed/combined_dataset.csv.
// Each run overwrites the previous files for a method; nothing is merged
// in place.
type Store struct {
	DataDir string
}

func NewStore(dataDir string) *Store {
	return &Store{DataDir: dataDir}
}

func (s *Store) rawDir() string       { return filepath.Join(s.DataDir, "raw") }
func (s *Store) processedDir() string { return filepath.Join(s.DataDir, "processed") }

func (s *Store) recordsPath(m domain.Method) string {
	return filepath.Join(s.rawDir(), string(m)+"_records.csv")
}

func (s *Store) eventsPath(m domain.Method) string {
	return filepath.Join(s.rawDir(), string(m)+"_network.json")
}

func (s *Store) metricsPath() string {
	return filepath.Join(s.rawDir(), "scraper_metrics.csv")
}

func (s *Store) combinedPath() string {
	return filepath.Join(s.processedDir(), "combined_dataset.csv")
}

var recordHeader = []string{
	"method", "post_id", "title", "url", "points", "comment_count",
	"author", "first_comment", "first_comment_author", "fetched_at",
}

var metricsHeader = []string{
	"method", "total_time_s", "total_requests", "total_bytes", "avg_latency_ms",
}

func recordRow(r domain.PostRecord) []string {
	return []string{
		string(r.Method),
		strconv.Itoa(r.PostID),
		r.Title,
		r.URL,
		strconv.Itoa(r.Points),
		strconv.Itoa(r.CommentCount),
		r.Author,
		r.FirstComment,
		r.FirstCommentAuthor,
		r.FetchedAt.Format(time.RFC3339Nano),
	}
}

// SaveResult writes one method's records CSV and telemetry JSON.
func (s *Store) SaveResult(res *domain.ScraperResult) error {
	if err := os.MkdirAll(s.rawDir(), 0o755); err != nil {
		return fmt.Errorf("create raw dir: %w", err)
	}

	if err := writeCSV(s.recordsPath(res.Method), recordHeader, func(w *csv.Writer) error {
		for _, rec := range res.Records {
			if err := w.Write(recordRow(rec)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("write %s records: %w", res.Method, err)
	}

	events := res.Events
	if events == nil {
		events = []domain.RequestEvent{}
	}
	buf, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s events: %w", res.Method, err)
	}
	if err := os.WriteFile(s.eventsPath(res.Method), buf, 0o644); err != nil {
		return fmt.Errorf("write %s events: %w", res.Method, err)
	}
	return nil
}

// SaveMetrics writes the per-method aggregate summary CSV.
func (s *Store) SaveMetrics(metrics []domain.AggregateMetrics) error {
	if err := os.MkdirAll(s.rawDir(), 0o755); err != nil {
		return fmt.Errorf("create raw dir: %w", err)
	}
	err := writeCSV(s.metricsPath(), metricsHeader, func(w *csv.Writer) error {
		for _, m := range metrics {
			row := []string{
				string(m.Method),
				strconv.FormatFloat(m.TotalTimeS, 'f', -1, 64),
				strconv.Itoa(m.RequestCount),
				strconv.FormatInt(m.TotalBytes, 10),
				strconv.FormatFloat(m.AvgLatencyMS, 'f', -1, 64),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

// SaveCombined unions every method's records into the single analysis
// dataset consumed downstream.
func (s *Store) SaveCombined(results map[domain.Method]*domain.ScraperResult) error {
	if err := os.MkdirAll(s.processedDir(), 0o755); err != nil {
		return fmt.Errorf("create processed dir: %w", err)
	}
	err := writeCSV(s.combinedPath(), recordHeader, func(w *csv.Writer) error {
		for _, method := range domain.Methods {
			res, ok := results[method]
			if !ok {
				continue
			}
			for _, rec := range res.Records {
				if err := w.Write(recordRow(rec)); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write combined dataset: %w", err)
	}
	return nil
}

func writeCSV(path string, header []string, body func(*csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := body(w); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
