package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"hnscrape/internal/domain"
)

const defaultAPIWorkers = 5

// APIScraper collects front-page data through the official Firebase API:
// one listing call for the ranked story ids, then per-story detail calls
// overlapped by a bounded worker pool.
type APIScraper struct {
	base    string
	client  *Client
	rec     *Recorder
	workers int
}

func NewAPIScraper(cfg Config) *APIScraper {
	rec := NewRecorder()
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultAPIWorkers
	}
	return &APIScraper{
		base:    cfg.APIBaseURL,
		client:  NewClient(cfg.Timeout, cfg.Throttle, rec),
		rec:     rec,
		workers: workers,
	}
}

func (s *APIScraper) Method() domain.Method { return domain.MethodAPI }

type apiItem struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Score int    `json:"score"`
	By    string `json:"by"`
	Text  string `json:"text"`
	Kids  []int  `json:"kids"`
}

func (s *APIScraper) Run(ctx context.Context, limit int) (*domain.ScraperResult, error) {
	result := &domain.ScraperResult{Method: domain.MethodAPI, StartedAt: time.Now()}
	if limit <= 0 {
		result.FinishedAt = time.Now()
		return result, nil
	}

	ids, err := s.fetchTopIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch top stories: %w", err)
	}
	if len(ids) > limit {
		ids = ids[:limit]
	}

	// Index-keyed buffer so the output keeps the ranking order no matter
	// which worker finishes first.
	records := make([]*domain.PostRecord, len(ids))
	jobs := make(chan int)

	workers := s.workers
	if workers > len(ids) {
		workers = len(ids)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				rec, err := s.fetchPost(ctx, ids[idx])
				if err != nil {
					slog.Warn("skipping post",
						"method", domain.MethodAPI, "post_id", ids[idx], "err", err)
					continue
				}
				records[idx] = rec
			}
		}()
	}
	for i := range ids {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, rec := range records {
		if rec == nil {
			result.Skipped++
			continue
		}
		result.Records = append(result.Records, *rec)
	}
	result.Events = s.rec.Events()
	result.FinishedAt = time.Now()
	return result, nil
}

func (s *APIScraper) fetchTopIDs(ctx context.Context) ([]int, error) {
	res, err := s.client.Get(ctx, s.base+"/topstories.json")
	if err != nil {
		return nil, err
	}
	var ids []int
	if err := json.Unmarshal(res.Body(), &ids); err != nil {
		return nil, fmt.Errorf("decode top stories: %w", err)
	}
	return ids, nil
}

func (s *APIScraper) fetchPost(ctx context.Context, id int) (*domain.PostRecord, error) {
	item, err := s.fetchItem(ctx, id)
	if err != nil {
		return nil, err
	}

	url := item.URL
	if url == "" {
		url = fmt.Sprintf("https://news.ycombinator.com/item?id=%d", id)
	}
	rec := &domain.PostRecord{
		Method:       domain.MethodAPI,
		PostID:       id,
		Title:        item.Title,
		URL:          url,
		Points:       item.Score,
		CommentCount: len(item.Kids),
		Author:       item.By,
		FetchedAt:    time.Now().UTC(),
	}

	if len(item.Kids) > 0 {
		comment, err := s.fetchItem(ctx, item.Kids[0])
		if err != nil {
			// Comment detail is best-effort; the post itself stands.
			slog.Warn("first comment fetch failed",
				"method", domain.MethodAPI, "post_id", id, "err", err)
		} else {
			rec.FirstCommentAuthor = comment.By
			rec.FirstComment = cleanCommentHTML(comment.Text)
		}
	}
	return rec, nil
}

func (s *APIScraper) fetchItem(ctx context.Context, id int) (*apiItem, error) {
	res, err := s.client.Get(ctx, fmt.Sprintf("%s/item/%d.json", s.base, id))
	if err != nil {
		return nil, err
	}
	var item apiItem
	if err := json.Unmarshal(res.Body(), &item); err != nil {
		return nil, fmt.Errorf("decode item %d: %w", id, err)
	}
	return &item, nil
}
