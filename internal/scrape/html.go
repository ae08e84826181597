package scrape

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"hnscrape/internal/domain"
)

// HTMLScraper collects front-page data with one plain HTTP fetch of the
// rendered listing plus, for posts that have comments, one discussion-page
// fetch each. Fully sequential.
type HTMLScraper struct {
	frontPage string
	client    *Client
	rec       *Recorder
}

func NewHTMLScraper(cfg Config) *HTMLScraper {
	rec := NewRecorder()
	return &HTMLScraper{
		frontPage: cfg.FrontPageURL,
		client:    NewClient(cfg.Timeout, cfg.Throttle, rec),
		rec:       rec,
	}
}

func (s *HTMLScraper) Method() domain.Method { return domain.MethodHTML }

func (s *HTMLScraper) Run(ctx context.Context, limit int) (*domain.ScraperResult, error) {
	result := &domain.ScraperResult{Method: domain.MethodHTML, StartedAt: time.Now()}
	if limit <= 0 {
		result.FinishedAt = time.Now()
		return result, nil
	}

	res, err := s.client.Get(ctx, s.frontPage)
	if err != nil {
		return nil, fmt.Errorf("fetch front page: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("parse front page: %w", err)
	}

	for _, item := range parseFrontPage(doc, limit) {
		rec := domain.PostRecord{
			Method:       domain.MethodHTML,
			PostID:       item.ID,
			Title:        item.Title,
			URL:          item.URL,
			Points:       item.Points,
			CommentCount: item.CommentCount,
			Author:       item.Author,
			FetchedAt:    time.Now().UTC(),
		}
		if item.CommentCount > 0 {
			author, text, err := s.fetchFirstComment(ctx, item.ID)
			if err != nil {
				// Missing comment context never drops the post.
				slog.Warn("discussion fetch failed",
					"method", domain.MethodHTML, "post_id", item.ID, "err", err)
			} else {
				rec.FirstCommentAuthor = author
				rec.FirstComment = text
			}
		}
		result.Records = append(result.Records, rec)
	}

	result.Events = s.rec.Events()
	result.FinishedAt = time.Now()
	return result, nil
}

func (s *HTMLScraper) fetchFirstComment(ctx context.Context, postID int) (string, string, error) {
	url := discussionURL(s.frontPage, postID)
	res, err := s.client.Get(ctx, url)
	if err != nil {
		return "", "", err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return "", "", fmt.Errorf("parse discussion page: %w", err)
	}
	author, text := parseFirstComment(doc)
	return author, text, nil
}

func discussionURL(frontPage string, postID int) string {
	return fmt.Sprintf("%s/item?id=%d", strings.TrimRight(frontPage, "/"), postID)
}
