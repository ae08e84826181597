package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hnscrape/internal/domain"
)

// fakeHNAPI serves topstories.json and item/{id}.json the way the Firebase
// API does, with optional per-item delay and injected failures.
type fakeHNAPI struct {
	topIDs   []int
	items    map[int]apiItem
	failIDs  map[int]bool
	maxDelay time.Duration
	requests atomic.Int64
}

func (f *fakeHNAPI) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		if f.maxDelay > 0 {
			time.Sleep(time.Duration(rand.Int63n(int64(f.maxDelay))))
		}
		switch {
		case r.URL.Path == "/topstories.json":
			json.NewEncoder(w).Encode(f.topIDs)
		case strings.HasPrefix(r.URL.Path, "/item/"):
			idStr := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/item/"), ".json")
			id, err := strconv.Atoi(idStr)
			if err != nil {
				http.NotFound(w, r)
				return
			}
			if f.failIDs[id] {
				http.Error(w, "kaboom", http.StatusInternalServerError)
				return
			}
			item, ok := f.items[id]
			if !ok {
				http.NotFound(w, r)
				return
			}
			json.NewEncoder(w).Encode(item)
		default:
			http.NotFound(w, r)
		}
	})
}

func newAPIScraperFor(url string, workers int) *APIScraper {
	return NewAPIScraper(Config{
		APIBaseURL: url,
		Timeout:    5 * time.Second,
		Workers:    workers,
	})
}

func storyItem(id, score, kids int) apiItem {
	item := apiItem{
		ID:    id,
		Title: fmt.Sprintf("Story %d", id),
		URL:   fmt.Sprintf("https://example.com/%d", id),
		Score: score,
		By:    fmt.Sprintf("user%d", id),
	}
	for k := 0; k < kids; k++ {
		item.Kids = append(item.Kids, id*10+k)
	}
	return item
}

func TestAPIScraperZeroLimit(t *testing.T) {
	api := &fakeHNAPI{}
	srv := httptest.NewServer(api.handler())
	defer srv.Close()

	s := newAPIScraperFor(srv.URL, 0)
	res, err := s.Run(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Empty(t, res.Events)
	assert.Equal(t, int64(0), api.requests.Load(), "no network calls for limit <= 0")
}

func TestAPIScraperPreservesRankingOrder(t *testing.T) {
	ids := []int{907, 101, 555, 323, 842, 119, 700, 288}
	api := &fakeHNAPI{
		topIDs:   ids,
		items:    make(map[int]apiItem),
		maxDelay: 20 * time.Millisecond,
	}
	for _, id := range ids {
		api.items[id] = storyItem(id, id%100, 0)
	}
	srv := httptest.NewServer(api.handler())
	defer srv.Close()

	s := newAPIScraperFor(srv.URL, 4)
	res, err := s.Run(context.Background(), len(ids))
	require.NoError(t, err)

	require.Len(t, res.Records, len(ids))
	for i, rec := range res.Records {
		assert.Equal(t, ids[i], rec.PostID, "output order must match ranking order")
		assert.Equal(t, domain.MethodAPI, rec.Method)
	}
}

func TestAPIScraperTruncatesToLimit(t *testing.T) {
	api := &fakeHNAPI{
		topIDs: []int{1, 2, 3, 4, 5},
		items:  map[int]apiItem{1: storyItem(1, 10, 0), 2: storyItem(2, 20, 0)},
	}
	srv := httptest.NewServer(api.handler())
	defer srv.Close()

	s := newAPIScraperFor(srv.URL, 2)
	res, err := s.Run(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, res.Records, 2)
	// listing + two item fetches, nothing for ids beyond the limit
	assert.Equal(t, int64(3), api.requests.Load())
}

func TestAPIScraperFirstComment(t *testing.T) {
	story := storyItem(50, 99, 2) // kids 500, 501
	api := &fakeHNAPI{
		topIDs: []int{50},
		items: map[int]apiItem{
			50:  story,
			500: {ID: 500, By: "commenter", Text: "Nice &amp; short.<p>Indeed.</p>"},
		},
	}
	srv := httptest.NewServer(api.handler())
	defer srv.Close()

	s := newAPIScraperFor(srv.URL, 1)
	res, err := s.Run(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, res.Records, 1)
	rec := res.Records[0]
	assert.Equal(t, 2, rec.CommentCount)
	assert.Equal(t, "commenter", rec.FirstCommentAuthor)
	assert.Equal(t, "Nice & short.\nIndeed.", rec.FirstComment)
	// Only the first kid is fetched: listing + story + one comment.
	assert.Equal(t, int64(3), api.requests.Load())
}

func TestAPIScraperSkipsFailedPost(t *testing.T) {
	api := &fakeHNAPI{
		topIDs: []int{101, 102, 103},
		items: map[int]apiItem{
			101: storyItem(101, 10, 0),
			103: storyItem(103, 30, 0),
		},
		failIDs: map[int]bool{102: true},
	}
	srv := httptest.NewServer(api.handler())
	defer srv.Close()

	s := newAPIScraperFor(srv.URL, 3)
	res, err := s.Run(context.Background(), 3)
	require.NoError(t, err)

	require.Len(t, res.Records, 2)
	assert.Equal(t, 101, res.Records[0].PostID)
	assert.Equal(t, 103, res.Records[1].PostID)
	assert.Equal(t, 1, res.Skipped)

	// Every attempt is recorded: listing + three item fetches (one failed).
	assert.Len(t, res.Events, 4)
	var failures int
	for _, ev := range res.Events {
		if ev.StatusCode != http.StatusOK {
			failures++
		}
	}
	assert.Equal(t, 1, failures)
}

func TestAPIScraperListingFailureIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := newAPIScraperFor(srv.URL, 1)
	_, err := s.Run(context.Background(), 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch top stories")
}
