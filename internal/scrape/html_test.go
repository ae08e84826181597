package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hnscrape/internal/domain"
)

// newFrontPageServer serves the shared front-page fixture at / and the
// discussion fixture at /item, counting every hit.
func newFrontPageServer(t *testing.T) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/":
			w.Write([]byte(frontPageHTML))
		case "/item":
			w.Write([]byte(discussionHTML))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newHTMLScraperFor(url string) *HTMLScraper {
	return NewHTMLScraper(Config{
		FrontPageURL: url + "/",
		Timeout:      5 * time.Second,
	})
}

func TestHTMLScraperZeroLimit(t *testing.T) {
	srv, hits := newFrontPageServer(t)

	s := newHTMLScraperFor(srv.URL)
	res, err := s.Run(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Empty(t, res.Events)
	assert.Equal(t, int64(0), hits.Load())
}

// The fixture has comment counts [0, 3, 0]: exactly one discussion fetch on
// top of the front-page fetch.
func TestHTMLScraperDiscussionFetchOnlyForCommentedPosts(t *testing.T) {
	srv, hits := newFrontPageServer(t)

	s := newHTMLScraperFor(srv.URL)
	res, err := s.Run(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, int64(2), hits.Load(), "front page + one discussion page")
	assert.Len(t, res.Events, 2)

	require.Len(t, res.Records, 3)
	for _, rec := range res.Records {
		assert.Equal(t, domain.MethodHTML, rec.Method)
	}

	assert.Empty(t, res.Records[0].FirstComment)
	assert.Equal(t, "First top-level comment.", res.Records[1].FirstComment)
	assert.Equal(t, "carol", res.Records[1].FirstCommentAuthor)
	assert.Empty(t, res.Records[2].FirstComment)
}

func TestHTMLScraperRespectsLimit(t *testing.T) {
	srv, _ := newFrontPageServer(t)

	s := newHTMLScraperFor(srv.URL)
	res, err := s.Run(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, 101, res.Records[0].PostID)
}

func TestHTMLScraperKeepsPostWhenDiscussionFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			w.Write([]byte(frontPageHTML))
			return
		}
		http.Error(w, "gone", http.StatusBadGateway)
	}))
	defer srv.Close()

	s := newHTMLScraperFor(srv.URL)
	res, err := s.Run(context.Background(), 10)
	require.NoError(t, err)

	require.Len(t, res.Records, 3)
	assert.Empty(t, res.Records[1].FirstComment, "comment fields stay empty on fetch failure")
	// Both attempts recorded, including the failed discussion fetch.
	assert.Len(t, res.Events, 2)
}

func TestHTMLScraperListingFailureIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	s := newHTMLScraperFor(srv.URL)
	_, err := s.Run(context.Background(), 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch front page")
}
