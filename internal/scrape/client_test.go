package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hnscrape/internal/domain"
)

func TestClientRecordsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello world"))
	}))
	defer srv.Close()

	rec := NewRecorder()
	c := NewClient(5*time.Second, 0, rec)

	res, err := c.Get(context.Background(), srv.URL+"/page")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode())

	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, srv.URL+"/page", events[0].URL)
	assert.Equal(t, "GET", events[0].HTTPMethod)
	assert.Equal(t, http.StatusOK, events[0].StatusCode)
	assert.Equal(t, int64(len("hello world")), events[0].BytesRead)
	assert.GreaterOrEqual(t, events[0].ElapsedMS, 0.0)
	assert.Greater(t, events[0].Timestamp, 0.0)
}

func TestClientRecordsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	rec := NewRecorder()
	c := NewClient(5*time.Second, 0, rec)

	_, err := c.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")

	// The event is recorded before the status error is surfaced.
	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, http.StatusInternalServerError, events[0].StatusCode)
}

func TestClientRecordsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close() // nothing is listening anymore

	rec := NewRecorder()
	c := NewClient(2*time.Second, 0, rec)

	_, err := c.Get(context.Background(), url)
	require.Error(t, err)

	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, 0, events[0].StatusCode)
	assert.Equal(t, int64(0), events[0].BytesRead)
	assert.Equal(t, url, events[0].URL)
}

func TestClientThrottleWaitsBetweenRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	rec := NewRecorder()
	throttle := 50 * time.Millisecond
	c := NewClient(5*time.Second, throttle, rec)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := c.Get(context.Background(), srv.URL)
		require.NoError(t, err)
	}
	// Token bucket of one: the second and third requests each wait a period.
	assert.GreaterOrEqual(t, time.Since(start), 2*throttle)
	assert.Equal(t, 3, rec.Len())
}

func TestRecorderConcurrentAppend(t *testing.T) {
	rec := NewRecorder()
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				rec.Append(domain.RequestEvent{HTTPMethod: "GET"})
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
	assert.Equal(t, 800, rec.Len())
}
