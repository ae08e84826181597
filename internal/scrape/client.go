package scrape

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"hnscrape/internal/domain"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0 Safari/537.36"

type startTimeKey struct{}

// Client wraps a resty client so that every outbound request, successful or
// not, lands in the run's Recorder exactly once. Proxy environment variables
// are honored by the underlying transport.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	rec     *Recorder
}

// NewClient builds a tracked HTTP client. throttle > 0 enables a token-bucket
// limiter waited on before each request, the same shape the per-collector
// rate limits take elsewhere in this codebase.
func NewClient(timeout, throttle time.Duration, rec *Recorder) *Client {
	hc := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", defaultUserAgent)

	c := &Client{http: hc, rec: rec}
	if throttle > 0 {
		c.limiter = rate.NewLimiter(rate.Every(throttle), 1)
	}

	hc.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		req.SetContext(context.WithValue(req.Context(), startTimeKey{}, time.Now()))
		return nil
	})

	// Fires for every received response, including HTTP error statuses.
	hc.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		rec.Append(domain.RequestEvent{
			URL:        res.Request.URL,
			HTTPMethod: res.Request.Method,
			StatusCode: res.StatusCode(),
			ElapsedMS:  float64(res.Time()) / float64(time.Millisecond),
			BytesRead:  int64(len(res.Body())),
			Timestamp:  unixSeconds(time.Now()),
		})
		return nil
	})

	// Transport-level failure: record a best-effort event with status 0
	// before the error propagates to the caller.
	hc.OnError(func(req *resty.Request, _ error) {
		var elapsed float64
		if start, ok := req.Context().Value(startTimeKey{}).(time.Time); ok {
			elapsed = float64(time.Since(start)) / float64(time.Millisecond)
		}
		rec.Append(domain.RequestEvent{
			URL:        req.URL,
			HTTPMethod: req.Method,
			StatusCode: 0,
			ElapsedMS:  elapsed,
			BytesRead:  0,
			Timestamp:  unixSeconds(time.Now()),
		})
	})

	return c
}

// Get performs a tracked GET. HTTP statuses >= 400 are returned as errors,
// after the telemetry event has been recorded.
func (c *Client) Get(ctx context.Context, url string) (*resty.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	res, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, err
	}
	if res.StatusCode() >= 400 {
		return res, fmt.Errorf("unexpected status %d for %s", res.StatusCode(), url)
	}
	return res, nil
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
