package scrape

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"hnscrape/internal/domain"
)

// pendingLoad tracks one in-flight browser request until its
// loadingFinished event arrives.
type pendingLoad struct {
	url    string
	method string
	status int
	start  time.Time
}

// chromeRenderer renders pages in a headless Chrome instance and converts
// the DevTools network events into RequestEvents, so the browser variant
// reports real transport-level timing and size.
type chromeRenderer struct {
	taskCtx     context.Context
	taskCancel  context.CancelFunc
	allocCancel context.CancelFunc
	loadTimeout time.Duration

	mu      sync.Mutex
	pending map[network.RequestID]*pendingLoad
	events  []domain.RequestEvent
}

func newChromeRenderer(parent context.Context, loadTimeout time.Duration) (Renderer, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, opts...)
	taskCtx, taskCancel := chromedp.NewContext(allocCtx)

	r := &chromeRenderer{
		taskCtx:     taskCtx,
		taskCancel:  taskCancel,
		allocCancel: allocCancel,
		loadTimeout: loadTimeout,
		pending:     make(map[network.RequestID]*pendingLoad),
	}
	chromedp.ListenTarget(taskCtx, r.onEvent)

	if err := chromedp.Run(taskCtx, network.Enable()); err != nil {
		taskCancel()
		allocCancel()
		return nil, err
	}
	return r, nil
}

// onEvent runs on chromedp's event loop; it must only record state.
func (r *chromeRenderer) onEvent(ev interface{}) {
	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		r.mu.Lock()
		r.pending[e.RequestID] = &pendingLoad{
			url:    e.Request.URL,
			method: e.Request.Method,
			start:  e.Timestamp.Time(),
		}
		r.mu.Unlock()
	case *network.EventResponseReceived:
		r.mu.Lock()
		if p, ok := r.pending[e.RequestID]; ok {
			p.status = int(e.Response.Status)
		}
		r.mu.Unlock()
	case *network.EventLoadingFinished:
		r.mu.Lock()
		if p, ok := r.pending[e.RequestID]; ok {
			r.events = append(r.events, domain.RequestEvent{
				URL:        p.url,
				HTTPMethod: p.method,
				StatusCode: p.status,
				ElapsedMS:  float64(e.Timestamp.Time().Sub(p.start)) / float64(time.Millisecond),
				BytesRead:  int64(e.EncodedDataLength),
				Timestamp:  unixSeconds(time.Now()),
			})
			delete(r.pending, e.RequestID)
		}
		r.mu.Unlock()
	}
}

func (r *chromeRenderer) Load(ctx context.Context, url string) (string, error) {
	loadCtx := r.taskCtx
	if r.loadTimeout > 0 {
		var cancel context.CancelFunc
		loadCtx, cancel = context.WithTimeout(loadCtx, r.loadTimeout)
		defer cancel()
	}
	var html string
	err := chromedp.Run(loadCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", err
	}
	return html, nil
}

func (r *chromeRenderer) Events() []domain.RequestEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.RequestEvent, len(r.events))
	copy(out, r.events)
	return out
}

func (r *chromeRenderer) Close() error {
	r.taskCancel()
	r.allocCancel()
	return nil
}
