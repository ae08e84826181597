package scrape

import (
	"sync"

	"hnscrape/internal/domain"
)

// Recorder accumulates RequestEvents for one scraper run. It is owned by the
// scraper instance and guarded by a mutex because the API variant's workers
// append concurrently.
type Recorder struct {
	mu     sync.Mutex
	events []domain.RequestEvent
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Append(ev domain.RequestEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of the recorded sequence in append order.
func (r *Recorder) Events() []domain.RequestEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.RequestEvent, len(r.events))
	copy(out, r.events)
	return out
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}
