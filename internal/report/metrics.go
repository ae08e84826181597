package report

import (
	"fmt"
	"strings"

	"hnscrape/internal/domain"
)

// Compute derives one method's aggregates from its run window and event
// sequence.
func Compute(method domain.Method, totalTimeS float64, events []domain.RequestEvent) domain.AggregateMetrics {
	m := domain.AggregateMetrics{
		Method:       method,
		TotalTimeS:   totalTimeS,
		RequestCount: len(events),
	}
	var latencySum float64
	for _, ev := range events {
		m.TotalBytes += ev.BytesRead
		latencySum += ev.ElapsedMS
	}
	if m.RequestCount > 0 {
		m.AvgLatencyMS = latencySum / float64(m.RequestCount)
	}
	return m
}

// FromResult derives aggregates straight from an in-memory ScraperResult,
// used at collection time to seed the metrics CSV.
func FromResult(res *domain.ScraperResult) domain.AggregateMetrics {
	return Compute(res.Method, res.Duration().Seconds(), res.Events)
}

// Recommendation is the deterministic verdict the report surfaces.
type Recommendation struct {
	Fastest  domain.Method
	Lightest domain.Method
}

// Recommend picks the fastest method by total runtime as the polling
// backbone and flags the cheapest one by bytes transferred.
func Recommend(metrics []domain.AggregateMetrics) (Recommendation, error) {
	if len(metrics) == 0 {
		return Recommendation{}, fmt.Errorf("no metrics to compare")
	}
	rec := Recommendation{Fastest: metrics[0].Method, Lightest: metrics[0].Method}
	fastest, lightest := metrics[0].TotalTimeS, metrics[0].TotalBytes
	for _, m := range metrics[1:] {
		if m.TotalTimeS < fastest {
			fastest = m.TotalTimeS
			rec.Fastest = m.Method
		}
		if m.TotalBytes < lightest {
			lightest = m.TotalBytes
			rec.Lightest = m.Method
		}
	}
	return rec, nil
}

// Narrative renders the recommendation as report prose.
func (r Recommendation) Narrative() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Use the %s collector as the polling backbone (fastest total runtime). ", r.Fastest)
	fmt.Fprintf(&b, "The %s collector consumed the least bandwidth. ", r.Lightest)
	b.WriteString("The browser collector captures fully rendered context at the cost of higher latency; " +
		"schedule it sparingly to validate selectors.")
	return b.String()
}
