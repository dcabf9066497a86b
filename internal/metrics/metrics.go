package metrics

import (
	"sync"
	"time"
)

// Metrics tracks service counters. This is the only mutable state shared
// across requests; it carries no request data.
type Metrics struct {
	mu sync.RWMutex

	// Counters
	RequestsServed  int64
	FetchSuccesses  int64
	FetchFailures   int64
	FallbacksServed int64
	ItemsFetched    int64

	// Status
	LastFetchTime time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) IncrementRequestsServed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestsServed++
}

func (m *Metrics) RecordFetchSuccess(items int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchSuccesses++
	m.ItemsFetched += int64(items)
	m.LastFetchTime = time.Now()
	m.IsHealthy = true
	m.LastError = ""
}

func (m *Metrics) RecordFetchFailure(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchFailures++
	m.FallbacksServed++
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) Healthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.IsHealthy
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"requests_served":  m.RequestsServed,
		"fetch_successes":  m.FetchSuccesses,
		"fetch_failures":   m.FetchFailures,
		"fallbacks_served": m.FallbacksServed,
		"items_fetched":    m.ItemsFetched,
		"last_fetch_time":  m.LastFetchTime.Format(time.RFC3339),
		"last_error_time":  m.LastErrorTime.Format(time.RFC3339),
		"last_error":       m.LastError,
		"is_healthy":       m.IsHealthy,
	}
}
