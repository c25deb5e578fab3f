// Package metrics is a minimal concurrency-safe counter registry.
// It keeps orchestration logic testable without pulling in a metrics backend;
// the text handler in http.go is enough for scraping.
package metrics

import "sync"

// Counter names.
const (
	Registrations         = "registrations"
	Disconnects           = "disconnects"
	CallsMatched          = "calls_matched"
	CallsQueued           = "calls_queued"
	CallsAccepted         = "calls_accepted"
	CallsRejected         = "calls_rejected"
	CallsEnded            = "calls_ended"
	EnvelopesRelayed      = "envelopes_relayed"
	RelayDropNoRecipient  = "relay_drop_no_recipient"
	RelayDropBackpressure = "relay_drop_backpressure"
	SessionsReaped        = "sessions_reaped"
	BadFrames             = "bad_frames"
	RateLimited           = "rate_limited"
)

type Metrics struct {
	mu sync.Mutex
	m  map[string]uint64
}

func New() *Metrics {
	return &Metrics{m: make(map[string]uint64)}
}

func (m *Metrics) Inc(name string) {
	m.mu.Lock()
	if m.m == nil {
		m.m = make(map[string]uint64)
	}
	m.m[name]++
	m.mu.Unlock()
}

func (m *Metrics) Get(name string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.m[name]
}

// Snapshot returns a copy of all counters.
func (m *Metrics) Snapshot() map[string]uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]uint64, len(m.m))
	for k, v := range m.m {
		out[k] = v
	}
	return out
}
