package orchestrator

import (
	"sync"
	"time"
)

// Metrics collects dispatch statistics.
type Metrics struct {
	mu sync.RWMutex

	// Per-event metrics
	eventMetrics map[string]*EventMetrics

	// Global counters
	totalFires     uint64
	totalFailures  uint64
	totalPanics    uint64
	totalIntercept uint64

	// Timing
	totalDuration time.Duration
}

// EventMetrics holds metrics for a specific event.
type EventMetrics struct {
	Name          string
	FireCount     uint64
	FailureCount  uint64
	StopCount     uint64
	TotalDuration time.Duration
	MinDuration   time.Duration
	MaxDuration   time.Duration
	LastFired     time.Time
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		eventMetrics: make(map[string]*EventMetrics),
	}
}

// fireStats summarizes one fire call for recording.
type fireStats struct {
	failures int
	stopped  bool
}

// record records a completed fire call.
func (m *Metrics) record(event string, duration time.Duration, stats fireStats) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalFires++
	m.totalDuration += duration
	m.totalFailures += uint64(stats.failures)
	if stats.stopped {
		m.totalIntercept++
	}

	em := m.eventMetrics[event]
	if em == nil {
		em = &EventMetrics{
			Name:        event,
			MinDuration: duration,
			MaxDuration: duration,
		}
		m.eventMetrics[event] = em
	}

	em.FireCount++
	em.FailureCount += uint64(stats.failures)
	em.TotalDuration += duration
	em.LastFired = time.Now()
	if stats.stopped {
		em.StopCount++
	}

	if duration < em.MinDuration {
		em.MinDuration = duration
	}
	if duration > em.MaxDuration {
		em.MaxDuration = duration
	}
}

// recordPanic records a recovered handler panic. The panic already
// surfaces as a failed result, so the per-event failure count is left
// to record; only the panic total is tracked here.
func (m *Metrics) recordPanic() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalPanics++
}

// TotalFires returns the total number of dispatched fire calls. Calls
// vetoed by a pre-fire hook never dispatch and are not counted.
func (m *Metrics) TotalFires() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalFires
}

// TotalFailures returns the total number of failed handler invocations.
func (m *Metrics) TotalFailures() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalFailures
}

// TotalPanics returns the total number of recovered handler panics.
func (m *Metrics) TotalPanics() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalPanics
}

// TotalInterceptions returns the number of fire calls stopped by a handler.
func (m *Metrics) TotalInterceptions() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalIntercept
}

// TotalDuration returns the cumulative duration of all fire calls.
func (m *Metrics) TotalDuration() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalDuration
}

// ForEvent returns a copy of the metrics for an event.
func (m *Metrics) ForEvent(event string) (EventMetrics, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	em := m.eventMetrics[event]
	if em == nil {
		return EventMetrics{}, false
	}
	return *em, true
}

// Events returns a copy of all per-event metrics.
func (m *Metrics) Events() []EventMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]EventMetrics, 0, len(m.eventMetrics))
	for _, em := range m.eventMetrics {
		out = append(out, *em)
	}
	return out
}

// Reset clears all collected metrics.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.eventMetrics = make(map[string]*EventMetrics)
	m.totalFires = 0
	m.totalFailures = 0
	m.totalPanics = 0
	m.totalIntercept = 0
	m.totalDuration = 0
}
