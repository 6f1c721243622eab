package dispatcher

import (
	"sort"
	"sync"
	"time"

	"github.com/dshills/gitpanel/internal/dispatcher/handler"
)

// Metrics collects dispatch statistics.
type Metrics struct {
	mu sync.RWMutex

	verbs map[string]*VerbMetrics

	totalDispatches uint64
	totalErrors     uint64
	totalPanics     uint64
	totalDuration   time.Duration
}

// VerbMetrics holds metrics for one verb.
type VerbMetrics struct {
	Name          string
	DispatchCount uint64
	ErrorCount    uint64
	TotalDuration time.Duration
	MinDuration   time.Duration
	MaxDuration   time.Duration
	LastStatus    handler.ResultStatus
	LastDispatch  time.Time
}

// AverageDuration returns the mean dispatch time for the verb.
func (vm VerbMetrics) AverageDuration() time.Duration {
	if vm.DispatchCount == 0 {
		return 0
	}
	return vm.TotalDuration / time.Duration(vm.DispatchCount)
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{verbs: make(map[string]*VerbMetrics)}
}

// RecordDispatch records one completed dispatch.
func (m *Metrics) RecordDispatch(verb string, duration time.Duration, status handler.ResultStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalDispatches++
	m.totalDuration += duration

	vm := m.verbs[verb]
	if vm == nil {
		vm = &VerbMetrics{Name: verb, MinDuration: duration, MaxDuration: duration}
		m.verbs[verb] = vm
	}
	vm.DispatchCount++
	vm.TotalDuration += duration
	vm.LastStatus = status
	vm.LastDispatch = time.Now()
	vm.MinDuration = min(vm.MinDuration, duration)
	vm.MaxDuration = max(vm.MaxDuration, duration)

	if status == handler.StatusError {
		m.totalErrors++
		vm.ErrorCount++
	}
}

// RecordPanic records a recovered handler panic.
func (m *Metrics) RecordPanic(string) {
	m.mu.Lock()
	m.totalPanics++
	m.mu.Unlock()
}

// VerbStats returns a copy of the metrics for verb, or nil.
func (m *Metrics) VerbStats(verb string) *VerbMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	vm := m.verbs[verb]
	if vm == nil {
		return nil
	}
	c := *vm
	return &c
}

// TopVerbs returns the n most dispatched verbs.
func (m *Metrics) TopVerbs(n int) []VerbMetrics {
	m.mu.RLock()
	all := make([]VerbMetrics, 0, len(m.verbs))
	for _, vm := range m.verbs {
		all = append(all, *vm)
	}
	m.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].DispatchCount != all[j].DispatchCount {
			return all[i].DispatchCount > all[j].DispatchCount
		}
		return all[i].Name < all[j].Name
	})
	return all[:min(n, len(all))]
}

// MetricsSnapshot is a point-in-time view of the counters.
type MetricsSnapshot struct {
	TotalDispatches uint64
	TotalErrors     uint64
	TotalPanics     uint64
	TotalDuration   time.Duration
	AverageDuration time.Duration
	VerbCount       int
	Timestamp       time.Time
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := MetricsSnapshot{
		TotalDispatches: m.totalDispatches,
		TotalErrors:     m.totalErrors,
		TotalPanics:     m.totalPanics,
		TotalDuration:   m.totalDuration,
		VerbCount:       len(m.verbs),
		Timestamp:       time.Now(),
	}
	if m.totalDispatches > 0 {
		s.AverageDuration = m.totalDuration / time.Duration(m.totalDispatches)
	}
	return s
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.verbs = make(map[string]*VerbMetrics)
	m.totalDispatches = 0
	m.totalErrors = 0
	m.totalPanics = 0
	m.totalDuration = 0
}
