// Package status holds named runtime counters and gauges shared between the simulation and render loops
package status

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Registry hands out metric pointers by name
// Callers cache the pointer once; updates are then lock-free atomics
type Registry struct {
	counters metricMap[atomic.Int64]
	gauges   metricMap[Gauge]
}

func NewRegistry() *Registry {
	return &Registry{
		counters: metricMap[atomic.Int64]{items: make(map[string]*atomic.Int64)},
		gauges:   metricMap[Gauge]{items: make(map[string]*Gauge)},
	}
}

// Counter returns the counter for name, creating it on first use
func (r *Registry) Counter(name string) *atomic.Int64 {
	return r.counters.get(name)
}

// Gauge returns the gauge for name, creating it on first use
func (r *Registry) Gauge(name string) *Gauge {
	return r.gauges.get(name)
}

// Sample is a point-in-time metric value
type Sample struct {
	Name  string
	Value float64
}

// Snapshot reads every metric, counters then gauges, each sorted by name
func (r *Registry) Snapshot() []Sample {
	var out []Sample
	r.counters.each(func(name string, c *atomic.Int64) {
		out = append(out, Sample{Name: name, Value: float64(c.Load())})
	})
	r.gauges.each(func(name string, g *Gauge) {
		out = append(out, Sample{Name: name, Value: g.Get()})
	})
	return out
}

// Len returns the number of registered metrics
func (r *Registry) Len() int {
	return r.counters.len() + r.gauges.len()
}

type metricMap[T any] struct {
	mu    sync.RWMutex
	items map[string]*T
}

func (m *metricMap[T]) get(name string) *T {
	m.mu.RLock()
	ptr, ok := m.items[name]
	m.mu.RUnlock()
	if ok {
		return ptr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another caller may have created it between the locks
	if ptr, ok := m.items[name]; ok {
		return ptr
	}
	ptr = new(T)
	m.items[name] = ptr
	return ptr
}

func (m *metricMap[T]) each(fn func(name string, ptr *T)) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.items))
	for k := range m.items {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fn(k, m.items[k])
	}
}

func (m *metricMap[T]) len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
