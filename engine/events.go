package engine

import (
	"reflect"
	"runtime"
	"time"
)

// ListenerStats holds execution statistics for one hook listener.
type ListenerStats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

// PhaseStats aggregates the listeners of one loop phase.
type PhaseStats struct {
	Phase     string
	Listeners []ListenerStats
}

// LoopStats reports per-phase listener statistics plus the loop's
// frame counters.
type LoopStats struct {
	VariableTicks uint64
	FixedTicks    uint64
	Delta         float64
	Total         float64
	Phases        []PhaseStats
}

type listenerStatsInternal struct {
	name           string
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

type hookEntry struct {
	fn    func()
	stats *listenerStatsInternal
}

// hookList is an ordered collection of subscriber callbacks invoked
// synchronously in registration order. No ordering across independently
// registered subsystems is promised beyond that.
type hookList struct {
	phase   string
	entries []hookEntry
}

func (h *hookList) subscribe(fn func()) {
	h.entries = append(h.entries, hookEntry{
		fn: fn,
		stats: &listenerStatsInternal{
			name:        funcName(fn),
			minDuration: time.Duration(1<<63 - 1),
		},
	})
}

func (h *hookList) fire() {
	for _, e := range h.entries {
		start := time.Now()
		e.fn()
		duration := time.Since(start)

		stats := e.stats
		stats.executionCount++
		stats.lastDuration = duration
		stats.totalDuration += duration

		if duration < stats.minDuration {
			stats.minDuration = duration
		}
		if duration > stats.maxDuration {
			stats.maxDuration = duration
		}
	}
}

func (h *hookList) collect() PhaseStats {
	ps := PhaseStats{
		Phase:     h.phase,
		Listeners: make([]ListenerStats, len(h.entries)),
	}
	for i, e := range h.entries {
		internal := e.stats
		avg := time.Duration(0)
		if internal.executionCount > 0 {
			avg = internal.totalDuration / time.Duration(internal.executionCount)
		}
		ps.Listeners[i] = ListenerStats{
			Name:           internal.name,
			ExecutionCount: internal.executionCount,
			MinDuration:    internal.minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    avg,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
		}
	}
	return ps
}

func funcName(fn func()) string {
	pc := reflect.ValueOf(fn).Pointer()
	if f := runtime.FuncForPC(pc); f != nil {
		return f.Name()
	}
	return "unknown"
}
