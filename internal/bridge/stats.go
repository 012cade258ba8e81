package bridge

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Stats counts pipeline events. Safe for concurrent use.
type Stats struct {
	lines      atomic.Uint64
	skipped    atomic.Uint64
	decoded    atomic.Uint64
	failed     atomic.Uint64
	delivered  atomic.Uint64
	sinkErrors atomic.Uint64
	stuffBits  atomic.Uint64

	mu      sync.Mutex
	reasons map[string]uint64
}

// Snapshot is a point-in-time copy of Stats.
type Snapshot struct {
	Lines      uint64            `json:"lines"`
	Skipped    uint64            `json:"skipped"`
	Decoded    uint64            `json:"decoded"`
	Failed     uint64            `json:"failed"`
	Delivered  uint64            `json:"delivered"`
	SinkErrors uint64            `json:"sink_errors"`
	StuffBits  uint64            `json:"stuff_bits"`
	Errors     map[string]uint64 `json:"errors,omitempty"`
}

func (s *Stats) fail(reason string) {
	s.failed.Add(1)
	s.mu.Lock()
	if s.reasons == nil {
		s.reasons = make(map[string]uint64)
	}
	s.reasons[reason]++
	s.mu.Unlock()
}

// Snapshot copies the counters.
func (s *Stats) Snapshot() Snapshot {
	snap := Snapshot{
		Lines:      s.lines.Load(),
		Skipped:    s.skipped.Load(),
		Decoded:    s.decoded.Load(),
		Failed:     s.failed.Load(),
		Delivered:  s.delivered.Load(),
		SinkErrors: s.sinkErrors.Load(),
		StuffBits:  s.stuffBits.Load(),
	}
	s.mu.Lock()
	if len(s.reasons) > 0 {
		snap.Errors = make(map[string]uint64, len(s.reasons))
		for k, v := range s.reasons {
			snap.Errors[k] = v
		}
	}
	s.mu.Unlock()
	return snap
}

// TopErrors returns failure reasons ordered by count, most frequent first.
func (s Snapshot) TopErrors() []string {
	reasons := make([]string, 0, len(s.Errors))
	for k := range s.Errors {
		reasons = append(reasons, k)
	}
	sort.Slice(reasons, func(i, j int) bool {
		if s.Errors[reasons[i]] != s.Errors[reasons[j]] {
			return s.Errors[reasons[i]] > s.Errors[reasons[j]]
		}
		return reasons[i] < reasons[j]
	})
	return reasons
}
