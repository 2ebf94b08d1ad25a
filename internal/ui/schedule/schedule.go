// Package schedule abstracts deferred callbacks so UI timers (notification
// auto-dismiss, delayed redirects) can run against the real clock in the
// browser and against a manual clock in tests and headless runs.
package schedule

import (
	"sort"
	"sync"
	"time"
)

// Timer is a pending callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Scheduler runs fn once after d has elapsed.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// Real schedules callbacks with time.AfterFunc. Under js/wasm the Go runtime
// backs these timers with setTimeout, so callbacks land on the event loop.
type Real struct{}

// AfterFunc implements Scheduler.
func (Real) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Manual is a deterministic Scheduler driven by Advance and RunAll.
type Manual struct {
	mu      sync.Mutex
	now     time.Duration
	seq     int
	pending []*manualTimer
}

type manualTimer struct {
	owner    *Manual
	deadline time.Duration
	seq      int
	fn       func()
	stopped  bool
	fired    bool
}

// NewManual returns a Manual scheduler positioned at time zero.
func NewManual() *Manual {
	return &Manual{}
}

// AfterFunc implements Scheduler.
func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{owner: m, deadline: m.now + d, seq: m.seq, fn: fn}
	m.pending = append(m.pending, t)
	return t
}

// Now reports how far the manual clock has advanced.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending reports the number of timers that have neither fired nor been stopped.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, t := range m.pending {
		if !t.stopped && !t.fired {
			count++
		}
	}
	return count
}

// Advance moves the clock forward by d and fires every timer whose deadline
// has been reached, in deadline order. Callbacks run without the lock held so
// they may schedule further timers.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()
	for {
		next := m.popDue(target)
		if next == nil {
			break
		}
		next.fn()
	}
	m.mu.Lock()
	if m.now < target {
		m.now = target
	}
	m.mu.Unlock()
}

// RunAll fires every pending timer, including ones scheduled by callbacks,
// advancing the clock to each deadline in turn.
func (m *Manual) RunAll() {
	for {
		m.mu.Lock()
		var latest time.Duration
		found := false
		for _, t := range m.pending {
			if !t.stopped && !t.fired && (!found || t.deadline > latest) {
				latest = t.deadline
				found = true
			}
		}
		m.mu.Unlock()
		if !found {
			return
		}
		m.Advance(latest - m.Now())
	}
}

func (m *Manual) popDue(target time.Duration) *manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()
	live := m.pending[:0]
	for _, t := range m.pending {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	m.pending = live
	sort.SliceStable(m.pending, func(i, j int) bool {
		if m.pending[i].deadline == m.pending[j].deadline {
			return m.pending[i].seq < m.pending[j].seq
		}
		return m.pending[i].deadline < m.pending[j].deadline
	})
	if len(m.pending) == 0 || m.pending[0].deadline > target {
		return nil
	}
	t := m.pending[0]
	t.fired = true
	if t.deadline > m.now {
		m.now = t.deadline
	}
	return t
}

func (t *manualTimer) Stop() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}
