package connections

import "sync"

// MemoryView is an in-memory ListView used by the headless client and tests.
type MemoryView struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewMemoryView constructs a view holding entries.
func NewMemoryView(entries ...Entry) *MemoryView {
	cp := make([]Entry, len(entries))
	copy(cp, entries)
	return &MemoryView{entries: cp}
}

// Entries returns a copy of the visible rows.
//
// Callers can safely modify the returned slice without affecting the view.
func (v *MemoryView) Entries() []Entry {
	v.mu.RLock()
	defer v.mu.RUnlock()
	cp := make([]Entry, len(v.entries))
	copy(cp, v.entries)
	return cp
}

// Insert appends a row.
func (v *MemoryView) Insert(e Entry) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.entries = append(v.entries, e)
}

// Remove drops every row with id.
func (v *MemoryView) Remove(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	kept := v.entries[:0]
	for _, e := range v.entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	v.entries = kept
}

// MemorySelector records the options it was last given.
type MemorySelector struct {
	mu      sync.RWMutex
	options []Entry
	updates int
}

// SetOptions implements SelectorView.
func (s *MemorySelector) SetOptions(entries []Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.options = make([]Entry, len(entries))
	copy(s.options, entries)
	s.updates++
}

// Options returns the current options.
func (s *MemorySelector) Options() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make([]Entry, len(s.options))
	copy(cp, s.options)
	return cp
}

// Updates counts SetOptions calls.
func (s *MemorySelector) Updates() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updates
}
