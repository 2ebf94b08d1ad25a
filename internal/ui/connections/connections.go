// Package connections keeps a visible list of connected users and the
// selectors that depend on it in step, without reloading the page.
package connections

import (
	"strings"
	"sync"

	"github.com/Its-donkey/formwire/internal/ui/model"
)

// Entry is one connection, identified by ID.
type Entry struct {
	ID    string
	Label string
}

// FromUser converts a server user record into an Entry. The label prefers the
// username and falls back to the email.
func FromUser(u model.User) Entry {
	label := strings.TrimSpace(u.Username)
	if label == "" {
		label = strings.TrimSpace(u.Email)
	}
	return Entry{ID: string(u.ID), Label: label}
}

// ListView is the visible list. It is the source of truth for selectors.
type ListView interface {
	Entries() []Entry
	Insert(Entry)
	Remove(id string)
}

// SelectorView is a dropdown whose options mirror the list.
type SelectorView interface {
	SetOptions([]Entry)
}

// List applies server-confirmed mutations to a ListView and its selectors.
type List struct {
	mu        sync.Mutex
	view      ListView
	selectors []SelectorView
}

// New returns a List over view. Selectors are synced immediately.
func New(view ListView, selectors ...SelectorView) *List {
	l := &List{view: view, selectors: selectors}
	l.mu.Lock()
	l.sync()
	l.mu.Unlock()
	return l
}

// Attach adds a selector and syncs it.
func (l *List) Attach(selector SelectorView) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.selectors = append(l.selectors, selector)
	selector.SetOptions(l.view.Entries())
}

// Add inserts entry unless an entry with the same ID is already visible. It
// reports whether the list changed. Selectors are re-derived either way.
func (l *List) Add(entry Entry) bool {
	if strings.TrimSpace(entry.ID) == "" {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	changed := false
	if !contains(l.view.Entries(), entry.ID) {
		l.view.Insert(entry)
		changed = true
	}
	l.sync()
	return changed
}

// Remove deletes the entry with id. It reports whether the list changed.
func (l *List) Remove(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	changed := false
	if contains(l.view.Entries(), id) {
		l.view.Remove(id)
		changed = true
	}
	l.sync()
	return changed
}

// Replace makes the visible list equal to entries, keeping existing rows that
// are still present and appending new ones in order.
func (l *List) Replace(entries []Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	want := make(map[string]bool, len(entries))
	for _, e := range entries {
		want[e.ID] = true
	}
	for _, existing := range l.view.Entries() {
		if !want[existing.ID] {
			l.view.Remove(existing.ID)
		}
	}
	current := l.view.Entries()
	for _, e := range entries {
		if strings.TrimSpace(e.ID) == "" || contains(current, e.ID) {
			continue
		}
		l.view.Insert(e)
		current = append(current, e)
	}
	l.sync()
}

// ApplyUsers replaces the list with a users[] payload.
func (l *List) ApplyUsers(users []model.User) {
	entries := make([]Entry, 0, len(users))
	for _, u := range users {
		entries = append(entries, FromUser(u))
	}
	l.Replace(entries)
}

// Entries returns the currently visible entries.
func (l *List) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.view.Entries()
}

func (l *List) sync() {
	entries := l.view.Entries()
	for _, s := range l.selectors {
		opts := make([]Entry, len(entries))
		copy(opts, entries)
		s.SetOptions(opts)
	}
}

func contains(entries []Entry, id string) bool {
	for _, e := range entries {
		if e.ID == id {
			return true
		}
	}
	return false
}
