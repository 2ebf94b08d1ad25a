// Package notify renders dismissible feedback messages into a page region.
// Every message owns an independent auto-dismiss timer; messages may coexist
// and dismiss in any order.
package notify

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Its-donkey/formwire/internal/ui/schedule"
)

// DefaultTTL is how long a message stays visible without user interaction.
const DefaultTTL = 5 * time.Second

// Kind is the severity of a message. It only affects presentation.
type Kind int

const (
	Info Kind = iota
	Success
	Warning
	Error
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// AlertClass maps the kind onto the page's alert styling.
func (k Kind) AlertClass() string {
	switch k {
	case Success:
		return "alert-success"
	case Warning:
		return "alert-warning"
	case Error:
		return "alert-danger"
	default:
		return "alert-info"
	}
}

// Message is one rendered notification.
type Message struct {
	ID      string
	Text    string
	Kind    Kind
	Created time.Time
}

// Region is where messages are drawn. Append receives a dismiss callback the
// region wires to its close control.
type Region interface {
	Append(msg Message, dismiss func())
	Remove(id string)
	Clear()
}

// Center tracks visible messages for one region.
type Center struct {
	mu        sync.Mutex
	region    Region
	sched     schedule.Scheduler
	ttl       time.Duration
	exclusive bool
	now       func() time.Time
	newID     func() string
	active    []Message
	timers    map[string]schedule.Timer
}

// Option customises a Center.
type Option func(*Center)

// WithTTL sets the auto-dismiss duration. Non-positive values disable auto-dismiss.
func WithTTL(ttl time.Duration) Option {
	return func(c *Center) { c.ttl = ttl }
}

// WithScheduler replaces the real clock.
func WithScheduler(s schedule.Scheduler) Option {
	return func(c *Center) {
		if s != nil {
			c.sched = s
		}
	}
}

// Exclusive clears the region before each new message.
func Exclusive() Option {
	return func(c *Center) { c.exclusive = true }
}

// New builds a Center drawing into region.
func New(region Region, opts ...Option) *Center {
	c := &Center{
		region: region,
		sched:  schedule.Real{},
		ttl:    DefaultTTL,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
		timers: make(map[string]schedule.Timer),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Notify renders text with the given kind and schedules its dismissal.
// Blank text is ignored and yields a zero Message.
func (c *Center) Notify(kind Kind, text string) Message {
	text = strings.TrimSpace(text)
	if c == nil || text == "" {
		return Message{}
	}
	msg := Message{ID: c.newID(), Text: text, Kind: kind, Created: c.now()}

	c.mu.Lock()
	if c.exclusive {
		c.clearLocked()
	}
	c.active = append(c.active, msg)
	if c.ttl > 0 {
		id := msg.ID
		c.timers[id] = c.sched.AfterFunc(c.ttl, func() { c.Dismiss(id) })
	}
	region := c.region
	c.mu.Unlock()

	if region != nil {
		if c.exclusive {
			region.Clear()
		}
		id := msg.ID
		region.Append(msg, func() { c.Dismiss(id) })
	}
	return msg
}

// Dismiss removes a message and cancels its timer. It reports whether the
// message was still visible.
func (c *Center) Dismiss(id string) bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	index := -1
	for i, msg := range c.active {
		if msg.ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		c.mu.Unlock()
		return false
	}
	c.active = append(c.active[:index], c.active[index+1:]...)
	if timer, ok := c.timers[id]; ok {
		timer.Stop()
		delete(c.timers, id)
	}
	region := c.region
	c.mu.Unlock()

	if region != nil {
		region.Remove(id)
	}
	return true
}

// Clear dismisses every visible message.
func (c *Center) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.clearLocked()
	region := c.region
	c.mu.Unlock()
	if region != nil {
		region.Clear()
	}
}

func (c *Center) clearLocked() {
	for id, timer := range c.timers {
		timer.Stop()
		delete(c.timers, id)
	}
	c.active = nil
}

// Active returns the visible messages, oldest first.
func (c *Center) Active() []Message {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.active))
	copy(out, c.active)
	return out
}

// MemoryRegion keeps rendered messages in memory. The headless CLI prints
// from it and tests assert against it.
type MemoryRegion struct {
	mu       sync.Mutex
	messages []Message
	dismiss  map[string]func()
	// OnAppend, when set, observes every appended message.
	OnAppend func(Message)
}

// Append implements Region.
func (r *MemoryRegion) Append(msg Message, dismiss func()) {
	r.mu.Lock()
	if r.dismiss == nil {
		r.dismiss = make(map[string]func())
	}
	r.messages = append(r.messages, msg)
	r.dismiss[msg.ID] = dismiss
	hook := r.OnAppend
	r.mu.Unlock()
	if hook != nil {
		hook(msg)
	}
}

// Remove implements Region.
func (r *MemoryRegion) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, msg := range r.messages {
		if msg.ID == id {
			r.messages = append(r.messages[:i], r.messages[i+1:]...)
			break
		}
	}
	delete(r.dismiss, id)
}

// Clear implements Region.
func (r *MemoryRegion) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
	r.dismiss = nil
}

// Close simulates the user clicking a message's close control.
func (r *MemoryRegion) Close(id string) {
	r.mu.Lock()
	fn := r.dismiss[id]
	r.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Messages returns the rendered messages, oldest first.
func (r *MemoryRegion) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Texts returns the rendered message texts, oldest first.
func (r *MemoryRegion) Texts() []string {
	msgs := r.Messages()
	out := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, msg.Text)
	}
	return out
}
