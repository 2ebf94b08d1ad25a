package headless

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/Its-donkey/formwire/internal/ui/notify"
)

// WriterRegion prints each notification as one line and keeps the visible set
// so callers can inspect what a page would be showing.
type WriterRegion struct {
	mu      sync.Mutex
	w       io.Writer
	visible []notify.Message
}

// NewWriterRegion returns a region that writes to w.
func NewWriterRegion(w io.Writer) *WriterRegion {
	if w == nil {
		w = io.Discard
	}
	return &WriterRegion{w: w}
}

// Append implements notify.Region. There is no close control, so dismiss is
// left to the message's timer.
func (r *WriterRegion) Append(msg notify.Message, _ func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visible = append(r.visible, msg)
	fmt.Fprintf(r.w, "[%s] %s\n", strings.ToUpper(msg.Kind.String()), msg.Text)
}

// Remove implements notify.Region.
func (r *WriterRegion) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.visible {
		if m.ID == id {
			r.visible = append(r.visible[:i], r.visible[i+1:]...)
			return
		}
	}
}

// Clear implements notify.Region.
func (r *WriterRegion) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visible = nil
}

// Visible returns the messages not yet dismissed.
func (r *WriterRegion) Visible() []notify.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Message(nil), r.visible...)
}
