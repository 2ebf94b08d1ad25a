//go:build js && wasm

package dom

import (
	"sync"
	"syscall/js"

	"github.com/Its-donkey/formwire/internal/ui/notify"
)

// Region renders notifications as dismissible alerts inside a container.
type Region struct {
	container js.Value
	mu        sync.Mutex
	handlers  map[string]js.Func
}

// NewRegion returns a Region for the element with id. It returns false when the
// element is missing.
func NewRegion(id string) (*Region, bool) {
	el := ByID(id)
	if !el.Truthy() {
		return nil, false
	}
	return &Region{container: el, handlers: make(map[string]js.Func)}, true
}

// Append implements notify.Region. Text is set as textContent, never parsed as
// markup.
func (r *Region) Append(msg notify.Message, dismiss func()) {
	doc := Document()
	alert := doc.Call("createElement", "div")
	alert.Set("className", "alert "+msg.Kind.AlertClass()+" alert-dismissible fade show")
	alert.Call("setAttribute", "role", "alert")
	alert.Get("dataset").Set("messageId", msg.ID)

	text := doc.Call("createElement", "span")
	text.Set("textContent", msg.Text)
	alert.Call("appendChild", text)

	closeBtn := doc.Call("createElement", "button")
	closeBtn.Set("type", "button")
	closeBtn.Set("className", "btn-close")
	closeBtn.Call("setAttribute", "aria-label", "Close")
	onClose := js.FuncOf(func(this js.Value, args []js.Value) any {
		dismiss()
		return nil
	})
	closeBtn.Call("addEventListener", "click", onClose)
	alert.Call("appendChild", closeBtn)

	r.mu.Lock()
	r.handlers[msg.ID] = onClose
	r.mu.Unlock()
	r.container.Call("appendChild", alert)
	setDisplay(r.container, true)
}

// Remove implements notify.Region.
func (r *Region) Remove(id string) {
	el := r.container.Call("querySelector", `[data-message-id="`+id+`"]`)
	if el.Truthy() {
		el.Call("remove")
	}
	r.mu.Lock()
	if fn, ok := r.handlers[id]; ok {
		fn.Release()
		delete(r.handlers, id)
	}
	r.mu.Unlock()
}

// Clear implements notify.Region. It also removes alerts rendered by the
// server with the page.
func (r *Region) Clear() {
	r.container.Set("innerHTML", "")
	r.mu.Lock()
	for id, fn := range r.handlers {
		fn.Release()
		delete(r.handlers, id)
	}
	r.mu.Unlock()
}
