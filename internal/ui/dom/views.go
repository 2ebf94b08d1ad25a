//go:build js && wasm

package dom

import (
	"syscall/js"

	"github.com/Its-donkey/formwire/internal/ui/connections"
	"github.com/Its-donkey/formwire/internal/ui/flows"
	"github.com/Its-donkey/formwire/internal/ui/model"
)

const connectionIDAttr = "connectionId"

// ListView is the visible connections list. Rows carry data-connection-id.
type ListView struct {
	el js.Value
}

// NewListView wraps the list element with id.
func NewListView(id string) (*ListView, bool) {
	el := ByID(id)
	if !el.Truthy() {
		return nil, false
	}
	return &ListView{el: el}, true
}

// Entries reads the rows currently in the list.
func (v *ListView) Entries() []connections.Entry {
	rows := v.el.Call("querySelectorAll", "[data-connection-id]")
	entries := make([]connections.Entry, 0, rows.Length())
	for i := 0; i < rows.Length(); i++ {
		row := rows.Index(i)
		entries = append(entries, connections.Entry{
			ID:    row.Get("dataset").Get(connectionIDAttr).String(),
			Label: row.Get("textContent").String(),
		})
	}
	return entries
}

// Insert appends a row.
func (v *ListView) Insert(e connections.Entry) {
	row := Document().Call("createElement", "li")
	row.Set("className", "list-group-item")
	row.Get("dataset").Set(connectionIDAttr, e.ID)
	row.Set("textContent", e.Label)
	v.el.Call("appendChild", row)
}

// Remove drops rows with id.
func (v *ListView) Remove(id string) {
	rows := v.el.Call("querySelectorAll", `[data-connection-id="`+id+`"]`)
	for i := rows.Length() - 1; i >= 0; i-- {
		rows.Index(i).Call("remove")
	}
}

// Selector is a <select> whose options mirror the connection list. A leading
// placeholder option with an empty value is kept.
type Selector struct {
	el js.Value
}

// NewSelector wraps the select element with id.
func NewSelector(id string) (*Selector, bool) {
	el := ByID(id)
	if !el.Truthy() {
		return nil, false
	}
	return &Selector{el: el}, true
}

// SetOptions rebuilds the options from entries.
func (s *Selector) SetOptions(entries []connections.Entry) {
	selected := s.el.Get("value").String()
	options := s.el.Get("options")
	for i := options.Length() - 1; i >= 0; i-- {
		opt := options.Index(i)
		if i == 0 && opt.Get("value").String() == "" {
			continue
		}
		opt.Call("remove")
	}
	for _, e := range entries {
		opt := Document().Call("createElement", "option")
		opt.Set("value", e.ID)
		opt.Set("textContent", e.Label)
		if e.ID == selected {
			opt.Set("selected", true)
		}
		s.el.Call("appendChild", opt)
	}
}

// CodeView displays the reset verification code.
type CodeView struct {
	Container js.Value
	Input     js.Value
	Section   js.Value
}

// ShowCode renders code in the container.
func (v CodeView) ShowCode(code string) {
	if !v.Container.Truthy() {
		return
	}
	doc := Document()
	v.Container.Set("innerHTML", "")
	box := doc.Call("createElement", "div")
	box.Set("className", "code-box")
	title := doc.Call("createElement", "h5")
	title.Set("textContent", "Your Verification Code:")
	value := doc.Call("createElement", "div")
	value.Set("className", "code-value")
	value.Set("textContent", code)
	hint := doc.Call("createElement", "p")
	hint.Set("className", "code-hint")
	hint.Set("textContent", "(Enter this code below)")
	box.Call("appendChild", title)
	box.Call("appendChild", value)
	box.Call("appendChild", hint)
	v.Container.Call("appendChild", box)
	setDisplay(v.Container, true)
}

// RevealVerification shows and focuses the code input.
func (v CodeView) RevealVerification() {
	setDisplay(v.Section, true)
	if !v.Input.Truthy() {
		return
	}
	v.Input.Call("focus")
	if parent := v.Input.Get("parentElement"); parent.Truthy() {
		parent.Get("classList").Call("add", "highlight-input")
	}
	opts := js.Global().Get("Object").New()
	opts.Set("behavior", "smooth")
	opts.Set("block", "center")
	v.Input.Call("scrollIntoView", opts)
}

// HistoryView renders the upload history list.
type HistoryView struct {
	List    js.Value
	Loading js.Value
}

// ShowUploads implements flows.HistoryView.
func (v HistoryView) ShowUploads(uploads []model.Upload) {
	if !v.List.Truthy() {
		return
	}
	v.List.Set("innerHTML", "")
	for _, u := range uploads {
		item := Document().Call("createElement", "a")
		item.Get("classList").Call("add", "list-group-item", "list-group-item-action")
		item.Set("href", "#")
		item.Set("textContent", u.Filename+" - "+u.CreatedAt+" (Preview: "+u.Preview+")")
		v.List.Call("appendChild", item)
	}
	setDisplay(v.Loading, false)
}

// ShowHistoryError implements flows.HistoryView.
func (v HistoryView) ShowHistoryError(message string) {
	if v.List.Truthy() {
		v.List.Set("innerHTML", "")
		p := Document().Call("createElement", "p")
		p.Set("className", "text-danger")
		p.Set("textContent", message)
		v.List.Call("appendChild", p)
	}
	setDisplay(v.Loading, false)
}

// BindWordCount keeps counter in step with the text box. It returns a function
// releasing the listener.
func BindWordCount(text, counter js.Value) func() {
	if !text.Truthy() || !counter.Truthy() {
		return func() {}
	}
	update := js.FuncOf(func(this js.Value, args []js.Value) any {
		counter.Set("textContent", flows.FormatCount(text.Get("value").String()))
		return nil
	})
	text.Call("addEventListener", "input", update)
	counter.Set("textContent", flows.FormatCount(text.Get("value").String()))
	return func() {
		text.Call("removeEventListener", "input", update)
		update.Release()
	}
}

// BindClick runs fn in a new goroutine on every click of el, cancelling the
// default action. It returns a function releasing the listener.
func BindClick(el js.Value, fn func()) func() {
	if !el.Truthy() {
		return func() {}
	}
	listener := js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) > 0 {
			args[0].Call("preventDefault")
		}
		go fn()
		return nil
	})
	el.Call("addEventListener", "click", listener)
	return func() {
		el.Call("removeEventListener", "click", listener)
		listener.Release()
	}
}
