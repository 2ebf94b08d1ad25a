//go:build js && wasm

package dom

import (
	"context"
	"fmt"
	"strings"
	"syscall/js"

	"github.com/Its-donkey/formwire/internal/ui/submit"
)

// Form wraps a <form> element.
type Form struct {
	el js.Value
	id string
}

// NewForm wraps el. It returns false when el is not present.
func NewForm(el js.Value) (*Form, bool) {
	if !el.Truthy() {
		return nil, false
	}
	return &Form{el: el, id: el.Get("id").String()}, true
}

// ID implements submit.Form.
func (f *Form) ID() string { return f.id }

// Action returns the resolved action URL, or the page URL when unset.
func (f *Form) Action() string {
	if attr := f.el.Call("getAttribute", "action"); attr.Type() == js.TypeString && strings.TrimSpace(attr.String()) != "" {
		return f.el.Get("action").String()
	}
	return js.Global().Get("location").Get("href").String()
}

// Snapshot reads the form through FormData and evaluates native validity.
func (f *Form) Snapshot() (snap submit.Snapshot, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read form %s: %v", f.id, r)
		}
	}()
	fileCtor := js.Global().Get("File")
	data := js.Global().Get("FormData").New(f.el)
	var fields []submit.Field
	each := js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) < 2 {
			return nil
		}
		value, key := args[0], args[1].String()
		if value.Type() == js.TypeObject && fileCtor.Truthy() && value.InstanceOf(fileCtor) {
			fields = append(fields, submit.Field{Name: key, File: fileRef(value)})
			return nil
		}
		fields = append(fields, submit.Field{Name: key, Value: value.String()})
		return nil
	})
	defer each.Release()
	data.Call("forEach", each)

	return submit.Snapshot{Fields: fields, Valid: f.el.Call("checkValidity").Bool()}, nil
}

func fileRef(file js.Value) *submit.FileRef {
	return &submit.FileRef{
		Filename:    file.Get("name").String(),
		ContentType: file.Get("type").String(),
		Open: func(context.Context) ([]byte, error) {
			buf, err := await(file.Call("arrayBuffer"))
			if err != nil {
				return nil, err
			}
			arr := js.Global().Get("Uint8Array").New(buf)
			out := make([]byte, arr.Get("length").Int())
			js.CopyBytesToGo(out, arr)
			return out, nil
		},
	}
}

// MarkValidated adds the was-validated class so validation styling shows.
func (f *Form) MarkValidated() {
	f.el.Get("classList").Call("add", "was-validated")
}

// OnSubmit listens for submit events, cancelling native submission and
// reporting the control that submitted the form.
func (f *Form) OnSubmit(handler func(submit.Control)) func() {
	listener := js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) == 0 {
			return nil
		}
		event := args[0]
		event.Call("preventDefault")
		submitter := event.Get("submitter")
		active := Document().Get("activeElement")
		focused := active.Truthy() && f.el.Call("contains", active).Bool() &&
			isSubmitControl(active.Get("tagName").String(), typeAttr(active))
		first := f.el.Call("querySelector", `button:not([type]), button[type="submit"], input[type="submit"]`)

		switch pickSubmitter(submitter.Truthy(), focused, first.Truthy()) {
		case sourceEvent:
			handler(&Button{el: submitter})
		case sourceFocus:
			handler(&Button{el: active})
		case sourceFirst:
			handler(&Button{el: first})
		default:
			handler(nil)
		}
		return nil
	})
	f.el.Call("addEventListener", "submit", listener)
	return func() {
		f.el.Call("removeEventListener", "submit", listener)
		listener.Release()
	}
}

func typeAttr(el js.Value) string {
	v := el.Call("getAttribute", "type")
	if v.IsNull() || v.IsUndefined() {
		return ""
	}
	return v.String()
}

// Button wraps a submit control.
type Button struct {
	el js.Value
}

// Name implements submit.Control.
func (b *Button) Name() string { return b.el.Get("name").String() }

// Value implements submit.Control.
func (b *Button) Value() string { return b.el.Get("value").String() }

// Label returns the visible text, or the value of an <input> button.
func (b *Button) Label() string {
	if strings.EqualFold(b.el.Get("tagName").String(), "input") {
		return b.el.Get("value").String()
	}
	return b.el.Get("textContent").String()
}

// SetLabel sets the visible text.
func (b *Button) SetLabel(label string) {
	if strings.EqualFold(b.el.Get("tagName").String(), "input") {
		b.el.Set("value", label)
		return
	}
	b.el.Set("textContent", label)
}

// SetDisabled implements submit.Control.
func (b *Button) SetDisabled(disabled bool) { b.el.Set("disabled", disabled) }
