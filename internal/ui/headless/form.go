package headless

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/Its-donkey/formwire/internal/ui/submit"
)

// Form is a parsed <form>. Field values start as rendered and can be changed
// with Set and Attach before pressing a button.
type Form struct {
	base *url.URL
	sel  *goquery.Selection

	mu        sync.Mutex
	overrides map[string]string
	order     []string
	files     map[string]*submit.FileRef
	validated bool
	handler   func(submit.Control)
}

func newForm(base *url.URL, sel *goquery.Selection) *Form {
	return &Form{
		base:      base,
		sel:       sel,
		overrides: make(map[string]string),
		files:     make(map[string]*submit.FileRef),
	}
}

// ID implements submit.Form.
func (f *Form) ID() string {
	id, _ := f.sel.Attr("id")
	return id
}

// Action returns the absolute action URL.
func (f *Form) Action() string {
	action, _ := f.sel.Attr("action")
	return resolve(f.base, action)
}

// Set overrides the value of the field name, adding it when the form has no
// such field. Setting a checkbox or radio name checks it with value.
func (f *Form) Set(name, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.overrides[name]; !ok {
		f.order = append(f.order, name)
	}
	f.overrides[name] = value
}

// Attach sets the contents of a file input.
func (f *Form) Attach(name, filename, contentType string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[name] = &submit.FileRef{
		Filename:    filename,
		ContentType: contentType,
		Open: func(context.Context) ([]byte, error) {
			return data, nil
		},
	}
}

// Validated reports whether a submission was rejected by local validation.
func (f *Form) Validated() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validated
}

// MarkValidated implements submit.Form.
func (f *Form) MarkValidated() {
	f.mu.Lock()
	f.validated = true
	f.mu.Unlock()
}

// OnSubmit implements submit.Form.
func (f *Form) OnSubmit(handler func(submit.Control)) func() {
	f.mu.Lock()
	f.handler = handler
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.handler = nil
		f.mu.Unlock()
	}
}

// Press submits the form as if button had been clicked. A nil button submits
// without a trigger, as pressing Enter in a field would.
func (f *Form) Press(button *Button) error {
	f.mu.Lock()
	handler := f.handler
	f.mu.Unlock()
	if handler == nil {
		return fmt.Errorf("form %s is not bound", f.ID())
	}
	if button == nil {
		handler(nil)
		return nil
	}
	handler(button)
	return nil
}

// Buttons lists the form's submit controls in document order.
func (f *Form) Buttons() []*Button {
	var buttons []*Button
	f.sel.Find("button, input").Each(func(_ int, s *goquery.Selection) {
		if isSubmitControl(s) {
			buttons = append(buttons, newButton(s))
		}
	})
	return buttons
}

// Button finds a submit control by name and, when value is not empty, value.
// An empty name returns the first submit control.
func (f *Form) Button(name, value string) (*Button, error) {
	for _, b := range f.Buttons() {
		if name == "" || (b.name == name && (value == "" || b.value == value)) {
			return b, nil
		}
	}
	if name == "" {
		return nil, fmt.Errorf("form %s has no submit button", f.ID())
	}
	return nil, fmt.Errorf("form %s has no button %s=%s", f.ID(), name, value)
}

// Snapshot serializes the form the way a browser builds FormData: enabled,
// named, successful controls in document order.
func (f *Form) Snapshot() (submit.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	valid := true
	used := make(map[string]bool)
	var fields []submit.Field

	f.sel.Find("input, select, textarea").Each(func(_ int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		if name == "" || disabled(s) {
			return
		}
		tag := goquery.NodeName(s)
		kind := strings.ToLower(attr(s, "type"))
		_, required := s.Attr("required")
		override, overridden := f.overrides[name]

		switch {
		case tag == "input" && (kind == "submit" || kind == "button" || kind == "image" || kind == "reset"):
			return
		case tag == "input" && kind == "file":
			ref := f.files[name]
			if ref == nil {
				if required {
					valid = false
				}
				return
			}
			fields = append(fields, submit.Field{Name: name, File: ref})
			used[name] = true
			return
		case tag == "input" && (kind == "checkbox" || kind == "radio"):
			_, checked := s.Attr("checked")
			value := attr(s, "value")
			if value == "" {
				value = "on"
			}
			if overridden {
				if used[name] {
					return
				}
				checked = true
				value = override
			}
			if !checked {
				if required && !used[name] && kind == "checkbox" {
					valid = false
				}
				return
			}
			fields = append(fields, submit.Field{Name: name, Value: value})
			used[name] = true
			return
		}

		value := controlValue(s, tag)
		if overridden {
			if used[name] {
				return
			}
			value = override
		}
		if required && strings.TrimSpace(value) == "" {
			valid = false
		}
		if kind == "email" && value != "" && !strings.Contains(value, "@") {
			valid = false
		}
		fields = append(fields, submit.Field{Name: name, Value: value})
		used[name] = true
	})

	for _, name := range f.order {
		if !used[name] {
			fields = append(fields, submit.Field{Name: name, Value: f.overrides[name]})
		}
	}
	for name, ref := range f.files {
		if !used[name] {
			fields = append(fields, submit.Field{Name: name, File: ref})
		}
	}
	return submit.Snapshot{Fields: fields, Valid: valid}, nil
}

func controlValue(s *goquery.Selection, tag string) string {
	switch tag {
	case "textarea":
		return s.Text()
	case "select":
		selected := s.Find("option[selected]").First()
		if selected.Length() == 0 {
			selected = s.Find("option").First()
		}
		if v, ok := selected.Attr("value"); ok {
			return v
		}
		return strings.TrimSpace(selected.Text())
	default:
		return attr(s, "value")
	}
}

func isSubmitControl(s *goquery.Selection) bool {
	if disabled(s) {
		return false
	}
	kind := strings.ToLower(attr(s, "type"))
	switch goquery.NodeName(s) {
	case "button":
		return kind == "" || kind == "submit"
	case "input":
		return kind == "submit"
	}
	return false
}

func disabled(s *goquery.Selection) bool {
	_, ok := s.Attr("disabled")
	return ok
}

func attr(s *goquery.Selection, name string) string {
	v, _ := s.Attr(name)
	return v
}

// Button is a submit control of a parsed form.
type Button struct {
	mu       sync.Mutex
	name     string
	value    string
	label    string
	disabled bool
	labels   []string
}

func newButton(s *goquery.Selection) *Button {
	label := strings.TrimSpace(s.Text())
	if goquery.NodeName(s) == "input" {
		label = attr(s, "value")
	}
	return &Button{name: attr(s, "name"), value: attr(s, "value"), label: label}
}

// Name implements submit.Control.
func (b *Button) Name() string { return b.name }

// Value implements submit.Control.
func (b *Button) Value() string { return b.value }

// Label implements submit.Control.
func (b *Button) Label() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.label
}

// SetLabel implements submit.Control.
func (b *Button) SetLabel(label string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.label = label
	b.labels = append(b.labels, label)
}

// SetDisabled implements submit.Control.
func (b *Button) SetDisabled(disabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disabled = disabled
}

// Disabled reports the current disabled state.
func (b *Button) Disabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.disabled
}

// Labels returns every label the button has shown since it was parsed.
func (b *Button) Labels() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.labels...)
}
