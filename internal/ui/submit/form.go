package submit

import (
	"context"
	"net/url"
	"strings"
)

// Control is the element that triggered a submission, usually a submit button.
type Control interface {
	Name() string
	Value() string
	Label() string
	SetLabel(label string)
	SetDisabled(disabled bool)
}

// Form is a bindable form. Browser and headless adapters implement it.
type Form interface {
	// ID identifies the form in logs.
	ID() string
	// Action is the endpoint the form posts to.
	Action() string
	// Snapshot captures field values at submit time.
	Snapshot() (Snapshot, error)
	// MarkValidated surfaces validation styling on the form.
	MarkValidated()
	// OnSubmit registers handler for submit events and returns a function
	// that removes it. Adapters suppress native submission before calling
	// handler and pass the activated control, or nil when unknown.
	OnSubmit(handler func(trigger Control)) (release func())
}

// FileRef is a file selected in a file input. Open is called off the event
// loop, after the submission has been dispatched.
type FileRef struct {
	Filename    string
	ContentType string
	Open        func(ctx context.Context) ([]byte, error)
}

// Field is one serialized form entry.
type Field struct {
	Name  string
	Value string
	File  *FileRef
}

// Snapshot is the form state captured when the user submitted.
type Snapshot struct {
	Fields []Field
	// Valid carries the form's native constraint validity (required,
	// pattern, type) as evaluated by the adapter.
	Valid bool
}

// Get returns the first value for name.
func (s Snapshot) Get(name string) string {
	for _, f := range s.Fields {
		if f.Name == name && f.File == nil {
			return f.Value
		}
	}
	return ""
}

// Has reports whether any field named name is present.
func (s Snapshot) Has(name string) bool {
	for _, f := range s.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// HasFiles reports whether the snapshot carries file fields.
func (s Snapshot) HasFiles() bool {
	for _, f := range s.Fields {
		if f.File != nil {
			return true
		}
	}
	return false
}

// Values returns the non-file fields as url.Values.
func (s Snapshot) Values() url.Values {
	values := make(url.Values)
	for _, f := range s.Fields {
		if f.File == nil {
			values.Add(f.Name, f.Value)
		}
	}
	return values
}

// With returns a copy where name holds exactly value, replacing earlier entries.
func (s Snapshot) With(name, value string) Snapshot {
	out := Snapshot{Valid: s.Valid, Fields: make([]Field, 0, len(s.Fields)+1)}
	for _, f := range s.Fields {
		if f.Name != name {
			out.Fields = append(out.Fields, f)
		}
	}
	out.Fields = append(out.Fields, Field{Name: name, Value: value})
	return out
}

// PendingAction identifies which server action a submission requests,
// derived from the activated control.
type PendingAction struct {
	Name  string
	Value string
}

// ActionOf derives the pending action from trigger.
func ActionOf(trigger Control) PendingAction {
	if trigger == nil {
		return PendingAction{}
	}
	return PendingAction{
		Name:  strings.TrimSpace(trigger.Name()),
		Value: trigger.Value(),
	}
}

// Empty reports whether the trigger carried no name.
func (a PendingAction) Empty() bool {
	return a.Name == ""
}

// String names the action: the value of an `action` control, otherwise the
// control's name.
func (a PendingAction) String() string {
	if a.Name == "action" {
		return strings.TrimSpace(a.Value)
	}
	return a.Name
}

// CSRFSource supplies the page's anti-forgery token. The token is opaque and
// forwarded unmodified.
type CSRFSource interface {
	Token() string
}

// StaticToken is a CSRFSource with a fixed value.
type StaticToken string

// Token implements CSRFSource.
func (t StaticToken) Token() string { return string(t) }

// Navigator moves the page to another location.
type Navigator interface {
	Navigate(target string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(target string)

// Navigate implements Navigator.
func (f NavigatorFunc) Navigate(target string) { f(target) }
