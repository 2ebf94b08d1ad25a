package submit

import (
	"bytes"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
)

type fakeControl struct {
	mu       sync.Mutex
	name     string
	value    string
	label    string
	disabled bool
	labels   []string
}

func newButton(name, value, label string) *fakeControl {
	return &fakeControl{name: name, value: value, label: label}
}

func (c *fakeControl) Name() string  { return c.name }
func (c *fakeControl) Value() string { return c.value }

func (c *fakeControl) Label() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.label
}

func (c *fakeControl) SetLabel(label string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.label = label
	c.labels = append(c.labels, label)
}

func (c *fakeControl) SetDisabled(disabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disabled = disabled
}

func (c *fakeControl) Disabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disabled
}

func (c *fakeControl) History() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.labels...)
}

type fakeForm struct {
	mu        sync.Mutex
	id        string
	action    string
	snapshot  Snapshot
	validated int
	handler   func(Control)
	released  bool
}

func newForm(id, action string, fields ...Field) *fakeForm {
	return &fakeForm{id: id, action: action, snapshot: Snapshot{Fields: fields, Valid: true}}
}

func (f *fakeForm) ID() string     { return f.id }
func (f *fakeForm) Action() string { return f.action }

func (f *fakeForm) Snapshot() (Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot, nil
}

func (f *fakeForm) MarkValidated() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.validated++
}

func (f *fakeForm) OnSubmit(handler func(Control)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = handler
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.released = true
		f.handler = nil
	}
}

// fire simulates the browser dispatching a submit event.
func (f *fakeForm) fire(trigger Control) {
	f.mu.Lock()
	handler := f.handler
	f.mu.Unlock()
	if handler != nil {
		handler(trigger)
	}
}

// recordingDoer answers every request with a canned response, optionally
// blocking until gate is closed.
type recordingDoer struct {
	mu       sync.Mutex
	requests []*http.Request
	bodies   [][]byte
	count    atomic.Int32
	gate     chan struct{}
	started  chan struct{}
	status   int
	body     string
	err      error
}

func (d *recordingDoer) Do(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
	}
	d.mu.Lock()
	d.requests = append(d.requests, req)
	d.bodies = append(d.bodies, body)
	d.mu.Unlock()
	d.count.Add(1)
	if d.started != nil {
		d.started <- struct{}{}
	}
	if d.gate != nil {
		<-d.gate
	}
	if d.err != nil {
		return nil, d.err
	}
	status := d.status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       io.NopCloser(bytes.NewBufferString(d.body)),
		Request:    req,
	}, nil
}

func (d *recordingDoer) lastRequest() (*http.Request, []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.requests) == 0 {
		return nil, nil
	}
	return d.requests[len(d.requests)-1], d.bodies[len(d.bodies)-1]
}
