// Package submit binds forms to their endpoints: one guarded request per
// form at a time, busy/idle trigger state, structured response handling and
// notification feedback. It is DOM-agnostic; internal/ui/dom adapts it to the
// browser and internal/ui/headless to server-rendered pages fetched over HTTP.
package submit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Its-donkey/formwire/internal/ui/notify"
	"github.com/Its-donkey/formwire/internal/ui/schedule"
	"github.com/Its-donkey/formwire/logging"
)

const (
	// DefaultRedirectDelay leaves a success message readable before navigating.
	DefaultRedirectDelay = 1500 * time.Millisecond
	// DefaultCSRFHeader is the header the backend reads the token from.
	DefaultCSRFHeader = "X-CSRFToken"

	defaultMaxResponseBytes = 1 << 20
	logCategory             = "submit"
)

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Notifier renders feedback. *notify.Center satisfies it.
type Notifier interface {
	Notify(kind notify.Kind, text string) notify.Message
}

// Config holds the collaborators shared by every form on a page.
type Config struct {
	Client    Doer
	Notifier  Notifier
	Navigator Navigator
	Scheduler schedule.Scheduler
	CSRF      CSRFSource
	// CSRFHeader carries the token as a header; empty disables it.
	CSRFHeader string
	// CSRFField also carries the token as a body field when the form does
	// not already contain one; empty disables it.
	CSRFField     string
	RedirectDelay time.Duration
	Fallback      string
	// Prepare adjusts each outgoing request, e.g. fetch credential mode.
	Prepare          func(*http.Request)
	Logger           *logging.Logger
	MaxResponseBytes int64
}

// Controller creates bindings that share one Config.
type Controller struct {
	cfg Config
	log *logging.Logger
}

// New returns a Controller, filling unset Config fields with defaults.
func New(cfg Config) *Controller {
	if cfg.Client == nil {
		cfg.Client = http.DefaultClient
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = schedule.Real{}
	}
	if cfg.RedirectDelay == 0 {
		cfg.RedirectDelay = DefaultRedirectDelay
	}
	if strings.TrimSpace(cfg.Fallback) == "" {
		cfg.Fallback = DefaultFallbackMessage
	}
	if cfg.MaxResponseBytes <= 0 {
		cfg.MaxResponseBytes = defaultMaxResponseBytes
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Controller{cfg: cfg, log: logger}
}

// Response is handed to OnSuccess.
type Response struct {
	Result
	Action PendingAction
	FormID string
}

// Options configure one binding.
type Options struct {
	Validate Validator
	// BusyText replaces the trigger label while the request is in flight.
	BusyText string
	// IdleText restores the trigger label afterwards. When empty the label
	// captured at submit time is restored.
	IdleText  string
	OnSuccess func(Response)
	OnError   func(message string)
	// Endpoint overrides the form's action.
	Endpoint string
	// Notifier overrides the controller's notifier for this form.
	Notifier Notifier
}

// Binding is the handle returned by Bind.
type Binding struct {
	ctrl    *Controller
	form    Form
	opts    Options
	state   State
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.Mutex
	release func()
	unbound bool
}

// Bind registers a submit handler on form.
func (c *Controller) Bind(form Form, opts Options) (*Binding, error) {
	if form == nil {
		return nil, errors.New("submit: form is required")
	}
	b := &Binding{ctrl: c, form: form, opts: opts}
	release := form.OnSubmit(func(trigger Control) {
		_ = b.Submit(trigger)
	})
	b.mu.Lock()
	b.release = release
	b.mu.Unlock()
	c.log.Debug(logCategory, "form bound", map[string]any{"form": form.ID()})
	return b, nil
}

// Unbind removes the submit handler. In-flight requests still complete.
func (b *Binding) Unbind() {
	b.once.Do(func() {
		b.mu.Lock()
		b.unbound = true
		release := b.release
		b.release = nil
		b.mu.Unlock()
		if release != nil {
			release()
		}
		b.ctrl.log.Debug(logCategory, "form unbound", map[string]any{"form": b.form.ID()})
	})
}

// Wait blocks until every dispatched request has been handled.
func (b *Binding) Wait() {
	b.wg.Wait()
}

// State exposes the binding's in-flight guard.
func (b *Binding) State() *State {
	return &b.state
}

// Submit runs the submit sequence for trigger. It returns
// ErrDuplicateSubmission when a request is already in flight, the validation
// error when the form is rejected locally, or nil once the request has been
// dispatched. The outcome is delivered through notifications and hooks.
func (b *Binding) Submit(trigger Control) error {
	b.mu.Lock()
	unbound := b.unbound
	b.mu.Unlock()
	if unbound {
		return ErrUnbound
	}

	action := ActionOf(trigger)
	fields := map[string]any{"form": b.form.ID(), "action": action.String()}
	if !b.state.Begin(action.String()) {
		b.ctrl.log.Debug(logCategory, "duplicate submission dropped", fields)
		return ErrDuplicateSubmission
	}

	snap, err := b.form.Snapshot()
	if err != nil {
		b.state.End()
		failure := &TransportFailure{Err: fmt.Errorf("read form: %w", err)}
		b.ctrl.log.Error(logCategory, "form snapshot failed", failure, fields)
		b.reportFailure(failure)
		return failure
	}
	// The trigger's name/value replaces any same-named field so the action it
	// names is what validators and the server see.
	if !action.Empty() {
		snap = snap.With(action.Name, action.Value)
	}
	if b.opts.Validate != nil {
		if err := b.opts.Validate(snap); err != nil {
			var validation *ValidationError
			if !errors.As(err, &validation) {
				validation = &ValidationError{Message: err.Error()}
			}
			b.state.End()
			b.form.MarkValidated()
			b.ctrl.log.Info(logCategory, "submission blocked by validation", withField(fields, "reason", validation.Error()))
			b.reportFailure(validation)
			return validation
		}
	}

	idle := b.opts.IdleText
	if trigger != nil {
		if idle == "" {
			idle = trigger.Label()
		}
		trigger.SetDisabled(true)
		if b.opts.BusyText != "" {
			trigger.SetLabel(b.opts.BusyText)
		}
	}
	endpoint := b.opts.Endpoint
	if strings.TrimSpace(endpoint) == "" {
		endpoint = b.form.Action()
	}
	b.ctrl.log.Info(logCategory, "submission dispatched", withField(fields, "endpoint", endpoint))

	b.wg.Add(1)
	go b.run(trigger, idle, action, endpoint, snap)
	return nil
}

func (b *Binding) run(trigger Control, idle string, action PendingAction, endpoint string, snap Snapshot) {
	defer b.wg.Done()
	defer b.restore(trigger, idle)
	defer func() {
		if r := recover(); r != nil {
			b.ctrl.log.Error(logCategory, "submission handler panicked", fmt.Errorf("%v", r), map[string]any{"form": b.form.ID()})
			b.notifier().Notify(notify.Error, b.ctrl.cfg.Fallback)
		}
	}()

	res := b.ctrl.send(context.Background(), endpoint, snap)
	b.deliver(Response{Result: res, Action: action, FormID: b.form.ID()})
}

// restore returns the trigger and the guard to idle on every exit path.
func (b *Binding) restore(trigger Control, idle string) {
	if trigger != nil {
		trigger.SetDisabled(false)
		if idle != "" {
			trigger.SetLabel(idle)
		}
	}
	b.state.End()
}

func (b *Binding) deliver(resp Response) {
	fields := map[string]any{
		"form":    resp.FormID,
		"action":  resp.Action.String(),
		"status":  resp.Status,
		"outcome": resp.Outcome.String(),
	}
	switch resp.Outcome {
	case Success:
		b.ctrl.log.Info(logCategory, "submission succeeded", fields)
		b.notifier().Notify(notify.Success, resp.Message)
		// Navigation is only scheduled once the hook has returned; a panicking
		// hook leaves the user on the page with the fallback message.
		if b.opts.OnSuccess != nil {
			b.opts.OnSuccess(resp)
		}
		if resp.Redirect != "" {
			b.ctrl.navigateLater(resp.Redirect)
		}
	case Redirect:
		b.ctrl.log.Info(logCategory, "submission redirected", withField(fields, "redirect", resp.Redirect))
		if b.opts.OnSuccess != nil {
			b.opts.OnSuccess(resp)
		}
		b.ctrl.navigate(resp.Redirect)
	default:
		err := resp.Result.Error()
		b.ctrl.log.Error(logCategory, "submission failed", err, fields)
		b.reportFailure(err)
	}
}

func (b *Binding) reportFailure(err error) {
	message := UserMessage(err, b.ctrl.cfg.Fallback)
	b.notifier().Notify(notify.Error, message)
	if b.opts.OnError != nil {
		b.opts.OnError(message)
	}
}

func (b *Binding) notifier() Notifier {
	if b.opts.Notifier != nil {
		return b.opts.Notifier
	}
	if b.ctrl.cfg.Notifier != nil {
		return b.ctrl.cfg.Notifier
	}
	return discardNotifier{}
}

func (c *Controller) navigateLater(target string) {
	c.cfg.Scheduler.AfterFunc(c.cfg.RedirectDelay, func() {
		c.navigate(target)
	})
}

func (c *Controller) navigate(target string) {
	if c.cfg.Navigator == nil {
		c.log.Warn(logCategory, "no navigator configured", map[string]any{"target": target})
		return
	}
	c.cfg.Navigator.Navigate(target)
}

func (c *Controller) send(ctx context.Context, endpoint string, snap Snapshot) Result {
	if strings.TrimSpace(endpoint) == "" {
		return Transport(errors.New("form has no action"))
	}
	token := ""
	if c.cfg.CSRF != nil {
		token = c.cfg.CSRF.Token()
	}
	if token != "" && c.cfg.CSRFField != "" && !snap.Has(c.cfg.CSRFField) {
		snap = snap.With(c.cfg.CSRFField, token)
	}

	body, contentType, err := encodeBody(ctx, snap)
	if err != nil {
		return Transport(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return Transport(err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	if token != "" && c.cfg.CSRFHeader != "" {
		req.Header.Set(c.cfg.CSRFHeader, token)
	}
	if c.cfg.Prepare != nil {
		c.cfg.Prepare(req)
	}

	resp, err := c.cfg.Client.Do(req)
	if err != nil {
		return Transport(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxResponseBytes))
	if err != nil {
		return Transport(fmt.Errorf("read response: %w", err))
	}
	return ParseResponse(resp.StatusCode, data)
}

type discardNotifier struct{}

func (discardNotifier) Notify(notify.Kind, string) notify.Message { return notify.Message{} }

func withField(fields map[string]any, key string, value any) map[string]any {
	out := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out[key] = value
	return out
}
