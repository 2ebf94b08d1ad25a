package submit

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/Its-donkey/formwire/internal/ui/notify"
	"github.com/Its-donkey/formwire/internal/ui/schedule"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type harness struct {
	ctrl   *Controller
	region *notify.MemoryRegion
	clock  *schedule.Manual
	navMu  sync.Mutex
	navs   []string
}

func newHarness(doer Doer, mutate func(*Config)) *harness {
	h := &harness{region: &notify.MemoryRegion{}, clock: schedule.NewManual()}
	cfg := Config{
		Client:    doer,
		Notifier:  notify.New(h.region, notify.WithScheduler(h.clock)),
		Scheduler: h.clock,
		Navigator: NavigatorFunc(func(target string) {
			h.navMu.Lock()
			defer h.navMu.Unlock()
			h.navs = append(h.navs, target)
		}),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	h.ctrl = New(cfg)
	return h
}

func (h *harness) navigations() []string {
	h.navMu.Lock()
	defer h.navMu.Unlock()
	return append([]string(nil), h.navs...)
}

func TestDoubleSubmitWhileInFlightSendsOneRequest(t *testing.T) {
	doer := &recordingDoer{gate: make(chan struct{}), started: make(chan struct{}, 1), body: `{"success":"Login successful!"}`}
	h := newHarness(doer, nil)
	form := newForm("loginForm", "/auth/login", Field{Name: "username", Value: "ada"})
	binding, err := h.ctrl.Bind(form, Options{BusyText: "Signing in..."})
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	button := newButton("", "", "Sign In")

	form.fire(button)
	<-doer.started
	if !binding.State().InFlight() {
		t.Fatal("expected binding to be in flight")
	}
	form.fire(button)
	if err := binding.Submit(button); !errors.Is(err, ErrDuplicateSubmission) {
		t.Fatalf("expected duplicate submission error, got %v", err)
	}

	close(doer.gate)
	binding.Wait()

	if got := doer.count.Load(); got != 1 {
		t.Fatalf("expected exactly one request, got %d", got)
	}
	if button.Disabled() || button.Label() != "Sign In" {
		t.Fatalf("expected idle button, disabled=%v label=%q", button.Disabled(), button.Label())
	}
	if binding.State().InFlight() {
		t.Fatal("expected in-flight flag to reset")
	}
}

func TestSuccessMessageShownBeforeDeferredRedirect(t *testing.T) {
	doer := &recordingDoer{body: `{"success":"X","redirect":"/r"}`}
	h := newHarness(doer, nil)
	form := newForm("loginForm", "/auth/login")
	var hooked Response
	binding, _ := h.ctrl.Bind(form, Options{OnSuccess: func(r Response) { hooked = r }})

	if err := binding.Submit(newButton("", "", "Sign In")); err != nil {
		t.Fatalf("submit: %v", err)
	}
	binding.Wait()

	if texts := h.region.Texts(); len(texts) != 1 || texts[0] != "X" {
		t.Fatalf("expected success message X, got %v", texts)
	}
	if hooked.Outcome != Success || hooked.Redirect != "/r" {
		t.Fatalf("unexpected hook payload %+v", hooked)
	}
	if navs := h.navigations(); len(navs) != 0 {
		t.Fatalf("navigated before delay: %v", navs)
	}
	h.clock.Advance(DefaultRedirectDelay - time.Millisecond)
	if navs := h.navigations(); len(navs) != 0 {
		t.Fatalf("navigated before delay elapsed: %v", navs)
	}
	h.clock.Advance(time.Millisecond)
	if navs := h.navigations(); len(navs) != 1 || navs[0] != "/r" {
		t.Fatalf("expected navigation to /r, got %v", navs)
	}
}

func TestErrorResponseRestoresTrigger(t *testing.T) {
	doer := &recordingDoer{status: http.StatusUnauthorized, body: `{"error":"Y"}`}
	h := newHarness(doer, nil)
	form := newForm("loginForm", "/auth/login")
	var onError []string
	binding, _ := h.ctrl.Bind(form, Options{
		BusyText: "Signing in...",
		IdleText: "Sign In",
		OnError:  func(msg string) { onError = append(onError, msg) },
	})
	button := newButton("", "", "Sign In")

	if err := binding.Submit(button); err != nil {
		t.Fatalf("submit: %v", err)
	}
	binding.Wait()

	if len(onError) != 1 || onError[0] != "Y" {
		t.Fatalf("expected OnError(Y), got %v", onError)
	}
	if texts := h.region.Texts(); len(texts) != 1 || texts[0] != "Y" {
		t.Fatalf("expected error notification Y, got %v", texts)
	}
	history := button.History()
	if len(history) != 2 || history[0] != "Signing in..." || history[1] != "Sign In" {
		t.Fatalf("unexpected label history %v", history)
	}
	if button.Disabled() || binding.State().InFlight() {
		t.Fatal("expected trigger and state to be idle")
	}
	if len(h.navigations()) != 0 {
		t.Fatal("error response must not navigate")
	}
}

func TestTransportFailureUsesFallbackAndRestores(t *testing.T) {
	doer := &recordingDoer{err: errors.New("connection refused")}
	h := newHarness(doer, nil)
	form := newForm("registerForm", "/auth/register")
	var onError []string
	binding, _ := h.ctrl.Bind(form, Options{
		BusyText: "Creating Account...",
		OnError:  func(msg string) { onError = append(onError, msg) },
	})
	button := newButton("", "", "Create Account")

	_ = binding.Submit(button)
	binding.Wait()

	if len(onError) != 1 || onError[0] != DefaultFallbackMessage {
		t.Fatalf("expected fallback message, got %v", onError)
	}
	if texts := h.region.Texts(); len(texts) != 1 || texts[0] != DefaultFallbackMessage {
		t.Fatalf("expected fallback notification, got %v", texts)
	}
	if button.Disabled() || button.Label() != "Create Account" {
		t.Fatalf("expected restored button, got disabled=%v label=%q", button.Disabled(), button.Label())
	}
	if binding.State().InFlight() {
		t.Fatal("expected state to reset")
	}
}

func TestValidationGateNeverSends(t *testing.T) {
	doer := &recordingDoer{body: `{"success":"ok"}`}
	h := newHarness(doer, nil)
	form := newForm("uploadForm", "/upload/text", Field{Name: "content", Value: "  "})
	var onError []string
	binding, _ := h.ctrl.Bind(form, Options{
		Validate: Required("content"),
		OnError:  func(msg string) { onError = append(onError, msg) },
	})
	button := newButton("", "", "Analyze")

	for i := 0; i < 5; i++ {
		err := binding.Submit(button)
		var validation *ValidationError
		if !errors.As(err, &validation) || validation.Field != "content" {
			t.Fatalf("attempt %d: expected validation error, got %v", i, err)
		}
	}
	form.fire(button)
	binding.Wait()

	if got := doer.count.Load(); got != 0 {
		t.Fatalf("expected no requests, got %d", got)
	}
	if form.validated != 6 {
		t.Fatalf("expected form to be marked validated on every attempt, got %d", form.validated)
	}
	if len(button.History()) != 0 || button.Disabled() {
		t.Fatal("validation failure must not touch the trigger")
	}
	if len(onError) != 6 {
		t.Fatalf("expected OnError per attempt, got %d", len(onError))
	}
}

func TestNativeValidityBlocksSubmission(t *testing.T) {
	doer := &recordingDoer{body: `{"success":"ok"}`}
	h := newHarness(doer, nil)
	form := newForm("loginForm", "/auth/login")
	form.snapshot.Valid = false
	binding, _ := h.ctrl.Bind(form, Options{Validate: Native("")})
	if err := binding.Submit(nil); err == nil {
		t.Fatal("expected native validation to fail")
	}
	if doer.count.Load() != 0 {
		t.Fatal("request sent for invalid form")
	}
}

func TestTriggerIdentityAndCSRFAreSent(t *testing.T) {
	doer := &recordingDoer{body: `{"success":"Verification code: 123456"}`}
	h := newHarness(doer, func(cfg *Config) {
		cfg.CSRF = StaticToken("tok-1")
		cfg.CSRFHeader = DefaultCSRFHeader
		cfg.CSRFField = "csrf_token"
	})
	form := newForm("forgotPasswordForm", "/auth/reset-password",
		Field{Name: "email", Value: "ada@example.com"},
		Field{Name: "action", Value: "verify_code"},
	)
	var got Response
	binding, _ := h.ctrl.Bind(form, Options{OnSuccess: func(r Response) { got = r }})

	_ = binding.Submit(newButton("action", "send_code", "Send Code"))
	binding.Wait()

	req, body := doer.lastRequest()
	if req == nil {
		t.Fatal("expected a request")
	}
	if req.Method != http.MethodPost || req.URL.Path != "/auth/reset-password" {
		t.Fatalf("unexpected request %s %s", req.Method, req.URL)
	}
	if req.Header.Get("X-CSRFToken") != "tok-1" || req.Header.Get("X-Requested-With") != "XMLHttpRequest" {
		t.Fatalf("missing headers: %v", req.Header)
	}
	values, err := url.ParseQuery(string(body))
	if err != nil {
		t.Fatalf("parse body: %v", err)
	}
	if actions := values["action"]; len(actions) != 1 || actions[0] != "send_code" {
		t.Fatalf("expected trigger action to win, got %v", actions)
	}
	if values.Get("csrf_token") != "tok-1" || values.Get("email") != "ada@example.com" {
		t.Fatalf("unexpected body %v", values)
	}
	if got.Action.String() != "send_code" {
		t.Fatalf("expected pending action send_code, got %q", got.Action.String())
	}
	if last, ok := binding.State().LastAction(); !ok || last != "send_code" {
		t.Fatalf("expected last action send_code, got %q", last)
	}
}

func TestFileFieldsAreSentAsMultipart(t *testing.T) {
	doer := &recordingDoer{body: `{"success":true,"message":"File uploaded"}`}
	h := newHarness(doer, nil)
	form := newForm("fileUploadForm", "/upload/file",
		Field{Name: "title", Value: "Morning news"},
		Field{Name: "file", File: &FileRef{
			Filename:    "news.txt",
			ContentType: "text/plain",
			Open: func(context.Context) ([]byte, error) {
				return []byte("markets rallied"), nil
			},
		}},
	)
	binding, _ := h.ctrl.Bind(form, Options{})
	_ = binding.Submit(nil)
	binding.Wait()

	req, body := doer.lastRequest()
	mediaType, params, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		t.Fatalf("expected multipart body, got %q (%v)", req.Header.Get("Content-Type"), err)
	}
	reader := multipart.NewReader(bytes.NewReader(body), params["boundary"])
	parsed, err := reader.ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("read multipart: %v", err)
	}
	defer parsed.RemoveAll()
	if parsed.Value["title"][0] != "Morning news" {
		t.Fatalf("unexpected title %v", parsed.Value["title"])
	}
	fh := parsed.File["file"][0]
	f, _ := fh.Open()
	content, _ := io.ReadAll(f)
	f.Close()
	if fh.Filename != "news.txt" || string(content) != "markets rallied" {
		t.Fatalf("unexpected file %s %q", fh.Filename, content)
	}
	if texts := h.region.Texts(); len(texts) != 1 || texts[0] != "File uploaded" {
		t.Fatalf("expected message field to be shown, got %v", texts)
	}
}

func TestUnparseableResponseIsGenericError(t *testing.T) {
	doer := &recordingDoer{body: "<html>Internal page</html>"}
	h := newHarness(doer, nil)
	form := newForm("shareForm", "/share/submit")
	var onError []string
	binding, _ := h.ctrl.Bind(form, Options{OnError: func(m string) { onError = append(onError, m) }})
	_ = binding.Submit(nil)
	binding.Wait()
	if len(onError) != 1 || onError[0] != DefaultFallbackMessage {
		t.Fatalf("expected fallback for unparseable body, got %v", onError)
	}
}

func TestBareRedirectNavigatesImmediately(t *testing.T) {
	doer := &recordingDoer{body: `{"redirect":"/auth/set-new-password"}`}
	h := newHarness(doer, nil)
	binding, _ := h.ctrl.Bind(newForm("f", "/auth/reset-password"), Options{})
	_ = binding.Submit(nil)
	binding.Wait()
	if navs := h.navigations(); len(navs) != 1 || navs[0] != "/auth/set-new-password" {
		t.Fatalf("expected immediate navigation, got %v", navs)
	}
	if len(h.region.Texts()) != 0 {
		t.Fatalf("bare redirect should not notify, got %v", h.region.Texts())
	}
}

func TestPanickingHookStillRestoresIdleState(t *testing.T) {
	doer := &recordingDoer{body: `{"success":"ok"}`}
	h := newHarness(doer, nil)
	binding, _ := h.ctrl.Bind(newForm("f", "/x"), Options{
		BusyText:  "Working...",
		OnSuccess: func(Response) { panic("hook exploded") },
	})
	button := newButton("", "", "Go")
	_ = binding.Submit(button)
	binding.Wait()
	if button.Disabled() || button.Label() != "Go" || binding.State().InFlight() {
		t.Fatal("expected idle state after panic")
	}
	texts := h.region.Texts()
	if len(texts) != 2 || texts[1] != DefaultFallbackMessage {
		t.Fatalf("expected success then fallback notifications, got %v", texts)
	}
}

func TestPanickingHookCancelsRedirect(t *testing.T) {
	for _, body := range []string{`{"success":"Saved","redirect":"/r"}`, `{"redirect":"/r"}`} {
		doer := &recordingDoer{body: body}
		h := newHarness(doer, nil)
		binding, _ := h.ctrl.Bind(newForm("f", "/x"), Options{
			OnSuccess: func(Response) { panic("hook exploded") },
		})
		_ = binding.Submit(newButton("", "", "Go"))
		binding.Wait()

		texts := h.region.Texts()
		if len(texts) == 0 || texts[len(texts)-1] != DefaultFallbackMessage {
			t.Fatalf("%s: expected fallback notification last, got %v", body, texts)
		}
		h.clock.RunAll()
		if navs := h.navigations(); len(navs) != 0 {
			t.Fatalf("%s: expected no navigation after a panicking hook, got %v", body, navs)
		}
	}
}

func TestUnbindReleasesHandler(t *testing.T) {
	doer := &recordingDoer{body: `{"success":"ok"}`}
	h := newHarness(doer, nil)
	form := newForm("f", "/x")
	binding, _ := h.ctrl.Bind(form, Options{})
	binding.Unbind()
	binding.Unbind()

	if !form.released {
		t.Fatal("expected handler release")
	}
	form.fire(nil)
	if err := binding.Submit(nil); !errors.Is(err, ErrUnbound) {
		t.Fatalf("expected ErrUnbound, got %v", err)
	}
	if doer.count.Load() != 0 {
		t.Fatal("unbound binding sent a request")
	}
}

func TestBindingsAreIndependent(t *testing.T) {
	blocked := &recordingDoer{gate: make(chan struct{}), started: make(chan struct{}, 1), body: `{"success":"one"}`}
	h := newHarness(blocked, nil)
	first, _ := h.ctrl.Bind(newForm("first", "/a"), Options{})
	second, _ := h.ctrl.Bind(newForm("second", "/b"), Options{})

	_ = first.Submit(nil)
	<-blocked.started
	go func() { <-blocked.started }()
	if err := second.Submit(nil); err != nil {
		t.Fatalf("second form should not be blocked by the first: %v", err)
	}
	close(blocked.gate)
	first.Wait()
	second.Wait()
	if blocked.count.Load() != 2 {
		t.Fatalf("expected two requests, got %d", blocked.count.Load())
	}
}

func TestControllerAgainstHTTPServer(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		if r.Header.Get("X-CSRFToken") != "page-token" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"The CSRF token is missing."}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":"Username updated successfully!"}`))
	}))
	defer srv.Close()

	h := newHarness(srv.Client(), func(cfg *Config) {
		cfg.CSRF = StaticToken("page-token")
		cfg.CSRFHeader = DefaultCSRFHeader
	})
	form := newForm("profileForm", srv.URL+"/auth/profile", Field{Name: "username", Value: "ada"})
	binding, _ := h.ctrl.Bind(form, Options{BusyText: "Saving..."})
	button := newButton("action", "update_username", "Save")

	_ = binding.Submit(button)
	for i := 0; i < 3; i++ {
		form.fire(button)
	}
	close(release)
	binding.Wait()

	if hits.Load() != 1 {
		t.Fatalf("expected one request to reach the server, got %d", hits.Load())
	}
	if texts := h.region.Texts(); len(texts) != 1 || texts[0] != "Username updated successfully!" {
		t.Fatalf("unexpected notifications %v", texts)
	}
}
