package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Its-donkey/formwire/internal/ui/connections"
	"github.com/Its-donkey/formwire/internal/ui/flows"
	"github.com/Its-donkey/formwire/internal/ui/headless"
	"github.com/Its-donkey/formwire/internal/ui/model"
	"github.com/Its-donkey/formwire/internal/ui/notify"
	"github.com/Its-donkey/formwire/internal/ui/schedule"
	"github.com/Its-donkey/formwire/internal/ui/submit"
)

// errSubmissionFailed marks a submission the server or transport rejected.
// Its message has already been printed as a notification.
var errSubmissionFailed = errors.New("submission failed")

type submitOptions struct {
	*rootOptions
	page    string
	form    string
	set     []string
	attach  []string
	trigger string
}

func newSubmitCmd(root *rootOptions) *cobra.Command {
	opts := &submitOptions{rootOptions: root}
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Fill and submit a form on a page",
		Long: `Fetches --page, fills the form named by --form and submits it.

The form's flow comes from the catalog, so validation, button texts and
success handling match the browser. Notifications are printed as they
appear; a redirect is printed once its delay has elapsed.

Examples:
  formctl submit --page http://localhost:8080/login --form loginForm \
    --set username=ada --set password=secret
  formctl submit --page http://localhost:8080/forgot-password \
    --form forgotPasswordForm --set email=ada@example.com --trigger action=send_code
  formctl submit --page http://localhost:8080/upload --form fileUploadForm \
    --attach file=./notes.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSubmit(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.page, "page", "", "URL of the page that renders the form")
	cmd.Flags().StringVar(&opts.form, "form", "", "Form id as listed by `formctl forms`")
	cmd.Flags().StringArrayVar(&opts.set, "set", nil, "Field value as name=value (repeatable)")
	cmd.Flags().StringArrayVar(&opts.attach, "attach", nil, "File field as name=path (repeatable)")
	cmd.Flags().StringVar(&opts.trigger, "trigger", "", "Submit button as name=value, or name (default: first submit button)")
	_ = cmd.MarkFlagRequired("page")
	_ = cmd.MarkFlagRequired("form")
	return cmd
}

func runSubmit(ctx context.Context, stdout, stderr io.Writer, opts *submitOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	log := opts.logger(stderr)
	catalog, err := opts.loadCatalog()
	if err != nil {
		return err
	}
	spec, ok := catalog.Lookup(opts.form)
	if !ok {
		return fmt.Errorf("form %q is not in the catalog", opts.form)
	}

	client, err := headless.NewClient(opts.timeout)
	if err != nil {
		return err
	}
	page, err := headless.Fetch(ctx, client, opts.page)
	if err != nil {
		return err
	}
	form, err := page.Form(spec.ID)
	if err != nil {
		return err
	}
	if err := fill(form, opts.set, opts.attach); err != nil {
		return err
	}
	button, err := pickTrigger(form, opts.trigger)
	if err != nil {
		return err
	}

	clock := schedule.NewManual()
	centerOpts := []notify.Option{notify.WithScheduler(clock), notify.WithTTL(catalog.NotificationTTL.Std())}
	if spec.Exclusive {
		centerOpts = append(centerOpts, notify.Exclusive())
	}
	center := notify.New(headless.NewWriterRegion(stdout), centerOpts...)

	var target string
	ctrl := submit.New(submit.Config{
		Client:        client,
		Notifier:      center,
		Navigator:     submit.NavigatorFunc(func(t string) { target = t }),
		Scheduler:     clock,
		CSRF:          page.CSRF(catalog.CSRF.Meta, catalog.CSRF.Field),
		CSRFHeader:    catalog.CSRF.Header,
		CSRFField:     catalog.CSRF.Field,
		RedirectDelay: catalog.RedirectDelay.Std(),
		Fallback:      catalog.FallbackMessage,
		Logger:        log,
	})

	list := connections.New(connections.NewMemoryView())
	deps := flows.Deps{
		BaseURL:     page.URL.String(),
		Client:      client,
		Connections: list,
		Code:        codePrinter{w: stdout},
		History:     historyPrinter{w: stdout},
		Logger:      log,
	}
	built, err := flows.Build(spec, deps)
	if err != nil {
		return err
	}
	var failed bool
	built.OnError = func(string) { failed = true }

	binding, err := ctrl.Bind(form, built)
	if err != nil {
		return err
	}
	defer binding.Unbind()

	var trigger submit.Control
	if button != nil {
		trigger = button
	}
	if err := binding.Submit(trigger); err != nil {
		var validation *submit.ValidationError
		if errors.As(err, &validation) {
			return fmt.Errorf("form %s not submitted: %w", spec.ID, err)
		}
		return err
	}
	binding.Wait()

	// Let the redirect delay and notification timers elapse.
	clock.RunAll()
	for _, e := range list.Entries() {
		fmt.Fprintf(stdout, "connection %s %s\n", e.ID, e.Label)
	}
	if target != "" {
		fmt.Fprintf(stdout, "redirect %s\n", page.Resolve(target))
	}
	if failed {
		return errSubmissionFailed
	}
	return nil
}

func fill(form *headless.Form, set, attach []string) error {
	for _, kv := range set {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return fmt.Errorf("--set %q: expected name=value", kv)
		}
		form.Set(name, value)
	}
	for _, kv := range attach {
		name, path, ok := strings.Cut(kv, "=")
		if !ok || name == "" || path == "" {
			return fmt.Errorf("--attach %q: expected name=path", kv)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		contentType := mime.TypeByExtension(filepath.Ext(path))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		form.Attach(name, filepath.Base(path), contentType, data)
	}
	return nil
}

func pickTrigger(form *headless.Form, trigger string) (*headless.Button, error) {
	name, value, _ := strings.Cut(trigger, "=")
	button, err := form.Button(name, value)
	if err != nil && trigger == "" {
		// Forms without a submit button are submitted with no trigger.
		return nil, nil
	}
	return button, err
}

type codePrinter struct{ w io.Writer }

func (p codePrinter) ShowCode(code string) { fmt.Fprintf(p.w, "verification code %s\n", code) }

func (p codePrinter) RevealVerification() {}

type historyPrinter struct{ w io.Writer }

func (p historyPrinter) ShowUploads(uploads []model.Upload) {
	for _, u := range uploads {
		fmt.Fprintf(p.w, "upload %s %s %s\n", u.ID, u.Filename, u.CreatedAt)
	}
}

func (p historyPrinter) ShowHistoryError(message string) {
	fmt.Fprintf(p.w, "history: %s\n", message)
}
