// Package flows supplies per-form behaviour (validation, success handling,
// dependent views) as submit.Options so every form shares one controller.
package flows

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/Its-donkey/formwire/internal/ui/connections"
	"github.com/Its-donkey/formwire/internal/ui/formspec"
	"github.com/Its-donkey/formwire/internal/ui/submit"
	"github.com/Its-donkey/formwire/logging"
)

// Flow names used in the form catalog.
const (
	FlowLogin            = "login"
	FlowRegister         = "register"
	FlowResetPassword    = "reset_password"
	FlowProfile          = "profile"
	FlowUploadText       = "upload_text"
	FlowUploadFile       = "upload_file"
	FlowShare            = "share"
	FlowAddConnection    = "add_connection"
	FlowRemoveConnection = "remove_connection"
)

// Deps are the page collaborators a flow may use. Unset views disable the
// behaviour that needs them.
type Deps struct {
	// BaseURL prefixes the flows' own GET endpoints. Empty keeps them
	// relative to the page.
	BaseURL     string
	Notifier    submit.Notifier
	Client      submit.Doer
	Prepare     func(*http.Request)
	Connections *connections.List
	Code        CodeView
	History     HistoryView
	Logger      *logging.Logger
}

type builder func(formspec.Form, Deps) (submit.Options, error)

var registry = map[string]builder{
	FlowLogin:    func(formspec.Form, Deps) (submit.Options, error) { return Login(), nil },
	FlowRegister: func(formspec.Form, Deps) (submit.Options, error) { return Register(), nil },
	FlowResetPassword: func(_ formspec.Form, d Deps) (submit.Options, error) {
		return ResetPassword(d.Code), nil
	},
	FlowProfile: func(formspec.Form, Deps) (submit.Options, error) { return Profile(), nil },
	FlowUploadText: func(_ formspec.Form, d Deps) (submit.Options, error) {
		return UploadText(historyRefresher(d)), nil
	},
	FlowUploadFile: func(_ formspec.Form, d Deps) (submit.Options, error) {
		return UploadFile(historyRefresher(d)), nil
	},
	FlowShare: func(formspec.Form, Deps) (submit.Options, error) { return Share(), nil },
	FlowAddConnection: func(f formspec.Form, d Deps) (submit.Options, error) {
		if d.Connections == nil {
			return submit.Options{}, fmt.Errorf("flow %s for %s: connections list is not available", f.Flow, f.ID)
		}
		return AddConnection(d.Connections), nil
	},
	FlowRemoveConnection: func(f formspec.Form, d Deps) (submit.Options, error) {
		if d.Connections == nil {
			return submit.Options{}, fmt.Errorf("flow %s for %s: connections list is not available", f.Flow, f.ID)
		}
		return RemoveConnection(d.Connections), nil
	},
}

// Names lists the registered flows.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build returns the options for a catalog entry, with the entry's endpoint and
// button texts applied on top of the flow's own.
func Build(form formspec.Form, deps Deps) (submit.Options, error) {
	build, ok := registry[strings.TrimSpace(form.Flow)]
	if !ok {
		return submit.Options{}, fmt.Errorf("form %s: unknown flow %q", form.ID, form.Flow)
	}
	opts, err := build(form, deps)
	if err != nil {
		return submit.Options{}, err
	}
	if form.Endpoint != "" {
		opts.Endpoint = Resolve(deps.BaseURL, form.Endpoint)
	}
	if form.BusyText != "" {
		opts.BusyText = form.BusyText
	}
	if form.IdleText != "" {
		opts.IdleText = form.IdleText
	}
	if deps.Notifier != nil {
		opts.Notifier = deps.Notifier
	}
	return opts, nil
}

func historyRefresher(d Deps) *HistoryRefresher {
	if d.History == nil {
		return nil
	}
	return &HistoryRefresher{
		Client:   d.Client,
		View:     d.History,
		Endpoint: Resolve(d.BaseURL, UploadListEndpoint),
		Prepare:  d.Prepare,
		Logger:   d.Logger,
	}
}

// Resolve joins path onto base. An empty base returns path unchanged.
func Resolve(base, path string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return path
	}
	ref, err := url.Parse(path)
	if err != nil {
		return path
	}
	root, err := url.Parse(base)
	if err != nil {
		return path
	}
	return root.ResolveReference(ref).String()
}
