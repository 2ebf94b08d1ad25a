//go:build js && wasm

package wasm

import (
	"context"
	"net/http"

	"github.com/Its-donkey/formwire/internal/ui/connections"
	"github.com/Its-donkey/formwire/internal/ui/dom"
	"github.com/Its-donkey/formwire/internal/ui/flows"
	"github.com/Its-donkey/formwire/internal/ui/formspec"
	"github.com/Its-donkey/formwire/internal/ui/notify"
	"github.com/Its-donkey/formwire/internal/ui/schedule"
	"github.com/Its-donkey/formwire/internal/ui/submit"
	"github.com/Its-donkey/formwire/logging"
)

const logCategory = "app"

var (
	// Bindings holds every bound form so handlers can be released later.
	Bindings []*submit.Binding
	// Releases undo the listeners registered outside the controller.
	Releases []func()
)

type app struct {
	catalog *formspec.Catalog
	log     *logging.Logger
	client  *http.Client
	ctrl    *submit.Controller
	list    *connections.List
	hub     *notify.Hub
}

func newApp(catalog *formspec.Catalog, log *logging.Logger) *app {
	client := &http.Client{}
	a := &app{catalog: catalog, log: log, client: client}
	a.hub = notify.NewHub(func(id string) (notify.Region, bool) {
		region, ok := dom.NewRegion(id)
		if !ok {
			return nil, false
		}
		return region, true
	}, notify.WithTTL(catalog.NotificationTTL.Std()))
	a.ctrl = submit.New(submit.Config{
		Client:        client,
		Navigator:     dom.Navigator{},
		Scheduler:     schedule.Real{},
		CSRF:          dom.CSRF{Meta: catalog.CSRF.Meta, Field: catalog.CSRF.Field},
		CSRFHeader:    catalog.CSRF.Header,
		CSRFField:     catalog.CSRF.Field,
		RedirectDelay: catalog.RedirectDelay.Std(),
		Fallback:      catalog.FallbackMessage,
		Prepare:       dom.PrepareFetch,
		Logger:        log,
	})
	return a
}

// notifier returns the center for a region. Forms rendering into the same
// element share its Region.
func (a *app) notifier(regionID string, exclusive bool) submit.Notifier {
	c, ok := a.hub.Center(regionID, exclusive)
	if !ok {
		a.log.Warn(logCategory, "notification region missing", map[string]any{"region": regionID})
		return nil
	}
	return c
}

func (a *app) initConnections() {
	view, ok := dom.NewListView(a.catalog.Connections.List)
	if !ok {
		return
	}
	var selectors []connections.SelectorView
	for _, id := range a.catalog.Connections.Selectors {
		if sel, ok := dom.NewSelector(id); ok {
			selectors = append(selectors, sel)
		}
	}
	a.list = connections.New(view, selectors...)
}

func (a *app) bindForms() {
	for _, spec := range a.catalog.Forms {
		form, ok := dom.NewForm(dom.ByID(spec.ID))
		if !ok {
			continue
		}
		deps := flows.Deps{
			Notifier:    a.notifier(a.catalog.RegionFor(spec), spec.Exclusive),
			Client:      a.client,
			Prepare:     dom.PrepareFetch,
			Connections: a.list,
			Logger:      a.log,
		}
		if id := spec.Target("history"); id != "" {
			deps.History = dom.HistoryView{List: dom.ByID(id), Loading: dom.ByID("loadingHistory")}
		}
		if spec.Flow == flows.FlowResetPassword {
			deps.Code = dom.CodeView{
				Container: dom.ByID(spec.Target("code_container")),
				Input:     dom.ByID(spec.Target("code")),
				Section:   dom.Query("." + spec.Target("verification_section")),
			}
		}
		if text := spec.Target("text"); text != "" {
			Releases = append(Releases, dom.BindWordCount(dom.ByID(text), dom.ByID(spec.Target("word_count"))))
		}

		opts, err := flows.Build(spec, deps)
		if err != nil {
			a.log.Error(logCategory, "form flow unavailable", err, map[string]any{"form": spec.ID})
			continue
		}
		binding, err := a.ctrl.Bind(form, opts)
		if err != nil {
			a.log.Error(logCategory, "form bind failed", err, map[string]any{"form": spec.ID})
			continue
		}
		Bindings = append(Bindings, binding)
		if deps.History != nil {
			refresher := &flows.HistoryRefresher{Client: a.client, View: deps.History, Endpoint: flows.UploadListEndpoint, Prepare: dom.PrepareFetch, Logger: a.log}
			go func() { _ = refresher.Refresh(context.Background()) }()
		}
	}
}

func (a *app) bindLatestAnalysis() {
	button := dom.Query(".nav-analysis")
	if !button.Truthy() {
		return
	}
	latest := &flows.LatestAnalysis{Client: a.client, Navigator: dom.Navigator{}, Prepare: dom.PrepareFetch, Logger: a.log}
	Releases = append(Releases, dom.BindClick(button, func() {
		classes := button.Get("classList")
		classes.Call("add", "disabled")
		defer classes.Call("remove", "disabled")
		_, _ = latest.Open(context.Background())
	}))
}

// Release unbinds every form and listener.
func Release() {
	for _, b := range Bindings {
		b.Unbind()
	}
	Bindings = nil
	for _, release := range Releases {
		release()
	}
	Releases = nil
}
