//go:build js && wasm

package wasm

import (
	"syscall/js"

	"github.com/Its-donkey/formwire/internal/ui/formspec"
	"github.com/Its-donkey/formwire/logging"
)

// RunApp binds every catalogued form present on the page and blocks forever.
func RunApp() {
	done := make(chan struct{})
	log := logging.New("ui-wasm", logging.INFO, logging.ConsoleWriter{})

	catalog, err := formspec.Default()
	if err != nil {
		log.Error(logCategory, "form catalog invalid", err, nil)
		js.Global().Get("console").Call("error", "form catalog invalid", err.Error())
		<-done
		return
	}

	a := newApp(catalog, log)
	a.initConnections()
	a.bindForms()
	a.bindLatestAnalysis()
	log.Info(logCategory, "forms bound", map[string]any{"count": len(Bindings)})

	onUnload := js.FuncOf(func(this js.Value, args []js.Value) any {
		Release()
		return nil
	})
	js.Global().Call("addEventListener", "pagehide", onUnload)
	<-done
}
