//go:build js && wasm

// Package dom adapts browser elements to the submit, notify and connections
// interfaces.
package dom

import (
	"errors"
	"net/http"
	"strings"
	"syscall/js"
)

// FetchCredentials is the fetch credential mode used for every request so the
// session and CSRF cookies travel with it.
const FetchCredentials = "same-origin"

var runtimeDocument js.Value

// Document returns the global browser document.
func Document() js.Value {
	if !runtimeDocument.Truthy() {
		runtimeDocument = js.Global().Get("document")
	}
	return runtimeDocument
}

// ByID returns the element with id, or an undefined value.
func ByID(id string) js.Value {
	id = strings.TrimSpace(id)
	if id == "" {
		return js.Undefined()
	}
	el := Document().Call("getElementById", id)
	if el.IsNull() {
		return js.Undefined()
	}
	return el
}

// Query returns the first element matching selector, or an undefined value.
func Query(selector string) js.Value {
	el := Document().Call("querySelector", selector)
	if el.IsNull() {
		return js.Undefined()
	}
	return el
}

// PrepareFetch sets the fetch credential mode on req.
func PrepareFetch(req *http.Request) {
	req.Header.Set("js.fetch:credentials", FetchCredentials)
}

// await blocks the calling goroutine until promise settles. It must not be
// called from a js.Func callback.
func await(promise js.Value) (js.Value, error) {
	resolved := make(chan js.Value, 1)
	rejected := make(chan js.Value, 1)
	onResolve := js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) > 0 {
			resolved <- args[0]
		} else {
			resolved <- js.Undefined()
		}
		return nil
	})
	defer onResolve.Release()
	onReject := js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) > 0 {
			rejected <- args[0]
		} else {
			rejected <- js.Undefined()
		}
		return nil
	})
	defer onReject.Release()

	promise.Call("then", onResolve, onReject)
	select {
	case v := <-resolved:
		return v, nil
	case reason := <-rejected:
		if reason.Truthy() {
			return js.Value{}, errors.New(reason.Call("toString").String())
		}
		return js.Value{}, errors.New("promise rejected")
	}
}

func setDisplay(el js.Value, visible bool) {
	if !el.Truthy() {
		return
	}
	if visible {
		el.Get("style").Set("display", "block")
		return
	}
	el.Get("style").Set("display", "none")
}
