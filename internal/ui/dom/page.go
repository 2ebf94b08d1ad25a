//go:build js && wasm

package dom

import (
	"strings"
	"syscall/js"
)

// Navigator moves the window to another location.
type Navigator struct{}

// Navigate implements submit.Navigator.
func (Navigator) Navigate(target string) {
	js.Global().Get("location").Set("href", target)
}

// CSRF reads the anti-forgery token from the page each time it is needed: a
// <meta> tag first, then a hidden input.
type CSRF struct {
	Meta  string
	Field string
}

// Token implements submit.CSRFSource.
func (c CSRF) Token() string {
	if c.Meta != "" {
		if meta := Query(`meta[name="` + c.Meta + `"]`); meta.Truthy() {
			if content := meta.Call("getAttribute", "content"); content.Type() == js.TypeString {
				if token := strings.TrimSpace(content.String()); token != "" {
					return token
				}
			}
		}
	}
	if c.Field != "" {
		if input := Query(`input[name="` + c.Field + `"]`); input.Truthy() {
			return strings.TrimSpace(input.Get("value").String())
		}
	}
	return ""
}
