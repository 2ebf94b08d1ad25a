//go:build js && wasm

package logging

import (
	"strings"
	"syscall/js"
)

// ConsoleWriter forwards log lines to the browser console.
type ConsoleWriter struct{}

// Write implements io.Writer.
func (ConsoleWriter) Write(p []byte) (int, error) {
	console := js.Global().Get("console")
	if !console.Truthy() {
		return len(p), nil
	}
	line := strings.TrimRight(string(p), "\n")
	method := "log"
	switch {
	case strings.Contains(line, `"level":"ERROR"`):
		method = "error"
	case strings.Contains(line, `"level":"WARN"`):
		method = "warn"
	}
	console.Call(method, line)
	return len(p), nil
}
