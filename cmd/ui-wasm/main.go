//go:build js && wasm

package main

import "github.com/Its-donkey/formwire/internal/ui/wasm"

func main() {
	wasm.RunApp()
}
