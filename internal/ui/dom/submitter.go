package dom

import "strings"

type submitterSource int

const (
	sourceNone submitterSource = iota
	sourceEvent
	sourceFocus
	sourceFirst
)

// pickSubmitter decides where the submitting control comes from. The event's
// submitter wins; browsers without it leave the clicked button focused, so a
// focused submit control of the form comes next, then the form's first one.
func pickSubmitter(hasEventSubmitter, focusedSubmit, hasFirst bool) submitterSource {
	switch {
	case hasEventSubmitter:
		return sourceEvent
	case focusedSubmit:
		return sourceFocus
	case hasFirst:
		return sourceFirst
	default:
		return sourceNone
	}
}

// isSubmitControl reports whether an element with tagName and type attribute
// submits its form.
func isSubmitControl(tagName, kind string) bool {
	kind = strings.ToLower(strings.TrimSpace(kind))
	switch strings.ToLower(tagName) {
	case "button":
		return kind == "" || kind == "submit"
	case "input":
		return kind == "submit" || kind == "image"
	}
	return false
}
