package dom

import "testing"

func TestPickSubmitter(t *testing.T) {
	cases := []struct {
		name                  string
		event, focused, first bool
		want                  submitterSource
	}{
		{"event submitter wins", true, true, true, sourceEvent},
		{"focused button when event has none", false, true, true, sourceFocus},
		{"first button as last resort", false, false, true, sourceFirst},
		{"no control at all", false, false, false, sourceNone},
	}
	for _, tc := range cases {
		if got := pickSubmitter(tc.event, tc.focused, tc.first); got != tc.want {
			t.Fatalf("%s: want %d got %d", tc.name, tc.want, got)
		}
	}
}

func TestIsSubmitControl(t *testing.T) {
	cases := []struct {
		tag, kind string
		want      bool
	}{
		{"BUTTON", "submit", true},
		{"BUTTON", "", true},
		{"BUTTON", "button", false},
		{"INPUT", "submit", true},
		{"INPUT", "text", false},
		{"TEXTAREA", "", false},
	}
	for _, tc := range cases {
		if got := isSubmitControl(tc.tag, tc.kind); got != tc.want {
			t.Fatalf("isSubmitControl(%q, %q): want %v got %v", tc.tag, tc.kind, tc.want, got)
		}
	}
}
