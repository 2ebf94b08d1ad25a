package submit

import (
	"errors"
	"net/http"
	"testing"
)

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		outcome  Outcome
		message  string
		redirect string
	}{
		{name: "success string", status: 200, body: `{"success":"Login successful!"}`, outcome: Success, message: "Login successful!"},
		{name: "success with redirect", status: 200, body: `{"success":"X","redirect":"/r"}`, outcome: Success, message: "X", redirect: "/r"},
		{name: "success flag with message", status: 200, body: `{"success":true,"message":"Text analyzed"}`, outcome: Success, message: "Text analyzed"},
		{name: "error wins over success", status: 200, body: `{"success":"ok","error":"nope"}`, outcome: Failure, message: "nope"},
		{name: "error on 4xx", status: 401, body: `{"error":"Invalid username or password"}`, outcome: Failure, message: "Invalid username or password"},
		{name: "bare redirect", status: 200, body: `{"redirect":"/auth/login"}`, outcome: Redirect, redirect: "/auth/login"},
		{name: "success field on 5xx is not success", status: 500, body: `{"success":"ok"}`, outcome: Failure},
		{name: "html body", status: 200, body: `<html></html>`, outcome: Unparseable},
		{name: "html on 502", status: 502, body: `<html>bad gateway</html>`, outcome: Failure},
		{name: "empty object", status: 200, body: `{}`, outcome: Unparseable},
		{name: "broken json", status: 200, body: `{"success":`, outcome: Unparseable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ParseResponse(tt.status, []byte(tt.body))
			if res.Outcome != tt.outcome {
				t.Fatalf("outcome = %v, want %v", res.Outcome, tt.outcome)
			}
			if res.Message != tt.message {
				t.Fatalf("message = %q, want %q", res.Message, tt.message)
			}
			if res.Redirect != tt.redirect {
				t.Fatalf("redirect = %q, want %q", res.Redirect, tt.redirect)
			}
			if (res.Error() == nil) != (tt.outcome == Success || tt.outcome == Redirect) {
				t.Fatalf("unexpected error state %v", res.Error())
			}
		})
	}
}

func TestResultErrorTaxonomy(t *testing.T) {
	rejected := ParseResponse(http.StatusBadRequest, []byte(`{"error":"Passwords do not match"}`))
	var rejection *ServerRejection
	if !errors.As(rejected.Error(), &rejection) || rejection.Status != http.StatusBadRequest {
		t.Fatalf("expected server rejection, got %v", rejected.Error())
	}
	if msg := UserMessage(rejected.Error(), DefaultFallbackMessage); msg != "Passwords do not match" {
		t.Fatalf("unexpected user message %q", msg)
	}

	cause := errors.New("dial tcp: refused")
	failed := Transport(cause)
	var transport *TransportFailure
	if !errors.As(failed.Error(), &transport) || !errors.Is(failed.Error(), cause) {
		t.Fatalf("expected transport failure wrapping cause, got %v", failed.Error())
	}
	if msg := UserMessage(failed.Error(), DefaultFallbackMessage); msg != DefaultFallbackMessage {
		t.Fatalf("transport failures must use the fallback, got %q", msg)
	}

	garbled := ParseResponse(http.StatusOK, []byte("not json"))
	if !errors.As(garbled.Error(), &transport) {
		t.Fatalf("unparseable bodies should be transport failures, got %v", garbled.Error())
	}
	if msg := UserMessage(garbled.Error(), "custom"); msg != "custom" {
		t.Fatalf("expected custom fallback, got %q", msg)
	}
}

func TestValidators(t *testing.T) {
	snap := Snapshot{Valid: true, Fields: []Field{
		{Name: "reg_username", Value: "ada"},
		{Name: "reg_password", Value: "secret"},
		{Name: "confirm_password", Value: "secrte"},
	}}

	if err := Required("reg_username")(snap); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	var validation *ValidationError
	if err := Required("reg_email")(snap); !errors.As(err, &validation) || validation.Field != "reg_email" {
		t.Fatalf("expected missing reg_email, got %v", err)
	}
	err := All(Native(""), Match("reg_password", "confirm_password", "Passwords do not match"))(snap)
	if !errors.As(err, &validation) || validation.Message != "Passwords do not match" {
		t.Fatalf("expected mismatch, got %v", err)
	}
	snap.Valid = false
	if err := All(nil, Native("fix the form"))(snap); err == nil || UserMessage(err, "") != "fix the form" {
		t.Fatalf("expected native failure, got %v", err)
	}
}

func TestSnapshotWithReplacesSameNamedFields(t *testing.T) {
	snap := Snapshot{Fields: []Field{
		{Name: "action", Value: "verify_code"},
		{Name: "email", Value: "a@b.c"},
		{Name: "action", Value: "stale"},
	}}
	out := snap.With("action", "send_code")
	values := out.Values()
	if got := values["action"]; len(got) != 1 || got[0] != "send_code" {
		t.Fatalf("expected single action, got %v", got)
	}
	if len(snap.Fields) != 3 {
		t.Fatal("With must not modify the receiver")
	}
}

func TestActionOf(t *testing.T) {
	if a := ActionOf(nil); !a.Empty() {
		t.Fatalf("nil trigger should give empty action, got %+v", a)
	}
	if a := ActionOf(newButton("action", "delete_account", "Delete")); a.String() != "delete_account" {
		t.Fatalf("expected value for action-named trigger, got %q", a.String())
	}
	if a := ActionOf(newButton("send_code", "", "Send")); a.String() != "send_code" {
		t.Fatalf("expected name for other triggers, got %q", a.String())
	}
}

func TestForActionScopesValidation(t *testing.T) {
	v := ForAction("set_password", Match("new_password", "confirm_password", "Passwords do not match."))
	mismatch := []Field{{Name: "new_password", Value: "a"}, {Name: "confirm_password", Value: "b"}}

	sendCode := Snapshot{Fields: append([]Field{{Name: "action", Value: "send_code"}}, mismatch...)}
	if err := v(sendCode); err != nil {
		t.Fatalf("validator should not run for send_code: %v", err)
	}
	setPassword := Snapshot{Fields: append([]Field{{Name: "action", Value: "set_password"}}, mismatch...)}
	if err := v(setPassword); err == nil {
		t.Fatal("expected mismatch for set_password")
	}
}
