package model

import (
	"encoding/json"
	"testing"
)

func TestPayloadDecodesMessageAndFlagIndicators(t *testing.T) {
	cases := []struct {
		name        string
		body        string
		wantSuccess bool
		wantError   bool
		successText string
		errorText   string
	}{
		{name: "login message", body: `{"success":"Login successful!","redirect":"/home"}`, wantSuccess: true, successText: "Login successful!"},
		{name: "upload flag", body: `{"success":true,"message":"Uploaded 1 file"}`, wantSuccess: true, successText: "Uploaded 1 file"},
		{name: "error message", body: `{"error":"Invalid username or password"}`, wantError: true, errorText: "Invalid username or password"},
		{name: "error flag with message", body: `{"success":false,"error":true,"message":"No file selected"}`, wantError: true, errorText: "No file selected"},
		{name: "blank success", body: `{"success":""}`},
		{name: "null fields", body: `{"success":null,"error":null}`},
	}
	for _, tc := range cases {
		var p Payload
		if err := json.Unmarshal([]byte(tc.body), &p); err != nil {
			t.Fatalf("%s: decode: %v", tc.name, err)
		}
		if p.Success.Set != tc.wantSuccess || p.Error.Set != tc.wantError {
			t.Fatalf("%s: unexpected indicators %+v / %+v", tc.name, p.Success, p.Error)
		}
		if tc.wantSuccess && p.SuccessText() != tc.successText {
			t.Fatalf("%s: success text %q", tc.name, p.SuccessText())
		}
		if tc.wantError && p.ErrorText() != tc.errorText {
			t.Fatalf("%s: error text %q", tc.name, p.ErrorText())
		}
	}
}

func TestIDAcceptsNumbersAndStrings(t *testing.T) {
	var p Payload
	body := `{"success":true,"user":{"id":42,"username":"ada"},"users":[{"id":"7","username":"bob"}]}`
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.User == nil || p.User.ID != "42" {
		t.Fatalf("expected numeric id to decode, got %+v", p.User)
	}
	if len(p.Users) != 1 || p.Users[0].ID != "7" {
		t.Fatalf("expected string id to decode, got %+v", p.Users)
	}
}

func TestIndicatorRoundTripKeepsMessage(t *testing.T) {
	data, err := json.Marshal(Payload{Success: Indicator{Set: true, Text: "ok"}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Payload
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Success.Text != "ok" || back.Error.Set {
		t.Fatalf("unexpected round trip %+v", back)
	}
}
