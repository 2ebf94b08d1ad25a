package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Indicator is a response field that may arrive as a flag (`true`) or as a
// human-readable message ("Login successful!"). Either form marks it as set.
type Indicator struct {
	Set  bool
	Text string
}

// UnmarshalJSON accepts booleans, strings, numbers and null.
func (i *Indicator) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	*i = Indicator{}
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	switch trimmed[0] {
	case 't', 'f':
		var flag bool
		if err := json.Unmarshal(trimmed, &flag); err != nil {
			return err
		}
		i.Set = flag
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		i.Text = strings.TrimSpace(text)
		i.Set = i.Text != ""
	default:
		var number json.Number
		if err := json.Unmarshal(trimmed, &number); err != nil {
			return fmt.Errorf("indicator: unsupported value %s", trimmed)
		}
		i.Set = number.String() != "0"
	}
	return nil
}

// MarshalJSON writes the message when present and the flag otherwise.
func (i Indicator) MarshalJSON() ([]byte, error) {
	if i.Text != "" {
		return json.Marshal(i.Text)
	}
	return json.Marshal(i.Set)
}

// ID is an opaque server identifier that may be encoded as a number or a string.
type ID string

// UnmarshalJSON accepts numeric and string identifiers.
func (id *ID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*id = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var number json.Number
	if err := json.Unmarshal(trimmed, &number); err != nil {
		return fmt.Errorf("id: unsupported value %s", trimmed)
	}
	if n, err := strconv.ParseInt(number.String(), 10, 64); err == nil {
		*id = ID(strconv.FormatInt(n, 10))
		return nil
	}
	*id = ID(number.String())
	return nil
}

// User is a connection or share recipient as returned by the share endpoints.
type User struct {
	ID       ID     `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// Upload is one entry of the upload history list.
type Upload struct {
	ID        ID     `json:"id,omitempty"`
	Filename  string `json:"filename"`
	CreatedAt string `json:"created_at"`
	Preview   string `json:"preview"`
}

// Payload is the structured body returned by every mutating endpoint.
// Feature-specific fields are only populated by the endpoints that use them.
type Payload struct {
	Success  Indicator `json:"success"`
	Error    Indicator `json:"error"`
	Redirect string    `json:"redirect,omitempty"`
	Message  string    `json:"message,omitempty"`
	User     *User     `json:"user,omitempty"`
	Users    []User    `json:"users,omitempty"`
	URLPath  string    `json:"url_path,omitempty"`
	Uploads  []Upload  `json:"uploads,omitempty"`
}

// SuccessText returns the message to show for a successful response.
func (p Payload) SuccessText() string {
	if p.Success.Text != "" {
		return p.Success.Text
	}
	return strings.TrimSpace(p.Message)
}

// ErrorText returns the server-provided error message, if any.
func (p Payload) ErrorText() string {
	if p.Error.Text != "" {
		return p.Error.Text
	}
	if p.Error.Set {
		return strings.TrimSpace(p.Message)
	}
	return ""
}
