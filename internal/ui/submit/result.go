package submit

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Its-donkey/formwire/internal/ui/model"
)

// Outcome tags a parsed response.
type Outcome int

const (
	Unparseable Outcome = iota
	Success
	Failure
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Failure:
		return "error"
	case Redirect:
		return "redirect"
	default:
		return "unparseable"
	}
}

// Result is a response decided once at the HTTP boundary.
type Result struct {
	Outcome  Outcome
	Status   int
	Message  string
	Redirect string
	Payload  model.Payload
	Err      error
}

// ParseResponse classifies a response body. Non-2xx statuses never count as
// success; a JSON error message on such a response is still used.
func ParseResponse(status int, body []byte) Result {
	res := Result{Status: status}
	ok := status >= 200 && status < 300

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		res.Err = fmt.Errorf("response is not a JSON object")
		if !ok {
			res.Outcome = Failure
			res.Err = &ServerRejection{Status: status}
		}
		return res
	}
	var payload model.Payload
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		res.Err = fmt.Errorf("decode response: %w", err)
		if !ok {
			res.Outcome = Failure
			res.Err = &ServerRejection{Status: status}
		}
		return res
	}
	res.Payload = payload
	res.Redirect = strings.TrimSpace(payload.Redirect)

	switch {
	case payload.Error.Set:
		res.Outcome = Failure
		res.Message = payload.ErrorText()
		res.Err = &ServerRejection{Status: status, Message: res.Message}
	case !ok:
		res.Outcome = Failure
		res.Err = &ServerRejection{Status: status}
	case payload.Success.Set:
		res.Outcome = Success
		res.Message = payload.SuccessText()
	case res.Redirect != "":
		res.Outcome = Redirect
	default:
		res.Err = errors.New("response carries no success, error or redirect field")
	}
	return res
}

// Transport wraps a request failure as a Result.
func Transport(err error) Result {
	return Result{Outcome: Unparseable, Err: &TransportFailure{Err: err}}
}

// Error returns the failure for non-success results, nil otherwise.
func (r Result) Error() error {
	switch r.Outcome {
	case Success, Redirect:
		return nil
	case Failure:
		if r.Err != nil {
			return r.Err
		}
		return &ServerRejection{Status: r.Status, Message: r.Message}
	default:
		var tf *TransportFailure
		if errors.As(r.Err, &tf) {
			return r.Err
		}
		return &TransportFailure{Status: r.Status, Err: r.Err}
	}
}
