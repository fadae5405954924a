package webclient

import (
	"fmt"
	"net/http"
	"strings"
)

// Outcome tags the terminal state of a call.
type Outcome uint8

const (
	// OutcomeCompleted means a response was received, whatever its status code.
	OutcomeCompleted Outcome = iota + 1
	// OutcomeNetworkError means the exchange could not be completed.
	OutcomeNetworkError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeNetworkError:
		return "network_error"
	default:
		return fmt.Sprintf("outcome(%d)", uint8(o))
	}
}

// Response is the simplified result handed to callbacks. A nil Error or Data
// and a nil Headers map mean the field was not populated for this verb and outcome.
type Response struct {
	StatusCode int
	Error      *string
	Data       *string
	Headers    map[string]string
	Outcome    Outcome
}

func (r Response) HasError() bool { return r.Error != nil }
func (r Response) HasData() bool  { return r.Data != nil }

func (r Response) ErrorText() string {
	if r.Error == nil {
		return ""
	}
	return *r.Error
}

func (r Response) Body() string {
	if r.Data == nil {
		return ""
	}
	return *r.Data
}

// statusError mirrors the error text a browser-style transport reports for
// HTTP error statuses; it is empty below 400.
func statusError(code int) string {
	if code < http.StatusBadRequest {
		return ""
	}
	if text := http.StatusText(code); text != "" {
		return fmt.Sprintf("HTTP/1.1 %d %s", code, text)
	}
	return fmt.Sprintf("HTTP/1.1 %d", code)
}

func decodeUTF8(b []byte) string {
	return strings.ToValidUTF8(string(b), "\uFFFD")
}

func flattenHeader(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vs := range h {
		out[k] = strings.Join(vs, ", ")
	}
	return out
}

func strPtr(s string) *string { return &s }
