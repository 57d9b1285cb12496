package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	v1 "roombook/pkg/api/v1"

	"github.com/go-resty/resty/v2"
)

// ErrSessionTerminated is matched by every error that ended the session and
// scheduled a redirect to the login page.
var ErrSessionTerminated = errors.New("session terminated")

// ErrIncompleteBooking is returned by BookingAdd when a date or time is missing.
var ErrIncompleteBooking = errors.New("booking requires start and end date and time")

// ResponseError is a non-2xx response. Envelope is nil when the body is not a
// backend envelope.
type ResponseError struct {
	Method     string
	Path       string
	StatusCode int
	Header     http.Header
	Body       []byte
	Envelope   *v1.RawEnvelope
}

func newResponseError(cl call, resp *resty.Response) *ResponseError {
	e := &ResponseError{
		Method:     cl.method,
		Path:       cl.path,
		StatusCode: resp.StatusCode(),
		Header:     resp.Header(),
		Body:       resp.Body(),
	}

	var probe struct {
		Code    *int            `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(e.Body, &probe); err == nil && probe.Code != nil {
		e.Envelope = &v1.RawEnvelope{Code: *probe.Code, Message: probe.Message, Data: probe.Data}
	}
	return e
}

func (e *ResponseError) Error() string {
	if e.Envelope != nil {
		return fmt.Sprintf("%s %s: HTTP %d (code %d): %s", e.Method, e.Path, e.StatusCode, e.Envelope.Code, e.Payload())
	}
	return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.Path, e.StatusCode)
}

// HasPayload reports whether the backend answered with a structured envelope.
func (e *ResponseError) HasPayload() bool {
	return e.Envelope != nil
}

// BusinessCode returns the envelope code, if there is an envelope.
func (e *ResponseError) BusinessCode() (int, bool) {
	if e.Envelope == nil {
		return 0, false
	}
	return e.Envelope.Code, true
}

// Payload renders the envelope data for display. String data is unquoted;
// anything else is returned as JSON. Without an envelope the raw body is used.
func (e *ResponseError) Payload() string {
	if e.Envelope == nil {
		return strings.TrimSpace(string(e.Body))
	}
	return renderData(e.Envelope.Data)
}

func renderData(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// TransportError is a failure with no response to inspect: connection errors,
// timeouts, cancelled contexts.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the request ran out of time.
func (e *TransportError) Timeout() bool {
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// SessionError means the refresh token was rejected or the refresh failed. The
// stored credentials are cleared and a redirect to the login page is scheduled.
type SessionError struct {
	Reason  string
	Message string
	Err     error
}

func (e *SessionError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%v (%s)", ErrSessionTerminated, e.Reason)
	}
	return fmt.Sprintf("%v (%s): %s", ErrSessionTerminated, e.Reason, e.Message)
}

func (e *SessionError) Is(target error) bool {
	return target == ErrSessionTerminated
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

// IsSessionTerminated reports whether err ended the session.
func IsSessionTerminated(err error) bool { return errors.Is(err, ErrSessionTerminated) }

// failurePayload picks the text shown to the user for err.
func failurePayload(err error) string {
	var rerr *ResponseError
	if errors.As(err, &rerr) {
		if p := rerr.Payload(); p != "" {
			return p
		}
	}
	return err.Error()
}
