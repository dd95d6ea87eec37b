package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind classifies why a request failed.
type Kind int

const (
	// KindTransport: the request could not be built, sent, or its body read.
	KindTransport Kind = iota + 1
	// KindStatus: the server answered with a non-2xx status and a JSON body.
	KindStatus
	// KindDecode: the response body was not valid JSON.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Sentinels matched by errors.Is against a *RequestError of the same kind.
var (
	ErrTransport = errors.New("gateway: transport failure")
	ErrStatus    = errors.New("gateway: unsuccessful status")
	ErrDecode    = errors.New("gateway: undecodable response")
)

// RequestError is returned by every failed Client call.
type RequestError struct {
	Kind   Kind
	Method string
	Path   string
	// StatusCode is zero for transport failures.
	StatusCode int
	// Message is the server-supplied message, or "HTTP error <status>".
	Message string
	// Errors holds the envelope's validation details, if any.
	Errors []json.RawMessage
	Err    error
}

func (e *RequestError) Error() string {
	switch e.Kind {
	case KindStatus:
		return e.Message
	case KindDecode:
		return fmt.Sprintf("decode %s %s (status %d): %v", e.Method, e.Path, e.StatusCode, e.Err)
	default:
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	}
}

func (e *RequestError) Unwrap() []error {
	errs := []error{e.sentinel()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func (e *RequestError) sentinel() error {
	switch e.Kind {
	case KindStatus:
		return ErrStatus
	case KindDecode:
		return ErrDecode
	default:
		return ErrTransport
	}
}

// StatusCode reports the HTTP status of a *RequestError in err's chain, or 0.
func StatusCode(err error) int {
	var re *RequestError
	if errors.As(err, &re) {
		return re.StatusCode
	}
	return 0
}
