package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed request.
type Kind int

const (
	// KindNetwork means the backend was unreachable or the request timed out.
	KindNetwork Kind = iota
	// KindValidation means the request was rejected as invalid, either by the
	// backend (4xx) or by the client before sending.
	KindValidation
	// KindReferential means a delete was blocked by entities referencing the target.
	KindReferential
	// KindNotFound means the addressed resource does not exist on the backend.
	KindNotFound
	// KindServer covers 5xx responses that are not referential rejections.
	KindServer
	// KindDecode means the response body could not be decoded.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindValidation:
		return "validation"
	case KindReferential:
		return "referential"
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error describes a failed API call. Message holds the backend's human-readable
// message and is empty when the response carried none.
type Error struct {
	Kind    Kind
	Method  string
	Path    string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("api %s %s returned status %d: %s", e.Method, e.Path, e.Status, e.Message)
	case e.Err != nil && e.Status != 0:
		return fmt.Sprintf("api %s %s returned status %d: %v", e.Method, e.Path, e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("api %s %s returned status %d", e.Method, e.Path, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("api %s %s: %v", e.Method, e.Path, e.Err)
	default:
		return fmt.Sprintf("api %s %s failed", e.Method, e.Path)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// MessageOf returns the backend message carried by err, or "" when there is none.
func MessageOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// KindOf reports the classification of err. ok is false for errors that did not
// originate in this package.
func KindOf(err error) (Kind, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind, true
	}
	return 0, false
}

// IsReferential reports whether err is a delete blocked by existing references.
func IsReferential(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindReferential
}

// IsNetwork reports whether err is a transport failure or timeout.
func IsNetwork(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindNetwork
}

// classifyStatus maps an HTTP failure status to a Kind. DELETE rejections that
// carry a message are treated as referential: the backend reports foreign key
// violations as 400, 409 or 500 depending on where the constraint fires.
func classifyStatus(method string, status int, message string) Kind {
	switch {
	case status == http.StatusConflict:
		return KindReferential
	case status == http.StatusNotFound:
		return KindNotFound
	case method == http.MethodDelete && message != "" &&
		(status == http.StatusBadRequest || status >= 500):
		return KindReferential
	case status >= 500:
		return KindServer
	default:
		return KindValidation
	}
}

// transportError wraps failures that happened before a response arrived.
// Timeouts and cancellations collapse into KindNetwork.
func transportError(method, path string, err error) *Error {
	return &Error{Kind: KindNetwork, Method: method, Path: path, Err: err}
}
