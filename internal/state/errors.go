package state

import "github.com/five82/despensa/internal/api"

// Messages are the fallback texts shown when the backend error carries no message.
type Messages struct {
	Fetch  string
	Create string
	Update string
	Delete string
}

// OpError is returned by every failed store operation. Error() is the text a
// screen should render: the backend's message verbatim, or the operation's
// fallback. The transport error is available through errors.As/Unwrap.
type OpError struct {
	Store   string
	Op      string
	Message string
	Err     error
}

func (e *OpError) Error() string { return e.Message }

func (e *OpError) Unwrap() error { return e.Err }

func newOpError(store, op string, err error, fallback string) *OpError {
	msg := api.MessageOf(err)
	if msg == "" {
		msg = fallback
	}
	return &OpError{Store: store, Op: op, Message: msg, Err: err}
}
