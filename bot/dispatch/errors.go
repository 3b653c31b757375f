package dispatch

import "errors"

// ErrUnresolved wraps failed username lookups.
var ErrUnresolved = errors.New("dispatch: username not resolved")

// InputError is a problem with what the user sent. The dispatcher replies
// with Message and the event ends normally.
type InputError struct {
	Reason  string
	Message string
	Err     error
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return "input error: " + e.Reason + ": " + e.Err.Error()
	}
	return "input error: " + e.Reason
}

func (e *InputError) Unwrap() error { return e.Err }

// Code is used as err_code in handler logs.
func (e *InputError) Code() string { return e.Reason }

func inputErr(reason, message string, cause error) *InputError {
	return &InputError{Reason: reason, Message: message, Err: cause}
}
