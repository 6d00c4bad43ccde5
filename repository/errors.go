package repository

import (
	"errors"
	"fmt"
)

const (
	TimeoutMessage  = "Request timed out. Please try again."
	CanceledMessage = "Request was cancelled."
)

type ErrorKind int

const (
	// KindStatus is a non-2xx response from the notes service.
	KindStatus ErrorKind = iota + 1
	// KindTimeout means the executor's own deadline fired first.
	KindTimeout
	// KindCanceled means the caller's context ended first.
	KindCanceled
)

func (k ErrorKind) String() string {
	switch k {
	case KindStatus:
		return "status"
	case KindTimeout:
		return "timeout"
	case KindCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// RequestError is the normalized failure of one executor call. Error returns
// the message meant for the user.
type RequestError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Payload *Payload
	Err     error
}

func (e *RequestError) Error() string { return e.Message }

func (e *RequestError) Unwrap() error { return e.Err }

// Is matches sentinels by kind, and by status when the target sets one.
func (e *RequestError) Is(target error) bool {
	t, ok := target.(*RequestError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Status == 0 || t.Status == e.Status)
}

var (
	ErrTimeout  = &RequestError{Kind: KindTimeout, Message: TimeoutMessage}
	ErrCanceled = &RequestError{Kind: KindCanceled, Message: CanceledMessage}
)

// StatusCode reports the response status carried by err, or 0 for timeouts,
// cancellations and transport failures.
func StatusCode(err error) int {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Status
	}
	return 0
}

func statusError(status int, payload *Payload) *RequestError {
	return &RequestError{
		Kind:    KindStatus,
		Status:  status,
		Message: failureMessage(payload, status),
		Payload: payload,
	}
}

// failureMessage picks, in order: the payload's detail field, the body when
// it is a non-empty string (plain text or a JSON string), a generic message
// with the status code.
func failureMessage(payload *Payload, status int) string {
	if payload != nil {
		if detail := payload.Detail(); detail != "" {
			return detail
		}
		if value, err := payload.Value(); err == nil {
			if text, ok := value.(string); ok && text != "" {
				return text
			}
		}
	}
	return fmt.Sprintf("Request failed (%d)", status)
}
