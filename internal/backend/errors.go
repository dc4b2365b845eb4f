package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorKind is the retry class of a backend failure.
type ErrorKind int

const (
	// KindTransient covers timeouts, empty or broken responses and
	// anything else that may succeed on a plain retry.
	KindTransient ErrorKind = iota
	// KindQuota means the backend asked us to slow down.
	KindQuota
	// KindCancelled means the caller's context ended the request.
	KindCancelled
)

func (k ErrorKind) String() string {
	switch k {
	case KindQuota:
		return "quota"
	case KindCancelled:
		return "cancelled"
	default:
		return "transient"
	}
}

// Error is a classified backend failure.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s backend error: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// quotaMarkers are substrings that identify rate-limit failures from
// errors an adapter did not classify itself.
var quotaMarkers = []string{"429", "quota", "resource_exhausted", "rate limit", "too many requests"}

// Classify returns the retry class of err.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindTransient
	}

	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCancelled
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range quotaMarkers {
		if strings.Contains(msg, marker) {
			return KindQuota
		}
	}
	return KindTransient
}
