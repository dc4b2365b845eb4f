package summary

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput means there is no text to summarize.
	ErrEmptyInput = errors.New("empty input")
	// ErrEmptyResponse means the backend returned no text.
	ErrEmptyResponse = errors.New("empty response from backend")
	// ErrMalformedResponse means the backend text held no usable JSON object.
	ErrMalformedResponse = errors.New("malformed response from backend")
	// ErrQuotaExceeded marks a rate-limit signal from the backend.
	ErrQuotaExceeded = errors.New("quota exceeded")
	// ErrNoValidResults means every chunk failed.
	ErrNoValidResults = errors.New("no valid chunk results")
	// ErrCancelled means the caller's context ended the run.
	ErrCancelled = errors.New("cancelled")
)

// ChunkError is returned when a chunk exhausts its attempts.
type ChunkError struct {
	Index    int
	Total    int
	Attempts int
	Err      error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("chunk %d/%d failed after %d attempts: %v", e.Index, e.Total, e.Attempts, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}

// Cancelled wraps a context error so callers can match both
// ErrCancelled and the original context error.
func Cancelled(err error) error {
	if errors.Is(err, ErrCancelled) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrCancelled, err)
}
