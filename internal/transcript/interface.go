// Package transcript obtains transcript text from local files, external
// subtitle fetchers and local speech recognition.
package transcript

import (
	"context"
	"errors"
)

// ErrUnavailable means a source ran but produced no transcript.
var ErrUnavailable = errors.New("transcript unavailable")

// Source fetches the transcript for ref. What ref means depends on the
// source: a file path, a video URL or a bare video id.
type Source interface {
	Fetch(ctx context.Context, ref string) (string, error)
}
