package transcript

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/digest-flow/internal/logger"
	"github.com/nguyentantai21042004/digest-flow/pkg/executor"
)

// Downloader fetches a video's audio track with an external program.
// Args may use {id}, {url} and {out}; {out} is a path prefix inside a
// fresh directory and the program may add any extension.
type Downloader struct {
	Executor executor.Executor
	Binary   string
	Args     []string
	TempDir  string
}

// Download returns the downloaded file and a cleanup func that removes it.
func (d *Downloader) Download(ctx context.Context, id string) (string, func(), error) {
	workDir, err := os.MkdirTemp(d.TempDir, "download-*")
	if err != nil {
		return "", func() {}, fmt.Errorf("create download dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(workDir) }

	args := expand(d.Args, map[string]string{
		placeholderID:  id,
		placeholderURL: WatchURL(id),
		placeholderOut: filepath.Join(workDir, "audio"),
	})
	if _, err := d.Executor.Execute(ctx, d.Binary, args...); err != nil {
		cleanup()
		return "", func() {}, fmt.Errorf("download audio: %w", err)
	}

	entries, err := os.ReadDir(workDir)
	if err != nil {
		cleanup()
		return "", func() {}, fmt.Errorf("read download dir: %w", err)
	}
	for _, e := range entries {
		if e.Type().IsRegular() {
			return filepath.Join(workDir, e.Name()), cleanup, nil
		}
	}

	cleanup()
	return "", func() {}, fmt.Errorf("%w: downloader wrote no file for %s", ErrUnavailable, id)
}

// Resolver picks a source from the shape of a reference. Local files
// are read or transcribed; video references try subtitles first and
// fall back to downloading and transcribing the audio.
type Resolver struct {
	files      FileSource
	subtitles  Source
	whisper    *WhisperSource
	downloader *Downloader
	logger     logger.Logger
}

// NewResolver wires a Resolver. subtitles, whisper and downloader are
// optional.
func NewResolver(subtitles Source, whisper *WhisperSource, downloader *Downloader, log logger.Logger) *Resolver {
	if log == nil {
		log = logger.NewNop()
	}
	return &Resolver{
		subtitles:  subtitles,
		whisper:    whisper,
		downloader: downloader,
		logger:     log,
	}
}

// Supports reports whether path is a local file the resolver can read.
func (r *Resolver) Supports(path string) bool {
	return r.files.Supports(path) || (r.whisper != nil && r.whisper.Supports(path))
}

func (r *Resolver) Fetch(ctx context.Context, ref string) (string, error) {
	info, statErr := os.Stat(ref)
	if statErr == nil && info.Mode().IsRegular() {
		return r.fetchFile(ctx, ref)
	}
	if !looksRemote(ref) {
		if statErr == nil {
			return "", fmt.Errorf("%s is not a regular file", ref)
		}
		return "", fmt.Errorf("read input: %w", statErr)
	}

	id, ok := ExtractVideoID(ref)
	if !ok {
		return "", fmt.Errorf("unrecognized transcript reference %q", ref)
	}

	var errs []error
	if r.subtitles != nil {
		text, err := r.subtitles.Fetch(ctx, id)
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		r.logger.Warn(ctx, "Subtitles unavailable for %s: %v", id, err)
		errs = append(errs, err)
	}

	if r.downloader != nil && r.whisper != nil {
		r.logger.Info(ctx, "Falling back to speech recognition for %s", id)
		text, err := r.transcribeRemote(ctx, id)
		if err == nil {
			return text, nil
		}
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return "", fmt.Errorf("%w: no source configured for %s", ErrUnavailable, id)
	}
	err := errors.Join(errs...)
	if !errors.Is(err, ErrUnavailable) {
		err = fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return "", err
}

// looksRemote reports whether ref names a video rather than a local path.
func looksRemote(ref string) bool {
	return strings.Contains(ref, "://") ||
		strings.HasPrefix(ref, "www.") ||
		strings.HasPrefix(ref, "youtu") ||
		reBareID.MatchString(ref)
}

func (r *Resolver) fetchFile(ctx context.Context, path string) (string, error) {
	switch {
	case r.files.Supports(path):
		return r.files.Fetch(ctx, path)
	case r.whisper != nil && r.whisper.Supports(path):
		return r.whisper.Fetch(ctx, path)
	default:
		return "", fmt.Errorf("unsupported input file %s", path)
	}
}

func (r *Resolver) transcribeRemote(ctx context.Context, id string) (string, error) {
	audio, cleanup, err := r.downloader.Download(ctx, id)
	if err != nil {
		return "", err
	}
	defer cleanup()
	return r.whisper.Fetch(ctx, audio)
}
