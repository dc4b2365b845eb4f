package transcript

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/digest-flow/internal/logger"
	"github.com/nguyentantai21042004/digest-flow/pkg/executor"
)

// Placeholders substituted into command arguments.
const (
	placeholderID   = "{id}"
	placeholderURL  = "{url}"
	placeholderLang = "{lang}"
	placeholderOut  = "{out}"
)

// CommandSource runs an external subtitle fetcher and treats its stdout
// as the transcript. When Args mention {lang}, each language is tried in
// order until one produces text.
type CommandSource struct {
	Executor  executor.Executor
	Binary    string
	Args      []string
	Languages []string
	Logger    logger.Logger
}

func (s *CommandSource) Fetch(ctx context.Context, ref string) (string, error) {
	id, ok := ExtractVideoID(ref)
	if !ok {
		return "", fmt.Errorf("no video id in %q", ref)
	}
	if s.Binary == "" {
		return "", fmt.Errorf("%w: no fetch command configured", ErrUnavailable)
	}

	langs := []string{""}
	if usesPlaceholder(s.Args, placeholderLang) && len(s.Languages) > 0 {
		langs = s.Languages
	}

	var errs []error
	for _, lang := range langs {
		args := expand(s.Args, map[string]string{
			placeholderID:   id,
			placeholderURL:  WatchURL(id),
			placeholderLang: lang,
		})

		out, err := s.Executor.Execute(ctx, s.Binary, args...)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			s.log().Debug(ctx, "Subtitle fetch for %s (lang=%q) failed: %v", id, lang, err)
			errs = append(errs, err)
			continue
		}
		if text := strings.TrimSpace(out); text != "" {
			s.log().Info(ctx, "Fetched subtitles for %s (lang=%q, %d bytes)", id, lang, len(text))
			return text, nil
		}
	}

	if len(errs) == 0 {
		return "", fmt.Errorf("%w: no subtitles for %s", ErrUnavailable, id)
	}
	return "", fmt.Errorf("%w: no subtitles for %s: %w", ErrUnavailable, id, errors.Join(errs...))
}

func (s *CommandSource) log() logger.Logger {
	if s.Logger == nil {
		return logger.NewNop()
	}
	return s.Logger
}

func usesPlaceholder(args []string, p string) bool {
	for _, a := range args {
		if strings.Contains(a, p) {
			return true
		}
	}
	return false
}

// expand substitutes every placeholder inside every argument.
func expand(args []string, values map[string]string) []string {
	pairs := make([]string, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, k, v)
	}
	r := strings.NewReplacer(pairs...)

	out := make([]string, len(args))
	for i, a := range args {
		out[i] = r.Replace(a)
	}
	return out
}
