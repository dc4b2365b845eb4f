package transcript

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	reSrtTime  = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}`)
	reSrtIndex = regexp.MustCompile(`^\d+$`)
)

// FileSource reads transcripts saved as plain text or SRT subtitles.
type FileSource struct{}

// Supports reports whether path has an extension FileSource reads.
func (FileSource) Supports(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".srt":
		return true
	}
	return false
}

func (s FileSource) Fetch(_ context.Context, path string) (string, error) {
	if !s.Supports(path) {
		return "", fmt.Errorf("unsupported transcript file %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read transcript: %w", err)
	}

	text := string(data)
	if strings.EqualFold(filepath.Ext(path), ".srt") {
		text = StripSRT(text)
	}

	text = strings.TrimSpace(strings.TrimPrefix(text, "\ufeff"))
	if text == "" {
		return "", fmt.Errorf("%w: %s is empty", ErrUnavailable, path)
	}
	return text, nil
}

// StripSRT keeps only the dialogue lines of an SRT document. Sequence
// numbers, timestamps and a line repeating the one before it are dropped.
func StripSRT(content string) string {
	var (
		kept []string
		last string
	)
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(strings.TrimPrefix(line, "\ufeff"))
		if trimmed == "" || reSrtIndex.MatchString(trimmed) || reSrtTime.MatchString(trimmed) {
			continue
		}
		if trimmed == last {
			continue
		}
		last = trimmed
		kept = append(kept, trimmed)
	}
	return strings.Join(kept, " ")
}
