package summarizer

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/nguyentantai21042004/digest-flow/internal/memory"
	"github.com/nguyentantai21042004/digest-flow/internal/summary"
)

// Top-level keys every chunk response must carry.
const (
	keyOverview     = "概要"
	keyKeyPoints    = "ポイント"
	keyContextLinks = "文脈"
)

var requiredKeys = []string{keyOverview, keyKeyPoints, keyContextLinks}

// ExtractJSON returns the first balanced {...} region of text after
// control characters are replaced and whitespace runs collapsed. Braces
// inside JSON strings are ignored.
func ExtractJSON(text string) (string, error) {
	cleaned := strings.Join(strings.Fields(strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, text)), " ")

	start := strings.IndexByte(cleaned, '{')
	if start < 0 {
		return "", fmt.Errorf("%w: no JSON object found", summary.ErrMalformedResponse)
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(cleaned); i++ {
		c := cleaned[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return cleaned[start : i+1], nil
			}
		}
	}

	return "", fmt.Errorf("%w: unbalanced braces", summary.ErrMalformedResponse)
}

// ParseChunkResult extracts and validates a ChunkResult from raw
// backend text.
func ParseChunkResult(text string) (summary.ChunkResult, error) {
	raw, err := ExtractJSON(text)
	if err != nil {
		return summary.ChunkResult{}, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return summary.ChunkResult{}, fmt.Errorf("%w: %v", summary.ErrMalformedResponse, err)
	}
	for _, key := range requiredKeys {
		if _, ok := fields[key]; !ok {
			return summary.ChunkResult{}, fmt.Errorf("%w: missing key %q", summary.ErrMalformedResponse, key)
		}
	}

	var result summary.ChunkResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return summary.ChunkResult{}, fmt.Errorf("%w: %v", summary.ErrMalformedResponse, err)
	}

	return normalizeResult(result), nil
}

func normalizeResult(r summary.ChunkResult) summary.ChunkResult {
	r.Overview = strings.TrimSpace(r.Overview)

	points := make([]summary.KeyPoint, 0, len(r.KeyPoints))
	for _, p := range r.KeyPoints {
		p.Title = strings.TrimSpace(p.Title)
		if p.Title == "" {
			continue
		}
		p.Description = strings.TrimSpace(p.Description)
		p.Importance = summary.ClampImportance(int(p.Importance))
		points = append(points, p)
	}
	r.KeyPoints = points

	r.ContextLinks.RelationToPrevious = strings.TrimSpace(r.ContextLinks.RelationToPrevious)
	r.ContextLinks.ContinuingTopics = memory.Dedupe(r.ContextLinks.ContinuingTopics)
	r.ContextLinks.NewTopics = memory.Dedupe(r.ContextLinks.NewTopics)
	return r
}
