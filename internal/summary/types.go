package summary

import (
	"encoding/json"
	"strconv"
	"strings"
)

// TextChunk is one slice of a transcript sent to the backend.
// Index is 1-based.
type TextChunk struct {
	Index   int
	Total   int
	Content string
}

// Position describes where a chunk sits in the transcript.
func (c TextChunk) Position() string {
	switch {
	case c.Index <= 1:
		return "first"
	case c.Index >= c.Total:
		return "last"
	default:
		return "middle"
	}
}

// ChunkResult is the structured record the backend returns for one chunk.
type ChunkResult struct {
	Overview     string       `json:"概要"`
	KeyPoints    []KeyPoint   `json:"ポイント"`
	ContextLinks ContextLinks `json:"文脈"`
}

type KeyPoint struct {
	Title       string     `json:"タイトル"`
	Description string     `json:"説明"`
	Importance  Importance `json:"重要度"`
}

type ContextLinks struct {
	RelationToPrevious string   `json:"前との関係"`
	ContinuingTopics   []string `json:"継続トピック"`
	NewTopics          []string `json:"新規トピック"`
}

const (
	MinImportance     = 1
	MaxImportance     = 5
	defaultImportance = 3
)

// Importance is a 1..5 rating. The backend sometimes sends it as a
// string, so both forms are accepted; anything unparseable becomes 3.
type Importance int

func (i *Importance) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)

	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*i = defaultImportance
		return nil
	}
	*i = ClampImportance(int(n))
	return nil
}

func (i Importance) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(i))
}

// ClampImportance forces n into [MinImportance, MaxImportance].
func ClampImportance(n int) Importance {
	if n < MinImportance {
		return MinImportance
	}
	if n > MaxImportance {
		return MaxImportance
	}
	return Importance(n)
}

// CombinedSummary is the merge of every successful ChunkResult.
type CombinedSummary struct {
	Overview    string
	KeyPoints   []KeyPoint
	ContextFlow []FlowEntry
}

type FlowEntry struct {
	Label            string
	Relation         string
	ContinuingTopics []string
	NewTopics        []string
}
