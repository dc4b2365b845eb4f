// Package memory keeps a short rolling history of chunk results so each
// prompt knows what came before it.
package memory

import (
	"strings"

	"github.com/nguyentantai21042004/digest-flow/internal/summary"
)

const (
	DefaultCapacity = 5

	// recentOverviews is how many of the newest overviews Summarize shows.
	recentOverviews = 2
)

// Memory is a FIFO of the most recent ChunkResults. It belongs to a
// single summarization run and is not safe for concurrent use.
type Memory struct {
	capacity int
	results  []summary.ChunkResult
}

// New creates an empty Memory holding at most capacity results.
func New(capacity int) *Memory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Memory{capacity: capacity}
}

// Append adds r, dropping the oldest result when full.
func (m *Memory) Append(r summary.ChunkResult) {
	m.results = append(m.results, r)
	if over := len(m.results) - m.capacity; over > 0 {
		m.results = append(m.results[:0:0], m.results[over:]...)
	}
}

func (m *Memory) Len() int {
	return len(m.results)
}

// Results returns the retained results, oldest first.
func (m *Memory) Results() []summary.ChunkResult {
	out := make([]summary.ChunkResult, len(m.results))
	copy(out, m.results)
	return out
}

// Summarize renders a compact digest for the next prompt: the last two
// overviews and every continuing topic still in memory.
func (m *Memory) Summarize() string {
	if len(m.results) == 0 {
		return ""
	}

	var sb strings.Builder

	start := max(len(m.results)-recentOverviews, 0)
	sb.WriteString("直前の内容:\n")
	for _, r := range m.results[start:] {
		if o := strings.TrimSpace(r.Overview); o != "" {
			sb.WriteString("- ")
			sb.WriteString(o)
			sb.WriteString("\n")
		}
	}

	var topics []string
	for _, r := range m.results {
		topics = append(topics, r.ContextLinks.ContinuingTopics...)
	}
	if topics = Dedupe(topics); len(topics) > 0 {
		sb.WriteString("継続中のトピック: ")
		sb.WriteString(strings.Join(topics, ", "))
		sb.WriteString("\n")
	}

	return strings.TrimSpace(sb.String())
}

// Dedupe drops blank and repeated strings, keeping first-seen order.
func Dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
