// Package chunker splits transcripts into ordered, overlapping chunks
// that follow sentence boundaries.
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/nguyentantai21042004/digest-flow/internal/summary"
)

const (
	DefaultChunkSize   = 1500
	DefaultOverlapSize = 200

	// overlapSentences is how many trailing sentences of a closed chunk
	// are repeated at the start of the next one.
	overlapSentences = 2
)

// group is one chunk before it is rendered. The first overlap
// sentences are repeated from the previous group.
type group struct {
	sentences []string
	overlap   int
}

// Split normalizes text and cuts it into chunks of at most chunkSize
// runes. Only a single sentence longer than chunkSize is sliced, and
// those slices carry no overlap.
func Split(text string, chunkSize, overlapSize int) ([]summary.TextChunk, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlapSize < 0 || overlapSize >= chunkSize {
		overlapSize = 0
	}

	normalized := Normalize(text)
	if normalized == "" {
		return nil, summary.ErrEmptyInput
	}

	if utf8.RuneCountInString(normalized) <= chunkSize {
		return []summary.TextChunk{{Index: 1, Total: 1, Content: normalized}}, nil
	}

	groups := split(Sentences(normalized), chunkSize, chunkSize-overlapSize)

	chunks := make([]summary.TextChunk, 0, len(groups))
	for _, g := range groups {
		content := strings.TrimSpace(strings.Join(g.sentences, ""))
		if content == "" {
			continue
		}
		chunks = append(chunks, summary.TextChunk{Content: content})
	}
	for i := range chunks {
		chunks[i].Index = i + 1
		chunks[i].Total = len(chunks)
	}
	return chunks, nil
}

func split(sentences []string, chunkSize, budget int) []group {
	var (
		groups []group
		buf    []string
		bufLen int
		seeded int
	)

	flush := func() {
		if len(buf) > seeded {
			groups = append(groups, group{sentences: buf, overlap: seeded})
		}
	}

	for _, s := range sentences {
		n := utf8.RuneCountInString(s)

		if n > chunkSize {
			flush()
			for _, piece := range slice(s, chunkSize) {
				groups = append(groups, group{sentences: []string{piece}})
			}
			buf, bufLen, seeded = nil, 0, 0
			continue
		}

		if bufLen+n > budget && len(buf) > seeded {
			flush()

			start := max(len(buf)-overlapSentences, 0)
			seed := append([]string(nil), buf[start:]...)
			seedLen := runeSum(seed)
			for len(seed) > 0 && seedLen+n > budget {
				seedLen -= utf8.RuneCountInString(seed[0])
				seed = seed[1:]
			}
			buf, bufLen, seeded = seed, seedLen, len(seed)
		}

		buf = append(buf, s)
		bufLen += n
	}
	flush()

	return groups
}

// Normalize collapses whitespace runs to one space and trims the ends.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Sentences cuts text after every terminator. Each sentence keeps its
// terminator and any leading space, so joining them gives back text.
func Sentences(text string) []string {
	var (
		out   []string
		start int
	)
	for i, r := range text {
		if isTerminator(r) {
			end := i + utf8.RuneLen(r)
			out = append(out, text[start:end])
			start = end
		}
	}
	if rest := text[start:]; strings.TrimSpace(rest) != "" {
		out = append(out, rest)
	} else if len(out) > 0 {
		out[len(out)-1] += rest
	}
	return out
}

func isTerminator(r rune) bool {
	switch r {
	case '。', '！', '？', '!', '?', '.':
		return true
	}
	return false
}

// slice cuts s into consecutive pieces of width runes.
func slice(s string, width int) []string {
	runes := []rune(s)
	pieces := make([]string, 0, len(runes)/width+1)
	for start := 0; start < len(runes); start += width {
		end := min(start+width, len(runes))
		pieces = append(pieces, string(runes[start:end]))
	}
	return pieces
}

func runeSum(ss []string) int {
	total := 0
	for _, s := range ss {
		total += utf8.RuneCountInString(s)
	}
	return total
}
