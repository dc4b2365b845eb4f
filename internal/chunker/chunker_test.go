package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/nguyentantai21042004/digest-flow/internal/summary"
)

func TestSplit_ShortInputIsSingleChunk(t *testing.T) {
	chunks, err := Split("  今日は   晴れです。\n明日は雨です。 ", 100, 20)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, summary.TextChunk{Index: 1, Total: 1, Content: "今日は 晴れです。 明日は雨です。"}, chunks[0])
}

func TestSplit_EmptyInput(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t"} {
		_, err := Split(in, 100, 10)
		assert.ErrorIs(t, err, summary.ErrEmptyInput)
	}
}

func TestSplit_NoTerminatorsForcesSlices(t *testing.T) {
	text := strings.Repeat("あ", 5000)

	chunks, err := Split(text, 1500, 200)
	require.NoError(t, err)
	require.Len(t, chunks, 4)

	wantLens := []int{1500, 1500, 1500, 500}
	for i, c := range chunks {
		assert.Equal(t, i+1, c.Index)
		assert.Equal(t, 4, c.Total)
		assert.Equal(t, wantLens[i], utf8.RuneCountInString(c.Content))
	}
}

func TestSplit_OverlapRepeatsLastTwoSentences(t *testing.T) {
	// Ten sentences of 10 runes each.
	var sb strings.Builder
	for i := 0; i < 10; i++ {
		sb.WriteString(string(rune('a'+i)) + strings.Repeat("x", 8) + "。")
	}

	chunks, err := Split(sb.String(), 40, 10)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	first := Sentences(chunks[0].Content)
	second := Sentences(chunks[1].Content)
	require.GreaterOrEqual(t, len(first), 2)
	assert.Equal(t, first[len(first)-2:], second[:2])
}

func TestSplit_LongSentenceFlushesBuffer(t *testing.T) {
	long := strings.Repeat("b", 45)
	text := "short one. " + long + ". tail."

	chunks, err := Split(text, 20, 5)
	require.NoError(t, err)

	assert.Equal(t, "short one.", chunks[0].Content)
	for _, c := range chunks[1:] {
		assert.NotContains(t, c.Content, "short one")
	}
	assert.Equal(t, "tail.", chunks[len(chunks)-1].Content)
}

func TestSentences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"japanese", "一つ。二つ！三つ？", []string{"一つ。", "二つ！", "三つ？"}},
		{"english keeps spaces", "One. Two? Three!", []string{"One.", " Two?", " Three!"}},
		{"trailing fragment", "One. rest", []string{"One.", " rest"}},
		{"no terminator", "no punctuation here", []string{"no punctuation here"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sentences(tt.in))
		})
	}
}

func sentenceText(t *rapid.T) string {
	words := rapid.SliceOfN(rapid.StringMatching(`[a-zあ-ん]{1,30}[.。!?！？]?`), 1, 80).Draw(t, "sentences")
	return strings.Join(words, " ")
}

func TestSplit_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := sentenceText(t)
		chunkSize := rapid.IntRange(10, 200).Draw(t, "chunkSize")
		overlapSize := rapid.IntRange(0, chunkSize-1).Draw(t, "overlapSize")

		chunks, err := Split(text, chunkSize, overlapSize)
		if err != nil {
			t.Fatalf("Split() error = %v", err)
		}

		normalized := Normalize(text)
		if utf8.RuneCountInString(normalized) <= chunkSize {
			if len(chunks) != 1 || chunks[0].Content != normalized {
				t.Fatalf("short input should give one chunk equal to %q, got %+v", normalized, chunks)
			}
			return
		}

		sentences := Sentences(normalized)
		groups := split(sentences, chunkSize, chunkSize-overlapSize)

		// Dropping the overlap from every group gives back the text.
		var rebuilt strings.Builder
		for _, g := range groups {
			if g.overlap > overlapSentences {
				t.Fatalf("overlap of %d sentences", g.overlap)
			}
			if len(g.sentences) <= g.overlap {
				t.Fatalf("group holds only repeated sentences: %q", g.sentences)
			}
			rebuilt.WriteString(strings.Join(g.sentences[g.overlap:], ""))
		}
		if rebuilt.String() != normalized {
			t.Fatalf("rebuilt text differs:\n got %q\nwant %q", rebuilt.String(), normalized)
		}

		for i, c := range chunks {
			if c.Index != i+1 || c.Total != len(chunks) {
				t.Fatalf("chunk %d has index %d total %d", i, c.Index, c.Total)
			}
			if c.Content == "" {
				t.Fatalf("chunk %d is empty", c.Index)
			}
			if utf8.RuneCountInString(c.Content) > chunkSize {
				t.Fatalf("chunk %d has %d runes, limit %d", c.Index, utf8.RuneCountInString(c.Content), chunkSize)
			}
		}
	})
}

func TestSplit_Deterministic(t *testing.T) {
	text := strings.Repeat("これはテストの文です。", 300)

	a, err := Split(text, 500, 50)
	require.NoError(t, err)
	b, err := Split(text, 500, 50)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
