package summarizer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nguyentantai21042004/digest-flow/internal/summary"
)

func TestBuildPrompt(t *testing.T) {
	c := summary.TextChunk{Index: 2, Total: 4, Content: "本文テキスト"}

	p := buildPrompt(c, "直前の内容:\n- 導入")
	assert.Contains(t, p, "4分割のうちの2番目")
	assert.Contains(t, p, "位置: middle")
	assert.Contains(t, p, "- 導入")
	assert.Contains(t, p, "本文テキスト")
	assert.NotContains(t, p, noContext)
}

func TestBuildPrompt_NoMemory(t *testing.T) {
	p := buildPrompt(summary.TextChunk{Index: 1, Total: 1, Content: "x"}, "")
	assert.Contains(t, p, noContext)
	assert.Contains(t, p, "位置: first/last")
}

func TestPositionLabel(t *testing.T) {
	assert.Equal(t, "first", positionLabel(summary.TextChunk{Index: 1, Total: 3}))
	assert.Equal(t, "middle", positionLabel(summary.TextChunk{Index: 2, Total: 3}))
	assert.Equal(t, "last", positionLabel(summary.TextChunk{Index: 3, Total: 3}))
	assert.Equal(t, "first/last", positionLabel(summary.TextChunk{Index: 1, Total: 1}))
}
