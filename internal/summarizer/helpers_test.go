package summarizer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nguyentantai21042004/digest-flow/internal/backend"
	"github.com/nguyentantai21042004/digest-flow/internal/clock"
	"github.com/nguyentantai21042004/digest-flow/internal/ratelimit"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// fastLimiter keeps the window and cooldown defaults but makes the
// spacing between requests negligible so sleeps are easy to assert.
func fastLimiter(clk clock.Clock) *ratelimit.Limiter {
	return ratelimit.New(ratelimit.Config{MinInterval: time.Nanosecond}, clk)
}

func chunkJSON(overview, title string, importance int, continuing ...string) string {
	if continuing == nil {
		continuing = []string{}
	}
	body := map[string]any{
		"概要": overview,
		"ポイント": []map[string]any{
			{"タイトル": title, "説明": title + "の説明", "重要度": importance},
		},
		"文脈": map[string]any{
			"前との関係":  "続き",
			"継続トピック": continuing,
			"新規トピック": []string{title},
		},
	}
	b, _ := json.Marshal(body)
	return string(b)
}

func quotaErr() error {
	return &backend.Error{Kind: backend.KindQuota, Err: fmt.Errorf("429 resource exhausted")}
}

// scriptedBackend answers by chunk index, parsed back out of the prompt.
type scriptedBackend struct {
	mu      sync.Mutex
	calls   map[int]int
	prompts []string
	reply   func(index, call int, prompt string) (string, error)
}

func newScripted(reply func(index, call int, prompt string) (string, error)) *scriptedBackend {
	return &scriptedBackend{calls: make(map[int]int), reply: reply}
}

func (b *scriptedBackend) Generate(ctx context.Context, prompt string, _ backend.GenerationConfig) (string, error) {
	index := 0
	if i := strings.Index(prompt, "分割のうちの"); i >= 0 {
		_, _ = fmt.Sscanf(prompt[i+len("分割のうちの"):], "%d", &index)
	}

	b.mu.Lock()
	b.calls[index]++
	call := b.calls[index]
	b.prompts = append(b.prompts, prompt)
	b.mu.Unlock()

	return b.reply(index, call, prompt)
}

func (b *scriptedBackend) total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		n += c
	}
	return n
}

func (b *scriptedBackend) callsFor(index int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[index]
}
