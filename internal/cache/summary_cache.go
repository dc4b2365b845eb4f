// Package cache memoizes finished summaries by transcript content.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/nguyentantai21042004/digest-flow/internal/clock"
)

const (
	DefaultTTL        = time.Hour
	DefaultMaxEntries = 100
)

// Config tunes a SummaryCache. Zero fields take the defaults.
type Config struct {
	TTL        time.Duration
	MaxEntries int
}

// SummaryCache maps a transcript to its formatted summary. It is safe
// for concurrent use and lives only in memory.
type SummaryCache struct {
	mu      sync.Mutex
	entries *TTL[string, string]
}

// New creates a SummaryCache. A nil clock means the system clock.
func New(cfg Config, clk clock.Clock) *SummaryCache {
	if clk == nil {
		clk = clock.Real()
	}
	lru := NewLRU[string, Timed[string]](cfg.MaxEntries)
	return &SummaryCache{
		entries: NewTTL[string, string](lru, cfg.TTL, clk.Now),
	}
}

// Key returns the hex SHA-256 of text. Any byte difference gives a
// different key.
func Key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func (c *SummaryCache) Get(text string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Get(Key(text))
}

func (c *SummaryCache) Put(text, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Set(Key(text), value)
}

func (c *SummaryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}
