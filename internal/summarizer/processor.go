package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nguyentantai21042004/digest-flow/internal/backend"
	"github.com/nguyentantai21042004/digest-flow/internal/clock"
	"github.com/nguyentantai21042004/digest-flow/internal/logger"
	"github.com/nguyentantai21042004/digest-flow/internal/memory"
	"github.com/nguyentantai21042004/digest-flow/internal/metrics"
	"github.com/nguyentantai21042004/digest-flow/internal/ratelimit"
	"github.com/nguyentantai21042004/digest-flow/internal/summary"
)

const (
	DefaultMaxRetries = 3

	transientRetryDelay = time.Second
	quotaBaseDelay      = time.Second
)

// ChunkProcessor drives one chunk through the backend with retries.
type ChunkProcessor struct {
	generator  backend.Generator
	limiter    *ratelimit.Limiter
	clock      clock.Clock
	generation backend.GenerationConfig
	maxRetries int
	logger     logger.Logger
	metrics    *metrics.Metrics
}

// NewChunkProcessor wires a processor. limiter is shared with every
// other processor in the process.
func NewChunkProcessor(gen backend.Generator, limiter *ratelimit.Limiter, clk clock.Clock, generation backend.GenerationConfig, maxRetries int, log logger.Logger, m *metrics.Metrics) *ChunkProcessor {
	if clk == nil {
		clk = clock.Real()
	}
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &ChunkProcessor{
		generator:  gen,
		limiter:    limiter,
		clock:      clk,
		generation: generation,
		maxRetries: maxRetries,
		logger:     log,
		metrics:    m,
	}
}

// Process returns the parsed result for chunk and appends it to mem.
func (p *ChunkProcessor) Process(ctx context.Context, chunk summary.TextChunk, mem *memory.Memory) (summary.ChunkResult, error) {
	var result summary.ChunkResult
	err := p.retry(ctx, chunk, func() (backend.ErrorKind, error) {
		var (
			kind backend.ErrorKind
			err  error
		)
		result, kind, err = p.attempt(ctx, chunk, mem)
		return kind, err
	})
	if err != nil {
		return summary.ChunkResult{}, err
	}

	mem.Append(result)
	return result, nil
}

// ProofreadChunk returns the corrected text of chunk under the same
// limiter and retry policy as Process.
func (p *ChunkProcessor) ProofreadChunk(ctx context.Context, chunk summary.TextChunk) (string, error) {
	var text string
	err := p.retry(ctx, chunk, func() (backend.ErrorKind, error) {
		var (
			kind backend.ErrorKind
			err  error
		)
		text, kind, err = p.proofreadAttempt(ctx, chunk)
		return kind, err
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

// retry runs call up to maxRetries times. Quota signals back off
// exponentially (1s, 2s, 4s, ...), other failures wait a flat second.
// Cancellation stops at once.
func (p *ChunkProcessor) retry(ctx context.Context, chunk summary.TextChunk, call func() (backend.ErrorKind, error)) error {
	var lastErr error

	for attempt := 0; attempt < p.maxRetries; attempt++ {
		p.logger.Debug(ctx, "Chunk %d/%d attempt %d/%d", chunk.Index, chunk.Total, attempt+1, p.maxRetries)

		kind, err := call()
		if err == nil {
			p.limiter.ReportSuccess()
			p.observe(metrics.OutcomeSuccess)
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			p.observe(metrics.OutcomeCancelled)
			return summary.Cancelled(ctx.Err())
		}
		if kind == backend.KindCancelled {
			// The backend timed out on its own; the caller is still waiting.
			kind = backend.KindTransient
		}

		retriesLeft := attempt < p.maxRetries-1
		var delay time.Duration

		if kind == backend.KindQuota {
			lastErr = fmt.Errorf("%w: %w", summary.ErrQuotaExceeded, err)
			p.limiter.ReportQuotaExceeded()
			p.observe(metrics.OutcomeQuota)
			delay = quotaBaseDelay << attempt
			p.logger.Warn(ctx, "Chunk %d/%d rate limited (attempt %d/%d): %v", chunk.Index, chunk.Total, attempt+1, p.maxRetries, err)
		} else {
			p.limiter.ReportError()
			p.observe(outcomeOf(err))
			delay = transientRetryDelay
			p.logger.Warn(ctx, "Chunk %d/%d failed (attempt %d/%d): %v", chunk.Index, chunk.Total, attempt+1, p.maxRetries, err)
		}

		if !retriesLeft {
			break
		}
		if err := p.clock.Sleep(ctx, delay); err != nil {
			p.observe(metrics.OutcomeCancelled)
			return summary.Cancelled(err)
		}
	}

	return &summary.ChunkError{
		Index:    chunk.Index,
		Total:    chunk.Total,
		Attempts: p.maxRetries,
		Err:      lastErr,
	}
}

// attempt runs one request. The returned kind is only meaningful when
// err is non-nil.
func (p *ChunkProcessor) attempt(ctx context.Context, chunk summary.TextChunk, mem *memory.Memory) (summary.ChunkResult, backend.ErrorKind, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return summary.ChunkResult{}, backend.KindCancelled, fmt.Errorf("wait for rate limiter: %w", err)
	}

	text, err := p.generator.Generate(ctx, buildPrompt(chunk, mem.Summarize()), p.generation)
	if err != nil {
		return summary.ChunkResult{}, backend.Classify(err), err
	}
	if err := ctx.Err(); err != nil {
		return summary.ChunkResult{}, backend.KindCancelled, err
	}

	if strings.TrimSpace(text) == "" {
		return summary.ChunkResult{}, backend.KindTransient, summary.ErrEmptyResponse
	}

	result, err := ParseChunkResult(text)
	if err != nil {
		return summary.ChunkResult{}, backend.KindTransient, err
	}
	return result, backend.KindTransient, nil
}

func (p *ChunkProcessor) proofreadAttempt(ctx context.Context, chunk summary.TextChunk) (string, backend.ErrorKind, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", backend.KindCancelled, fmt.Errorf("wait for rate limiter: %w", err)
	}

	text, err := p.generator.Generate(ctx, buildProofreadPrompt(chunk), p.generation)
	if err != nil {
		return "", backend.Classify(err), err
	}
	if err := ctx.Err(); err != nil {
		return "", backend.KindCancelled, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", backend.KindTransient, summary.ErrEmptyResponse
	}
	return text, backend.KindTransient, nil
}

func (p *ChunkProcessor) observe(outcome string) {
	p.metrics.ObserveAttempt(outcome)
	p.metrics.SetBackoffMultiplier(p.limiter.Snapshot().BackoffMultiplier)
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, summary.ErrEmptyResponse):
		return metrics.OutcomeEmpty
	case errors.Is(err, summary.ErrMalformedResponse):
		return metrics.OutcomeMalformed
	default:
		return metrics.OutcomeTransient
	}
}
