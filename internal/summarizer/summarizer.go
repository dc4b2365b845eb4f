package summarizer

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/digest-flow/internal/cache"
	"github.com/nguyentantai21042004/digest-flow/internal/chunker"
	"github.com/nguyentantai21042004/digest-flow/internal/combiner"
	"github.com/nguyentantai21042004/digest-flow/internal/logger"
	"github.com/nguyentantai21042004/digest-flow/internal/memory"
	"github.com/nguyentantai21042004/digest-flow/internal/summary"
)

// Progress milestones.
const (
	progressChunked   = 0.1
	progressCombining = 0.9
	progressDone      = 1.0
)

// Summarize runs the pipeline without a progress sink.
func (s *implSummarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	return s.SummarizeWithProgress(ctx, transcript, nil)
}

// SummarizeWithProgress checks the cache, then splits the transcript and
// processes chunks strictly in order so each prompt sees the results
// before it. Failed chunks are left out; the call fails only when every
// chunk fails or ctx is cancelled.
func (s *implSummarizer) SummarizeWithProgress(ctx context.Context, transcript string, progress ProgressFunc) (out string, err error) {
	if progress == nil {
		progress = func(float64, string) {}
	}

	ctx = logger.WithRunID(ctx, uuid.NewString())
	start := s.clock.Now()
	fraction := 0.0

	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
			progress(fraction, fmt.Sprintf("要約に失敗しました: %v", err))
		}
		s.metrics.ObserveSummarize(status, s.clock.Now().Sub(start))
	}()

	if cached, ok := s.cache.Get(transcript); ok {
		s.metrics.ObserveCache(true)
		s.logger.Info(ctx, "Summary cache hit (%s)", shortKey(transcript))
		progress(progressDone, "キャッシュから要約を取得しました")
		return cached, nil
	}
	s.metrics.ObserveCache(false)

	chunks, err := chunker.Split(transcript, s.opts.ChunkSize, s.opts.OverlapSize)
	if err != nil {
		return "", fmt.Errorf("split transcript: %w", err)
	}

	fraction = progressChunked
	s.logger.Info(ctx, "Split transcript into %d chunks", len(chunks))
	progress(fraction, fmt.Sprintf("テキストを%d個のチャンクに分割しました", len(chunks)))

	mem := memory.New(s.opts.MemoryCapacity)
	results := make([]summary.ChunkResult, 0, len(chunks))
	var failures []error

	for _, c := range chunks {
		s.logger.Info(ctx, "[%d/%d] Summarizing chunk (%d runes)", c.Index, c.Total, len([]rune(c.Content)))

		result, err := s.processor.Process(ctx, c, mem)
		if err != nil {
			if errors.Is(err, summary.ErrCancelled) {
				return "", err
			}
			s.logger.Error(ctx, "Chunk %d/%d dropped: %v", c.Index, c.Total, err)
			s.metrics.ObserveChunkFailure()
			failures = append(failures, err)
		} else {
			results = append(results, result)
		}

		fraction = progressChunked + (progressCombining-progressChunked)*float64(c.Index)/float64(c.Total)
		progress(fraction, fmt.Sprintf("チャンク %d/%d の処理が完了しました", c.Index, c.Total))
	}

	if len(results) == 0 {
		return "", fmt.Errorf("%w: %w", summary.ErrNoValidResults, errors.Join(failures...))
	}

	fraction = progressCombining
	progress(fraction, "要約を統合しています")

	combined, err := combiner.Combine(results)
	if err != nil {
		return "", fmt.Errorf("combine results: %w", err)
	}
	out = combiner.Format(combined)

	s.cache.Put(transcript, out)
	s.logger.Info(ctx, "Summary complete: %d chunks ok, %d failed", len(results), len(failures))
	progress(progressDone, "要約が完了しました")

	return out, nil
}

func shortKey(transcript string) string {
	return cache.Key(transcript)[:12]
}
