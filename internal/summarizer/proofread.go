package summarizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/digest-flow/internal/chunker"
	"github.com/nguyentantai21042004/digest-flow/internal/logger"
)

// DefaultProofreadChunkSize is the rune budget of one proofreading request.
const DefaultProofreadChunkSize = 2000

// Proofread splits the transcript on sentence boundaries without overlap
// and corrects each piece in order. Unlike summarization, a chunk that
// still fails after its retries fails the whole call, since dropping it
// would silently lose part of the text.
func (s *implSummarizer) Proofread(ctx context.Context, transcript string) (string, error) {
	ctx = logger.WithRunID(ctx, uuid.NewString())

	chunks, err := chunker.Split(transcript, s.opts.ProofreadChunkSize, 0)
	if err != nil {
		return "", fmt.Errorf("split transcript: %w", err)
	}
	s.logger.Info(ctx, "Proofreading %d chunks", len(chunks))

	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		s.logger.Info(ctx, "[%d/%d] Proofreading chunk (%d runes)", c.Index, c.Total, len([]rune(c.Content)))

		text, err := s.processor.ProofreadChunk(ctx, c)
		if err != nil {
			return "", fmt.Errorf("proofread chunk %d/%d: %w", c.Index, c.Total, err)
		}
		parts = append(parts, text)
	}

	s.logger.Info(ctx, "Proofreading complete")
	return strings.Join(parts, "\n\n"), nil
}
