package summarizer

import "context"

// Summarizer turns a transcript into a combined, formatted summary.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
	SummarizeWithProgress(ctx context.Context, transcript string, progress ProgressFunc) (string, error)
	// Proofread returns a cleaned-up copy of the transcript with fillers
	// and timestamps removed, one paragraph per chunk.
	Proofread(ctx context.Context, transcript string) (string, error)
}

// ProgressFunc receives a completion fraction in [0,1] and a message.
type ProgressFunc func(fraction float64, message string)
