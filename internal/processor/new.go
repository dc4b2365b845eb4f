package processor

import (
	"github.com/nguyentantai21042004/digest-flow/internal/clock"
	"github.com/nguyentantai21042004/digest-flow/internal/export"
	"github.com/nguyentantai21042004/digest-flow/internal/logger"
	"github.com/nguyentantai21042004/digest-flow/internal/summarizer"
	"github.com/nguyentantai21042004/digest-flow/internal/transcript"
)

// Options controls where results go.
type Options struct {
	OutputDir         string
	ArchiveDir        string
	IncludeTranscript bool
	// ProofreadTranscript replaces the exported transcript with its
	// proofread copy. A failed proofread falls back to the raw text.
	ProofreadTranscript bool
}

type implProcessor struct {
	opts       Options
	source     transcript.Source
	summarizer summarizer.Summarizer
	exporter   export.Exporter
	clock      clock.Clock
	logger     logger.Logger
}

// New creates a Processor.
func New(opts Options, src transcript.Source, sum summarizer.Summarizer, exp export.Exporter, clk clock.Clock, log logger.Logger) Processor {
	if clk == nil {
		clk = clock.Real()
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &implProcessor{
		opts:       opts,
		source:     src,
		summarizer: sum,
		exporter:   exp,
		clock:      clk,
		logger:     log,
	}
}
