package summarizer

import (
	"github.com/nguyentantai21042004/digest-flow/internal/backend"
	"github.com/nguyentantai21042004/digest-flow/internal/cache"
	"github.com/nguyentantai21042004/digest-flow/internal/chunker"
	"github.com/nguyentantai21042004/digest-flow/internal/clock"
	"github.com/nguyentantai21042004/digest-flow/internal/logger"
	"github.com/nguyentantai21042004/digest-flow/internal/memory"
	"github.com/nguyentantai21042004/digest-flow/internal/metrics"
	"github.com/nguyentantai21042004/digest-flow/internal/ratelimit"
)

// Options are the per-pipeline tunables. Zero values take defaults.
type Options struct {
	ChunkSize      int
	OverlapSize    int
	MaxRetries     int
	MemoryCapacity int
	// ProofreadChunkSize bounds each proofreading request in runes.
	ProofreadChunkSize int
	Generation         backend.GenerationConfig
}

// Deps are the collaborators a pipeline needs. Limiter and Cache are
// meant to be shared by every pipeline in the process.
type Deps struct {
	Generator backend.Generator
	Limiter   *ratelimit.Limiter
	Cache     *cache.SummaryCache
	Clock     clock.Clock
	Logger    logger.Logger
	Metrics   *metrics.Metrics
}

type implSummarizer struct {
	opts      Options
	processor *ChunkProcessor
	cache     *cache.SummaryCache
	clock     clock.Clock
	logger    logger.Logger
	metrics   *metrics.Metrics
}

// New creates a Summarizer. Missing Limiter, Cache, Clock or Logger
// are replaced with private defaults.
func New(opts Options, deps Deps) Summarizer {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = chunker.DefaultChunkSize
	}
	if opts.OverlapSize <= 0 {
		opts.OverlapSize = chunker.DefaultOverlapSize
	}
	if opts.ProofreadChunkSize <= 0 {
		opts.ProofreadChunkSize = DefaultProofreadChunkSize
	}
	if opts.MemoryCapacity <= 0 {
		opts.MemoryCapacity = memory.DefaultCapacity
	}
	if opts.Generation == (backend.GenerationConfig{}) {
		opts.Generation = backend.DefaultGenerationConfig()
	}

	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNop()
	}
	if deps.Limiter == nil {
		deps.Limiter = ratelimit.New(ratelimit.Config{}, deps.Clock)
	}
	if deps.Cache == nil {
		deps.Cache = cache.New(cache.Config{}, deps.Clock)
	}

	return &implSummarizer{
		opts:      opts,
		processor: NewChunkProcessor(deps.Generator, deps.Limiter, deps.Clock, opts.Generation, opts.MaxRetries, deps.Logger, deps.Metrics),
		cache:     deps.Cache,
		clock:     deps.Clock,
		logger:    deps.Logger,
		metrics:   deps.Metrics,
	}
}
