package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/nguyentantai21042004/digest-flow/internal/backend"
	"github.com/nguyentantai21042004/digest-flow/internal/cache"
	"github.com/nguyentantai21042004/digest-flow/internal/clock"
	"github.com/nguyentantai21042004/digest-flow/internal/config"
	"github.com/nguyentantai21042004/digest-flow/internal/export"
	"github.com/nguyentantai21042004/digest-flow/internal/logger"
	"github.com/nguyentantai21042004/digest-flow/internal/metrics"
	"github.com/nguyentantai21042004/digest-flow/internal/processor"
	"github.com/nguyentantai21042004/digest-flow/internal/ratelimit"
	"github.com/nguyentantai21042004/digest-flow/internal/summarizer"
	"github.com/nguyentantai21042004/digest-flow/internal/transcript"
	"github.com/nguyentantai21042004/digest-flow/pkg/executor"
)

// app holds the process-wide components. The limiter and cache inside
// the summarizer are shared by every file processed.
type app struct {
	cfg       *config.Config
	logger    logger.Logger
	metrics   *metrics.Metrics
	resolver  *transcript.Resolver
	processor processor.Processor
}

func newApp(cfg *config.Config) (*app, error) {
	log := logger.NewWithWriter(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)

	gen, err := backend.NewGemini(cfg.Gemini.APIKeys, cfg.Gemini.Model, log)
	if err != nil {
		return nil, fmt.Errorf("create gemini backend: %w", err)
	}

	clk := clock.Real()
	m := metrics.New()

	sum := summarizer.New(summarizer.Options{
		ChunkSize:          cfg.Chunking.ChunkSize,
		OverlapSize:        cfg.Chunking.OverlapSize,
		ProofreadChunkSize: cfg.Chunking.ProofreadSize,
		MaxRetries:         cfg.Retry.MaxRetries,
		MemoryCapacity:     cfg.Memory.Capacity,
		Generation: backend.GenerationConfig{
			Temperature:     cfg.Gemini.Temperature,
			TopP:            cfg.Gemini.TopP,
			TopK:            cfg.Gemini.TopK,
			MaxOutputTokens: cfg.Gemini.MaxOutputTokens,
		},
	}, summarizer.Deps{
		Generator: gen,
		Limiter: ratelimit.New(ratelimit.Config{
			Window:      cfg.RateLimit.Window,
			MaxRequests: cfg.RateLimit.MaxRequests,
			MinInterval: cfg.RateLimit.MinInterval,
			MaxInterval: cfg.RateLimit.MaxInterval,
		}, clk),
		Cache:   cache.New(cache.Config{TTL: cfg.Cache.TTL, MaxEntries: cfg.Cache.MaxEntries}, clk),
		Clock:   clk,
		Logger:  log,
		Metrics: m,
	})

	exp, err := export.New(cfg.Output.Formats, log)
	if err != nil {
		return nil, fmt.Errorf("create exporter: %w", err)
	}

	resolver := newResolver(cfg, executor.New(), log)

	proc := processor.New(processor.Options{
		OutputDir:           cfg.Paths.Output,
		ArchiveDir:          cfg.Paths.Archived,
		IncludeTranscript:   cfg.Output.IncludeTranscript,
		ProofreadTranscript: cfg.Output.ProofreadTranscript,
	}, resolver, sum, exp, clk, log)

	return &app{
		cfg:       cfg,
		logger:    log,
		metrics:   m,
		resolver:  resolver,
		processor: proc,
	}, nil
}

func newResolver(cfg *config.Config, exec executor.Executor, log logger.Logger) *transcript.Resolver {
	var subtitles transcript.Source
	if cfg.Transcript.FetchCommand != "" {
		subtitles = &transcript.CommandSource{
			Executor:  exec,
			Binary:    cfg.Transcript.FetchCommand,
			Args:      cfg.Transcript.FetchArgs,
			Languages: cfg.Transcript.Languages,
			Logger:    log,
		}
	}

	var whisper *transcript.WhisperSource
	if cfg.Whisper.Enabled() {
		whisper = transcript.NewWhisperSource(transcript.WhisperConfig{
			BinaryPath: cfg.Whisper.BinaryPath,
			ModelPath:  cfg.Whisper.ModelPath,
			Language:   cfg.Whisper.Language,
			Prompt:     cfg.Whisper.Prompt,
			Threads:    cfg.Whisper.Threads,
			FFmpegPath: cfg.FFmpeg.BinaryPath,
			TempDir:    cfg.Paths.Temp,
		}, exec, log)
	}

	var downloader *transcript.Downloader
	if cfg.Transcript.DownloadCommand != "" {
		downloader = &transcript.Downloader{
			Executor: exec,
			Binary:   cfg.Transcript.DownloadCommand,
			Args:     cfg.Transcript.DownloadArgs,
			TempDir:  cfg.Paths.Temp,
		}
	}

	return transcript.NewResolver(subtitles, whisper, downloader, log)
}

// serveMetrics exposes /metrics on cfg.Metrics.Addr until ctx ends.
// It returns immediately when no address is configured.
func (a *app) serveMetrics(ctx context.Context) {
	if a.cfg.Metrics.Addr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	srv := &http.Server{
		Addr:              a.cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.logger.Info(ctx, "Metrics listening on %s/metrics", a.cfg.Metrics.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error(ctx, "Metrics server error: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}

// ensureDirectories creates the directories the pipeline writes to.
func ensureDirectories(dirs ...string) error {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}
