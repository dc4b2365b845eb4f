package main

import (
	"context"
	"errors"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/digest-flow/internal/config"
	"github.com/nguyentantai21042004/digest-flow/internal/watcher"
)

var watchExisting bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch paths.input and summarize every new transcript or media file",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchExisting, "existing", true, "also process files already in the input directory")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := ensureDirectories(cfg.Paths.Input, cfg.Paths.Output, cfg.Paths.Archived, cfg.Paths.Temp); err != nil {
		return err
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	a.serveMetrics(ctx)

	w, err := watcher.New(watcher.Options{
		InputDir:        cfg.Paths.Input,
		Accept:          a.resolver.Supports,
		Handler:         a.processor.ProcessAndArchive,
		MaxConcurrent:   cfg.Performance.MaxConcurrent,
		ProcessExisting: watchExisting,
		Logger:          a.logger,
	})
	if err != nil {
		return err
	}
	defer w.Stop()

	a.logger.Info(ctx, "========================================")
	a.logger.Info(ctx, "digest-flow is ready")
	a.logger.Info(ctx, "System: %s/%s, %d CPUs", runtime.GOOS, runtime.GOARCH, runtime.NumCPU())
	a.logger.Info(ctx, "Monitoring: %s", cfg.Paths.Input)
	a.logger.Info(ctx, "Output: %s (%v)", cfg.Paths.Output, cfg.Output.Formats)
	a.logger.Info(ctx, "Speech recognition: %t", cfg.Whisper.Enabled())
	a.logger.Info(ctx, "Press Ctrl+C to stop")
	a.logger.Info(ctx, "========================================")

	err = w.Start(ctx)
	a.logger.Info(ctx, "digest-flow stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
