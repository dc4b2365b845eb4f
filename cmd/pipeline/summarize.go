package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nguyentantai21042004/digest-flow/internal/config"
	"github.com/nguyentantai21042004/digest-flow/internal/transcript"
)

var summarizeOutDir string

var summarizeCmd = &cobra.Command{
	Use:   "summarize <file|dir|url|video-id>...",
	Short: "Summarize transcripts, local media or videos and export the results",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSummarize,
}

func init() {
	summarizeCmd.Flags().StringVarP(&summarizeOutDir, "out", "o", "", "output directory (defaults to paths.output)")
}

func runSummarize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if summarizeOutDir != "" {
		cfg.Paths.Output = summarizeOutDir
	}
	if err := ensureDirectories(cfg.Paths.Output, cfg.Paths.Temp); err != nil {
		return err
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	a.serveMetrics(ctx)

	refs, err := expandRefs(args, a.resolver)
	if err != nil {
		return err
	}
	a.logger.Info(ctx, "Summarizing %d input(s), %d at a time", len(refs), cfg.Performance.MaxConcurrent)

	var (
		g      errgroup.Group
		failed atomic.Int32
	)
	g.SetLimit(cfg.Performance.MaxConcurrent)

	for _, ref := range refs {
		g.Go(func() error {
			paths, err := a.processor.Process(ctx, ref)
			if err != nil {
				a.logger.Error(ctx, "Failed %s: %v", ref, err)
				failed.Add(1)
				return nil
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	if n := failed.Load(); n > 0 {
		return fmt.Errorf("%d of %d inputs failed", n, len(refs))
	}
	return nil
}

// expandRefs replaces each directory argument with the supported files
// directly inside it. Other arguments pass through unchanged.
func expandRefs(args []string, resolver *transcript.Resolver) ([]string, error) {
	var refs []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			refs = append(refs, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("read dir %s: %w", arg, err)
		}
		var files []string
		for _, e := range entries {
			if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
				continue
			}
			path := filepath.Join(arg, e.Name())
			if resolver.Supports(path) {
				files = append(files, path)
			}
		}
		sort.Strings(files)
		refs = append(refs, files...)
	}

	if len(refs) == 0 {
		return nil, fmt.Errorf("no supported inputs found")
	}
	return refs, nil
}
