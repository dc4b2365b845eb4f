package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "digest-flow",
	Short: "Summarize long video transcripts with Gemini, chunk by chunk",
	Long: `digest-flow splits long transcripts into overlapping chunks, summarizes
each chunk with the context of the ones before it, and combines the results
into one structured summary exported as markdown, docx or html.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml (optional)")
	rootCmd.AddCommand(summarizeCmd, watchCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
