package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/digest-flow/internal/export"
	"github.com/nguyentantai21042004/digest-flow/internal/summary"
	"github.com/nguyentantai21042004/digest-flow/internal/transcript"
)

func (p *implProcessor) Process(ctx context.Context, ref string) ([]string, error) {
	start := p.clock.Now()
	title := Title(ref)

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Starting: %s", ref)
	p.logger.Info(ctx, "========================================")

	text, err := p.source.Fetch(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("fetch transcript: %w", err)
	}
	p.logger.Info(ctx, "Transcript ready: %d runes", len([]rune(text)))

	digest, err := p.summarizer.SummarizeWithProgress(ctx, text, func(fraction float64, msg string) {
		p.logger.Debug(ctx, "[%s] %3.0f%% %s", title, fraction*100, msg)
	})
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}

	doc := export.Document{
		Title:     title,
		Source:    ref,
		CreatedAt: p.clock.Now(),
		Summary:   digest,
	}
	if p.opts.IncludeTranscript {
		if doc.Transcript, err = p.transcriptFor(ctx, text); err != nil {
			return nil, err
		}
	}

	paths, err := p.exporter.Export(ctx, doc, p.opts.OutputDir)
	if err != nil {
		return paths, fmt.Errorf("export: %w", err)
	}

	p.logger.Info(ctx, "Completed %s in %s -> %s", title, p.clock.Now().Sub(start), strings.Join(paths, ", "))
	return paths, nil
}

// transcriptFor returns the transcript text to export. Only
// cancellation is fatal; any other proofreading failure keeps the raw text.
func (p *implProcessor) transcriptFor(ctx context.Context, text string) (string, error) {
	if !p.opts.ProofreadTranscript {
		return text, nil
	}

	proofread, err := p.summarizer.Proofread(ctx, text)
	if err != nil {
		if errors.Is(err, summary.ErrCancelled) {
			return "", fmt.Errorf("proofread: %w", err)
		}
		p.logger.Warn(ctx, "Proofreading failed, exporting raw transcript: %v", err)
		return text, nil
	}
	return proofread, nil
}

func (p *implProcessor) ProcessAndArchive(ctx context.Context, path string) error {
	if _, err := p.Process(ctx, path); err != nil {
		return err
	}

	if err := p.moveToArchived(ctx, path); err != nil {
		p.logger.Warn(ctx, "Failed to move input to archived folder: %v", err)
	}
	return nil
}

// Title names the output of ref: the file name without extension for
// local files, "youtube-<id>" for video references.
func Title(ref string) string {
	if _, err := os.Stat(ref); err == nil {
		base := filepath.Base(ref)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	if id, ok := transcript.ExtractVideoID(ref); ok {
		return "youtube-" + id
	}
	return export.FileName(ref)
}
