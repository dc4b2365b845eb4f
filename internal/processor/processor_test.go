package processor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/digest-flow/internal/clock"
	"github.com/nguyentantai21042004/digest-flow/internal/export"
	"github.com/nguyentantai21042004/digest-flow/internal/summarizer"
	"github.com/nguyentantai21042004/digest-flow/internal/summary"
	"github.com/nguyentantai21042004/digest-flow/internal/transcript"
)

type stubSummarizer struct {
	got          []string
	err          error
	proofreadErr error
	proofread    []string
}

func (s *stubSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	return s.SummarizeWithProgress(ctx, text, nil)
}

func (s *stubSummarizer) SummarizeWithProgress(_ context.Context, text string, progress summarizer.ProgressFunc) (string, error) {
	s.got = append(s.got, text)
	if progress != nil {
		progress(1, "done")
	}
	if s.err != nil {
		return "", s.err
	}
	return "## 全体の要約\n\n要約: " + text + "\n", nil
}

func (s *stubSummarizer) Proofread(_ context.Context, text string) (string, error) {
	s.proofread = append(s.proofread, text)
	if s.proofreadErr != nil {
		return "", s.proofreadErr
	}
	return "校閲: " + text, nil
}

type recordingExporter struct {
	docs []export.Document
}

func (e *recordingExporter) Export(_ context.Context, doc export.Document, dir string) ([]string, error) {
	e.docs = append(e.docs, doc)
	return []string{filepath.Join(dir, doc.Title+".md")}, nil
}

func newRecordingProcessor(opts Options, sum *stubSummarizer) (Processor, *recordingExporter) {
	exp := &recordingExporter{}
	clk := clock.NewFake(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	return New(opts, transcript.NewResolver(nil, nil, nil, nil), sum, exp, clk, nil), exp
}

type setup struct {
	input, output, archive string
	sum                    *stubSummarizer
	proc                   Processor
}

func newSetup(t *testing.T, opts Options) *setup {
	t.Helper()
	root := t.TempDir()
	s := &setup{
		input:   filepath.Join(root, "input"),
		output:  filepath.Join(root, "output"),
		archive: filepath.Join(root, "archived"),
		sum:     &stubSummarizer{},
	}
	require.NoError(t, os.MkdirAll(s.input, 0755))

	opts.OutputDir = s.output
	opts.ArchiveDir = s.archive

	exp, err := export.New([]string{export.FormatMarkdown}, nil)
	require.NoError(t, err)

	clk := clock.NewFake(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	s.proc = New(opts, transcript.NewResolver(nil, nil, nil, nil), s.sum, exp, clk, nil)
	return s
}

func (s *setup) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(s.input, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestProcess_ExportsSummary(t *testing.T) {
	s := newSetup(t, Options{IncludeTranscript: true})
	path := s.write(t, "lecture.srt", "1\n00:00:01,000 --> 00:00:02,000\n講義です。\n")

	paths, err := s.proc.Process(context.Background(), path)
	require.NoError(t, err)

	require.Equal(t, []string{filepath.Join(s.output, "lecture.md")}, paths)
	assert.Equal(t, []string{"講義です。"}, s.sum.got)

	md, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Contains(t, string(md), "# lecture\n\n_2026-05-01 12:00_")
	assert.Contains(t, string(md), "要約: 講義です。")

	// Process alone leaves the input in place.
	assert.FileExists(t, path)
}

func TestProcess_TranscriptExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "talk.txt")
	require.NoError(t, os.WriteFile(path, []byte("えー、本文です。"), 0644))

	tests := []struct {
		name          string
		opts          Options
		proofreadErr  error
		want          string
		wantProofread int
	}{
		{name: "omitted", opts: Options{}, want: ""},
		{name: "raw", opts: Options{IncludeTranscript: true}, want: "えー、本文です。"},
		{name: "proofread", opts: Options{IncludeTranscript: true, ProofreadTranscript: true}, want: "校閲: えー、本文です。", wantProofread: 1},
		{name: "proofread only with transcript", opts: Options{ProofreadTranscript: true}, want: ""},
		{name: "proofread failure keeps raw", opts: Options{IncludeTranscript: true, ProofreadTranscript: true}, proofreadErr: summary.ErrNoValidResults, want: "えー、本文です。", wantProofread: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sum := &stubSummarizer{proofreadErr: tt.proofreadErr}
			proc, exp := newRecordingProcessor(tt.opts, sum)

			_, err := proc.Process(context.Background(), path)
			require.NoError(t, err)

			require.Len(t, exp.docs, 1)
			assert.Equal(t, tt.want, exp.docs[0].Transcript)
			assert.Len(t, sum.proofread, tt.wantProofread)
		})
	}
}

func TestProcess_ProofreadCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "talk.txt")
	require.NoError(t, os.WriteFile(path, []byte("本文です。"), 0644))

	sum := &stubSummarizer{proofreadErr: summary.Cancelled(context.Canceled)}
	proc, exp := newRecordingProcessor(Options{IncludeTranscript: true, ProofreadTranscript: true}, sum)

	_, err := proc.Process(context.Background(), path)
	require.Error(t, err)

	assert.ErrorIs(t, err, summary.ErrCancelled)
	assert.Empty(t, exp.docs)
}

func TestProcess_Errors(t *testing.T) {
	s := newSetup(t, Options{})

	_, err := s.proc.Process(context.Background(), filepath.Join(s.input, "missing.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch transcript")

	s.sum.err = errors.New("backend down")
	_, err = s.proc.Process(context.Background(), s.write(t, "a.txt", "本文。"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "summarize")
}

func TestProcessAndArchive(t *testing.T) {
	s := newSetup(t, Options{})

	first := s.write(t, "talk.txt", "一回目。")
	require.NoError(t, s.proc.ProcessAndArchive(context.Background(), first))
	assert.NoFileExists(t, first)
	assert.FileExists(t, filepath.Join(s.archive, "talk.txt"))

	second := s.write(t, "talk.txt", "二回目。")
	require.NoError(t, s.proc.ProcessAndArchive(context.Background(), second))
	assert.FileExists(t, filepath.Join(s.archive, "talk-1.txt"))
}

func TestProcessAndArchive_FailureKeepsInput(t *testing.T) {
	s := newSetup(t, Options{})
	s.sum.err = errors.New("backend down")

	path := s.write(t, "talk.txt", "本文。")
	require.Error(t, s.proc.ProcessAndArchive(context.Background(), path))
	assert.FileExists(t, path)
}

func TestTitle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "講義 第1回.txt")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	assert.Equal(t, "講義 第1回", Title(path))
	assert.Equal(t, "youtube-dQw4w9WgXcQ", Title("https://youtu.be/dQw4w9WgXcQ"))
}
