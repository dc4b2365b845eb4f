package transcript

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	name string
	args []string
}

// fakeExecutor records calls and delegates to run.
type fakeExecutor struct {
	mu    sync.Mutex
	calls []call
	run   func(name string, args []string) (string, error)
}

func (f *fakeExecutor) Execute(_ context.Context, name string, args ...string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{name: name, args: args})
	f.mu.Unlock()
	if f.run == nil {
		return "", nil
	}
	return f.run(name, args)
}

func (f *fakeExecutor) ExecuteInDir(ctx context.Context, _ string, name string, args ...string) (string, error) {
	return f.Execute(ctx, name, args...)
}

func argAfter(args []string, flag string) string {
	i := slices.Index(args, flag)
	if i < 0 || i+1 >= len(args) {
		return ""
	}
	return args[i+1]
}

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		ref  string
		want string
		ok   bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://example.com/", "", false},
		{"short", "", false},
	}

	for _, tt := range tests {
		got, ok := ExtractVideoID(tt.ref)
		assert.Equal(t, tt.ok, ok, tt.ref)
		assert.Equal(t, tt.want, got, tt.ref)
	}
}

func TestStripSRT(t *testing.T) {
	srt := "1\n00:00:01,000 --> 00:00:03,000\nこんにちは。\n\n2\n00:00:03,000 --> 00:00:05,000\nこんにちは。\n\n3\n00:00:05,000 --> 00:00:07,000\n今日は機械学習の話です。\n"

	assert.Equal(t, "こんにちは。 今日は機械学習の話です。", StripSRT(srt))
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "talk.txt")
	srt := filepath.Join(dir, "talk.srt")
	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(txt, []byte("\ufeff 本文です。\n"), 0o644))
	require.NoError(t, os.WriteFile(srt, []byte("1\n00:00:00,000 --> 00:00:01,000\n字幕です。\n"), 0o644))
	require.NoError(t, os.WriteFile(empty, []byte("   "), 0o644))

	var s FileSource
	ctx := context.Background()

	got, err := s.Fetch(ctx, txt)
	require.NoError(t, err)
	assert.Equal(t, "本文です。", got)

	got, err = s.Fetch(ctx, srt)
	require.NoError(t, err)
	assert.Equal(t, "字幕です。", got)

	_, err = s.Fetch(ctx, empty)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = s.Fetch(ctx, filepath.Join(dir, "video.mp4"))
	assert.Error(t, err)

	assert.True(t, s.Supports("a.SRT"))
	assert.False(t, s.Supports("a.mp4"))
}

func TestCommandSource_TriesLanguagesInOrder(t *testing.T) {
	exec := &fakeExecutor{run: func(_ string, args []string) (string, error) {
		if argAfter(args, "--lang") == "en" {
			return "  subtitles  \n", nil
		}
		return "", errors.New("no track")
	}}
	s := &CommandSource{
		Executor:  exec,
		Binary:    "fetch-subs",
		Args:      []string{"--id", "{id}", "--lang", "{lang}", "--url={url}"},
		Languages: []string{"ja", "en", "de"},
	}

	got, err := s.Fetch(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "subtitles", got)

	require.Len(t, exec.calls, 2)
	assert.Equal(t, []string{"--id", "dQw4w9WgXcQ", "--lang", "ja", "--url=https://www.youtube.com/watch?v=dQw4w9WgXcQ"}, exec.calls[0].args)
	assert.Equal(t, "en", argAfter(exec.calls[1].args, "--lang"))
}

func TestCommandSource_Unavailable(t *testing.T) {
	exec := &fakeExecutor{run: func(string, []string) (string, error) { return "\n", nil }}
	s := &CommandSource{Executor: exec, Binary: "fetch-subs", Args: []string{"{id}"}, Languages: []string{"ja", "en"}}

	_, err := s.Fetch(context.Background(), "dQw4w9WgXcQ")
	assert.ErrorIs(t, err, ErrUnavailable)
	// no {lang} placeholder, so a single run
	assert.Len(t, exec.calls, 1)
}

// whisperExecutor imitates ffmpeg and whisper-cli by writing the files
// they would produce.
func whisperExecutor(text string) *fakeExecutor {
	return &fakeExecutor{run: func(name string, args []string) (string, error) {
		switch name {
		case "ffmpeg":
			return "", os.WriteFile(args[len(args)-1], []byte("RIFF"), 0o644)
		case "whisper-cli":
			return "", os.WriteFile(argAfter(args, "--output-file")+".txt", []byte(text), 0o644)
		}
		return "", errors.New("unexpected command " + name)
	}}
}

func TestWhisperSource(t *testing.T) {
	tmp := t.TempDir()
	exec := whisperExecutor(" 音声の\n文字起こし。 \n")
	s := NewWhisperSource(WhisperConfig{
		BinaryPath: "whisper-cli",
		ModelPath:  "models/ggml-base.bin",
		Language:   "ja",
		Threads:    4,
		TempDir:    tmp,
	}, exec, nil)

	got, err := s.Fetch(context.Background(), "/videos/talk.mp4")
	require.NoError(t, err)
	assert.Equal(t, "音声の 文字起こし。", got)

	require.Len(t, exec.calls, 2)
	ffmpeg := exec.calls[0]
	assert.Equal(t, "/videos/talk.mp4", argAfter(ffmpeg.args, "-i"))
	assert.Equal(t, "16000", argAfter(ffmpeg.args, "-ar"))
	assert.Equal(t, "1", argAfter(ffmpeg.args, "-ac"))

	whisper := exec.calls[1]
	assert.Contains(t, whisper.args, "-otxt")
	assert.Equal(t, "ja", argAfter(whisper.args, "-l"))
	assert.Equal(t, "4", argAfter(whisper.args, "-t"))

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries, "work files must be removed")
}

func TestWhisperSource_EmptyOutput(t *testing.T) {
	s := NewWhisperSource(WhisperConfig{BinaryPath: "whisper-cli", TempDir: t.TempDir()}, whisperExecutor("  "), nil)

	_, err := s.Fetch(context.Background(), "talk.wav")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestResolver_LocalFiles(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "a.txt")
	media := filepath.Join(dir, "a.mp4")
	other := filepath.Join(dir, "a.pdf")
	for _, p := range []string{txt, media, other} {
		require.NoError(t, os.WriteFile(p, []byte("テキスト。"), 0o644))
	}

	whisper := NewWhisperSource(WhisperConfig{BinaryPath: "whisper-cli", TempDir: t.TempDir()}, whisperExecutor("音声。"), nil)
	r := NewResolver(nil, whisper, nil, nil)
	ctx := context.Background()

	got, err := r.Fetch(ctx, txt)
	require.NoError(t, err)
	assert.Equal(t, "テキスト。", got)

	got, err = r.Fetch(ctx, media)
	require.NoError(t, err)
	assert.Equal(t, "音声。", got)

	_, err = r.Fetch(ctx, other)
	assert.Error(t, err)

	_, err = NewResolver(nil, nil, nil, nil).Fetch(ctx, media)
	assert.Error(t, err)
}

func TestResolver_SubtitlesFirst(t *testing.T) {
	subs := &CommandSource{
		Executor: &fakeExecutor{run: func(string, []string) (string, error) { return "字幕。", nil }},
		Binary:   "fetch-subs",
		Args:     []string{"{id}"},
	}
	r := NewResolver(subs, nil, nil, nil)

	got, err := r.Fetch(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "字幕。", got)
}

func TestResolver_FallsBackToSpeech(t *testing.T) {
	subs := &CommandSource{
		Executor: &fakeExecutor{run: func(string, []string) (string, error) { return "", errors.New("no subtitles") }},
		Binary:   "fetch-subs",
		Args:     []string{"{id}"},
	}

	downloads := t.TempDir()
	dl := &Downloader{
		Executor: &fakeExecutor{run: func(_ string, args []string) (string, error) {
			return "", os.WriteFile(argAfter(args, "-o")+".m4a", []byte("audio"), 0o644)
		}},
		Binary:  "yt-dlp",
		Args:    []string{"-x", "-o", "{out}", "{url}"},
		TempDir: downloads,
	}
	whisper := NewWhisperSource(WhisperConfig{BinaryPath: "whisper-cli", TempDir: t.TempDir()}, whisperExecutor("認識結果。"), nil)

	r := NewResolver(subs, whisper, dl, nil)

	got, err := r.Fetch(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "認識結果。", got)

	entries, err := os.ReadDir(downloads)
	require.NoError(t, err)
	assert.Empty(t, entries, "downloaded audio must be removed")
}

func TestResolver_Unavailable(t *testing.T) {
	r := NewResolver(nil, nil, nil, nil)

	_, err := r.Fetch(context.Background(), "dQw4w9WgXcQ")
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = r.Fetch(context.Background(), "https://example.com/page")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnavailable))
	assert.True(t, strings.Contains(err.Error(), "unrecognized"))

	_, err = r.Fetch(context.Background(), filepath.Join(t.TempDir(), "missing_transcript.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
