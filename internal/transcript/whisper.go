package transcript

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/digest-flow/internal/logger"
	"github.com/nguyentantai21042004/digest-flow/pkg/executor"
)

var mediaExts = map[string]bool{
	".mp4": true, ".mov": true, ".mkv": true, ".webm": true, ".avi": true,
	".m4a": true, ".mp3": true, ".wav": true, ".flac": true, ".opus": true,
}

// WhisperConfig locates the ffmpeg and whisper.cpp binaries.
type WhisperConfig struct {
	BinaryPath string
	ModelPath  string
	Language   string
	Prompt     string
	Threads    int
	FFmpegPath string
	TempDir    string
}

// WhisperSource transcribes local audio or video with whisper.cpp.
type WhisperSource struct {
	cfg      WhisperConfig
	executor executor.Executor
	logger   logger.Logger
}

// NewWhisperSource creates a WhisperSource. FFmpegPath defaults to
// "ffmpeg" on PATH.
func NewWhisperSource(cfg WhisperConfig, exec executor.Executor, log logger.Logger) *WhisperSource {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &WhisperSource{cfg: cfg, executor: exec, logger: log}
}

// Supports reports whether path looks like media whisper can handle.
func (s *WhisperSource) Supports(path string) bool {
	return mediaExts[strings.ToLower(filepath.Ext(path))]
}

// Fetch converts mediaPath to 16kHz mono WAV, runs whisper on it and
// returns the recognized text. Intermediate files are removed.
func (s *WhisperSource) Fetch(ctx context.Context, mediaPath string) (string, error) {
	if s.cfg.TempDir != "" {
		if err := os.MkdirAll(s.cfg.TempDir, 0o755); err != nil {
			return "", fmt.Errorf("create temp dir: %w", err)
		}
	}
	workDir, err := os.MkdirTemp(s.cfg.TempDir, "whisper-*")
	if err != nil {
		return "", fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	audioPath := filepath.Join(workDir, "audio.wav")
	if err := s.extractAudio(ctx, mediaPath, audioPath); err != nil {
		return "", err
	}

	prefix := filepath.Join(workDir, "transcript")
	if err := s.transcribe(ctx, audioPath, prefix); err != nil {
		return "", err
	}

	data, err := os.ReadFile(prefix + ".txt")
	if err != nil {
		return "", fmt.Errorf("read whisper output: %w", err)
	}

	text := strings.Join(strings.Fields(string(data)), " ")
	if text == "" {
		return "", fmt.Errorf("%w: whisper produced no text for %s", ErrUnavailable, mediaPath)
	}
	return text, nil
}

// extractAudio writes a 16kHz mono PCM WAV, the input format whisper expects.
func (s *WhisperSource) extractAudio(ctx context.Context, mediaPath, audioPath string) error {
	s.logger.Info(ctx, "Extracting audio: %s", mediaPath)

	args := []string{
		"-i", mediaPath,
		"-vn",
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-threads", "0",
		"-y",
		audioPath,
	}

	if _, err := s.executor.Execute(ctx, s.cfg.FFmpegPath, args...); err != nil {
		return fmt.Errorf("ffmpeg extract audio: %w", err)
	}
	return nil
}

// transcribe runs whisper-cli; it appends .txt to prefix.
func (s *WhisperSource) transcribe(ctx context.Context, audioPath, prefix string) error {
	s.logger.Info(ctx, "Transcribing with whisper (%d threads): %s", s.cfg.Threads, audioPath)

	args := []string{
		"-m", s.cfg.ModelPath,
		"-f", audioPath,
		"-otxt",
		"-l", s.cfg.Language,
		"-bo", "5",
		"--output-file", prefix,
	}
	if s.cfg.Threads > 0 {
		args = append(args, "-t", strconv.Itoa(s.cfg.Threads))
	}
	if s.cfg.Prompt != "" {
		args = append(args, "--prompt", s.cfg.Prompt)
	}

	if _, err := s.executor.Execute(ctx, s.cfg.BinaryPath, args...); err != nil {
		return fmt.Errorf("whisper transcribe: %w", err)
	}
	return nil
}
