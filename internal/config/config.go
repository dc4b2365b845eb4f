package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Gemini      GeminiConfig      `yaml:"gemini"`
	Chunking    ChunkingConfig    `yaml:"chunking"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Retry       RetryConfig       `yaml:"retry"`
	Memory      MemoryConfig      `yaml:"memory"`
	Cache       CacheConfig       `yaml:"cache"`
	Paths       PathsConfig       `yaml:"paths"`
	Transcript  TranscriptConfig  `yaml:"transcript"`
	Whisper     WhisperConfig     `yaml:"whisper"`
	FFmpeg      FFmpegConfig      `yaml:"ffmpeg"`
	Output      OutputConfig      `yaml:"output"`
	Logging     LoggingConfig     `yaml:"logging"`
	Performance PerformanceConfig `yaml:"performance"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

type GeminiConfig struct {
	APIKeys         []string `yaml:"api_keys"`
	Model           string   `yaml:"model"`
	Temperature     float32  `yaml:"temperature"`
	TopP            float32  `yaml:"top_p"`
	TopK            float32  `yaml:"top_k"`
	MaxOutputTokens int32    `yaml:"max_output_tokens"`
}

type ChunkingConfig struct {
	ChunkSize     int `yaml:"chunk_size"`
	OverlapSize   int `yaml:"overlap_size"`
	ProofreadSize int `yaml:"proofread_size"`
}

type RateLimitConfig struct {
	Window      time.Duration `yaml:"window"`
	MaxRequests int           `yaml:"max_requests"`
	MinInterval time.Duration `yaml:"min_interval"`
	MaxInterval time.Duration `yaml:"max_interval"`
}

type RetryConfig struct {
	MaxRetries int `yaml:"max_retries"`
}

type MemoryConfig struct {
	Capacity int `yaml:"capacity"`
}

type CacheConfig struct {
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
}

type PathsConfig struct {
	Input    string `yaml:"input"`
	Output   string `yaml:"output"`
	Archived string `yaml:"archived"`
	Temp     string `yaml:"temp"`
}

// TranscriptConfig names the external programs used for video
// references. Arguments may contain {id}, {url}, {lang} and {out}.
type TranscriptConfig struct {
	FetchCommand    string   `yaml:"fetch_command"`
	FetchArgs       []string `yaml:"fetch_args"`
	Languages       []string `yaml:"languages"`
	DownloadCommand string   `yaml:"download_command"`
	DownloadArgs    []string `yaml:"download_args"`
}

type WhisperConfig struct {
	ModelPath  string `yaml:"model_path"`
	BinaryPath string `yaml:"binary_path"`
	Language   string `yaml:"language"`
	Prompt     string `yaml:"prompt"`
	Threads    int    `yaml:"threads"`
}

// Enabled reports whether local speech recognition is configured.
func (w WhisperConfig) Enabled() bool {
	return w.BinaryPath != ""
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path"`
}

type OutputConfig struct {
	Formats           []string `yaml:"formats"`
	IncludeTranscript bool     `yaml:"include_transcript"`
	// ProofreadTranscript exports a proofread copy instead of the raw
	// transcript. Only read when IncludeTranscript is set.
	ProofreadTranscript bool `yaml:"proofread_transcript"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads a YAML config file, applies environment overrides and
// validates the result. An empty path skips the file. Variables in a
// .env file in the working directory are loaded first.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// applyEnv lets the environment supply secrets and a few common knobs.
// GEMINI_API_KEYS (comma separated) wins over GEMINI_API_KEY.
func (c *Config) applyEnv() {
	if keys := splitList(os.Getenv("GEMINI_API_KEYS")); len(keys) > 0 {
		c.Gemini.APIKeys = keys
	} else if key := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); key != "" {
		c.Gemini.APIKeys = []string{key}
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		c.Gemini.Model = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) Validate() error {
	var errs []error

	if c.Chunking.ChunkSize < 0 {
		errs = append(errs, fmt.Errorf("chunking.chunk_size must not be negative"))
	}
	if c.Chunking.OverlapSize < 0 {
		errs = append(errs, fmt.Errorf("chunking.overlap_size must not be negative"))
	}
	if c.Chunking.ProofreadSize < 0 {
		errs = append(errs, fmt.Errorf("chunking.proofread_size must not be negative"))
	}
	if c.RateLimit.MaxRequests < 0 {
		errs = append(errs, fmt.Errorf("rate_limit.max_requests must not be negative"))
	}
	if c.RateLimit.Window < 0 || c.RateLimit.MinInterval < 0 || c.RateLimit.MaxInterval < 0 {
		errs = append(errs, fmt.Errorf("rate_limit durations must not be negative"))
	}
	if c.Retry.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("retry.max_retries must not be negative"))
	}
	if c.Cache.TTL < 0 || c.Cache.MaxEntries < 0 {
		errs = append(errs, fmt.Errorf("cache settings must not be negative"))
	}
	if c.Whisper.Enabled() && c.Whisper.ModelPath == "" {
		errs = append(errs, fmt.Errorf("whisper.model_path is required when whisper.binary_path is set"))
	}
	for _, f := range c.Output.Formats {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case "md", "docx", "html":
		default:
			errs = append(errs, fmt.Errorf("output.formats: unknown format %q", f))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if c.Gemini.Temperature == 0 {
		c.Gemini.Temperature = 0.3
	}
	if c.Gemini.TopP == 0 {
		c.Gemini.TopP = 0.8
	}
	if c.Gemini.TopK == 0 {
		c.Gemini.TopK = 40
	}
	if c.Gemini.MaxOutputTokens == 0 {
		c.Gemini.MaxOutputTokens = 4096
	}
	if c.Chunking.ChunkSize == 0 {
		c.Chunking.ChunkSize = 1500
	}
	if c.Chunking.OverlapSize == 0 {
		c.Chunking.OverlapSize = 200
	}
	if c.Chunking.ProofreadSize == 0 {
		c.Chunking.ProofreadSize = 2000
	}
	if c.Chunking.OverlapSize >= c.Chunking.ChunkSize {
		return fmt.Errorf("chunking.overlap_size (%d) must be smaller than chunking.chunk_size (%d)",
			c.Chunking.OverlapSize, c.Chunking.ChunkSize)
	}
	if c.RateLimit.Window == 0 {
		c.RateLimit.Window = 60 * time.Second
	}
	if c.RateLimit.MaxRequests == 0 {
		c.RateLimit.MaxRequests = 60
	}
	if c.RateLimit.MinInterval == 0 {
		c.RateLimit.MinInterval = time.Second
	}
	if c.RateLimit.MaxInterval == 0 {
		c.RateLimit.MaxInterval = 10 * time.Second
	}
	if c.Retry.MaxRetries == 0 {
		c.Retry.MaxRetries = 3
	}
	if c.Memory.Capacity <= 0 {
		c.Memory.Capacity = 5
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = time.Hour
	}
	if c.Cache.MaxEntries == 0 {
		c.Cache.MaxEntries = 100
	}
	if c.Paths.Input == "" {
		c.Paths.Input = "data/input"
	}
	if c.Paths.Output == "" {
		c.Paths.Output = "data/output"
	}
	if c.Paths.Archived == "" {
		c.Paths.Archived = "data/archived"
	}
	if c.Paths.Temp == "" {
		c.Paths.Temp = "data/temp"
	}
	if len(c.Transcript.Languages) == 0 {
		c.Transcript.Languages = []string{"ja", "ja-JP", "en", "en-US"}
	}
	if c.Whisper.Language == "" {
		c.Whisper.Language = "ja"
	}
	if c.Whisper.Threads == 0 {
		c.Whisper.Threads = 4
	}
	if c.FFmpeg.BinaryPath == "" {
		c.FFmpeg.BinaryPath = "ffmpeg"
	}
	if len(c.Output.Formats) == 0 {
		c.Output.Formats = []string{"md"}
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Performance.MaxConcurrent <= 0 {
		c.Performance.MaxConcurrent = 2
	}

	return nil
}
