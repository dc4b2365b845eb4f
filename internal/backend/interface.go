package backend

import "context"

// Generator sends a prompt to a generative text model and returns the
// raw response text.
type Generator interface {
	Generate(ctx context.Context, prompt string, cfg GenerationConfig) (string, error)
}

// GenerationConfig holds the sampling parameters for one request.
type GenerationConfig struct {
	Temperature     float32
	TopP            float32
	TopK            float32
	MaxOutputTokens int32
}

// DefaultGenerationConfig matches the settings used for transcript work.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Temperature:     0.3,
		TopP:            0.8,
		TopK:            40,
		MaxOutputTokens: 4096,
	}
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string, cfg GenerationConfig) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string, cfg GenerationConfig) (string, error) {
	return f(ctx, prompt, cfg)
}
