package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// Generate sends prompt to Gemini with the current key. A rate-limited
// key is rotated out so the next attempt uses another one; the error is
// still returned as KindQuota so the caller backs off.
func (g *implGemini) Generate(ctx context.Context, prompt string, cfg GenerationConfig) (string, error) {
	client, keyIndex, err := g.client(ctx)
	if err != nil {
		return "", &Error{Kind: classifyGenai(ctx, err), Err: fmt.Errorf("create client: %w", err)}
	}

	result, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(cfg.Temperature),
		TopP:             genai.Ptr(cfg.TopP),
		TopK:             genai.Ptr(cfg.TopK),
		MaxOutputTokens:  cfg.MaxOutputTokens,
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		kind := classifyGenai(ctx, err)
		if kind == KindQuota {
			g.logger.Warn(ctx, "Key %d rate limited, rotating...", keyIndex+1)
			g.rotateKey(keyIndex)
		}
		return "", &Error{Kind: kind, Err: fmt.Errorf("generate content: %w", err)}
	}

	return responseText(result), nil
}

// client returns the client for the current key, creating it on first use.
func (g *implGemini) client(ctx context.Context) (*genai.Client, int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	idx := g.currentKey
	if g.clients[idx] != nil {
		return g.clients[idx], idx, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKeys[idx],
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, idx, err
	}
	g.clients[idx] = client
	return client, idx, nil
}

// rotateKey moves past failed unless another request already did.
func (g *implGemini) rotateKey(failed int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.currentKey == failed {
		g.currentKey = (g.currentKey + 1) % len(g.apiKeys)
	}
}

func classifyGenai(ctx context.Context, err error) ErrorKind {
	if ctx.Err() != nil {
		return KindCancelled
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests || strings.EqualFold(apiErr.Status, "RESOURCE_EXHAUSTED") {
			return KindQuota
		}
		return KindTransient
	}

	return Classify(err)
}

func responseText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}
