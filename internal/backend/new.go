package backend

import (
	"fmt"
	"sync"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/digest-flow/internal/logger"
)

const DefaultModel = "gemini-2.5-flash"

type implGemini struct {
	apiKeys    []string
	clients    []*genai.Client
	currentKey int
	model      string
	logger     logger.Logger
	mu         sync.Mutex
}

// NewGemini creates a Generator that rotates through the supplied
// Gemini API keys whenever one is rate limited.
func NewGemini(apiKeys []string, model string, log logger.Logger) (Generator, error) {
	if len(apiKeys) == 0 {
		return nil, fmt.Errorf("at least one Gemini API key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &implGemini{
		apiKeys: apiKeys,
		clients: make([]*genai.Client, len(apiKeys)),
		model:   model,
		logger:  log,
	}, nil
}
