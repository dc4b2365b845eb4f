package export

import (
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/digest-flow/internal/logger"
)

type implExporter struct {
	formats []string
	logger  logger.Logger
}

// New creates an Exporter for formats. No formats means markdown only.
func New(formats []string, log logger.Logger) (Exporter, error) {
	if log == nil {
		log = logger.NewNop()
	}

	seen := make(map[string]bool)
	var out []string
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		switch f {
		case FormatMarkdown, FormatDocx, FormatHTML:
		default:
			return nil, fmt.Errorf("unknown output format %q", f)
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		out = []string{FormatMarkdown}
	}

	return &implExporter{formats: out, logger: log}, nil
}
