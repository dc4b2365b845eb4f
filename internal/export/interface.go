// Package export writes finished summaries to disk.
package export

import (
	"context"
	"time"
)

// Output formats.
const (
	FormatMarkdown = "md"
	FormatDocx     = "docx"
	FormatHTML     = "html"
)

// Document is one summarized transcript ready to be written out.
type Document struct {
	Title     string
	Source    string
	CreatedAt time.Time
	Summary   string
	// Transcript is appended to the docx output when non-empty.
	Transcript string
}

// Exporter writes doc into dir in every configured format and returns
// the paths it wrote.
type Exporter interface {
	Export(ctx context.Context, doc Document, dir string) ([]string, error)
}
