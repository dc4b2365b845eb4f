package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

const timestampLayout = "2006-01-02 15:04"

func (e *implExporter) Export(ctx context.Context, doc Document, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	base := filepath.Join(dir, FileName(doc.Title))
	paths := make([]string, 0, len(e.formats))

	for _, format := range e.formats {
		path := base + "." + format

		var err error
		switch format {
		case FormatMarkdown:
			err = os.WriteFile(path, []byte(Markdown(doc)), 0644)
		case FormatDocx:
			err = writeDocx(doc, path)
		case FormatHTML:
			var page string
			if page, err = HTML(doc); err == nil {
				err = os.WriteFile(path, []byte(page), 0644)
			}
		}
		if err != nil {
			return paths, fmt.Errorf("write %s: %w", format, err)
		}

		e.logger.Info(ctx, "Wrote %s", path)
		paths = append(paths, path)
	}

	return paths, nil
}

// Markdown renders the title, creation time and source above the summary.
func Markdown(doc Document) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n_%s_\n\n", doc.Title, doc.CreatedAt.Format(timestampLayout))
	if doc.Source != "" {
		fmt.Fprintf(&sb, "出典: %s\n\n", doc.Source)
	}
	sb.WriteString(strings.TrimSpace(doc.Summary))
	sb.WriteString("\n")
	return sb.String()
}

// FileName turns a title into a safe file base name.
func FileName(title string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r), unicode.IsControl(r):
			return '_'
		}
		return r
	}, strings.TrimSpace(title))

	name = strings.Trim(name, ". ")
	if name == "" {
		return "summary"
	}
	return name
}
