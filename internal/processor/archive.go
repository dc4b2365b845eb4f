package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// moveToArchived moves a processed input into the archive directory. A
// name already taken there gets a numeric suffix.
func (p *implProcessor) moveToArchived(ctx context.Context, path string) error {
	if p.opts.ArchiveDir == "" {
		return nil
	}
	if err := os.MkdirAll(p.opts.ArchiveDir, 0755); err != nil {
		return fmt.Errorf("create archive dir: %w", err)
	}

	dest := freePath(filepath.Join(p.opts.ArchiveDir, filepath.Base(path)))
	p.logger.Info(ctx, "Archiving: %s -> %s", path, dest)

	if err := os.Rename(path, dest); err != nil {
		return fmt.Errorf("move to archived: %w", err)
	}
	return nil
}

func freePath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}

	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for i := 1; ; i++ {
		candidate := stem + "-" + strconv.Itoa(i) + ext
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}
