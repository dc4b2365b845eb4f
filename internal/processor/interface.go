package processor

import "context"

// Processor turns one input into exported summary files.
type Processor interface {
	// Process summarizes ref (a file, video URL or video id) and returns
	// the paths of the exported files.
	Process(ctx context.Context, ref string) ([]string, error)
	// ProcessAndArchive processes a local file, then moves it to the
	// archive directory so it is not picked up again.
	ProcessAndArchive(ctx context.Context, path string) error
}
