package watcher

import "context"

// Watcher monitors a directory and hands new input files to a handler.
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler processes one file.
type EventHandler func(ctx context.Context, filePath string) error

// Filter reports whether a file should be handled.
type Filter func(filePath string) bool
