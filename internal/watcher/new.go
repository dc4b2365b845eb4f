package watcher

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nguyentantai21042004/digest-flow/internal/logger"
)

const (
	defaultMaxConcurrent = 2
	defaultSettleDelay   = 500 * time.Millisecond
)

// Options configures a Watcher. Accept and Handler are required.
type Options struct {
	InputDir      string
	Accept        Filter
	Handler       EventHandler
	MaxConcurrent int
	// SettleDelay is how long to wait after a create event before
	// reading, so the writer can finish.
	SettleDelay time.Duration
	// ProcessExisting also handles files already in InputDir at start.
	ProcessExisting bool
	Logger          logger.Logger
}

// New creates a Watcher with bounded concurrency.
func New(opts Options) (Watcher, error) {
	if opts.Accept == nil || opts.Handler == nil {
		return nil, fmt.Errorf("watcher needs an accept filter and a handler")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(opts.InputDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = defaultMaxConcurrent
	}
	if opts.SettleDelay < 0 {
		opts.SettleDelay = 0
	} else if opts.SettleDelay == 0 {
		opts.SettleDelay = defaultSettleDelay
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}

	return &implWatcher{
		opts:     opts,
		logger:   opts.Logger,
		watcher:  watcher,
		inFlight: make(map[string]struct{}),
	}, nil
}
