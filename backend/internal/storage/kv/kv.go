// Package kv is an embedded board store on top of pebble.
//
// Key layout:
//
//	t\x00<thread id>                                  -> thread JSON
//	b\x00<board>\x00<bumped_on unix nanos>\x00<id>    -> empty, recency index
//
// Bump timestamps are zero padded so byte order equals time order and the
// board listing is a reverse range scan.
package kv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/itchan-dev/anonboard/shared/logger"
)

var (
	ErrClosed        = errors.New("kv: store is closed")
	ErrDuplicateId   = errors.New("kv: thread id already exists")
	errCorruptRecord = errors.New("kv: corrupt record")
)

type Storage struct {
	db     *pebble.DB
	path   string
	closed atomic.Bool
	// writers hold it exclusively; Cleanup waits for readers too
	mu sync.RWMutex
}

// Open opens (or creates) the store at path. A nil fs means the real disk.
func Open(path string, fs vfs.FS) (*Storage, error) {
	if fs == nil {
		fs = vfs.Default
		if err := os.MkdirAll(path, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", path, err)
		}
	}
	logger.Component("pebble").Info("opening store", "path", path)
	db, err := pebble.Open(path, &pebble.Options{FS: fs})
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble at %s: %w", path, err)
	}
	return &Storage{db: db, path: path}, nil
}

// OpenInMemory is used by tests and by the api when no path is configured.
func OpenInMemory() (*Storage, error) {
	return Open("", vfs.NewMem())
}

func (s *Storage) Ping(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	return ctx.Err()
}

func (s *Storage) Cleanup() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	logger.Component("pebble").Info("closing store", "path", s.path)
	return s.db.Close()
}

// ready must be called with mu held.
func (s *Storage) ready(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	return ctx.Err()
}
