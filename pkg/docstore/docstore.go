// Package docstore keeps whole JSON documents in blob storage, loading the
// full document for every read and rewriting it on every mutation.
//
// Updates through a single Document are serialized by an in-process mutex.
// Separate processes sharing the same storage can still lose each other's
// writes.
package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/JaimeStill/hand2voice/pkg/storage"
)

// Document is a JSON value of type T persisted under a single storage key.
type Document[T any] struct {
	store  storage.System
	key    string
	empty  func() T
	logger *slog.Logger

	mu sync.Mutex
}

// New binds a Document to key. empty builds the value used when the document
// is missing, unreadable, or corrupt.
func New[T any](store storage.System, key string, empty func() T, logger *slog.Logger) *Document[T] {
	return &Document[T]{
		store:  store,
		key:    key,
		empty:  empty,
		logger: logger.With("document", key),
	}
}

// Key returns the storage key backing the document.
func (d *Document[T]) Key() string {
	return d.key
}

// Read returns the current document contents.
func (d *Document[T]) Read(ctx context.Context) (T, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.load(ctx)
}

// Update loads the document, applies fn, and writes the result back.
// When fn returns an error nothing is written.
func (d *Document[T]) Update(ctx context.Context, fn func(doc T) (T, error)) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	doc, err := d.load(ctx)
	if err != nil {
		return err
	}

	doc, err = fn(doc)
	if err != nil {
		return err
	}

	return d.save(ctx, doc)
}

func (d *Document[T]) load(ctx context.Context) (T, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}

	rc, err := d.store.Download(ctx, d.key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			d.logger.Warn("document unreadable, treating as empty", "error", err)
		}
		return d.empty(), nil
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		d.logger.Warn("document unreadable, treating as empty", "error", err)
		return d.empty(), nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return d.empty(), nil
	}

	doc := d.empty()
	if err := json.Unmarshal(data, &doc); err != nil {
		d.logger.Warn("document corrupt, treating as empty", "error", err)
		return d.empty(), nil
	}
	return doc, nil
}

func (d *Document[T]) save(ctx context.Context, doc T) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", d.key, err)
	}
	if err := d.store.Upload(ctx, d.key, bytes.NewReader(data), "application/json"); err != nil {
		return fmt.Errorf("write %s: %w", d.key, err)
	}
	return nil
}
