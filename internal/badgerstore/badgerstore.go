// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package badgerstore wraps a single BadgerDB handle with context-aware
// transaction helpers, the way every BadgerDB-backed component in this repo
// expects to consume it.
package badgerstore

import (
	"context"
	"fmt"
	"log/slog"

	badger "github.com/dgraph-io/badger/v4"
)

// DB owns one BadgerDB instance for the life of the process.
//
// # Thread Safety
//
// Safe for concurrent use. BadgerDB transactions are per-goroutine.
type DB struct {
	bdb    *badger.DB
	logger *slog.Logger
}

// Open opens (or creates) a BadgerDB instance rooted at dir.
//
// # Inputs
//
//   - dir: Filesystem directory for the database files. Created if absent.
//   - logger: Logger kept on the handle. May be nil (slog.Default is used).
//     BadgerDB's own diagnostic logging is disabled.
//
// # Outputs
//
//   - *DB: Ready-to-use handle. Caller must call Close.
//   - error: Non-nil if BadgerDB fails to open (e.g. directory locked by
//     another process).
func Open(dir string, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db at %s: %w", dir, err)
	}
	return &DB{bdb: bdb, logger: logger}, nil
}

// Close releases the underlying BadgerDB handle.
func (d *DB) Close() error {
	if d == nil || d.bdb == nil {
		return nil
	}
	return d.bdb.Close()
}

// WithReadTxn runs fn inside a read-only BadgerDB transaction.
func (d *DB) WithReadTxn(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.bdb.View(fn)
}

// WithTxn runs fn inside a read-write BadgerDB transaction, committing on a
// nil return and discarding on error.
func (d *DB) WithTxn(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.bdb.Update(fn)
}

// RunGC triggers a single pass of BadgerDB's value-log garbage collection.
// BadgerDB recommends calling this periodically rather than relying solely
// on compaction; a no-op return (ErrNoRewrite) is not an error.
func (d *DB) RunGC(discardRatio float64) error {
	err := d.bdb.RunValueLogGC(discardRatio)
	if err != nil && err != badger.ErrNoRewrite {
		return fmt.Errorf("badger value log gc: %w", err)
	}
	return nil
}
