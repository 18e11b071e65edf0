// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package store defines a whole-document store with two implementations:
// a local directory and a Google Cloud Storage bucket. The profile store,
// learning log, TF-IDF index and embedding cache read and write their own
// files directly and do not go through this package.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no document exists at the given key.
var ErrNotFound = errors.New("store: document not found")

// DocumentStore reads and writes whole JSON documents by key. Every
// implementation must make Put atomic from a reader's perspective: a
// concurrent Get never observes a partially written document.
type DocumentStore interface {
	// Get returns the full contents stored at key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put atomically replaces the contents stored at key.
	Put(ctx context.Context, key string, data []byte) error

	// Close releases any resources held by the store (network clients,
	// open file handles). Safe to call on a store that was never used.
	Close() error
}
