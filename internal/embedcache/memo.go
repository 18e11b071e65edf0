// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package embedcache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/AleutianAI/agentrouter/internal/badgerstore"
)

// queryMemoKeyPrefix is prepended to the content hash to form the BadgerDB
// key. Versioned so a future vector-format change cannot collide with
// entries written by an older build.
const queryMemoKeyPrefix = "embed/query/v1/"

// queryMemoDefaultTTL bounds how long an individual query embedding is
// memoised. Query text is comparatively low-cardinality but unbounded, so
// entries expire instead of accumulating forever.
const queryMemoDefaultTTL = 24 * time.Hour

var errMemoMiss = errors.New("query embedding memo: miss")

// QueryMemo is a content-addressed BadgerDB cache of individual query
// embeddings. It is an optimisation only: every lookup that misses, and every
// store that fails, falls through to a fresh provider call. The
// content address is SHA-256 of the model name and the query text, so the
// same task routed twice under the same model always hits.
type QueryMemo struct {
	db     *badgerstore.DB
	ttl    time.Duration
	logger *slog.Logger
}

// NewQueryMemo wraps an opened BadgerDB handle. Pass ttl<=0 to use the
// default.
func NewQueryMemo(db *badgerstore.DB, ttl time.Duration, logger *slog.Logger) *QueryMemo {
	if ttl <= 0 {
		ttl = queryMemoDefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryMemo{db: db, ttl: ttl, logger: logger}
}

// Get returns the memoised vector for (model, text), or ok=false on miss or
// storage error — both are treated identically by the caller.
func (m *QueryMemo) Get(ctx context.Context, model, text string) ([]float32, bool) {
	if m == nil || m.db == nil {
		return nil, false
	}
	key := queryMemoKey(model, text)

	var raw []byte
	err := m.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return errMemoMiss
		}
		if err != nil {
			return fmt.Errorf("get query memo: %w", err)
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, false
	}

	var vec []float32
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&vec); err != nil {
		m.logger.Warn("query embedding memo: decode failure, treating as miss", slog.String("error", err.Error()))
		return nil, false
	}
	return vec, true
}

// Put memoises vec under (model, text) with the configured TTL.
func (m *QueryMemo) Put(ctx context.Context, model, text string, vec []float32) error {
	if m == nil || m.db == nil {
		return nil
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(vec); err != nil {
		return fmt.Errorf("encode query memo: %w", err)
	}
	key := queryMemoKey(model, text)
	return m.db.WithTxn(ctx, func(txn *badger.Txn) error {
		entry := badger.NewEntry(key, buf.Bytes()).WithTTL(m.ttl)
		return txn.SetEntry(entry)
	})
}

func queryMemoKey(model, text string) []byte {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s", model, text)
	return []byte(queryMemoKeyPrefix + hex.EncodeToString(h.Sum(nil)))
}
