// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/AleutianAI/agentrouter/internal/badgerstore"
	"github.com/AleutianAI/agentrouter/internal/embedcache"
	"github.com/AleutianAI/agentrouter/internal/router"
	"github.com/AleutianAI/agentrouter/internal/taxonomy"
)

// buildRouter assembles a Router from the embedded taxonomy plus whatever
// persisted TF-IDF index and embedding cache are available at the given
// paths. Both are optional: a missing index degrades Tier 2/hybrid queries
// to the keyword-only fallback, and a missing, unreadable or
// dimension-inconsistent embedding cache disables Tier 1 entirely — both
// are graceful degradations the router already implements, not errors.
func buildRouter(indexPath, embeddingCachePath string, logger *slog.Logger) (*router.Router, *router.TFIDFIndex, error) {
	cfg, err := taxonomy.LoadTaxonomy()
	if err != nil {
		return nil, nil, fmt.Errorf("load taxonomy: %w", err)
	}
	sw, err := taxonomy.LoadStopwords()
	if err != nil {
		return nil, nil, fmt.Errorf("load stopwords: %w", err)
	}
	tok := router.NewTokenizer(sw)

	idx, err := loadPersistedIndex(indexPath, tok)
	if err != nil {
		return nil, nil, err
	}

	var provider router.EmbeddingProvider
	cache, err := embedcache.LoadCacheFile(embeddingCachePath)
	if err != nil {
		logger.Warn("embedding cache unreadable or inconsistent, treating it as missing",
			slog.String("path", embeddingCachePath), slog.String("error", err.Error()))
		cache = embedcache.NewCache()
	}
	if cache.Len() > 0 {
		var memo *embedcache.QueryMemo
		if db, err := openQueryMemoDB(logger); err == nil && db != nil {
			memo = embedcache.NewQueryMemo(db, 0, logger)
		}
		embedProvider := embedcache.NewProvider(logger, memo)
		provider = embedcache.NewEnsembleProvider(embedProvider, cache, logger)
	} else {
		logger.Info("embedding cache is empty, Tier 1 disabled for this process",
			slog.String("path", embeddingCachePath))
	}

	r := router.NewRouter(cfg, tok, idx, provider)
	return r, idx, nil
}

func loadPersistedIndex(path string, tok *router.Tokenizer) (*router.TFIDFIndex, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read TF-IDF index %s: %w", path, err)
	}
	var persisted router.PersistedIndex
	if err := json.Unmarshal(raw, &persisted); err != nil {
		return nil, fmt.Errorf("parse TF-IDF index %s: %w", path, err)
	}
	return router.IndexFromPersisted(tok, persisted, true, true), nil
}

// openQueryMemoDB opens the badger-backed query-embedding memo cache under
// $ROUTER_DATA_DIR/query_memo (or .router-data/query_memo). A failure to
// open is non-fatal: the provider works without it, just slower.
func openQueryMemoDB(logger *slog.Logger) (*badgerstore.DB, error) {
	dir := os.Getenv("ROUTER_DATA_DIR")
	if dir == "" {
		dir = ".router-data"
	}
	path := filepath.Join(dir, "query_memo")
	db, err := badgerstore.Open(path, logger)
	if err != nil {
		logger.Warn("query embedding memo cache unavailable", slog.String("error", err.Error()))
		return nil, err
	}
	return db, nil
}
