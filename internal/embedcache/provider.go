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
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/AleutianAI/agentrouter/internal/router"
)

// ollamaEmbedReq is the Ollama /api/embed request body.
type ollamaEmbedReq struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

// ollamaEmbedResp is the Ollama /api/embed response body.
type ollamaEmbedResp struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Provider calls an external dense-embedding endpoint. It degrades to an "unavailable" result rather than
// returning an error for any transient failure — the ensemble router
// treats provider failures as a routing signal, not an exception.
type Provider struct {
	url    string
	model  string
	client *http.Client
	logger *slog.Logger
	memo   *QueryMemo // optional; nil disables query-embedding memoisation
}

// NewProvider builds a Provider. Reads EMBEDDING_SERVICE_URL and
// EMBEDDING_MODEL from the environment, falling back to a local Ollama
// instance and nomic-embed-text-v2-moe respectively.
func NewProvider(logger *slog.Logger, memo *QueryMemo) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	url := os.Getenv("EMBEDDING_SERVICE_URL")
	if url == "" {
		url = "http://host.containers.internal:11434/api/embed"
	}
	model := os.Getenv("EMBEDDING_MODEL")
	if model == "" {
		model = "nomic-embed-text-v2-moe"
	}
	return &Provider{
		url:    url,
		model:  model,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
		memo:   memo,
	}
}

// Model reports the configured embedding model name.
func (p *Provider) Model() string { return p.model }

// Embed calls the provider for a single piece of text, applying ctx's
// deadline. A non-nil error means "unavailable": callers should treat it
// as a missing signal, not a fatal condition.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	if p.memo != nil {
		if vec, ok := p.memo.Get(ctx, p.model, text); ok {
			return vec, nil
		}
	}

	reqBody, err := json.Marshal(ollamaEmbedReq{Model: p.model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed HTTP call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embed response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embed service returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed ollamaEmbedResp
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse embed response: %w", err)
	}
	if len(parsed.Embeddings) == 0 || len(parsed.Embeddings[0]) == 0 {
		return nil, fmt.Errorf("embed service returned empty vector")
	}

	vec := parsed.Embeddings[0]
	if p.memo != nil {
		if err := p.memo.Put(ctx, p.model, text, vec); err != nil {
			p.logger.Warn("embedding provider: failed to memoise query vector",
				slog.String("error", err.Error()))
		}
	}
	return vec, nil
}

// EnsembleProvider adapts a Provider plus a built training Cache into the
// router.EmbeddingProvider interface the ensemble router consumes: embed
// the incoming task once, then compare it against the cached corpus.
type EnsembleProvider struct {
	provider *Provider
	cache    *Cache
	logger   *slog.Logger
}

// NewEnsembleProvider builds the router-facing embedding signal.
func NewEnsembleProvider(provider *Provider, cache *Cache, logger *slog.Logger) *EnsembleProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &EnsembleProvider{provider: provider, cache: cache, logger: logger}
}

// Similarities satisfies router.EmbeddingProvider. It returns (nil, false)
// whenever the provider is unreachable or the training cache is empty —
// both are ordinary degradation paths, not errors.
func (e *EnsembleProvider) Similarities(ctx context.Context, task string, agents []router.AgentID, timeout time.Duration) (map[router.AgentID]float64, bool) {
	if e.cache == nil || e.cache.Len() == 0 {
		return nil, false
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	embedCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	queryVec, err := e.provider.Embed(embedCtx, task)
	if err != nil {
		e.logger.Warn("embedding provider unavailable, degrading to lower tiers",
			slog.String("error", err.Error()))
		return nil, false
	}
	if e.cache.Dim() != 0 && len(queryVec) != e.cache.Dim() {
		e.logger.Warn("embedding dimension mismatch between provider and cache, degrading",
			slog.Int("cache_dim", e.cache.Dim()),
			slog.Int("query_dim", len(queryVec)),
		)
		return nil, false
	}

	return e.cache.Similarities(queryVec, agents), true
}
