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
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/agentrouter/internal/router"
)

// builderWarmConcurrency bounds how many embed calls run in parallel within
// one checkpoint batch. Mirrors the tool-embedding warm-up's concurrency
// cap: enough to saturate a local Ollama instance without overwhelming it.
const builderWarmConcurrency = 10

// defaultCheckpointSize is B in the batch-build contract: progress is
// persisted every B processed samples.
const defaultCheckpointSize = 5

// Sample is one training corpus record awaiting embedding.
type Sample struct {
	Task  string
	Agent router.AgentID
}

// Builder drives the resumable batch build of an embedding Cache from a
// training corpus. It is not safe for concurrent
// calls to Build — run one build at a time.
type Builder struct {
	provider       *Provider
	cache          *Cache
	progress       *PersistedProgress
	checkpointSize int
	logger         *slog.Logger

	cachePath    string
	progressPath string
}

// NewBuilder loads (or initialises) the cache and progress documents at the
// given paths and returns a Builder ready to resume or start a batch run.
func NewBuilder(cachePath, progressPath string, provider *Provider, logger *slog.Logger) (*Builder, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cache, err := LoadCacheFile(cachePath)
	if err != nil {
		return nil, err
	}
	progress, err := LoadProgressFile(progressPath)
	if err != nil {
		return nil, err
	}
	return &Builder{
		provider:       provider,
		cache:          cache,
		progress:       progress,
		checkpointSize: defaultCheckpointSize,
		logger:         logger,
		cachePath:      cachePath,
		progressPath:   progressPath,
	}, nil
}

// Cache exposes the builder's in-progress (or completed) cache.
func (b *Builder) Cache() *Cache { return b.cache }

func (b *Builder) alreadyFailed(task string) bool {
	for _, f := range b.progress.Failed {
		if f.Task == task {
			return true
		}
	}
	return false
}

// Build embeds every sample not already cached or previously failed,
// checkpointing progress every checkpointSize samples. Idempotent: running
// it twice on an unchanged corpus embeds nothing on the second run.
func (b *Builder) Build(ctx context.Context, samples []Sample) error {
	pending := make([]Sample, 0, len(samples))
	for _, s := range samples {
		if b.cache.Has(s.Task) || b.alreadyFailed(s.Task) {
			continue
		}
		pending = append(pending, s)
	}
	if len(pending) == 0 {
		b.logger.Info("embedding cache: nothing to build", slog.Int("corpus_size", len(samples)))
		return nil
	}
	b.logger.Info("embedding cache: starting batch build",
		slog.Int("pending", len(pending)),
		slog.Int("already_cached", len(samples)-len(pending)),
	)

	for start := 0; start < len(pending); start += b.checkpointSize {
		end := start + b.checkpointSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]
		b.runBatch(ctx, batch)

		b.progress.LastRun = time.Now()
		if err := SaveProgressFile(b.progressPath, b.progress); err != nil {
			return err
		}
		if err := SaveCacheFile(b.cachePath, b.cache); err != nil {
			return err
		}
		b.logger.Info("embedding cache: checkpoint saved",
			slog.Int("processed", end),
			slog.Int("pending", len(pending)),
		)
	}
	return nil
}

func (b *Builder) runBatch(ctx context.Context, batch []Sample) {
	type outcome struct {
		sample Sample
		vec    []float32
		err    error
	}
	results := make(chan outcome, len(batch))

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, builderWarmConcurrency)
	for _, s := range batch {
		sample := s
		g.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()
			vec, err := b.provider.Embed(gctx, sample.Task)
			results <- outcome{sample: sample, vec: vec, err: err}
			return nil
		})
	}
	_ = g.Wait()
	close(results)

	for r := range results {
		if r.err != nil {
			b.logger.Warn("embedding cache: sample failed",
				slog.String("task", r.sample.Task), slog.String("error", r.err.Error()))
			b.progress.Failed = append(b.progress.Failed, PersistedFailure{Task: r.sample.Task, Timestamp: time.Now()})
			continue
		}
		if err := b.cache.Append(r.sample.Task, r.sample.Agent, r.vec); err != nil {
			b.logger.Warn("embedding cache: dimension mismatch, dropping sample",
				slog.String("task", r.sample.Task), slog.String("error", err.Error()))
			b.progress.Failed = append(b.progress.Failed, PersistedFailure{Task: r.sample.Task, Timestamp: time.Now()})
			continue
		}
		b.progress.Completed = append(b.progress.Completed, r.sample.Task)
	}
}
