// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package embedcache implements the Tier 1 dense-embedding signal: a
// resumable batch builder that embeds a training corpus once via an
// external provider, a persisted on-disk cache of the resulting vectors,
// and a query-time EmbeddingProvider that compares an incoming task
// against that cache.
package embedcache

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/AleutianAI/agentrouter/internal/router"
)

// Entry is one embedded training sample.
type Entry struct {
	Task   string
	Agent  router.AgentID
	Vector []float32
}

// PersistedEntry is Entry in its on-disk JSON form.
type PersistedEntry struct {
	Task      string    `json:"task"`
	Agent     string    `json:"agent"`
	Embedding []float32 `json:"embedding"`
}

// PersistedCache is the structured document the embedding cache round-trips
// to disk as.
type PersistedCache struct {
	Embeddings []PersistedEntry `json:"embeddings"`
}

// PersistedFailure records one failed embed attempt with the time it failed.
type PersistedFailure struct {
	Task      string    `json:"task"`
	Timestamp time.Time `json:"timestamp"`
}

// PersistedProgress is the companion document tracking batch-build progress
// across resumed runs.
type PersistedProgress struct {
	Completed []string           `json:"completed"`
	Failed    []PersistedFailure `json:"failed"`
	LastRun   time.Time          `json:"last_run"`
}

// Cache is the in-memory, read-mostly view of a built embedding corpus. All
// vectors share one dimension; a dimension mismatch detected at load time
// invalidates the whole cache (the caller then falls back to Tier 2/3).
type Cache struct {
	mu      sync.RWMutex
	entries []Entry
	dim     int
}

// NewCache builds an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Dim reports the shared vector dimension, or 0 if the cache is empty.
func (c *Cache) Dim() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dim
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Has reports whether task is already cached (used by the resumable batch
// builder to skip already-embedded samples).
func (c *Cache) Has(task string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.entries {
		if e.Task == task {
			return true
		}
	}
	return false
}

// Append adds one embedded entry. Returns an error if vec's dimension
// disagrees with every existing entry's dimension.
func (c *Cache) Append(task string, agent router.AgentID, vec []float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) > 0 && len(vec) != c.dim {
		return fmt.Errorf("embedding dimension mismatch: cache is %d-dimensional, got %d", c.dim, len(vec))
	}
	if len(c.entries) == 0 {
		c.dim = len(vec)
	}
	c.entries = append(c.entries, Entry{Task: task, Agent: agent, Vector: vec})
	return nil
}

// Entries returns a snapshot copy of the cached entries.
func (c *Cache) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// ToPersisted serialises the cache for atomic disk persistence.
func (c *Cache) ToPersisted() PersistedCache {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p := PersistedCache{Embeddings: make([]PersistedEntry, 0, len(c.entries))}
	for _, e := range c.entries {
		p.Embeddings = append(p.Embeddings, PersistedEntry{Task: e.Task, Agent: string(e.Agent), Embedding: e.Vector})
	}
	return p
}

// FromPersisted reconstructs a Cache from its persisted form, validating
// that every vector shares one dimension. A dimension mismatch returns an
// error rather than a partially loaded cache.
func FromPersisted(p PersistedCache) (*Cache, error) {
	c := NewCache()
	for _, e := range p.Embeddings {
		if err := c.Append(e.Task, router.AgentID(e.Agent), e.Embedding); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// LoadCacheFile reads and parses a persisted embedding cache from disk. A
// missing file returns an empty, valid cache — not an error — since an
// unbuilt cache is a normal startup state.
func LoadCacheFile(path string) (*Cache, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewCache(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read embedding cache %s: %w", path, err)
	}
	var p PersistedCache
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parse embedding cache %s: %w", path, err)
	}
	return FromPersisted(p)
}

// SaveCacheFile atomically replaces the cache file at path: it writes to a
// temp file in the same directory, then renames over the destination, so a
// reader never observes a partially written cache.
func SaveCacheFile(path string, c *Cache) error {
	return atomicWriteJSON(path, c.ToPersisted())
}

// LoadProgressFile reads the companion progress document. A missing file
// returns an empty progress record.
func LoadProgressFile(path string) (*PersistedProgress, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &PersistedProgress{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read progress file %s: %w", path, err)
	}
	var p PersistedProgress
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parse progress file %s: %w", path, err)
	}
	return &p, nil
}

// SaveProgressFile atomically persists the progress document.
func SaveProgressFile(path string, p *PersistedProgress) error {
	return atomicWriteJSON(path, p)
}

func atomicWriteJSON(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file for %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file for %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file into %s: %w", path, err)
	}
	return nil
}

// cosineFloat32 computes cosine similarity between two float32 vectors of
// equal length, returning 0 if either magnitude is zero.
func cosineFloat32(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

type docSim struct {
	agent router.AgentID
	sim   float64
}

// Similarities computes the per-agent embedding signal for a query vector
// against this cache: the average of the top-three cosine similarities per
// agent, then normalised so the maximum agent value is 1.0.
func (c *Cache) Similarities(queryVec []float32, agents []router.AgentID) map[router.AgentID]float64 {
	result := make(map[router.AgentID]float64, len(agents))
	for _, a := range agents {
		result[a] = 0
	}
	c.mu.RLock()
	entries := c.entries
	c.mu.RUnlock()
	if len(entries) == 0 {
		return result
	}

	byAgent := make(map[router.AgentID][]float64, len(agents))
	for _, e := range entries {
		byAgent[e.Agent] = append(byAgent[e.Agent], cosineFloat32(queryVec, e.Vector))
	}

	var maxAvg float64
	avgs := make(map[router.AgentID]float64, len(agents))
	for _, a := range agents {
		sims := byAgent[a]
		if len(sims) == 0 {
			continue
		}
		sort.Sort(sort.Reverse(sort.Float64Slice(sims)))
		top := sims
		if len(top) > 3 {
			top = top[:3]
		}
		var sum float64
		for _, s := range top {
			sum += s
		}
		avg := sum / float64(len(top))
		avgs[a] = avg
		if avg > maxAvg {
			maxAvg = avg
		}
	}
	if maxAvg == 0 {
		return result
	}
	for a, avg := range avgs {
		result[a] = avg / maxAvg
	}
	return result
}
