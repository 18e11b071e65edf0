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
	"path/filepath"
	"testing"

	"github.com/AleutianAI/agentrouter/internal/router"
)

func TestCache_AppendRejectsDimensionMismatch(t *testing.T) {
	c := NewCache()
	if err := c.Append("a", "kimi", []float32{1, 2, 3}); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := c.Append("b", "claude", []float32{1, 2}); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestCache_RoundTripPreservesEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.json")

	c := NewCache()
	_ = c.Append("research the api", "claude", []float32{0.1, 0.2, 0.3})
	_ = c.Append("implement the api", "kimi", []float32{0.3, 0.2, 0.1})

	if err := SaveCacheFile(path, c); err != nil {
		t.Fatalf("SaveCacheFile: %v", err)
	}
	reloaded, err := LoadCacheFile(path)
	if err != nil {
		t.Fatalf("LoadCacheFile: %v", err)
	}
	if reloaded.Len() != 2 {
		t.Fatalf("reloaded.Len() = %d, want 2", reloaded.Len())
	}
	if reloaded.Dim() != 3 {
		t.Fatalf("reloaded.Dim() = %d, want 3", reloaded.Dim())
	}
}

func TestLoadCacheFile_MissingFileIsEmptyNotError(t *testing.T) {
	c, err := LoadCacheFile(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadCacheFile: %v", err)
	}
	if c.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", c.Len())
	}
}

func TestCache_SimilaritiesTopThreeAverageNormalised(t *testing.T) {
	c := NewCache()
	_ = c.Append("t1", "claude", []float32{1, 0, 0})
	_ = c.Append("t2", "claude", []float32{0.9, 0.1, 0})
	_ = c.Append("t3", "claude", []float32{0.8, 0.2, 0})
	_ = c.Append("t4", "claude", []float32{-1, 0, 0}) // fourth, excluded from top-3
	_ = c.Append("t5", "kimi", []float32{0, 1, 0})

	agents := []router.AgentID{"claude", "kimi"}
	scores := c.Similarities([]float32{1, 0, 0}, agents)

	if scores["claude"] != 1.0 {
		t.Errorf("claude = %v, want 1.0 (max agent)", scores["claude"])
	}
	if scores["kimi"] != 0 {
		t.Errorf("kimi = %v, want 0 (orthogonal query)", scores["kimi"])
	}
}

func TestCache_SimilaritiesEmptyCacheIsAllZero(t *testing.T) {
	c := NewCache()
	scores := c.Similarities([]float32{1, 0}, []router.AgentID{"kimi", "claude"})
	for a, s := range scores {
		if s != 0 {
			t.Errorf("agent %q = %v, want 0 on empty cache", a, s)
		}
	}
}
