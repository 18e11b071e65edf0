// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package taxonomy

import "testing"

func TestLoadTaxonomy(t *testing.T) {
	cfg, err := LoadTaxonomy()
	if err != nil {
		t.Fatalf("LoadTaxonomy: %v", err)
	}

	wantOrder := []AgentID{"kimi", "claude", "copilot", "codex", "ollama"}
	if len(cfg.Order) != len(wantOrder) {
		t.Fatalf("got %d agents, want %d", len(cfg.Order), len(wantOrder))
	}
	for i, id := range wantOrder {
		if cfg.Order[i] != id {
			t.Errorf("Order[%d] = %q, want %q (tie-breaking order must be stable)", i, cfg.Order[i], id)
		}
	}

	t.Run("every agent has a non-empty keyword and phrase set", func(t *testing.T) {
		for _, id := range cfg.Order {
			e, ok := cfg.Entry(id)
			if !ok {
				t.Fatalf("missing entry for %q", id)
			}
			if len(e.Keywords) == 0 {
				t.Errorf("%q: empty keywords", id)
			}
			if len(e.PhrasePatterns) == 0 {
				t.Errorf("%q: empty phrase_patterns", id)
			}
			if e.Weight <= 0 {
				t.Errorf("%q: weight must be positive, got %v", id, e.Weight)
			}
			switch e.ComplexityBias {
			case "low", "medium", "high":
			default:
				t.Errorf("%q: invalid complexity_bias %q", id, e.ComplexityBias)
			}
		}
	})

	t.Run("complexity indicators are non-empty", func(t *testing.T) {
		if len(cfg.ComplexityIndicators.High) == 0 {
			t.Error("empty high complexity indicators")
		}
		if len(cfg.ComplexityIndicators.Low) == 0 {
			t.Error("empty low complexity indicators")
		}
	})

	t.Run("known scenario phrase patterns are present", func(t *testing.T) {
		kimi, _ := cfg.Entry("kimi")
		if !containsString(kimi.PhrasePatterns, "across three") {
			t.Error(`kimi is missing phrase pattern "across three"`)
		}
		codex, _ := cfg.Entry("codex")
		if !containsString(codex.PhrasePatterns, "from scratch") {
			t.Error(`codex is missing phrase pattern "from scratch"`)
		}
		ollama, _ := cfg.Entry("ollama")
		if !containsString(ollama.PhrasePatterns, "rough draft") {
			t.Error(`ollama is missing phrase pattern "rough draft"`)
		}
	})
}

func TestLoadRegistry(t *testing.T) {
	reg, err := LoadRegistry()
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if len(reg.Order) != 5 {
		t.Fatalf("got %d agents, want 5", len(reg.Order))
	}
	for _, id := range reg.Order {
		seed, ok := reg.Seed(id)
		if !ok {
			t.Fatalf("missing seed for %q", id)
		}
		if seed.BaseSuccessRate <= 0 || seed.BaseSuccessRate > 1 {
			t.Errorf("%q: base_success_rate out of range: %v", id, seed.BaseSuccessRate)
		}
		if seed.Specialty == "" {
			t.Errorf("%q: empty specialty", id)
		}
	}
}

func TestLoadStopwords(t *testing.T) {
	set, err := LoadStopwords()
	if err != nil {
		t.Fatalf("LoadStopwords: %v", err)
	}
	for _, w := range []string{"the", "a", "an", "is", "and", "to"} {
		if !set.Contains(w) {
			t.Errorf("expected %q to be a stop-word", w)
		}
	}
	for _, w := range []string{"implement", "architecture", "kubernetes"} {
		if set.Contains(w) {
			t.Errorf("did not expect %q to be a stop-word", w)
		}
	}
}

func containsString(ss []string, target string) bool {
	for _, s := range ss {
		if s == target {
			return true
		}
	}
	return false
}
