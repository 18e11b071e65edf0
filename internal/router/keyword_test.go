// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package router

import (
	"testing"

	"github.com/AleutianAI/agentrouter/internal/taxonomy"
)

func testKeywordScorer(t *testing.T) *KeywordScorer {
	t.Helper()
	cfg, err := taxonomy.LoadTaxonomy()
	if err != nil {
		t.Fatalf("LoadTaxonomy: %v", err)
	}
	return NewKeywordScorer(cfg)
}

func TestKeywordScorer_UniformZeroWhenNoMatches(t *testing.T) {
	ks := testKeywordScorer(t)
	scores := ks.Score("xyzzy")
	for a, s := range scores {
		if s != 0 {
			t.Errorf("agent %q score = %v, want 0", a, s)
		}
	}
}

func TestKeywordScorer_SumsToOneWhenNonzero(t *testing.T) {
	ks := testKeywordScorer(t)
	scores := ks.Score("Research authentication patterns and compare OAuth2 vs JWT")
	var total float64
	for _, s := range scores {
		total += s
	}
	if total < 0.999 || total > 1.001 {
		t.Errorf("scores do not sum to 1: %v (total=%v)", scores, total)
	}
}

func TestKeywordScorer_PhraseBonusFavorsKimi(t *testing.T) {
	ks := testKeywordScorer(t)
	scores := ks.Score("Implement the user dashboard across three services")
	top := AgentID("")
	var best float64
	for a, s := range scores {
		if s > best {
			best, top = s, a
		}
	}
	if top != "kimi" {
		t.Errorf("top agent = %q, want kimi (scores=%v)", top, scores)
	}
}

func TestRawScore_NeverNegative(t *testing.T) {
	e := taxonomy.Entry{
		Keywords:         []string{"foo"},
		NegativeKeywords: []string{"bar", "baz", "qux"},
		Weight:           1.0,
	}
	got := rawScore("this task mentions bar baz and qux but not the keyword", e)
	if got < 0 {
		t.Errorf("rawScore = %v, want >= 0", got)
	}
}
