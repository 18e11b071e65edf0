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

func testTokenizer(t *testing.T) *Tokenizer {
	t.Helper()
	sw, err := taxonomy.LoadStopwords()
	if err != nil {
		t.Fatalf("LoadStopwords: %v", err)
	}
	return NewTokenizer(sw)
}

func TestBuildTFIDFIndex_EmptyCorpus(t *testing.T) {
	idx := BuildTFIDFIndex(testTokenizer(t), nil, true, true)
	if !idx.IsEmpty() {
		t.Fatal("expected empty index for nil corpus")
	}
	scores := idx.Query("anything", 3, []AgentID{"kimi", "claude"}, true, true)
	for a, s := range scores {
		if s != 0 {
			t.Errorf("agent %q score = %v, want 0 on empty index", a, s)
		}
	}
}

func TestTFIDFIndex_QuerySumsToOne(t *testing.T) {
	tok := testTokenizer(t)
	idx := BuildTFIDFIndex(tok, []TrainingPair{
		{Task: "research competing authentication standards", Agent: "claude"},
		{Task: "research distributed consensus algorithms", Agent: "claude"},
		{Task: "quick inline rename of a local variable", Agent: "copilot"},
	}, true, true)

	scores := idx.Query("research authentication standards", 3, []AgentID{"kimi", "claude", "copilot", "codex", "ollama"}, true, true)
	var total float64
	for _, s := range scores {
		total += s
	}
	if total < 0.999 || total > 1.001 {
		t.Errorf("scores do not sum to 1: %v (total=%v)", scores, total)
	}
	if scores["claude"] <= scores["copilot"] {
		t.Errorf("expected claude to dominate copilot: %v", scores)
	}
}

func TestTFIDFIndex_RoundTripIsBitIdentical(t *testing.T) {
	tok := testTokenizer(t)
	idx := BuildTFIDFIndex(tok, []TrainingPair{
		{Task: "deploy the release pipeline to production", Agent: "kimi"},
		{Task: "draft a rough outline for the reports module", Agent: "ollama"},
	}, true, true)

	persisted := idx.ToPersisted()
	reloaded := IndexFromPersisted(tok, persisted, true, true)

	query := "deploy a pipeline to production"
	agents := []AgentID{"kimi", "claude", "copilot", "codex", "ollama"}
	before := idx.Query(query, 3, agents, true, true)
	after := reloaded.Query(query, 3, agents, true, true)
	for _, a := range agents {
		if before[a] != after[a] {
			t.Errorf("agent %q: before=%v after=%v, want bit-identical", a, before[a], after[a])
		}
	}
}

func TestTFIDFIndex_QueryNGramOptionsAffectVectorisation(t *testing.T) {
	tok := testTokenizer(t)
	idx := BuildTFIDFIndex(tok, []TrainingPair{
		{Task: "end to end integration test for the payments pipeline", Agent: "codex"},
		{Task: "quick inline rename near the end of a local variable", Agent: "copilot"},
	}, true, true)

	query := "end to end"
	agents := []AgentID{"kimi", "claude", "copilot", "codex", "ollama"}

	withNGrams := idx.Query(query, 3, agents, true, true)
	unigramsOnly := idx.Query(query, 3, agents, false, false)

	if withNGrams["codex"] == unigramsOnly["codex"] {
		t.Errorf("expected use_bigrams/use_trigrams to change the query vocabulary and thus the score, got identical codex scores %v", withNGrams["codex"])
	}
}

func TestCosineSparse_ZeroMagnitudeIsZero(t *testing.T) {
	if got := CosineSparse(nil, map[string]float64{"a": 1}); got != 0 {
		t.Errorf("CosineSparse(nil, v) = %v, want 0", got)
	}
	if got := CosineSparse(map[string]float64{}, map[string]float64{"a": 1}); got != 0 {
		t.Errorf("CosineSparse(empty, v) = %v, want 0", got)
	}
}

func TestCosineSparse_InRangeZeroToOne(t *testing.T) {
	u := map[string]float64{"a": 1, "b": 2, "c": 0.5}
	v := map[string]float64{"a": 0.5, "b": 1, "d": 3}
	got := CosineSparse(u, v)
	if got < 0 || got > 1 {
		t.Errorf("CosineSparse = %v, want in [0,1]", got)
	}
}

func TestCosineSparse_IdenticalVectorIsOne(t *testing.T) {
	u := map[string]float64{"a": 1, "b": 2}
	got := CosineSparse(u, u)
	if got < 0.999 || got > 1.001 {
		t.Errorf("CosineSparse(u, u) = %v, want ~1", got)
	}
}
