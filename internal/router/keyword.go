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
	"strings"

	"github.com/AleutianAI/agentrouter/internal/taxonomy"
)

// KeywordScorer implements the per-agent keyword/phrase taxonomy signal and
// the complexity-bias signal. Both operate directly
// on the raw task string (case-insensitive substring matching) rather than
// the tokenised form — phrase patterns like "across three" must survive as
// contiguous substrings, which tokenisation would destroy.
type KeywordScorer struct {
	cfg *taxonomy.Config
}

// NewKeywordScorer builds a scorer over an immutable, already-loaded
// taxonomy configuration.
func NewKeywordScorer(cfg *taxonomy.Config) *KeywordScorer {
	return &KeywordScorer{cfg: cfg}
}

// rawScore computes one agent's unnormalised keyword score.
func rawScore(taskLower string, e taxonomy.Entry) float64 {
	hits := 0
	for _, kw := range e.Keywords {
		if strings.Contains(taskLower, kw) {
			hits++
		}
	}
	phraseHits := 0
	for _, p := range e.PhrasePatterns {
		if strings.Contains(taskLower, p) {
			phraseHits += 2
		}
	}
	penalty := 0.0
	for _, n := range e.NegativeKeywords {
		if strings.Contains(taskLower, n) {
			penalty += 0.5
		}
	}

	maxPossible := len(e.Keywords)
	if maxPossible < 1 {
		maxPossible = 1
	}
	score := (float64(hits+phraseHits)/float64(maxPossible))*e.Weight - penalty
	if score < 0 {
		return 0
	}
	return score
}

// Score returns the normalised, probability-like keyword distribution
// across every agent in the taxonomy's stable order. When every raw score is zero, the distribution is
// uniformly zero.
func (ks *KeywordScorer) Score(task string) map[AgentID]float64 {
	taskLower := strings.ToLower(task)
	raw := make(map[AgentID]float64, len(ks.cfg.Order))
	var total float64
	for _, id := range ks.cfg.Order {
		e := ks.cfg.Entries[id]
		s := rawScore(taskLower, e)
		raw[id] = s
		total += s
	}
	if total == 0 {
		return raw
	}
	for id, s := range raw {
		raw[id] = s / total
	}
	return raw
}
