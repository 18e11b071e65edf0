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

import "strings"

// ComplexityClass derives the coarse complexity class of a task: high if
// two or more high indicators are present or the task is longer than 20
// words; low if two or more low indicators are present or the task is
// shorter than 8 words; medium otherwise.
func (ks *KeywordScorer) ComplexityClass(task string) string {
	taskLower := strings.ToLower(task)
	highHits := 0
	for _, ind := range ks.cfg.ComplexityIndicators.High {
		if strings.Contains(taskLower, ind) {
			highHits++
		}
	}
	lowHits := 0
	for _, ind := range ks.cfg.ComplexityIndicators.Low {
		if strings.Contains(taskLower, ind) {
			lowHits++
		}
	}
	wordCount := len(strings.Fields(task))

	switch {
	case highHits >= 2 || wordCount > 20:
		return "high"
	case lowHits >= 2 || wordCount < 8:
		return "low"
	default:
		return "medium"
	}
}

// ComplexityScores returns, per agent, the match score between the task's
// complexity class and that agent's configured bias:
// +0.2 on an exact match, -0.1 on an extreme mismatch (high vs low), 0
// otherwise.
func (ks *KeywordScorer) ComplexityScores(task string) map[AgentID]float64 {
	class := ks.ComplexityClass(task)
	out := make(map[AgentID]float64, len(ks.cfg.Order))
	for _, id := range ks.cfg.Order {
		bias := ks.cfg.Entries[id].ComplexityBias
		switch {
		case class == bias:
			out[id] = 0.2
		case (class == "high" && bias == "low") || (class == "low" && bias == "high"):
			out[id] = -0.1
		default:
			out[id] = 0
		}
	}
	return out
}

// complexityEstimateIndicators are the keywords _estimate_complexity draws
// on in the original source — distinct from the taxonomy's coarse
// high/low indicator lists, which only classify into {low, medium, high}.
var complexityEstimateIndicators = []string{
	"complex", "architecture", "system", "integration", "scale",
	"distributed", "concurrent", "algorithm", "optimize",
	"refactor", "redesign", "middleware", "framework",
}

// EstimateComplexity computes a continuous 0-1 complexity estimate for a
// task, supplementing the discrete ComplexityClass with a diagnostic score
// surfaced only from explain().
func (tz *Tokenizer) EstimateComplexity(task string) float64 {
	tokens := tz.Tokenize(task)
	termCount := len(tokens)

	unique := make(map[string]struct{}, termCount)
	for _, t := range tokens {
		unique[t] = struct{}{}
	}
	denom := termCount
	if denom < 1 {
		denom = 1
	}
	uniqueRatio := float64(len(unique)) / float64(denom)

	taskLower := strings.ToLower(task)
	indicatorCount := 0
	for _, ind := range complexityEstimateIndicators {
		if strings.Contains(taskLower, ind) {
			indicatorCount++
		}
	}

	termFactor := float64(termCount) / 50
	if termFactor > 1 {
		termFactor = 1
	}
	indicatorFactor := float64(indicatorCount) / 5
	if indicatorFactor > 1 {
		indicatorFactor = 1
	}

	score := termFactor*0.3 + uniqueRatio*0.3 + indicatorFactor*0.4
	if score > 1 {
		score = 1
	}
	return score
}
