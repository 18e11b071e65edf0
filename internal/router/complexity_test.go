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

import "testing"

func TestComplexityClass_ByWordCount(t *testing.T) {
	ks := testKeywordScorer(t)

	if got := ks.ComplexityClass("fix typo"); got != "low" {
		t.Errorf("short task classified %q, want low", got)
	}

	long := "design a distributed concurrent architecture spanning multiple services " +
		"with careful integration testing across every downstream consumer system"
	if got := ks.ComplexityClass(long); got != "high" {
		t.Errorf("long task classified %q, want high", got)
	}
}

func TestComplexityScores_ExactAndExtremeMismatch(t *testing.T) {
	ks := testKeywordScorer(t)
	scores := ks.ComplexityScores("quick fix")
	for _, s := range scores {
		if s != 0.2 && s != -0.1 && s != 0 {
			t.Errorf("unexpected complexity score %v", s)
		}
	}
}

func TestEstimateComplexity_InRange(t *testing.T) {
	tok := testTokenizer(t)
	score := tok.EstimateComplexity("design a distributed concurrent system architecture with a scalable middleware framework")
	if score < 0 || score > 1 {
		t.Errorf("EstimateComplexity = %v, want in [0,1]", score)
	}
	if score <= 0 {
		t.Errorf("expected nonzero complexity estimate for an indicator-rich task, got %v", score)
	}
}

func TestEstimateComplexity_EmptyTaskIsZero(t *testing.T) {
	tok := testTokenizer(t)
	if score := tok.EstimateComplexity(""); score != 0 {
		t.Errorf("EstimateComplexity(\"\") = %v, want 0", score)
	}
}
