// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package router implements the multi-tier predictive task router: the
// tokeniser, the TF-IDF index, the keyword taxonomy scorer, and the
// ensemble decision function that blends them with an optional embedding
// signal into a single recommendation.
package router

import (
	"errors"
	"time"

	"github.com/AleutianAI/agentrouter/internal/taxonomy"
)

// AgentID re-exports taxonomy.AgentID so callers of this package do not
// need to import the taxonomy package directly for the common case.
type AgentID = taxonomy.AgentID

// Tier selects a preset weight configuration.
type Tier string

const (
	TierOne    Tier = "tier1"
	TierTwo    Tier = "tier2"
	TierThree  Tier = "tier3"
	TierHybrid Tier = "hybrid"
)

// Weights is the four-way blend (embedding, keyword, tfidf, complexity).
type Weights struct {
	Embedding  float64 `json:"embedding"`
	Keyword    float64 `json:"keyword"`
	TFIDF      float64 `json:"tfidf"`
	Complexity float64 `json:"complexity"`
}

// DefaultWeights returns the reference weight tuple for a tier. Unknown
// tiers fall back to hybrid.
func DefaultWeights(tier Tier) Weights {
	switch tier {
	case TierOne:
		return Weights{Embedding: 1.0}
	case TierTwo:
		return Weights{Keyword: 0.5, TFIDF: 0.3, Complexity: 0.2}
	case TierThree:
		return Weights{Keyword: 1.0}
	default:
		return Weights{Embedding: 0.35, Keyword: 0.45, TFIDF: 0.20}
	}
}

// Task is the immutable input record.
type Task struct {
	TaskID      string
	Description string
	TaskType    string
	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// RouteOptions customises a single routing call.
type RouteOptions struct {
	Tier                Tier
	Weights             *Weights
	TopK                int
	UseBigrams          bool
	UseTrigrams         bool
	AgentThresholds     map[AgentID]float64
	FallbackAgent       AgentID
	EmbeddingTimeout    time.Duration
	Explain             bool

	// LenientEmptyInput, when set, turns an empty task description into a
	// degraded tier3 keyword-only call that resolves to the fallback agent
	// at confidence 0 instead of returning ErrInvalidInput.
	LenientEmptyInput bool
}

// DefaultRouteOptions returns the reference configuration.
func DefaultRouteOptions() RouteOptions {
	return RouteOptions{
		Tier:             TierHybrid,
		TopK:             3,
		UseBigrams:       true,
		UseTrigrams:      true,
		AgentThresholds:  DefaultThresholds(),
		FallbackAgent:    "kimi",
		EmbeddingTimeout: 5 * time.Second,
	}
}

// DefaultThresholds returns the reference per-agent acceptance thresholds.
func DefaultThresholds() map[AgentID]float64 {
	return map[AgentID]float64{
		"kimi":    0.35,
		"claude":  0.45,
		"copilot": 0.30,
		"codex":   0.40,
		"ollama":  0.50,
	}
}

// MatchResult is the router's output.
type MatchResult struct {
	RecommendedAgent AgentID              `json:"recommended_agent"`
	Confidence       float64              `json:"confidence"`
	Method           string               `json:"method"`
	Tier             string               `json:"tier"`
	Weights          Weights              `json:"weights"`
	Scores           []ScoredAgent        `json:"scores"`
	Signals          map[string]map[AgentID]float64 `json:"signals,omitempty"`
	Alternatives     []AgentID            `json:"alternatives"`
	Complexity       string               `json:"complexity,omitempty"`
	ComplexityScore  float64              `json:"complexity_score,omitempty"`
	Error            string               `json:"error,omitempty"`
}

// ScoredAgent pairs an agent with its final blended score, used for the
// descending Scores list and for Alternatives derivation.
type ScoredAgent struct {
	Agent AgentID `json:"agent"`
	Score float64 `json:"score"`
}

// Errors returned by this package. Routing itself never returns a
// non-nil error for data-availability reasons — these
// are reserved for genuinely invalid input.
var (
	ErrInvalidInput = errors.New("router: task description is empty or invalid")
)
