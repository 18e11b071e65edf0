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
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/agentrouter/internal/taxonomy"
)

// EmbeddingProvider supplies the Tier 1 dense-similarity signal. A nil
// result with ok=false signals "embedding unavailable for this call"
// — the router never
// treats that as an error.
type EmbeddingProvider interface {
	Similarities(ctx context.Context, task string, agents []AgentID, timeout time.Duration) (scores map[AgentID]float64, ok bool)
}

var ensembleTracer = otel.Tracer("github.com/AleutianAI/agentrouter/internal/router")

var (
	routeDecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agentrouter",
		Subsystem: "ensemble",
		Name:      "decisions_total",
		Help:      "Total routing decisions by recommended agent and degradation suffix.",
	}, []string{"agent", "suffix"})

	routeLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "agentrouter",
		Subsystem: "ensemble",
		Name:      "latency_seconds",
		Help:      "Wall-clock latency of a single route() call.",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})

	routeTierTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agentrouter",
		Subsystem: "ensemble",
		Name:      "tier_total",
		Help:      "Total routing decisions by effective tier label.",
	}, []string{"tier"})
)

// Router is the ensemble decision function. The
// TF-IDF index and keyword taxonomy are immutable for the duration of a
// query; multiple queries may run concurrently against one Router.
type Router struct {
	taxonomyCfg *taxonomy.Config
	keyword     *KeywordScorer
	tok         *Tokenizer
	tfidf       *TFIDFIndex // nil when no index has been built
	embedding   EmbeddingProvider

	// OnDecision, when set, is invoked after every successful Route call so
	// a caller can fan the decision out to downstream collaborators such as
	// the websocket event stream or a message bus. It is called
	// synchronously but must not block or fail routing — callers that need
	// async delivery should make it non-blocking themselves.
	OnDecision func(MatchResult)
}

// NewRouter builds an ensemble router. tfidf may be nil (no index built
// yet); embedding may be nil (no provider configured).
func NewRouter(cfg *taxonomy.Config, tok *Tokenizer, tfidf *TFIDFIndex, embedding EmbeddingProvider) *Router {
	return &Router{
		taxonomyCfg: cfg,
		keyword:     NewKeywordScorer(cfg),
		tok:         tok,
		tfidf:       tfidf,
		embedding:   embedding,
	}
}

// SetIndex atomically swaps in a freshly rebuilt TF-IDF index. Safe to call
// while other goroutines are routing: Go's pointer assignment for an
// aligned word is atomic with respect to the reads in Route, and the
// router never mutates an index once built.
func (r *Router) SetIndex(idx *TFIDFIndex) {
	r.tfidf = idx
}

// Route selects the best-fit agent for task. Returns ErrInvalidInput for an
// empty task unless opts.LenientEmptyInput is set, in which case it
// degrades to the keyword-only tier and returns the fallback agent at
// confidence 0.
func (r *Router) Route(ctx context.Context, task string, opts RouteOptions) (MatchResult, error) {
	ctx, span := ensembleTracer.Start(ctx, "router.Route")
	defer span.End()
	start := time.Now()

	if task == "" {
		if !opts.LenientEmptyInput {
			span.SetStatus(codes.Error, ErrInvalidInput.Error())
			return MatchResult{}, ErrInvalidInput
		}
		opts.Tier = TierThree
		w := Weights{Keyword: 1.0}
		opts.Weights = &w
	}

	result := r.route(ctx, task, opts)

	routeLatency.Observe(time.Since(start).Seconds())
	routeTierTotal.WithLabelValues(result.Tier).Inc()
	routeDecisionsTotal.WithLabelValues(string(result.RecommendedAgent), degradationSuffix(result.Method)).Inc()

	span.SetAttributes(
		attribute.String("router.tier", result.Tier),
		attribute.String("router.agent", string(result.RecommendedAgent)),
		attribute.Float64("router.confidence", result.Confidence),
		attribute.String("router.method", result.Method),
	)

	if r.OnDecision != nil {
		r.OnDecision(result)
	}

	return result, nil
}

// Explain is Route with the per-signal breakdown populated.
func (r *Router) Explain(ctx context.Context, task string, opts RouteOptions) (MatchResult, error) {
	opts.Explain = true
	return r.Route(ctx, task, opts)
}

func degradationSuffix(method string) string {
	switch {
	case method == "fallback-error":
		return "fallback-error"
	case hasSuffix(method, "-threshold-adjusted"):
		return "threshold-adjusted"
	case hasSuffix(method, "-fallback"):
		return "fallback"
	case hasSuffix(method, "tier2-keyword-fallback") || containsSubstr(method, "tier2-keyword-fallback"):
		return "keyword-fallback"
	default:
		return "none"
	}
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}

func containsSubstr(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

func (r *Router) route(ctx context.Context, task string, opts RouteOptions) MatchResult {
	tier := opts.Tier
	if tier == "" {
		tier = TierHybrid
	}
	weights := DefaultWeights(tier)
	if opts.Weights != nil {
		weights = *opts.Weights
	}
	thresholds := opts.AgentThresholds
	if thresholds == nil {
		thresholds = DefaultThresholds()
	}
	fallbackAgent := opts.FallbackAgent
	if fallbackAgent == "" {
		fallbackAgent = "kimi"
	}
	topK := opts.TopK
	if topK <= 0 {
		topK = 3
	}
	timeout := opts.EmbeddingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	agents := r.taxonomyCfg.Order
	tierLabel := string(tier)

	wEmbed, wKw, wTfidf, wCx := weights.Embedding, weights.Keyword, weights.TFIDF, weights.Complexity

	// Degrade to tier3 up front when TF-IDF was requested but no index is
	// available and no other signal is requested.
	if wTfidf > 0 && (r.tfidf == nil || r.tfidf.IsEmpty()) && wKw == 0 && wEmbed == 0 {
		tierLabel = string(TierThree)
		wKw = 1.0
		wTfidf = 0.0
	}

	var embedScores map[AgentID]float64
	if wEmbed > 0 && r.embedding != nil {
		if scores, ok := r.embedding.Similarities(ctx, task, agents, timeout); ok {
			embedScores = scores
		}
	}
	var kwScores map[AgentID]float64
	if wKw > 0 {
		kwScores = r.keyword.Score(task)
	}
	var tfidfScores map[AgentID]float64
	if wTfidf > 0 && r.tfidf != nil && !r.tfidf.IsEmpty() {
		tfidfScores = r.tfidf.Query(task, topK, agents, opts.UseBigrams, opts.UseTrigrams)
	}
	var cxScores map[AgentID]float64
	if wCx > 0 {
		cxScores = r.keyword.ComplexityScores(task)
	}

	// Embedding requested but unavailable: rebalance toward keyword, or
	// emit fallback-error if nothing else is available.
	if wEmbed > 0 && embedScores == nil {
		if wKw > 0 {
			wEmbed, wKw, wTfidf = 0, 0.8, 0.2
			tierLabel = "tier2-keyword-fallback"
		} else {
			return MatchResult{
				RecommendedAgent: fallbackAgent,
				Confidence:       0,
				Method:           "fallback-error",
				Tier:             "fallback-error",
				Weights:          weights,
				Error:            "embedding provider unavailable and no keyword signal requested",
			}
		}
	}

	if embedScores == nil && kwScores == nil && tfidfScores == nil && cxScores == nil {
		return MatchResult{
			RecommendedAgent: fallbackAgent,
			Confidence:       0,
			Method:           "fallback-error",
			Tier:             "fallback-error",
			Weights:          weights,
			Error:            "no routing signal available",
		}
	}

	final := make(map[AgentID]float64, len(agents))
	for _, a := range agents {
		var s float64
		if embedScores != nil {
			s += wEmbed * embedScores[a]
		}
		if kwScores != nil {
			s += wKw * kwScores[a]
		}
		if tfidfScores != nil {
			s += wTfidf * tfidfScores[a]
		}
		if cxScores != nil {
			s += wCx * cxScores[a]
		}
		final[a] = s
	}

	ranked := rankAgents(agents, final)
	winner := ranked[0].Agent
	confidence := ranked[0].Score
	suffix := ""

	threshold := thresholds[winner]
	if threshold == 0 {
		threshold = 0.4
	}
	if confidence < threshold && len(ranked) >= 2 {
		second := ranked[1]
		secondThreshold := thresholds[second.Agent]
		if secondThreshold == 0 {
			secondThreshold = 0.4
		}
		if second.Score >= secondThreshold && (confidence-second.Score) < 0.10 {
			winner = second.Agent
			confidence = second.Score
			suffix = "-threshold-adjusted"
		} else {
			winner = fallbackAgent
			confidence = final[fallbackAgent]
			suffix = "-fallback"
		}
	} else if confidence < threshold {
		winner = fallbackAgent
		confidence = final[fallbackAgent]
		suffix = "-fallback"
	}

	alternatives := make([]AgentID, 0, len(ranked))
	for _, sc := range ranked {
		if sc.Agent != winner {
			alternatives = append(alternatives, sc.Agent)
		}
	}

	result := MatchResult{
		RecommendedAgent: winner,
		Confidence:       round4(confidence),
		Method:           fmt.Sprintf("%s-ensemble%s", tierLabel, suffix),
		Tier:             tierLabel,
		Weights:          Weights{Embedding: wEmbed, Keyword: wKw, TFIDF: wTfidf, Complexity: wCx},
		Scores:           roundScores(ranked),
		Alternatives:     alternatives,
	}

	if opts.Explain {
		result.Signals = map[string]map[AgentID]float64{}
		if embedScores != nil {
			result.Signals["embedding"] = roundMap(embedScores)
		}
		if kwScores != nil {
			result.Signals["keyword"] = roundMap(kwScores)
		}
		if tfidfScores != nil {
			result.Signals["tfidf"] = roundMap(tfidfScores)
		}
		if cxScores != nil {
			result.Signals["complexity"] = roundMap(cxScores)
		}
		result.Complexity = r.keyword.ComplexityClass(task)
		result.ComplexityScore = round4(r.tok.EstimateComplexity(task))
	}

	return result
}

func rankAgents(agents []AgentID, scores map[AgentID]float64) []ScoredAgent {
	ranked := make([]ScoredAgent, len(agents))
	for i, a := range agents {
		ranked[i] = ScoredAgent{Agent: a, Score: scores[a]}
	}
	// Stable sort preserves the taxonomy's registry order among exact ties.
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	return ranked
}

func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}

func roundScores(ranked []ScoredAgent) []ScoredAgent {
	out := make([]ScoredAgent, len(ranked))
	for i, s := range ranked {
		out[i] = ScoredAgent{Agent: s.Agent, Score: round4(s.Score)}
	}
	return out
}

func roundMap(m map[AgentID]float64) map[AgentID]float64 {
	out := make(map[AgentID]float64, len(m))
	for k, v := range m {
		out[k] = round4(v)
	}
	return out
}
