// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package api exposes the router, the agent profile store, and the
// historical learner over HTTP via gin: POST /v1/route, POST /v1/explain,
// POST /v1/learn, GET /v1/stats, GET /healthz, and a websocket decision
// feed at GET /v1/stream.
package api

import (
	"github.com/AleutianAI/agentrouter/internal/router"
)

// RouteRequest is the body of POST /v1/route and POST /v1/explain.
type RouteRequest struct {
	Task            string             `json:"task" binding:"required"`
	Tier            router.Tier        `json:"tier,omitempty"`
	Weights         *router.Weights    `json:"weights,omitempty"`
	AgentThresholds map[string]float64 `json:"agent_thresholds,omitempty"`
	FallbackAgent   string             `json:"fallback_agent,omitempty"`
	UseBigrams      *bool              `json:"use_bigrams,omitempty"`
	UseTrigrams     *bool              `json:"use_trigrams,omitempty"`
}

// LearnRequest is the body of POST /v1/learn: one completed task outcome.
type LearnRequest struct {
	TaskID          string  `json:"task_id" binding:"required"`
	AgentID         string  `json:"agent_id" binding:"required"`
	TaskDescription string  `json:"task_description"`
	Success         bool    `json:"success"`
	DurationMinutes float64 `json:"duration_minutes"`
}

// LearnResponse reports whether a learn call changed anything.
type LearnResponse struct {
	Learned bool `json:"learned"`
}

// ErrorResponse is the body of any non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
