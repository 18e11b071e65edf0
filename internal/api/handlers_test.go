// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/agentrouter/internal/profile"
	"github.com/AleutianAI/agentrouter/internal/router"
	"github.com/AleutianAI/agentrouter/internal/taxonomy"
)

func newTestServer(t *testing.T) (*Server, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg, err := taxonomy.LoadTaxonomy()
	if err != nil {
		t.Fatalf("LoadTaxonomy: %v", err)
	}
	sw, err := taxonomy.LoadStopwords()
	if err != nil {
		t.Fatalf("LoadStopwords: %v", err)
	}
	tok := router.NewTokenizer(sw)
	r := router.NewRouter(cfg, tok, nil, nil)

	store, err := profile.NewStore(filepath.Join(t.TempDir(), "profiles.json"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	learner, err := profile.NewLearner(store, filepath.Join(t.TempDir(), "log.json"), nil)
	if err != nil {
		t.Fatalf("NewLearner: %v", err)
	}

	srv := NewServer(r, store, learner, nil, nil)

	engine := gin.New()
	RegisterRoutes(engine.Group("/"), srv, nil)
	return srv, engine
}

func postJSON(t *testing.T, engine *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestHandleRoute_ReturnsRecommendation(t *testing.T) {
	_, engine := newTestServer(t)
	rec := postJSON(t, engine, "/v1/route", RouteRequest{Task: "research the competitive landscape"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var result router.MatchResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if result.RecommendedAgent == "" {
		t.Error("expected a non-empty recommended agent")
	}
}

func TestHandleRoute_EmptyTaskIsBadRequest(t *testing.T) {
	_, engine := newTestServer(t)
	rec := postJSON(t, engine, "/v1/route", RouteRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (binding:\"required\" should reject an empty task)", rec.Code)
	}
}

func TestHandleExplain_IncludesSignals(t *testing.T) {
	_, engine := newTestServer(t)
	rec := postJSON(t, engine, "/v1/explain", RouteRequest{Task: "implement the new endpoint"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var result router.MatchResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(result.Signals) == 0 {
		t.Error("expected Explain to populate per-signal breakdown")
	}
}

func TestHandleLearn_ThenStatsReflectsIt(t *testing.T) {
	_, engine := newTestServer(t)
	rec := postJSON(t, engine, "/v1/learn", LearnRequest{
		TaskID: "t-1", AgentID: "claude", TaskDescription: "research x", Success: true, DurationMinutes: 5,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var learnResp LearnResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &learnResp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !learnResp.Learned {
		t.Fatal("expected first learn call to be learned")
	}

	statsReq := httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
	statsRec := httptest.NewRecorder()
	engine.ServeHTTP(statsRec, statsReq)
	if statsRec.Code != http.StatusOK {
		t.Fatalf("stats status = %d, body = %s", statsRec.Code, statsRec.Body.String())
	}
	var stats struct {
		Learning profile.Stats `json:"learning"`
	}
	if err := json.Unmarshal(statsRec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("unmarshal stats: %v", err)
	}
	if stats.Learning.TotalLearningEvents != 1 {
		t.Errorf("learning.total_learning_events = %d, want 1", stats.Learning.TotalLearningEvents)
	}
}

func TestHandleHealth_OK(t *testing.T) {
	_, engine := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
