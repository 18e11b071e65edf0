// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package profile

import (
	"path/filepath"
	"testing"
)

func newTestLearner(t *testing.T) (*Learner, *Store) {
	t.Helper()
	s := newTestStore(t)
	logPath := filepath.Join(t.TempDir(), "learning_log.json")
	l, err := NewLearner(s, logPath, nil)
	if err != nil {
		t.Fatalf("NewLearner: %v", err)
	}
	return l, s
}

func TestLearnFromCompletion_UpdatesProfileAndLog(t *testing.T) {
	l, s := newTestLearner(t)

	learned, err := l.LearnFromCompletion(Completion{
		TaskID: "task-1", AgentID: "claude", TaskDescription: "research the api", Success: true, DurationMinutes: 12,
	}, nil)
	if err != nil {
		t.Fatalf("LearnFromCompletion: %v", err)
	}
	if !learned {
		t.Fatal("expected first completion to be learned")
	}

	p, _ := s.Get("claude")
	if p.TaskCount != 1 {
		t.Errorf("TaskCount = %d, want 1", p.TaskCount)
	}
	stats := l.GetStats()
	if stats.TotalLearningEvents != 1 {
		t.Errorf("TotalLearningEvents = %d, want 1", stats.TotalLearningEvents)
	}
}

func TestLearnFromCompletion_DuplicateTaskIDIsIdempotent(t *testing.T) {
	l, s := newTestLearner(t)
	c := Completion{TaskID: "task-dup", AgentID: "kimi", TaskDescription: "implement the feature", Success: true, DurationMinutes: 5}

	if _, err := l.LearnFromCompletion(c, nil); err != nil {
		t.Fatalf("LearnFromCompletion (first): %v", err)
	}
	learned, err := l.LearnFromCompletion(c, nil)
	if err != nil {
		t.Fatalf("LearnFromCompletion (second): %v", err)
	}
	if learned {
		t.Fatal("expected duplicate task_id to be rejected as already learned")
	}

	p, _ := s.Get("kimi")
	if p.TaskCount != 1 {
		t.Errorf("TaskCount = %d, want 1 (duplicate must not double-count)", p.TaskCount)
	}
}

func TestGetStats_NoDataWhenEmpty(t *testing.T) {
	l, _ := newTestLearner(t)
	stats := l.GetStats()
	if stats.Status != "no_data" {
		t.Errorf("Status = %q, want no_data", stats.Status)
	}
}

func TestGetStats_RecentSuccessRateAndAgentCounts(t *testing.T) {
	l, _ := newTestLearner(t)
	completions := []Completion{
		{TaskID: "1", AgentID: "claude", TaskDescription: "research x", Success: true, DurationMinutes: 10},
		{TaskID: "2", AgentID: "claude", TaskDescription: "research y", Success: false, DurationMinutes: 20},
		{TaskID: "3", AgentID: "kimi", TaskDescription: "implement z", Success: true, DurationMinutes: 30},
	}
	for _, c := range completions {
		if _, err := l.LearnFromCompletion(c, nil); err != nil {
			t.Fatalf("LearnFromCompletion: %v", err)
		}
	}

	stats := l.GetStats()
	if stats.Status != "active" {
		t.Fatalf("Status = %q, want active", stats.Status)
	}
	if stats.TotalLearningEvents != 3 {
		t.Errorf("TotalLearningEvents = %d, want 3", stats.TotalLearningEvents)
	}
	wantRate := 2.0 / 3.0
	if stats.RecentSuccessRate != wantRate {
		t.Errorf("RecentSuccessRate = %v, want %v", stats.RecentSuccessRate, wantRate)
	}
	if stats.LearningByAgent["claude"] != 2 {
		t.Errorf("LearningByAgent[claude] = %d, want 2", stats.LearningByAgent["claude"])
	}
	if stats.LearningByAgent["kimi"] != 1 {
		t.Errorf("LearningByAgent[kimi] = %d, want 1", stats.LearningByAgent["kimi"])
	}
	wantAvgDuration := (10.0 + 20.0 + 30.0) / 3.0
	if stats.AvgTaskDuration != wantAvgDuration {
		t.Errorf("AvgTaskDuration = %v, want %v", stats.AvgTaskDuration, wantAvgDuration)
	}
}

func TestPredictSuccess_BlendsBaseAndRecentSimilar(t *testing.T) {
	l, s := newTestLearner(t)
	base, _ := s.Get("claude")

	// No history yet: prediction equals the base success rate.
	if got := l.PredictSuccess("claude", "research the architecture"); got != base.SuccessRate {
		t.Errorf("PredictSuccess with no history = %v, want base rate %v", got, base.SuccessRate)
	}

	for i := 0; i < 3; i++ {
		c := Completion{TaskID: "sim-" + string(rune('a'+i)), AgentID: "claude", TaskDescription: "research the architecture deeply", Success: true, DurationMinutes: 10}
		if _, err := l.LearnFromCompletion(c, nil); err != nil {
			t.Fatalf("LearnFromCompletion: %v", err)
		}
	}

	got := l.PredictSuccess("claude", "research the architecture")
	if got <= base.SuccessRate {
		t.Errorf("PredictSuccess after similar successes = %v, want > base rate %v", got, base.SuccessRate)
	}
}

func TestPredictSuccess_UnknownAgentReturnsNeutral(t *testing.T) {
	l, _ := newTestLearner(t)
	if got := l.PredictSuccess("nonexistent", "anything"); got != 0.5 {
		t.Errorf("PredictSuccess for unknown agent = %v, want 0.5", got)
	}
}

func TestLearner_Reset(t *testing.T) {
	l, s := newTestLearner(t)
	if _, err := l.LearnFromCompletion(Completion{TaskID: "1", AgentID: "claude", Success: true, DurationMinutes: 1}, nil); err != nil {
		t.Fatalf("LearnFromCompletion: %v", err)
	}
	if err := l.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if stats := l.GetStats(); stats.Status != "no_data" {
		t.Errorf("Status after reset = %q, want no_data", stats.Status)
	}
	p, _ := s.Get("claude")
	if p.TaskCount != 0 {
		t.Errorf("TaskCount after reset = %d, want 0", p.TaskCount)
	}
}

func TestWordOverlapSimilarity_Basics(t *testing.T) {
	if got := wordOverlapSimilarity("", "research the api"); got != 0 {
		t.Errorf("empty string similarity = %v, want 0", got)
	}
	if got := wordOverlapSimilarity("research the api", "research the api"); got != 1 {
		t.Errorf("identical string similarity = %v, want 1", got)
	}
	if got := wordOverlapSimilarity("research the api", "draft a sketch"); got != 0 {
		t.Errorf("disjoint string similarity = %v, want 0", got)
	}
}
