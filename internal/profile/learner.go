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
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/AleutianAI/agentrouter/internal/router"
)

// similarTaskThreshold is the minimum text similarity for a past task to be
// considered "similar" when predicting success.
const similarTaskThreshold = 0.3

// recentSimilarTaskLimit bounds how many similar past tasks feed the
// recent-success blend, mirroring the reference's top-5-by-recency cutoff.
const recentSimilarTaskLimit = 5

// recentStatsWindow bounds how many of the most recent learning events
// contribute to GetStats' recent success rate.
const recentStatsWindow = 50

// LearningEntry is one persisted record of a learned completion.
type LearningEntry struct {
	Timestamp       time.Time      `json:"timestamp"`
	TaskID          string         `json:"task_id"`
	AgentID         router.AgentID `json:"agent_id"`
	TaskDescription string         `json:"task_description"`
	Success         bool           `json:"success"`
	DurationMinutes float64        `json:"duration"`
}

// Stats summarises the learning log.
type Stats struct {
	Status              string                   `json:"status"`
	TotalLearningEvents int                      `json:"total_learning_events"`
	RecentSuccessRate   float64                  `json:"recent_success_rate"`
	AvgTaskDuration     float64                  `json:"avg_task_duration"`
	LearningByAgent     map[router.AgentID]int   `json:"learning_by_agent"`
	FirstLearning       *time.Time               `json:"first_learning,omitempty"`
	LastLearning        *time.Time               `json:"last_learning,omitempty"`
}

// SimilarityFunc scores the textual similarity of two task descriptions in
// [0, 1]. Callers typically supply the TF-IDF cosine similarity already
// computed by the router package; a word-overlap default is used otherwise.
type SimilarityFunc func(a, b string) float64

// Learner is the Historical Learner: it applies
// completion feedback to the Profile Store and maintains an idempotent,
// append-only log of what it has already learned.
//
// # Thread Safety
//
// Safe for concurrent use.
type Learner struct {
	mu         sync.Mutex
	store      *Store
	logPath    string
	entries    []LearningEntry
	similarity SimilarityFunc
}

// NewLearner loads the learning log at logPath (or starts empty) and binds
// it to store. A nil similarity function uses a word-overlap default.
func NewLearner(store *Store, logPath string, similarity SimilarityFunc) (*Learner, error) {
	if similarity == nil {
		similarity = wordOverlapSimilarity
	}
	l := &Learner{store: store, logPath: logPath, similarity: similarity}

	raw, err := os.ReadFile(logPath)
	if os.IsNotExist(err) {
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read learning log %s: %w", logPath, err)
	}
	if err := json.Unmarshal(raw, &l.entries); err != nil {
		return nil, fmt.Errorf("parse learning log %s: %w", logPath, err)
	}
	return l, nil
}

// LearnFromCompletion applies one completion to the profile store and
// appends a learning-log entry, unless task_id has already been learned.
// Returns learned=false, err=nil when the task_id is a duplicate.
func (l *Learner) LearnFromCompletion(c Completion, taskTFIDF map[string]float64) (learned bool, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if c.TaskID != "" {
		for _, e := range l.entries {
			if e.TaskID == c.TaskID {
				return false, nil
			}
		}
	}

	if err := l.store.UpdateProfile(c, taskTFIDF); err != nil {
		return false, fmt.Errorf("update profile from completion: %w", err)
	}

	l.entries = append(l.entries, LearningEntry{
		Timestamp:       time.Now(),
		TaskID:          c.TaskID,
		AgentID:         c.AgentID,
		TaskDescription: c.TaskDescription,
		Success:         c.Success,
		DurationMinutes: c.DurationMinutes,
	})
	raw, err := json.MarshalIndent(l.entries, "", "  ")
	if err != nil {
		return true, fmt.Errorf("marshal learning log: %w", err)
	}
	if err := atomicWrite(l.logPath, raw); err != nil {
		return true, fmt.Errorf("persist learning log: %w", err)
	}
	return true, nil
}

// GetStats summarises the learning log.
func (l *Learner) GetStats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) == 0 {
		return Stats{Status: "no_data"}
	}

	window := l.entries
	if len(window) > recentStatsWindow {
		window = window[len(window)-recentStatsWindow:]
	}
	var successCount int
	for _, e := range window {
		if e.Success {
			successCount++
		}
	}

	var durationSum float64
	var durationCount int
	byAgent := make(map[router.AgentID]int)
	for _, e := range l.entries {
		if e.DurationMinutes > 0 {
			durationSum += e.DurationMinutes
			durationCount++
		}
		byAgent[e.AgentID]++
	}
	var avgDuration float64
	if durationCount > 0 {
		avgDuration = durationSum / float64(durationCount)
	}

	first := l.entries[0].Timestamp
	last := l.entries[len(l.entries)-1].Timestamp

	return Stats{
		Status:              "active",
		TotalLearningEvents: len(l.entries),
		RecentSuccessRate:   float64(successCount) / float64(len(window)),
		AvgTaskDuration:     avgDuration,
		LearningByAgent:     byAgent,
		FirstLearning:       &first,
		LastLearning:        &last,
	}
}

// PredictSuccess blends an agent's overall success_rate with its recent
// performance on similar tasks.
func (l *Learner) PredictSuccess(agentID router.AgentID, taskDescription string) float64 {
	p, ok := l.store.Get(agentID)
	if !ok {
		return 0.5
	}
	base := p.SuccessRate

	similar := l.findSimilarPastTasks(agentID, taskDescription)
	if len(similar) == 0 {
		return base
	}
	var successCount int
	for _, e := range similar {
		if e.Success {
			successCount++
		}
	}
	recentSuccess := float64(successCount) / float64(len(similar))
	return 0.6*base + 0.4*recentSuccess
}

func (l *Learner) findSimilarPastTasks(agentID router.AgentID, taskDescription string) []LearningEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	var matches []LearningEntry
	for _, e := range l.entries {
		if e.AgentID != agentID {
			continue
		}
		if l.similarity(taskDescription, e.TaskDescription) < similarTaskThreshold {
			continue
		}
		matches = append(matches, e)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Timestamp.After(matches[j].Timestamp) })
	if len(matches) > recentSimilarTaskLimit {
		matches = matches[:recentSimilarTaskLimit]
	}
	return matches
}

// Reset clears the learning log and re-seeds the bound profile store.
func (l *Learner) Reset() error {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()

	if err := atomicWrite(l.logPath, []byte("[]")); err != nil {
		return fmt.Errorf("reset learning log: %w", err)
	}
	return l.store.Reset()
}

// wordOverlapSimilarity is the default SimilarityFunc: Jaccard similarity
// over lowercased whitespace-split tokens. Callers that already have a
// tokeniser and TF-IDF index (the router package) should supply its cosine
// similarity instead via NewLearner for a sharper signal.
func wordOverlapSimilarity(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	var intersection int
	for t := range setA {
		if _, ok := setB[t]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(s))
	out := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		out[f] = struct{}{}
	}
	return out
}
