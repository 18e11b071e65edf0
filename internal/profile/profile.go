// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package profile implements the Agent Profile Store and Historical
// Learner: per-agent success statistics seeded from a
// static registry, reinforced by completion feedback, and a recency-biased
// success predictor over the resulting learning log.
package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/AleutianAI/agentrouter/internal/router"
	"github.com/AleutianAI/agentrouter/internal/taxonomy"
)

// defaultAvgDuration seeds avg_task_duration before any completion has been
// observed.
const defaultAvgDuration = 30.0

// successEMAAlpha is the exponential moving average learning rate applied
// to success_rate on every completion.
const successEMAAlpha = 0.1

// Profile is one agent's capability and performance record.
type Profile struct {
	AgentID          router.AgentID     `json:"agent_id"`
	Emoji            string             `json:"emoji"`
	Specialty        string             `json:"specialty"`
	CapabilityVector map[string]float64 `json:"capability_vector"`
	SuccessRate      float64            `json:"success_rate"`
	AvgTaskDuration  float64            `json:"avg_task_duration"`
	TaskCount        int                `json:"task_count"`
	Domains          []string           `json:"domains"`
	Keywords         []string           `json:"keywords"`
}

// Completion is one observed task outcome fed into Store.UpdateProfile.
type Completion struct {
	TaskID          string
	AgentID         router.AgentID
	TaskDescription string
	Success         bool
	DurationMinutes float64
}

// Store holds every agent's Profile in memory and persists the whole set
// to a single JSON document after each mutation.
//
// # Thread Safety
//
// Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	profiles map[router.AgentID]*Profile
	path     string
}

// NewStore loads profiles from path if present, or seeds them from the
// embedded agent registry.
func NewStore(path string) (*Store, error) {
	s := &Store{profiles: make(map[router.AgentID]*Profile), path: path}

	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		if err := s.seed(); err != nil {
			return nil, err
		}
		return s, s.save()
	case err != nil:
		return nil, fmt.Errorf("read profile store %s: %w", path, err)
	}

	var loaded map[router.AgentID]*Profile
	if err := json.Unmarshal(raw, &loaded); err != nil {
		return nil, fmt.Errorf("parse profile store %s: %w", path, err)
	}
	s.profiles = loaded
	return s, nil
}

func (s *Store) seed() error {
	registry, err := taxonomy.LoadRegistry()
	if err != nil {
		return fmt.Errorf("load agent registry for profile seeding: %w", err)
	}
	for _, id := range registry.Order {
		seed, ok := registry.Seed(id)
		if !ok {
			continue
		}
		s.profiles[id] = &Profile{
			AgentID:          id,
			Emoji:            seed.Emoji,
			Specialty:        seed.Specialty,
			CapabilityVector: buildCapabilityVector(seed),
			SuccessRate:      seed.BaseSuccessRate,
			AvgTaskDuration:  defaultAvgDuration,
			TaskCount:        0,
			Domains:          append([]string(nil), seed.SeedDomains...),
			Keywords:         append([]string(nil), seed.SeedKeywords...),
		}
	}
	return nil
}

// buildCapabilityVector seeds a fresh profile's capability vector: keyword
// terms at weight 1.0, domain terms at 0.8, specialty terms at 0.9.
func buildCapabilityVector(seed taxonomy.AgentSeed) map[string]float64 {
	vec := make(map[string]float64, len(seed.SeedKeywords)+len(seed.SeedDomains)+2)
	for _, kw := range seed.SeedKeywords {
		vec[kw] = 1.0
	}
	for _, d := range seed.SeedDomains {
		vec[d] = 0.8
	}
	for _, term := range strings.Fields(strings.ToLower(seed.Specialty)) {
		term = strings.Trim(term, "&,")
		if term == "" {
			continue
		}
		vec[term] = 0.9
	}
	return vec
}

// Reset discards every profile and re-seeds from the embedded agent
// registry, then persists the result.
func (s *Store) Reset() error {
	s.mu.Lock()
	s.profiles = make(map[router.AgentID]*Profile)
	if err := s.seed(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()
	return s.save()
}

// Get returns a copy of one agent's profile.
func (s *Store) Get(id router.AgentID) (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[id]
	if !ok {
		return Profile{}, false
	}
	return *p, true
}

// All returns a copy of every agent's profile, keyed by agent ID.
func (s *Store) All() map[router.AgentID]Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[router.AgentID]Profile, len(s.profiles))
	for id, p := range s.profiles {
		out[id] = *p
	}
	return out
}

// UpdateProfile applies one completion record to the named agent, then
// persists the whole store. Unknown agents are a no-op, tolerating a stale
// or malformed agent_id rather than failing the caller's request.
func (s *Store) UpdateProfile(c Completion, taskTFIDF map[string]float64) error {
	s.mu.Lock()
	p, ok := s.profiles[c.AgentID]
	if !ok {
		s.mu.Unlock()
		return nil
	}

	p.TaskCount++
	successVal := 0.0
	if c.Success {
		successVal = 1.0
	}
	p.SuccessRate = (1-successEMAAlpha)*p.SuccessRate + successEMAAlpha*successVal

	if p.TaskCount == 1 {
		p.AvgTaskDuration = c.DurationMinutes
	} else {
		p.AvgTaskDuration = (p.AvgTaskDuration*float64(p.TaskCount-1) + c.DurationMinutes) / float64(p.TaskCount)
	}

	for term, weight := range taskTFIDF {
		if existing, ok := p.CapabilityVector[term]; ok {
			reinforced := existing + 0.01*weight
			if reinforced > 1.0 {
				reinforced = 1.0
			}
			p.CapabilityVector[term] = reinforced
		} else {
			p.CapabilityVector[term] = 0.1 * weight
		}
	}
	s.mu.Unlock()

	return s.save()
}

func (s *Store) save() error {
	s.mu.RLock()
	raw, err := json.MarshalIndent(s.profiles, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal profile store: %w", err)
	}
	return atomicWrite(s.path, raw)
}

// atomicWrite writes raw to path via a temp-file-then-rename so a reader
// never observes a partially written document.
func atomicWrite(path string, raw []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file for %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file for %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file into %s: %w", path, err)
	}
	return nil
}
