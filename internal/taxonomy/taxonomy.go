// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package taxonomy loads the immutable, embedded configuration that the
// router treats as read-only after startup: the per-agent keyword/phrase
// taxonomy, the static agent registry used to seed profiles, and the
// tokeniser's stop-word set.
package taxonomy

import (
	_ "embed"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed taxonomy.yaml
var defaultTaxonomyYAML []byte

// AgentID identifies a member of the federation. The five reference agents
// are kimi, claude, copilot, codex, and ollama.
type AgentID string

// Entry is one agent's taxonomy configuration. Keywords, phrase patterns, and negative keywords are
// matched as case-insensitive substrings of the task text.
type Entry struct {
	ID               AgentID  `yaml:"id" validate:"required"`
	Weight           float64  `yaml:"weight" validate:"gte=0"`
	ComplexityBias   string   `yaml:"complexity_bias" validate:"oneof=low medium high"`
	Keywords         []string `yaml:"keywords"`
	PhrasePatterns   []string `yaml:"phrase_patterns"`
	NegativeKeywords []string `yaml:"negative_keywords"`
}

// ComplexityIndicators are the shared word lists used to derive a task's
// coarse complexity class, independent of any one agent's bias.
type ComplexityIndicators struct {
	High []string `yaml:"high"`
	Low  []string `yaml:"low"`
}

type rawConfig struct {
	Agents               []Entry              `yaml:"agents" validate:"required,min=1,dive"`
	ComplexityIndicators ComplexityIndicators `yaml:"complexity_indicators"`
}

// Config is the fully loaded, validated taxonomy. Order preserves the YAML
// document order, which is the stable tie-breaking order used by the
// ensemble router.
type Config struct {
	Order                []AgentID
	Entries              map[AgentID]Entry
	ComplexityIndicators ComplexityIndicators
}

// Entry looks up an agent's taxonomy entry.
func (c *Config) Entry(id AgentID) (Entry, bool) {
	e, ok := c.Entries[id]
	return e, ok
}

var (
	cachedTaxonomy *Config
	taxonomyOnce   sync.Once
	taxonomyErr    error
	validate       = validator.New()
)

// LoadTaxonomy loads and caches the embedded agent taxonomy. Returns the
// cached result on subsequent calls.
//
// # Thread Safety
//
// Safe for concurrent use (uses sync.Once internally).
func LoadTaxonomy() (*Config, error) {
	taxonomyOnce.Do(func() {
		cachedTaxonomy, taxonomyErr = parseTaxonomy(defaultTaxonomyYAML)
		if taxonomyErr != nil {
			return
		}
		slog.Info("agent taxonomy loaded",
			slog.Int("agent_count", len(cachedTaxonomy.Order)),
		)
	})
	return cachedTaxonomy, taxonomyErr
}

func parseTaxonomy(raw []byte) (*Config, error) {
	var rc rawConfig
	if err := yaml.Unmarshal(raw, &rc); err != nil {
		return nil, fmt.Errorf("parsing taxonomy.yaml: %w", err)
	}
	if err := validate.Struct(rc); err != nil {
		return nil, fmt.Errorf("validating taxonomy.yaml: %w", err)
	}

	cfg := &Config{
		Order:                make([]AgentID, 0, len(rc.Agents)),
		Entries:              make(map[AgentID]Entry, len(rc.Agents)),
		ComplexityIndicators: rc.ComplexityIndicators,
	}
	for _, e := range rc.Agents {
		if e.Weight == 0 {
			e.Weight = 1.0
		}
		cfg.Order = append(cfg.Order, e.ID)
		cfg.Entries[e.ID] = e
	}
	return cfg, nil
}
