// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package taxonomy

import (
	_ "embed"
	"fmt"
	"log/slog"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed registry.yaml
var defaultRegistryYAML []byte

// AgentSeed is the static definition an Agent Profile is initialised from on
// first use.
type AgentSeed struct {
	ID              AgentID  `yaml:"id" validate:"required"`
	Emoji           string   `yaml:"emoji"`
	Specialty       string   `yaml:"specialty" validate:"required"`
	SeedKeywords    []string `yaml:"seed_keywords"`
	SeedDomains     []string `yaml:"seed_domains"`
	BaseSuccessRate float64  `yaml:"base_success_rate" validate:"gte=0,lte=1"`
}

type rawRegistry struct {
	Agents []AgentSeed `yaml:"agents" validate:"required,min=1,dive"`
}

// Registry is the ordered set of agent seeds, keyed for lookup.
type Registry struct {
	Order   []AgentID
	Seeds   map[AgentID]AgentSeed
}

// Seed looks up an agent's static seed definition.
func (r *Registry) Seed(id AgentID) (AgentSeed, bool) {
	s, ok := r.Seeds[id]
	return s, ok
}

var (
	cachedRegistry *Registry
	registryOnce   sync.Once
	registryErr    error
)

// LoadRegistry loads and caches the embedded agent registry.
//
// # Thread Safety
//
// Safe for concurrent use (uses sync.Once internally).
func LoadRegistry() (*Registry, error) {
	registryOnce.Do(func() {
		var rr rawRegistry
		if err := yaml.Unmarshal(defaultRegistryYAML, &rr); err != nil {
			registryErr = fmt.Errorf("parsing registry.yaml: %w", err)
			return
		}
		if err := validate.Struct(rr); err != nil {
			registryErr = fmt.Errorf("validating registry.yaml: %w", err)
			return
		}
		reg := &Registry{
			Order: make([]AgentID, 0, len(rr.Agents)),
			Seeds: make(map[AgentID]AgentSeed, len(rr.Agents)),
		}
		for _, s := range rr.Agents {
			reg.Order = append(reg.Order, s.ID)
			reg.Seeds[s.ID] = s
		}
		cachedRegistry = reg
		slog.Info("agent registry loaded", slog.Int("agent_count", len(reg.Order)))
	})
	return cachedRegistry, registryErr
}
