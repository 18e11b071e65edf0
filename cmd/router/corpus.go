// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/AleutianAI/agentrouter/internal/router"
)

// corpusRecord is one training example as persisted in the corpus JSON file.
type corpusRecord struct {
	Task  string         `json:"task"`
	Agent router.AgentID `json:"agent"`
}

func loadCorpus(path string) ([]corpusRecord, error) {
	if path == "" {
		return nil, fmt.Errorf("--corpus-path is required")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus file %s: %w", path, err)
	}
	var records []corpusRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parse corpus file %s: %w", path, err)
	}
	// Duplicate task strings are dropped case-insensitively; the first wins.
	seen := make(map[string]struct{}, len(records))
	deduped := records[:0]
	for _, r := range records {
		key := strings.ToLower(r.Task)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, r)
	}
	return deduped, nil
}

func corpusToTrainingPairs(records []corpusRecord) []router.TrainingPair {
	pairs := make([]router.TrainingPair, 0, len(records))
	for _, r := range records {
		pairs = append(pairs, router.TrainingPair{Task: r.Task, Agent: r.Agent})
	}
	return pairs
}
