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
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed stopwords.yaml
var defaultStopwordsYAML []byte

type rawStopwords struct {
	Words []string `yaml:"words"`
}

// StopwordSet is an immutable, O(1)-lookup stop-word set.
type StopwordSet map[string]struct{}

// Contains reports whether w is a stop-word.
func (s StopwordSet) Contains(w string) bool {
	_, ok := s[w]
	return ok
}

var (
	cachedStopwords StopwordSet
	stopwordsOnce   sync.Once
	stopwordsErr    error
)

// LoadStopwords loads and caches the embedded stop-word set.
//
// # Thread Safety
//
// Safe for concurrent use (uses sync.Once internally).
func LoadStopwords() (StopwordSet, error) {
	stopwordsOnce.Do(func() {
		var rs rawStopwords
		if err := yaml.Unmarshal(defaultStopwordsYAML, &rs); err != nil {
			stopwordsErr = fmt.Errorf("parsing stopwords.yaml: %w", err)
			return
		}
		set := make(StopwordSet, len(rs.Words))
		for _, w := range rs.Words {
			set[w] = struct{}{}
		}
		cachedStopwords = set
	})
	return cachedStopwords, stopwordsErr
}
