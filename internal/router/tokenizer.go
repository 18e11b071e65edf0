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
	"regexp"
	"strings"

	"github.com/AleutianAI/agentrouter/internal/taxonomy"
)

var alphaRun = regexp.MustCompile(`[a-z]+`)

// Tokenizer turns raw task text into the ordered token sequence the TF-IDF
// index and n-gram expansion operate on. It is pure
// and deterministic: the same text always yields the same tokens.
type Tokenizer struct {
	stopwords taxonomy.StopwordSet
}

// NewTokenizer builds a Tokenizer over the given stop-word set.
func NewTokenizer(stopwords taxonomy.StopwordSet) *Tokenizer {
	return &Tokenizer{stopwords: stopwords}
}

// Tokenize lowercases text, extracts maximal runs of ASCII letters, and
// drops stop-words and tokens of length <= 1.
func (tz *Tokenizer) Tokenize(text string) []string {
	lowered := strings.ToLower(text)
	runs := alphaRun.FindAllString(lowered, -1)
	if len(runs) == 0 {
		return nil
	}
	tokens := make([]string, 0, len(runs))
	for _, t := range runs {
		if len(t) <= 1 {
			continue
		}
		if tz.stopwords.Contains(t) {
			continue
		}
		tokens = append(tokens, t)
	}
	return tokens
}

// Ngrams joins consecutive tokens into n-grams of the form
// "t_1_t_2[_t_3]". Returns len(tokens)-n+1 items, or an empty slice when
// n > len(tokens).
func Ngrams(tokens []string, n int) []string {
	if n <= 0 || len(tokens) < n {
		return nil
	}
	out := make([]string, 0, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		out = append(out, strings.Join(tokens[i:i+n], "_"))
	}
	return out
}

// ExpandedTerms returns the unigram tokens plus, when enabled, bigrams
// and/or trigrams — the full term sequence the TF-IDF vectoriser consumes.
func (tz *Tokenizer) ExpandedTerms(text string, useBigrams, useTrigrams bool) []string {
	tokens := tz.Tokenize(text)
	terms := make([]string, 0, len(tokens)*2)
	terms = append(terms, tokens...)
	if useBigrams {
		terms = append(terms, Ngrams(tokens, 2)...)
	}
	if useTrigrams {
		terms = append(terms, Ngrams(tokens, 3)...)
	}
	return terms
}
