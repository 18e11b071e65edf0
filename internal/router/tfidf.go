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
	"math"
	"sort"
)

// TrainingPair is one historical {task, agent} record consumed at index
// build time.
type TrainingPair struct {
	Task  string
	Agent AgentID
}

type tfidfDoc struct {
	task   string
	agent  AgentID
	vector map[string]float64
}

// TFIDFIndex is the persisted, read-mostly sparse-vector corpus index.
// Built offline, loaded once per process lifetime, and safe for concurrent
// read-only queries.
type TFIDFIndex struct {
	tok         *Tokenizer
	idf         map[string]float64
	docs        []tfidfDoc
	useBigrams  bool
	useTrigrams bool
}

// PersistedIndex is the structured document the index round-trips to disk
// as.
type PersistedIndex struct {
	IDF       map[string]float64 `json:"idf"`
	Documents []PersistedDoc     `json:"documents"`
	DocCount  int                `json:"doc_count"`
}

// PersistedDoc is one indexed document in its serialised form.
type PersistedDoc struct {
	Task  string             `json:"task"`
	Agent string             `json:"agent"`
	TFIDF map[string]float64 `json:"tfidf"`
}

// BuildTFIDFIndex constructs a TFIDFIndex from a deduplicated training
// corpus.
func BuildTFIDFIndex(tok *Tokenizer, pairs []TrainingPair, useBigrams, useTrigrams bool) *TFIDFIndex {
	docs := make([]tfidfDoc, 0, len(pairs))
	df := make(map[string]int)

	type rawDoc struct {
		task  string
		agent AgentID
		tf    map[string]int
	}
	raw := make([]rawDoc, 0, len(pairs))

	for _, p := range pairs {
		terms := tok.ExpandedTerms(p.Task, useBigrams, useTrigrams)
		tf := make(map[string]int, len(terms))
		for _, t := range terms {
			tf[t]++
		}
		raw = append(raw, rawDoc{task: p.Task, agent: p.Agent, tf: tf})
		for t := range tf {
			df[t]++
		}
	}

	n := len(raw)
	idf := make(map[string]float64, len(df))
	for term, freq := range df {
		idf[term] = math.Log(float64(n+1)/float64(freq+1)) + 1.0
	}

	for _, d := range raw {
		maxTF := 1
		for _, c := range d.tf {
			if c > maxTF {
				maxTF = c
			}
		}
		vec := make(map[string]float64, len(d.tf))
		for term, c := range d.tf {
			tfNorm := float64(c) / float64(maxTF)
			vec[term] = tfNorm * idfOrDefault(idf, term)
		}
		docs = append(docs, tfidfDoc{task: d.task, agent: d.agent, vector: vec})
	}

	return &TFIDFIndex{tok: tok, idf: idf, docs: docs, useBigrams: useBigrams, useTrigrams: useTrigrams}
}

func idfOrDefault(idf map[string]float64, term string) float64 {
	if v, ok := idf[term]; ok {
		return v
	}
	return 1.0
}

// IsEmpty reports whether the index has no documents.
func (idx *TFIDFIndex) IsEmpty() bool {
	return idx == nil || len(idx.docs) == 0
}

// Vectorize computes the TF-IDF vector for an arbitrary piece of text using
// the index's stored IDF mapping (terms absent from the index default to
// IDF 1.0) and the n-gram settings the index was built with. Used both for
// profile-similarity scoring and for reinforcing an agent's capability
// vector after a completion is learned from — both cases want the same
// vocabulary the index itself uses, not a per-call override.
func (idx *TFIDFIndex) Vectorize(text string) map[string]float64 {
	return idx.vectorize(text, idx.useBigrams, idx.useTrigrams)
}

// vectorize computes the TF-IDF vector for a piece of text using the
// stored IDF mapping; terms absent from the index default to IDF 1.0.
// useBigrams/useTrigrams control n-gram expansion independently of the
// index's own build-time setting, so a query can be vectorised with fewer
// n-grams than the corpus was indexed with — unseen n-gram terms simply
// fall back to the default IDF weight above rather than breaking the
// comparison.
func (idx *TFIDFIndex) vectorize(text string, useBigrams, useTrigrams bool) map[string]float64 {
	terms := idx.tok.ExpandedTerms(text, useBigrams, useTrigrams)
	if len(terms) == 0 {
		return nil
	}
	tf := make(map[string]int, len(terms))
	for _, t := range terms {
		tf[t]++
	}
	maxTF := 1
	for _, c := range tf {
		if c > maxTF {
			maxTF = c
		}
	}
	vec := make(map[string]float64, len(tf))
	for term, c := range tf {
		tfNorm := float64(c) / float64(maxTF)
		vec[term] = tfNorm * idfOrDefault(idx.idf, term)
	}
	return vec
}

// CosineSparse computes cosine similarity between two non-negative sparse
// vectors, returning 0 when either magnitude is zero.
func CosineSparse(u, v map[string]float64) float64 {
	if len(u) == 0 || len(v) == 0 {
		return 0
	}
	small, big := u, v
	if len(v) < len(u) {
		small, big = v, u
	}
	var dot float64
	for t, uw := range small {
		if vw, ok := big[t]; ok {
			dot += uw * vw
		}
	}
	if dot == 0 {
		return 0
	}
	normU := l2(u)
	normV := l2(v)
	if normU == 0 || normV == 0 {
		return 0
	}
	return dot / (normU * normV)
}

func l2(v map[string]float64) float64 {
	var sum float64
	for _, w := range v {
		sum += w * w
	}
	return math.Sqrt(sum)
}

type docSimilarity struct {
	agent      AgentID
	similarity float64
}

// Query returns the per-agent TF-IDF aggregation for a task string: the
// top-k most similar documents are summed per agent and the result is
// normalised so the per-agent values sum to 1. An empty index, or a query
// with no overlapping terms, yields all zeros. useBigrams/useTrigrams
// control n-gram expansion of the query text only — the indexed documents
// keep whatever n-gram settings they were built with.
func (idx *TFIDFIndex) Query(task string, topK int, agents []AgentID, useBigrams, useTrigrams bool) map[AgentID]float64 {
	result := make(map[AgentID]float64, len(agents))
	for _, a := range agents {
		result[a] = 0
	}
	if idx.IsEmpty() {
		return result
	}
	qVec := idx.vectorize(task, useBigrams, useTrigrams)
	if len(qVec) == 0 {
		return result
	}

	sims := make([]docSimilarity, 0, len(idx.docs))
	for _, d := range idx.docs {
		sims = append(sims, docSimilarity{agent: d.agent, similarity: CosineSparse(qVec, d.vector)})
	}
	sort.SliceStable(sims, func(i, j int) bool { return sims[i].similarity > sims[j].similarity })
	if topK <= 0 {
		topK = 3
	}
	if topK > len(sims) {
		topK = len(sims)
	}

	var total float64
	for _, s := range sims[:topK] {
		result[s.agent] += s.similarity
		total += s.similarity
	}
	if total == 0 {
		return result
	}
	for a := range result {
		result[a] /= total
	}
	return result
}

// ToPersisted serialises the index for atomic disk persistence.
func (idx *TFIDFIndex) ToPersisted() PersistedIndex {
	p := PersistedIndex{
		IDF:       idx.idf,
		Documents: make([]PersistedDoc, 0, len(idx.docs)),
		DocCount:  len(idx.docs),
	}
	for _, d := range idx.docs {
		p.Documents = append(p.Documents, PersistedDoc{Task: d.task, Agent: string(d.agent), TFIDF: d.vector})
	}
	return p
}

// IndexFromPersisted reconstructs a TFIDFIndex from its persisted form.
// The same tokeniser and n-gram settings used to build the index must be
// supplied so that query-time vectorisation matches.
func IndexFromPersisted(tok *Tokenizer, p PersistedIndex, useBigrams, useTrigrams bool) *TFIDFIndex {
	docs := make([]tfidfDoc, 0, len(p.Documents))
	for _, d := range p.Documents {
		docs = append(docs, tfidfDoc{task: d.Task, agent: AgentID(d.Agent), vector: d.TFIDF})
	}
	return &TFIDFIndex{tok: tok, idf: p.IDF, docs: docs, useBigrams: useBigrams, useTrigrams: useTrigrams}
}
