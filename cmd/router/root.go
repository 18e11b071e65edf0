// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command router is the predictive task router CLI: route or explain a
// single task from the command line, build the offline TF-IDF index and
// embedding cache from a training corpus, apply completion feedback, and
// serve the HTTP/websocket API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "router",
	Short: "Predictive task router for the kimi/claude/copilot/codex/ollama agent federation",
	Long: `router decides which agent in a five-way federation (kimi, claude,
copilot, codex, ollama) should handle a free-form task description, using
an ensemble of dense-embedding similarity, TF-IDF similarity, keyword
taxonomy matching, and task-complexity bias.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("profiles-path", defaultPath("profiles.json"), "agent profile store JSON document")
	rootCmd.PersistentFlags().String("learning-log-path", defaultPath("learning_log.json"), "historical learner log JSON document")
	rootCmd.PersistentFlags().String("index-path", defaultPath("tfidf_index.json"), "persisted TF-IDF index")
	rootCmd.PersistentFlags().String("embedding-cache-path", defaultPath("embedding_cache.json"), "persisted embedding cache")
	rootCmd.PersistentFlags().String("embedding-progress-path", defaultPath("embedding_progress.json"), "embedding cache build progress")
	rootCmd.PersistentFlags().String("corpus-path", "", "training corpus JSON file: [{\"task\":...,\"agent\":...}, ...]")

	rootCmd.AddCommand(routeCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(buildIndexCmd)
	rootCmd.AddCommand(buildEmbeddingsCmd)
	rootCmd.AddCommand(learnCmd)
	rootCmd.AddCommand(serveCmd)
}

// defaultPath returns name under $ROUTER_DATA_DIR, or ./.router-data/name
// when that variable is unset.
func defaultPath(name string) string {
	dir := os.Getenv("ROUTER_DATA_DIR")
	if dir == "" {
		dir = ".router-data"
	}
	return dir + "/" + name
}
