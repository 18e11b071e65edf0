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
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/agentrouter/internal/router"
	"github.com/AleutianAI/agentrouter/internal/taxonomy"
)

var buildIndexCmd = &cobra.Command{
	Use:   "build-index",
	Short: "Build the TF-IDF index from a training corpus and persist it",
	RunE:  runBuildIndex,
}

func runBuildIndex(cmd *cobra.Command, _ []string) error {
	corpusPath, _ := cmd.Flags().GetString("corpus-path")
	indexPath, _ := cmd.Flags().GetString("index-path")

	records, err := loadCorpus(corpusPath)
	if err != nil {
		return err
	}

	sw, err := taxonomy.LoadStopwords()
	if err != nil {
		return fmt.Errorf("load stopwords: %w", err)
	}
	tok := router.NewTokenizer(sw)

	idx := router.BuildTFIDFIndex(tok, corpusToTrainingPairs(records), true, true)
	persisted := idx.ToPersisted()

	raw, err := json.MarshalIndent(persisted, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal TF-IDF index: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(indexPath), 0o755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}
	if err := os.WriteFile(indexPath, raw, 0o644); err != nil {
		return fmt.Errorf("write TF-IDF index %s: %w", indexPath, err)
	}

	slog.Info("TF-IDF index built", slog.Int("documents", persisted.DocCount), slog.String("path", indexPath))
	return nil
}
