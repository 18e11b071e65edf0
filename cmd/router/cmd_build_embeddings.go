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
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/agentrouter/internal/embedcache"
)

var buildEmbeddingsCmd = &cobra.Command{
	Use:   "build-embeddings",
	Short: "Resumably embed the training corpus into the Tier 1 embedding cache",
	RunE:  runBuildEmbeddings,
}

func runBuildEmbeddings(cmd *cobra.Command, _ []string) error {
	corpusPath, _ := cmd.Flags().GetString("corpus-path")
	cachePath, _ := cmd.Flags().GetString("embedding-cache-path")
	progressPath, _ := cmd.Flags().GetString("embedding-progress-path")

	records, err := loadCorpus(corpusPath)
	if err != nil {
		return err
	}

	logger := slog.Default()
	memoDB, err := openQueryMemoDB(logger)
	var memo *embedcache.QueryMemo
	if err == nil && memoDB != nil {
		memo = embedcache.NewQueryMemo(memoDB, 0, logger)
		defer memoDB.Close()
	}
	provider := embedcache.NewProvider(logger, memo)

	builder, err := embedcache.NewBuilder(cachePath, progressPath, provider, logger)
	if err != nil {
		return fmt.Errorf("create embedding builder: %w", err)
	}

	samples := make([]embedcache.Sample, 0, len(records))
	for _, r := range records {
		samples = append(samples, embedcache.Sample{Task: r.Task, Agent: r.Agent})
	}

	if err := builder.Build(context.Background(), samples); err != nil {
		return fmt.Errorf("build embedding cache: %w", err)
	}
	slog.Info("embedding cache build complete", slog.Int("cached_entries", builder.Cache().Len()))
	return nil
}
