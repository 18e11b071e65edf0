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
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/agentrouter/internal/router"
)

var routeCmd = &cobra.Command{
	Use:   "route [task description]",
	Short: "Route a task description to one agent",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRoute(false),
}

var explainCmd = &cobra.Command{
	Use:   "explain [task description]",
	Short: "Route a task description and print the full per-signal breakdown",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRoute(true),
}

func init() {
	routeCmd.Flags().Bool("compare-tiers", false, "route through every tier (tier1, tier2, tier3, hybrid) and print all four results")
	routeCmd.Flags().String("tier", "", "override the blend tier: tier1, tier2, tier3, hybrid")
	routeCmd.Flags().Bool("pretty", false, "render a styled terminal summary instead of JSON")
	routeCmd.Flags().Bool("use-bigrams", true, "expand the query into bigrams for TF-IDF vectorisation")
	routeCmd.Flags().Bool("use-trigrams", true, "expand the query into trigrams for TF-IDF vectorisation")
	explainCmd.Flags().String("tier", "", "override the blend tier: tier1, tier2, tier3, hybrid")
	explainCmd.Flags().Bool("pretty", false, "render a styled terminal summary instead of JSON")
	explainCmd.Flags().Bool("use-bigrams", true, "expand the query into bigrams for TF-IDF vectorisation")
	explainCmd.Flags().Bool("use-trigrams", true, "expand the query into trigrams for TF-IDF vectorisation")
}

func runRoute(explain bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		task := strings.Join(args, " ")
		logger := slog.Default()

		indexPath, _ := cmd.Flags().GetString("index-path")
		cachePath, _ := cmd.Flags().GetString("embedding-cache-path")
		r, _, err := buildRouter(indexPath, cachePath, logger)
		if err != nil {
			return err
		}

		ctx := context.Background()
		tierFlag, _ := cmd.Flags().GetString("tier")
		compareTiers, _ := cmd.Flags().GetBool("compare-tiers")

		if !explain && compareTiers {
			return printTierComparison(ctx, r, task)
		}

		opts := router.DefaultRouteOptions()
		if tierFlag != "" {
			opts.Tier = router.Tier(tierFlag)
		}
		opts.UseBigrams, _ = cmd.Flags().GetBool("use-bigrams")
		opts.UseTrigrams, _ = cmd.Flags().GetBool("use-trigrams")

		var result router.MatchResult
		if explain {
			result, err = r.Explain(ctx, task, opts)
		} else {
			result, err = r.Route(ctx, task, opts)
		}
		if err != nil {
			return fmt.Errorf("route task: %w", err)
		}

		if pretty, _ := cmd.Flags().GetBool("pretty"); pretty {
			return printPretty(result)
		}
		return printResult(result)
	}
}

func printTierComparison(ctx context.Context, r *router.Router, task string) error {
	tiers := []router.Tier{router.TierOne, router.TierTwo, router.TierThree, router.TierHybrid}
	comparison := make(map[string]router.MatchResult, len(tiers))
	for _, tier := range tiers {
		opts := router.DefaultRouteOptions()
		opts.Tier = tier
		result, err := r.Route(ctx, task, opts)
		if err != nil {
			return fmt.Errorf("route task under tier %s: %w", tier, err)
		}
		comparison[string(tier)] = result
	}
	out := map[string]any{"task": task, "tiers": comparison}
	return printJSON(out)
}

func printResult(result router.MatchResult) error {
	return printJSON(result)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
