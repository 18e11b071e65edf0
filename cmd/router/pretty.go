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
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/AleutianAI/agentrouter/internal/router"
)

var (
	agentStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	confidenceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	lowConfidence   = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	labelStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	barFilled       = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	barEmpty        = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// barWidth is how many characters wide each agent's score bar renders.
const barWidth = 24

// printPretty renders a MatchResult as a human-readable terminal summary:
// the recommended agent, its confidence, and a bar chart of every scored
// agent, for a developer at a terminal rather than a downstream consumer
// parsing JSON.
func printPretty(result router.MatchResult) error {
	confStyle := confidenceStyle
	if result.Confidence < 0.5 {
		confStyle = lowConfidence
	}

	fmt.Printf("%s  %s  (tier %s, %s)\n",
		agentStyle.Render(string(result.RecommendedAgent)),
		confStyle.Render(fmt.Sprintf("%.0f%% confidence", result.Confidence*100)),
		result.Tier,
		result.Method,
	)
	if result.Complexity != "" {
		fmt.Printf("%s %s (%.2f)\n", labelStyle.Render("complexity:"), result.Complexity, result.ComplexityScore)
	}
	if result.Error != "" {
		fmt.Println(lowConfidence.Render(result.Error))
	}

	fmt.Println()
	for _, s := range result.Scores {
		fmt.Println(renderBar(string(s.Agent), s.Score))
	}

	if len(result.Alternatives) > 0 {
		names := make([]string, 0, len(result.Alternatives))
		for _, a := range result.Alternatives {
			names = append(names, string(a))
		}
		fmt.Printf("\n%s %s\n", labelStyle.Render("alternatives:"), strings.Join(names, ", "))
	}
	return nil
}

func renderBar(agent string, score float64) string {
	filled := int(score * barWidth)
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}
	bar := barFilled.Render(strings.Repeat("█", filled)) + barEmpty.Render(strings.Repeat("░", barWidth-filled))
	return fmt.Sprintf("  %-10s %s %.3f", agent, bar, score)
}
