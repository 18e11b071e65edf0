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

import "strings"

// domainKeywords classifies free text into coarse domain categories for
// ExtractDomains. Agent profiles do not use it: their domain tags come from
// the registry's seed_domains.
var domainKeywords = map[string][]string{
	"research":      {"research", "analyze", "investigate", "study", "explore"},
	"implementation": {"implement", "code", "build", "develop", "create", "write"},
	"testing":       {"test", "validate", "verify", "check", "assert"},
	"documentation": {"document", "readme", "guide", "tutorial", "explain"},
	"design":        {"design", "architecture", "structure", "pattern"},
	"deployment":    {"deploy", "release", "publish", "ship", "host"},
	"security":      {"secure", "auth", "encrypt", "vulnerability", "protect"},
	"performance":   {"optimize", "speed", "fast", "slow", "latency", "memory"},
}

// domainOrder fixes iteration order so ExtractDomains is deterministic.
var domainOrder = []string{
	"research", "implementation", "testing", "documentation",
	"design", "deployment", "security", "performance",
}

// ExtractDomains returns every domain category whose keywords appear in
// text, or ["general"] when none match.
func ExtractDomains(text string) []string {
	textLower := strings.ToLower(text)
	var domains []string
	for _, domain := range domainOrder {
		for _, kw := range domainKeywords[domain] {
			if strings.Contains(textLower, kw) {
				domains = append(domains, domain)
				break
			}
		}
	}
	if len(domains) == 0 {
		return []string{"general"}
	}
	return domains
}
