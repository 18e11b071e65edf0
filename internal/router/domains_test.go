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

import "testing"

func TestExtractDomains_Matches(t *testing.T) {
	got := ExtractDomains("Research and analyze the new encryption approach, then document findings")
	want := map[string]bool{"research": true, "documentation": true, "security": true}
	for _, d := range got {
		if !want[d] {
			t.Errorf("unexpected domain %q in %v", d, got)
		}
	}
	if len(got) != len(want) {
		t.Errorf("ExtractDomains = %v, want exactly %v", got, want)
	}
}

func TestExtractDomains_DefaultsToGeneral(t *testing.T) {
	got := ExtractDomains("xyzzy plugh")
	if len(got) != 1 || got[0] != "general" {
		t.Errorf("ExtractDomains = %v, want [general]", got)
	}
}

func TestExtractDomains_DeterministicOrder(t *testing.T) {
	text := "optimize performance while testing and documenting the deploy process"
	first := ExtractDomains(text)
	second := ExtractDomains(text)
	if len(first) != len(second) {
		t.Fatalf("non-deterministic lengths: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("non-deterministic order: %v vs %v", first, second)
		}
	}
}
