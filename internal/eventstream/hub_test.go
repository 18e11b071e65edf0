// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package eventstream

import (
	"testing"

	"github.com/AleutianAI/agentrouter/internal/router"
)

func TestHub_PublishWithNoSubscribersIsNoOp(t *testing.T) {
	h := NewHub()
	h.Publish(router.MatchResult{RecommendedAgent: "claude"})
}

func TestHub_SubscribeReceivesPublishedDecision(t *testing.T) {
	h := NewHub()
	ch := h.subscribe()
	defer h.unsubscribe(ch)

	want := router.MatchResult{RecommendedAgent: "kimi", Confidence: 0.5}
	h.Publish(want)

	select {
	case got := <-ch:
		if got.RecommendedAgent != want.RecommendedAgent {
			t.Errorf("RecommendedAgent = %q, want %q", got.RecommendedAgent, want.RecommendedAgent)
		}
	default:
		t.Fatal("expected a buffered decision on the subscriber channel")
	}
}

func TestHub_UnsubscribeClosesChannel(t *testing.T) {
	h := NewHub()
	ch := h.subscribe()
	h.unsubscribe(ch)

	_, ok := <-ch
	if ok {
		t.Fatal("expected channel to be closed after unsubscribe")
	}
}

func TestHub_SlowSubscriberDoesNotBlockPublish(t *testing.T) {
	h := NewHub()
	ch := h.subscribe()
	defer h.unsubscribe(ch)

	for i := 0; i < subscriberBuffer+10; i++ {
		h.Publish(router.MatchResult{RecommendedAgent: "codex"})
	}
}
