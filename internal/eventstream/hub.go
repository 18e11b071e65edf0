// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package eventstream fans routing decisions out to live subscribers: a
// websocket feed for dashboards, and an optional NATS publish for other
// services in the federation.
package eventstream

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/AleutianAI/agentrouter/internal/router"
)

// pingInterval is how often the hub pings idle connections to keep
// intermediate proxies from closing them.
const pingInterval = 20 * time.Second

// subscriberBuffer bounds how many undelivered decisions a slow subscriber
// may queue; once it is full, newer decisions are skipped for that
// subscriber rather than blocking the whole hub.
const subscriberBuffer = 64

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans out routing decisions to any number of websocket subscribers.
// Call Publish after every Router.Route call (typically wired via
// Router.OnDecision); call ServeWS to handle GET /v1/stream.
//
// # Thread Safety
//
// Safe for concurrent use.
type Hub struct {
	mu   sync.Mutex
	subs map[chan router.MatchResult]struct{}
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan router.MatchResult]struct{})}
}

// Publish fans result out to every currently connected subscriber. A
// subscriber whose channel is full is skipped for this decision rather than
// blocking publication for everyone else.
func (h *Hub) Publish(result router.MatchResult) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- result:
		default:
		}
	}
}

func (h *Hub) subscribe() chan router.MatchResult {
	ch := make(chan router.MatchResult, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) unsubscribe(ch chan router.MatchResult) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
	close(ch)
}

// ServeWS upgrades the connection and streams routing decisions until the
// client disconnects or the request context is cancelled.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ch := h.subscribe()
	defer h.unsubscribe(ch)

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case result, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(result); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(10*time.Second)); err != nil {
				return
			}
		}
	}
}
