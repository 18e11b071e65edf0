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
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/AleutianAI/agentrouter/internal/router"
)

// routingDecidedSubject is the subject other federation services subscribe
// to for fire-and-forget notice of every routing outcome.
const routingDecidedSubject = "routing.decided"

// NATSPublisher publishes routing decisions to a NATS subject for any other
// service in the federation to observe, independent of the websocket feed
// aimed at dashboards. Publication is fire-and-forget: a publish failure is
// logged and otherwise does not affect routing.
type NATSPublisher struct {
	conn    *nats.Conn
	logger  *slog.Logger
	subject string
}

// NewNATSPublisher connects to a NATS server at url. An empty url uses the
// client library's default (nats://127.0.0.1:4222).
func NewNATSPublisher(url string, logger *slog.Logger) (*NATSPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if url == "" {
		url = nats.DefaultURL
	}
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	return &NATSPublisher{conn: conn, logger: logger, subject: routingDecidedSubject}, nil
}

// Publish encodes result as JSON and publishes it to the routing.decided
// subject. Errors are logged, never returned: a federation service that
// is not listening must not be able to break routing.
func (p *NATSPublisher) Publish(result router.MatchResult) {
	data, err := json.Marshal(result)
	if err != nil {
		p.logger.Warn("eventstream: failed to marshal routing decision", slog.String("error", err.Error()))
		return
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		p.logger.Warn("eventstream: failed to publish routing decision",
			slog.String("subject", p.subject), slog.String("error", err.Error()))
	}
}

// Close drains and closes the underlying NATS connection.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}
