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
	"log/slog"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/AleutianAI/agentrouter/internal/router"
)

// routingDecisionMeasurement is the InfluxDB measurement every routing
// decision is written under.
const routingDecisionMeasurement = "routing_decision"

// InfluxPublisher writes every routing decision as a time-series point,
// independent of the websocket feed and the NATS fan-out: it exists for
// longitudinal analytics (confidence drift, per-agent share over time)
// rather than live observers. Writes go through the client's asynchronous
// WriteAPI, so Publish never blocks routing on network I/O.
type InfluxPublisher struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
	logger   *slog.Logger
}

// NewInfluxPublisher connects to an InfluxDB server and returns a publisher
// bound to the given org and bucket. The connection is not verified until
// the first write; a misconfigured server surfaces through the WriteAPI's
// error channel, which is logged in the background.
func NewInfluxPublisher(url, token, org, bucket string, logger *slog.Logger) *InfluxPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	client := influxdb2.NewClient(url, token)
	writeAPI := client.WriteAPI(org, bucket)

	p := &InfluxPublisher{client: client, writeAPI: writeAPI, logger: logger}

	errs := writeAPI.Errors()
	go func() {
		for err := range errs {
			p.logger.Warn("eventstream: influxdb write error", slog.String("error", err.Error()))
		}
	}()

	return p
}

// Publish writes one routing decision as a point tagged by recommended
// agent and tier, with confidence and complexity score as fields.
func (p *InfluxPublisher) Publish(result router.MatchResult) {
	point := influxdb2.NewPoint(
		routingDecisionMeasurement,
		map[string]string{
			"agent":  string(result.RecommendedAgent),
			"tier":   result.Tier,
			"method": result.Method,
		},
		map[string]any{
			"confidence":       result.Confidence,
			"complexity_score": result.ComplexityScore,
		},
		time.Now(),
	)
	p.writeAPI.WritePoint(point)
}

// Close flushes any buffered points and releases the client.
func (p *InfluxPublisher) Close() error {
	p.writeAPI.Flush()
	p.client.Close()
	return nil
}
