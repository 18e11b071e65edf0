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
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/AleutianAI/agentrouter/internal/api"
	"github.com/AleutianAI/agentrouter/internal/eventstream"
	"github.com/AleutianAI/agentrouter/internal/profile"
	"github.com/AleutianAI/agentrouter/internal/router"
	"github.com/AleutianAI/agentrouter/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP/websocket routing API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 8088, "HTTP listen port")
	serveCmd.Flags().Bool("debug", false, "enable gin's request logger")
	serveCmd.Flags().Bool("stream", true, "register the GET /v1/stream websocket feed")
	serveCmd.Flags().String("nats-url", "", "optional NATS server URL for routing.decided fan-out; empty disables NATS publishing")
	serveCmd.Flags().Bool("trace-to-stdout", false, "print OpenTelemetry spans to stdout")
	serveCmd.Flags().String("influx-url", "", "optional InfluxDB server URL for routing-decision analytics; empty disables it")
	serveCmd.Flags().String("influx-token", "", "InfluxDB API token")
	serveCmd.Flags().String("influx-org", "", "InfluxDB organization")
	serveCmd.Flags().String("influx-bucket", "routing", "InfluxDB bucket for routing decision points")
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger := slog.Default()

	port, _ := cmd.Flags().GetInt("port")
	debug, _ := cmd.Flags().GetBool("debug")
	streamEnabled, _ := cmd.Flags().GetBool("stream")
	natsURL, _ := cmd.Flags().GetString("nats-url")
	traceToStdout, _ := cmd.Flags().GetBool("trace-to-stdout")

	profilesPath, _ := cmd.Flags().GetString("profiles-path")
	logPath, _ := cmd.Flags().GetString("learning-log-path")
	indexPath, _ := cmd.Flags().GetString("index-path")
	cachePath, _ := cmd.Flags().GetString("embedding-cache-path")

	ctx := context.Background()
	shutdownTelemetry, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName:   "agentrouter",
		TraceToStdout: traceToStdout,
	})
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}

	r, tfidf, err := buildRouter(indexPath, cachePath, logger)
	if err != nil {
		return err
	}

	store, err := profile.NewStore(profilesPath)
	if err != nil {
		return fmt.Errorf("open profile store: %w", err)
	}

	var similarity profile.SimilarityFunc
	if tfidf != nil {
		similarity = func(a, b string) float64 {
			return router.CosineSparse(tfidf.Vectorize(a), tfidf.Vectorize(b))
		}
	}
	learner, err := profile.NewLearner(store, logPath, similarity)
	if err != nil {
		return fmt.Errorf("open learner: %w", err)
	}

	var hub *eventstream.Hub
	if streamEnabled {
		hub = eventstream.NewHub()
	}

	var natsPublisher *eventstream.NATSPublisher
	if natsURL != "" {
		natsPublisher, err = eventstream.NewNATSPublisher(natsURL, logger)
		if err != nil {
			logger.Warn("NATS publisher unavailable, routing.decided fan-out disabled",
				slog.String("error", err.Error()))
			natsPublisher = nil
		}
	}

	var influxPublisher *eventstream.InfluxPublisher
	influxURL, _ := cmd.Flags().GetString("influx-url")
	if influxURL != "" {
		influxToken, _ := cmd.Flags().GetString("influx-token")
		influxOrg, _ := cmd.Flags().GetString("influx-org")
		influxBucket, _ := cmd.Flags().GetString("influx-bucket")
		influxPublisher = eventstream.NewInfluxPublisher(influxURL, influxToken, influxOrg, influxBucket, logger)
	}

	r.OnDecision = func(result router.MatchResult) {
		if hub != nil {
			hub.Publish(result)
		}
		if natsPublisher != nil {
			natsPublisher.Publish(result)
		}
		if influxPublisher != nil {
			influxPublisher.Publish(result)
		}
	}

	srv := api.NewServer(r, store, learner, tfidf, logger)

	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	// Extracts trace context from W3C TraceContext headers (traceparent,
	// tracestate) and starts a server span per request, so an inbound
	// routing call from a federation member keeps one trace across the
	// network hop.
	engine.Use(otelgin.Middleware("agentrouter"))
	if debug {
		engine.Use(gin.Logger())
	}
	api.RegisterRoutes(engine.Group("/"), srv, hub)

	addr := fmt.Sprintf(":%d", port)
	httpServer := &http.Server{Addr: addr, Handler: engine}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("shutting down agent router server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		if natsPublisher != nil {
			if err := natsPublisher.Close(); err != nil {
				logger.Warn("NATS publisher close error", slog.String("error", err.Error()))
			}
		}
		if influxPublisher != nil {
			if err := influxPublisher.Close(); err != nil {
				logger.Warn("InfluxDB publisher close error", slog.String("error", err.Error()))
			}
		}
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown error", slog.String("error", err.Error()))
		}
	}()

	logger.Info("agent router server listening", slog.String("address", addr))
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serve HTTP: %w", err)
	}
	return nil
}
