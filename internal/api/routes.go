// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package api

import (
	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/agentrouter/internal/eventstream"
)

// RegisterRoutes registers every router endpoint under rg. hub may be nil,
// in which case GET /v1/stream is not registered.
//
// Endpoints:
//
//	POST /v1/route   - route a task to one agent
//	POST /v1/explain - route a task with the full signal breakdown
//	POST /v1/learn   - apply a completion record
//	GET  /v1/stats   - learning-log statistics and agent profiles
//	GET  /v1/stream  - websocket feed of routing decisions
//	GET  /healthz    - liveness check
func RegisterRoutes(rg *gin.RouterGroup, srv *Server, hub *eventstream.Hub) {
	rg.Use(requestIDMiddleware())

	v1 := rg.Group("/v1")
	{
		v1.POST("/route", srv.HandleRoute)
		v1.POST("/explain", srv.HandleExplain)
		v1.POST("/learn", srv.HandleLearn)
		v1.GET("/stats", srv.HandleStats)
		if hub != nil {
			v1.GET("/stream", func(c *gin.Context) {
				hub.ServeWS(c.Writer, c.Request)
			})
		}
	}
	rg.GET("/healthz", srv.HandleHealth)
}
