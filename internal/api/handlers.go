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
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AleutianAI/agentrouter/internal/profile"
	"github.com/AleutianAI/agentrouter/internal/router"
)

// Server holds everything an HTTP handler needs: the router, the agent
// profile store, the historical learner, and an optional TF-IDF index used
// to turn a learned task description into capability-vector reinforcement
// terms.
//
// # Thread Safety
//
// Safe for concurrent use; every field it wraps is itself safe for
// concurrent use.
type Server struct {
	Router  *router.Router
	Profile *profile.Store
	Learner *profile.Learner
	TFIDF   *router.TFIDFIndex
	Logger  *slog.Logger
}

// NewServer constructs a Server. A nil logger uses slog.Default.
func NewServer(r *router.Router, store *profile.Store, learner *profile.Learner, tfidf *router.TFIDFIndex, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{Router: r, Profile: store, Learner: learner, TFIDF: tfidf, Logger: logger}
}

func (s *Server) buildOptions(req RouteRequest) router.RouteOptions {
	opts := router.DefaultRouteOptions()
	if req.Tier != "" {
		opts.Tier = req.Tier
	}
	if req.Weights != nil {
		opts.Weights = req.Weights
	}
	if req.FallbackAgent != "" {
		opts.FallbackAgent = router.AgentID(req.FallbackAgent)
	}
	if len(req.AgentThresholds) > 0 {
		thresholds := make(map[router.AgentID]float64, len(req.AgentThresholds))
		for k, v := range req.AgentThresholds {
			thresholds[router.AgentID(k)] = v
		}
		opts.AgentThresholds = thresholds
	}
	if req.UseBigrams != nil {
		opts.UseBigrams = *req.UseBigrams
	}
	if req.UseTrigrams != nil {
		opts.UseTrigrams = *req.UseTrigrams
	}
	return opts
}

func (s *Server) writeError(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{Error: message, Code: code})
}

// HandleRoute handles POST /v1/route.
func (s *Server) HandleRoute(c *gin.Context) {
	var req RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	result, err := s.Router.Route(c.Request.Context(), req.Task, s.buildOptions(req))
	if err != nil {
		s.writeError(c, http.StatusBadRequest, "INVALID_TASK", err.Error())
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleExplain handles POST /v1/explain: identical to HandleRoute but
// returns the full per-signal breakdown.
func (s *Server) HandleExplain(c *gin.Context) {
	var req RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	result, err := s.Router.Explain(c.Request.Context(), req.Task, s.buildOptions(req))
	if err != nil {
		s.writeError(c, http.StatusBadRequest, "INVALID_TASK", err.Error())
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleLearn handles POST /v1/learn: applies one completion record to the
// agent profile store and the learning log.
func (s *Server) HandleLearn(c *gin.Context) {
	var req LearnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	var taskTFIDF map[string]float64
	if s.TFIDF != nil && req.TaskDescription != "" {
		taskTFIDF = s.TFIDF.Vectorize(req.TaskDescription)
	}

	learned, err := s.Learner.LearnFromCompletion(profile.Completion{
		TaskID:          req.TaskID,
		AgentID:         router.AgentID(req.AgentID),
		TaskDescription: req.TaskDescription,
		Success:         req.Success,
		DurationMinutes: req.DurationMinutes,
	}, taskTFIDF)
	if err != nil {
		s.Logger.Error("learn failed", slog.String("task_id", req.TaskID), slog.String("error", err.Error()))
		s.writeError(c, http.StatusInternalServerError, "LEARN_FAILED", err.Error())
		return
	}
	c.JSON(http.StatusOK, LearnResponse{Learned: learned})
}

// HandleStats handles GET /v1/stats: learning-log statistics and every
// agent's current profile.
func (s *Server) HandleStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"learning": s.Learner.GetStats(),
		"profiles": s.Profile.All(),
	})
}

// HandleHealth handles GET /healthz.
func (s *Server) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requestIDMiddleware stamps every request with a UUID for correlating log
// lines across a request's handler chain.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	}
}
