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
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/agentrouter/internal/profile"
	"github.com/AleutianAI/agentrouter/internal/router"
)

var learnCmd = &cobra.Command{
	Use:   "learn",
	Short: "Apply a single completion outcome to the agent profile store, or reset it",
	RunE:  runLearn,
}

func init() {
	learnCmd.Flags().String("task-id", "", "unique id of the completed task, used for idempotent replay")
	learnCmd.Flags().String("agent-id", "", "agent the task was routed to")
	learnCmd.Flags().String("task-description", "", "original task description, reinforces the agent's capability vector")
	learnCmd.Flags().Bool("success", true, "whether the task completed successfully")
	learnCmd.Flags().Float64("duration", 0, "task duration in minutes")
	learnCmd.Flags().Bool("reset", false, "discard the learning log and re-seed all profiles, ignoring every other flag")
}

func runLearn(cmd *cobra.Command, _ []string) error {
	logger := slog.Default()

	profilesPath, _ := cmd.Flags().GetString("profiles-path")
	logPath, _ := cmd.Flags().GetString("learning-log-path")
	indexPath, _ := cmd.Flags().GetString("index-path")
	cachePath, _ := cmd.Flags().GetString("embedding-cache-path")

	store, err := profile.NewStore(profilesPath)
	if err != nil {
		return fmt.Errorf("open profile store: %w", err)
	}

	_, tfidf, err := buildRouter(indexPath, cachePath, logger)
	if err != nil {
		return err
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

	if reset, _ := cmd.Flags().GetBool("reset"); reset {
		if err := learner.Reset(); err != nil {
			return fmt.Errorf("reset learner: %w", err)
		}
		slog.Info("learning log and profile store reset")
		return nil
	}

	taskID, _ := cmd.Flags().GetString("task-id")
	agentID, _ := cmd.Flags().GetString("agent-id")
	taskDescription, _ := cmd.Flags().GetString("task-description")
	success, _ := cmd.Flags().GetBool("success")
	duration, _ := cmd.Flags().GetFloat64("duration")

	if taskID == "" || agentID == "" {
		return fmt.Errorf("--task-id and --agent-id are required unless --reset is set")
	}

	completion := profile.Completion{
		TaskID:          taskID,
		AgentID:         router.AgentID(agentID),
		TaskDescription: taskDescription,
		Success:         success,
		DurationMinutes: duration,
	}

	var taskTFIDF map[string]float64
	if tfidf != nil && taskDescription != "" {
		taskTFIDF = tfidf.Vectorize(taskDescription)
	}

	learned, err := learner.LearnFromCompletion(completion, taskTFIDF)
	if err != nil {
		return fmt.Errorf("learn from completion: %w", err)
	}
	if !learned {
		slog.Info("task already learned, skipped", slog.String("task_id", taskID))
		return nil
	}
	slog.Info("learned from completion", slog.String("task_id", taskID), slog.String("agent_id", agentID))
	return nil
}
