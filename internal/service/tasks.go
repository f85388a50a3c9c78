package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/223MapAction/Model-deploy/internal/client"
	"github.com/223MapAction/Model-deploy/internal/model"
	"github.com/223MapAction/Model-deploy/internal/queue"
)

// Job argument and result shapes. These are the queue wire types; keep them
// stable across api and worker deployments.

type ClassifyArgs struct {
	Image []byte `json:"image"`
}

type ContextArgs struct {
	Prediction          string   `json:"prediction"`
	SensitiveStructures []string `json:"sensitive_structures"`
	Zone                string   `json:"zone"`
}

type ContextResult struct {
	Analysis      string `json:"analysis"`
	PisteSolution string `json:"piste_solution"`
}

// RegisterTasks binds the three pipeline jobs to the worker.
func RegisterTasks(w *queue.Worker, classify *ClassifyService, contextSvc *ContextService, zone *ZoneService) {
	w.Register(queue.TaskPerformPrediction, func(ctx context.Context, args json.RawMessage) (any, error) {
		var in ClassifyArgs
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, fmt.Errorf("bad classify args: %w", err)
		}
		// Never fails: backend errors come back as the sentinel tag.
		return classify.Classify(ctx, in.Image), nil
	})

	w.Register(queue.TaskFetchContext, func(ctx context.Context, args json.RawMessage) (any, error) {
		var in ContextArgs
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, fmt.Errorf("bad context args: %w", err)
		}
		analysis, solution, err := contextSvc.GenerateContext(ctx, in.Prediction, in.SensitiveStructures, in.Zone)
		if err != nil {
			return nil, err
		}
		return ContextResult{Analysis: analysis, PisteSolution: solution}, nil
	})

	w.Register(queue.TaskAnalyzeIncidentZone, func(ctx context.Context, args json.RawMessage) (any, error) {
		var in model.ZoneRequest
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, fmt.Errorf("bad zone args: %w", err)
		}
		result, err := zone.AnalyzeZone(ctx, in)
		if err != nil {
			if errors.Is(err, client.ErrNoSatelliteData) {
				return nil, &queue.TaskError{
					Kind:    queue.KindNoData,
					Task:    queue.TaskAnalyzeIncidentZone,
					Message: err.Error(),
				}
			}
			return nil, err
		}
		return result, nil
	})
}
