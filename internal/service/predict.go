package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/223MapAction/Model-deploy/internal/model"
	"github.com/223MapAction/Model-deploy/internal/queue"
)

// How long the gateway waits on each job result.
const (
	classifyWait = 2 * time.Minute
	contextWait  = 2 * time.Minute
	zoneWait     = 3 * time.Minute
)

// Satellite lookback window for the zone analysis.
const (
	zoneLookback   = 365 * 24 * time.Hour
	zoneDateLayout = "20060102"
)

// JobHandle is the submitter-side view of one enqueued job.
type JobHandle interface {
	GetInto(ctx context.Context, timeout time.Duration, out any) error
}

// Submitter enqueues jobs for the worker pool.
type Submitter interface {
	Enqueue(ctx context.Context, task string, args any) (JobHandle, error)
}

// QueueSubmitter adapts *queue.Queue to the Submitter interface.
type QueueSubmitter struct {
	Q *queue.Queue
}

func (s QueueSubmitter) Enqueue(ctx context.Context, task string, args any) (JobHandle, error) {
	return s.Q.Enqueue(ctx, task, args)
}

// ImageSource fetches the incident photo by name.
type ImageSource interface {
	Fetch(ctx context.Context, imageName string) ([]byte, error)
}

// PlotUploader pushes a rendered plot file to object storage and returns its
// public URL.
type PlotUploader interface {
	UploadFile(ctx context.Context, localPath string) (string, error)
}

// PredictionStore persists the consolidated pipeline result.
type PredictionStore interface {
	InsertPrediction(ctx context.Context, p model.Prediction) error
}

// PipelineError carries the failing stage, the HTTP status and the message
// shown to the client. Each stage fails with a distinct message so callers
// can tell where the pipeline broke.
type PipelineError struct {
	Stage   string
	Status  int
	Message string
	Err     error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *PipelineError) Unwrap() error { return e.Err }

func stageErr(stage string, status int, message string, err error) *PipelineError {
	return &PipelineError{Stage: stage, Status: status, Message: message, Err: err}
}

// PredictService runs the full prediction pipeline for one incident: fetch
// the image, classify it, generate context, analyze the zone, upload the
// plots and persist the consolidated row in a single write.
type PredictService struct {
	images   ImageSource
	jobs     Submitter
	uploader PlotUploader
	store    PredictionStore
	log      zerolog.Logger
}

func NewPredictService(images ImageSource, jobs Submitter, uploader PlotUploader, store PredictionStore, log zerolog.Logger) *PredictService {
	return &PredictService{
		images:   images,
		jobs:     jobs,
		uploader: uploader,
		store:    store,
		log:      log.With().Str("component", "predict-pipeline").Logger(),
	}
}

// Predict executes the pipeline. Any returned error is a *PipelineError;
// nothing is written to the database unless every stage succeeded.
func (s *PredictService) Predict(ctx context.Context, req model.PredictRequest) (*model.PredictResponse, error) {
	log := s.log.With().Str("incident_id", req.IncidentID).Logger()
	log.Info().Str("image", req.ImageName).Msg("prediction pipeline started")

	imageBytes, err := s.images.Fetch(ctx, req.ImageName)
	if err != nil {
		return nil, stageErr("fetch_image", http.StatusInternalServerError, "Failed to fetch image", err)
	}

	classification, err := s.classify(ctx, imageBytes)
	if err != nil {
		return nil, stageErr("prediction", http.StatusInternalServerError, "Error during prediction", err)
	}
	if classification.IsError() {
		return nil, stageErr("prediction", http.StatusInternalServerError, "Error during prediction",
			errors.New("classifier returned the failure sentinel"))
	}

	incidentType := model.NoIssueTag
	if tags := classification.Tags(); len(tags) > 0 {
		incidentType = tags[0]
	}

	// Context and zone analysis are independent: enqueue both, then wait.
	contextJob, err := s.jobs.Enqueue(ctx, queue.TaskFetchContext, ContextArgs{
		Prediction:          incidentType,
		SensitiveStructures: req.SensitiveStructures,
		Zone:                req.Zone,
	})
	if err != nil {
		return nil, stageErr("context", http.StatusInternalServerError, "Error during context fetching", err)
	}

	end := time.Now()
	start := end.Add(-zoneLookback)
	zoneJob, err := s.jobs.Enqueue(ctx, queue.TaskAnalyzeIncidentZone, model.ZoneRequest{
		IncidentID:   req.IncidentID,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Location:     req.Zone,
		IncidentType: incidentType,
		StartDate:    start.Format(zoneDateLayout),
		EndDate:      end.Format(zoneDateLayout),
	})
	if err != nil {
		return nil, stageErr("zone_analysis", http.StatusInternalServerError, "Error during zone analysis", err)
	}

	var contextResult ContextResult
	if err := contextJob.GetInto(ctx, contextWait, &contextResult); err != nil {
		return nil, stageErr("context", http.StatusInternalServerError, "Error during context fetching", err)
	}

	var zone model.ZoneAnalysis
	noSatelliteData := false
	if err := zoneJob.GetInto(ctx, zoneWait, &zone); err != nil {
		var te *queue.TaskError
		if errors.As(err, &te) && te.Kind == queue.KindNoData {
			// No usable scenes over the window: degrade to an analysis
			// without plots instead of failing the whole pipeline.
			log.Warn().Msg("no satellite data for zone, skipping plots")
			noSatelliteData = true
		} else {
			return nil, stageErr("zone_analysis", http.StatusInternalServerError, "Error during zone analysis", err)
		}
	}

	var plotURLs [3]string
	if !noSatelliteData {
		plotURLs, err = s.uploadPlots(ctx, req.IncidentID, zone)
		if err != nil {
			return nil, stageErr("plot_upload", http.StatusInternalServerError, "Error uploading plots", err)
		}
	}

	if req.IncidentID == "" || incidentType == "" ||
		contextResult.Analysis == "" || contextResult.PisteSolution == "" {
		return nil, stageErr("persist", http.StatusBadRequest, "Missing required fields for database insertion.", nil)
	}

	row := model.Prediction{
		IncidentID:    req.IncidentID,
		IncidentType:  incidentType,
		PisteSolution: contextResult.PisteSolution,
		Analysis:      contextResult.Analysis,
		NDVINDWIPlot:  plotURLs[0],
		NDVIHeatmap:   plotURLs[1],
		LandcoverPlot: plotURLs[2],
	}
	if err := s.store.InsertPrediction(ctx, row); err != nil {
		log.Error().Err(err).Msg("failed to persist prediction")
		return nil, stageErr("persist", http.StatusInternalServerError, "Database error", err)
	}

	log.Info().Str("incident_type", incidentType).Msg("prediction pipeline completed")
	return &model.PredictResponse{
		Prediction:    classification.Tags(),
		Probabilities: classification.Probabilities,
		Analysis:      contextResult.Analysis,
		PisteSolution: contextResult.PisteSolution,
		NDVINDWIPlot:  plotURLs[0],
		NDVIHeatmap:   plotURLs[1],
		LandcoverPlot: plotURLs[2],
	}, nil
}

func (s *PredictService) classify(ctx context.Context, imageBytes []byte) (model.Classification, error) {
	job, err := s.jobs.Enqueue(ctx, queue.TaskPerformPrediction, ClassifyArgs{Image: imageBytes})
	if err != nil {
		return model.Classification{}, err
	}
	var classification model.Classification
	if err := job.GetInto(ctx, classifyWait, &classification); err != nil {
		return model.Classification{}, err
	}
	return classification, nil
}

// uploadPlots writes the three rendered plots to disk and uploads each one.
// Files live only between write and confirmed upload.
func (s *PredictService) uploadPlots(ctx context.Context, incidentID string, zone model.ZoneAnalysis) ([3]string, error) {
	var urls [3]string
	plots := []struct {
		name string
		data []byte
	}{
		{fmt.Sprintf("ndvi_ndwi_%s.png", incidentID), zone.NDVINDWIPlot},
		{fmt.Sprintf("ndvi_heatmap_%s.png", incidentID), zone.NDVIHeatmap},
		{fmt.Sprintf("landcover_%s.png", incidentID), zone.LandcoverPlot},
	}
	for i, p := range plots {
		localPath := filepath.Join(os.TempDir(), p.name)
		if err := os.WriteFile(localPath, p.data, 0o644); err != nil {
			return urls, fmt.Errorf("write %s: %w", p.name, err)
		}
		url, err := s.uploader.UploadFile(ctx, localPath)
		if err != nil {
			os.Remove(localPath)
			return urls, err
		}
		urls[i] = url
	}
	return urls, nil
}
