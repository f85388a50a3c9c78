package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/223MapAction/Model-deploy/internal/chat"
	"github.com/223MapAction/Model-deploy/internal/client"
	"github.com/223MapAction/Model-deploy/internal/model"
	"github.com/223MapAction/Model-deploy/internal/plot"
	"github.com/223MapAction/Model-deploy/internal/prompt"
)

// ZoneQuerier is the earth-observation backend.
type ZoneQuerier interface {
	QueryZone(ctx context.Context, req model.ZoneRequest) ([]model.IndexSample, map[string]int, error)
}

// Narrative shown when the text backend cannot produce a satellite analysis.
const satelliteFallback = "Désolé, une erreur s'est produite lors de l'analyse des données satellitaires."

// ZoneService turns satellite indices around an incident point into plots,
// aggregates and an LLM narrative.
type ZoneService struct {
	eo     ZoneQuerier
	llm    TextGenerator
	impact *chat.ImpactCache
	log    zerolog.Logger
}

func NewZoneService(eo ZoneQuerier, llm TextGenerator, impact *chat.ImpactCache, log zerolog.Logger) *ZoneService {
	return &ZoneService{
		eo:     eo,
		llm:    llm,
		impact: impact,
		log:    log.With().Str("component", "zone-analysis").Logger(),
	}
}

// AnalyzeZone queries the satellite platform, renders the three plots and
// generates the narrative. client.ErrNoSatelliteData passes through so
// callers can degrade instead of failing the pipeline.
func (s *ZoneService) AnalyzeZone(ctx context.Context, req model.ZoneRequest) (*model.ZoneAnalysis, error) {
	s.log.Info().
		Str("incident_type", req.IncidentType).
		Str("location", req.Location).
		Msg("analyzing incident zone")

	series, landcover, err := s.eo.QueryZone(ctx, req)
	if err != nil {
		if errors.Is(err, client.ErrNoSatelliteData) {
			return nil, err
		}
		return nil, fmt.Errorf("satellite query failed: %w", err)
	}

	summary := summarize(series, landcover)

	seriesPlot, err := plot.NDVINDWISeries(series)
	if err != nil {
		return nil, fmt.Errorf("failed to render index series plot: %w", err)
	}
	heatmap, err := plot.NDVIHeatmap(series)
	if err != nil {
		return nil, fmt.Errorf("failed to render NDVI heatmap: %w", err)
	}
	landcoverPlot, err := plot.LandcoverDistribution(landcover)
	if err != nil {
		return nil, fmt.Errorf("failed to render land-cover plot: %w", err)
	}

	narrative, err := s.llm.Generate(ctx, prompt.Satellite(req.IncidentType, summary),
		fmt.Sprintf("Analysez les données satellitaires pour l'incident de type '%s' et fournissez un rapport détaillé formaté en markdown.", req.IncidentType))
	if err != nil {
		s.log.Error().Err(err).Msg("satellite narrative generation failed")
		narrative = satelliteFallback
	}

	if req.IncidentID != "" {
		s.impact.Put(req.IncidentID, impactSummary(summary))
	}

	return &model.ZoneAnalysis{
		TextualAnalysis: narrative,
		NDVINDWIPlot:    seriesPlot,
		NDVIHeatmap:     heatmap,
		LandcoverPlot:   landcoverPlot,
		Series:          series,
		Landcover:       landcover,
	}, nil
}

// summarize reduces the raw series and histogram to the aggregates the
// narrative prompt needs.
func summarize(series []model.IndexSample, landcover map[string]int) model.ZoneSummary {
	summary := model.ZoneSummary{NDVITrend: "diminution", NDWITrend: "diminution"}
	if len(series) > 0 {
		var ndviSum, ndwiSum float64
		for _, s := range series {
			ndviSum += s.NDVI
			ndwiSum += s.NDWI
		}
		summary.NDVIMean = ndviSum / float64(len(series))
		summary.NDWIMean = ndwiSum / float64(len(series))
		if series[len(series)-1].NDVI > series[0].NDVI {
			summary.NDVITrend = "augmentation"
		}
		if series[len(series)-1].NDWI > series[0].NDWI {
			summary.NDWITrend = "augmentation"
		}
	}

	total := 0
	for label, count := range landcover {
		total += count
		if count > landcover[summary.DominantCover] || summary.DominantCover == "" {
			summary.DominantCover = label
		}
	}
	if total > 0 {
		summary.DominantCoverPct = float64(landcover[summary.DominantCover]) / float64(total) * 100
	}
	return summary
}

func impactSummary(s model.ZoneSummary) string {
	return fmt.Sprintf("NDVI moyen %.2f (%s), NDWI moyen %.2f (%s), couverture dominante %s (%.1f%%)",
		s.NDVIMean, s.NDVITrend, s.NDWIMean, s.NDWITrend, s.DominantCover, s.DominantCoverPct)
}
