package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/223MapAction/Model-deploy/internal/chat"
	"github.com/223MapAction/Model-deploy/internal/client"
	"github.com/223MapAction/Model-deploy/internal/model"
)

type fakeZoneQuerier struct {
	series    []model.IndexSample
	landcover map[string]int
	err       error
}

func (q *fakeZoneQuerier) QueryZone(ctx context.Context, req model.ZoneRequest) ([]model.IndexSample, map[string]int, error) {
	if q.err != nil {
		return nil, nil, q.err
	}
	return q.series, q.landcover, nil
}

func zoneFixture() *fakeZoneQuerier {
	return &fakeZoneQuerier{
		series: []model.IndexSample{
			{Date: "2025-01-05", NDVI: 0.40, NDWI: 0.12},
			{Date: "2025-03-10", NDVI: 0.52, NDWI: 0.08},
		},
		landcover: map[string]int{"Végétation": 300, "Bâti": 100},
	}
}

func TestAnalyzeZone(t *testing.T) {
	impact := chat.NewImpactCache(time.Hour)
	svc := NewZoneService(zoneFixture(), &fakeGenerator{}, impact, zerolog.Nop())

	res, err := svc.AnalyzeZone(context.Background(), model.ZoneRequest{
		IncidentID:   "inc-1",
		IncidentType: "Déforestation",
		Location:     "Bamako",
	})
	if err != nil {
		t.Fatalf("AnalyzeZone: %v", err)
	}
	if res.TextualAnalysis == "" {
		t.Error("empty narrative")
	}
	if len(res.NDVINDWIPlot) == 0 || len(res.NDVIHeatmap) == 0 || len(res.LandcoverPlot) == 0 {
		t.Error("missing rendered plots")
	}
	if _, ok := impact.Get("inc-1"); !ok {
		t.Error("impact summary not cached")
	}
}

func TestAnalyzeZoneNarrativeFallback(t *testing.T) {
	svc := NewZoneService(zoneFixture(), &fakeGenerator{fail: true}, chat.NewImpactCache(time.Hour), zerolog.Nop())

	res, err := svc.AnalyzeZone(context.Background(), model.ZoneRequest{IncidentType: "Sécheresse"})
	if err != nil {
		t.Fatalf("AnalyzeZone: %v", err)
	}
	if res.TextualAnalysis != satelliteFallback {
		t.Errorf("narrative = %q, want fallback", res.TextualAnalysis)
	}
}

func TestAnalyzeZoneNoSatelliteData(t *testing.T) {
	querier := &fakeZoneQuerier{err: client.ErrNoSatelliteData}
	svc := NewZoneService(querier, &fakeGenerator{}, chat.NewImpactCache(time.Hour), zerolog.Nop())

	_, err := svc.AnalyzeZone(context.Background(), model.ZoneRequest{})
	if !errors.Is(err, client.ErrNoSatelliteData) {
		t.Fatalf("err = %v, want ErrNoSatelliteData", err)
	}
}

func TestSummarize(t *testing.T) {
	series := []model.IndexSample{
		{Date: "2025-01-05", NDVI: 0.40, NDWI: 0.20},
		{Date: "2025-03-10", NDVI: 0.60, NDWI: 0.10},
	}
	landcover := map[string]int{"Végétation": 300, "Eau": 100}

	s := summarize(series, landcover)
	if s.NDVIMean != 0.5 {
		t.Errorf("NDVI mean = %v", s.NDVIMean)
	}
	if s.NDVITrend != "augmentation" {
		t.Errorf("NDVI trend = %q", s.NDVITrend)
	}
	if s.NDWITrend != "diminution" {
		t.Errorf("NDWI trend = %q", s.NDWITrend)
	}
	if s.DominantCover != "Végétation" {
		t.Errorf("dominant cover = %q", s.DominantCover)
	}
	if s.DominantCoverPct != 75 {
		t.Errorf("dominant cover pct = %v", s.DominantCoverPct)
	}
}
