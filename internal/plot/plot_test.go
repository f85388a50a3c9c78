package plot

import (
	"bytes"
	"testing"

	"github.com/223MapAction/Model-deploy/internal/model"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G'}

func samples() []model.IndexSample {
	return []model.IndexSample{
		{Date: "2025-01-05", NDVI: 0.42, NDWI: 0.10},
		{Date: "2025-02-10", NDVI: 0.48, NDWI: 0.12},
		{Date: "2025-03-20", NDVI: 0.55, NDWI: 0.08},
		{Date: "2025-04-25", NDVI: 0.61, NDWI: 0.05},
	}
}

func TestNDVINDWISeries(t *testing.T) {
	png, err := NDVINDWISeries(samples())
	if err != nil {
		t.Fatalf("NDVINDWISeries: %v", err)
	}
	if !bytes.HasPrefix(png, pngHeader) {
		t.Error("output is not a PNG")
	}
}

func TestNDVINDWISeriesEmpty(t *testing.T) {
	if _, err := NDVINDWISeries(nil); err == nil {
		t.Fatal("expected error for empty series")
	}
}

func TestNDVINDWISeriesBadDate(t *testing.T) {
	in := []model.IndexSample{{Date: "05/01/2025", NDVI: 0.4, NDWI: 0.1}}
	if _, err := NDVINDWISeries(in); err == nil {
		t.Fatal("expected error for unparseable date")
	}
}

func TestNDVIHeatmap(t *testing.T) {
	png, err := NDVIHeatmap(samples())
	if err != nil {
		t.Fatalf("NDVIHeatmap: %v", err)
	}
	if !bytes.HasPrefix(png, pngHeader) {
		t.Error("output is not a PNG")
	}
}

func TestLandcoverDistribution(t *testing.T) {
	png, err := LandcoverDistribution(map[string]int{
		"Végétation": 320,
		"Eau":        45,
		"Bâti":       120,
		"Vide":       0,
	})
	if err != nil {
		t.Fatalf("LandcoverDistribution: %v", err)
	}
	if !bytes.HasPrefix(png, pngHeader) {
		t.Error("output is not a PNG")
	}
}
