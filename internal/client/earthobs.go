// HTTP client for the earth-observation service that exposes the managed
// geospatial platform (Sentinel-2 surface reflectance plus ESA WorldCover).
//
// The service reduces a multi-temporal image collection around the incident
// point to per-scene NDVI/NDWI samples and a land-cover pixel histogram; all
// heavy geospatial computation happens on its side.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/223MapAction/Model-deploy/internal/config"
	"github.com/223MapAction/Model-deploy/internal/model"
)

// ErrNoSatelliteData reports that no cloud-free scene exists in the requested
// window. Callers degrade gracefully instead of failing the whole pipeline.
var ErrNoSatelliteData = errors.New("no satellite data for the requested zone and period")

type EarthObsClient struct {
	baseURL       string
	bufferMeters  int
	maxCloudCover int
	httpClient    *http.Client
}

type earthObsRequest struct {
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	BufferMeters  int     `json:"buffer_meters"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	MaxCloudCover int     `json:"max_cloud_cover"`
}

type earthObsResponse struct {
	Series    []model.IndexSample `json:"series"`
	Landcover map[string]int      `json:"landcover"`
}

func NewEarthObsClient(cfg config.EarthObsConfig) *EarthObsClient {
	return &EarthObsClient{
		baseURL:       cfg.BaseURL,
		bufferMeters:  cfg.BufferMeters,
		maxCloudCover: cfg.MaxCloudCover,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// QueryZone fetches the NDVI/NDWI time series at the point and the land-cover
// histogram over the buffered region.
func (c *EarthObsClient) QueryZone(ctx context.Context, req model.ZoneRequest) ([]model.IndexSample, map[string]int, error) {
	payload, err := json.Marshal(earthObsRequest{
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		BufferMeters:  c.bufferMeters,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		MaxCloudCover: c.maxCloudCover,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal zone query: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/zone/indices", bytes.NewBuffer(payload))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query earth-observation service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil, ErrNoSatelliteData
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, nil, fmt.Errorf("earth-observation service returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}

	var parsed earthObsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(parsed.Series) == 0 {
		return nil, nil, ErrNoSatelliteData
	}
	return parsed.Series, parsed.Landcover, nil
}
