package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/223MapAction/Model-deploy/internal/config"
	"github.com/223MapAction/Model-deploy/internal/model"
)

func earthObsConfig(baseURL string) config.EarthObsConfig {
	return config.EarthObsConfig{BaseURL: baseURL, BufferMeters: 500, MaxCloudCover: 20}
}

func TestQueryZone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/zone/indices" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req earthObsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.BufferMeters != 500 || req.MaxCloudCover != 20 {
			t.Errorf("request = %+v", req)
		}
		json.NewEncoder(w).Encode(earthObsResponse{
			Series:    []model.IndexSample{{Date: "2025-01-05", NDVI: 0.4, NDWI: 0.1}},
			Landcover: map[string]int{"Végétation": 42},
		})
	}))
	defer srv.Close()

	c := NewEarthObsClient(earthObsConfig(srv.URL))
	series, landcover, err := c.QueryZone(context.Background(), model.ZoneRequest{
		Latitude:  12.64,
		Longitude: -8.0,
		StartDate: "20240901",
		EndDate:   "20250901",
	})
	if err != nil {
		t.Fatalf("QueryZone: %v", err)
	}
	if len(series) != 1 || series[0].NDVI != 0.4 {
		t.Errorf("series = %v", series)
	}
	if landcover["Végétation"] != 42 {
		t.Errorf("landcover = %v", landcover)
	}
}

func TestQueryZoneNoData(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "404 from the service",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
		},
		{
			name: "empty series",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(earthObsResponse{})
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewEarthObsClient(earthObsConfig(srv.URL))
			_, _, err := c.QueryZone(context.Background(), model.ZoneRequest{})
			if !errors.Is(err, ErrNoSatelliteData) {
				t.Fatalf("err = %v, want ErrNoSatelliteData", err)
			}
		})
	}
}

func TestQueryZoneServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewEarthObsClient(earthObsConfig(srv.URL))
	_, _, err := c.QueryZone(context.Background(), model.ZoneRequest{})
	if err == nil || errors.Is(err, ErrNoSatelliteData) {
		t.Fatalf("err = %v, want plain error", err)
	}
}

func TestImageURLKeepsBasename(t *testing.T) {
	f := NewImageFetcher(config.ImageServerConfig{BaseURL: "http://images.example/uploads/"})
	tests := []struct {
		in   string
		want string
	}{
		{"photo.jpg", "http://images.example/uploads/photo.jpg"},
		{"nested/dir/photo.jpg", "http://images.example/uploads/photo.jpg"},
	}
	for _, tt := range tests {
		if got := f.ImageURL(tt.in); got != tt.want {
			t.Errorf("ImageURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
