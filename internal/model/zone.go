package model

// ZoneRequest describes one incident zone to analyze: a point, a human
// location label, and a date window in YYYYMMDD form.
type ZoneRequest struct {
	IncidentID   string  `json:"incident_id"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Location     string  `json:"location"`
	IncidentType string  `json:"incident_type"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
}

// IndexSample is one satellite scene reduced to its band-ratio indices at the
// incident point.
type IndexSample struct {
	Date string  `json:"date"`
	NDVI float64 `json:"ndvi"`
	NDWI float64 `json:"ndwi"`
}

// ZoneAnalysis is the full zone-analysis job result: the narrative, the three
// rendered plots, and the raw numeric series behind them.
type ZoneAnalysis struct {
	TextualAnalysis string         `json:"textual_analysis"`
	NDVINDWIPlot    []byte         `json:"ndvi_ndwi_plot"`
	NDVIHeatmap     []byte         `json:"ndvi_heatmap"`
	LandcoverPlot   []byte         `json:"landcover_plot"`
	Series          []IndexSample  `json:"series"`
	Landcover       map[string]int `json:"landcover"`
}

// ZoneSummary carries the aggregates fed into the narrative prompt.
type ZoneSummary struct {
	NDVIMean         float64
	NDVITrend        string
	NDWIMean         float64
	NDWITrend        string
	DominantCover    string
	DominantCoverPct float64
}
