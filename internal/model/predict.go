package model

// PredictRequest is the body of POST /image/predict.
type PredictRequest struct {
	ImageName           string   `json:"image_name" binding:"required"`
	SensitiveStructures []string `json:"sensitive_structures"`
	Zone                string   `json:"zone"`
	IncidentID          string   `json:"incident_id" binding:"required"`
	Latitude            float64  `json:"latitude"`
	Longitude           float64  `json:"longitude"`
}

// PredictResponse is the consolidated pipeline output returned to the client.
type PredictResponse struct {
	Prediction    []string  `json:"prediction"`
	Probabilities []float64 `json:"probabilities"`
	Analysis      string    `json:"analysis"`
	PisteSolution string    `json:"piste_solution"`
	NDVINDWIPlot  string    `json:"ndvi_ndwi_plot"`
	NDVIHeatmap   string    `json:"ndvi_heatmap"`
	LandcoverPlot string    `json:"landcover_plot"`
}

// TagScore is a single classification tag with its confidence.
type TagScore struct {
	Tag        string  `json:"tag"`
	Confidence float64 `json:"confidence"`
}

// Classification is the full result of one classifier invocation: the tags
// above threshold plus the raw probability vector aligned to the tag
// vocabulary.
type Classification struct {
	Predictions   []TagScore `json:"predictions"`
	Probabilities []float64  `json:"probabilities"`
}

// ErrorTag is returned as the sole prediction when the classifier backend
// fails. Jobs serialize return values, not errors, so downstream stages must
// check for it instead of relying on error propagation.
const ErrorTag = "Error in prediction"

// NoIssueTag is the classifier answer when none of the known environmental
// issues is visible in the image.
const NoIssueTag = "Aucun problème environnemental"

// IsError reports whether the classification carries the failure sentinel.
func (c Classification) IsError() bool {
	return len(c.Predictions) == 1 && c.Predictions[0].Tag == ErrorTag
}

// Tags returns the predicted tag names in confidence order.
func (c Classification) Tags() []string {
	tags := make([]string, 0, len(c.Predictions))
	for _, p := range c.Predictions {
		tags = append(tags, p.Tag)
	}
	return tags
}

// Prediction is one persisted row of "Mapapi_prediction".
type Prediction struct {
	IncidentID    string `json:"incident_id"`
	IncidentType  string `json:"incident_type"`
	PisteSolution string `json:"piste_solution"`
	Analysis      string `json:"analysis"`
	NDVINDWIPlot  string `json:"ndvi_ndwi_plot"`
	NDVIHeatmap   string `json:"ndvi_heatmap"`
	LandcoverPlot string `json:"landcover_plot"`
}
