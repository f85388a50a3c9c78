package db

import (
	"context"

	"github.com/223MapAction/Model-deploy/internal/model"
)

// EnsurePredictionSchema creates the prediction table if absent.
func (db *Postgres) EnsurePredictionSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS "Mapapi_prediction" (
			incident_id TEXT PRIMARY KEY,
			incident_type TEXT NOT NULL,
			piste_solution TEXT NOT NULL,
			analysis TEXT NOT NULL,
			ndvi_ndwi_plot TEXT NOT NULL DEFAULT '',
			ndvi_heatmap TEXT NOT NULL DEFAULT '',
			landcover_plot TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	_, err := db.Pool.Exec(ctx, query)
	return err
}

// InsertPrediction writes the consolidated incident record in a single
// statement. The pipeline calls this only after every stage succeeded; a
// re-run for the same incident overwrites the previous record.
func (db *Postgres) InsertPrediction(ctx context.Context, p model.Prediction) error {
	query := `
		INSERT INTO "Mapapi_prediction" (
			incident_id, incident_type, piste_solution, analysis,
			ndvi_ndwi_plot, ndvi_heatmap, landcover_plot
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (incident_id) DO UPDATE SET
			incident_type = EXCLUDED.incident_type,
			piste_solution = EXCLUDED.piste_solution,
			analysis = EXCLUDED.analysis,
			ndvi_ndwi_plot = EXCLUDED.ndvi_ndwi_plot,
			ndvi_heatmap = EXCLUDED.ndvi_heatmap,
			landcover_plot = EXCLUDED.landcover_plot
	`
	_, err := db.Pool.Exec(ctx, query,
		p.IncidentID,
		p.IncidentType,
		p.PisteSolution,
		p.Analysis,
		p.NDVINDWIPlot,
		p.NDVIHeatmap,
		p.LandcoverPlot,
	)
	return err
}

// GetPrediction loads the stored record for one incident, or pgx.ErrNoRows.
func (db *Postgres) GetPrediction(ctx context.Context, incidentID string) (*model.Prediction, error) {
	query := `
		SELECT incident_id, incident_type, piste_solution, analysis,
		       ndvi_ndwi_plot, ndvi_heatmap, landcover_plot
		FROM "Mapapi_prediction"
		WHERE incident_id = $1
	`

	var p model.Prediction
	err := db.Pool.QueryRow(ctx, query, incidentID).Scan(
		&p.IncidentID,
		&p.IncidentType,
		&p.PisteSolution,
		&p.Analysis,
		&p.NDVINDWIPlot,
		&p.NDVIHeatmap,
		&p.LandcoverPlot,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
