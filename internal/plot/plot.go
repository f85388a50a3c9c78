// Package plot renders the satellite metrics of a zone analysis to PNG:
// the NDVI/NDWI time series, an NDVI month-by-day heatmap, and the
// land-cover distribution of the buffered region.
package plot

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/223MapAction/Model-deploy/internal/model"
)

const sampleDateLayout = "2006-01-02"

// NDVINDWISeries renders both index time series on one chart.
func NDVINDWISeries(samples []model.IndexSample) ([]byte, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("no samples to plot")
	}

	dates := make([]time.Time, 0, len(samples))
	ndvi := make([]float64, 0, len(samples))
	ndwi := make([]float64, 0, len(samples))
	for _, s := range samples {
		d, err := time.Parse(sampleDateLayout, s.Date)
		if err != nil {
			return nil, fmt.Errorf("bad sample date %q: %w", s.Date, err)
		}
		dates = append(dates, d)
		ndvi = append(ndvi, s.NDVI)
		ndwi = append(ndwi, s.NDWI)
	}

	graph := chart.Chart{
		Title:  "Séries temporelles du NDVI et du NDWI",
		Width:  900,
		Height: 450,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name: "Valeur de l'indice",
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "NDVI (végétation)",
				XValues: dates,
				YValues: ndvi,
				Style: chart.Style{
					StrokeColor: drawing.ColorGreen,
					StrokeWidth: 2,
				},
			},
			chart.TimeSeries{
				Name:    "NDWI (eau)",
				XValues: dates,
				YValues: ndwi,
				Style: chart.Style{
					StrokeColor: drawing.ColorBlue,
					StrokeWidth: 2,
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render index series: %w", err)
	}
	return buf.Bytes(), nil
}

// LandcoverDistribution renders the land-cover class histogram as a pie
// chart, largest class first.
func LandcoverDistribution(landcover map[string]int) ([]byte, error) {
	if len(landcover) == 0 {
		return nil, fmt.Errorf("no land-cover classes to plot")
	}

	labels := make([]string, 0, len(landcover))
	for label := range landcover {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool { return landcover[labels[i]] > landcover[labels[j]] })

	values := make([]chart.Value, 0, len(labels))
	for _, label := range labels {
		if landcover[label] <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Value: float64(landcover[label]),
			Label: label,
		})
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("no land-cover classes to plot")
	}

	pie := chart.PieChart{
		Title:  "Distribution de la couverture terrestre (zone tampon)",
		Width:  600,
		Height: 600,
		Values: values,
	}

	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render land-cover distribution: %w", err)
	}
	return buf.Bytes(), nil
}
