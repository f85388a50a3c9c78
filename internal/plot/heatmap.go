package plot

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"time"

	"github.com/223MapAction/Model-deploy/internal/model"
)

const (
	heatmapCell   = 24
	heatmapMonths = 12
	heatmapDays   = 31
)

// NDVIHeatmap rasterizes mean NDVI per (month, day of month) cell on a
// yellow-to-green ramp. Cells without a sample stay neutral grey.
//
// go-chart has no raster heatmap type, so this draws the pixel grid directly.
func NDVIHeatmap(samples []model.IndexSample) ([]byte, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("no samples to plot")
	}

	type cell struct {
		sum   float64
		count int
	}
	grid := make(map[[2]int]cell, len(samples))
	for _, s := range samples {
		d, err := time.Parse(sampleDateLayout, s.Date)
		if err != nil {
			return nil, fmt.Errorf("bad sample date %q: %w", s.Date, err)
		}
		key := [2]int{int(d.Month()) - 1, d.Day() - 1}
		c := grid[key]
		c.sum += s.NDVI
		c.count++
		grid[key] = c
	}

	img := image.NewRGBA(image.Rect(0, 0, heatmapMonths*heatmapCell, heatmapDays*heatmapCell))
	for month := 0; month < heatmapMonths; month++ {
		for day := 0; day < heatmapDays; day++ {
			c, ok := grid[[2]int{month, day}]
			fill := color.RGBA{R: 0xEE, G: 0xEE, B: 0xEE, A: 0xFF}
			if ok {
				fill = ndviColor(c.sum / float64(c.count))
			}
			fillCell(img, month, day, fill)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode heatmap: %w", err)
	}
	return buf.Bytes(), nil
}

func fillCell(img *image.RGBA, month, day int, fill color.RGBA) {
	x0 := month * heatmapCell
	y0 := day * heatmapCell
	for y := y0; y < y0+heatmapCell; y++ {
		for x := x0; x < x0+heatmapCell; x++ {
			// Thin white gridline on the top/left cell edges.
			if x == x0 || y == y0 {
				img.SetRGBA(x, y, color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF})
				continue
			}
			img.SetRGBA(x, y, fill)
		}
	}
}

// ndviColor maps NDVI in [-1,1] onto a pale-yellow to dark-green ramp.
func ndviColor(v float64) color.RGBA {
	if v < -1 {
		v = -1
	}
	if v > 1 {
		v = 1
	}
	t := (v + 1) / 2
	lerp := func(a, b uint8) uint8 {
		return uint8(float64(a) + t*(float64(b)-float64(a)))
	}
	// From #FFFFE5 (barren) to #00441B (dense vegetation).
	return color.RGBA{
		R: lerp(0xFF, 0x00),
		G: lerp(0xFF, 0x44),
		B: lerp(0xE5, 0x1B),
		A: 0xFF,
	}
}
