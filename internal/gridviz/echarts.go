package gridviz

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/flightgrid/internal/planning"
)

// maxChartCells bounds the number of cells serialised into an HTML
// chart. City-scale grids run to hundreds of thousands of cells, far
// more than a browser-side heatmap wants.
const maxChartCells = 250000

// RenderChart writes an interactive HTML heatmap of the grid. Large
// grids are downsampled by an integer stride; a downsampled cell is
// blocked if any covered source cell is blocked, so obstacles never
// disappear at coarse zoom.
func RenderChart(w io.Writer, g *planning.Grid, origin planning.Origin, altitude, margin float64) error {
	stride := 1
	if cells := g.Rows() * g.Cols(); cells > maxChartCells {
		stride = int(math.Ceil(math.Sqrt(float64(cells) / float64(maxChartCells))))
	}

	rows := (g.Rows() + stride - 1) / stride
	cols := (g.Cols() + stride - 1) / stride

	data := make([]opts.HeatMapData, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := 0
			for rr := r * stride; rr < (r+1)*stride && rr < g.Rows(); rr++ {
				for cc := c * stride; cc < (c+1)*stride && cc < g.Cols(); cc++ {
					if g.At(rr, cc) == planning.Blocked {
						v = 1
					}
				}
			}
			data = append(data, opts.HeatMapData{Value: []interface{}{c, r, v}})
		}
	}

	xAxis := make([]string, cols)
	for c := range xAxis {
		xAxis[c] = fmt.Sprintf("%.0f", origin.EastMin+float64(c*stride))
	}
	yAxis := make([]string, rows)
	for r := range yAxis {
		yAxis[r] = fmt.Sprintf("%.0f", origin.NorthMin+float64(r*stride))
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Flight space occupancy",
			Theme:     "dark",
			Width:     "900px",
			Height:    "900px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Flight space occupancy grid",
			Subtitle: fmt.Sprintf("altitude=%.1f m margin=%.1f m grid=%dx%d stride=%d", altitude, margin, g.Rows(), g.Cols(), stride),
		}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: "East (m)"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: yAxis, Name: "North (m)"}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(false),
			Min:        0,
			Max:        1,
			InRange:    &opts.VisualMapInRange{Color: []string{"#1f2430", "#fde725"}},
		}),
	)
	hm.SetXAxis(xAxis).AddSeries("occupancy", data)

	if err := hm.Render(w); err != nil {
		return fmt.Errorf("render grid chart: %w", err)
	}
	return nil
}
