// Package gridviz renders occupancy grids for humans: PNG heatmaps via
// gonum/plot, interactive HTML charts via go-echarts, and a plain PGM
// raster for downstream tools.
package gridviz

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/flightgrid/internal/planning"
)

// gridXYZ adapts a planning.Grid to the plotter heatmap interface.
// X/Y are reported in world coordinates using the grid origin so the
// axes line up with the colliders data.
type gridXYZ struct {
	g      *planning.Grid
	origin planning.Origin
}

func (d gridXYZ) Dims() (c, r int) { return d.g.Cols(), d.g.Rows() }

func (d gridXYZ) Z(c, r int) float64 { return float64(d.g.At(r, c)) }

func (d gridXYZ) X(c int) float64 { return d.origin.EastMin + float64(c) }

func (d gridXYZ) Y(r int) float64 { return d.origin.NorthMin + float64(r) }

// reversedPalette yields the wrapped palette's colors in reverse order;
// gonum/plot v0.16.0 exports no reversing helper for palette.Palette.
type reversedPalette struct{ p palette.Palette }

func (r reversedPalette) Colors() []color.Color {
	cols := r.p.Colors()
	rev := make([]color.Color, len(cols))
	for i, c := range cols {
		rev[len(cols)-1-i] = c
	}
	return rev
}

// SavePlot writes a PNG heatmap of the grid to path. Blocked cells
// render dark on a light background.
func SavePlot(g *planning.Grid, origin planning.Origin, altitude, margin float64, path string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Flight space at altitude %.1f m (margin %.1f m)", altitude, margin)
	p.X.Label.Text = "East (m)"
	p.Y.Label.Text = "North (m)"

	pal := reversedPalette{p: palette.Heat(2, 1)}
	hm := plotter.NewHeatMap(gridXYZ{g: g, origin: origin}, pal)
	p.Add(hm)

	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("save grid plot: %w", err)
	}
	return nil
}
