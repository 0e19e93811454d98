package planning

import "math"

// Cell is the occupancy state of one grid cell. It is a defined type
// rather than a byte alias so cell slices marshal to JSON as {0,1}
// arrays instead of base64.
type Cell uint8

const (
	// Free marks a cell with no obstacle coverage at the build altitude.
	Free Cell = 0
	// Blocked marks a cell covered by at least one inflated obstacle footprint.
	Blocked Cell = 1
)

// Grid is a 2D occupancy raster at one cell per linear unit. Rows index
// discretized north, columns discretized east. A Grid is immutable once
// returned from Build; callers wanting different parameters build a new
// one.
type Grid struct {
	rows, cols int
	cells      []Cell // row-major, len == rows*cols
}

// Origin is the world-coordinate offset paired with a Grid. Subtracting
// it from a world position yields non-negative grid indices.
type Origin struct {
	NorthMin float64 `json:"north_min"`
	EastMin  float64 `json:"east_min"`
}

// Rows returns the number of north-axis cells.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of east-axis cells.
func (g *Grid) Cols() int { return g.cols }

// At returns the cell state at (row, col). Indices must be in range.
func (g *Grid) At(row, col int) Cell {
	return g.cells[row*g.cols+col]
}

// Cells returns the row-major backing slice. Callers must treat it as
// read-only.
func (g *Grid) Cells() []Cell { return g.cells }

// BlockedCount returns the number of Blocked cells.
func (g *Grid) BlockedCount() int {
	n := 0
	for _, c := range g.cells {
		if c == Blocked {
			n++
		}
	}
	return n
}

// Build rasterises an obstacle set into a 2D occupancy grid for flight
// at the given altitude, inflating every obstacle footprint by margin.
//
// The grid extent comes from the uninflated obstacle bounds (floored
// minima, ceiled maxima) so dimensions are stable across margin and
// altitude changes. Each obstacle that reaches above the flight plane
// after inflation blocks the closed index rectangle covered by its
// inflated footprint, clamped to the grid.
//
// Note the altitude test folds the horizontal margin into the vertical
// comparison: an obstacle contributes when alt + halfAlt + margin
// exceeds the flight altitude. The margin raises the effective obstacle
// top by the same amount it widens the footprint. That matches the
// source planner this was ported from and is kept as-is.
//
// Build is pure: identical inputs produce bit-identical grids, and the
// result does not depend on obstacle order.
func Build(obstacles ObstacleSet, altitude, margin float64) (*Grid, Origin, error) {
	if err := obstacles.Validate(); err != nil {
		return nil, Origin{}, err
	}

	northMin, northMax := math.Inf(1), math.Inf(-1)
	eastMin, eastMax := math.Inf(1), math.Inf(-1)
	for _, o := range obstacles {
		northMin = math.Min(northMin, o.North-o.HalfNorth)
		northMax = math.Max(northMax, o.North+o.HalfNorth)
		eastMin = math.Min(eastMin, o.East-o.HalfEast)
		eastMax = math.Max(eastMax, o.East+o.HalfEast)
	}
	northMin = math.Floor(northMin)
	northMax = math.Ceil(northMax)
	eastMin = math.Floor(eastMin)
	eastMax = math.Ceil(eastMax)

	rows := int(math.Ceil(northMax - northMin))
	cols := int(math.Ceil(eastMax - eastMin))

	g := &Grid{
		rows:  rows,
		cols:  cols,
		cells: make([]Cell, rows*cols),
	}

	// A zero-extent axis (every obstacle flat on it at an integer
	// coordinate) yields a zero-dimension grid with nothing to mark.
	// That is a valid result, not an error.
	if rows == 0 || cols == 0 {
		return g, Origin{NorthMin: northMin, EastMin: eastMin}, nil
	}

	for _, o := range obstacles {
		if o.Alt+o.HalfAlt+margin <= altitude {
			continue
		}

		// Inflated footprint translated into index space, clamped to
		// the grid. The margin-free footprint always fits by
		// construction of the extent above; the inflated one can spill
		// past the edges.
		rowLo := clampIndex(o.North-o.HalfNorth-margin-northMin, rows)
		rowHi := clampIndex(o.North+o.HalfNorth+margin-northMin, rows)
		colLo := clampIndex(o.East-o.HalfEast-margin-eastMin, cols)
		colHi := clampIndex(o.East+o.HalfEast+margin-eastMin, cols)

		for r := rowLo; r <= rowHi; r++ {
			base := r * cols
			for c := colLo; c <= colHi; c++ {
				g.cells[base+c] = Blocked
			}
		}
	}

	return g, Origin{NorthMin: northMin, EastMin: eastMin}, nil
}

// clampIndex truncates a grid-space coordinate to a valid index in
// [0, n-1].
func clampIndex(v float64, n int) int {
	i := int(v)
	if i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}
