package planning

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// single centred tower used by several tests: top at alt 10.
var tower = Obstacle{
	North: 0, East: 0, Alt: 5,
	HalfNorth: 2, HalfEast: 2, HalfAlt: 5,
}

func TestBuildSingleObstacleFullCoverage(t *testing.T) {
	g, origin, err := Build(ObstacleSet{tower}, 1, 1)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// Extent comes from the uninflated footprint [-2,2]x[-2,2].
	if g.Rows() != 4 || g.Cols() != 4 {
		t.Errorf("dimensions = %dx%d, want 4x4", g.Rows(), g.Cols())
	}
	want := Origin{NorthMin: -2, EastMin: -2}
	if diff := cmp.Diff(want, origin); diff != "" {
		t.Errorf("origin mismatch (-want +got):\n%s", diff)
	}

	// Tower top 5+5+1=11 > 1, and the inflated footprint [-3,3]x[-3,3]
	// clamps to the whole grid.
	if got := g.BlockedCount(); got != g.Rows()*g.Cols() {
		t.Errorf("BlockedCount = %d, want %d (fully blocked)", got, g.Rows()*g.Cols())
	}
}

func TestBuildAltitudeAboveObstacle(t *testing.T) {
	// 5+5+1 = 11 <= 12: the inflated top does not reach the flight
	// plane, so the obstacle contributes nothing.
	g, _, err := Build(ObstacleSet{tower}, 12, 1)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if g.Rows() != 4 || g.Cols() != 4 {
		t.Errorf("dimensions = %dx%d, want 4x4 (independent of altitude)", g.Rows(), g.Cols())
	}
	if got := g.BlockedCount(); got != 0 {
		t.Errorf("BlockedCount = %d, want 0 (all free)", got)
	}
}

func TestBuildAltitudeThreshold(t *testing.T) {
	// The altitude test is a strict inequality on alt+halfAlt+margin.
	tests := []struct {
		name     string
		altitude float64
		margin   float64
		blocked  bool
	}{
		{"well below top", 1, 1, true},
		{"just below inflated top", 10.99, 1, true},
		{"exactly at inflated top", 11, 1, false},
		{"above inflated top", 12, 1, false},
		{"margin raises effective top", 11, 1.5, true},
		{"zero margin at uninflated top", 10, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _, err := Build(ObstacleSet{tower}, tt.altitude, tt.margin)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if got := g.BlockedCount() > 0; got != tt.blocked {
				t.Errorf("blocked = %v, want %v", got, tt.blocked)
			}
		})
	}
}

func TestBuildDisjointObstacles(t *testing.T) {
	set := ObstacleSet{
		{North: 0, East: 0, Alt: 10, HalfNorth: 1, HalfEast: 1, HalfAlt: 10},
		{North: 40, East: 40, Alt: 10, HalfNorth: 1, HalfEast: 1, HalfAlt: 10},
	}
	g, origin, err := Build(set, 5, 0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// Extent spans both obstacles: [-1,41] on each axis.
	if g.Rows() != 42 || g.Cols() != 42 {
		t.Fatalf("dimensions = %dx%d, want 42x42", g.Rows(), g.Cols())
	}
	if origin.NorthMin != -1 || origin.EastMin != -1 {
		t.Fatalf("origin = %+v, want (-1,-1)", origin)
	}

	// Each obstacle blocks only its own local footprint.
	if g.At(0, 0) != Blocked {
		t.Error("cell (0,0) inside first obstacle should be Blocked")
	}
	if g.At(41, 41) != Blocked {
		t.Error("cell (41,41) inside second obstacle should be Blocked")
	}
	if g.At(20, 20) != Free {
		t.Error("cell (20,20) between obstacles should be Free")
	}
	// First footprint [-1,1] maps to rows 0..2; the second reaches the
	// grid's far edge, so its high index clamps to 41 and it covers
	// rows 40..41 only.
	wantBlocked := 3*3 + 2*2
	if got := g.BlockedCount(); got != wantBlocked {
		t.Errorf("BlockedCount = %d, want %d", got, wantBlocked)
	}
}

func TestBuildEmptySet(t *testing.T) {
	_, _, err := Build(nil, 5, 1)
	if err == nil {
		t.Fatal("Build with empty set should fail")
	}
	if !IsInvalidInput(err) {
		t.Errorf("error %v should classify as invalid input", err)
	}
}

func TestBuildNegativeHalfExtent(t *testing.T) {
	set := ObstacleSet{
		tower,
		{North: 10, East: 10, Alt: 5, HalfNorth: -1, HalfEast: 2, HalfAlt: 5},
	}
	_, _, err := Build(set, 5, 1)
	if err == nil {
		t.Fatal("Build with negative half-extent should fail")
	}
	if !IsInvalidInput(err) {
		t.Errorf("error %v should classify as invalid input", err)
	}
}

func TestBuildOrderInvariance(t *testing.T) {
	set := ObstacleSet{
		{North: 3, East: 7, Alt: 8, HalfNorth: 2, HalfEast: 3, HalfAlt: 8},
		{North: -5, East: 0, Alt: 12, HalfNorth: 4, HalfEast: 1, HalfAlt: 12},
		{North: 10, East: -4, Alt: 3, HalfNorth: 1, HalfEast: 1, HalfAlt: 3},
		{North: 0, East: 0, Alt: 20, HalfNorth: 6, HalfEast: 6, HalfAlt: 20},
	}
	ref, refOrigin, err := Build(set, 5, 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		shuffled := append(ObstacleSet(nil), set...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		g, origin, err := Build(shuffled, 5, 2)
		if err != nil {
			t.Fatalf("Build(shuffled): %v", err)
		}
		if origin != refOrigin {
			t.Fatalf("origin changed under permutation: %+v vs %+v", origin, refOrigin)
		}
		if diff := cmp.Diff(ref.Cells(), g.Cells()); diff != "" {
			t.Fatalf("grid changed under permutation (-ref +got):\n%s", diff)
		}
	}
}

func TestBuildIdempotent(t *testing.T) {
	set := ObstacleSet{tower, {North: 15, East: -3, Alt: 6, HalfNorth: 3, HalfEast: 2, HalfAlt: 6}}
	a, ao, err := Build(set, 4, 1.5)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	b, bo, err := Build(set, 4, 1.5)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if ao != bo {
		t.Errorf("origins differ: %+v vs %+v", ao, bo)
	}
	if diff := cmp.Diff(a.Cells(), b.Cells()); diff != "" {
		t.Errorf("repeated build not bit-identical (-a +b):\n%s", diff)
	}
}

func TestBuildMarginMonotonic(t *testing.T) {
	set := ObstacleSet{
		{North: 0, East: 0, Alt: 50, HalfNorth: 3, HalfEast: 3, HalfAlt: 50},
		{North: 20, East: 10, Alt: 50, HalfNorth: 2, HalfEast: 5, HalfAlt: 50},
	}
	// Obstacles are tall enough that the altitude test passes at every
	// margin here, so the blocked set must grow monotonically.
	var prev *Grid
	for _, margin := range []float64{0, 0.5, 1, 2, 4, 8} {
		g, _, err := Build(set, 5, margin)
		if err != nil {
			t.Fatalf("Build(margin=%g): %v", margin, err)
		}
		if prev != nil {
			for i, c := range prev.Cells() {
				if c == Blocked && g.Cells()[i] != Blocked {
					t.Fatalf("margin %g un-blocked cell %d", margin, i)
				}
			}
		}
		prev = g
	}
}

func TestBuildDimensionsIndependentOfParams(t *testing.T) {
	set := ObstacleSet{
		{North: 1.2, East: -3.7, Alt: 10, HalfNorth: 2.5, HalfEast: 1.25, HalfAlt: 10},
		{North: 30.8, East: 22.1, Alt: 40, HalfNorth: 4, HalfEast: 6.5, HalfAlt: 40},
	}
	var rows, cols int
	for i, params := range [][2]float64{{0, 0}, {5, 1}, {100, 10}, {-20, 3}} {
		g, _, err := Build(set, params[0], params[1])
		if err != nil {
			t.Fatalf("Build%v: %v", params, err)
		}
		if i == 0 {
			rows, cols = g.Rows(), g.Cols()
			continue
		}
		if g.Rows() != rows || g.Cols() != cols {
			t.Errorf("Build%v dimensions %dx%d, want %dx%d", params, g.Rows(), g.Cols(), rows, cols)
		}
	}
}

func TestBuildFractionalExtents(t *testing.T) {
	// Fractional extents floor/ceil outward so the footprint is never
	// truncated: [-0.5, 0.5] becomes [-1, 1].
	set := ObstacleSet{{North: 0, East: 0, Alt: 5, HalfNorth: 0.5, HalfEast: 0.5, HalfAlt: 5}}
	g, origin, err := Build(set, 1, 0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if g.Rows() != 2 || g.Cols() != 2 {
		t.Errorf("dimensions = %dx%d, want 2x2", g.Rows(), g.Cols())
	}
	if origin.NorthMin != -1 || origin.EastMin != -1 {
		t.Errorf("origin = %+v, want (-1,-1)", origin)
	}
}

func TestBuildZeroExtentAxis(t *testing.T) {
	// A wall with zero east half-extent at an integer coordinate
	// collapses the east axis: floor(5) == ceil(5), so cols is 0 and
	// there is nothing to mark. Zero half-extents are valid input, so
	// this must come back as an empty grid, not an error.
	wall := ObstacleSet{{North: 0, East: 5, Alt: 0, HalfNorth: 2, HalfEast: 0, HalfAlt: 10}}
	for _, margin := range []float64{0, 1} {
		g, origin, err := Build(wall, 5, margin)
		if err != nil {
			t.Fatalf("Build(margin=%g): %v", margin, err)
		}
		if g.Rows() != 4 || g.Cols() != 0 {
			t.Errorf("margin %g: dimensions = %dx%d, want 4x0", margin, g.Rows(), g.Cols())
		}
		if len(g.Cells()) != 0 || g.BlockedCount() != 0 {
			t.Errorf("margin %g: grid not empty: %d cells, %d blocked", margin, len(g.Cells()), g.BlockedCount())
		}
		want := Origin{NorthMin: -2, EastMin: 5}
		if origin != want {
			t.Errorf("margin %g: origin = %+v, want %+v", margin, origin, want)
		}
	}

	// Both axes collapsed: a point obstacle yields a 0x0 grid.
	point := ObstacleSet{{North: 3, East: 3, Alt: 0, HalfNorth: 0, HalfEast: 0, HalfAlt: 10}}
	g, _, err := Build(point, 5, 0)
	if err != nil {
		t.Fatalf("Build(point): %v", err)
	}
	if g.Rows() != 0 || g.Cols() != 0 {
		t.Errorf("point dimensions = %dx%d, want 0x0", g.Rows(), g.Cols())
	}
}

func TestClampIndex(t *testing.T) {
	tests := []struct {
		v    float64
		n    int
		want int
	}{
		{-3.2, 10, 0},
		{-0.4, 10, 0},
		{0, 10, 0},
		{4.9, 10, 4},
		{9.1, 10, 9},
		{15, 10, 9},
	}
	for _, tt := range tests {
		if got := clampIndex(tt.v, tt.n); got != tt.want {
			t.Errorf("clampIndex(%g, %d) = %d, want %d", tt.v, tt.n, got, tt.want)
		}
	}
}
