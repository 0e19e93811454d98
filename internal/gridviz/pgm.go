package gridviz

import (
	"bufio"
	"fmt"
	"io"

	"github.com/banshee-data/flightgrid/internal/planning"
)

// WritePGM writes the grid as a plain-text (P2) PGM image: blocked
// cells are black, free cells white. Row 0 of the grid (minimum north)
// is written last so the image reads with north up.
func WritePGM(w io.Writer, g *planning.Grid) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P2\n%d %d\n255\n", g.Cols(), g.Rows()); err != nil {
		return fmt.Errorf("write pgm header: %w", err)
	}
	for r := g.Rows() - 1; r >= 0; r-- {
		for c := 0; c < g.Cols(); c++ {
			v := 255
			if g.At(r, c) == planning.Blocked {
				v = 0
			}
			sep := " "
			if c == g.Cols()-1 {
				sep = "\n"
			}
			if _, err := fmt.Fprintf(bw, "%d%s", v, sep); err != nil {
				return fmt.Errorf("write pgm row %d: %w", r, err)
			}
		}
	}
	return bw.Flush()
}
