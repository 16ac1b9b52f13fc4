package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const halfBlock = "▀"

// Heatmap draws an n x n field with two grid rows per terminal row: the
// upper row is the glyph color, the lower row the background.
func Heatmap(field []float32, n int, t Theme) string {
	var b strings.Builder
	for y := 0; y < n; y += 2 {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < n; x++ {
			st := lipgloss.NewStyle().Foreground(t.Ramp(field[y*n+x]))
			if y+1 < n {
				st = st.Background(t.Ramp(field[(y+1)*n+x]))
			}
			b.WriteString(st.Render(halfBlock))
		}
	}
	return b.String()
}

// cellAt maps a terminal position inside the heatmap to grid coordinates.
// y is the upper of the two grid rows the terminal cell covers.
func cellAt(col, row, n int) (x, y int, ok bool) {
	x, y = col, row*2
	return x, y, x >= 0 && y >= 0 && x < n && y < n
}
