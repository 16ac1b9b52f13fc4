package export

import (
	"strings"
	"testing"

	"github.com/san-kum/diffgen/internal/viz"
	"github.com/stretchr/testify/assert"
)

func TestFieldToSVG(t *testing.T) {
	field := []float32{
		0, 0, 0,
		0, 1, 0,
		0, 0.5, 0,
	}
	svg := FieldToSVG(field, 3, 10, viz.ThemeGray)
	assert.True(t, strings.HasPrefix(svg, "<?xml"))
	assert.True(t, strings.HasSuffix(svg, "</svg>"))
	assert.Contains(t, svg, `width="30"`)
	assert.Contains(t, svg, `<rect x="10.0" y="10.0" width="10.0" height="10.0" fill="#ffffff"/>`)
	assert.Contains(t, svg, `<rect x="10.0" y="20.0" width="10.0" height="10.0" fill="#808080"/>`)
	// background plus two lit cells
	assert.Equal(t, 3, strings.Count(svg, "<rect"))

	assert.Empty(t, FieldToSVG(field, 4, 10, viz.ThemeGray))
}

func TestSeriesToSVG(t *testing.T) {
	assert.Empty(t, SeriesToSVG([]float64{1}, 100, 50, "#fff"))

	svg := SeriesToSVG([]float64{2, 1, 0}, 100, 60, "#00ff88")
	assert.Contains(t, svg, `stroke="#00ff88"`)
	assert.Contains(t, svg, "M0.0,5.0 L50.0,30.0 L100.0,55.0")
}
