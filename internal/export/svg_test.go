package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/carbonbox/internal/dynamo"
)

func TestSeriesToSVG(t *testing.T) {
	times := []float64{1850, 1851, 1852}
	series := [][]float64{{725, 730, 740}, {725, 724, 722}}

	svg, err := SeriesToSVG(times, series, []string{"atmosphere", "a<b"}, 400, 200)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(svg, "<?xml"))
	assert.True(t, strings.HasSuffix(svg, "</svg>"))
	assert.Equal(t, 2, strings.Count(svg, "<path"))
	assert.Contains(t, svg, Palette[0])
	assert.Contains(t, svg, Palette[1])
	assert.Contains(t, svg, ">atmosphere</text>")
	assert.Contains(t, svg, "a&lt;b")
	assert.Contains(t, svg, `d="M0.0,`)
}

func TestSeriesToSVGErrors(t *testing.T) {
	_, err := SeriesToSVG([]float64{0}, [][]float64{{1}}, nil, 10, 10)
	assert.ErrorIs(t, err, dynamo.ErrShape)

	_, err = SeriesToSVG([]float64{0, 1}, [][]float64{{1}}, nil, 10, 10)
	assert.ErrorIs(t, err, dynamo.ErrShape)

	_, err = SeriesToSVG([]float64{0, 1}, nil, nil, 10, 10)
	assert.ErrorIs(t, err, dynamo.ErrShape)

	_, err = SeriesToSVG([]float64{0, 1}, [][]float64{{1, 2}}, nil, 0, 10)
	assert.ErrorIs(t, err, dynamo.ErrConfig)
}
