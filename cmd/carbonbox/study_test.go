package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/carbonbox/internal/dynamo"
	"github.com/san-kum/carbonbox/internal/optim"
)

func TestParseGrid(t *testing.T) {
	names, ranges, err := parseGrid([]string{"amplitude=1,2.5", "period= 10 ,20"})
	require.NoError(t, err)
	assert.Equal(t, []string{"amplitude", "period"}, names)
	assert.Equal(t, [][]float64{{1, 2.5}, {10, 20}}, ranges)

	for _, bad := range []string{"amplitude", "=1,2", "amplitude=1,x"} {
		_, _, err := parseGrid([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestEmptyGridRejected(t *testing.T) {
	names, ranges, err := parseGrid(nil)
	require.NoError(t, err)
	_, err = optim.NewGridSearch(names, ranges)
	assert.ErrorIs(t, err, dynamo.ErrConfig)
}
