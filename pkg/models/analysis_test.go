package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() MagnitudeTable {
	return NewMagnitudeTable(uuid.MustParse("6f1c2b7e-3d7a-4a51-9a43-1f0a6cbe8d11"), []int{900, 500, 700, 500}, []Magnitude{
		{FilterID: "J", Teff: 500, Value: 18.2},
		{FilterID: "J", Teff: 700, Value: 16.9},
		{FilterID: "J", Teff: 900, Value: 15.5},
		{FilterID: "H", Teff: 700, Value: 17.1},
		{FilterID: "H", Teff: 1200, Value: 10},
	})
}

func TestMagnitudeTableOrdering(t *testing.T) {
	table := sampleTable()

	assert.Equal(t, []int{500, 700, 900}, table.Temperatures())
	assert.Equal(t, []string{"H", "J"}, table.Filters())

	j, ok := table.Series("J")
	require.True(t, ok)
	assert.Equal(t, []float64{18.2, 16.9, 15.5}, j)

	_, ok = table.Series("K")
	assert.False(t, ok)
}

func TestMagnitudeTableMissingCells(t *testing.T) {
	table := sampleTable()

	h, ok := table.Series("H")
	require.True(t, ok)
	assert.True(t, math.IsNaN(h[0]))
	assert.Equal(t, 17.1, h[1])
	assert.True(t, math.IsNaN(h[2]))

	_, ok = table.Lookup("H", 500)
	assert.False(t, ok)
	_, ok = table.Lookup("H", 1200)
	assert.False(t, ok)

	v, ok := table.Lookup("J", 700)
	assert.True(t, ok)
	assert.Equal(t, 16.9, v)
}

func TestMagnitudeTableIsolation(t *testing.T) {
	table := sampleTable()

	temps := table.Temperatures()
	temps[0] = 9999
	series, _ := table.Series("J")
	series[0] = -1

	assert.Equal(t, 500, table.Temperatures()[0])
	v, _ := table.Lookup("J", 500)
	assert.Equal(t, 18.2, v)
}

func TestMagnitudeTableJSON(t *testing.T) {
	data, err := json.Marshal(sampleTable())
	require.NoError(t, err)

	var out struct {
		RunID        string                `json:"run_id"`
		Temperatures []int                 `json:"temperatures"`
		Magnitudes   map[string][]*float64 `json:"magnitudes"`
	}
	require.NoError(t, json.Unmarshal(data, &out))

	assert.Equal(t, "6f1c2b7e-3d7a-4a51-9a43-1f0a6cbe8d11", out.RunID)
	assert.Equal(t, []int{500, 700, 900}, out.Temperatures)
	require.Len(t, out.Magnitudes["H"], 3)
	assert.Nil(t, out.Magnitudes["H"][0])
	require.NotNil(t, out.Magnitudes["H"][1])
	assert.Equal(t, 17.1, *out.Magnitudes["H"][1])
	assert.Equal(t, 15.5, *out.Magnitudes["J"][2])
}
