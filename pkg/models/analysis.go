package models

import (
	"encoding/json"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Magnitude represents one synthetic AB magnitude for a (filter, temperature) pair.
type Magnitude struct {
	FilterID string  `json:"filter_id"`
	Teff     int     `json:"teff"`
	Value    float64 `json:"magnitude"`
	Coverage float64 `json:"coverage"` // fraction of the filter's response inside the model grid
}

// MagnitudeTable holds the magnitudes of one grid run keyed by filter and
// temperature. It is built once with NewMagnitudeTable and never mutated;
// accessors return copies.
type MagnitudeTable struct {
	RunID     uuid.UUID
	CreatedAt time.Time

	temps   []int
	filters []string
	values  map[string][]float64
}

// NewMagnitudeTable assembles a table from individual results. Missing
// (filter, temperature) cells are NaN.
func NewMagnitudeTable(runID uuid.UUID, temps []int, results []Magnitude) MagnitudeTable {
	t := MagnitudeTable{
		RunID:     runID,
		CreatedAt: time.Now().UTC(),
		temps:     slices.Clone(temps),
		values:    make(map[string][]float64),
	}
	slices.Sort(t.temps)
	t.temps = slices.Compact(t.temps)

	for _, r := range results {
		row, ok := t.values[r.FilterID]
		if !ok {
			row = make([]float64, len(t.temps))
			for i := range row {
				row[i] = math.NaN()
			}
			t.values[r.FilterID] = row
			t.filters = append(t.filters, r.FilterID)
		}
		if i, found := slices.BinarySearch(t.temps, r.Teff); found {
			row[i] = r.Value
		}
	}
	slices.Sort(t.filters)
	return t
}

// Temperatures returns the temperature grid in ascending order
func (t MagnitudeTable) Temperatures() []int { return slices.Clone(t.temps) }

// Filters returns the filter identifiers in ascending order
func (t MagnitudeTable) Filters() []string { return slices.Clone(t.filters) }

// Series returns the magnitudes of one filter aligned with Temperatures
func (t MagnitudeTable) Series(filterID string) ([]float64, bool) {
	row, ok := t.values[filterID]
	return slices.Clone(row), ok
}

// Lookup returns a single cell
func (t MagnitudeTable) Lookup(filterID string, teff int) (float64, bool) {
	row, ok := t.values[filterID]
	if !ok {
		return 0, false
	}
	i, found := slices.BinarySearch(t.temps, teff)
	if !found || math.IsNaN(row[i]) {
		return 0, false
	}
	return row[i], true
}

// tableJSON is the serialized shape of a MagnitudeTable
type tableJSON struct {
	RunID        string                `json:"run_id"`
	CreatedAt    time.Time             `json:"created_at"`
	Temperatures []int                 `json:"temperatures"`
	Magnitudes   map[string][]*float64 `json:"magnitudes"`
}

// MarshalJSON encodes missing cells as null
func (t MagnitudeTable) MarshalJSON() ([]byte, error) {
	out := tableJSON{
		RunID:        t.RunID.String(),
		CreatedAt:    t.CreatedAt,
		Temperatures: t.temps,
		Magnitudes:   make(map[string][]*float64, len(t.values)),
	}
	for id, row := range t.values {
		cells := make([]*float64, len(row))
		for i, v := range row {
			if !math.IsNaN(v) {
				cells[i] = &v
			}
		}
		out.Magnitudes[id] = cells
	}
	return json.Marshal(out)
}

// DetectionLimit is the farthest distance at which a source of the given
// absolute magnitude stays brighter than a survey's limiting magnitude.
type DetectionLimit struct {
	FilterID     string  `json:"filter_id"`
	Teff         int     `json:"teff"`
	AbsMagnitude float64 `json:"abs_magnitude"`
	LimitingMag  float64 `json:"limiting_magnitude"`
	DistancePc   float64 `json:"distance_pc"`
}
