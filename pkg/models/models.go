package models

import (
	"github.com/RMahshie/dwarfmag/pkg/units"
)

// Spectrum represents a tabulated model spectrum. X is either a wavelength or
// a frequency axis; Flux is per-frequency or per-wavelength accordingly.
// Samples keep the order of the source file.
type Spectrum struct {
	Source string         `json:"source"`
	X      units.Quantity `json:"-"`
	Flux   units.Quantity `json:"-"`
}

// Len returns the number of samples
func (s Spectrum) Len() int { return s.X.Len() }

// Axis reports which independent variable X holds
func (s Spectrum) Axis() Axis {
	if s.X.Unit.Dim == units.Length {
		return AxisWavelength
	}
	return AxisFrequency
}

// Passband represents a photon-weighted filter response curve. Response
// values are integration weights and are never renormalized.
type Passband struct {
	ID       string         `json:"id"`
	Source   string         `json:"source"`
	X        units.Quantity `json:"-"`
	Response []float64      `json:"-"`
}

// Len returns the number of tabulated response points
func (p Passband) Len() int { return len(p.Response) }

// Axis reports which independent variable X holds
func (p Passband) Axis() Axis {
	if p.X.Unit.Dim == units.Length {
		return AxisWavelength
	}
	return AxisFrequency
}

// FilterRef identifies a filter response file discovered on disk or in a bucket
type FilterRef struct {
	ID         string `json:"id"`
	Path       string `json:"path"`
	NarrowBand bool   `json:"narrow_band"`
}
