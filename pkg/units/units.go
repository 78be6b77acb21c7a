// Package units pairs numeric samples with an explicit physical unit and
// provides the pure conversions the photometry code needs: length scaling,
// wavelength <-> frequency, and flux density per-frequency <-> per-wavelength.
//
// Every unit carries a scale to its SI reference (metres, hertz,
// W m^-2 Hz^-1, W m^-2 m^-1), so converting within a dimension is a single
// multiplication.
package units

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// SpeedOfLight in metres per second.
const SpeedOfLight = 299792458.0

var (
	// ErrIncompatible is returned when converting between different dimensions.
	ErrIncompatible = errors.New("incompatible units")

	// ErrNonPositive is returned when a wavelength or frequency is zero or negative.
	ErrNonPositive = errors.New("non-positive spectral coordinate")

	// ErrLengthMismatch is returned when paired quantities differ in length.
	ErrLengthMismatch = errors.New("quantity length mismatch")
)

// Dimension is the physical dimension a Unit measures.
type Dimension int

const (
	Dimensionless Dimension = iota
	Length
	Frequency
	FluxDensityNu     // power per area per frequency
	FluxDensityLambda // power per area per length
)

func (d Dimension) String() string {
	switch d {
	case Length:
		return "length"
	case Frequency:
		return "frequency"
	case FluxDensityNu:
		return "flux density per frequency"
	case FluxDensityLambda:
		return "flux density per wavelength"
	default:
		return "dimensionless"
	}
}

// Unit is a named scale within a Dimension.
type Unit struct {
	Name  string
	Dim   Dimension
	Scale float64 // multiply by Scale to reach the SI reference unit
}

func (u Unit) String() string { return u.Name }

var (
	One = Unit{Name: "", Dim: Dimensionless, Scale: 1}

	Meter     = Unit{Name: "m", Dim: Length, Scale: 1}
	Micron    = Unit{Name: "um", Dim: Length, Scale: 1e-6}
	Nanometer = Unit{Name: "nm", Dim: Length, Scale: 1e-9}
	Angstrom  = Unit{Name: "Angstrom", Dim: Length, Scale: 1e-10}

	Hertz = Unit{Name: "Hz", Dim: Frequency, Scale: 1}

	WattPerM2Hz = Unit{Name: "W m-2 Hz-1", Dim: FluxDensityNu, Scale: 1}
	Jansky      = Unit{Name: "Jy", Dim: FluxDensityNu, Scale: 1e-26}
	MilliJansky = Unit{Name: "mJy", Dim: FluxDensityNu, Scale: 1e-29}

	WattPerM2M = Unit{Name: "W m-2 m-1", Dim: FluxDensityLambda, Scale: 1}
)

// ABZeroPoint is the flux density of a zero-magnitude source in the AB system.
var ABZeroPoint = Scalar(3631, Jansky)

// ParseLength resolves a configured length unit name.
func ParseLength(name string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "m", "meter", "metre":
		return Meter, nil
	case "um", "micron", "microns", "micrometer":
		return Micron, nil
	case "nm", "nanometer":
		return Nanometer, nil
	case "a", "aa", "angstrom", "angstroms":
		return Angstrom, nil
	}
	return Unit{}, fmt.Errorf("unknown length unit %q", name)
}

// Quantity is a sequence of samples measured in a single Unit.
type Quantity struct {
	Values []float64
	Unit   Unit
}

// New wraps values without copying them.
func New(values []float64, u Unit) Quantity {
	return Quantity{Values: values, Unit: u}
}

// Scalar returns a one-element quantity.
func Scalar(v float64, u Unit) Quantity {
	return Quantity{Values: []float64{v}, Unit: u}
}

// Len returns the number of samples.
func (q Quantity) Len() int { return len(q.Values) }

// Value returns the first sample; meant for scalars.
func (q Quantity) Value() float64 {
	if len(q.Values) == 0 {
		return 0
	}
	return q.Values[0]
}

// To returns a copy of q expressed in u. Both units must share a dimension.
func (q Quantity) To(u Unit) (Quantity, error) {
	if q.Unit.Dim != u.Dim {
		return Quantity{}, fmt.Errorf("%w: %s to %s", ErrIncompatible, q.Unit.Dim, u.Dim)
	}
	out := slices.Clone(q.Values)
	if q.Unit.Scale != u.Scale {
		floats.Scale(q.Unit.Scale/u.Scale, out)
	}
	return Quantity{Values: out, Unit: u}, nil
}

// SI returns the samples in the SI reference unit of the dimension.
func (q Quantity) SI() []float64 {
	out := slices.Clone(q.Values)
	if q.Unit.Scale != 1 {
		floats.Scale(q.Unit.Scale, out)
	}
	return out
}

// WavelengthToFrequency applies nu = c / lambda.
func WavelengthToFrequency(wl Quantity) (Quantity, error) {
	if wl.Unit.Dim != Length {
		return Quantity{}, fmt.Errorf("%w: expected length, got %s", ErrIncompatible, wl.Unit.Dim)
	}
	return invert(wl.SI(), Hertz)
}

// FrequencyToWavelength applies lambda = c / nu and expresses the result in u.
func FrequencyToWavelength(nu Quantity, u Unit) (Quantity, error) {
	if nu.Unit.Dim != Frequency {
		return Quantity{}, fmt.Errorf("%w: expected frequency, got %s", ErrIncompatible, nu.Unit.Dim)
	}
	wl, err := invert(nu.SI(), Meter)
	if err != nil {
		return Quantity{}, err
	}
	return wl.To(u)
}

func invert(si []float64, u Unit) (Quantity, error) {
	for i, v := range si {
		if v <= 0 {
			return Quantity{}, fmt.Errorf("%w: sample %d is %g", ErrNonPositive, i, v)
		}
		si[i] = SpeedOfLight / v
	}
	return Quantity{Values: si, Unit: u}, nil
}

// FluxNuToLambda converts per-frequency flux density to per-wavelength using
// F_lambda = F_nu * c / lambda^2, evaluated at each sample's own wavelength.
func FluxNuToLambda(fnu, wl Quantity) (Quantity, error) {
	if fnu.Unit.Dim != FluxDensityNu {
		return Quantity{}, fmt.Errorf("%w: expected %s, got %s", ErrIncompatible, FluxDensityNu, fnu.Unit.Dim)
	}
	lam, err := lengthSI(wl, fnu.Len())
	if err != nil {
		return Quantity{}, err
	}
	out := fnu.SI()
	for i := range out {
		out[i] *= SpeedOfLight / (lam[i] * lam[i])
	}
	return Quantity{Values: out, Unit: WattPerM2M}, nil
}

// FluxLambdaToNu is the inverse of FluxNuToLambda.
func FluxLambdaToNu(flam, wl Quantity) (Quantity, error) {
	if flam.Unit.Dim != FluxDensityLambda {
		return Quantity{}, fmt.Errorf("%w: expected %s, got %s", ErrIncompatible, FluxDensityLambda, flam.Unit.Dim)
	}
	lam, err := lengthSI(wl, flam.Len())
	if err != nil {
		return Quantity{}, err
	}
	out := flam.SI()
	for i := range out {
		out[i] *= lam[i] * lam[i] / SpeedOfLight
	}
	return Quantity{Values: out, Unit: WattPerM2Hz}, nil
}

func lengthSI(wl Quantity, n int) ([]float64, error) {
	if wl.Unit.Dim != Length {
		return nil, fmt.Errorf("%w: expected length, got %s", ErrIncompatible, wl.Unit.Dim)
	}
	if wl.Len() != n {
		return nil, fmt.Errorf("%w: %d wavelengths for %d flux samples", ErrLengthMismatch, wl.Len(), n)
	}
	lam := wl.SI()
	for i, v := range lam {
		if v <= 0 {
			return nil, fmt.Errorf("%w: sample %d is %g", ErrNonPositive, i, v)
		}
	}
	return lam, nil
}
