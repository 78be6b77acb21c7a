package units

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantityTo(t *testing.T) {
	q := New([]float64{1, 2.5}, Micron)

	got, err := q.To(Angstrom)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1e4, 2.5e4}, got.Values, 1e-8)
	assert.Equal(t, Angstrom, got.Unit)

	// source slice untouched
	assert.Equal(t, []float64{1, 2.5}, q.Values)

	_, err = q.To(Hertz)
	assert.ErrorIs(t, err, ErrIncompatible)
}

func TestMilliJanskyToSI(t *testing.T) {
	q := Scalar(1, MilliJansky)
	assert.InDelta(t, 1e-29, q.SI()[0], 1e-40)

	ab, err := ABZeroPoint.To(WattPerM2Hz)
	require.NoError(t, err)
	assert.InDelta(t, 3.631e-23, ab.Value(), 1e-33)
}

func TestWavelengthFrequencyRoundTrip(t *testing.T) {
	wl := New([]float64{0.6, 1.25, 2.2, 4.5, 12.0, 30.0}, Micron)

	nu, err := WavelengthToFrequency(wl)
	require.NoError(t, err)
	assert.Equal(t, Hertz, nu.Unit)
	assert.InDelta(t, SpeedOfLight/1.25e-6, nu.Values[1], 1)

	back, err := FrequencyToWavelength(nu, Micron)
	require.NoError(t, err)
	for i := range wl.Values {
		assert.InEpsilon(t, wl.Values[i], back.Values[i], 1e-12)
	}
}

func TestWavelengthToFrequencyRejectsNonPositive(t *testing.T) {
	_, err := WavelengthToFrequency(New([]float64{1, 0}, Micron))
	assert.ErrorIs(t, err, ErrNonPositive)

	_, err = WavelengthToFrequency(New([]float64{1}, Hertz))
	assert.ErrorIs(t, err, ErrIncompatible)
}

func TestFluxDensityJacobian(t *testing.T) {
	wl := New([]float64{1, 2, 4}, Micron)
	fnu := New([]float64{1, 1, 1}, MilliJansky)

	flam, err := FluxNuToLambda(fnu, wl)
	require.NoError(t, err)
	assert.Equal(t, WattPerM2M, flam.Unit)

	// F_lambda falls as lambda^-2 for a flat F_nu
	assert.InEpsilon(t, 4.0, flam.Values[0]/flam.Values[1], 1e-12)
	assert.InEpsilon(t, 16.0, flam.Values[0]/flam.Values[2], 1e-12)
	assert.InEpsilon(t, 1e-29*SpeedOfLight/1e-12, flam.Values[0], 1e-12)

	back, err := FluxLambdaToNu(flam, wl)
	require.NoError(t, err)
	for _, v := range back.Values {
		assert.InEpsilon(t, 1e-29, v, 1e-12)
	}
}

func TestFluxConversionLengthMismatch(t *testing.T) {
	_, err := FluxNuToLambda(New([]float64{1, 2}, Jansky), New([]float64{1}, Micron))
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestParseLength(t *testing.T) {
	for name, want := range map[string]Unit{
		"angstrom": Angstrom,
		"AA":       Angstrom,
		"micron":   Micron,
		"um":       Micron,
		"nm":       Nanometer,
		" m ":      Meter,
	} {
		got, err := ParseLength(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseLength("furlong")
	assert.Error(t, err)
}

func TestQuantityValueEmpty(t *testing.T) {
	assert.Equal(t, 0.0, Quantity{}.Value())
	assert.False(t, math.IsNaN(Scalar(2, Hertz).Value()))
}
