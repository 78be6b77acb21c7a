// Package photometry synthesizes AB magnitudes from model spectra and filter
// response curves.
//
// The filter response is resampled onto the model's frequency grid with
// piecewise-linear interpolation (edge values are held outside the tabulated
// range), both integrands are ordered by ascending frequency, and the two
// integrals
//
//	num = ∫ F_nu(nu) R(nu) dnu
//	den = 3631 Jy · ∫ R(nu) dnu
//
// are evaluated with composite Simpson quadrature. The magnitude is
// -2.5 log10(num / den).
package photometry

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	vecmath "github.com/cwbudde/algo-vecmath"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/interp"

	"github.com/RMahshie/dwarfmag/pkg/models"
	"github.com/RMahshie/dwarfmag/pkg/units"
)

var (
	// ErrNoOverlap is matched by *RangeError.
	ErrNoOverlap = errors.New("model does not cover filter response")

	// ErrNonMonotonic is returned when a grid has repeated abscissas.
	ErrNonMonotonic = errors.New("grid is not strictly increasing")

	// ErrTooFewSamples is returned when a grid is too short to integrate.
	ErrTooFewSamples = errors.New("too few samples")

	// ErrNonPositiveFlux is returned when either integral is not positive and
	// the logarithm is undefined.
	ErrNonPositiveFlux = errors.New("non-positive band flux")

	// ErrInvalidThreshold is returned for a response threshold outside (0, 1].
	ErrInvalidThreshold = errors.New("response threshold must be in (0, 1]")
)

// RangeError reports a filter whose significant response extends beyond the
// model's frequency coverage.
type RangeError struct {
	FilterID string
	Coverage float64 // fraction of the response integral inside the model grid
	ModelMin float64 // Hz
	ModelMax float64 // Hz
	BandMin  float64 // Hz, lowest frequency above the response threshold
	BandMax  float64 // Hz, highest frequency above the response threshold
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("filter %s: model covers %.1f%% of the response (model %.4g-%.4g Hz, filter %.4g-%.4g Hz)",
		e.FilterID, 100*e.Coverage, e.ModelMin, e.ModelMax, e.BandMin, e.BandMax)
}

func (e *RangeError) Is(target error) bool { return target == ErrNoOverlap }

// CoveragePolicy decides what happens when the model grid only partly covers
// a filter.
type CoveragePolicy string

const (
	CoverageIgnore CoveragePolicy = "ignore"
	CoverageWarn   CoveragePolicy = "warn"
	CoverageError  CoveragePolicy = "error"
)

// DefaultResponseThreshold is the fraction of peak response below which a
// filter is considered transparent for coverage checks.
const DefaultResponseThreshold = 1e-3

type options struct {
	policy    CoveragePolicy
	threshold float64
}

// Option configures Magnitude
type Option func(*options)

// WithCoveragePolicy sets the handling of partial coverage (default warn)
func WithCoveragePolicy(p CoveragePolicy) Option {
	return func(o *options) { o.policy = p }
}

// WithResponseThreshold sets the relative response level that counts as
// significant for coverage checks.
func WithResponseThreshold(t float64) Option {
	return func(o *options) { o.threshold = t }
}

// Result is a synthetic magnitude and the integrals it came from
type Result struct {
	Magnitude   float64
	Coverage    float64
	Numerator   float64 // W m-2
	Denominator float64 // W m-2
}

// Magnitude computes the AB magnitude of spec seen through band. Inputs may
// be on either axis and in any order; neither is modified.
func Magnitude(spec models.Spectrum, band models.Passband, opts ...Option) (Result, error) {
	o := options{policy: CoverageWarn, threshold: DefaultResponseThreshold}
	for _, opt := range opts {
		opt(&o)
	}
	if !(o.threshold > 0 && o.threshold <= 1) {
		return Result{}, fmt.Errorf("%w: got %g", ErrInvalidThreshold, o.threshold)
	}

	nu, fnu, err := spectrumOnFrequency(spec)
	if err != nil {
		return Result{}, fmt.Errorf("spectrum %s: %w", spec.Source, err)
	}
	nu, fnu = sortedPairs(nu, fnu)
	if err := checkGrid(nu, 3); err != nil {
		return Result{}, fmt.Errorf("spectrum %s: %w", spec.Source, err)
	}

	if band.X.Len() != len(band.Response) {
		return Result{}, fmt.Errorf("filter %s: %w: %d axis samples for %d responses", band.ID, units.ErrLengthMismatch, band.X.Len(), len(band.Response))
	}
	bandNu, err := axisFrequency(band.X)
	if err != nil {
		return Result{}, fmt.Errorf("filter %s: %w", band.ID, err)
	}
	bandNu, resp := sortedPairs(bandNu, band.Response)
	if err := checkGrid(bandNu, 2); err != nil {
		return Result{}, fmt.Errorf("filter %s: %w", band.ID, err)
	}

	lo, hi := nu[0], nu[len(nu)-1]
	coverage, bandMin, bandMax := Coverage(bandNu, resp, lo, hi, o.threshold)
	if coverage < 1 {
		switch o.policy {
		case CoverageError:
			return Result{}, &RangeError{FilterID: band.ID, Coverage: coverage, ModelMin: lo, ModelMax: hi, BandMin: bandMin, BandMax: bandMax}
		case CoverageWarn:
			log.Warn().
				Str("filter", band.ID).
				Str("model", spec.Source).
				Float64("coverage", coverage).
				Msg("Model grid does not fully cover filter response")
		}
	}

	r := resampleSorted(bandNu, resp, nu)

	prod := make([]float64, len(nu))
	vecmath.MulBlock(prod, fnu, r)

	zero, err := units.ABZeroPoint.To(units.WattPerM2Hz)
	if err != nil {
		return Result{}, err
	}

	num := integrate.Simpsons(nu, prod)
	den := zero.Value() * integrate.Simpsons(nu, r)
	if !(num > 0) || !(den > 0) {
		return Result{}, fmt.Errorf("%w: filter %s, spectrum %s (num=%g, den=%g)", ErrNonPositiveFlux, band.ID, spec.Source, num, den)
	}

	return Result{
		Magnitude:   -2.5 * math.Log10(num/den),
		Coverage:    coverage,
		Numerator:   num,
		Denominator: den,
	}, nil
}

// Resample evaluates the piecewise-linear curve through (xs, ys) at each
// point of at. Outside [min(xs), max(xs)] the nearest tabulated value is
// returned. xs need not be sorted but must not repeat.
func Resample(xs, ys, at []float64) ([]float64, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%w: %d abscissas for %d values", units.ErrLengthMismatch, len(xs), len(ys))
	}
	xs, ys = sortedPairs(xs, ys)
	if err := checkGrid(xs, 2); err != nil {
		return nil, err
	}
	return resampleSorted(xs, ys, at), nil
}

func resampleSorted(xs, ys, at []float64) []float64 {
	var pl interp.PiecewiseLinear
	// xs is validated strictly increasing with at least two points
	_ = pl.Fit(xs, ys)

	out := make([]float64, len(at))
	for i, x := range at {
		out[i] = pl.Predict(x)
	}
	return out
}

// Coverage returns the fraction of the response integral of the curve
// (xs, ys) that lies within [lo, hi], restricted to the span where ys is at
// least threshold times its peak. It also returns that span. xs must be sorted.
func Coverage(xs, ys []float64, lo, hi, threshold float64) (fraction, spanMin, spanMax float64) {
	peak := slices.Max(ys)
	if peak <= 0 {
		return 0, xs[0], xs[len(xs)-1]
	}
	cut := threshold * peak

	first, last := -1, -1
	for i, y := range ys {
		if y >= cut {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return 0, xs[0], xs[len(xs)-1]
	}
	spanMin, spanMax = xs[first], xs[last]

	total := integrateLinear(xs, ys, spanMin, spanMax)
	if total <= 0 {
		// a single significant point: covered or not
		if spanMin >= lo && spanMax <= hi {
			return 1, spanMin, spanMax
		}
		return 0, spanMin, spanMax
	}

	a, b := max(spanMin, lo), min(spanMax, hi)
	if a >= b {
		return 0, spanMin, spanMax
	}
	fraction = integrateLinear(xs, ys, a, b) / total
	return min(fraction, 1), spanMin, spanMax
}

// integrateLinear integrates the piecewise-linear curve through sorted
// (xs, ys) over [a, b] exactly.
func integrateLinear(xs, ys []float64, a, b float64) float64 {
	var sum float64
	for i := 0; i+1 < len(xs); i++ {
		x0, x1 := xs[i], xs[i+1]
		l, r := max(x0, a), min(x1, b)
		if l >= r {
			continue
		}
		slope := (ys[i+1] - ys[i]) / (x1 - x0)
		yl := ys[i] + slope*(l-x0)
		yr := ys[i] + slope*(r-x0)
		sum += 0.5 * (yl + yr) * (r - l)
	}
	return sum
}

// ABMagnitude returns the AB magnitude of a constant flux density
func ABMagnitude(fnu units.Quantity) (float64, error) {
	f, err := fnu.To(units.Jansky)
	if err != nil {
		return 0, err
	}
	zero, err := units.ABZeroPoint.To(units.Jansky)
	if err != nil {
		return 0, err
	}
	return -2.5 * math.Log10(f.Value()/zero.Value()), nil
}

// DetectionDistance returns the distance in parsecs at which a source with
// absolute magnitude absMag reaches the survey limit limMag.
func DetectionDistance(absMag, limMag float64) float64 {
	return math.Pow(10, (limMag-absMag)/5+1)
}

// spectrumOnFrequency returns fresh (Hz, W m-2 Hz-1) slices for spec.
func spectrumOnFrequency(spec models.Spectrum) (nu, fnu []float64, err error) {
	if spec.X.Len() != spec.Flux.Len() {
		return nil, nil, fmt.Errorf("%w: %d axis samples for %d flux samples", units.ErrLengthMismatch, spec.X.Len(), spec.Flux.Len())
	}

	nu, err = axisFrequency(spec.X)
	if err != nil {
		return nil, nil, err
	}

	switch spec.Flux.Unit.Dim {
	case units.FluxDensityNu:
		return nu, spec.Flux.SI(), nil
	case units.FluxDensityLambda:
		wl, err := units.FrequencyToWavelength(units.New(nu, units.Hertz), units.Meter)
		if err != nil {
			return nil, nil, err
		}
		q, err := units.FluxLambdaToNu(spec.Flux, wl)
		if err != nil {
			return nil, nil, err
		}
		return nu, q.Values, nil
	}
	return nil, nil, fmt.Errorf("%w: flux in %s", units.ErrIncompatible, spec.Flux.Unit.Dim)
}

// axisFrequency returns a fresh slice of frequencies in Hz
func axisFrequency(x units.Quantity) ([]float64, error) {
	switch x.Unit.Dim {
	case units.Length:
		q, err := units.WavelengthToFrequency(x)
		if err != nil {
			return nil, err
		}
		return q.Values, nil
	case units.Frequency:
		return x.SI(), nil
	}
	return nil, fmt.Errorf("%w: axis in %s", units.ErrIncompatible, x.Unit.Dim)
}

// sortedPairs returns copies of x and y reordered by ascending x
func sortedPairs(x, y []float64) ([]float64, []float64) {
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int { return cmp.Compare(x[a], x[b]) })

	xs := make([]float64, len(x))
	ys := make([]float64, len(y))
	for i, j := range idx {
		xs[i] = x[j]
		ys[i] = y[j]
	}
	return xs, ys
}

// checkGrid enforces the quadrature and interpolation preconditions on a sorted grid
func checkGrid(xs []float64, minLen int) error {
	if len(xs) < minLen {
		return fmt.Errorf("%w: %d, need %d", ErrTooFewSamples, len(xs), minLen)
	}
	for i := 1; i < len(xs); i++ {
		if !(xs[i] > xs[i-1]) {
			return fmt.Errorf("%w: %g repeats at index %d", ErrNonMonotonic, xs[i], i)
		}
	}
	return nil
}
