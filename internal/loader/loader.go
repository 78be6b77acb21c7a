// Package loader parses model spectra and filter response curves from
// whitespace-separated ASCII tables and attaches physical units.
package loader

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/rs/zerolog/log"

	"github.com/RMahshie/dwarfmag/internal/storage"
	"github.com/RMahshie/dwarfmag/pkg/models"
	"github.com/RMahshie/dwarfmag/pkg/units"
)

// SpectrumColumns names the header columns of a model spectrum file
type SpectrumColumns struct {
	Wavelength string // microns
	Flux       string // milli-jansky
}

// DefaultSpectrumColumns matches the model grid headers
var DefaultSpectrumColumns = SpectrumColumns{Wavelength: "wavelength", Flux: "flux"}

// ParseSpectrum reads a model spectrum. The wavelength column is in microns
// and the flux column in mJy. With AxisFrequency the result is (Hz,
// W m-2 Hz-1); with AxisWavelength it is (m, W m-2 m-1), converted sample by
// sample. Row order is preserved.
func ParseSpectrum(r io.Reader, cols SpectrumColumns, axis models.Axis) (models.Spectrum, error) {
	names, rows, err := scanTable(r, true)
	if err != nil {
		return models.Spectrum{}, err
	}

	wIdx := slices.Index(names, cols.Wavelength)
	fIdx := slices.Index(names, cols.Flux)
	if wIdx < 0 || fIdx < 0 {
		return models.Spectrum{}, &ParseError{Line: 1, Msg: fmt.Sprintf("header %v lacks columns %q and %q", names, cols.Wavelength, cols.Flux)}
	}

	wave, err := column(rows, wIdx, cols.Wavelength)
	if err != nil {
		return models.Spectrum{}, err
	}
	flux, err := column(rows, fIdx, cols.Flux)
	if err != nil {
		return models.Spectrum{}, err
	}

	wl, err := units.New(wave, units.Micron).To(units.Meter)
	if err != nil {
		return models.Spectrum{}, err
	}
	fnu, err := units.New(flux, units.MilliJansky).To(units.WattPerM2Hz)
	if err != nil {
		return models.Spectrum{}, err
	}

	if axis == models.AxisWavelength {
		flam, err := units.FluxNuToLambda(fnu, wl)
		if err != nil {
			return models.Spectrum{}, &ParseError{Msg: "invalid wavelength", Err: err}
		}
		return models.Spectrum{X: wl, Flux: flam}, nil
	}

	nu, err := units.WavelengthToFrequency(wl)
	if err != nil {
		return models.Spectrum{}, &ParseError{Msg: "invalid wavelength", Err: err}
	}
	return models.Spectrum{X: nu, Flux: fnu}, nil
}

// ParseFilter reads a two-column (wavelength, response) filter curve. The
// wavelength column is in waveUnit. Responses are returned unnormalized.
func ParseFilter(r io.Reader, waveUnit units.Unit, axis models.Axis) (models.Passband, error) {
	if waveUnit.Dim != units.Length {
		return models.Passband{}, fmt.Errorf("filter wavelength unit %q is not a length", waveUnit)
	}

	_, rows, err := scanTable(r, false)
	if err != nil {
		return models.Passband{}, err
	}

	wave, err := column(rows, 0, "wavelength")
	if err != nil {
		return models.Passband{}, err
	}
	resp, err := column(rows, 1, "response")
	if err != nil {
		return models.Passband{}, err
	}
	for i, v := range resp {
		if v < 0 {
			return models.Passband{}, &ParseError{Line: rows[i].line, Msg: fmt.Sprintf("negative response %g", v)}
		}
	}

	wl := units.New(wave, waveUnit)
	if axis == models.AxisWavelength {
		return models.Passband{X: wl, Response: resp}, nil
	}

	nu, err := units.WavelengthToFrequency(wl)
	if err != nil {
		return models.Passband{}, &ParseError{Msg: "invalid wavelength", Err: err}
	}
	return models.Passband{X: nu, Response: resp}, nil
}

// Loader reads tables through a storage backend
type Loader struct {
	store    storage.Store
	columns  SpectrumColumns
	waveUnit units.Unit
}

// NewLoader creates a loader for the given spectrum columns and filter wavelength unit
func NewLoader(store storage.Store, columns SpectrumColumns, filterWaveUnit units.Unit) *Loader {
	return &Loader{store: store, columns: columns, waveUnit: filterWaveUnit}
}

// Spectrum loads the model spectrum at path
func (l *Loader) Spectrum(ctx context.Context, path string, axis models.Axis) (models.Spectrum, error) {
	rc, err := l.store.Open(ctx, path)
	if err != nil {
		return models.Spectrum{}, err
	}
	defer rc.Close()

	spec, err := ParseSpectrum(rc, l.columns, axis)
	if err != nil {
		return models.Spectrum{}, withSource(err, path)
	}
	spec.Source = path

	log.Debug().Str("path", path).Int("samples", spec.Len()).Str("axis", axis.String()).Msg("Loaded spectrum")
	return spec, nil
}

// Filter loads the filter curve at path and tags it with id
func (l *Loader) Filter(ctx context.Context, id, path string, axis models.Axis) (models.Passband, error) {
	rc, err := l.store.Open(ctx, path)
	if err != nil {
		return models.Passband{}, err
	}
	defer rc.Close()

	band, err := ParseFilter(rc, l.waveUnit, axis)
	if err != nil {
		return models.Passband{}, withSource(err, path)
	}
	band.ID = id
	band.Source = path

	log.Debug().Str("filter", id).Str("path", path).Int("points", band.Len()).Msg("Loaded filter")
	return band, nil
}
