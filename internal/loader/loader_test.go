package loader

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RMahshie/dwarfmag/internal/storage"
	"github.com/RMahshie/dwarfmag/pkg/models"
	"github.com/RMahshie/dwarfmag/pkg/units"
)

const spectrumTable = `# wavelength flux
1.0   2.0
# interior comment
2.0   4.0

4.0   1.0
`

func TestParseSpectrumFrequencyAxis(t *testing.T) {
	spec, err := ParseSpectrum(strings.NewReader(spectrumTable), DefaultSpectrumColumns, models.AxisFrequency)
	require.NoError(t, err)

	assert.Equal(t, 3, spec.Len())
	assert.Equal(t, models.AxisFrequency, spec.Axis())
	assert.Equal(t, units.Hertz, spec.X.Unit)
	assert.Equal(t, units.WattPerM2Hz, spec.Flux.Unit)

	// file order is kept, so frequency descends here
	assert.InEpsilon(t, units.SpeedOfLight/1e-6, spec.X.Values[0], 1e-12)
	assert.InEpsilon(t, units.SpeedOfLight/4e-6, spec.X.Values[2], 1e-12)
	assert.InDeltaSlice(t, []float64{2e-29, 4e-29, 1e-29}, spec.Flux.Values, 1e-40)
}

func TestParseSpectrumWavelengthAxis(t *testing.T) {
	spec, err := ParseSpectrum(strings.NewReader(spectrumTable), DefaultSpectrumColumns, models.AxisWavelength)
	require.NoError(t, err)

	assert.Equal(t, models.AxisWavelength, spec.Axis())
	assert.Equal(t, units.Meter, spec.X.Unit)
	assert.Equal(t, units.WattPerM2M, spec.Flux.Unit)
	assert.InDeltaSlice(t, []float64{1e-6, 2e-6, 4e-6}, spec.X.Values, 1e-18)

	// each sample uses its own wavelength
	for i, fnu := range []float64{2e-29, 4e-29, 1e-29} {
		lam := spec.X.Values[i]
		assert.InEpsilon(t, fnu*units.SpeedOfLight/(lam*lam), spec.Flux.Values[i], 1e-12)
	}
}

func TestParseSpectrumCustomColumns(t *testing.T) {
	table := "lambda temp flam\n1.0 900 3.0\n2.0 900 5.0\n"
	spec, err := ParseSpectrum(strings.NewReader(table), SpectrumColumns{Wavelength: "lambda", Flux: "flam"}, models.AxisFrequency)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{3e-29, 5e-29}, spec.Flux.Values, 1e-40)
}

func TestParseSpectrumErrors(t *testing.T) {
	tests := []struct {
		name  string
		table string
	}{
		{"empty", ""},
		{"header only", "wavelength flux\n"},
		{"missing column", "wavelength f_nu\n1 2\n"},
		{"short row", "wavelength flux\n1 2\n3\n"},
		{"not a number", "wavelength flux\n1 abc\n"},
		{"zero wavelength", "wavelength flux\n0 1\n1 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSpectrum(strings.NewReader(tt.table), DefaultSpectrumColumns, models.AxisFrequency)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrParse)

			var pe *ParseError
			assert.ErrorAs(t, err, &pe)
		})
	}
}

func TestParseFilter(t *testing.T) {
	table := "10000 0.0\n12000 0.8\n14000 0.0\n"

	band, err := ParseFilter(strings.NewReader(table), units.Angstrom, models.AxisFrequency)
	require.NoError(t, err)
	assert.Equal(t, models.AxisFrequency, band.Axis())
	assert.Equal(t, []float64{0, 0.8, 0}, band.Response)
	assert.InEpsilon(t, units.SpeedOfLight/1.2e-6, band.X.Values[1], 1e-12)

	band, err = ParseFilter(strings.NewReader(table), units.Angstrom, models.AxisWavelength)
	require.NoError(t, err)
	assert.Equal(t, units.Angstrom, band.X.Unit)
	assert.Equal(t, []float64{10000, 12000, 14000}, band.X.Values)
}

func TestParseFilterErrors(t *testing.T) {
	for name, table := range map[string]string{
		"one column":        "10000\n12000\n",
		"negative response": "10000 0.1\n12000 -0.2\n",
		"garbage":           "10000 x\n",
		"empty":             "# only a comment\n",
	} {
		_, err := ParseFilter(strings.NewReader(table), units.Angstrom, models.AxisFrequency)
		assert.ErrorIs(t, err, ErrParse, name)
	}

	_, err := ParseFilter(strings.NewReader("1 1\n"), units.Hertz, models.AxisFrequency)
	assert.Error(t, err)
}

func TestLoaderReadsThroughStore(t *testing.T) {
	dir := t.TempDir()
	specPath := filepath.Join(dir, "sp_t900.txt")
	filtPath := filepath.Join(dir, "2MASS_J.dat")
	require.NoError(t, os.WriteFile(specPath, []byte(spectrumTable), 0644))
	require.NoError(t, os.WriteFile(filtPath, []byte("1.1 0.5\n1.3 0.5\n"), 0644))

	l := NewLoader(storage.NewLocalStore(), DefaultSpectrumColumns, units.Micron)
	ctx := context.Background()

	spec, err := l.Spectrum(ctx, specPath, models.AxisFrequency)
	require.NoError(t, err)
	assert.Equal(t, specPath, spec.Source)

	band, err := l.Filter(ctx, "J", filtPath, models.AxisFrequency)
	require.NoError(t, err)
	assert.Equal(t, "J", band.ID)
	assert.Equal(t, filtPath, band.Source)

	_, err = l.Spectrum(ctx, filepath.Join(dir, "missing.txt"), models.AxisFrequency)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	bad := filepath.Join(dir, "bad.txt")
	require.NoError(t, os.WriteFile(bad, []byte("wavelength flux\n1 nope\n"), 0644))
	_, err = l.Spectrum(ctx, bad, models.AxisFrequency)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, bad, pe.Source)
	assert.Equal(t, 2, pe.Line)
}
