package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RMahshie/dwarfmag/pkg/units"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Setenv("CONFIG_DIR", t.TempDir())
	t.Setenv("ENVIRONMENT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "filters", cfg.Filters.Dir)
	assert.Equal(t, "angstrom", cfg.Filters.WaveUnit)
	assert.Equal(t, "N", cfg.Filters.NarrowBandPrefix)
	assert.Equal(t, "warn", cfg.Photometry.CoveragePolicy)
	assert.Equal(t, 4, cfg.Photometry.Workers)
	assert.Len(t, cfg.Models.Temperatures, 20)
	assert.Equal(t, 500, cfg.Models.Temperatures[0])
	assert.Equal(t, 2400, cfg.Models.Temperatures[19])
	assert.Empty(t, cfg.Survey.Depths)
}

func TestLoadEnvFileAndOverrides(t *testing.T) {
	viper.Reset()
	dir := t.TempDir()
	envFile := "FILTER_DIR=s3://grids/filters\nWORKERS=2\nSURVEY_DEPTHS=J=24.0,H=23.5\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.test"), []byte(envFile), 0644))

	t.Setenv("CONFIG_DIR", dir)
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("WORKERS", "8")
	t.Setenv("TEFF_GRID", "900, 700")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Env)
	assert.Equal(t, "s3://grids/filters", cfg.Filters.Dir)
	assert.Equal(t, 8, cfg.Photometry.Workers)
	assert.Equal(t, []int{900, 700}, cfg.Models.Temperatures)
	assert.Equal(t, map[string]float64{"J": 24.0, "H": 23.5}, cfg.Survey.Depths)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string][2]string{
		"policy":    {"COVERAGE_POLICY", "panic"},
		"workers":   {"WORKERS", "0"},
		"pattern":   {"MODEL_PATTERN", "models/sp.txt"},
		"unit":      {"FILTER_WAVE_UNIT", "furlong"},
		"threshold": {"RESPONSE_THRESHOLD", "2"},
		"teff":      {"TEFF_GRID", "hot"},
		"depths":    {"SURVEY_DEPTHS", "J"},
	}
	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			viper.Reset()
			t.Setenv("CONFIG_DIR", t.TempDir())
			t.Setenv(kv[0], kv[1])

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadAcceptsLengthUnitAliases(t *testing.T) {
	for _, unit := range []string{"AA", "a", "angstroms", "microns", "um", "meter", "nanometer", "nm"} {
		t.Run(unit, func(t *testing.T) {
			viper.Reset()
			t.Setenv("CONFIG_DIR", t.TempDir())
			t.Setenv("FILTER_WAVE_UNIT", unit)

			cfg, err := Load()
			require.NoError(t, err)

			_, err = units.ParseLength(cfg.Filters.WaveUnit)
			assert.NoError(t, err)
		})
	}
}

func TestParseTemperatures(t *testing.T) {
	got, err := ParseTemperatures("500:900:200")
	require.NoError(t, err)
	assert.Equal(t, []int{500, 700, 900}, got)

	got, err = ParseTemperatures("1000")
	require.NoError(t, err)
	assert.Equal(t, []int{1000}, got)

	for _, bad := range []string{"", "500:900", "900:500:100", "500:900:0", "a,b"} {
		_, err := ParseTemperatures(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseDepths(t *testing.T) {
	got, err := ParseDepths(" Y = 23.1 , , W1=19.5")
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"Y": 23.1, "W1": 19.5}, got)

	_, err = ParseDepths("=20")
	assert.Error(t, err)

	_, err = ParseDepths("J=deep")
	assert.Error(t, err)
}
