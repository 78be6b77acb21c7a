package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/RMahshie/dwarfmag/pkg/units"
)

// Config holds all configuration for the application
type Config struct {
	Env        string
	Models     ModelConfig
	Filters    FilterConfig
	Photometry PhotometryConfig
	Survey     SurveyConfig
	Output     OutputConfig
	AWS        AWSConfig
}

// ModelConfig describes where model spectra live and how their columns are named
type ModelConfig struct {
	Pattern      string `validate:"required,contains={teff}"`
	Temperatures []int  `validate:"required,min=1,dive,gt=0"`
	WaveColumn   string `validate:"required"`
	FluxColumn   string `validate:"required"`
}

// FilterConfig describes filter discovery
type FilterConfig struct {
	Dir              string `validate:"required"`
	Pattern          string `validate:"required"`
	WaveUnit         string `validate:"length_unit"`
	NarrowBandPrefix string
}

// PhotometryConfig holds integrator and driver settings
type PhotometryConfig struct {
	CoveragePolicy    string  `validate:"oneof=ignore warn error"`
	ResponseThreshold float64 `validate:"gt=0,lt=1"`
	Workers           int     `validate:"min=1,max=256"`
}

// SurveyConfig holds limiting magnitudes keyed by filter identifier
type SurveyConfig struct {
	Depths map[string]float64
}

// OutputConfig holds where plots are written
type OutputConfig struct {
	Dir string `validate:"required"`
}

// AWSConfig holds AWS/S3 configuration
type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Endpoint      string
}

// Load loads configuration from environment variables and .env files
func Load() (*Config, error) {
	// Set defaults
	viper.SetDefault("ENVIRONMENT", "dev")
	viper.SetDefault("CONFIG_DIR", ".")
	viper.SetDefault("MODEL_PATTERN", "models/sp_t{teff}g1000nc_m0.0.txt")
	viper.SetDefault("TEFF_GRID", "500:2400:100")
	viper.SetDefault("SPECTRUM_WAVE_COLUMN", "wavelength")
	viper.SetDefault("SPECTRUM_FLUX_COLUMN", "flux")
	viper.SetDefault("FILTER_DIR", "filters")
	viper.SetDefault("FILTER_PATTERN", `^(?:.*[_-])?(?P<id>[A-Za-z0-9]+)\.(?:dat|txt)$`)
	viper.SetDefault("FILTER_WAVE_UNIT", "angstrom")
	viper.SetDefault("NARROW_BAND_PREFIX", "N")
	viper.SetDefault("COVERAGE_POLICY", "warn")
	viper.SetDefault("RESPONSE_THRESHOLD", 1e-3)
	viper.SetDefault("WORKERS", 4)
	viper.SetDefault("SURVEY_DEPTHS", "")
	viper.SetDefault("OUTPUT_DIR", "plots")
	viper.SetDefault("AWS_REGION", "us-east-1")
	viper.SetDefault("AWS_ACCESS_KEY_ID", "")
	viper.SetDefault("AWS_SECRET_ACCESS_KEY", "")
	viper.SetDefault("S3_ENDPOINT", "")

	// Environment variables override .env file values
	viper.AutomaticEnv()

	// Bind specific environment variable names
	for _, key := range []string{
		"ENVIRONMENT", "CONFIG_DIR", "MODEL_PATTERN", "TEFF_GRID",
		"SPECTRUM_WAVE_COLUMN", "SPECTRUM_FLUX_COLUMN",
		"FILTER_DIR", "FILTER_PATTERN", "FILTER_WAVE_UNIT", "NARROW_BAND_PREFIX",
		"COVERAGE_POLICY", "RESPONSE_THRESHOLD", "WORKERS", "SURVEY_DEPTHS", "OUTPUT_DIR",
		"AWS_REGION", "AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "S3_ENDPOINT",
	} {
		viper.BindEnv(key)
	}

	// Read from .env files based on environment
	env := viper.GetString("ENVIRONMENT")
	if env == "" {
		env = "dev" // Use "dev" to match .env.dev filename
	}

	viper.SetConfigName(".env." + env)
	viper.SetConfigType("env")
	viper.AddConfigPath(viper.GetString("CONFIG_DIR"))

	// Read .env file (ignore error if file doesn't exist)
	if err := viper.ReadInConfig(); err == nil {
		log.Debug().Str("file", viper.ConfigFileUsed()).Msg("Loaded env file")
	}

	temps, err := ParseTemperatures(viper.GetString("TEFF_GRID"))
	if err != nil {
		return nil, err
	}
	depths, err := ParseDepths(viper.GetString("SURVEY_DEPTHS"))
	if err != nil {
		return nil, err
	}

	var config Config
	config.Env = env
	config.Models.Pattern = viper.GetString("MODEL_PATTERN")
	config.Models.Temperatures = temps
	config.Models.WaveColumn = viper.GetString("SPECTRUM_WAVE_COLUMN")
	config.Models.FluxColumn = viper.GetString("SPECTRUM_FLUX_COLUMN")
	config.Filters.Dir = viper.GetString("FILTER_DIR")
	config.Filters.Pattern = viper.GetString("FILTER_PATTERN")
	config.Filters.WaveUnit = strings.ToLower(viper.GetString("FILTER_WAVE_UNIT"))
	config.Filters.NarrowBandPrefix = viper.GetString("NARROW_BAND_PREFIX")
	config.Photometry.CoveragePolicy = strings.ToLower(viper.GetString("COVERAGE_POLICY"))
	config.Photometry.ResponseThreshold = viper.GetFloat64("RESPONSE_THRESHOLD")
	config.Photometry.Workers = viper.GetInt("WORKERS")
	config.Survey.Depths = depths
	config.Output.Dir = viper.GetString("OUTPUT_DIR")
	config.AWS.Region = viper.GetString("AWS_REGION")
	config.AWS.AccessKeyID = viper.GetString("AWS_ACCESS_KEY_ID")
	config.AWS.SecretAccessKey = viper.GetString("AWS_SECRET_ACCESS_KEY")
	config.AWS.S3Endpoint = viper.GetString("S3_ENDPOINT")

	if err := config.Validate(); err != nil {
		return nil, err
	}

	log.Debug().
		Str("env", config.Env).
		Str("filter_dir", config.Filters.Dir).
		Str("model_pattern", config.Models.Pattern).
		Int("temperatures", len(config.Models.Temperatures)).
		Int("workers", config.Photometry.Workers).
		Msg("Configuration loaded")

	return &config, nil
}

var validate = newValidator()

// newValidator registers length_unit, which accepts whatever units.ParseLength does
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("length_unit", func(fl validator.FieldLevel) bool {
		_, err := units.ParseLength(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ParseTemperatures accepts either a comma list ("500,700,900") or an
// inclusive range "start:stop:step".
func ParseTemperatures(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty temperature grid")
	}

	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("temperature range %q must be start:stop:step", s)
		}
		var n [3]int
		for i, p := range parts {
			v, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				return nil, fmt.Errorf("temperature range %q: %w", s, err)
			}
			n[i] = v
		}
		start, stop, step := n[0], n[1], n[2]
		if step <= 0 || stop < start {
			return nil, fmt.Errorf("temperature range %q is empty", s)
		}
		var temps []int
		for t := start; t <= stop; t += step {
			temps = append(temps, t)
		}
		return temps, nil
	}

	var temps []int
	for _, p := range strings.Split(s, ",") {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("temperature grid %q: %w", s, err)
		}
		temps = append(temps, v)
	}
	return temps, nil
}

// ParseDepths reads "J=24.0,H=23.5" into a map of limiting magnitudes
func ParseDepths(s string) (map[string]float64, error) {
	depths := make(map[string]float64)
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, val, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("survey depth %q must be FILTER=MAG", p)
		}
		m, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil, fmt.Errorf("survey depth %q: %w", p, err)
		}
		depths[strings.TrimSpace(id)] = m
	}
	return depths, nil
}
