package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/RMahshie/dwarfmag/internal/config"
	"github.com/RMahshie/dwarfmag/internal/loader"
	"github.com/RMahshie/dwarfmag/internal/photometry"
	"github.com/RMahshie/dwarfmag/internal/processing"
	"github.com/RMahshie/dwarfmag/internal/repository"
	"github.com/RMahshie/dwarfmag/internal/repository/catalog"
	"github.com/RMahshie/dwarfmag/internal/storage"
	"github.com/RMahshie/dwarfmag/pkg/units"
)

// app is the wired set of services a command runs against
type app struct {
	cfg     *config.Config
	store   storage.Store
	s3      *storage.S3Store
	filters repository.FilterRepository
	service processing.GridService
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Only build an S3 client when a bucket backend is configured
	var s3Store *storage.S3Store
	var bucket storage.Store
	if cfg.AWS.S3Endpoint != "" || cfg.AWS.AccessKeyID != "" {
		s3Store, err = storage.NewS3Store(storage.S3Config{
			Endpoint:  cfg.AWS.S3Endpoint,
			Region:    cfg.AWS.Region,
			AccessKey: cfg.AWS.AccessKeyID,
			SecretKey: cfg.AWS.SecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		bucket = s3Store
		log.Debug().Str("endpoint", cfg.AWS.S3Endpoint).Msg("S3 store enabled")
	}
	store := storage.NewRouter(storage.NewLocalStore(), bucket)

	filters, err := catalog.NewFilterCatalog(store, cfg.Filters.Dir, cfg.Filters.Pattern, cfg.Filters.NarrowBandPrefix)
	if err != nil {
		return nil, err
	}
	grid, err := catalog.NewModelGrid(cfg.Models.Pattern, cfg.Models.Temperatures)
	if err != nil {
		return nil, err
	}

	waveUnit, err := units.ParseLength(cfg.Filters.WaveUnit)
	if err != nil {
		return nil, err
	}
	l := loader.NewLoader(store, loader.SpectrumColumns{
		Wavelength: cfg.Models.WaveColumn,
		Flux:       cfg.Models.FluxColumn,
	}, waveUnit)

	service := processing.NewGridService(l, filters, grid, cfg.Photometry.Workers,
		photometry.WithCoveragePolicy(photometry.CoveragePolicy(cfg.Photometry.CoveragePolicy)),
		photometry.WithResponseThreshold(cfg.Photometry.ResponseThreshold),
	)

	return &app{
		cfg:     cfg,
		store:   store,
		s3:      s3Store,
		filters: filters,
		service: service,
	}, nil
}

// write stores data at path and returns a shareable location
func (a *app) write(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	if !storage.IsS3(path) || a.s3 == nil {
		return path, a.store.Put(ctx, path, data, contentType)
	}

	bucket, _, err := storage.SplitPath(path)
	if err != nil {
		return "", err
	}
	if err := a.s3.EnsureBucket(ctx, bucket); err != nil {
		return "", err
	}
	if err := a.store.Put(ctx, path, data, contentType); err != nil {
		return "", err
	}
	return a.s3.DownloadURL(ctx, path)
}
