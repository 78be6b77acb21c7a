package processing

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/RMahshie/dwarfmag/internal/loader"
	"github.com/RMahshie/dwarfmag/internal/photometry"
	"github.com/RMahshie/dwarfmag/internal/repository"
	"github.com/RMahshie/dwarfmag/pkg/models"
)

type GridService interface {
	Magnitude(ctx context.Context, filterID string, teff int) (models.Magnitude, error)
	ModelMagnitude(ctx context.Context, filterID, modelPath string) (models.Magnitude, error)
	RunGrid(ctx context.Context) (models.MagnitudeTable, error)
	DetectionLimits(table models.MagnitudeTable, depths map[string]float64) []models.DetectionLimit
}

type gridService struct {
	loader  *loader.Loader
	filters repository.FilterRepository
	grid    repository.ModelRepository
	workers int
	opts    []photometry.Option
}

// NewGridService creates the driver. workers bounds concurrent integrations;
// values below 1 run sequentially.
func NewGridService(l *loader.Loader, filters repository.FilterRepository, grid repository.ModelRepository, workers int, opts ...photometry.Option) GridService {
	if workers < 1 {
		workers = 1
	}
	return &gridService{
		loader:  l,
		filters: filters,
		grid:    grid,
		workers: workers,
		opts:    opts,
	}
}

func (s *gridService) Magnitude(ctx context.Context, filterID string, teff int) (models.Magnitude, error) {
	m, err := s.ModelMagnitude(ctx, filterID, s.grid.ModelPath(teff))
	m.Teff = teff
	return m, err
}

func (s *gridService) ModelMagnitude(ctx context.Context, filterID, modelPath string) (models.Magnitude, error) {
	ref, err := s.filters.GetFilter(ctx, filterID)
	if err != nil {
		return models.Magnitude{}, err
	}
	band, err := s.loader.Filter(ctx, ref.ID, ref.Path, models.AxisFrequency)
	if err != nil {
		return models.Magnitude{}, err
	}
	spec, err := s.loader.Spectrum(ctx, modelPath, models.AxisFrequency)
	if err != nil {
		return models.Magnitude{}, err
	}

	res, err := photometry.Magnitude(spec, band, s.opts...)
	if err != nil {
		return models.Magnitude{}, err
	}
	return models.Magnitude{FilterID: ref.ID, Value: res.Magnitude, Coverage: res.Coverage}, nil
}

func (s *gridService) RunGrid(ctx context.Context) (models.MagnitudeTable, error) {
	runID := uuid.New()
	temps := s.grid.Temperatures()

	refs, err := s.filters.ListFilters(ctx)
	if err != nil {
		return models.MagnitudeTable{}, fmt.Errorf("failed to list filters: %w", err)
	}
	if len(refs) == 0 {
		return models.MagnitudeTable{}, fmt.Errorf("no filters found")
	}

	log.Info().
		Str("run_id", runID.String()).
		Int("filters", len(refs)).
		Int("temperatures", len(temps)).
		Int("workers", s.workers).
		Msg("Starting magnitude grid")

	bands := make([]models.Passband, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, ref := range refs {
		g.Go(func() error {
			band, err := s.loader.Filter(gctx, ref.ID, ref.Path, models.AxisFrequency)
			if err != nil {
				return err
			}
			bands[i] = band
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.MagnitudeTable{}, err
	}

	// One slot per (temperature, filter) pair, filled by exactly one task.
	results := make([]models.Magnitude, len(temps)*len(bands))
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for ti, teff := range temps {
		g.Go(func() error {
			spec, err := s.loader.Spectrum(gctx, s.grid.ModelPath(teff), models.AxisFrequency)
			if err != nil {
				return err
			}
			for fi, band := range bands {
				if err := gctx.Err(); err != nil {
					return err
				}
				res, err := photometry.Magnitude(spec, band, s.opts...)
				if err != nil {
					return fmt.Errorf("teff %d: %w", teff, err)
				}
				results[ti*len(bands)+fi] = models.Magnitude{
					FilterID: band.ID,
					Teff:     teff,
					Value:    res.Magnitude,
					Coverage: res.Coverage,
				}
			}
			log.Debug().Str("run_id", runID.String()).Int("teff", teff).Msg("Temperature complete")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Str("run_id", runID.String()).Msg("Magnitude grid failed")
		return models.MagnitudeTable{}, err
	}

	table := models.NewMagnitudeTable(runID, temps, results)
	log.Info().Str("run_id", runID.String()).Int("magnitudes", len(results)).Msg("Magnitude grid complete")
	return table, nil
}

func (s *gridService) DetectionLimits(table models.MagnitudeTable, depths map[string]float64) []models.DetectionLimit {
	ids := make([]string, 0, len(depths))
	for id := range depths {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var limits []models.DetectionLimit
	for _, id := range ids {
		if _, ok := table.Series(id); !ok {
			log.Warn().Str("filter", id).Msg("Survey depth given for filter not in table")
			continue
		}
		limMag := depths[id]
		for _, teff := range table.Temperatures() {
			abs, ok := table.Lookup(id, teff)
			if !ok {
				continue
			}
			limits = append(limits, models.DetectionLimit{
				FilterID:     id,
				Teff:         teff,
				AbsMagnitude: abs,
				LimitingMag:  limMag,
				DistancePc:   photometry.DetectionDistance(abs, limMag),
			})
		}
	}
	return limits
}
