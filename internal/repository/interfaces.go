package repository

import (
	"context"

	"github.com/RMahshie/dwarfmag/pkg/models"
)

// FilterRepository defines the interface for discovering filter response curves
type FilterRepository interface {
	ListFilters(ctx context.Context) ([]models.FilterRef, error)
	GetFilter(ctx context.Context, id string) (models.FilterRef, error)
}

// ModelRepository defines the interface for locating model spectra on the temperature grid
type ModelRepository interface {
	Temperatures() []int
	ModelPath(teff int) string
}
