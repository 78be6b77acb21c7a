// Package catalog resolves filter curves and model spectra from file naming
// conventions.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"path"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/RMahshie/dwarfmag/internal/repository"
	"github.com/RMahshie/dwarfmag/internal/storage"
	"github.com/RMahshie/dwarfmag/pkg/models"
)

// DefaultFilterPattern captures the trailing identifier of names such as
// "2MASS_J.dat" or "wise-W1.txt".
const DefaultFilterPattern = `^(?:.*[_-])?(?P<id>[A-Za-z0-9]+)\.(?:dat|txt)$`

// TeffPlaceholder is replaced by the temperature in model path templates
const TeffPlaceholder = "{teff}"

// ErrUnknownFilter is returned by GetFilter for identifiers not in the catalog
var ErrUnknownFilter = errors.New("unknown filter")

// FilterCatalog lists filter response files in one directory or bucket prefix
type FilterCatalog struct {
	store            storage.Store
	dir              string
	pattern          *regexp.Regexp
	idGroup          int
	narrowBandPrefix string
}

// NewFilterCatalog creates a catalog over dir. pattern must contain a named
// group "id".
func NewFilterCatalog(store storage.Store, dir, pattern, narrowBandPrefix string) (repository.FilterRepository, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid filter pattern: %w", err)
	}
	idx := re.SubexpIndex("id")
	if idx < 0 {
		return nil, fmt.Errorf("filter pattern %q has no (?P<id>...) group", pattern)
	}
	return &FilterCatalog{
		store:            store,
		dir:              dir,
		pattern:          re,
		idGroup:          idx,
		narrowBandPrefix: narrowBandPrefix,
	}, nil
}

// ListFilters returns every matching filter sorted by identifier
func (c *FilterCatalog) ListFilters(ctx context.Context) ([]models.FilterRef, error) {
	paths, err := c.store.List(ctx, c.dir)
	if err != nil {
		return nil, err
	}

	var refs []models.FilterRef
	for _, p := range paths {
		id, ok := c.FilterID(p)
		if !ok {
			continue
		}
		refs = append(refs, models.FilterRef{
			ID:         id,
			Path:       p,
			NarrowBand: c.narrowBandPrefix != "" && strings.HasPrefix(id, c.narrowBandPrefix),
		})
	}
	slices.SortFunc(refs, func(a, b models.FilterRef) int { return strings.Compare(a.ID, b.ID) })

	for i := 1; i < len(refs); i++ {
		if refs[i].ID == refs[i-1].ID {
			return nil, fmt.Errorf("filter %s matched by both %s and %s", refs[i].ID, refs[i-1].Path, refs[i].Path)
		}
	}
	return refs, nil
}

// GetFilter returns the filter with the given identifier
func (c *FilterCatalog) GetFilter(ctx context.Context, id string) (models.FilterRef, error) {
	refs, err := c.ListFilters(ctx)
	if err != nil {
		return models.FilterRef{}, err
	}
	i := slices.IndexFunc(refs, func(r models.FilterRef) bool { return r.ID == id })
	if i < 0 {
		return models.FilterRef{}, fmt.Errorf("%w: %s", ErrUnknownFilter, id)
	}
	return refs[i], nil
}

// FilterID extracts the identifier from a file path's base name
func (c *FilterCatalog) FilterID(p string) (string, bool) {
	m := c.pattern.FindStringSubmatch(path.Base(strings.ReplaceAll(p, "\\", "/")))
	if m == nil || m[c.idGroup] == "" {
		return "", false
	}
	return m[c.idGroup], true
}

// ModelGrid maps temperatures to model spectrum paths via a template
type ModelGrid struct {
	template string
	temps    []int
}

// NewModelGrid creates a model grid. template must contain {teff}.
func NewModelGrid(template string, temps []int) (repository.ModelRepository, error) {
	if !strings.Contains(template, TeffPlaceholder) {
		return nil, fmt.Errorf("model pattern %q lacks %s", template, TeffPlaceholder)
	}
	if len(temps) == 0 {
		return nil, errors.New("empty temperature grid")
	}
	t := slices.Clone(temps)
	slices.Sort(t)
	return &ModelGrid{template: template, temps: slices.Compact(t)}, nil
}

// Temperatures returns the grid in ascending order
func (g *ModelGrid) Temperatures() []int { return slices.Clone(g.temps) }

// ModelPath returns the spectrum path for teff
func (g *ModelGrid) ModelPath(teff int) string {
	return strings.ReplaceAll(g.template, TeffPlaceholder, strconv.Itoa(teff))
}
