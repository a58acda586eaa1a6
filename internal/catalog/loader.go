package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/rtm0/bioyearly/internal/georef"
	"github.com/rtm0/bioyearly/internal/ncgrid"
	"github.com/rtm0/bioyearly/internal/observability"
)

var (
	// ErrMissingVariable is returned in strict mode when a file lacks the
	// variable its name announces.
	ErrMissingVariable = errors.New("expected variable missing from file")
	// ErrGridMismatch is returned when a file does not share the grid or the
	// time axis of the first loaded file.
	ErrGridMismatch = errors.New("grid differs from first loaded file")
	// ErrEmptyCatalog is returned when no variable could be loaded.
	ErrEmptyCatalog = errors.New("no variables loaded")
)

// Loader reads sources into a Catalog.
type Loader struct {
	axes    ncgrid.AxisNames
	strict  bool
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewLoader creates a Loader. In strict mode a file without its expected
// variable aborts the load; otherwise the file is skipped.
func NewLoader(axes ncgrid.AxisNames, strict bool, logger *slog.Logger, metrics *observability.Metrics) *Loader {
	return &Loader{
		axes:    axes,
		strict:  strict,
		logger:  logger,
		metrics: metrics,
	}
}

// Load reads every source and derives the georeference from the first one
// loaded. A source that cannot be opened is fatal.
func (l *Loader) Load(ctx context.Context, sources []Source) (*Catalog, georef.Georef, error) {
	c := &Catalog{vars: make(map[string]*ncgrid.Cube, len(sources))}
	var ref georef.Georef

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, georef.Georef{}, err
		}
		l.logger.Info("loading variable", "variable", src.Name, "path", src.Path)

		cube, err := l.loadSource(c, src)
		if errors.Is(err, ErrMissingVariable) && !l.strict {
			l.logger.Warn("skipping file", "variable", src.Name, "path", src.Path, "error", err)
			l.metrics.SourcesSkipped.Inc()
			continue
		}
		if err != nil {
			return nil, georef.Georef{}, err
		}

		if len(c.vars) == 0 {
			ref = georef.Derive(c.lat, c.lon)
			l.logger.Info("time axis",
				"first", c.times[0],
				"last", c.times[len(c.times)-1],
				"steps", len(c.times),
				"transform", ref.Transform,
			)
		}
		c.vars[src.Name] = cube
		l.metrics.SourcesLoaded.Inc()
	}

	if len(c.vars) == 0 {
		return nil, georef.Georef{}, ErrEmptyCatalog
	}
	l.metrics.CatalogVariables.Set(float64(len(c.vars)))
	l.metrics.TimeSteps.Set(float64(len(c.times)))
	return c, ref, nil
}

// loadSource reads one source. The first source seeds the axes of c; later
// ones must match them.
func (l *Loader) loadSource(c *Catalog, src Source) (*ncgrid.Cube, error) {
	r, err := ncgrid.Open(src.Path, l.axes)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", src.Path, err)
	}
	defer r.Close()
	l.logger.Debug("NetCDF summary", r.Summary()...)

	if !r.HasVariable(src.Name) {
		return nil, fmt.Errorf("%w: %q not in %s", ErrMissingVariable, src.Name, src.Path)
	}

	if len(c.vars) == 0 {
		c.lat, c.lon, c.times = r.Lat(), r.Lon(), r.Times()
	} else if err := sameGrid(c, r); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrGridMismatch, src.Path, err)
	}

	cube, err := r.Cube(src.Name)
	if err != nil {
		return nil, err
	}
	return cube, nil
}

func sameGrid(c *Catalog, r *ncgrid.Reader) error {
	for _, axis := range []struct {
		name      string
		want, got []float64
	}{
		{"latitude", c.lat, r.Lat()},
		{"longitude", c.lon, r.Lon()},
		{"time", c.times, r.Times()},
	} {
		if len(axis.got) != len(axis.want) {
			return fmt.Errorf("%s has %d values, want %d", axis.name, len(axis.got), len(axis.want))
		}
		if !slices.Equal(axis.got, axis.want) {
			return fmt.Errorf("%s values differ", axis.name)
		}
	}
	return nil
}
