// Package app runs the conversion and listing commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/rtm0/bioyearly/internal/catalog"
	"github.com/rtm0/bioyearly/internal/config"
	"github.com/rtm0/bioyearly/internal/encoder"
	"github.com/rtm0/bioyearly/internal/geotiff"
	"github.com/rtm0/bioyearly/internal/ncgrid"
	"github.com/rtm0/bioyearly/internal/observability"
	"github.com/rtm0/bioyearly/internal/output"
)

// App holds what the commands share for one process.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
	out     io.Writer
}

// New creates an App. Listings are printed to out.
func New(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics, out io.Writer) *App {
	return &App{cfg: cfg, logger: logger, metrics: metrics, out: out}
}

// Convert writes one multi-band raster per year of the input files. It
// returns an error when nothing could be converted or when any year failed;
// years that succeeded are kept either way.
func (a *App) Convert(ctx context.Context) (err error) {
	if a.cfg.MetricsTextfile != "" {
		defer func() {
			if werr := a.metrics.WriteTextfile(a.cfg.MetricsTextfile); werr != nil {
				a.logger.Warn("could not write metrics textfile", "path", a.cfg.MetricsTextfile, "error", werr)
			}
		}()
	}

	if err := output.EnsureDir(a.cfg.OutputDir); err != nil {
		return err
	}

	sources, err := catalog.Discover(a.cfg.InputDir, catalog.Naming{
		Pattern: a.cfg.InputGlob,
		Token:   a.cfg.VarToken,
		Prefix:  a.cfg.VarPrefix,
	}, a.logger)
	if err != nil {
		return err
	}

	axes := ncgrid.AxisNames{Lat: a.cfg.LatVar, Lon: a.cfg.LonVar, Time: a.cfg.TimeVar}
	cat, ref, err := catalog.NewLoader(axes, a.cfg.Strict, a.logger, a.metrics).Load(ctx, sources)
	if err != nil {
		return err
	}

	enc := encoder.New(
		geotiff.NewWriter(a.cfg.OutputDir),
		encoder.Naming{Prefix: a.cfg.OutputPrefix, Ext: a.cfg.OutputExt},
		a.cfg.Concurrency,
		a.logger,
		a.metrics,
	)
	summary := enc.Run(ctx, cat, ref)
	a.logger.Info("conversion finished",
		"written", len(summary.Written()),
		"failed", len(summary.Failed()),
		"bands", cat.Len(),
	)
	if err := summary.Err(); err != nil {
		return fmt.Errorf("%d of %d years failed: %w", len(summary.Failed()), len(summary.Results), err)
	}
	a.metrics.LastRunSuccessSeconds.SetToCurrentTime()
	return nil
}

// List prints the rasters present in the output directory. With verbose set
// it also prints the band labels of each file.
func (a *App) List(verbose bool) error {
	names, err := output.List(a.cfg.OutputDir, a.cfg.OutputExt)
	if errors.Is(err, output.ErrNoOutputDir) {
		fmt.Fprintln(a.out, "No output directory found.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "\nCreated %d yearly GeoTIFF files:\n", len(names))
	for _, name := range names {
		fmt.Fprintf(a.out, "  %s\n", name)
		if !verbose {
			continue
		}
		info, err := geotiff.Inspect(filepath.Join(a.cfg.OutputDir, name))
		if err != nil {
			fmt.Fprintf(a.out, "    unreadable: %v\n", err)
			continue
		}
		for i, label := range info.Labels {
			fmt.Fprintf(a.out, "    Band %d: %s\n", i+1, label)
		}
	}
	fmt.Fprintln(a.out, "\nUpload these files to Google Earth Engine as Image assets.")
	return nil
}
