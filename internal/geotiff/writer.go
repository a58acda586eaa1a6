// Package geotiff persists rasters as tiled, compressed Float32 GeoTIFFs
// through GDAL and reads them back for inspection.
package geotiff

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/airbusgeo/godal"
	"github.com/rtm0/bioyearly/internal/encoder"
)

// partialSuffix marks files still being written.
const partialSuffix = ".partial"

var creationOptions = []string{"COMPRESS=DEFLATE", "PREDICTOR=2", "TILED=YES"}

// ErrInvalidRaster is returned for a raster whose bands do not cover its grid.
var ErrInvalidRaster = errors.New("invalid raster")

var registerOnce sync.Once

func register() {
	registerOnce.Do(godal.RegisterAll)
}

// Writer writes rasters into a directory.
type Writer struct {
	dir string
}

// NewWriter creates a Writer for dir, which must exist.
func NewWriter(dir string) *Writer {
	register()
	return &Writer{dir: dir}
}

// Write stores r as dir/name. The file only appears under its final name once
// completely written; a failed write leaves nothing behind.
func (w *Writer) Write(ctx context.Context, name string, r *encoder.Raster) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validate(r); err != nil {
		return err
	}
	path := filepath.Join(w.dir, name)
	tmp := path + partialSuffix
	if err := write(tmp, r); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func validate(r *encoder.Raster) error {
	if r.Width < 1 || r.Height < 1 || len(r.Bands) == 0 {
		return fmt.Errorf("%w: %dx%d with %d bands", ErrInvalidRaster, r.Width, r.Height, len(r.Bands))
	}
	for _, b := range r.Bands {
		if len(b.Data) != r.Width*r.Height {
			return fmt.Errorf("%w: band %s has %d cells, want %d", ErrInvalidRaster, b.Label, len(b.Data), r.Width*r.Height)
		}
	}
	return nil
}

func write(path string, r *encoder.Raster) (err error) {
	ds, err := godal.Create(godal.GTiff, path, len(r.Bands), godal.Float32, r.Width, r.Height,
		godal.CreationOption(creationOptions...))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := ds.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := ds.SetGeoTransform(r.Georef.Transform); err != nil {
		return err
	}
	sr, err := godal.NewSpatialRefFromEPSG(r.Georef.EPSG)
	if err != nil {
		return err
	}
	defer sr.Close()
	if err := ds.SetSpatialRef(sr); err != nil {
		return err
	}

	for i, band := range ds.Bands() {
		b := r.Bands[i]
		if err := band.Write(0, 0, b.Data, r.Width, r.Height); err != nil {
			return fmt.Errorf("band %d (%s): %w", i+1, b.Label, err)
		}
		if err := band.SetNoData(b.NoData); err != nil {
			return fmt.Errorf("band %d (%s): %w", i+1, b.Label, err)
		}
		if err := band.SetDescription(b.Label); err != nil {
			return fmt.Errorf("band %d (%s): %w", i+1, b.Label, err)
		}
	}
	return nil
}
