// Package encoder turns a variable catalog into one multi-band raster per
// time step.
package encoder

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/rtm0/bioyearly/internal/catalog"
	"github.com/rtm0/bioyearly/internal/georef"
)

var (
	// ErrNoBands is returned when the source holds no variable.
	ErrNoBands = errors.New("no variables to encode")
	// ErrShapeMismatch is returned when a slice does not cover the grid.
	ErrShapeMismatch = errors.New("slice does not match grid shape")
	// ErrDuplicateName is returned for a time step whose file name was
	// already taken by an earlier step.
	ErrDuplicateName = errors.New("file name already used by another time step")
)

// Source is the read-only view of the catalog the encoder needs.
type Source interface {
	Names() []string
	Times() []float64
	Rows() int
	Cols() int
	Slice(name string, step int) ([]float32, error)
}

// Band is one labeled grid of a raster, row-major, north-up.
type Band struct {
	Label  string
	NoData float64
	Data   []float32
}

// Raster is a multi-band grid sharing a single georeference.
type Raster struct {
	Width  int
	Height int
	Georef georef.Georef
	Bands  []Band
}

// Build assembles the raster of time step i: one band per variable in
// numeric index order, missing values replaced by the no-data sentinel.
func Build(src Source, ref georef.Georef, i int) (*Raster, error) {
	names := catalog.SortNames(src.Names())
	if len(names) == 0 {
		return nil, ErrNoBands
	}
	r := &Raster{
		Width:  src.Cols(),
		Height: src.Rows(),
		Georef: ref,
		Bands:  make([]Band, 0, len(names)),
	}
	n := r.Width * r.Height
	nodata := float32(ref.NoData)
	for _, name := range names {
		s, err := src.Slice(name, i)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if len(s) != n {
			return nil, fmt.Errorf("%w: %s has %d cells, grid is %dx%d", ErrShapeMismatch, name, len(s), r.Height, r.Width)
		}
		data := make([]float32, n)
		for k, v := range s {
			if math.IsNaN(float64(v)) {
				v = nodata
			}
			data[k] = v
		}
		r.Bands = append(r.Bands, Band{Label: name, NoData: ref.NoData, Data: data})
	}
	return r, nil
}

// Naming describes output file names: <Prefix>_<label><Ext>.
type Naming struct {
	Prefix string
	Ext    string
}

// FileName returns the output name for a time axis label, e.g.
// IPEDClim_2020.tif. Integral labels are written without decimals.
func (n Naming) FileName(label float64) string {
	return n.Prefix + "_" + Label(label) + n.Ext
}

// Label formats a time axis value without padding or trailing zeros.
func Label(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
