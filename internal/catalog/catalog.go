// Package catalog discovers per-variable NetCDF files and loads them into a
// single in-memory catalog sharing one grid and one time axis.
package catalog

import (
	"errors"
	"fmt"
	"slices"

	"github.com/rtm0/bioyearly/internal/ncgrid"
)

// ErrUnknownVariable is returned by Slice for a name not in the catalog.
var ErrUnknownVariable = errors.New("variable not in catalog")

// Catalog maps variable names to their cubes. It is read-only once loaded
// and safe for concurrent readers.
type Catalog struct {
	vars  map[string]*ncgrid.Cube
	times []float64
	lat   []float64
	lon   []float64
}

// Names returns the variable names ordered by numeric index.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.vars))
	for name := range c.vars {
		names = append(names, name)
	}
	return SortNames(names)
}

// Len returns the number of variables.
func (c *Catalog) Len() int {
	return len(c.vars)
}

// Variable returns the cube registered under name.
func (c *Catalog) Variable(name string) (*ncgrid.Cube, bool) {
	v, ok := c.vars[name]
	return v, ok
}

// Times returns the shared time axis.
func (c *Catalog) Times() []float64 {
	return slices.Clone(c.times)
}

// Lat returns the row latitudes, north to south.
func (c *Catalog) Lat() []float64 {
	return slices.Clone(c.lat)
}

// Lon returns the column longitudes, west to east.
func (c *Catalog) Lon() []float64 {
	return slices.Clone(c.lon)
}

// Rows returns the grid height.
func (c *Catalog) Rows() int {
	return len(c.lat)
}

// Cols returns the grid width.
func (c *Catalog) Cols() int {
	return len(c.lon)
}

// Slice returns the grid of variable name at time step i. The slice aliases
// catalog memory and must not be modified.
func (c *Catalog) Slice(name string, i int) ([]float32, error) {
	v, ok := c.vars[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariable, name)
	}
	return v.Step(i)
}
