// Package ncgrid reads (time, lat, lon) climate variables from NetCDF files
// into dense in-memory cubes.
package ncgrid

import (
	"errors"
	"fmt"
)

// ErrStepRange is returned for a time step outside the cube.
var ErrStepRange = errors.New("time step out of range")

// Cube is a decoded 3-D variable. Data holds Steps consecutive Rows×Cols
// grids in row-major order; missing values are NaN.
type Cube struct {
	Steps int
	Rows  int
	Cols  int
	Data  []float32
}

func newCube(steps, rows, cols int) *Cube {
	return &Cube{
		Steps: steps,
		Rows:  rows,
		Cols:  cols,
		Data:  make([]float32, steps*rows*cols),
	}
}

// Step returns the grid of time step i. The returned slice aliases the cube.
func (c *Cube) Step(i int) ([]float32, error) {
	if i < 0 || i >= c.Steps {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrStepRange, i, c.Steps)
	}
	n := c.Rows * c.Cols
	return c.Data[i*n : (i+1)*n : (i+1)*n], nil
}

type number interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~float32 | ~float64
}

func fill[T number](c *Cube, src [][][]T, rowOrder, colOrder []int, dec decoder) error {
	if len(src) != c.Steps {
		return fmt.Errorf("%w: %d time steps, axis has %d", ErrLayout, len(src), c.Steps)
	}
	k := 0
	for t, grid := range src {
		if len(grid) != c.Rows {
			return fmt.Errorf("%w: step %d has %d rows, axis has %d", ErrLayout, t, len(grid), c.Rows)
		}
		for _, i := range rowOrder {
			row := grid[i]
			if len(row) != c.Cols {
				return fmt.Errorf("%w: step %d row %d has %d columns, axis has %d", ErrLayout, t, i, len(row), c.Cols)
			}
			for _, j := range colOrder {
				c.Data[k] = float32(dec.decode(float64(row[j])))
				k++
			}
		}
	}
	return nil
}

func fillAny(c *Cube, v any, rowOrder, colOrder []int, dec decoder) error {
	switch s := v.(type) {
	case [][][]float32:
		return fill(c, s, rowOrder, colOrder, dec)
	case [][][]float64:
		return fill(c, s, rowOrder, colOrder, dec)
	case [][][]int8:
		return fill(c, s, rowOrder, colOrder, dec)
	case [][][]int16:
		return fill(c, s, rowOrder, colOrder, dec)
	case [][][]int32:
		return fill(c, s, rowOrder, colOrder, dec)
	case [][][]int64:
		return fill(c, s, rowOrder, colOrder, dec)
	case [][][]uint8:
		return fill(c, s, rowOrder, colOrder, dec)
	case [][][]uint16:
		return fill(c, s, rowOrder, colOrder, dec)
	case [][][]uint32:
		return fill(c, s, rowOrder, colOrder, dec)
	}
	return fmt.Errorf("%w: %T", ErrUnsupportedType, v)
}

func toFloat64s(v any) ([]float64, error) {
	switch s := v.(type) {
	case []float64:
		return convert(s), nil
	case []float32:
		return convert(s), nil
	case []int8:
		return convert(s), nil
	case []int16:
		return convert(s), nil
	case []int32:
		return convert(s), nil
	case []int64:
		return convert(s), nil
	case []uint8:
		return convert(s), nil
	case []uint16:
		return convert(s), nil
	case []uint32:
		return convert(s), nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
}

func convert[T number](s []T) []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = float64(v)
	}
	return out
}
