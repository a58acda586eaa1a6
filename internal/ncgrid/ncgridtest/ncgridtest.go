// Package ncgridtest writes small NetCDF files for tests.
package ncgridtest

import (
	"path/filepath"
	"slices"
	"testing"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/cdf"
	"github.com/batchatco/go-native-netcdf/netcdf/util"
	"github.com/stretchr/testify/require"
)

// File describes the contents of a fixture. Variables are laid out as
// (year, lat, lon) unless Dims overrides it.
type File struct {
	Lat   []float64
	Lon   []float64
	Years []int32
	Vars  map[string][][][]float32
	Attrs map[string]map[string]any
	Dims  map[string][]string
}

// Write creates dir/name and returns its path.
func Write(t testing.TB, dir, name string, f File) string {
	t.Helper()
	path := filepath.Join(dir, name)
	cw, err := cdf.OpenWriter(path)
	require.NoError(t, err)

	addVar(t, cw, "lat", f.Lat, []string{"lat"}, nil)
	addVar(t, cw, "lon", f.Lon, []string{"lon"}, nil)
	addVar(t, cw, "year", f.Years, []string{"year"}, nil)

	names := make([]string, 0, len(f.Vars))
	for name := range f.Vars {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		dims := []string{"year", "lat", "lon"}
		if d, ok := f.Dims[name]; ok {
			dims = d
		}
		addVar(t, cw, name, f.Vars[name], dims, f.Attrs[name])
	}
	require.NoError(t, cw.Close())
	return path
}

func addVar(t testing.TB, cw *cdf.CDFWriter, name string, values any, dims []string, attrs map[string]any) {
	t.Helper()
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	if attrs == nil {
		attrs = map[string]any{}
	}
	om, err := util.NewOrderedMap(keys, attrs)
	require.NoError(t, err)
	require.NoError(t, cw.AddVar(name, api.Variable{
		Values:     values,
		Dimensions: dims,
		Attributes: om,
	}))
}

// Constant returns a steps×rows×cols grid filled with v.
func Constant(steps, rows, cols int, v float32) [][][]float32 {
	out := make([][][]float32, steps)
	for t := range out {
		out[t] = make([][]float32, rows)
		for i := range out[t] {
			out[t][i] = make([]float32, cols)
			for j := range out[t][i] {
				out[t][i][j] = v
			}
		}
	}
	return out
}

// Indexed returns a steps×rows×cols grid whose cell (t, i, j) holds
// base + 100*t + 10*i + j, so every cell is distinguishable.
func Indexed(steps, rows, cols int, base float32) [][][]float32 {
	out := Constant(steps, rows, cols, 0)
	for t := range out {
		for i := range out[t] {
			for j := range out[t][i] {
				out[t][i][j] = base + float32(100*t+10*i+j)
			}
		}
	}
	return out
}
