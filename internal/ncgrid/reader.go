package ncgrid

import (
	"errors"
	"fmt"
	"slices"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

var (
	// ErrMissingAxis is returned when a coordinate variable is absent.
	ErrMissingAxis = errors.New("coordinate axis not found")
	// ErrEmptyAxis is returned for a coordinate variable without values.
	ErrEmptyAxis = errors.New("coordinate axis is empty")
	// ErrAxisNotMonotonic is returned when a coordinate axis repeats a value.
	ErrAxisNotMonotonic = errors.New("coordinate axis has duplicate values")
	// ErrMissingVariable is returned by Cube for an unknown variable.
	ErrMissingVariable = errors.New("variable not found")
	// ErrLayout is returned when a variable is not laid out as (time, lat, lon).
	ErrLayout = errors.New("unexpected variable layout")
	// ErrUnsupportedType is returned for values that are not numeric.
	ErrUnsupportedType = errors.New("unsupported value type")
)

// AxisNames holds the names of the coordinate variables of a source file.
type AxisNames struct {
	Lat  string
	Lon  string
	Time string
}

// DefaultAxisNames returns the dimension names used by the IPEDClim files.
func DefaultAxisNames() AxisNames {
	return AxisNames{Lat: "lat", Lon: "lon", Time: "year"}
}

// Reader gives access to the gridded variables of one NetCDF file. Rows are
// exposed north to south and columns west to east whatever the stored order.
type Reader struct {
	nc    api.Group
	path  string
	names AxisNames

	lat   []float64
	lon   []float64
	times []float64

	// rowOrder[i] and colOrder[j] are the stored indices of normalized row i
	// and column j.
	rowOrder []int
	colOrder []int
}

// Open opens a NetCDF file and reads its coordinate axes.
func Open(path string, names AxisNames) (*Reader, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, err
	}
	r := &Reader{nc: nc, path: path, names: names}
	if err := r.readAxes(); err != nil {
		nc.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

func (r *Reader) readAxes() error {
	lat, err := axisValues(r.nc, r.names.Lat)
	if err != nil {
		return err
	}
	lon, err := axisValues(r.nc, r.names.Lon)
	if err != nil {
		return err
	}
	r.times, err = axisValues(r.nc, r.names.Time)
	if err != nil {
		return err
	}

	if _, err := order(r.times, compareFloat); err != nil {
		return fmt.Errorf("%s: %w", r.names.Time, err)
	}

	r.rowOrder, err = order(lat, func(a, b float64) int { return compareFloat(b, a) })
	if err != nil {
		return fmt.Errorf("%s: %w", r.names.Lat, err)
	}
	r.colOrder, err = order(lon, compareFloat)
	if err != nil {
		return fmt.Errorf("%s: %w", r.names.Lon, err)
	}
	r.lat = permute(lat, r.rowOrder)
	r.lon = permute(lon, r.colOrder)
	return nil
}

func axisValues(nc api.Group, name string) ([]float64, error) {
	vg, err := nc.GetVarGetter(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrMissingAxis, name)
	}
	v, err := vg.Values()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	values, err := toFloat64s(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptyAxis, name)
	}
	return values, nil
}

// order returns the indices of values sorted by cmp. Ties are rejected since
// a coordinate axis must be strictly monotonic once sorted.
func order(values []float64, cmp func(a, b float64) int) ([]int, error) {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int { return cmp(values[a], values[b]) })
	for i := 1; i < len(idx); i++ {
		if values[idx[i]] == values[idx[i-1]] {
			return nil, fmt.Errorf("%w: %v", ErrAxisNotMonotonic, values[idx[i]])
		}
	}
	return idx, nil
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func permute(values []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = values[j]
	}
	return out
}

// Close closes the underlying file.
func (r *Reader) Close() {
	r.nc.Close()
}

// Path returns the path the reader was opened with.
func (r *Reader) Path() string {
	return r.path
}

// Lat returns the latitudes of the rows, north to south.
func (r *Reader) Lat() []float64 {
	return slices.Clone(r.lat)
}

// Lon returns the longitudes of the columns, west to east.
func (r *Reader) Lon() []float64 {
	return slices.Clone(r.lon)
}

// Times returns the time axis labels in stored order.
func (r *Reader) Times() []float64 {
	return slices.Clone(r.times)
}

// Variables lists the variables of the file, coordinate variables included.
func (r *Reader) Variables() []string {
	return r.nc.ListVariables()
}

// HasVariable reports whether the file contains a variable called name.
func (r *Reader) HasVariable(name string) bool {
	return slices.Contains(r.nc.ListVariables(), name)
}

// Summary returns the summary information about the file suitable for
// logging.
func (r *Reader) Summary() []any {
	return []any{
		"path", r.path,
		"dims", []string{r.names.Time, r.names.Lat, r.names.Lon},
		"variables", r.Variables(),
		"time_cnt", len(r.times),
		"lat_cnt", len(r.lat),
		"lon_cnt", len(r.lon),
	}
}

// Cube reads the whole (time, lat, lon) variable called name, decodes fill
// values and packing attributes, and reorders it to north-up, west-to-east.
func (r *Reader) Cube(name string) (*Cube, error) {
	if !r.HasVariable(name) {
		return nil, fmt.Errorf("%w: %q in %s", ErrMissingVariable, name, r.path)
	}
	vg, err := r.nc.GetVarGetter(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	dims := vg.Dimensions()
	want := []string{r.names.Time, r.names.Lat, r.names.Lon}
	if !slices.Equal(dims, want) {
		return nil, fmt.Errorf("%w: %s has dimensions %v, want %v", ErrLayout, name, dims, want)
	}
	v, err := vg.Values()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	c := newCube(len(r.times), len(r.lat), len(r.lon))
	if err := fillAny(c, v, r.rowOrder, r.colOrder, newDecoder(vg.Attributes())); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return c, nil
}
