package catalog_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rtm0/bioyearly/internal/catalog"
	"github.com/rtm0/bioyearly/internal/ncgrid"
	"github.com/rtm0/bioyearly/internal/ncgrid/ncgridtest"
	"github.com/rtm0/bioyearly/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var naming = catalog.Naming{Pattern: "IPEDClim_BIO*.nc", Token: "BIO", Prefix: "bio"}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func grid(vars map[string][][][]float32) ncgridtest.File {
	return ncgridtest.File{
		Lat:   []float64{10, 0},
		Lon:   []float64{0, 10},
		Years: []int32{2020},
		Vars:  vars,
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	ncgridtest.Write(t, dir, "IPEDClim_BIO12.nc", grid(map[string][][][]float32{"bio12": ncgridtest.Constant(1, 2, 2, 12)}))
	ncgridtest.Write(t, dir, "IPEDClim_BIO01.nc", grid(map[string][][][]float32{"bio1": ncgridtest.Constant(1, 2, 2, 1)}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "IPEDClim_BIOx.nc"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), nil, 0o644))

	sources, err := catalog.Discover(dir, naming, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, []catalog.Source{
		{Name: "bio1", Index: 1, Path: filepath.Join(dir, "IPEDClim_BIO01.nc")},
		{Name: "bio12", Index: 12, Path: filepath.Join(dir, "IPEDClim_BIO12.nc")},
	}, sources)
}

func TestDiscover_NoFiles(t *testing.T) {
	_, err := catalog.Discover(t.TempDir(), naming, discardLogger())
	require.ErrorIs(t, err, catalog.ErrNoSources)
}

func TestDiscover_Duplicate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "IPEDClim_BIO1.nc"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "IPEDClim_BIO01.nc"), nil, 0o644))

	_, err := catalog.Discover(dir, naming, discardLogger())
	require.ErrorIs(t, err, catalog.ErrDuplicateVariable)
}

func load(t *testing.T, dir string, strict bool) (*catalog.Catalog, *observability.Metrics, error) {
	t.Helper()
	sources, err := catalog.Discover(dir, naming, discardLogger())
	require.NoError(t, err)
	m := observability.NewMetrics()
	l := catalog.NewLoader(ncgrid.DefaultAxisNames(), strict, discardLogger(), m)
	c, _, err := l.Load(context.Background(), sources)
	return c, m, err
}

func TestLoad_TwoVariables(t *testing.T) {
	dir := t.TempDir()
	ncgridtest.Write(t, dir, "IPEDClim_BIO001.nc", grid(map[string][][][]float32{"bio1": ncgridtest.Constant(1, 2, 2, 1)}))
	ncgridtest.Write(t, dir, "IPEDClim_BIO012.nc", grid(map[string][][][]float32{"bio12": ncgridtest.Constant(1, 2, 2, 12)}))
	sources, err := catalog.Discover(dir, naming, discardLogger())
	require.NoError(t, err)
	m := observability.NewMetrics()

	c, ref, err := catalog.NewLoader(ncgrid.DefaultAxisNames(), false, discardLogger(), m).Load(context.Background(), sources)
	require.NoError(t, err)

	assert.Equal(t, []string{"bio1", "bio12"}, c.Names())
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []float64{2020}, c.Times())
	assert.Equal(t, 2, c.Rows())
	assert.Equal(t, 2, c.Cols())
	assert.Equal(t, [6]float64{-5, 10, 0, 15, 0, -10}, ref.Transform)

	s, err := c.Slice("bio12", 0)
	require.NoError(t, err)
	assert.Equal(t, []float32{12, 12, 12, 12}, s)

	_, err = c.Slice("bio3", 0)
	require.ErrorIs(t, err, catalog.ErrUnknownVariable)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SourcesLoaded))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CatalogVariables))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TimeSteps))
}

func TestLoad_RowOrderNormalizedPerSource(t *testing.T) {
	dir := t.TempDir()
	ncgridtest.Write(t, dir, "IPEDClim_BIO01.nc", ncgridtest.File{
		Lat:   []float64{1, 0},
		Lon:   []float64{0},
		Years: []int32{2020},
		Vars:  map[string][][][]float32{"bio1": {{{1}, {0}}}},
	})
	ncgridtest.Write(t, dir, "IPEDClim_BIO02.nc", ncgridtest.File{
		Lat:   []float64{0, 1},
		Lon:   []float64{0},
		Years: []int32{2020},
		Vars:  map[string][][][]float32{"bio2": {{{0}, {1}}}},
	})

	c, _, err := load(t, dir, false)
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 0}, c.Lat())
	for _, name := range []string{"bio1", "bio2"} {
		s, err := c.Slice(name, 0)
		require.NoError(t, err)
		assert.Equal(t, []float32{1, 0}, s, name)
	}
}

func TestLoad_MissingVariableLenient(t *testing.T) {
	dir := t.TempDir()
	ncgridtest.Write(t, dir, "IPEDClim_BIO01.nc", grid(map[string][][][]float32{"bio1": ncgridtest.Constant(1, 2, 2, 1)}))
	ncgridtest.Write(t, dir, "IPEDClim_BIO02.nc", grid(map[string][][][]float32{"tas": ncgridtest.Constant(1, 2, 2, 2)}))

	c, m, err := load(t, dir, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"bio1"}, c.Names())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SourcesSkipped))
}

func TestLoad_MissingVariableStrict(t *testing.T) {
	dir := t.TempDir()
	ncgridtest.Write(t, dir, "IPEDClim_BIO01.nc", grid(map[string][][][]float32{"bio1": ncgridtest.Constant(1, 2, 2, 1)}))
	ncgridtest.Write(t, dir, "IPEDClim_BIO02.nc", grid(map[string][][][]float32{"tas": ncgridtest.Constant(1, 2, 2, 2)}))

	_, _, err := load(t, dir, true)
	require.ErrorIs(t, err, catalog.ErrMissingVariable)
}

func TestLoad_SkippedFirstSourceDoesNotSeedGrid(t *testing.T) {
	dir := t.TempDir()
	ncgridtest.Write(t, dir, "IPEDClim_BIO01.nc", ncgridtest.File{
		Lat:   []float64{50, 40, 30},
		Lon:   []float64{0},
		Years: []int32{1999},
		Vars:  map[string][][][]float32{"other": ncgridtest.Constant(1, 3, 1, 0)},
	})
	ncgridtest.Write(t, dir, "IPEDClim_BIO02.nc", grid(map[string][][][]float32{"bio2": ncgridtest.Constant(1, 2, 2, 2)}))

	c, _, err := load(t, dir, false)
	require.NoError(t, err)

	assert.Equal(t, []float64{10, 0}, c.Lat())
	assert.Equal(t, []float64{2020}, c.Times())
}

func TestLoad_AllMissing(t *testing.T) {
	dir := t.TempDir()
	ncgridtest.Write(t, dir, "IPEDClim_BIO01.nc", grid(map[string][][][]float32{"tas": ncgridtest.Constant(1, 2, 2, 1)}))

	_, _, err := load(t, dir, false)
	require.ErrorIs(t, err, catalog.ErrEmptyCatalog)
}

func TestLoad_GridMismatch(t *testing.T) {
	cases := []struct {
		name string
		file ncgridtest.File
	}{
		{"latitude", ncgridtest.File{
			Lat: []float64{20, 10}, Lon: []float64{0, 10}, Years: []int32{2020},
			Vars: map[string][][][]float32{"bio2": ncgridtest.Constant(1, 2, 2, 2)},
		}},
		{"shape", ncgridtest.File{
			Lat: []float64{10, 5, 0}, Lon: []float64{0, 10}, Years: []int32{2020},
			Vars: map[string][][][]float32{"bio2": ncgridtest.Constant(1, 3, 2, 2)},
		}},
		{"time", ncgridtest.File{
			Lat: []float64{10, 0}, Lon: []float64{0, 10}, Years: []int32{2021},
			Vars: map[string][][][]float32{"bio2": ncgridtest.Constant(1, 2, 2, 2)},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			ncgridtest.Write(t, dir, "IPEDClim_BIO01.nc", grid(map[string][][][]float32{"bio1": ncgridtest.Constant(1, 2, 2, 1)}))
			ncgridtest.Write(t, dir, "IPEDClim_BIO02.nc", tc.file)

			_, _, err := load(t, dir, false)
			require.ErrorIs(t, err, catalog.ErrGridMismatch)
			assert.Contains(t, err.Error(), "IPEDClim_BIO02.nc")
		})
	}
}

func TestLoad_UnreadableSourceIsFatal(t *testing.T) {
	dir := t.TempDir()
	ncgridtest.Write(t, dir, "IPEDClim_BIO01.nc", grid(map[string][][][]float32{"bio1": ncgridtest.Constant(1, 2, 2, 1)}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "IPEDClim_BIO02.nc"), []byte("not a netcdf file"), 0o644))

	_, _, err := load(t, dir, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IPEDClim_BIO02.nc")
}

func TestLoad_Cancelled(t *testing.T) {
	dir := t.TempDir()
	ncgridtest.Write(t, dir, "IPEDClim_BIO01.nc", grid(map[string][][][]float32{"bio1": ncgridtest.Constant(1, 2, 2, 1)}))
	sources, err := catalog.Discover(dir, naming, discardLogger())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err = catalog.NewLoader(ncgrid.DefaultAxisNames(), false, discardLogger(), observability.NewMetrics()).Load(ctx, sources)
	require.ErrorIs(t, err, context.Canceled)
}
