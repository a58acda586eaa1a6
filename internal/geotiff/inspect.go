package geotiff

import (
	"fmt"

	"github.com/airbusgeo/godal"
)

// Info is the metadata of a written raster.
type Info struct {
	Width       int
	Height      int
	BlockWidth  int
	BlockHeight int
	Labels      []string
	NoData      []float64
	Transform   [6]float64
	Projection  string
	Compression string
}

// Inspect reads the metadata of the raster at path.
func Inspect(path string) (Info, error) {
	register()
	ds, err := godal.Open(path)
	if err != nil {
		return Info{}, err
	}
	defer ds.Close()

	st := ds.Structure()
	gt, err := ds.GeoTransform()
	if err != nil {
		return Info{}, fmt.Errorf("%s: %w", path, err)
	}
	info := Info{
		Width:       st.SizeX,
		Height:      st.SizeY,
		BlockWidth:  st.BlockSizeX,
		BlockHeight: st.BlockSizeY,
		Transform:   gt,
		Projection:  ds.Projection(),
		Compression: ds.Metadata("COMPRESSION", godal.Domain("IMAGE_STRUCTURE")),
	}
	for _, band := range ds.Bands() {
		info.Labels = append(info.Labels, band.Description())
		nd, ok := band.NoData()
		if !ok {
			return Info{}, fmt.Errorf("%s: band %q declares no nodata value", path, band.Description())
		}
		info.NoData = append(info.NoData, nd)
	}
	return info, nil
}

// ReadBand returns the pixels of band n (1-based) of the raster at path.
func ReadBand(path string, n int) ([]float32, error) {
	register()
	ds, err := godal.Open(path)
	if err != nil {
		return nil, err
	}
	defer ds.Close()

	bands := ds.Bands()
	if n < 1 || n > len(bands) {
		return nil, fmt.Errorf("%s: band %d not in [1, %d]", path, n, len(bands))
	}
	st := ds.Structure()
	buf := make([]float32, st.SizeX*st.SizeY)
	if err := bands[n-1].Read(0, 0, buf, st.SizeX, st.SizeY); err != nil {
		return nil, fmt.Errorf("%s: band %d: %w", path, n, err)
	}
	return buf, nil
}
