// Package georef derives the georeference shared by every output raster from
// the coordinate axes of a source grid.
package georef

import (
	"gonum.org/v1/gonum/floats"
)

const (
	// NoData marks absent values in output bands. It lies outside the range
	// of every bioclimatic variable.
	NoData = -9999.0

	// EPSG is the coordinate reference of both inputs and outputs (WGS84).
	EPSG = 4326

	// DefaultPixelSize is used for an axis with fewer than two points.
	DefaultPixelSize = 0.1
)

// Georef describes how raster pixels map onto geographic coordinates.
type Georef struct {
	NoData float64
	// Transform follows the GDAL geotransform layout:
	// origin-x, pixel width, 0, origin-y, 0, -pixel height.
	Transform [6]float64
	EPSG      int
}

// Derive computes the georeference of a north-up raster whose cell centers
// are the given latitudes and longitudes. The axes may be in any order but
// must not be empty; spacing is assumed to be uniform.
func Derive(lat, lon []float64) Georef {
	width := spacing(lon)
	height := spacing(lat)
	return Georef{
		NoData: NoData,
		Transform: [6]float64{
			floats.Min(lon) - width/2, width, 0,
			floats.Max(lat) + height/2, 0, -height,
		},
		EPSG: EPSG,
	}
}

func spacing(axis []float64) float64 {
	if len(axis) < 2 {
		return DefaultPixelSize
	}
	return (floats.Max(axis) - floats.Min(axis)) / float64(len(axis)-1)
}

// PixelWidth returns the east-west extent of one pixel.
func (g Georef) PixelWidth() float64 {
	return g.Transform[1]
}

// PixelHeight returns the north-south extent of one pixel as a positive number.
func (g Georef) PixelHeight() float64 {
	return -g.Transform[5]
}

// Origin returns the outer corner of the top-left pixel.
func (g Georef) Origin() (x, y float64) {
	return g.Transform[0], g.Transform[3]
}
