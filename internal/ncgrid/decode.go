package ncgrid

import (
	"math"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

// decoder applies the CF conventions for missing and packed values.
type decoder struct {
	missing []float64
	scale   float64
	offset  float64
}

func newDecoder(attrs api.AttributeMap) decoder {
	d := decoder{scale: 1}
	if attrs == nil {
		return d
	}
	for _, key := range []string{"_FillValue", "missing_value"} {
		if v, ok := attrs.Get(key); ok {
			d.missing = append(d.missing, scalars(v)...)
		}
	}
	if v, ok := attrs.Get("scale_factor"); ok {
		if s := scalars(v); len(s) > 0 {
			d.scale = s[0]
		}
	}
	if v, ok := attrs.Get("add_offset"); ok {
		if s := scalars(v); len(s) > 0 {
			d.offset = s[0]
		}
	}
	return d
}

func (d decoder) decode(v float64) float64 {
	for _, m := range d.missing {
		if v == m {
			return math.NaN()
		}
	}
	return v*d.scale + d.offset
}

// scalars converts a numeric attribute, stored either as a single value or
// as a slice, to float64s. Non-numeric attributes yield nothing.
func scalars(v any) []float64 {
	switch s := v.(type) {
	case float64:
		return []float64{s}
	case float32:
		return []float64{float64(s)}
	case int8:
		return []float64{float64(s)}
	case int16:
		return []float64{float64(s)}
	case int32:
		return []float64{float64(s)}
	case int64:
		return []float64{float64(s)}
	case uint8:
		return []float64{float64(s)}
	case uint16:
		return []float64{float64(s)}
	case uint32:
		return []float64{float64(s)}
	}
	out, err := toFloat64s(v)
	if err != nil {
		return nil
	}
	return out
}
