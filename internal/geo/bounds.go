package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// Bounds is a latitude/longitude box. The longitude interval may cross the
// antimeridian, in which case LngLo > LngHi.
type Bounds struct {
	LatLo, LatHi float64
	LngLo, LngHi float64

	valid bool
}

// EmptyBounds returns a box that contains nothing.
func EmptyBounds() Bounds { return Bounds{} }

// PointBounds returns the degenerate box holding only p.
func PointBounds(p orb.Point) Bounds {
	lng := normalizeLng(p.Lon())
	return Bounds{LatLo: p.Lat(), LatHi: p.Lat(), LngLo: lng, LngHi: lng, valid: true}
}

// BoundsFromCenterSize returns the box centred on c spanning dLat by dLng
// degrees. Latitudes are clamped to the poles; a longitude span of 360 or
// more covers the full circle.
func BoundsFromCenterSize(c orb.Point, dLat, dLng float64) Bounds {
	b := Bounds{
		LatLo: math.Max(-90, c.Lat()-dLat/2),
		LatHi: math.Min(90, c.Lat()+dLat/2),
		valid: true,
	}
	if dLng >= 360 {
		b.LngLo, b.LngHi = -180, 180
		return b
	}
	b.LngLo = normalizeLng(c.Lon() - dLng/2)
	b.LngHi = normalizeLng(c.Lon() + dLng/2)
	if b.LngHi == -180 {
		b.LngHi = 180
	}
	return b
}

func (b Bounds) IsEmpty() bool { return !b.valid }

// Lo returns the south-west corner.
func (b Bounds) Lo() orb.Point { return orb.Point{b.LngLo, b.LatLo} }

// Hi returns the north-east corner.
func (b Bounds) Hi() orb.Point { return orb.Point{b.LngHi, b.LatHi} }

// Inverted reports whether the longitude interval wraps through ±180°.
func (b Bounds) Inverted() bool { return b.valid && b.LngLo > b.LngHi }

// LngSpan is the longitude width in degrees, wrap included.
func (b Bounds) LngSpan() float64 {
	if !b.valid {
		return 0
	}
	d := b.LngHi - b.LngLo
	if d < 0 {
		d += 360
	}
	return d
}

// Extend returns the box grown to include p.
func (b Bounds) Extend(p orb.Point) Bounds { return b.Union(PointBounds(p)) }

// Union returns the smallest box holding both b and o. Where the two
// longitude intervals are disjoint the shorter bridging interval wins, which
// may cross the antimeridian.
func (b Bounds) Union(o Bounds) Bounds {
	if !o.valid {
		return b
	}
	if !b.valid {
		return o
	}
	r := Bounds{
		LatLo: math.Min(b.LatLo, o.LatLo),
		LatHi: math.Max(b.LatHi, o.LatHi),
		valid: true,
	}
	r.LngLo, r.LngHi = lngUnion(b.LngLo, b.LngHi, o.LngLo, o.LngHi)
	return r
}

// Contains reports whether p lies inside the box, honouring wrapped
// longitude intervals.
func (b Bounds) Contains(p orb.Point) bool {
	if !b.valid {
		return false
	}
	if p.Lat() < b.LatLo || p.Lat() > b.LatHi {
		return false
	}
	return lngContains(b.LngLo, b.LngHi, normalizeLng(p.Lon()))
}

func normalizeLng(lng float64) float64 {
	if lng >= -180 && lng <= 180 {
		return lng
	}
	lng = math.Mod(lng+180, 360)
	if lng < 0 {
		lng += 360
	}
	return lng - 180
}

func lngContains(lo, hi, x float64) bool {
	if lo <= hi {
		return lo <= x && x <= hi
	}
	return x >= lo || x <= hi
}

func lngContainsInterval(lo, hi, olo, ohi float64) bool {
	if lo > hi {
		if olo > ohi {
			return olo >= lo && ohi <= hi
		}
		return olo >= lo || ohi <= hi
	}
	if olo > ohi {
		return lo == -180 && hi == 180
	}
	return olo >= lo && ohi <= hi
}

// positiveDistance is the eastward distance from a to b in degrees.
func positiveDistance(a, b float64) float64 {
	d := b - a
	if d >= 0 {
		return d
	}
	return d + 360
}

func lngUnion(lo, hi, olo, ohi float64) (float64, float64) {
	if lngContains(lo, hi, olo) {
		if lngContains(lo, hi, ohi) {
			if lngContainsInterval(lo, hi, olo, ohi) {
				return lo, hi
			}
			return -180, 180
		}
		return lo, ohi
	}
	if lngContains(lo, hi, ohi) {
		return olo, hi
	}
	if lngContains(olo, ohi, lo) {
		return olo, ohi
	}
	if positiveDistance(ohi, lo) < positiveDistance(hi, olo) {
		return olo, hi
	}
	return lo, ohi
}
