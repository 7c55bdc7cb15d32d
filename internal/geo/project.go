package geo

import (
	"github.com/paulmach/orb"
)

// Polyline is one continuously recorded stretch of a track.
type Polyline = orb.LineString

// Project fits bbox into the rectangle at offset with the given size using a
// uniform scale, centring it, and returns every polyline in poster
// coordinates. Points outside bbox split a polyline into separate segments.
// A box with neither width nor height yields no segments.
func Project(bbox Bounds, size, offset XY, lines []Polyline) [][]XY {
	if bbox.IsEmpty() {
		return nil
	}

	minX := LngToX(bbox.LngLo)
	dX := bbox.LngSpan() / 180
	for dX >= 2 {
		dX -= 2
	}
	minY := LatToY(bbox.LatLo)
	maxY := LatToY(bbox.LatHi)
	dY := maxY - minY
	if dY < 0 {
		dY = -dY
	}
	if dX == 0 && dY == 0 {
		return nil
	}

	var scale float64
	if size.X/size.Y <= dX/dY {
		scale = size.X / dX
	} else {
		scale = size.Y / dY
	}
	origin := offset.
		Add(size.Sub(XY{X: dX, Y: -dY}.Mul(scale)).Mul(0.5)).
		Sub(XY{X: minX, Y: minY}.Mul(scale))

	var out [][]XY
	for _, line := range lines {
		var seg []XY
		for _, p := range line {
			if !bbox.Contains(p) {
				if len(seg) > 0 {
					out = append(out, seg)
					seg = nil
				}
				continue
			}
			xy := LatLngToXY(p)
			// Points east of the antimeridian belong after minX.
			if bbox.Inverted() && xy.X < minX {
				xy.X += 2
			}
			seg = append(seg, origin.Add(xy.Mul(scale)))
		}
		if len(seg) > 0 {
			out = append(out, seg)
		}
	}
	return out
}
