// Package geo holds the planar and spherical geometry shared by every
// poster layout: Mercator projection, antimeridian-aware bounding boxes,
// polyline projection into a target rectangle and grid packing.
package geo

import (
	"seehuhn.de/go/geom/vec"
)

// XY is a point or size on the poster plane, in millimetres.
type XY = vec.Vec2

// Pt is shorthand for an XY literal.
func Pt(x, y float64) XY { return XY{X: x, Y: y} }

// Scale multiplies a and b component-wise.
func Scale(a, b XY) XY { return XY{X: a.X * b.X, Y: a.Y * b.Y} }
