package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// LngToX maps a longitude in degrees to [0, 2].
func LngToX(lng float64) float64 {
	return lng/180 + 1
}

// LatToY maps a latitude in degrees to Mercator y; y grows southward and the
// equator sits at 0.5.
func LatToY(lat float64) float64 {
	return 0.5 - math.Log(math.Tan(math.Pi/4*(1+lat/90)))/math.Pi
}

// LatLngToXY projects p (lon, lat) onto the Mercator plane.
func LatLngToXY(p orb.Point) XY {
	return XY{X: LngToX(p.Lon()), Y: LatToY(p.Lat())}
}
