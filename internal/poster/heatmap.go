package poster

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"

	"github.com/banshee-data/trackposter/internal/geo"
)

// Heatmap parameter errors.
var (
	ErrHeatmapCenter     = errors.New("invalid heatmap center")
	ErrHeatmapRadius     = errors.New("invalid heatmap radius")
	ErrHeatmapLineWidths = errors.New("invalid heatmap line transparencies and widths")
)

const earthRadiusKm = 6378.1

// LineWidth is one stroke pass of the heatmap.
type LineWidth struct {
	Opacity float64
	Width   float64
}

var (
	narrowLineWidths = []LineWidth{{0.10, 5.0}, {0.20, 2.0}, {1.0, 0.30}}
	wideLineWidths   = []LineWidth{{0.02, 0.5}, {0.05, 0.2}, {1.0, 0.05}}
)

// HeatmapOptions configure the heatmap layout.
type HeatmapOptions struct {
	// Center, when set, centres the map instead of fitting every track.
	Center *orb.Point
	// RadiusKm limits the map to a radius around Center.
	RadiusKm float64
	// LineWidths overrides the automatic stroke passes.
	LineWidths []LineWidth
}

// HeatmapDrawer overlays every track on one map with several translucent
// stroke passes, so frequently used routes light up.
type HeatmapDrawer struct {
	Options HeatmapOptions
}

func (*HeatmapDrawer) Name() string { return "heatmap" }

func (d *HeatmapDrawer) Draw(c *Canvas, p *Poster, size, offset geo.XY) error {
	bbox := d.bounds(p)
	widths := d.Options.LineWidths
	if len(widths) == 0 {
		widths = AutoLineWidths(bbox)
	}
	for _, t := range p.Tracks {
		col := p.colorFor(p.LengthRange, t.Length, t.Special)
		for _, line := range geo.Project(bbox, size, offset, t.Polylines) {
			for _, lw := range widths {
				c.Polyline(line, withAlpha(col, lw.Opacity), lw.Width)
			}
		}
	}
	return nil
}

func (d *HeatmapDrawer) bounds(p *Poster) geo.Bounds {
	center := d.Options.Center
	if center == nil {
		b := geo.EmptyBounds()
		for _, t := range p.Tracks {
			b = b.Union(t.Bounds())
		}
		return b
	}

	var dLat, dLng float64
	if d.Options.RadiusKm > 0 {
		quarter := earthRadiusKm * math.Pi / 2
		dLat = 90 * d.Options.RadiusKm / quarter
		dLng = dLat / math.Cos(center.Lat()*math.Pi/180)
	} else {
		for _, t := range p.Tracks {
			for _, line := range t.Polylines {
				for _, pt := range line {
					dLat = max(dLat, math.Abs(center.Lat()-pt.Lat()))
					dl := math.Abs(center.Lon() - pt.Lon())
					if dl > 180 {
						dl = 360 - dl
					}
					dLng = max(dLng, dl)
				}
			}
		}
	}
	return geo.BoundsFromCenterSize(*center, 2*dLat, 2*dLng)
}

// AutoLineWidths picks stroke passes by the diagonal of bbox: wide strokes
// below 10 km, thin ones above 1000 km and a blend in between.
func AutoLineWidths(bbox geo.Bounds) []LineWidth {
	const low, upp = 10.0, 1000.0
	if bbox.IsEmpty() {
		return narrowLineWidths
	}
	d := orbgeo.Distance(bbox.Lo(), bbox.Hi()) / 1000
	switch {
	case d <= low:
		return narrowLineWidths
	case d >= upp:
		return wideLineWidths
	}
	f := (d - low) / (upp - low)
	out := make([]LineWidth, len(narrowLineWidths))
	for i, n := range narrowLineWidths {
		w := wideLineWidths[i]
		out[i] = LineWidth{
			Opacity: n.Opacity + f*(w.Opacity-n.Opacity),
			Width:   n.Width + f*(w.Width-n.Width),
		}
	}
	return out
}

// ParseHeatmapCenter parses "LAT,LNG" in degrees.
func ParseHeatmapCenter(s string) (orb.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return orb.Point{}, fmt.Errorf("%w: %q is not LAT,LNG", ErrHeatmapCenter, s)
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return orb.Point{}, fmt.Errorf("%w: %q is not numeric", ErrHeatmapCenter, s)
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return orb.Point{}, fmt.Errorf("%w: %q out of range", ErrHeatmapCenter, s)
	}
	return orb.Point{lng, lat}, nil
}

// ValidateHeatmapRadius checks a radius in km; a radius needs a center.
func ValidateHeatmapRadius(radiusKm float64, hasCenter bool) error {
	if radiusKm == 0 {
		return nil
	}
	if radiusKm < 0 {
		return fmt.Errorf("%w: %g must be positive", ErrHeatmapRadius, radiusKm)
	}
	if !hasCenter {
		return fmt.Errorf("%w: a radius requires a center", ErrHeatmapRadius)
	}
	return nil
}

// ParseHeatmapLineWidths parses "automatic" (nil result) or three
// "opacity,width" pairs as six comma separated values.
func ParseHeatmapLineWidths(s string) ([]LineWidth, error) {
	if s == "" || s == "automatic" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 6 {
		return nil, fmt.Errorf("%w: want 6 values, got %d", ErrHeatmapLineWidths, len(parts))
	}
	out := make([]LineWidth, 0, 3)
	for i := 0; i < len(parts); i += 2 {
		op, err1 := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		w, err2 := strconv.ParseFloat(strings.TrimSpace(parts[i+1]), 64)
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("%w: %q is not numeric", ErrHeatmapLineWidths, s)
		}
		if op < 0 || op > 1 {
			return nil, fmt.Errorf("%w: opacity %g not in [0,1]", ErrHeatmapLineWidths, op)
		}
		if w < 0 {
			return nil, fmt.Errorf("%w: width %g is negative", ErrHeatmapLineWidths, w)
		}
		out = append(out, LineWidth{Opacity: op, Width: w})
	}
	return out, nil
}
