package poster

import (
	"math"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/banshee-data/trackposter/internal/geo"
	"github.com/banshee-data/trackposter/internal/ranges"
	"github.com/banshee-data/trackposter/internal/track"
	"github.com/banshee-data/trackposter/internal/units"
)

// DefaultRingColor is dark grey.
const DefaultRingColor = "#A9A9A9"

// CircularOptions configure the circular layout.
type CircularOptions struct {
	// Rings draws distance rings behind the day segments.
	Rings     bool
	RingColor string
	// MaxDistance, when positive, is the length mapped to the outer radius.
	MaxDistance units.Meters
}

// CircularDrawer draws each year as a ring of day segments whose radial
// extent grows with the day's length.
type CircularDrawer struct {
	Options CircularOptions
}

func (*CircularDrawer) Name() string { return "circular" }

func (d *CircularDrawer) Draw(c *Canvas, p *Poster, size, offset geo.XY) error {
	g, ok := geo.ComputeGrid(p.yearCount(), size)
	if !ok {
		return ErrNoGrid
	}
	ringColor := d.Options.RingColor
	if ringColor == "" {
		ringColor = DefaultRingColor
	}
	ring, err := ParseColor(ringColor)
	if err != nil {
		return err
	}

	cell := geo.Pt(size.X/float64(g.Columns), size.Y/float64(g.Rows))
	margin := geo.Pt(4, 4)
	if g.Columns <= 1 {
		margin.X = 0
	}
	if g.Rows <= 1 {
		margin.Y = 0
	}
	sub := cell.Sub(margin.Mul(2))
	x, y := 0, 0
	for year := range p.Years.Years() {
		pos := offset.Add(margin).Add(geo.Scale(cell, geo.Pt(float64(x), float64(y))))
		d.drawYear(c, p, sub, pos, year, ring)
		x++
		if x >= g.Columns {
			x, y = 0, y+1
		}
	}
	return nil
}

func (d *CircularDrawer) maxLength(p *Poster) units.Meters {
	if d.Options.MaxDistance > 0 {
		return d.Options.MaxDistance
	}
	upper, _ := p.LengthRangeByDate.Upper()
	return upper
}

func (d *CircularDrawer) drawYear(c *Canvas, p *Poster, size, offset geo.XY, year int, ring colorful.Color) {
	minSize := min(size.X, size.Y)
	outer := 0.5*minSize - 6
	radii := ranges.FromPair(outer/4, outer)
	center := offset.Add(size.Mul(0.5))
	maxLength := d.maxLength(p)

	if d.Options.Rings {
		d.drawRings(c, p, center, radii, maxLength, ring)
	}
	yearSize := minSize * 4 / 80
	c.Text(itoa(year), center.Add(geo.Pt(0, yearSize/3)), yearSize, AnchorMiddle, p.colors.text)

	days := 365
	if daysIn(year, time.February) == 29 {
		days = 366
	}
	df := 2 * math.Pi / float64(days)
	date := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	for day := 0; date.Year() == year; day++ {
		if date.Day() == 1 {
			d.drawMonth(c, p, center, radii, float64(day)*df, daysIn(year, date.Month()), df, date.Month(), minSize)
		}
		if length, special, ok := p.day(date.Format(track.DateLayout)); ok && maxLength > 0 {
			r2, _ := radii.Interpolate(min(float64(length/maxLength), 1))
			lower, _ := radii.Lower()
			col := p.colorFor(p.LengthRangeByDate, length, special)
			c.Sector(center, lower, r2, float64(day)*df, float64(day+1)*df, col)
		}
		date = date.AddDate(0, 0, 1)
	}
}

func (*CircularDrawer) drawMonth(c *Canvas, p *Poster, center geo.XY, radii ranges.ValueRange, a float64, days int, df float64, m time.Month, minSize float64) {
	upper, _ := radii.Upper()
	c.Line(Polar(center, upper+1, a), Polar(center, upper+6, a), p.colors.text, 0.3)
	monthSize := minSize * 3 / 80
	mid := a + float64(days)*df/2
	at := Polar(center, upper+3.5, mid)
	c.Text(m.String()[:3], at.Add(geo.Pt(0, monthSize/3)), monthSize, AnchorMiddle, p.colors.text)
}

func (d *CircularDrawer) drawRings(c *Canvas, p *Poster, center geo.XY, radii ranges.ValueRange, maxLength units.Meters, ring colorful.Color) {
	step, ok := RingDistance(maxLength, p.Units.Unit())
	if !ok {
		return
	}
	col := withAlpha(ring, 0.2)
	for dist := step; dist < maxLength; dist += step {
		r, _ := radii.Interpolate(float64(dist / maxLength))
		c.Circle(center, r, col, 0.3)
	}
}

// RingDistance picks the smallest of 1, 5, 10 or 50 display units that
// needs at most five rings to reach maxLength.
func RingDistance(maxLength, unit units.Meters) (units.Meters, bool) {
	if maxLength <= 0 {
		return 0, false
	}
	for _, n := range []units.Meters{1, 5, 10, 50} {
		if maxLength/(n*unit) <= 5 {
			return n * unit, true
		}
	}
	return 0, false
}
