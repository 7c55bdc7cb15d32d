package poster

import (
	"image/color"
	"time"

	"github.com/banshee-data/trackposter/internal/geo"
	"github.com/banshee-data/trackposter/internal/track"
)

// GithubDrawer draws one contribution-style strip of day squares per year.
type GithubDrawer struct{}

func (*GithubDrawer) Name() string { return "github" }

// AdjustSize gives each year a fixed-height strip.
func (*GithubDrawer) AdjustSize(p *Poster) {
	p.Height = 55 + float64(p.yearCount())*43
}

func (d *GithubDrawer) Draw(c *Canvas, p *Poster, size, offset geo.XY) error {
	const (
		yearSize  = 200 * 4.0 / 80.0
		monthSize = 2.5
		step      = 3.5
	)
	dim := geo.Pt(2.6, 2.6)
	text := p.colors.text
	for year := range p.Years.Years() {
		first := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		day := first.AddDate(0, 0, -mondayWeekday(first))

		c.Text(itoa(year), offset.Add(geo.Pt(0, yearSize*0.8)), yearSize, AnchorStart, text)
		c.Text(p.Units.Format(p.TotalByYear[year]), offset.Add(geo.Pt(165, 2+monthSize*0.8)), monthSize, AnchorStart, text)
		for m := range 12 {
			c.Text(time.Month(m + 1).String()[:3], offset.Add(geo.Pt(15.5*float64(m), 14)), monthSize, AnchorStart, text)
		}

		x := offset.X
	weeks:
		for range 54 {
			y := offset.Y + yearSize + 2
			for range 7 {
				if day.Year() > year {
					break weeks
				}
				y += step
				c.Rect(geo.Pt(x, y), dim, d.dayColor(p, day))
				day = day.AddDate(0, 0, 1)
			}
			x += step
		}
		offset.Y += step*9 + yearSize + 1.5
	}
	return nil
}

// dayColor shades a day by its length. Days between the two special
// distances use the special gradient; days beyond the second use the
// second special colour outright.
func (*GithubDrawer) dayColor(p *Poster, day time.Time) color.Color {
	tracks, ok := p.TracksByDate[day.Format(track.DateLayout)]
	if !ok {
		return emptyDayColor
	}
	length := sumLength(tracks)
	if p.SpecialDistance2 > 0 && length >= p.SpecialDistance2 {
		return p.colors.special2
	}
	special := p.SpecialDistance > 0 && p.SpecialDistance < length && (p.SpecialDistance2 <= 0 || length < p.SpecialDistance2)
	return p.colorFor(p.LengthRangeByDate, length, special)
}
