package poster

import (
	"time"

	"github.com/banshee-data/trackposter/internal/geo"
	"github.com/banshee-data/trackposter/internal/track"
)

// CalendarDrawer draws one month-per-row calendar per year, shading each
// day by its total length.
type CalendarDrawer struct{}

func (*CalendarDrawer) Name() string { return "calendar" }

func (d *CalendarDrawer) Draw(c *Canvas, p *Poster, size, offset geo.XY) error {
	g, ok := geo.ComputeGrid(p.yearCount(), size)
	if !ok {
		return ErrNoGrid
	}
	cell := geo.Pt(size.X/float64(g.Columns), size.Y/float64(g.Rows))
	margin := geo.Pt(4, 8)
	if g.Columns <= 1 {
		margin.X = 0
	}
	if g.Rows <= 1 {
		margin.Y = 0
	}
	sub := cell.Sub(margin.Mul(2))
	x, y := 0, 0
	for year := range p.Years.Years() {
		d.drawYear(c, p, sub, offset.Add(margin).Add(geo.Scale(cell, geo.Pt(float64(x), float64(y)))), year)
		x++
		if x >= g.Columns {
			x, y = 0, y+1
		}
	}
	return nil
}

func (*CalendarDrawer) drawYear(c *Canvas, p *Poster, size, offset geo.XY, year int) {
	minSize := min(size.X, size.Y)
	yearSize := minSize * 4 / 80
	monthSize := minSize * 3 / 80
	daySize := minSize / 80
	text := p.colors.text

	c.Text(itoa(year), offset, yearSize, AnchorStart, text)
	offset.Y += yearSize
	size.Y -= yearSize

	countX := 31
	for m := time.January; m <= time.December; m++ {
		first := time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
		countX = max(countX, mondayWeekday(first)+daysIn(year, m))
	}
	cellSize := min(size.X/float64(countX), size.Y/36)
	spacing := geo.Pt(
		(size.X-cellSize*float64(countX))/float64(countX-1),
		(size.Y-cellSize*36)/11,
	)

	for i := range 12 {
		month := time.Month(i + 1)
		yPos := offset.Y + float64(i*3+1)*cellSize + float64(i)*spacing.Y
		c.Text(month.String()[:3], geo.Pt(offset.X, yPos-2+monthSize*0.8), monthSize, AnchorStart, text)

		date := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		dayOffset := mondayWeekday(date)
		for date.Month() == month {
			xPos := offset.X + float64(dayOffset)*(cellSize+spacing.X)
			pos := geo.Pt(xPos+0.05*cellSize, yPos+1.15*cellSize)
			dim := geo.Pt(0.9*cellSize, 0.9*cellSize)
			c.Text(date.Weekday().String()[:1], geo.Pt(xPos+0.5*cellSize, yPos+0.5*cellSize+daySize/3), daySize, AnchorMiddle, text)

			if length, special, ok := p.day(date.Format(track.DateLayout)); ok {
				c.Rect(pos, dim, p.colorFor(p.LengthRangeByDate, length, special))
				c.Text(p.unitLabel(length), pos.Add(geo.Pt(dim.X/2, dim.Y+daySize)), daySize, AnchorMiddle, text)
			} else {
				c.Rect(pos, dim, emptyDayColor)
			}
			date = date.AddDate(0, 0, 1)
			dayOffset++
		}
	}
}

func daysIn(year int, m time.Month) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
