package poster

import (
	"errors"

	"github.com/banshee-data/trackposter/internal/geo"
)

// ErrNoGrid is returned when the tracks cannot be packed into the area.
var ErrNoGrid = errors.New("unable to compute grid")

// GridDrawer draws every track in its own square cell.
type GridDrawer struct{}

func (*GridDrawer) Name() string { return "grid" }

func (*GridDrawer) Draw(c *Canvas, p *Poster, size, offset geo.XY) error {
	g, ok := geo.ComputeGrid(len(p.Tracks), size)
	if !ok {
		return ErrNoGrid
	}
	cell := g.CellSize
	var spacing geo.XY
	if g.Columns > 1 {
		spacing.X = (size.X - cell*float64(g.Columns)) / float64(g.Columns-1)
	}
	if g.Rows > 1 {
		spacing.Y = (size.Y - cell*float64(g.Rows)) / float64(g.Rows-1)
	}
	offset.X += (size.X - float64(g.Columns)*cell - float64(g.Columns-1)*spacing.X) / 2
	offset.Y += (size.Y - float64(g.Rows)*cell - float64(g.Rows-1)*spacing.Y) / 2

	step := geo.Pt(cell+spacing.X, cell+spacing.Y)
	inner := geo.Pt(0.9*cell, 0.9*cell)
	margin := geo.Pt(0.05*cell, 0.05*cell)
	for i, t := range p.Tracks {
		pos := geo.Scale(geo.Pt(float64(i%g.Columns), float64(i/g.Columns)), step)
		col := p.colorFor(p.LengthRange, t.Length, t.Special)
		drawTrack(c, t, inner, offset.Add(margin).Add(pos), col, 0.5)
	}
	return nil
}
