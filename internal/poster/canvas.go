package poster

import (
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/font/liberation"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/banshee-data/trackposter/internal/geo"
)

func init() {
	font.DefaultCache.Add(liberation.Collection())
}

var sansFont = font.Font{Typeface: "Liberation", Variant: "Sans"}

// Anchor is the horizontal alignment of a text run.
type Anchor int

const (
	AnchorStart Anchor = iota
	AnchorMiddle
	AnchorEnd
)

// Canvas draws in poster coordinates: millimetres with the origin at the
// top-left corner and y growing downward.
type Canvas struct {
	svg    *vgsvg.Canvas
	width  float64
	height float64
}

// NewCanvas returns a blank canvas of the given size in millimetres.
func NewCanvas(width, height float64) *Canvas {
	return &Canvas{
		svg:    vgsvg.New(vg.Length(width)*vg.Millimeter, vg.Length(height)*vg.Millimeter),
		width:  width,
		height: height,
	}
}

// Size returns the canvas extent.
func (c *Canvas) Size() geo.XY { return geo.Pt(c.width, c.height) }

func (c *Canvas) pt(p geo.XY) vg.Point {
	return vg.Point{
		X: vg.Length(p.X) * vg.Millimeter,
		Y: vg.Length(c.height-p.Y) * vg.Millimeter,
	}
}

func mm(v float64) vg.Length { return vg.Length(v) * vg.Millimeter }

// Rect fills the axis-aligned rectangle at offset with the given size.
func (c *Canvas) Rect(offset, size geo.XY, fill color.Color) {
	var p vg.Path
	p.Move(c.pt(offset))
	p.Line(c.pt(offset.Add(geo.Pt(size.X, 0))))
	p.Line(c.pt(offset.Add(size)))
	p.Line(c.pt(offset.Add(geo.Pt(0, size.Y))))
	p.Close()
	c.svg.SetColor(fill)
	c.svg.Fill(p)
}

// Polyline strokes pts as one open path.
func (c *Canvas) Polyline(pts []geo.XY, stroke color.Color, width float64) {
	if len(pts) == 0 {
		return
	}
	var p vg.Path
	p.Move(c.pt(pts[0]))
	for _, q := range pts[1:] {
		p.Line(c.pt(q))
	}
	if len(pts) == 1 {
		p.Line(c.pt(pts[0]))
	}
	c.svg.SetLineWidth(mm(width))
	c.svg.SetColor(stroke)
	c.svg.Stroke(p)
}

// Line strokes a single segment.
func (c *Canvas) Line(a, b geo.XY, stroke color.Color, width float64) {
	c.Polyline([]geo.XY{a, b}, stroke, width)
}

// Circle strokes a circle outline.
func (c *Canvas) Circle(center geo.XY, r float64, stroke color.Color, width float64) {
	pts := arcPoints(center, r, 0, 2*math.Pi)
	c.Polyline(pts, stroke, width)
}

// Sector fills the ring segment between radii r1 and r2 from angle a1 to a2.
// Angles are radians measured clockwise from twelve o'clock.
func (c *Canvas) Sector(center geo.XY, r1, r2, a1, a2 float64, fill color.Color) {
	outer := arcPoints(center, r2, a1, a2)
	inner := arcPoints(center, r1, a1, a2)
	var p vg.Path
	p.Move(c.pt(inner[0]))
	for _, q := range outer {
		p.Line(c.pt(q))
	}
	for i := len(inner) - 1; i >= 0; i-- {
		p.Line(c.pt(inner[i]))
	}
	p.Close()
	c.svg.SetColor(fill)
	c.svg.Fill(p)
}

// Polar returns the point at radius r and angle a (clockwise from north).
func Polar(center geo.XY, r, a float64) geo.XY {
	return center.Add(geo.Pt(math.Sin(a), -math.Cos(a)).Mul(r))
}

func arcPoints(center geo.XY, r, a1, a2 float64) []geo.XY {
	n := int(math.Ceil(math.Abs(a2-a1)/(math.Pi/90))) + 1
	if n < 2 {
		n = 2
	}
	pts := make([]geo.XY, n)
	for i := range pts {
		a := a1 + (a2-a1)*float64(i)/float64(n-1)
		pts[i] = Polar(center, r, a)
	}
	return pts
}

// Text writes s with its baseline at at.Y. size is the font size in mm.
func (c *Canvas) Text(s string, at geo.XY, size float64, anchor Anchor, fill color.Color) {
	if s == "" {
		return
	}
	face := font.DefaultCache.Lookup(sansFont, mm(size))
	switch anchor {
	case AnchorMiddle:
		at.X -= float64(face.Width(s)/vg.Millimeter) / 2
	case AnchorEnd:
		at.X -= float64(face.Width(s) / vg.Millimeter)
	}
	c.svg.SetColor(fill)
	c.svg.FillString(face, c.pt(at), s)
}

// WriteTo writes the SVG document.
func (c *Canvas) WriteTo(w io.Writer) (int64, error) {
	return c.svg.WriteTo(w)
}
