// Package poster lays loaded tracks out on an SVG poster. A Poster holds
// the aggregates every layout needs; a Drawer renders the tracks area.
package poster

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/trackposter/internal/geo"
	"github.com/banshee-data/trackposter/internal/ranges"
	"github.com/banshee-data/trackposter/internal/track"
	"github.com/banshee-data/trackposter/internal/units"
)

// ErrNoTracks is returned when a poster is drawn without tracks.
var ErrNoTracks = errors.New("no tracks to draw")

const (
	DefaultWidth  = 200.0
	DefaultHeight = 300.0
)

// Colors are the poster's hex colours. Empty Track2 and Special2 fall back
// to Track and Special.
type Colors struct {
	Background string
	Text       string
	Special    string
	Special2   string
	Track      string
	Track2     string
}

// DefaultColors returns the standard dark palette.
func DefaultColors() Colors {
	return Colors{
		Background: "#222222",
		Text:       "#FFFFFF",
		Special:    "#FFFF00",
		Track:      "#4DD2FF",
	}
}

type palette struct {
	background, text, special, special2, track, track2 colorful.Color
}

func (c Colors) parse() (palette, error) {
	var p palette
	fields := []struct {
		dst      *colorful.Color
		val, alt string
		name     string
	}{
		{&p.background, c.Background, "", "background"},
		{&p.text, c.Text, "", "text"},
		{&p.special, c.Special, "", "special"},
		{&p.special2, c.Special2, c.Special, "special2"},
		{&p.track, c.Track, "", "track"},
		{&p.track2, c.Track2, c.Track, "track2"},
	}
	for _, f := range fields {
		v := f.val
		if v == "" {
			v = f.alt
		}
		col, err := ParseColor(v)
		if err != nil {
			return palette{}, fmt.Errorf("%s color: %w", f.name, err)
		}
		*f.dst = col
	}
	return p, nil
}

// Statistics summarise the poster's tracks.
type Statistics struct {
	Count   int
	Total   units.Meters
	Min     units.Meters
	Max     units.Meters
	Average units.Meters
	Median  units.Meters
	// Weeks is the number of distinct ISO weeks with at least one track.
	Weeks int
}

// Weekly is the mean number of tracks per active week.
func (s Statistics) Weekly() float64 {
	if s.Weeks == 0 {
		return 0
	}
	return float64(s.Count) / float64(s.Weeks)
}

// Poster is the aggregate every drawer reads from.
type Poster struct {
	Title   string
	Athlete string
	Colors  Colors
	Units   units.Converter
	Width   float64
	Height  float64

	SpecialDistance  units.Meters
	SpecialDistance2 units.Meters

	Tracks            []*track.Track
	TracksByDate      map[string][]*track.Track
	LengthRange       ranges.QuantityRange
	LengthRangeByDate ranges.QuantityRange
	Years             ranges.YearRange
	TotalByYear       map[int]units.Meters
	Stats             Statistics

	colors palette
}

// New returns a poster with default size and colours.
func New() *Poster {
	return &Poster{
		Title:            "My Tracks",
		Colors:           DefaultColors(),
		Width:            DefaultWidth,
		Height:           DefaultHeight,
		SpecialDistance:  units.Km(10),
		SpecialDistance2: units.Km(20),
		TracksByDate:     map[string][]*track.Track{},
		TotalByYear:      map[int]units.Meters{},
	}
}

// SetTracks replaces the poster's tracks and recomputes every aggregate.
// A bounded Years range is kept; an unbounded one is derived from the
// tracks.
func (p *Poster) SetTracks(tracks []*track.Track) {
	p.Tracks = tracks
	p.TracksByDate = map[string][]*track.Track{}
	p.TotalByYear = map[int]units.Meters{}
	p.LengthRange.Clear()
	p.LengthRangeByDate.Clear()
	derive := p.Years.IsAll()

	for _, t := range tracks {
		if derive {
			p.Years.Add(t.Year())
		}
		p.TracksByDate[t.Date()] = append(p.TracksByDate[t.Date()], t)
		p.TotalByYear[t.Year()] += t.Length
		p.LengthRange.Extend(t.Length)
	}
	for _, day := range p.TracksByDate {
		p.LengthRangeByDate.Extend(sumLength(day))
	}
	p.Stats = computeStatistics(tracks)
}

func sumLength(tracks []*track.Track) units.Meters {
	var total units.Meters
	for _, t := range tracks {
		total += t.Length
	}
	return total
}

func computeStatistics(tracks []*track.Track) Statistics {
	if len(tracks) == 0 {
		return Statistics{}
	}
	lengths := make([]float64, len(tracks))
	weeks := map[[2]int]bool{}
	for i, t := range tracks {
		lengths[i] = float64(t.Length)
		y, w := t.StartTime.ISOWeek()
		weeks[[2]int{y, w}] = true
	}
	sorted := slices.Clone(lengths)
	sort.Float64s(sorted)
	return Statistics{
		Count:   len(tracks),
		Total:   units.Meters(floats.Sum(lengths)),
		Min:     units.Meters(floats.Min(lengths)),
		Max:     units.Meters(floats.Max(lengths)),
		Average: units.Meters(stat.Mean(lengths, nil)),
		Median:  units.Meters(stat.Quantile(0.5, stat.Empirical, sorted, nil)),
		Weeks:   len(weeks),
	}
}

// SizeAdjuster is implemented by drawers that need a different poster size
// than the configured one.
type SizeAdjuster interface {
	AdjustSize(p *Poster)
}

// Draw renders the poster with d as the tracks layout and writes SVG to w.
func (p *Poster) Draw(d Drawer, w io.Writer) error {
	if len(p.Tracks) == 0 {
		return ErrNoTracks
	}
	pal, err := p.Colors.parse()
	if err != nil {
		return err
	}
	p.colors = pal
	if a, ok := d.(SizeAdjuster); ok {
		a.AdjustSize(p)
	}

	c := NewCanvas(p.Width, p.Height)
	c.Rect(geo.Pt(0, 0), geo.Pt(p.Width, p.Height), pal.background)
	size := geo.Pt(p.Width-20, p.Height-60)
	offset := geo.Pt(10, 30)
	if err := d.Draw(c, p, size, offset); err != nil {
		return fmt.Errorf("%s drawer: %w", d.Name(), err)
	}
	p.drawHeader(c)
	p.drawFooter(c)
	_, err = c.WriteTo(w)
	return err
}

func (p *Poster) drawHeader(c *Canvas) {
	c.Text(p.Title, geo.Pt(10, 20), 12, AnchorStart, p.colors.text)
}

func (p *Poster) drawFooter(c *Canvas) {
	const small, value = 4.0, 9.0
	h := p.Height
	col := p.colors.text
	s := p.Stats
	c.Text("ATHLETE", geo.Pt(10, h-20), small, AnchorStart, col)
	c.Text(p.Athlete, geo.Pt(10, h-10), value, AnchorStart, col)
	c.Text("STATISTICS", geo.Pt(120, h-20), small, AnchorStart, col)
	c.Text(fmt.Sprintf("Number: %d", s.Count), geo.Pt(120, h-15), small, AnchorStart, col)
	c.Text(fmt.Sprintf("Weekly: %.1f", s.Weekly()), geo.Pt(120, h-10), small, AnchorStart, col)
	c.Text("Total: "+p.Units.Format(s.Total), geo.Pt(141, h-15), small, AnchorStart, col)
	c.Text("Avg: "+p.Units.Format(s.Average), geo.Pt(141, h-10), small, AnchorStart, col)
	c.Text("Min: "+p.Units.Format(s.Min), geo.Pt(167, h-15), small, AnchorStart, col)
	c.Text("Max: "+p.Units.Format(s.Max), geo.Pt(167, h-10), small, AnchorStart, col)
}

// colorFor picks a track colour by where length falls in r.
func (p *Poster) colorFor(r ranges.QuantityRange, length units.Meters, special bool) colorful.Color {
	pos := r.RelativePosition(length)
	if special {
		return InterpolateColor(p.colors.special, p.colors.special2, pos)
	}
	return InterpolateColor(p.colors.track, p.colors.track2, pos)
}

// unitLabel abbreviates a length for small cell labels.
func (p *Poster) unitLabel(length units.Meters) string {
	v := p.Units.Display(length)
	if v >= 10 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}
