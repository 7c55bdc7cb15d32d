package poster

import (
	"errors"
	"fmt"
	"image/color"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/banshee-data/trackposter/internal/geo"
	"github.com/banshee-data/trackposter/internal/track"
	"github.com/banshee-data/trackposter/internal/units"
)

// ErrUnknownDrawer is returned for a layout name with no registered drawer.
var ErrUnknownDrawer = errors.New("unknown poster type")

// Drawer renders the tracks area of a poster.
type Drawer interface {
	Name() string
	Draw(c *Canvas, p *Poster, size, offset geo.XY) error
}

// DrawerOptions carries the per-layout settings the CLI exposes.
type DrawerOptions struct {
	Circular CircularOptions
	Heatmap  HeatmapOptions
}

// Drawers returns one drawer per layout, keyed by name.
func Drawers(opts DrawerOptions) map[string]Drawer {
	all := []Drawer{
		&GridDrawer{},
		&CalendarDrawer{},
		&CircularDrawer{Options: opts.Circular},
		&HeatmapDrawer{Options: opts.Heatmap},
		&GithubDrawer{},
	}
	m := make(map[string]Drawer, len(all))
	for _, d := range all {
		m[d.Name()] = d
	}
	return m
}

// DrawerNames lists the registered layouts in sorted order.
func DrawerNames() []string {
	names := make([]string, 0, 5)
	for name := range Drawers(DrawerOptions{}) {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// NewDrawer looks up a drawer by name.
func NewDrawer(name string, opts DrawerOptions) (Drawer, error) {
	d, ok := Drawers(opts)[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (want one of %s)", ErrUnknownDrawer, name, strings.Join(DrawerNames(), ", "))
	}
	return d, nil
}

// drawTrack projects t onto its own bounding box within the given area.
func drawTrack(c *Canvas, t *track.Track, size, offset geo.XY, col color.Color, width float64) {
	for _, line := range geo.Project(t.Bounds(), size, offset, t.Polylines) {
		c.Polyline(line, col, width)
	}
}

// day sums the tracks recorded on a date. special is set when any of them
// is special; ok is false for a day without tracks.
func (p *Poster) day(date string) (length units.Meters, special, ok bool) {
	tracks, ok := p.TracksByDate[date]
	if !ok {
		return 0, false, false
	}
	for _, t := range tracks {
		length += t.Length
		special = special || t.Special
	}
	return length, special, true
}

// yearCount returns the number of years on the poster.
func (p *Poster) yearCount() int {
	n, _ := p.Years.Count()
	return n
}

// mondayWeekday numbers weekdays from Monday = 0.
func mondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

var emptyDayColor = mustColor("#444444")

func mustColor(s string) colorful.Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

func itoa(v int) string { return strconv.Itoa(v) }
