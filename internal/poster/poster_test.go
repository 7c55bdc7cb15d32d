package poster

import (
	"bytes"
	"maps"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/trackposter/internal/geo"
	"github.com/banshee-data/trackposter/internal/ranges"
	"github.com/banshee-data/trackposter/internal/track"
	"github.com/banshee-data/trackposter/internal/units"
)

func makeTrack(start time.Time, km float64, lng, lat float64) *track.Track {
	line := geo.Polyline{
		{lng, lat},
		{lng + 0.01, lat + 0.005},
		{lng + 0.02, lat},
	}
	return &track.Track{
		Polylines: []geo.Polyline{line},
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Length:    units.Km(km),
	}
}

func samplePoster(t *testing.T) *Poster {
	t.Helper()
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 9, 0, 0, 0, time.UTC)
	}
	tracks := []*track.Track{
		makeTrack(day(2023, time.March, 4), 5, 7.84, 47.99),
		makeTrack(day(2023, time.March, 4).Add(3*time.Hour), 3, 7.85, 47.98),
		makeTrack(day(2023, time.July, 10), 12, 7.80, 48.01),
		makeTrack(day(2024, time.February, 29), 21, 7.90, 47.95),
	}
	tracks[2].Special = true
	p := New()
	p.Athlete = "Test Athlete"
	p.SetTracks(tracks)
	return p
}

func TestSetTracks(t *testing.T) {
	p := samplePoster(t)

	from, _ := p.Years.From()
	to, _ := p.Years.To()
	assert.Equal(t, 2023, from)
	assert.Equal(t, 2024, to)

	assert.Len(t, p.TracksByDate["2023-03-04"], 2)
	assert.Equal(t, []string{"2023-03-04", "2023-07-10", "2024-02-29"}, slices.Sorted(maps.Keys(p.TracksByDate)))

	want := map[int]units.Meters{2023: units.Km(20), 2024: units.Km(21)}
	if diff := cmp.Diff(want, p.TotalByYear); diff != "" {
		t.Errorf("TotalByYear mismatch (-want +got):\n%s", diff)
	}

	lo, _ := p.LengthRange.Lower()
	hi, _ := p.LengthRange.Upper()
	assert.Equal(t, units.Km(3), lo)
	assert.Equal(t, units.Km(21), hi)

	dayLo, _ := p.LengthRangeByDate.Lower()
	assert.Equal(t, units.Km(8), dayLo)
}

func TestStatistics(t *testing.T) {
	p := samplePoster(t)
	s := p.Stats
	assert.Equal(t, 4, s.Count)
	assert.InDelta(t, 41000, float64(s.Total), 1e-6)
	assert.InDelta(t, 3000, float64(s.Min), 1e-6)
	assert.InDelta(t, 21000, float64(s.Max), 1e-6)
	assert.InDelta(t, 10250, float64(s.Average), 1e-6)
	assert.InDelta(t, 5000, float64(s.Median), 1e-6)
	assert.Equal(t, 3, s.Weeks)
	assert.InDelta(t, 4.0/3.0, s.Weekly(), 1e-9)

	assert.Equal(t, Statistics{}, computeStatistics(nil))
	assert.Zero(t, Statistics{}.Weekly())
}

func TestSetTracks_KeepsBoundedYears(t *testing.T) {
	p := New()
	years, err := ranges.NewYearRange(2020, 2024)
	require.NoError(t, err)
	p.Years = years
	p.SetTracks([]*track.Track{makeTrack(time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC), 5, 7.8, 48)})
	assert.Equal(t, 5, p.yearCount())
}

func TestDraw_AllLayouts(t *testing.T) {
	center := orb.Point{7.85, 47.99}
	opts := DrawerOptions{
		Circular: CircularOptions{Rings: true},
		Heatmap:  HeatmapOptions{Center: &center, RadiusKm: 5},
	}
	for _, name := range DrawerNames() {
		t.Run(name, func(t *testing.T) {
			p := samplePoster(t)
			d, err := NewDrawer(name, opts)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, p.Draw(d, &buf))
			out := buf.String()
			assert.True(t, strings.Contains(out, "<svg"), "output is not SVG")
			assert.Contains(t, out, "</svg>")
		})
	}
}

func TestDrawerNames(t *testing.T) {
	assert.Equal(t, []string{"calendar", "circular", "github", "grid", "heatmap"}, DrawerNames())
}

func TestNewDrawer_Unknown(t *testing.T) {
	_, err := NewDrawer("spiral", DrawerOptions{})
	assert.ErrorIs(t, err, ErrUnknownDrawer)
}

func TestDraw_NoTracks(t *testing.T) {
	var buf bytes.Buffer
	err := New().Draw(&GridDrawer{}, &buf)
	assert.ErrorIs(t, err, ErrNoTracks)
	assert.Zero(t, buf.Len())
}

func TestDraw_BadColor(t *testing.T) {
	p := samplePoster(t)
	p.Colors.Track = "blue"
	err := p.Draw(&GridDrawer{}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "track color")
}

func TestGithubDrawer_AdjustSize(t *testing.T) {
	p := samplePoster(t)
	(&GithubDrawer{}).AdjustSize(p)
	assert.Equal(t, 55.0+2*43, p.Height)
}

func TestGithubDrawer_DayColor(t *testing.T) {
	p := samplePoster(t)
	p.SpecialDistance = units.Km(10)
	p.SpecialDistance2 = units.Km(20)
	var err error
	p.colors, err = p.Colors.parse()
	require.NoError(t, err)
	d := &GithubDrawer{}

	empty := d.dayColor(p, time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, emptyDayColor, empty)

	over := d.dayColor(p, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, p.colors.special2, over)

	mid := d.dayColor(p, time.Date(2023, 7, 10, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, p.colorFor(p.LengthRangeByDate, units.Km(12), true), mid)

	plain := d.dayColor(p, time.Date(2023, 3, 4, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, p.colorFor(p.LengthRangeByDate, units.Km(8), false), plain)
}

func TestRingDistance(t *testing.T) {
	km := units.Km(1)
	tests := []struct {
		name   string
		max    units.Meters
		want   units.Meters
		wantOK bool
	}{
		{"short", units.Km(4), km, true},
		{"exactly five", units.Km(5), km, true},
		{"medium", units.Km(21), 5 * km, true},
		{"long", units.Km(240), 50 * km, true},
		{"too long", units.Km(300), 0, false},
		{"zero", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RingDistance(tt.max, km)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, float64(tt.want), float64(got), 1e-9)
		})
	}
}
