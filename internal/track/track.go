// Package track defines the normalized activity record the loader produces
// and the parsers that turn GPX, FIT, cache-record and activity-export data
// into it.
package track

import (
	"time"

	"github.com/paulmach/orb"

	"github.com/banshee-data/trackposter/internal/geo"
	"github.com/banshee-data/trackposter/internal/units"
)

// DateLayout keys tracks by calendar day.
const DateLayout = "2006-01-02"

// Track is one recorded activity, possibly assembled from several files.
type Track struct {
	FileNames    []string
	Polylines    []geo.Polyline
	StartTime    time.Time
	EndTime      time.Time
	Length       units.Meters
	Special      bool
	ActivityType string
}

// HasTimes reports whether both start and end are set.
func (t *Track) HasTimes() bool {
	return !t.StartTime.IsZero() && !t.EndTime.IsZero()
}

// Year is the calendar year of the start time.
func (t *Track) Year() int { return t.StartTime.Year() }

// Date is the start day formatted with DateLayout.
func (t *Track) Date() string { return t.StartTime.Format(DateLayout) }

// Append merges other into t: the end time moves to other's end, geometry
// and file names are concatenated, lengths summed and Special ORed.
func (t *Track) Append(other *Track) {
	t.EndTime = other.EndTime
	t.Polylines = append(t.Polylines, other.Polylines...)
	t.FileNames = append(t.FileNames, other.FileNames...)
	t.Length += other.Length
	t.Special = t.Special || other.Special
}

// Bounds returns the smallest box holding every point of the track.
func (t *Track) Bounds() geo.Bounds {
	b := geo.EmptyBounds()
	for _, line := range t.Polylines {
		for _, p := range line {
			b = b.Extend(p)
		}
	}
	return b
}

// FirstPoint returns the first recorded position, if any.
func (t *Track) FirstPoint() (orb.Point, bool) {
	for _, line := range t.Polylines {
		if len(line) > 0 {
			return line[0], true
		}
	}
	return orb.Point{}, false
}

// PointCount is the number of points across all polylines.
func (t *Track) PointCount() int {
	n := 0
	for _, line := range t.Polylines {
		n += len(line)
	}
	return n
}
