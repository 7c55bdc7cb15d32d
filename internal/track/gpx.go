package track

import (
	"bytes"
	"encoding/xml"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/tkrajina/gpxgo/gpx"

	"github.com/banshee-data/trackposter/internal/geo"
	"github.com/banshee-data/trackposter/internal/units"
)

func parseGPX(data []byte, opts ParseOptions) (*Track, error) {
	doc, err := gpx.ParseBytes(data)
	if err != nil {
		return nil, err
	}

	start, end := doc.TimeBounds().StartTime, doc.TimeBounds().EndTime
	if start.IsZero() || end.IsZero() {
		// gpxgo drops timestamps carrying a non-zero UTC offset.
		start, end = pointTimeBounds(data)
	}
	if start.IsZero() || end.IsZero() {
		return nil, MissingTimes
	}
	length := doc.Length2D()
	if length == 0 {
		return nil, ZeroLength
	}
	if opts.SimplifyTolerance > 0 {
		doc.SimplifyTracks(opts.SimplifyTolerance)
	}

	t := &Track{
		StartTime: start,
		EndTime:   end,
		Length:    units.Meters(length),
	}
	for _, trk := range doc.Tracks {
		if t.ActivityType == "" {
			t.ActivityType = strings.ToLower(strings.TrimSpace(trk.Type))
		}
		for _, seg := range trk.Segments {
			if len(seg.Points) == 0 {
				continue
			}
			line := make(geo.Polyline, 0, len(seg.Points))
			for _, pt := range seg.Points {
				line = append(line, orb.Point{pt.Longitude, pt.Latitude})
			}
			t.Polylines = append(t.Polylines, line)
		}
	}
	return t, nil
}

type gpxTimes struct {
	Tracks []struct {
		Segments []struct {
			Points []struct {
				Time string `xml:"time"`
			} `xml:"trkpt"`
		} `xml:"trkseg"`
	} `xml:"trk"`
}

// pointTimeBounds returns the earliest and latest RFC 3339 track point
// timestamps in data, keeping their UTC offset. Unparseable times are skipped.
func pointTimeBounds(data []byte) (start, end time.Time) {
	var doc gpxTimes
	if err := xml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return time.Time{}, time.Time{}
	}
	for _, trk := range doc.Tracks {
		for _, seg := range trk.Segments {
			for _, pt := range seg.Points {
				ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(pt.Time))
				if err != nil {
					continue
				}
				if start.IsZero() || ts.Before(start) {
					start = ts
				}
				if end.IsZero() || ts.After(end) {
					end = ts
				}
			}
		}
	}
	return start, end
}
