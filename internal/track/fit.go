package track

import (
	"bytes"
	"math"
	"strings"
	"time"

	"github.com/muktihari/fit/decoder"
	"github.com/muktihari/fit/profile/mesgdef"
	"github.com/muktihari/fit/profile/typedef"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"

	"github.com/banshee-data/trackposter/internal/geo"
)

// semicircles per degree (2^31 / 180)
const semicircleScale = 11930464.7111

// metres per degree of latitude, used to express the simplify tolerance in
// coordinate units.
const metersPerDegree = 111320.0

func parseFIT(data []byte, opts ParseOptions) (*Track, error) {
	dec := decoder.New(bytes.NewReader(data))

	var (
		start, end time.Time
		sport      string
		lines      []geo.Polyline
		cur        geo.Polyline
	)
	for dec.Next() {
		fit, err := dec.Decode()
		if err != nil {
			return nil, err
		}
		for i := range fit.Messages {
			msg := &fit.Messages[i]
			switch msg.Num {
			case typedef.MesgNumRecord:
				rec := mesgdef.NewRecord(msg)
				if !rec.Timestamp.IsZero() {
					ts := rec.Timestamp.UTC()
					if start.IsZero() || ts.Before(start) {
						start = ts
					}
					if ts.After(end) {
						end = ts
					}
				}
				if rec.PositionLat == math.MaxInt32 || rec.PositionLong == math.MaxInt32 {
					// A fix gap ends the current polyline.
					if len(cur) > 0 {
						lines = append(lines, cur)
						cur = nil
					}
					continue
				}
				cur = append(cur, orb.Point{
					float64(rec.PositionLong) / semicircleScale,
					float64(rec.PositionLat) / semicircleScale,
				})
			case typedef.MesgNumSession:
				if sport == "" {
					sport = strings.ToLower(mesgdef.NewSession(msg).Sport.String())
				}
			}
		}
	}
	if len(cur) > 0 {
		lines = append(lines, cur)
	}

	if start.IsZero() || end.IsZero() {
		return nil, MissingTimes
	}
	length := lineLength(lines)
	if length == 0 {
		return nil, ZeroLength
	}
	if opts.SimplifyTolerance > 0 {
		s := simplify.DouglasPeucker(opts.SimplifyTolerance / metersPerDegree)
		for i := range lines {
			lines[i] = s.Simplify(lines[i]).(orb.LineString)
		}
	}

	return &Track{
		StartTime:    start,
		EndTime:      end,
		Length:       length,
		ActivityType: sport,
		Polylines:    lines,
	}, nil
}
