// Package testutil provides shared test fixtures: synthetic GPX and FIT
// recordings with predictable geometry and timing.
package testutil

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/muktihari/fit/encoder"
	"github.com/muktihari/fit/profile/mesgdef"
	"github.com/muktihari/fit/profile/typedef"
	"github.com/muktihari/fit/proto"
)

// Walk describes a straight-line recording heading north-east from a start
// position with one fix every Interval.
type Walk struct {
	Start    time.Time
	Lat, Lng float64
	Points   int
	Step     float64 // degrees added to lat and lng per fix
	Interval time.Duration
	Type     string
}

// DefaultWalk is about 2.6 km over ten minutes near Freiburg.
func DefaultWalk(start time.Time) Walk {
	return Walk{
		Start:    start,
		Lat:      47.99,
		Lng:      7.84,
		Points:   21,
		Step:     0.001,
		Interval: 30 * time.Second,
		Type:     "running",
	}
}

// End is the timestamp of the last fix.
func (w Walk) End() time.Time {
	return w.Start.Add(time.Duration(w.Points-1) * w.Interval)
}

func (w Walk) point(i int) (lat, lng float64, ts time.Time) {
	return w.Lat + float64(i)*w.Step, w.Lng + float64(i)*w.Step, w.Start.Add(time.Duration(i) * w.Interval)
}

// GPX renders the walk as a GPX 1.1 document with one track segment.
// Timestamps keep the UTC offset of Start.
func (w Walk) GPX() []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<gpx version="1.1" creator="testutil" xmlns="http://www.topografix.com/GPX/1/1">` + "\n")
	b.WriteString("<trk>\n")
	if w.Type != "" {
		fmt.Fprintf(&b, "<type>%s</type>\n", w.Type)
	}
	b.WriteString("<trkseg>\n")
	for i := 0; i < w.Points; i++ {
		lat, lng, ts := w.point(i)
		fmt.Fprintf(&b, `<trkpt lat="%.6f" lon="%.6f"><time>%s</time></trkpt>`+"\n",
			lat, lng, ts.Format(time.RFC3339))
	}
	b.WriteString("</trkseg>\n</trk>\n</gpx>\n")
	return []byte(b.String())
}

// UntimedGPX renders the walk without timestamps.
func (w Walk) UntimedGPX() []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<gpx version="1.1" creator="testutil" xmlns="http://www.topografix.com/GPX/1/1"><trk><trkseg>` + "\n")
	for i := 0; i < w.Points; i++ {
		lat, lng, _ := w.point(i)
		fmt.Fprintf(&b, `<trkpt lat="%.6f" lon="%.6f"></trkpt>`+"\n", lat, lng)
	}
	b.WriteString("</trkseg></trk></gpx>\n")
	return []byte(b.String())
}

func toSemicircles(deg float64) int32 {
	return int32(math.Round(deg * (1 << 31) / 180))
}

// FIT encodes the walk as a FIT activity file with one record per fix and a
// running session.
func (w Walk) FIT(t testing.TB) []byte {
	t.Helper()

	fit := &proto.FIT{}
	fit.Messages = append(fit.Messages, mesgdef.NewFileId(nil).
		SetType(typedef.FileActivity).
		SetManufacturer(typedef.ManufacturerDevelopment).
		SetTimeCreated(w.Start).
		ToMesg(nil))
	for i := 0; i < w.Points; i++ {
		lat, lng, ts := w.point(i)
		fit.Messages = append(fit.Messages, mesgdef.NewRecord(nil).
			SetTimestamp(ts).
			SetPositionLat(toSemicircles(lat)).
			SetPositionLong(toSemicircles(lng)).
			ToMesg(nil))
	}
	fit.Messages = append(fit.Messages, mesgdef.NewSession(nil).
		SetTimestamp(w.End()).
		SetStartTime(w.Start).
		SetSport(typedef.SportRunning).
		ToMesg(nil))

	var buf bytes.Buffer
	if err := encoder.New(&buf).Encode(fit); err != nil {
		t.Fatalf("encode FIT fixture: %v", err)
	}
	return buf.Bytes()
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
