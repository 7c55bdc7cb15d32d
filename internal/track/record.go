package track

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/paulmach/orb"

	"github.com/banshee-data/trackposter/internal/geo"
	"github.com/banshee-data/trackposter/internal/units"
)

// RecordTimeLayout is the timestamp format of cache records. Times are
// written in UTC.
const RecordTimeLayout = "2006-01-02 15:04:05"

// Record is the on-disk cache form of a Track.
type Record struct {
	Start        string          `json:"start"`
	End          string          `json:"end"`
	Length       float64         `json:"length"`
	Segments     [][]RecordPoint `json:"segments"`
	ActivityType string          `json:"activity_type,omitempty"`
}

// RecordPoint is one position in a cache record.
type RecordPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ToRecord converts t to its cache form.
func (t *Track) ToRecord() Record {
	r := Record{
		Start:        t.StartTime.UTC().Format(RecordTimeLayout),
		End:          t.EndTime.UTC().Format(RecordTimeLayout),
		Length:       float64(t.Length),
		Segments:     make([][]RecordPoint, 0, len(t.Polylines)),
		ActivityType: t.ActivityType,
	}
	for _, line := range t.Polylines {
		seg := make([]RecordPoint, len(line))
		for i, p := range line {
			seg[i] = RecordPoint{Lat: p.Lat(), Lng: p.Lon()}
		}
		r.Segments = append(r.Segments, seg)
	}
	return r
}

// MarshalRecord encodes t as a cache record.
func (t *Track) MarshalRecord() ([]byte, error) {
	return json.Marshal(t.ToRecord())
}

// UnmarshalRecord decodes a cache record. Timestamps are read as UTC.
func UnmarshalRecord(data []byte) (*Track, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return r.Track()
}

// Track converts the record back to a Track without file names.
func (r Record) Track() (*Track, error) {
	start, err := time.Parse(RecordTimeLayout, r.Start)
	if err != nil {
		return nil, fmt.Errorf("record start: %w", err)
	}
	end, err := time.Parse(RecordTimeLayout, r.End)
	if err != nil {
		return nil, fmt.Errorf("record end: %w", err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("record ends %s before it starts %s", r.End, r.Start)
	}
	if r.Length < 0 {
		return nil, fmt.Errorf("record has negative length %v", r.Length)
	}

	t := &Track{
		StartTime:    start,
		EndTime:      end,
		Length:       units.Meters(r.Length),
		ActivityType: strings.ToLower(r.ActivityType),
		Polylines:    make([]geo.Polyline, 0, len(r.Segments)),
	}
	for _, seg := range r.Segments {
		line := make(geo.Polyline, len(seg))
		for i, p := range seg {
			line[i] = orb.Point{p.Lng, p.Lat}
		}
		t.Polylines = append(t.Polylines, line)
	}
	return t, nil
}
