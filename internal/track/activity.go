package track

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/twpayne/go-polyline"

	"github.com/banshee-data/trackposter/internal/geo"
	"github.com/banshee-data/trackposter/internal/units"
)

// Activity is one entry of a pre-fetched activity export: the summary a
// fitness service returns for a recorded workout.
type Activity struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	StartDate   time.Time `json:"start_date"`
	ElapsedTime int64     `json:"elapsed_time"`
	Distance    float64   `json:"distance"`
	Map         struct {
		SummaryPolyline string `json:"summary_polyline"`
	} `json:"map"`
}

// ParseActivities decodes an export file. The export must be a JSON array;
// anything else is a parameter-level error.
func ParseActivities(data []byte) ([]Activity, error) {
	var acts []Activity
	if err := json.Unmarshal(data, &acts); err != nil {
		return nil, fmt.Errorf("decode activity export: %w", err)
	}
	return acts, nil
}

// FileName identifies the activity in logs and special-file matching.
func (a Activity) FileName() string {
	return fmt.Sprintf("activity-%d", a.ID)
}

// Track converts the activity summary into a Track.
func (a Activity) Track() (*Track, error) {
	name := a.FileName()
	if a.StartDate.IsZero() || a.ElapsedTime <= 0 {
		return nil, newLoadError(MissingTimes, name, nil)
	}
	if a.Distance <= 0 {
		return nil, newLoadError(ZeroLength, name, nil)
	}

	t := &Track{
		FileNames:    []string{name},
		StartTime:    a.StartDate,
		EndTime:      a.StartDate.Add(time.Duration(a.ElapsedTime) * time.Second),
		Length:       units.Meters(a.Distance),
		ActivityType: strings.ToLower(a.Type),
	}
	if a.Map.SummaryPolyline != "" {
		coords, _, err := polyline.DecodeCoords([]byte(a.Map.SummaryPolyline))
		if err != nil {
			return nil, newLoadError(Malformed, name, err)
		}
		line := make(geo.Polyline, 0, len(coords))
		for _, c := range coords {
			line = append(line, orb.Point{c[1], c[0]})
		}
		if len(line) > 0 {
			t.Polylines = []geo.Polyline{line}
		}
	}
	return t, nil
}
