// Package export writes loaded tracks and poster statistics to formats other
// tools can read: GeoJSON for GIS viewers and an HTML chart page.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/banshee-data/trackposter/internal/track"
)

// FeatureCollection converts tracks to one MultiLineString feature each.
func FeatureCollection(tracks []*track.Track) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, t := range tracks {
		lines := make(orb.MultiLineString, 0, len(t.Polylines))
		for _, l := range t.Polylines {
			lines = append(lines, orb.LineString(l))
		}
		f := geojson.NewFeature(lines)
		f.Properties["start"] = t.StartTime.Format(time.RFC3339)
		f.Properties["end"] = t.EndTime.Format(time.RFC3339)
		f.Properties["length_m"] = float64(t.Length)
		f.Properties["special"] = t.Special
		f.Properties["files"] = t.FileNames
		if t.ActivityType != "" {
			f.Properties["activity"] = t.ActivityType
		}
		fc.Append(f)
	}
	return fc
}

// WriteGeoJSON encodes tracks as a GeoJSON FeatureCollection.
func WriteGeoJSON(w io.Writer, tracks []*track.Track) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FeatureCollection(tracks)); err != nil {
		return fmt.Errorf("failed to encode geojson: %w", err)
	}
	return nil
}
