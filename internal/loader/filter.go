package loader

import (
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/banshee-data/trackposter/internal/monitoring"
	"github.com/banshee-data/trackposter/internal/track"
)

// filter drops tracks that are empty, untimed, outside the year range, too
// short or of the wrong activity type, and marks special ones.
func (l *Loader) filter(tracks []*track.Track) []*track.Track {
	var out []*track.Track
	for _, t := range tracks {
		if reason := l.reject(t); reason != "" {
			monitoring.Debugf("Filtered %v: %s", t.FileNames, reason)
			continue
		}
		for _, name := range t.FileNames {
			if l.special[filepath.Base(name)] {
				t.Special = true
			}
		}
		out = append(out, t)
	}
	return out
}

func (l *Loader) reject(t *track.Track) string {
	switch {
	case t.Length <= 0:
		return "zero length"
	case !t.HasTimes():
		return "missing start or end time"
	case !l.opts.Years.Contains(t.Year()):
		return "outside year range " + l.opts.Years.String()
	case l.opts.MinLength > 0 && t.Length < l.opts.MinLength:
		return "shorter than minimum length"
	case !matchesActivity(l.opts.ActivityType, t.ActivityType):
		return "activity type " + t.ActivityType
	}
	return ""
}

func matchesActivity(want, got string) bool {
	return strings.EqualFold(want, AllActivities) || strings.EqualFold(want, got)
}

// Merge sorts tracks by start time and folds each track into its predecessor
// when it starts after, but less than gap after, the predecessor ends. The
// input slice is reordered.
func Merge(tracks []*track.Track, gap time.Duration) []*track.Track {
	slices.SortStableFunc(tracks, func(a, b *track.Track) int {
		return a.StartTime.Compare(b.StartTime)
	})

	var merged []*track.Track
	for _, t := range tracks {
		if n := len(merged); n > 0 {
			prev := merged[n-1]
			dt := t.StartTime.Sub(prev.EndTime)
			if dt > 0 && dt < gap {
				prev.Append(t)
				continue
			}
		}
		merged = append(merged, t)
	}
	return merged
}
