package units

import (
	"sync"
	"time"

	"github.com/bradfitz/latlong"
)

// TimezoneAdjuster moves timestamps recorded without an offset into the
// civil time of the place they were recorded.
type TimezoneAdjuster struct {
	mu   sync.Mutex
	locs map[string]*time.Location

	// lookup is latlong.LookupZoneName unless overridden in tests.
	lookup func(lat, lng float64) string
}

// NewTimezoneAdjuster returns an adjuster backed by the latlong zone table.
func NewTimezoneAdjuster() *TimezoneAdjuster {
	return &TimezoneAdjuster{
		locs:   make(map[string]*time.Location),
		lookup: latlong.LookupZoneName,
	}
}

// Adjust returns t in the local zone at (lat, lng). Timestamps that already
// carry a non-zero offset are returned unchanged, as are timestamps whose
// location has no known zone.
func (a *TimezoneAdjuster) Adjust(t time.Time, lat, lng float64) time.Time {
	if t.IsZero() {
		return t
	}
	if _, off := t.Zone(); off != 0 {
		return t
	}
	loc := a.location(lat, lng)
	if loc == nil {
		return t.UTC()
	}
	return t.In(loc)
}

func (a *TimezoneAdjuster) location(lat, lng float64) *time.Location {
	name := a.lookup(lat, lng)
	if name == "" {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if loc, ok := a.locs[name]; ok {
		return loc
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		loc = nil
	}
	a.locs[name] = loc
	return loc
}
