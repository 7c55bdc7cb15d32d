// Package loader turns a directory of track recordings into the filtered,
// merged list of tracks a poster is drawn from.
package loader

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/trackposter/internal/cache"
	"github.com/banshee-data/trackposter/internal/fsutil"
	"github.com/banshee-data/trackposter/internal/monitoring"
	"github.com/banshee-data/trackposter/internal/ranges"
	"github.com/banshee-data/trackposter/internal/timeutil"
	"github.com/banshee-data/trackposter/internal/track"
	"github.com/banshee-data/trackposter/internal/units"
)

// ErrNotDirectory is returned when the source path is not a readable
// directory.
var ErrNotDirectory = errors.New("not a directory")

// Defaults applied by New for zero-valued options.
const (
	DefaultMinLength units.Meters  = 1000
	DefaultMergeGap  time.Duration = time.Hour
	AllActivities                  = "all"
)

// Options configures a Loader. Zero values select the defaults.
type Options struct {
	// Cache stores parsed tracks by content hash. Nil disables caching.
	Cache cache.Store
	// MinLength drops tracks shorter than this. Negative disables the check.
	MinLength units.Meters
	// Years limits tracks by the year they start in.
	Years ranges.YearRange
	// ActivityType keeps only tracks of this type; "all" or "" keeps all.
	ActivityType string
	// SpecialFileNames marks tracks whose source base name is listed.
	SpecialFileNames []string
	// Workers bounds concurrent parsing; 0 uses every CPU, 1 or less parses
	// sequentially.
	Workers int
	// MergeGap joins a track into its predecessor when it starts less than
	// this long after the predecessor ends. Negative disables merging.
	MergeGap time.Duration
	// SimplifyTolerance in metres; zero selects the parser default and a
	// negative value keeps every point.
	SimplifyTolerance float64
	// Timezone, when set, moves offset-less timestamps into local time.
	Timezone *units.TimezoneAdjuster
	// Extensions lists accepted source file extensions.
	Extensions []string
	// FS is the filesystem to read from.
	FS fsutil.FileSystem
	// Clock times each load for the summary log line.
	Clock timeutil.Clock
}

// Stats counts what happened during the most recent load.
type Stats struct {
	Listed   int
	Cached   int
	Parsed   int
	Failed   int
	Filtered int
	Merged   int
	Elapsed  time.Duration
	// FailedKinds breaks Failed down by track.Kind; 0 collects errors that
	// carry no kind.
	FailedKinds map[track.Kind]int
}

// Loader loads, filters and merges tracks.
type Loader struct {
	opts    Options
	special map[string]bool
	stats   Stats
}

// New returns a Loader with defaults filled in.
func New(opts Options) *Loader {
	if opts.MinLength == 0 {
		opts.MinLength = DefaultMinLength
	}
	if opts.MergeGap == 0 {
		opts.MergeGap = DefaultMergeGap
	}
	if opts.ActivityType == "" {
		opts.ActivityType = AllActivities
	}
	if opts.Workers == 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.SimplifyTolerance == 0 {
		opts.SimplifyTolerance = track.DefaultSimplifyTolerance
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = track.Extensions
	}
	if opts.FS == nil {
		opts.FS = fsutil.OSFileSystem{}
	}
	if opts.Clock == nil {
		opts.Clock = timeutil.RealClock{}
	}

	special := make(map[string]bool, len(opts.SpecialFileNames))
	for _, name := range opts.SpecialFileNames {
		special[filepath.Base(name)] = true
	}
	return &Loader{opts: opts, special: special}
}

// Stats reports counters from the last LoadTracks or LoadActivities call.
func (l *Loader) Stats() Stats { return l.stats }

// ClearCache deletes every cached record.
func (l *Loader) ClearCache() error {
	if l.opts.Cache == nil {
		return nil
	}
	monitoring.Logf("Clearing track cache")
	return l.opts.Cache.Clear()
}

// LoadTracks reads every source file directly inside dir and returns the
// filtered, merged tracks ordered by start time. Files that fail to load are
// logged and skipped; only an unusable dir or a cancelled ctx is an error.
func (l *Loader) LoadTracks(ctx context.Context, dir string) ([]*track.Track, error) {
	begin := l.opts.Clock.Now()
	l.stats = Stats{}

	files, err := l.listFiles(dir)
	if err != nil {
		return nil, err
	}
	l.stats.Listed = len(files)
	monitoring.Logf("Loading %d track file(s) from %s", len(files), dir)

	loaded, err := l.loadFiles(ctx, files)
	if err != nil {
		return nil, err
	}
	return l.finish(loaded, begin), nil
}

// LoadActivities reads a pre-fetched activity export and runs the records
// through the same filter and merge steps as LoadTracks.
func (l *Loader) LoadActivities(ctx context.Context, path string) ([]*track.Track, error) {
	begin := l.opts.Clock.Now()
	l.stats = Stats{}

	data, err := l.opts.FS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read activity export: %w", err)
	}
	acts, err := track.ParseActivities(data)
	if err != nil {
		return nil, err
	}
	l.stats.Listed = len(acts)

	var loaded []*track.Track
	for _, a := range acts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t, err := a.Track()
		if err != nil {
			l.recordFailure(err)
			monitoring.Logf("Skipping activity: %v", err)
			continue
		}
		l.stats.Parsed++
		l.adjustTimezone(t)
		loaded = append(loaded, t)
	}
	return l.finish(loaded, begin), nil
}

func (l *Loader) finish(loaded []*track.Track, begin time.Time) []*track.Track {
	filtered := l.filter(loaded)
	merged := Merge(filtered, l.opts.MergeGap)
	l.stats.Filtered = len(loaded) - len(filtered)
	l.stats.Merged = len(filtered) - len(merged)
	l.stats.Elapsed = l.opts.Clock.Since(begin)
	monitoring.Logf("Loaded %d track(s): %d cached, %d parsed, %d failed, %d filtered, %d merged in %s",
		len(merged), l.stats.Cached, l.stats.Parsed, l.stats.Failed, l.stats.Filtered, l.stats.Merged,
		l.stats.Elapsed.Round(time.Millisecond))
	return merged
}

// listFiles returns the regular files in dir with an accepted extension,
// sorted by name.
func (l *Loader) listFiles(dir string) ([]string, error) {
	info, err := l.opts.FS.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}
	entries, err := l.opts.FS.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotDirectory, dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if slices.Contains(l.opts.Extensions, ext) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

// loadFiles loads each file on the worker pool. Each unit writes only its own
// slot of the result slice.
func (l *Loader) loadFiles(ctx context.Context, files []string) ([]*track.Track, error) {
	results := make([]*track.Track, len(files))
	errs := make([]error, len(files))
	var cached, parsed atomic.Int64

	load := func(i int) {
		t, fromCache, err := l.loadFile(files[i])
		switch {
		case err != nil:
			errs[i] = err
			monitoring.Logf("Skipping %s: %v", files[i], err)
		case fromCache:
			cached.Add(1)
		default:
			parsed.Add(1)
		}
		results[i] = t
	}

	if l.opts.Workers <= 1 {
		for i := range files {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			load(i)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(l.opts.Workers)
		for i := range files {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				load(i)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	l.stats.Cached = int(cached.Load())
	l.stats.Parsed = int(parsed.Load())
	for _, err := range errs {
		if err != nil {
			l.recordFailure(err)
		}
	}

	out := make([]*track.Track, 0, len(results))
	for _, t := range results {
		if t != nil {
			out = append(out, t)
		}
	}
	return out, nil
}

// loadFile returns the track for one file, from the cache when possible.
func (l *Loader) loadFile(path string) (*track.Track, bool, error) {
	key, data, err := cache.Checksum(l.opts.FS, path)
	if err != nil {
		return nil, false, err
	}

	if l.opts.Cache != nil {
		t, err := l.opts.Cache.Load(key)
		switch {
		case err == nil:
			monitoring.Debugf("Loaded %s from cache %s", path, key)
			t.FileNames = []string{path}
			l.adjustTimezone(t)
			return t, true, nil
		case !errors.Is(err, cache.ErrMiss):
			monitoring.Debugf("Ignoring unreadable cache record for %s: %v", path, err)
		}
	}

	tol := l.opts.SimplifyTolerance
	if tol < 0 {
		tol = 0
	}
	t, err := track.Parse(path, data, track.ParseOptions{SimplifyTolerance: tol})
	if err != nil {
		return nil, false, err
	}
	monitoring.Debugf("Parsed %s: %d point(s) in %d line(s)", path, t.PointCount(), len(t.Polylines))
	if l.opts.Cache != nil {
		if err := l.opts.Cache.Save(key, t); err != nil {
			monitoring.Logf("Failed to store %s in cache: %v", path, err)
		}
	}
	l.adjustTimezone(t)
	return t, false, nil
}

func (l *Loader) recordFailure(err error) {
	if l.stats.FailedKinds == nil {
		l.stats.FailedKinds = make(map[track.Kind]int)
	}
	l.stats.Failed++
	l.stats.FailedKinds[track.KindOf(err)]++
}

func (l *Loader) adjustTimezone(t *track.Track) {
	if l.opts.Timezone == nil {
		return
	}
	p, ok := t.FirstPoint()
	if !ok {
		return
	}
	t.StartTime = l.opts.Timezone.Adjust(t.StartTime, p.Lat(), p.Lon())
	t.EndTime = l.opts.Timezone.Adjust(t.EndTime, p.Lat(), p.Lon())
}
