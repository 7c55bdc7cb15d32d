// Command trackposter renders a directory of GPS recordings (GPX, FIT or
// cached JSON) or an activity export into an SVG poster.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/banshee-data/trackposter/internal/cache"
	"github.com/banshee-data/trackposter/internal/config"
	"github.com/banshee-data/trackposter/internal/export"
	"github.com/banshee-data/trackposter/internal/loader"
	"github.com/banshee-data/trackposter/internal/monitoring"
	"github.com/banshee-data/trackposter/internal/poster"
	"github.com/banshee-data/trackposter/internal/track"
	"github.com/banshee-data/trackposter/internal/units"
	"github.com/banshee-data/trackposter/internal/version"
)

// errNoTracks is reported when loading leaves nothing to draw.
var errNoTracks = errors.New("No tracks found.")

// stringList collects a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// cliFlags holds every command line flag.
type cliFlags struct {
	gpxDir         string
	fromActivities string
	output         string
	special        stringList
	clearCache     bool
	noCache        bool
	verbose        bool
	logFile        string
	configPath     string
	geoJSON        string
	statsHTML      string
	showVersion    bool

	// Flags below mirror PosterConfig fields and override the config file
	// when set explicitly.
	year, title, athlete, typ, unitSystem               string
	background, track, track2, text, special1, special2 string
	width, height                                       float64
	cacheDir, cacheDB                                   string
	workers                                             int
	minDistance, specialDistance, specialDistance2      float64
	activityType                                        string
	mergeGap                                            time.Duration
	simplify                                            float64
	timezoneAdjust                                      bool
	rings                                               bool
	ringColor                                           string
	ringMaxDistance                                     float64
	heatmapCenter                                       string
	heatmapRadius                                       float64
	heatmapLineWidths                                   string
}

func newFlagSet(f *cliFlags, stderr io.Writer) *flag.FlagSet {
	def := config.DefaultPosterConfig()
	fs := flag.NewFlagSet("trackposter", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&f.gpxDir, "gpx-dir", ".", "Directory containing GPX, FIT or JSON track files")
	fs.StringVar(&f.fromActivities, "from-activities", "", "Load tracks from an activity export JSON file instead of --gpx-dir")
	fs.StringVar(&f.output, "output", "poster.svg", "Name of the output SVG file")
	fs.Var(&f.special, "special", "Mark track file as special (repeatable)")
	fs.BoolVar(&f.clearCache, "clear-cache", false, "Clear the track cache before loading")
	fs.BoolVar(&f.noCache, "no-cache", false, "Do not read or write the track cache")
	fs.BoolVar(&f.verbose, "verbose", false, "Log per-file details")
	fs.StringVar(&f.logFile, "logfile", "", "Write log output to this file")
	fs.StringVar(&f.configPath, "config", "", "Path to a JSON poster config file")
	fs.StringVar(&f.geoJSON, "geojson", "", "Also write the loaded tracks as GeoJSON to this file")
	fs.StringVar(&f.statsHTML, "stats-html", "", "Also write an HTML statistics page to this file")
	fs.BoolVar(&f.showVersion, "version", false, "Print version and exit")

	fs.StringVar(&f.year, "year", *def.Year, `Filter tracks by year; "NUM", "NUM-NUM" or "all"`)
	fs.StringVar(&f.title, "title", *def.Title, "Poster title")
	fs.StringVar(&f.athlete, "athlete", *def.Athlete, "Athlete name to display")
	fs.StringVar(&f.typ, "type", *def.Type, "Type of poster to create: "+strings.Join(poster.DrawerNames(), ", "))
	fs.StringVar(&f.unitSystem, "units", *def.Units, "Distance units: "+strings.Join(units.ValidSystems, ", "))
	fs.StringVar(&f.background, "background-color", *def.BackgroundColor, "Background color of poster")
	fs.StringVar(&f.track, "track-color", *def.TrackColor, "Color of tracks")
	fs.StringVar(&f.track2, "track-color2", *def.TrackColor2, "Secondary color of tracks")
	fs.StringVar(&f.text, "text-color", *def.TextColor, "Color of text")
	fs.StringVar(&f.special1, "special-color", *def.SpecialColor, "Special track color")
	fs.StringVar(&f.special2, "special-color2", *def.SpecialColor2, "Secondary color of special tracks")
	fs.Float64Var(&f.width, "width", *def.Width, "Poster width in mm")
	fs.Float64Var(&f.height, "height", *def.Height, "Poster height in mm")
	fs.StringVar(&f.cacheDir, "cache-dir", *def.CacheDir, "Directory for cached track records (default: user cache dir)")
	fs.StringVar(&f.cacheDB, "cache-db", *def.CacheDB, "Use this SQLite database as the track cache instead of a directory")
	fs.IntVar(&f.workers, "workers", *def.Workers, "Parallel parsers; 0 uses every CPU")
	fs.Float64Var(&f.minDistance, "min-distance", *def.MinDistance, "Minimum track distance in km; 0 keeps all")
	fs.Float64Var(&f.specialDistance, "special-distance", *def.SpecialDistance, "Days longer than this (in --units) are special")
	fs.Float64Var(&f.specialDistance2, "special-distance2", *def.SpecialDistance2, "Days longer than this (in --units) use the second special color")
	fs.StringVar(&f.activityType, "activity-type", *def.ActivityType, `Only load tracks of this activity type, or "all"`)
	fs.DurationVar(&f.mergeGap, "merge-gap", loader.DefaultMergeGap, "Merge consecutive tracks closer than this; 0 disables merging")
	fs.Float64Var(&f.simplify, "simplify", *def.SimplifyTolerance, "Polyline simplification tolerance in metres; 0 keeps every point")
	fs.BoolVar(&f.timezoneAdjust, "timezone-adjust", *def.TimezoneAdjust, "Move track times into the local time zone of their first point")
	fs.BoolVar(&f.rings, "circular-rings", *def.CircularRings, "Circular: draw distance rings")
	fs.StringVar(&f.ringColor, "circular-ring-color", *def.CircularRingColor, "Circular: color of distance rings")
	fs.Float64Var(&f.ringMaxDistance, "circular-ring-max-distance", *def.CircularMaxDistance, "Circular: distance mapped to the outer radius; 0 uses the longest day")
	fs.StringVar(&f.heatmapCenter, "heatmap-center", *def.HeatmapCenter, `Heatmap: center as "LAT,LNG"`)
	fs.Float64Var(&f.heatmapRadius, "heatmap-radius", *def.HeatmapRadius, "Heatmap: radius around the center in km")
	fs.StringVar(&f.heatmapLineWidths, "heatmap-line-transparency-width", *def.HeatmapLineWidths,
		`Heatmap: three "opacity,width" pairs as six comma separated values, or "automatic"`)
	return fs
}

// overlay copies every explicitly set flag into cfg.
func (f *cliFlags) overlay(fs *flag.FlagSet, cfg *config.PosterConfig) {
	setters := map[string]func(){
		"year":                            func() { cfg.Year = &f.year },
		"title":                           func() { cfg.Title = &f.title },
		"athlete":                         func() { cfg.Athlete = &f.athlete },
		"type":                            func() { cfg.Type = &f.typ },
		"units":                           func() { cfg.Units = &f.unitSystem },
		"background-color":                func() { cfg.BackgroundColor = &f.background },
		"track-color":                     func() { cfg.TrackColor = &f.track },
		"track-color2":                    func() { cfg.TrackColor2 = &f.track2 },
		"text-color":                      func() { cfg.TextColor = &f.text },
		"special-color":                   func() { cfg.SpecialColor = &f.special1 },
		"special-color2":                  func() { cfg.SpecialColor2 = &f.special2 },
		"width":                           func() { cfg.Width = &f.width },
		"height":                          func() { cfg.Height = &f.height },
		"cache-dir":                       func() { cfg.CacheDir = &f.cacheDir },
		"cache-db":                        func() { cfg.CacheDB = &f.cacheDB },
		"workers":                         func() { cfg.Workers = &f.workers },
		"min-distance":                    func() { cfg.MinDistance = &f.minDistance },
		"special-distance":                func() { cfg.SpecialDistance = &f.specialDistance },
		"special-distance2":               func() { cfg.SpecialDistance2 = &f.specialDistance2 },
		"activity-type":                   func() { cfg.ActivityType = &f.activityType },
		"merge-gap":                       func() { s := f.mergeGap.String(); cfg.MergeGap = &s },
		"simplify":                        func() { cfg.SimplifyTolerance = &f.simplify },
		"timezone-adjust":                 func() { cfg.TimezoneAdjust = &f.timezoneAdjust },
		"circular-rings":                  func() { cfg.CircularRings = &f.rings },
		"circular-ring-color":             func() { cfg.CircularRingColor = &f.ringColor },
		"circular-ring-max-distance":      func() { cfg.CircularMaxDistance = &f.ringMaxDistance },
		"heatmap-center":                  func() { cfg.HeatmapCenter = &f.heatmapCenter },
		"heatmap-radius":                  func() { cfg.HeatmapRadius = &f.heatmapRadius },
		"heatmap-line-transparency-width": func() { cfg.HeatmapLineWidths = &f.heatmapLineWidths },
	}
	fs.Visit(func(fl *flag.Flag) {
		if set, ok := setters[fl.Name]; ok {
			set()
		}
	})
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var f cliFlags
	fs := newFlagSet(&f, stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if f.showVersion {
		fmt.Fprintln(stdout, version.String())
		return 0
	}

	if f.logFile != "" {
		lf, err := os.OpenFile(f.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(stderr, "failed to open log file: %v\n", err)
			return 1
		}
		defer lf.Close()
		monitoring.SetOutput(lf)
	}
	if f.verbose {
		monitoring.EnableDebug()
	}

	cfg := config.EmptyPosterConfig()
	if f.configPath != "" {
		var err error
		if cfg, err = config.LoadPosterConfig(f.configPath); err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return 1
		}
	}
	f.overlay(fs, cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	if err := render(ctx, &f, cfg); err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	return 0
}

func openCache(f *cliFlags, cfg *config.PosterConfig) (cache.Store, error) {
	if f.noCache {
		return nil, nil
	}
	if db := cfg.GetCacheDB(); db != "" {
		store, err := cache.OpenSQLite(db)
		if err != nil {
			return nil, err
		}
		if n, err := store.Len(); err == nil {
			monitoring.Logf("Using track cache %s with %d record(s)", db, n)
		}
		return store, nil
	}
	dir := cfg.GetCacheDir()
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate cache dir: %w", err)
		}
		dir = filepath.Join(base, "trackposter")
	}
	store := cache.NewDirStore(nil, dir)
	monitoring.Debugf("Using track cache directory %s", store.Root())
	return store, nil
}

func loaderOptions(f *cliFlags, cfg *config.PosterConfig, store cache.Store) loader.Options {
	opts := loader.Options{
		Cache:             store,
		MinLength:         units.Km(cfg.GetMinDistance()),
		Years:             cfg.GetYear(),
		ActivityType:      cfg.GetActivityType(),
		SpecialFileNames:  f.special,
		Workers:           cfg.GetWorkers(),
		MergeGap:          cfg.GetMergeGap(),
		SimplifyTolerance: cfg.GetSimplifyTolerance(),
	}
	if opts.MinLength == 0 {
		opts.MinLength = -1
	}
	if opts.SimplifyTolerance == 0 {
		opts.SimplifyTolerance = -1
	}
	if opts.MergeGap == 0 {
		opts.MergeGap = -1
	}
	if cfg.GetTimezoneAdjust() {
		opts.Timezone = units.NewTimezoneAdjuster()
	}
	return opts
}

func render(ctx context.Context, f *cliFlags, cfg *config.PosterConfig) error {
	heatmap, err := cfg.GetHeatmapOptions()
	if err != nil {
		return err
	}
	conv := cfg.GetUnits()
	drawer, err := poster.NewDrawer(cfg.GetType(), poster.DrawerOptions{
		Circular: cfg.GetCircularOptions(conv),
		Heatmap:  heatmap,
	})
	if err != nil {
		return err
	}

	store, err := openCache(f, cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}
	l := loader.New(loaderOptions(f, cfg, store))
	if f.clearCache {
		if err := l.ClearCache(); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
	}

	var tracks []*track.Track
	if f.fromActivities != "" {
		tracks, err = l.LoadActivities(ctx, f.fromActivities)
	} else {
		tracks, err = l.LoadTracks(ctx, f.gpxDir)
	}
	if err != nil {
		return err
	}
	if len(tracks) == 0 {
		return errNoTracks
	}

	p := poster.New()
	p.Title = cfg.GetTitle()
	p.Athlete = cfg.GetAthlete()
	p.Colors = cfg.GetColors()
	p.Units = conv
	p.Width = cfg.GetWidth()
	p.Height = cfg.GetHeight()
	p.SpecialDistance = conv.FromDisplay(cfg.GetSpecialDistance())
	p.SpecialDistance2 = conv.FromDisplay(cfg.GetSpecialDistance2())
	p.Years = cfg.GetYear()
	p.SetTracks(tracks)

	if err := writeFile(f.output, func(w io.Writer) error { return p.Draw(drawer, w) }); err != nil {
		return err
	}
	monitoring.Logf("Wrote %s poster with %d tracks to %s", drawer.Name(), len(tracks), f.output)

	if f.geoJSON != "" {
		if err := writeFile(f.geoJSON, func(w io.Writer) error { return export.WriteGeoJSON(w, tracks) }); err != nil {
			return err
		}
	}
	if f.statsHTML != "" {
		if err := writeFile(f.statsHTML, func(w io.Writer) error { return export.WriteStatsHTML(w, p) }); err != nil {
			return err
		}
	}
	return nil
}

// writeFile creates path and hands it to write, reporting close errors.
func writeFile(path string, write func(io.Writer) error) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()
	if err := write(out); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
