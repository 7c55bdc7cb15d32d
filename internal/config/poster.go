package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/banshee-data/trackposter/internal/loader"
	"github.com/banshee-data/trackposter/internal/poster"
	"github.com/banshee-data/trackposter/internal/ranges"
	"github.com/banshee-data/trackposter/internal/units"
)

// PosterConfig is the optional JSON file form of the CLI settings. Every
// field is a pointer so an omitted key falls back to its default; command
// line flags that were set explicitly take precedence over file values.
type PosterConfig struct {
	Title   *string `json:"title,omitempty"`
	Athlete *string `json:"athlete,omitempty"`
	Type    *string `json:"type,omitempty"`
	Year    *string `json:"year,omitempty"` // "all", "2024" or "2020-2024"
	Units   *string `json:"units,omitempty"`

	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`

	BackgroundColor *string `json:"background_color,omitempty"`
	TextColor       *string `json:"text_color,omitempty"`
	TrackColor      *string `json:"track_color,omitempty"`
	TrackColor2     *string `json:"track_color2,omitempty"`
	SpecialColor    *string `json:"special_color,omitempty"`
	SpecialColor2   *string `json:"special_color2,omitempty"`

	// Distances are in km.
	SpecialDistance  *float64 `json:"special_distance,omitempty"`
	SpecialDistance2 *float64 `json:"special_distance2,omitempty"`
	MinDistance      *float64 `json:"min_distance,omitempty"`

	MergeGap          *string  `json:"merge_gap,omitempty"` // duration string like "1h"; "0s" disables merging
	ActivityType      *string  `json:"activity_type,omitempty"`
	Workers           *int     `json:"workers,omitempty"`
	SimplifyTolerance *float64 `json:"simplify_tolerance,omitempty"` // metres
	TimezoneAdjust    *bool    `json:"timezone_adjust,omitempty"`
	CacheDir          *string  `json:"cache_dir,omitempty"`
	CacheDB           *string  `json:"cache_db,omitempty"`

	CircularRings       *bool    `json:"circular_rings,omitempty"`
	CircularRingColor   *string  `json:"circular_ring_color,omitempty"`
	CircularMaxDistance *float64 `json:"circular_ring_max_distance,omitempty"`

	HeatmapCenter     *string  `json:"heatmap_center,omitempty"` // "LAT,LNG"
	HeatmapRadius     *float64 `json:"heatmap_radius,omitempty"` // km
	HeatmapLineWidths *string  `json:"heatmap_line_transparency_width,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyPosterConfig returns a config with every field unset.
func EmptyPosterConfig() *PosterConfig {
	return &PosterConfig{}
}

// DefaultPosterConfig returns a config with every field set to its default.
func DefaultPosterConfig() *PosterConfig {
	colors := poster.DefaultColors()
	return &PosterConfig{
		Title:               ptrString("My Tracks"),
		Athlete:             ptrString(""),
		Type:                ptrString("grid"),
		Year:                ptrString("all"),
		Units:               ptrString(units.Metric),
		Width:               ptrFloat64(poster.DefaultWidth),
		Height:              ptrFloat64(poster.DefaultHeight),
		BackgroundColor:     ptrString(colors.Background),
		TextColor:           ptrString(colors.Text),
		TrackColor:          ptrString(colors.Track),
		TrackColor2:         ptrString(""),
		SpecialColor:        ptrString(colors.Special),
		SpecialColor2:       ptrString(""),
		SpecialDistance:     ptrFloat64(10),
		SpecialDistance2:    ptrFloat64(20),
		MinDistance:         ptrFloat64(float64(loader.DefaultMinLength) / 1000),
		MergeGap:            ptrString(loader.DefaultMergeGap.String()),
		ActivityType:        ptrString(loader.AllActivities),
		Workers:             ptrInt(0),
		SimplifyTolerance:   ptrFloat64(10),
		TimezoneAdjust:      ptrBool(false),
		CacheDir:            ptrString(""),
		CacheDB:             ptrString(""),
		CircularRings:       ptrBool(false),
		CircularRingColor:   ptrString(poster.DefaultRingColor),
		CircularMaxDistance: ptrFloat64(0),
		HeatmapCenter:       ptrString(""),
		HeatmapRadius:       ptrFloat64(0),
		HeatmapLineWidths:   ptrString("automatic"),
	}
}

// LoadPosterConfig loads a PosterConfig from a JSON file. The file must
// have a .json extension and be under 1MB.
func LoadPosterConfig(path string) (*PosterConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyPosterConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the values that are set.
func (c *PosterConfig) Validate() error {
	if c.Type != nil && !slices.Contains(poster.DrawerNames(), *c.Type) {
		return fmt.Errorf("type must be one of %v, got %q", poster.DrawerNames(), *c.Type)
	}
	if c.Year != nil {
		if _, err := ranges.ParseYearRange(*c.Year); err != nil {
			return err
		}
	}
	if c.Units != nil && !slices.Contains(units.ValidSystems, *c.Units) {
		return fmt.Errorf("units must be one of %v, got %q", units.ValidSystems, *c.Units)
	}
	for name, v := range map[string]*float64{
		"width":  c.Width,
		"height": c.Height,
	} {
		if v != nil && *v <= 0 {
			return fmt.Errorf("%s must be positive, got %f", name, *v)
		}
	}
	for name, v := range map[string]*float64{
		"special_distance":           c.SpecialDistance,
		"special_distance2":          c.SpecialDistance2,
		"min_distance":               c.MinDistance,
		"circular_ring_max_distance": c.CircularMaxDistance,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s must be non-negative, got %f", name, *v)
		}
	}
	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", *c.Workers)
	}
	if c.MergeGap != nil && *c.MergeGap != "" {
		d, err := time.ParseDuration(*c.MergeGap)
		if err != nil {
			return fmt.Errorf("invalid merge_gap '%s': %w", *c.MergeGap, err)
		}
		if d < 0 {
			return fmt.Errorf("merge_gap must be non-negative, got %s", d)
		}
	}
	for name, v := range map[string]*string{
		"background_color":    c.BackgroundColor,
		"text_color":          c.TextColor,
		"track_color":         c.TrackColor,
		"track_color2":        c.TrackColor2,
		"special_color":       c.SpecialColor,
		"special_color2":      c.SpecialColor2,
		"circular_ring_color": c.CircularRingColor,
	} {
		if v == nil || *v == "" {
			continue
		}
		if _, err := poster.ParseColor(*v); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	hasCenter := c.HeatmapCenter != nil && *c.HeatmapCenter != ""
	if hasCenter {
		if _, err := poster.ParseHeatmapCenter(*c.HeatmapCenter); err != nil {
			return err
		}
	}
	if err := poster.ValidateHeatmapRadius(c.GetHeatmapRadius(), hasCenter); err != nil {
		return err
	}
	if c.HeatmapLineWidths != nil {
		if _, err := poster.ParseHeatmapLineWidths(*c.HeatmapLineWidths); err != nil {
			return err
		}
	}
	return nil
}

func getString(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}

func getFloat(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func getBool(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// GetTitle returns the poster title or the default.
func (c *PosterConfig) GetTitle() string { return getString(c.Title, "My Tracks") }

func (c *PosterConfig) GetAthlete() string { return getString(c.Athlete, "") }

// GetType returns the layout name or "grid".
func (c *PosterConfig) GetType() string { return getString(c.Type, "grid") }

// GetYear returns the year range, falling back to all years.
func (c *PosterConfig) GetYear() ranges.YearRange {
	r, err := ranges.ParseYearRange(getString(c.Year, "all"))
	if err != nil {
		return ranges.AllYears()
	}
	return r
}

// GetUnits returns a converter for the configured unit system.
func (c *PosterConfig) GetUnits() units.Converter {
	conv, err := units.NewConverter(getString(c.Units, units.Metric))
	if err != nil {
		conv, _ = units.NewConverter(units.Metric)
	}
	return conv
}

func (c *PosterConfig) GetWidth() float64  { return getFloat(c.Width, poster.DefaultWidth) }
func (c *PosterConfig) GetHeight() float64 { return getFloat(c.Height, poster.DefaultHeight) }

// GetColors merges set colour fields over the default palette.
func (c *PosterConfig) GetColors() poster.Colors {
	col := poster.DefaultColors()
	col.Background = getString(c.BackgroundColor, col.Background)
	col.Text = getString(c.TextColor, col.Text)
	col.Track = getString(c.TrackColor, col.Track)
	col.Track2 = getString(c.TrackColor2, col.Track2)
	col.Special = getString(c.SpecialColor, col.Special)
	col.Special2 = getString(c.SpecialColor2, col.Special2)
	return col
}

// GetSpecialDistance returns the first special threshold in display units.
func (c *PosterConfig) GetSpecialDistance() float64  { return getFloat(c.SpecialDistance, 10) }
func (c *PosterConfig) GetSpecialDistance2() float64 { return getFloat(c.SpecialDistance2, 20) }

// GetMinDistance returns the minimum track length in km.
func (c *PosterConfig) GetMinDistance() float64 {
	return getFloat(c.MinDistance, float64(loader.DefaultMinLength)/1000)
}

// GetMergeGap parses and returns MergeGap as a time.Duration.
func (c *PosterConfig) GetMergeGap() time.Duration {
	if c.MergeGap == nil || *c.MergeGap == "" {
		return loader.DefaultMergeGap
	}
	d, err := time.ParseDuration(*c.MergeGap)
	if err != nil {
		return loader.DefaultMergeGap
	}
	return d
}

func (c *PosterConfig) GetActivityType() string {
	return getString(c.ActivityType, loader.AllActivities)
}

// GetWorkers returns the loader worker count; 0 means one per CPU.
func (c *PosterConfig) GetWorkers() int {
	if c.Workers == nil {
		return 0
	}
	return *c.Workers
}

func (c *PosterConfig) GetSimplifyTolerance() float64 { return getFloat(c.SimplifyTolerance, 10) }
func (c *PosterConfig) GetTimezoneAdjust() bool       { return getBool(c.TimezoneAdjust, false) }
func (c *PosterConfig) GetCacheDir() string           { return getString(c.CacheDir, "") }
func (c *PosterConfig) GetCacheDB() string            { return getString(c.CacheDB, "") }

// GetCircularOptions converts the circular fields for the given unit system.
func (c *PosterConfig) GetCircularOptions(conv units.Converter) poster.CircularOptions {
	return poster.CircularOptions{
		Rings:       getBool(c.CircularRings, false),
		RingColor:   getString(c.CircularRingColor, poster.DefaultRingColor),
		MaxDistance: conv.FromDisplay(getFloat(c.CircularMaxDistance, 0)),
	}
}

func (c *PosterConfig) GetHeatmapRadius() float64 { return getFloat(c.HeatmapRadius, 0) }

// GetHeatmapOptions parses the heatmap fields. Call Validate first; invalid
// values here are reported as errors too.
func (c *PosterConfig) GetHeatmapOptions() (poster.HeatmapOptions, error) {
	var opts poster.HeatmapOptions
	if s := getString(c.HeatmapCenter, ""); s != "" {
		center, err := poster.ParseHeatmapCenter(s)
		if err != nil {
			return opts, err
		}
		opts.Center = &center
	}
	opts.RadiusKm = c.GetHeatmapRadius()
	if err := poster.ValidateHeatmapRadius(opts.RadiusKm, opts.Center != nil); err != nil {
		return opts, err
	}
	widths, err := poster.ParseHeatmapLineWidths(getString(c.HeatmapLineWidths, "automatic"))
	if err != nil {
		return opts, err
	}
	opts.LineWidths = widths
	return opts, nil
}
