package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/banshee-data/trackposter/internal/poster"
	"github.com/banshee-data/trackposter/internal/units"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

func TestDefaultPosterConfig(t *testing.T) {
	cfg := DefaultPosterConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	empty := EmptyPosterConfig()

	if cfg.GetType() != empty.GetType() {
		t.Errorf("GetType() = %q, empty gives %q", cfg.GetType(), empty.GetType())
	}
	if cfg.GetMergeGap() != time.Hour || empty.GetMergeGap() != time.Hour {
		t.Errorf("GetMergeGap() = %v / %v, want 1h", cfg.GetMergeGap(), empty.GetMergeGap())
	}
	if cfg.GetMinDistance() != 1 {
		t.Errorf("GetMinDistance() = %f, want 1", cfg.GetMinDistance())
	}
	if cfg.GetColors() != empty.GetColors() {
		t.Errorf("GetColors() = %+v, empty gives %+v", cfg.GetColors(), empty.GetColors())
	}
	if !cfg.GetYear().IsAll() {
		t.Errorf("GetYear() = %v, want all", cfg.GetYear())
	}
	if !cfg.GetUnits().IsMetric() {
		t.Error("GetUnits() should default to metric")
	}
}

func TestLoadPosterConfig(t *testing.T) {
	path := writeConfig(t, "poster.json", `{
  "title": "Runs",
  "type": "circular",
  "year": "2022-2024",
  "units": "imperial",
  "track_color": "#FF0000",
  "merge_gap": "30m",
  "workers": 4,
  "circular_rings": true,
  "circular_ring_max_distance": 10,
  "heatmap_center": "47.99,7.84",
  "heatmap_radius": 5,
  "heatmap_line_transparency_width": "0.1,5,0.2,2,1,0.3"
}`)

	cfg, err := LoadPosterConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.GetTitle() != "Runs" {
		t.Errorf("GetTitle() = %q, want Runs", cfg.GetTitle())
	}
	if cfg.GetType() != "circular" {
		t.Errorf("GetType() = %q, want circular", cfg.GetType())
	}
	if got := cfg.GetYear().String(); got != "2022-2024" {
		t.Errorf("GetYear() = %q, want 2022-2024", got)
	}
	if cfg.GetUnits().IsMetric() {
		t.Error("GetUnits() should be imperial")
	}
	if got := cfg.GetColors(); got.Track != "#FF0000" || got.Background != poster.DefaultColors().Background {
		t.Errorf("GetColors() = %+v", got)
	}
	if cfg.GetMergeGap() != 30*time.Minute {
		t.Errorf("GetMergeGap() = %v, want 30m", cfg.GetMergeGap())
	}
	if cfg.GetWorkers() != 4 {
		t.Errorf("GetWorkers() = %d, want 4", cfg.GetWorkers())
	}
	if cfg.GetActivityType() != "all" {
		t.Errorf("GetActivityType() = %q, want all", cfg.GetActivityType())
	}

	circ := cfg.GetCircularOptions(cfg.GetUnits())
	if !circ.Rings {
		t.Error("circular rings should be enabled")
	}
	want := units.Meters(10 * 1609.344)
	if diff := float64(circ.MaxDistance - want); diff > 1e-6 || diff < -1e-6 {
		t.Errorf("MaxDistance = %v, want %v", circ.MaxDistance, want)
	}

	heat, err := cfg.GetHeatmapOptions()
	if err != nil {
		t.Fatalf("GetHeatmapOptions() error: %v", err)
	}
	if heat.Center == nil || heat.Center.Lat() != 47.99 || heat.Center.Lon() != 7.84 {
		t.Errorf("heatmap center = %v", heat.Center)
	}
	if heat.RadiusKm != 5 || len(heat.LineWidths) != 3 {
		t.Errorf("heatmap options = %+v", heat)
	}
}

func TestLoadPosterConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		body    string
		wantErr string
	}{
		{"wrong extension", "poster.yaml", `{}`, ".json extension"},
		{"bad json", "poster.json", `{"title":`, "failed to parse"},
		{"unknown type", "poster.json", `{"type":"spiral"}`, "type must be one of"},
		{"bad year", "poster.json", `{"year":"2024-2020"}`, "invalid year range"},
		{"bad units", "poster.json", `{"units":"furlongs"}`, "units must be one of"},
		{"negative width", "poster.json", `{"width":-1}`, "width must be positive"},
		{"negative min distance", "poster.json", `{"min_distance":-1}`, "min_distance must be non-negative"},
		{"negative workers", "poster.json", `{"workers":-2}`, "workers must be non-negative"},
		{"bad merge gap", "poster.json", `{"merge_gap":"soon"}`, "invalid merge_gap"},
		{"negative merge gap", "poster.json", `{"merge_gap":"-5m"}`, "merge_gap must be non-negative"},
		{"bad color", "poster.json", `{"track_color":"blue"}`, "track_color"},
		{"bad center", "poster.json", `{"heatmap_center":"100,0"}`, "invalid heatmap center"},
		{"radius without center", "poster.json", `{"heatmap_radius":3}`, "requires a center"},
		{"bad line widths", "poster.json", `{"heatmap_line_transparency_width":"1,2"}`, "line transparencies"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadPosterConfig(writeConfig(t, tt.file, tt.body))
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadPosterConfig_Missing(t *testing.T) {
	_, err := LoadPosterConfig(filepath.Join(t.TempDir(), "absent.json"))
	if err == nil || !strings.Contains(err.Error(), "failed to stat") {
		t.Errorf("error = %v, want stat failure", err)
	}
}

func TestLoadPosterConfig_TooLarge(t *testing.T) {
	body := `{"title":"` + strings.Repeat("x", 1024*1024) + `"}`
	_, err := LoadPosterConfig(writeConfig(t, "big.json", body))
	if err == nil || !strings.Contains(err.Error(), "too large") {
		t.Errorf("error = %v, want size failure", err)
	}
}
