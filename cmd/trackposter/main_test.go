package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/banshee-data/trackposter/internal/cache"
	"github.com/banshee-data/trackposter/internal/config"
	"github.com/banshee-data/trackposter/internal/fsutil"
	"github.com/banshee-data/trackposter/internal/loader"
	"github.com/banshee-data/trackposter/internal/monitoring"
	"github.com/banshee-data/trackposter/internal/testutil"
)

func quietLogs(t *testing.T) {
	t.Helper()
	prev, prevDebug := monitoring.Logf, monitoring.Debugf
	monitoring.SetLogger(nil)
	t.Cleanup(func() {
		monitoring.Logf = prev
		monitoring.Debugf = prevDebug
	})
}

func writeWalks(t *testing.T, dir string) {
	t.Helper()
	starts := []time.Time{
		time.Date(2024, time.March, 3, 8, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 10, 8, 0, 0, 0, time.UTC),
		time.Date(2024, time.June, 1, 18, 0, 0, 0, time.UTC),
	}
	for i, start := range starts {
		name := filepath.Join(dir, "walk"+string(rune('a'+i))+".gpx")
		if err := os.WriteFile(name, testutil.DefaultWalk(start).GPX(), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Layouts(t *testing.T) {
	quietLogs(t)
	src := t.TempDir()
	writeWalks(t, src)

	for _, typ := range []string{"grid", "calendar", "circular", "heatmap", "github"} {
		t.Run(typ, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "poster.svg")
			code, _, stderr := runCLI(t,
				"--gpx-dir", src,
				"--output", out,
				"--type", typ,
				"--no-cache",
				"--workers", "2",
				"--circular-rings",
			)
			if code != 0 {
				t.Fatalf("exit code %d, stderr: %s", code, stderr)
			}
			data, err := os.ReadFile(out)
			if err != nil {
				t.Fatalf("read output: %v", err)
			}
			if !strings.Contains(string(data), "<svg") {
				t.Errorf("output is not SVG: %.80s", data)
			}
		})
	}
}

func TestRun_Exports(t *testing.T) {
	quietLogs(t)
	src := t.TempDir()
	writeWalks(t, src)
	dir := t.TempDir()
	geo := filepath.Join(dir, "tracks.geojson")
	html := filepath.Join(dir, "stats.html")

	code, _, stderr := runCLI(t,
		"--gpx-dir", src,
		"--output", filepath.Join(dir, "poster.svg"),
		"--cache-dir", filepath.Join(dir, "cache"),
		"--geojson", geo,
		"--stats-html", html,
	)
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, stderr)
	}

	var doc struct {
		Type     string `json:"type"`
		Features []struct {
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	data, err := os.ReadFile(geo)
	if err != nil {
		t.Fatalf("read geojson: %v", err)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("parse geojson: %v", err)
	}
	if doc.Type != "FeatureCollection" || len(doc.Features) != 3 {
		t.Errorf("geojson = %s with %d features, want 3", doc.Type, len(doc.Features))
	}

	if _, err := os.Stat(html); err != nil {
		t.Errorf("stats page missing: %v", err)
	}
	cached, err := filepath.Glob(filepath.Join(dir, "cache", "*.json"))
	if err != nil || len(cached) != 3 {
		t.Errorf("cached records = %d (%v), want 3", len(cached), err)
	}
}

func TestRun_NoTracks(t *testing.T) {
	quietLogs(t)
	code, _, stderr := runCLI(t,
		"--gpx-dir", t.TempDir(),
		"--output", filepath.Join(t.TempDir(), "poster.svg"),
		"--no-cache",
	)
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "No tracks found.") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestRun_ParameterErrors(t *testing.T) {
	quietLogs(t)
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"bad year", []string{"--year", "2024-2020"}, "invalid year range"},
		{"bad type", []string{"--type", "spiral"}, "type must be one of"},
		{"bad units", []string{"--units", "leagues"}, "units must be one of"},
		{"radius without center", []string{"--heatmap-radius", "5"}, "requires a center"},
		{"bad center", []string{"--heatmap-center", "x"}, "invalid heatmap center"},
		{"bad line widths", []string{"--heatmap-line-transparency-width", "2,1,1,1,1,1"}, "line transparencies"},
		{"missing dir", []string{"--gpx-dir", "/nonexistent/trackposter", "--no-cache"}, "not a directory"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--output", filepath.Join(t.TempDir(), "p.svg")}, tt.args...)
			code, _, stderr := runCLI(t, args...)
			if code != 1 {
				t.Errorf("exit code = %d, want 1", code)
			}
			if !strings.Contains(stderr, tt.wantErr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr, tt.wantErr)
			}
		})
	}
}

func TestRun_Version(t *testing.T) {
	code, stdout, _ := runCLI(t, "--version")
	if code != 0 || !strings.HasPrefix(stdout, "trackposter dev") {
		t.Errorf("version output = %q (code %d)", stdout, code)
	}
}

func TestRun_UnknownFlag(t *testing.T) {
	code, _, stderr := runCLI(t, "--no-such-flag")
	if code != 2 || !strings.Contains(stderr, "no-such-flag") {
		t.Errorf("code = %d, stderr = %q", code, stderr)
	}
}

func TestOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poster.json")
	if err := os.WriteFile(path, []byte(`{"title":"From file","type":"calendar","workers":3}`), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.LoadPosterConfig(path)
	if err != nil {
		t.Fatal(err)
	}

	var f cliFlags
	fs := newFlagSet(&f, io.Discard)
	if err := fs.Parse([]string{"--type", "heatmap", "--merge-gap", "30m", "--special", "a.gpx", "--special", "b.gpx"}); err != nil {
		t.Fatal(err)
	}
	f.overlay(fs, cfg)

	got := map[string]any{
		"title":     cfg.GetTitle(),
		"type":      cfg.GetType(),
		"workers":   cfg.GetWorkers(),
		"merge_gap": cfg.GetMergeGap(),
		"special":   []string(f.special),
	}
	want := map[string]any{
		"title":     "From file",
		"type":      "heatmap",
		"workers":   3,
		"merge_gap": 30 * time.Minute,
		"special":   []string{"a.gpx", "b.gpx"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("overlay mismatch (-want +got):\n%s", diff)
	}
}

func TestLoaderOptions(t *testing.T) {
	var f cliFlags
	fs := newFlagSet(&f, io.Discard)
	if err := fs.Parse([]string{"--min-distance", "0", "--simplify", "0", "--timezone-adjust"}); err != nil {
		t.Fatal(err)
	}
	cfg := config.EmptyPosterConfig()
	f.overlay(fs, cfg)
	opts := loaderOptions(&f, cfg, nil)
	if opts.MinLength >= 0 || opts.SimplifyTolerance >= 0 {
		t.Errorf("zero min distance and tolerance should disable them: %+v", opts)
	}
	if opts.Timezone == nil {
		t.Error("timezone adjuster not set")
	}
	if fs.ErrorHandling() != flag.ContinueOnError {
		t.Error("flag set should continue on error")
	}
}

func TestLoaderOptions_MergeGap(t *testing.T) {
	quietLogs(t)
	mfs := fsutil.NewMemoryFileSystem()
	first := testutil.DefaultWalk(time.Date(2018, 6, 2, 7, 0, 0, 0, time.UTC))
	second := testutil.DefaultWalk(first.End().Add(20 * time.Minute))
	for name, w := range map[string]testutil.Walk{"a.gpx": first, "b.gpx": second} {
		if err := mfs.WriteFile("/t/"+name, w.GPX(), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		args []string
		want int
	}{
		{nil, 1},
		{[]string{"--merge-gap", "30m"}, 1},
		{[]string{"--merge-gap", "10m"}, 2},
		{[]string{"--merge-gap", "0s"}, 2},
	}
	for _, tt := range tests {
		t.Run(strings.Join(append([]string{"args"}, tt.args...), " "), func(t *testing.T) {
			var f cliFlags
			fs := newFlagSet(&f, io.Discard)
			if err := fs.Parse(tt.args); err != nil {
				t.Fatal(err)
			}
			cfg := config.DefaultPosterConfig()
			f.overlay(fs, cfg)
			opts := loaderOptions(&f, cfg, nil)
			opts.FS = mfs

			got, err := loader.New(opts).LoadTracks(context.Background(), "/t")
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d track(s), want %d (merge gap %v)", len(got), tt.want, opts.MergeGap)
			}
		})
	}
}

func TestOpenCache(t *testing.T) {
	quietLogs(t)
	var logged []string
	capture := func(format string, v ...interface{}) { logged = append(logged, fmt.Sprintf(format, v...)) }
	monitoring.SetLogger(capture)
	monitoring.SetDebugLogger(capture)

	dir := t.TempDir()
	open := func(args ...string) cache.Store {
		t.Helper()
		var f cliFlags
		fs := newFlagSet(&f, io.Discard)
		if err := fs.Parse(args); err != nil {
			t.Fatal(err)
		}
		cfg := config.DefaultPosterConfig()
		f.overlay(fs, cfg)
		store, err := openCache(&f, cfg)
		if err != nil {
			t.Fatal(err)
		}
		if store != nil {
			t.Cleanup(func() { store.Close() })
		}
		return store
	}

	if store := open("--no-cache"); store != nil {
		t.Errorf("--no-cache opened %T", store)
	}

	cacheDir := filepath.Join(dir, "records")
	if _, ok := open("--cache-dir", cacheDir).(*cache.DirStore); !ok {
		t.Error("--cache-dir should open a directory store")
	}
	db := filepath.Join(dir, "cache.db")
	if _, ok := open("--cache-db", db).(*cache.SQLiteStore); !ok {
		t.Error("--cache-db should open a SQLite store")
	}

	got := strings.Join(logged, "\n")
	for _, want := range []string{"directory " + cacheDir, db + " with 0 record(s)"} {
		if !strings.Contains(got, want) {
			t.Errorf("log %q missing %q", got, want)
		}
	}
}
