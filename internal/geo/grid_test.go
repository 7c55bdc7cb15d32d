package geo

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestComputeGrid(t *testing.T) {
	tests := []struct {
		count int
		dims  XY
		want  Grid
	}{
		{1, Pt(1, 1), Grid{CellSize: 1, Columns: 1, Rows: 1}},
		{2, Pt(1, 1), Grid{CellSize: 0.5, Columns: 1, Rows: 2}},
		{3, Pt(1, 1), Grid{CellSize: 0.5, Columns: 2, Rows: 2}},
		{4, Pt(1, 1), Grid{CellSize: 0.5, Columns: 2, Rows: 2}},
		{10, Pt(1, 1), Grid{CellSize: 0.25, Columns: 3, Rows: 4}},
		{99, Pt(1, 1), Grid{CellSize: 0.1, Columns: 10, Rows: 10}},
	}

	approx := cmp.Comparer(func(a, b float64) bool { return math.Abs(a-b) < 1e-9 })
	for _, tt := range tests {
		got, ok := ComputeGrid(tt.count, tt.dims)
		if !ok {
			t.Fatalf("ComputeGrid(%d) found no layout", tt.count)
		}
		if diff := cmp.Diff(tt.want, got, approx); diff != "" {
			t.Errorf("ComputeGrid(%d) mismatch (-want +got):\n%s", tt.count, diff)
		}
	}
}

func TestComputeGrid_Fits(t *testing.T) {
	for _, dims := range []XY{Pt(1, 1), Pt(180, 240), Pt(300, 40), Pt(7, 90)} {
		for count := 1; count <= 120; count++ {
			g, ok := ComputeGrid(count, dims)
			if !ok {
				t.Fatalf("no layout for %d in %v", count, dims)
			}
			if g.Columns*g.Rows < count {
				t.Errorf("%d cells in %dx%d", count, g.Columns, g.Rows)
			}
			if g.CellSize*float64(g.Columns) > dims.X+1e-9 || g.CellSize*float64(g.Rows) > dims.Y+1e-9 {
				t.Errorf("grid %+v overflows %v", g, dims)
			}
		}
	}
}

func TestComputeGrid_NoSolution(t *testing.T) {
	for _, tc := range []struct {
		count int
		dims  XY
	}{
		{0, Pt(1, 1)},
		{-3, Pt(1, 1)},
		{4, Pt(0, 1)},
		{4, Pt(1, -1)},
	} {
		if _, ok := ComputeGrid(tc.count, tc.dims); ok {
			t.Errorf("ComputeGrid(%d, %v) should have no solution", tc.count, tc.dims)
		}
	}
}
