package geo

// Grid is a packing of equal square cells into a rectangle.
type Grid struct {
	CellSize float64
	Columns  int
	Rows     int
}

// ComputeGrid finds the column and row counts that fit count square cells
// into dims with the least unused area. Ties go to the fewest columns. The
// second result is false when count is not positive, dims is degenerate or
// no layout fits.
func ComputeGrid(count int, dims XY) (Grid, bool) {
	if count <= 0 || dims.X <= 0 || dims.Y <= 0 {
		return Grid{}, false
	}

	var best Grid
	found := false
	minWaste := 0.0
	total := dims.X * dims.Y
	for cols := 1; cols <= count; cols++ {
		rows := (count + cols - 1) / cols
		size := min(dims.X/float64(cols), dims.Y/float64(rows))
		waste := total - float64(count)*size*size
		if waste < 0 {
			continue
		}
		if !found || waste < minWaste {
			best = Grid{CellSize: size, Columns: cols, Rows: rows}
			minWaste = waste
			found = true
		}
	}
	return best, found
}
