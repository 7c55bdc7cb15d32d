// Package ranges holds the numeric and calendar ranges the poster layer
// aggregates over: length ranges for colouring and year ranges for layout.
package ranges

import "github.com/banshee-data/trackposter/internal/units"

// Range tracks the lower and upper bound of the values it has seen. The zero
// value is invalid until the first Extend.
type Range[T ~float64] struct {
	lower, upper T
	valid        bool
}

// ValueRange is a range of plain numbers (radii, projected coordinates).
type ValueRange = Range[float64]

// QuantityRange is a range of lengths.
type QuantityRange = Range[units.Meters]

// FromPair returns the smallest range holding both values.
func FromPair[T ~float64](a, b T) Range[T] {
	var r Range[T]
	r.Extend(a)
	r.Extend(b)
	return r
}

// IsValid reports whether at least one value has been recorded.
func (r Range[T]) IsValid() bool { return r.valid }

// Lower returns the lower bound and whether the range is valid.
func (r Range[T]) Lower() (T, bool) { return r.lower, r.valid }

// Upper returns the upper bound and whether the range is valid.
func (r Range[T]) Upper() (T, bool) { return r.upper, r.valid }

// Clear returns the range to the invalid state.
func (r *Range[T]) Clear() { *r = Range[T]{} }

// Extend widens the range to include v.
func (r *Range[T]) Extend(v T) {
	if !r.valid {
		r.lower, r.upper, r.valid = v, v, true
		return
	}
	r.lower = min(r.lower, v)
	r.upper = max(r.upper, v)
}

// Diameter is upper minus lower, or zero for an invalid range.
func (r Range[T]) Diameter() T {
	if !r.valid {
		return 0
	}
	return r.upper - r.lower
}

func (r Range[T]) Contains(v T) bool {
	return r.valid && r.lower <= v && v <= r.upper
}

// Interpolate maps frac in [0,1] onto the range. The second result is false
// when the range is invalid.
func (r Range[T]) Interpolate(frac float64) (T, bool) {
	if !r.valid {
		return 0, false
	}
	return r.lower + T(frac*float64(r.upper-r.lower)), true
}

// RelativePosition maps v to [0,1], clamping outside values. It returns 0
// for an invalid or zero-width range.
func (r Range[T]) RelativePosition(v T) float64 {
	if !r.valid {
		return 0
	}
	if v <= r.lower {
		return 0
	}
	if v >= r.upper {
		return 1
	}
	d := r.upper - r.lower
	if d == 0 {
		return 0
	}
	return float64(v-r.lower) / float64(d)
}
