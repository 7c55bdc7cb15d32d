package ranges

import (
	"errors"
	"fmt"
	"iter"
	"regexp"
	"strconv"
)

// ErrInvalidYearRange is returned for malformed or inverted year specs.
var ErrInvalidYearRange = errors.New("invalid year range")

var (
	singleYearRe = regexp.MustCompile(`^\d+$`)
	yearSpanRe   = regexp.MustCompile(`^(\d+)-(\d+)$`)
)

// YearRange is an inclusive span of calendar years. The zero value is
// unbounded and matches every year.
type YearRange struct {
	from, to int
	bounded  bool
}

// AllYears returns the unbounded range.
func AllYears() YearRange { return YearRange{} }

// NewYearRange returns the inclusive span [from, to].
func NewYearRange(from, to int) (YearRange, error) {
	if from > to {
		return YearRange{}, fmt.Errorf("%w: %d-%d", ErrInvalidYearRange, from, to)
	}
	return YearRange{from: from, to: to, bounded: true}, nil
}

// ParseYearRange accepts "all", "NNNN" or "NNNN-MMMM" with NNNN <= MMMM.
func ParseYearRange(s string) (YearRange, error) {
	if s == "all" {
		return AllYears(), nil
	}
	if singleYearRe.MatchString(s) {
		y, err := strconv.Atoi(s)
		if err != nil {
			return YearRange{}, fmt.Errorf("%w: %q", ErrInvalidYearRange, s)
		}
		return YearRange{from: y, to: y, bounded: true}, nil
	}
	if m := yearSpanRe.FindStringSubmatch(s); m != nil {
		y1, err1 := strconv.Atoi(m[1])
		y2, err2 := strconv.Atoi(m[2])
		if err1 == nil && err2 == nil {
			return NewYearRange(y1, y2)
		}
	}
	return YearRange{}, fmt.Errorf("%w: %q", ErrInvalidYearRange, s)
}

// IsAll reports whether the range is unbounded.
func (r YearRange) IsAll() bool { return !r.bounded }

// From returns the first year and whether the range is bounded.
func (r YearRange) From() (int, bool) { return r.from, r.bounded }

// To returns the last year and whether the range is bounded.
func (r YearRange) To() (int, bool) { return r.to, r.bounded }

// Add extends the range to include year. An unbounded range becomes the
// single year.
func (r *YearRange) Add(year int) {
	switch {
	case !r.bounded:
		r.from, r.to, r.bounded = year, year, true
	case year < r.from:
		r.from = year
	case year > r.to:
		r.to = year
	}
}

func (r YearRange) Contains(year int) bool {
	if !r.bounded {
		return true
	}
	return r.from <= year && year <= r.to
}

// Count returns the number of years spanned; false for an unbounded range.
func (r YearRange) Count() (int, bool) {
	if !r.bounded {
		return 0, false
	}
	return 1 + r.to - r.from, true
}

// Years yields every year in the range in ascending order. An unbounded
// range yields nothing.
func (r YearRange) Years() iter.Seq[int] {
	return func(yield func(int) bool) {
		if !r.bounded {
			return
		}
		for y := r.from; y <= r.to; y++ {
			if !yield(y) {
				return
			}
		}
	}
}

func (r YearRange) String() string {
	switch {
	case !r.bounded:
		return "all"
	case r.from == r.to:
		return strconv.Itoa(r.from)
	default:
		return fmt.Sprintf("%d-%d", r.from, r.to)
	}
}
