package ranges

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/banshee-data/trackposter/internal/units"
)

func TestRange_Invalid(t *testing.T) {
	var r ValueRange
	assert.False(t, r.IsValid())
	assert.Zero(t, r.Diameter())
	assert.False(t, r.Contains(0))
	assert.Zero(t, r.RelativePosition(5))
	_, ok := r.Interpolate(0.5)
	assert.False(t, ok)
}

func TestRange_Laws(t *testing.T) {
	r := FromPair(2.0, 10.0)

	assert.Equal(t, 0.0, r.RelativePosition(2))
	assert.Equal(t, 1.0, r.RelativePosition(10))
	assert.Equal(t, 0.0, r.RelativePosition(-3), "below lower clamps")
	assert.Equal(t, 1.0, r.RelativePosition(42), "above upper clamps")

	for _, v := range []float64{2, 3.5, 6, 9.75, 10} {
		got, ok := r.Interpolate(r.RelativePosition(v))
		assert.True(t, ok)
		assert.InDelta(t, v, got, 1e-12, "interpolate(relative_position(%v))", v)
	}
}

func TestRange_ExtendNeverShrinks(t *testing.T) {
	var r ValueRange
	values := []float64{5, 3, 8, 4, 8, -1, 2}
	prevLo, prevHi := 0.0, 0.0
	for i, v := range values {
		r.Extend(v)
		lo, _ := r.Lower()
		hi, _ := r.Upper()
		if i > 0 {
			assert.LessOrEqual(t, lo, prevLo)
			assert.GreaterOrEqual(t, hi, prevHi)
		}
		assert.True(t, r.Contains(v))
		prevLo, prevHi = lo, hi
	}
	assert.Equal(t, 9.0, r.Diameter())

	r.Clear()
	assert.False(t, r.IsValid())
}

func TestRange_ZeroDiameter(t *testing.T) {
	r := FromPair(4.0, 4.0)
	assert.True(t, r.IsValid())
	assert.Zero(t, r.Diameter())
	assert.Zero(t, r.RelativePosition(4))
}

func TestQuantityRange(t *testing.T) {
	var r QuantityRange
	r.Extend(units.Km(5))
	r.Extend(units.Km(15))
	assert.Equal(t, units.Km(10), r.Diameter())
	assert.InDelta(t, 0.5, r.RelativePosition(units.Km(10)), 1e-12)
}
