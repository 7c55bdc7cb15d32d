package poster

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ParseColor accepts "#RRGGBB" or "#RGB".
func ParseColor(s string) (colorful.Color, error) {
	h := strings.TrimSpace(s)
	if len(h) == 4 && h[0] == '#' {
		h = string([]byte{'#', h[1], h[1], h[2], h[2], h[3], h[3]})
	}
	c, err := colorful.Hex(h)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return c, nil
}

// InterpolateColor blends a toward b in HSL space. ratio is clamped to
// [0,1]; hue is blended linearly without wrapping.
func InterpolateColor(a, b colorful.Color, ratio float64) colorful.Color {
	ratio = min(max(ratio, 0), 1)
	h1, s1, l1 := a.Hsl()
	h2, s2, l2 := b.Hsl()
	return colorful.Hsl(
		(1-ratio)*h1+ratio*h2,
		(1-ratio)*s1+ratio*s2,
		(1-ratio)*l1+ratio*l2,
	).Clamped()
}

// withAlpha returns c at the given opacity.
func withAlpha(c color.Color, opacity float64) color.Color {
	r, g, b, _ := c.RGBA()
	a := uint8(min(max(opacity, 0), 1) * 255)
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: a}
}
