// Package color decodes the two color notations found in generated stylesheets.
package color

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an 8-bit RGBA value. The zero Color is transparent black and doubles as
// the result of any malformed token.
type Color struct {
	R, G, B, A uint8
}

// Opaque returns a fully opaque color.
func Opaque(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// IsZero reports whether c is the transparent black fallback.
func (c Color) IsZero() bool {
	return c == Color{}
}

// Hex formats c as #rrggbb. Alpha is not represented.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) String() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %d)", c.R, c.G, c.B, c.A)
}

// RGBA implements image/color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	a = uint32(c.A)
	a |= a << 8
	return r, g, b, a
}

// Parse decodes a "#rrggbb" or "rgb(r, g, b)" token. Anything it cannot decode
// yields the zero Color rather than an error.
func Parse(token string) Color {
	token = strings.TrimSpace(token)
	if i := strings.IndexByte(token, '#'); i >= 0 {
		return ParseHex(token[i:])
	}
	return ParseRGB(token)
}

// ParseHex decodes the first seven bytes of s as #rrggbb.
func ParseHex(s string) Color {
	if len(s) < 7 || s[0] != '#' {
		return Color{}
	}
	c, err := colorful.Hex(s[:7])
	if err != nil {
		return Color{}
	}
	r, g, b := c.RGB255()
	return Opaque(r, g, b)
}

// ParseRGB collects decimal groups of at most three digits from s. Exactly three
// groups, each within 0..255, produce an opaque color.
func ParseRGB(s string) Color {
	groups := digitGroups(s)
	if len(groups) != 3 {
		return Color{}
	}
	var channels [3]uint8
	for i, group := range groups {
		v, err := strconv.ParseUint(group, 10, 8)
		if err != nil {
			return Color{}
		}
		channels[i] = uint8(v)
	}
	return Opaque(channels[0], channels[1], channels[2])
}

// digitGroups splits every run of ASCII digits into chunks of up to three digits.
func digitGroups(s string) []string {
	var groups []string
	start := -1
	for i := 0; i <= len(s); i++ {
		isDigit := i < len(s) && s[i] >= '0' && s[i] <= '9'
		if isDigit {
			if start < 0 {
				start = i
			}
			if i-start == 3 {
				groups = append(groups, s[start:i])
				start = i
			}
			continue
		}
		if start >= 0 {
			groups = append(groups, s[start:i])
			start = -1
		}
	}
	return groups
}

// Lerp moves from a toward b by t, clamped to [0, 1].
func Lerp(a, b Color, t float64) Color {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	blended := toColorful(a).BlendRgb(toColorful(b), t)
	r, g, bl := blended.RGB255()
	alpha := float64(a.A) + (float64(b.A)-float64(a.A))*t
	return Color{R: r, G: g, B: bl, A: uint8(alpha + 0.5)}
}

func toColorful(c Color) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}
