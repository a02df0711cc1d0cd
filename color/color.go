// Package color implements the LESS color model: hex and rgb()/rgba()
// parsing, RGB/HSL conversion, and the lighten/darken/fade/overlay
// color functions.
package color

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RGBA is a color with each channel normalized to [0, 1].
type RGBA struct {
	R, G, B, A float64
}

func (c RGBA) clamp() RGBA {
	return RGBA{
		R: clamp01(c.R),
		G: clamp01(c.G),
		B: clamp01(c.B),
		A: clamp01(c.A),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Parse parses a `#hex`, `#hexalpha`, `rgb(...)`, or `rgba(...)` color
// literal. It returns false if input matches none of these forms.
func Parse(input string) (RGBA, bool) {
	trimmed := strings.TrimSpace(input)
	if strings.HasPrefix(trimmed, "#") {
		return parseHex(trimmed[1:])
	}
	lowered := strings.ToLower(trimmed)
	if strings.HasPrefix(lowered, "rgba") {
		return parseRGBFunction(lowered, true)
	}
	if strings.HasPrefix(lowered, "rgb") {
		return parseRGBFunction(lowered, false)
	}
	return RGBA{}, false
}

// Lighten increases lightness by amount (a fraction in [0, 1]).
func Lighten(c RGBA, amount float64) RGBA {
	h, s, l := rgbToHSL(c)
	return hslToRGB(h, s, clamp01(l+amount), c.A)
}

// Darken decreases lightness by amount (a fraction in [0, 1]).
func Darken(c RGBA, amount float64) RGBA {
	h, s, l := rgbToHSL(c)
	return hslToRGB(h, s, clamp01(l-amount), c.A)
}

// Fade replaces alpha with amount (a fraction in [0, 1]).
func Fade(c RGBA, amount float64) RGBA {
	c.A = clamp01(amount)
	return c.clamp()
}

// Overlay blends top and bottom with the "overlay" mode and Porter-Duff
// compositing. The argument order mirrors the reference implementation:
// colorBlend treats its second positional argument as the backdrop and
// its third as the source layer, so top is the backdrop and bottom is
// the source layer.
func Overlay(top, bottom RGBA) RGBA {
	return colorBlend(blendOverlay, top, bottom)
}

// FormatHex renders a color as `#rrggbb`, ignoring alpha.
func FormatHex(c RGBA) string {
	c = c.clamp()
	return fmt.Sprintf("#%02x%02x%02x", toChannel(c.R), toChannel(c.G), toChannel(c.B))
}

// FormatRGBA renders a color as `rgba(r, g, b, a)` with alpha formatted
// to at most 3 decimal places, trailing zeros stripped.
func FormatRGBA(c RGBA) string {
	c = c.clamp()
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", toChannel(c.R), toChannel(c.G), toChannel(c.B), formatFloat(c.A))
}

func parseHex(hex string) (RGBA, bool) {
	switch len(hex) {
	case 3:
		r, ok1 := hexValue(hex[0:1])
		g, ok2 := hexValue(hex[1:2])
		b, ok3 := hexValue(hex[2:3])
		if !ok1 || !ok2 || !ok3 {
			return RGBA{}, false
		}
		return RGBA{R: float64(r*17) / 255, G: float64(g*17) / 255, B: float64(b*17) / 255, A: 1}, true
	case 6:
		r, ok1 := hexValue(hex[0:2])
		g, ok2 := hexValue(hex[2:4])
		b, ok3 := hexValue(hex[4:6])
		if !ok1 || !ok2 || !ok3 {
			return RGBA{}, false
		}
		return RGBA{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255, A: 1}, true
	case 8:
		r, ok1 := hexValue(hex[0:2])
		g, ok2 := hexValue(hex[2:4])
		b, ok3 := hexValue(hex[4:6])
		a, ok4 := hexValue(hex[6:8])
		if !ok1 || !ok2 || !ok3 || !ok4 {
			return RGBA{}, false
		}
		return RGBA{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255, A: float64(a) / 255}, true
	default:
		return RGBA{}, false
	}
}

func parseRGBFunction(input string, hasAlpha bool) (RGBA, bool) {
	start := strings.IndexByte(input, '(')
	end := strings.LastIndexByte(input, ')')
	if start < 0 || end < 0 || end <= start {
		return RGBA{}, false
	}
	body := input[start+1 : end]
	var parts []string
	for _, p := range strings.Split(body, ",") {
		parts = append(parts, strings.TrimSpace(p))
	}
	if hasAlpha && len(parts) != 4 {
		return RGBA{}, false
	}
	if !hasAlpha && len(parts) != 3 {
		return RGBA{}, false
	}
	r, ok1 := parseU8(parts[0])
	g, ok2 := parseU8(parts[1])
	b, ok3 := parseU8(parts[2])
	if !ok1 || !ok2 || !ok3 {
		return RGBA{}, false
	}
	a := 1.0
	if hasAlpha {
		var ok4 bool
		a, ok4 = parseAlpha(parts[3])
		if !ok4 {
			return RGBA{}, false
		}
	}
	return RGBA{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255, A: a}, true
}

func parseU8(input string) (uint8, bool) {
	v, err := strconv.ParseUint(input, 10, 8)
	if err != nil {
		return 0, false
	}
	return uint8(v), true
}

func parseAlpha(input string) (float64, bool) {
	if strings.HasSuffix(input, "%") {
		num, err := strconv.ParseFloat(strings.TrimSuffix(input, "%"), 64)
		if err != nil {
			return 0, false
		}
		return clamp01(num / 100), true
	}
	v, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return 0, false
	}
	return clamp01(v), true
}

// colorBlend applies mode per-channel with Porter-Duff compositing.
// Parameter names follow the blend math's own convention (bottom is
// the backdrop, top is the source layer); callers decide which of
// their arguments plays which role.
func colorBlend(mode func(a, b float64) float64, bottom, top RGBA) RGBA {
	ab := bottom.A
	at := top.A
	ar := at + ab*(1-at)

	bottomChannels := [3]float64{bottom.R, bottom.G, bottom.B}
	topChannels := [3]float64{top.R, top.G, top.B}
	var result [3]float64
	for i := 0; i < 3; i++ {
		cb := bottomChannels[i]
		cs := topChannels[i]
		cr := mode(cb, cs)
		if ar > 0 {
			cr = (at*cs + ab*(cb-at*(cb+cs-cr))) / ar
		}
		result[i] = cr
	}
	return RGBA{R: result[0], G: result[1], B: result[2], A: ar}.clamp()
}

func blendMultiply(a, b float64) float64 {
	return a * b
}

func blendScreen(a, b float64) float64 {
	return a + b - a*b
}

func blendOverlay(base, overlay float64) float64 {
	if base <= 0.5 {
		return blendMultiply(base*2, overlay)
	}
	return blendScreen(base*2-1, overlay)
}

func hexValue(hex string) (uint8, bool) {
	v, err := strconv.ParseUint(hex, 16, 8)
	if err != nil {
		return 0, false
	}
	return uint8(v), true
}

func rgbToHSL(c RGBA) (h, s, l float64) {
	r, g, b := c.R, c.G, c.B
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	l = (max + min) / 2

	if math.Abs(max-min) < 1e-12 {
		return 0, 0, l
	}

	d := max - min
	if l > 0.5 {
		s = d / (2 - max - min)
	} else {
		s = d / (max + min)
	}

	switch {
	case math.Abs(max-r) < 1e-12:
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case math.Abs(max-g) < 1e-12:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	h /= 6

	return h, s, l
}

func hslToRGB(h, s, l, alpha float64) RGBA {
	if s <= 0 {
		return RGBA{R: l, G: l, B: l, A: alpha}
	}

	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q

	r := hueToRGB(p, q, h+1.0/3.0)
	g := hueToRGB(p, q, h)
	b := hueToRGB(p, q, h-1.0/3.0)

	return RGBA{R: r, G: g, B: b, A: alpha}.clamp()
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	default:
		return p
	}
}

func toChannel(value float64) int {
	v := math.Round(value * 255)
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return int(v)
}

func formatFloat(value float64) string {
	formatted := strconv.FormatFloat(value, 'f', 3, 64)
	for strings.Contains(formatted, ".") && strings.HasSuffix(formatted, "0") {
		formatted = formatted[:len(formatted)-1]
	}
	formatted = strings.TrimSuffix(formatted, ".")
	if formatted == "" {
		return "0"
	}
	return formatted
}
