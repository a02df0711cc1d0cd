package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex3(t *testing.T) {
	c, ok := Parse("#2c2")
	require.True(t, ok)
	assert.InDelta(t, 34.0/255, c.R, 1e-9)
	assert.InDelta(t, 204.0/255, c.G, 1e-9)
	assert.InDelta(t, 34.0/255, c.B, 1e-9)
	assert.Equal(t, 1.0, c.A)
}

func TestParseHex6(t *testing.T) {
	c, ok := Parse("#2c2c2c")
	require.True(t, ok)
	assert.Equal(t, "#2c2c2c", FormatHex(c))
}

func TestParseHex8IncludesAlpha(t *testing.T) {
	c, ok := Parse("#ffffff80")
	require.True(t, ok)
	assert.InDelta(t, 128.0/255, c.A, 1e-6)
}

func TestParseRGBFunction(t *testing.T) {
	c, ok := Parse("rgb(255, 0, 0)")
	require.True(t, ok)
	assert.Equal(t, "#ff0000", FormatHex(c))
	assert.Equal(t, 1.0, c.A)
}

func TestParseRGBAFunction(t *testing.T) {
	c, ok := Parse("rgba(255, 255, 255, 0.05)")
	require.True(t, ok)
	assert.InDelta(t, 0.05, c.A, 1e-9)
}

func TestParseRGBAPercentAlpha(t *testing.T) {
	c, ok := Parse("rgba(0, 0, 0, 50%)")
	require.True(t, ok)
	assert.InDelta(t, 0.5, c.A, 1e-9)
}

func TestParseInvalidColorFails(t *testing.T) {
	_, ok := Parse("not-a-color")
	assert.False(t, ok)
}

func TestLightenAndDarken(t *testing.T) {
	base, _ := Parse("#808080")
	lighter := Lighten(base, 0.2)
	darker := Darken(base, 0.2)
	hL, _, lL := rgbToHSL(lighter)
	hD, _, lD := rgbToHSL(darker)
	_ = hL
	_ = hD
	assert.Greater(t, lL, 0.5)
	assert.Less(t, lD, 0.5)
}

func TestFadeReplacesAlpha(t *testing.T) {
	white, _ := Parse("#ffffff")
	faded := Fade(white, 1.0)
	assert.Equal(t, "rgba(255, 255, 255, 1)", FormatRGBA(faded))
}

func TestOverlayMatchesReferenceBlend(t *testing.T) {
	top, _ := Parse("rgba(255, 255, 255, 0.05)")
	bottom, _ := Parse("#2c2c2c")
	blended := Overlay(top, bottom)
	assert.Equal(t, "#373737", FormatHex(blended))
}

func TestFormatRGBAStripsTrailingZeros(t *testing.T) {
	c := RGBA{R: 1, G: 0, B: 0, A: 0.5}
	assert.Equal(t, "rgba(255, 0, 0, 0.5)", FormatRGBA(c))
}
