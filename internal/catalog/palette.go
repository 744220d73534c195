package catalog

import "strings"

// Color is a palette token used by presentation.
type Color string

const (
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorPurple Color = "purple"
	ColorOrange Color = "orange"
	ColorRed    Color = "red"
	ColorTeal   Color = "teal"
	ColorPink   Color = "pink"
	ColorIndigo Color = "indigo"
	ColorYellow Color = "yellow"
	ColorGray   Color = "gray"
)

// FallbackColor is applied to calculators without a recognised color.
const FallbackColor = ColorBlue

var palette = map[Color]struct{}{
	ColorBlue:   {},
	ColorGreen:  {},
	ColorPurple: {},
	ColorOrange: {},
	ColorRed:    {},
	ColorTeal:   {},
	ColorPink:   {},
	ColorIndigo: {},
	ColorYellow: {},
	ColorGray:   {},
}

// Valid reports whether the color belongs to the palette.
func (c Color) Valid() bool {
	_, ok := palette[c]
	return ok
}

// NormalizeColor lower-cases the token and falls back to FallbackColor when
// the value is empty or not part of the palette.
func NormalizeColor(c Color) Color {
	c = Color(strings.ToLower(strings.TrimSpace(string(c))))
	if !c.Valid() {
		return FallbackColor
	}
	return c
}
