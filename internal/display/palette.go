package display

import "image/color"

// Color is one entry of the fixed display palette.
type Color string

const (
	ColorWhite  Color = "white"
	ColorGrey   Color = "grey"
	ColorBlue   Color = "blue"
	ColorTeal   Color = "teal"
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
	ColorOrange Color = "orange"
	ColorRed    Color = "red"
	ColorViolet Color = "violet"
)

var palette = map[Color]color.RGBA{
	ColorWhite:  {0xff, 0xff, 0xff, 0xff},
	ColorGrey:   {0x80, 0x80, 0x80, 0xff},
	ColorBlue:   {0x1e, 0x90, 0xff, 0xff},
	ColorTeal:   {0x00, 0xc8, 0xb4, 0xff},
	ColorGreen:  {0x32, 0xcd, 0x32, 0xff},
	ColorYellow: {0xff, 0xd7, 0x00, 0xff},
	ColorOrange: {0xff, 0x8c, 0x00, 0xff},
	ColorRed:    {0xff, 0x30, 0x30, 0xff},
	ColorViolet: {0xa0, 0x50, 0xff, 0xff},
}

// RGBA returns the panel color for c. Unknown colors render white.
func (c Color) RGBA() color.RGBA {
	if rgba, ok := palette[c]; ok {
		return rgba
	}
	return palette[ColorWhite]
}

// TemperatureColor classifies a temperature in degrees Celsius.
// Bands: <=5, <=18, <=25, <=30, <=35, >35.
func TemperatureColor(c float64) Color {
	switch {
	case c <= 5:
		return ColorBlue
	case c <= 18:
		return ColorTeal
	case c <= 25:
		return ColorGreen
	case c <= 30:
		return ColorYellow
	case c <= 35:
		return ColorOrange
	default:
		return ColorRed
	}
}

// HumidityColor classifies relative humidity in percent.
func HumidityColor(pct float64) Color {
	switch {
	case pct < 30:
		return ColorOrange
	case pct <= 60:
		return ColorGreen
	default:
		return ColorBlue
	}
}

// UVColor classifies a UV index on the WHO scale.
func UVColor(uvi float64) Color {
	switch {
	case uvi < 3:
		return ColorGreen
	case uvi < 6:
		return ColorYellow
	case uvi < 8:
		return ColorOrange
	case uvi < 11:
		return ColorRed
	default:
		return ColorViolet
	}
}
