package core

// Color represents a foreground color for a screen cell.
// Values map to ANSI 256-color codes in the platform layer.
type Color uint8

// Colors used by the playfield, HUD and effects.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightCyan
	ColorOrange
	ColorGray
)

// ConfettiPalette is cycled through by confetti effects using their variant.
var ConfettiPalette = []Color{
	ColorBrightYellow,
	ColorMagenta,
	ColorBrightCyan,
	ColorBrightGreen,
	ColorOrange,
}

// PaletteColor picks a color from the palette for the given variant.
// Negative variants wrap around.
func PaletteColor(palette []Color, variant int) Color {
	if len(palette) == 0 {
		return ColorDefault
	}
	i := variant % len(palette)
	if i < 0 {
		i += len(palette)
	}
	return palette[i]
}
