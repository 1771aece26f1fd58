package analytics

import (
	"fmt"
	"strconv"

	"github.com/okian/engage/internal/domain/types"
)

var (
	heatmapStops = []string{"#f7fbff", "#c6dbef", "#6baed6", "#2171b5", "#08306b"}
	scatterStops = []string{"#440154", "#3b528b", "#21918c", "#5ec962", "#fde725"}
)

type rgb struct{ r, g, b uint8 }

// sankeyPalette colors nodes by their position on the path axis.
var sankeyPalette = []rgb{
	{178, 34, 34},   // firebrick
	{255, 69, 0},    // orangered
	{34, 139, 34},   // forestgreen
	{138, 43, 226},  // blueviolet
	{128, 128, 128}, // grey
	{0, 139, 139},   // darkcyan
	{100, 149, 237}, // cornflowerblue
	{199, 21, 133},  // mediumvioletred
	{64, 224, 208},  // turquoise
	{139, 69, 19},   // saddlebrown
}

func (c rgb) rgba(alpha float64) string {
	return fmt.Sprintf("rgba(%d,%d,%d,%g)", c.r, c.g, c.b, alpha)
}

func sankeyColor(index int, alpha float64) string {
	return sankeyPalette[index%len(sankeyPalette)].rgba(alpha)
}

// scale builds a color scale over [lo, hi], split into discrete steps when asked.
func (r *run) scale(stops []string, lo, hi float64) *types.ColorScale {
	cs := &types.ColorScale{Min: lo, Max: hi, Colors: stops}
	if r.settings.SteppedColors {
		cs.Colors = Ramp(stops, r.settings.ColorDivisions)
		cs.Stepped = true
	}
	return cs
}

// Ramp samples n evenly spaced colors along the hex color stops.
func Ramp(stops []string, n int) []string {
	if n <= 0 || len(stops) == 0 {
		return nil
	}
	parsed := make([]rgb, len(stops))
	for i, s := range stops {
		parsed[i] = parseHex(s)
	}
	if n == 1 || len(parsed) == 1 {
		return []string{stops[0]}
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		pos := float64(i) / float64(n-1) * float64(len(parsed)-1)
		lo := int(pos)
		if lo >= len(parsed)-1 {
			lo = len(parsed) - 2
		}
		t := pos - float64(lo)
		a, b := parsed[lo], parsed[lo+1]
		out[i] = fmt.Sprintf("#%02x%02x%02x", mix(a.r, b.r, t), mix(a.g, b.g, t), mix(a.b, b.b, t))
	}
	return out
}

func mix(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
}

func parseHex(s string) rgb {
	if len(s) != 7 || s[0] != '#' {
		return rgb{}
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return rgb{}
	}
	return rgb{uint8(v >> 16), uint8(v >> 8), uint8(v)}
}
