package chart

import "image/color"

// Samples of the viridis colormap, dark purple to yellow.
var viridisStops = []color.RGBA{
	{68, 1, 84, 255},
	{72, 40, 120, 255},
	{62, 74, 137, 255},
	{49, 104, 142, 255},
	{38, 130, 142, 255},
	{31, 158, 137, 255},
	{53, 183, 121, 255},
	{109, 205, 89, 255},
	{180, 222, 44, 255},
	{253, 231, 37, 255},
}

// viridis returns n colors spread evenly across the colormap.
func viridis(n int) []color.Color {
	out := make([]color.Color, n)
	if n == 0 {
		return out
	}
	if n == 1 {
		out[0] = viridisStops[len(viridisStops)/2]
		return out
	}

	last := float64(len(viridisStops) - 1)
	for i := range out {
		pos := float64(i) / float64(n-1) * last
		lo := int(pos)
		if lo >= len(viridisStops)-1 {
			out[i] = viridisStops[len(viridisStops)-1]
			continue
		}
		out[i] = lerp(viridisStops[lo], viridisStops[lo+1], pos-float64(lo))
	}
	return out
}

func lerp(a, b color.RGBA, t float64) color.RGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t + 0.5)
	}
	return color.RGBA{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), 255}
}
