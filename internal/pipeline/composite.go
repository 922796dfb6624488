package pipeline

import "glowview/internal/raster"

// Composite writes base + glow into dst, channel by channel, without
// clamping. Values above 1 are left for the tone mapper to roll off.
// All three buffers must share dimensions.
func Composite(base, glow, dst *raster.FrameBuffer) {
	b, g, d := base.Color, glow.Color, dst.Color
	for i := range d {
		d[i] = b[i] + g[i]
	}
}
