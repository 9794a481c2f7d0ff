// Soil generation using layered simplex noise. Produces the same flat
// bitmap format LoadSoil reads, for worlds that ship no pre-drawn map.
package world

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds soil generation parameters.
type GenConfig struct {
	Width     int
	Height    int
	Seed      int64
	SoilLevel float64 // Noise threshold above which a cell is soil (0.0–1.0)
}

// DefaultGenConfig returns a configuration yielding roughly two-thirds soil.
func DefaultGenConfig(width, height int, seed int64) GenConfig {
	return GenConfig{
		Width:     width,
		Height:    height,
		Seed:      seed,
		SoilLevel: 0.40,
	}
}

// GenerateSoil creates a soil bitmap by thresholding fractal noise.
func GenerateSoil(cfg GenConfig) *SoilMap {
	noise := opensimplex.NewNormalized(cfg.Seed)
	m := NewSoilMap(cfg.Width, cfg.Height)

	for r := 0; r < cfg.Height; r++ {
		for c := 0; c < cfg.Width; c++ {
			x := float64(c) / float64(cfg.Width)
			y := float64(r) / float64(cfg.Height)
			v := layeredNoise(noise, x*8, y*8, 4)
			m.SetSoil(r, c, v > cfg.SoilLevel)
		}
	}
	return m
}

// layeredNoise sums doubled-frequency copies of the base noise, each at
// half the weight of the layer before it, and rescales the result back
// to [0, 1].
func layeredNoise(noise opensimplex.Noise, x, y float64, layers int) float64 {
	sum, weight := 0.0, 0.0
	for l := 0; l < layers; l++ {
		scale := float64(int(1) << l)
		w := 1 / scale
		sum += noise.Eval2(x*scale, y*scale) * w
		weight += w
	}
	return sum / weight
}
