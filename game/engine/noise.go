package engine

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// NoiseField samples a continuous scalar field. Eval returns values in [-1, 1].
type NoiseField interface {
	Eval(x, y float64) float64
}

// NoiseFactory builds a NoiseField for a seed. Generators call it once per regeneration.
type NoiseFactory func(seed int64) NoiseField

// simplexNoise adapts OpenSimplex to NoiseField
type simplexNoise struct {
	noise opensimplex.Noise
}

// NewSimplexNoise returns an OpenSimplex noise field for the given seed
func NewSimplexNoise(seed int64) NoiseField {
	return &simplexNoise{noise: opensimplex.New(seed)}
}

func (s *simplexNoise) Eval(x, y float64) float64 {
	return s.noise.Eval2(x, y)
}

// NoiseFunc lets a plain function act as a NoiseField
type NoiseFunc func(x, y float64) float64

func (f NoiseFunc) Eval(x, y float64) float64 {
	return f(x, y)
}
