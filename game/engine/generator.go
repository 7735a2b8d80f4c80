package engine

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// Generator builds weighted grids from a seeded noise field
type Generator struct {
	Width     int
	Height    int
	MinWeight int
	MaxWeight int
	Scale     float64
	NewNoise  NoiseFactory
}

// NewGenerator creates a generator for the given dimensions and weight bounds
func NewGenerator(width, height, minWeight, maxWeight int) *Generator {
	return &Generator{
		Width:     width,
		Height:    height,
		MinWeight: minWeight,
		MaxWeight: maxWeight,
		Scale:     NoiseScale,
		NewNoise:  NewSimplexNoise,
	}
}

// Generate reseeds the noise field and produces a fresh grid. A zero seed
// draws a random one; the seed actually used is returned.
func (g *Generator) Generate(seed int64) (Grid, int64, error) {
	if seed == 0 {
		seed = RandomSeed()
	}

	factory := g.NewNoise
	if factory == nil {
		factory = NewSimplexNoise
	}

	scale := g.Scale
	if scale <= 0 {
		scale = NoiseScale
	}

	grid, err := generate(factory(seed), g.Width, g.Height, g.MinWeight, g.MaxWeight, scale)
	if err != nil {
		return nil, 0, err
	}
	return grid, seed, nil
}

// GenerateGrid samples noise at every cell and maps it onto [minWeight, maxWeight]
func GenerateGrid(noise NoiseField, width, height, minWeight, maxWeight int) (Grid, error) {
	return generate(noise, width, height, minWeight, maxWeight, NoiseScale)
}

// RandomSeed returns a non-zero random seed
func RandomSeed() int64 {
	for {
		if seed := rand.Int64(); seed != 0 {
			return seed
		}
	}
}

func generate(noise NoiseField, width, height, minWeight, maxWeight int, scale float64) (Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions must be positive, got %dx%d", ErrMalformedGrid, width, height)
	}
	if minWeight > maxWeight {
		return nil, fmt.Errorf("%w: min weight %d exceeds max weight %d", ErrMalformedGrid, minWeight, maxWeight)
	}
	if noise == nil {
		return nil, fmt.Errorf("%w: noise field is nil", ErrMalformedGrid)
	}

	span := float64(maxWeight - minWeight)
	grid := make(Grid, height)
	for y := 0; y < height; y++ {
		grid[y] = make([]int, width)
		for x := 0; x < width; x++ {
			// Rescale from [-1, 1] to [0, 1]
			v := noise.Eval(float64(x)/scale, float64(y)/scale)/2 + 0.5
			w := int(math.Round(v*span + float64(minWeight)))
			grid[y][x] = clamp(w, minWeight, maxWeight)
		}
	}

	return grid, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
