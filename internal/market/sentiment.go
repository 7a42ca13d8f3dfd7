package market

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Strength bounds for competitors under sentiment drift.
const (
	MinStrength = 50.0
	MaxStrength = 300.0
)

const (
	sentimentOctaves     = 3
	sentimentFrequency   = 0.05
	sentimentPersistence = 0.5
)

// Sentiment is a seeded 2D noise field sampled at (day, competitor index).
// Neighbouring days give correlated values, so strength trends rather than jitters.
type Sentiment struct {
	noise opensimplex.Noise
}

// NewSentiment creates a sentiment field for seed.
func NewSentiment(seed int64) *Sentiment {
	return &Sentiment{noise: opensimplex.New(seed)}
}

// Sample returns the noise in [-1, 1] for a competitor on a day.
func (s *Sentiment) Sample(day, index int) float64 {
	v := octaveNoise(s.noise, float64(day), float64(index)*7.3, sentimentOctaves, sentimentFrequency, sentimentPersistence)
	return clamp(v, -1, 1)
}

// Drift applies one day of sentiment to strength, scaled by volatility and clamped.
func (s *Sentiment) Drift(strength float64, day, index int, volatility float64) float64 {
	return clamp(strength+s.Sample(day, index)*volatility, MinStrength, MaxStrength)
}

// octaveNoise layers several frequencies of noise.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
