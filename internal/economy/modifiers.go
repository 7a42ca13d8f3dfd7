// Package economy composes store-network percentage bonuses onto release
// costs, sales and ratings.
package economy

import "math"

// MaxRating is the ceiling for every product rating.
const MaxRating = 5.0

// Modifiers are the global percentage bonuses sourced from the store network.
type Modifiers struct {
	ProductivityBonus int `json:"productivity_bonus"` // % off production cost
	AttractionBonus   int `json:"attraction_bonus"`   // % onto sales and rating
}

// ApplyProductivityModifier discounts baseCost by bonus percent, floored and never negative.
func ApplyProductivityModifier(baseCost int64, bonus int) int64 {
	reduction := float64(baseCost) * (float64(bonus) / 100)
	return int64(math.Max(0, math.Floor(float64(baseCost)-reduction)))
}

// ApplyAttractionModifier raises baseSales by bonus percent, floored.
func ApplyAttractionModifier(baseSales int64, bonus int) int64 {
	increase := float64(baseSales) * (float64(bonus) / 100)
	return int64(math.Floor(float64(baseSales) + increase))
}

// ApplyAttractionToRating adds half a star per 100% bonus, clamped to [0, MaxRating].
func ApplyAttractionToRating(baseRating float64, bonus int) float64 {
	return ClampRating(baseRating + (float64(bonus)/100)*0.5)
}

// ClampRating bounds a rating to [0, MaxRating].
func ClampRating(r float64) float64 {
	if r < 0 {
		return 0
	}
	if r > MaxRating {
		return MaxRating
	}
	return r
}
