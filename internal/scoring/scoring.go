// Package scoring ranks released products for the yearly awards.
package scoring

import (
	"slices"
	"sort"

	"github.com/talgya/device-tycoon/internal/game"
)

// ProductScore weights sales, rating and price into one number.
func ProductScore(p game.ReleasedProduct) float64 {
	return float64(p.Sales)/1000 + p.Rating*1000 + float64(p.Price)/10
}

// FindBestProduct returns the highest scoring product. The first product in
// input order wins ties. ok is false for an empty slice.
func FindBestProduct(products []game.ReleasedProduct) (best game.ReleasedProduct, ok bool) {
	if len(products) == 0 {
		return game.ReleasedProduct{}, false
	}
	best = products[0]
	bestScore := ProductScore(best)
	for _, p := range products[1:] {
		if s := ProductScore(p); s > bestScore {
			best, bestScore = p, s
		}
	}
	return best, true
}

// FilterByYearAndCategory keeps products released in year with exactly category.
func FilterByYearAndCategory(products []game.ReleasedProduct, year int, category string) []game.ReleasedProduct {
	var out []game.ReleasedProduct
	for _, p := range products {
		if p.Year == year && p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// AvailableYears returns distinct release years, most recent first.
func AvailableYears(products []game.ReleasedProduct) []int {
	seen := make(map[int]bool)
	var years []int
	for _, p := range products {
		if !seen[p.Year] {
			seen[p.Year] = true
			years = append(years, p.Year)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// Award is the winner of one category in one year.
type Award struct {
	Year     int                  `json:"year"`
	Category string               `json:"category"`
	Product  game.ReleasedProduct `json:"product"`
	Score    float64              `json:"score"`
}

// BestProductsOfYear picks a winner per category. Known categories come first
// in display order, then any others alphabetically. Empty categories are skipped.
func BestProductsOfYear(products []game.ReleasedProduct, year int) []Award {
	var extra []string
	for _, p := range products {
		if p.Year == year && !slices.Contains(game.Categories, p.Category) && !slices.Contains(extra, p.Category) {
			extra = append(extra, p.Category)
		}
	}
	sort.Strings(extra)

	var awards []Award
	for _, cat := range append(slices.Clone(game.Categories), extra...) {
		best, ok := FindBestProduct(FilterByYearAndCategory(products, year, cat))
		if !ok {
			continue
		}
		awards = append(awards, Award{Year: year, Category: cat, Product: best, Score: ProductScore(best)})
	}
	return awards
}
