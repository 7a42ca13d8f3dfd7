package economy

import (
	"errors"
	"math"
)

// UnitCost is the raw production cost of one unit before productivity bonuses.
const UnitCost = 100

// Upper bounds on release inputs. They keep every cost and sales figure
// well inside int64.
const (
	MaxPrice            = 1_000_000_000
	MaxProductionVolume = 1_000_000_000
	MaxMarketingBudget  = 1_000_000_000_000
)

// ErrInvalidRelease is returned for release inputs outside their allowed ranges.
var ErrInvalidRelease = errors.New("price and production volume must be positive, marketing budget non-negative, all within limits")

// ReleaseInputs are the player's launch parameters for one product.
type ReleaseInputs struct {
	Price            int64 `json:"price"`
	ProductionVolume int64 `json:"production_volume"`
	MarketingBudget  int64 `json:"marketing_budget"`
}

// Validate checks the inputs are usable.
func (in ReleaseInputs) Validate() error {
	if in.Price <= 0 || in.ProductionVolume <= 0 || in.MarketingBudget < 0 {
		return ErrInvalidRelease
	}
	if in.Price > MaxPrice || in.ProductionVolume > MaxProductionVolume || in.MarketingBudget > MaxMarketingBudget {
		return ErrInvalidRelease
	}
	return nil
}

// Quote is the full cost/sales/rating breakdown of a release.
type Quote struct {
	BaseProductionCost     int64   `json:"base_production_cost"`
	AdjustedProductionCost int64   `json:"adjusted_production_cost"`
	TotalCost              int64   `json:"total_cost"`
	BaseSales              int64   `json:"base_sales"`
	AdjustedSales          int64   `json:"adjusted_sales"`
	BaseRating             float64 `json:"base_rating"`
	AdjustedRating         float64 `json:"adjusted_rating"`
}

// BaseRating scores raw release inputs on the 0-5 scale.
func BaseRating(in ReleaseInputs) float64 {
	score := float64(in.Price)*float64(in.ProductionVolume)/1000 + float64(in.MarketingBudget)/100
	return ClampRating(math.Min(MaxRating, score/10000))
}

// QuoteRelease computes raw figures first and applies the bonuses second.
func QuoteRelease(in ReleaseInputs, mods Modifiers) Quote {
	baseCost := in.ProductionVolume * UnitCost
	adjustedCost := ApplyProductivityModifier(baseCost, mods.ProductivityBonus)

	baseSales := in.ProductionVolume
	baseRating := BaseRating(in)

	return Quote{
		BaseProductionCost:     baseCost,
		AdjustedProductionCost: adjustedCost,
		TotalCost:              adjustedCost + in.MarketingBudget,
		BaseSales:              baseSales,
		AdjustedSales:          ApplyAttractionModifier(baseSales, mods.AttractionBonus),
		BaseRating:             baseRating,
		AdjustedRating:         ApplyAttractionToRating(baseRating, mods.AttractionBonus),
	}
}

// Defaults used when a release request leaves volume or marketing unset.
const (
	DefaultProductionVolume = 10000
	DefaultMarketingBudget  = 50000
)
