package game

import "slices"

// Categories lists device categories in their display order.
var Categories = []string{"smartphones", "tablets", "watches", "smart-glasses", "laptops", "foldables"}

// ReleasedProduct is immutable once released, except Features may be extended.
type ReleasedProduct struct {
	ProductID string   `json:"product_id"`
	Name      string   `json:"name"`
	Category  string   `json:"category"`
	Year      int      `json:"year"`
	Sales     int64    `json:"sales"`
	Rating    float64  `json:"rating"`
	Price     int64    `json:"price"`
	Features  []string `json:"features"`
}

// WithFeatures returns a copy with extra descriptors appended.
func (p ReleasedProduct) WithFeatures(extra ...string) ReleasedProduct {
	p.Features = append(slices.Clone(p.Features), extra...)
	return p
}

// Logo returns the first feature, which holds the product logo when one was supplied.
func (p ReleasedProduct) Logo() string {
	if len(p.Features) == 0 {
		return ""
	}
	return p.Features[0]
}
