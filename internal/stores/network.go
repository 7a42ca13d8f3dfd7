// Package stores models the player's retail network. The network only grows,
// and its bonuses are always derived from the store count.
package stores

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/talgya/device-tycoon/internal/game"
)

// BuildCost is the flat price of one flagship store.
const BuildCost int64 = 100000

// Per-store bonus percentages.
const (
	ProductivityPerStore = 5
	AttractionPerStore   = 3
)

var (
	ErrStoreExists  = errors.New("store already exists in country")
	ErrEmptyCountry = errors.New("country is required")
)

// Countries lists the markets offered for expansion, in display order.
var Countries = []string{
	"United States", "China", "Japan", "Germany", "United Kingdom",
	"France", "India", "Brazil", "Canada", "South Korea",
	"Australia", "Mexico", "Spain", "Italy", "Netherlands",
}

// Store is one built location. Country is the unique key.
type Store struct {
	Country           string `json:"country"`
	StoreName         string `json:"store_name"`
	Location          string `json:"location"`
	Employees         int    `json:"employees"`
	InventoryCapacity int    `json:"inventory_capacity"`
	EstablishmentDate string `json:"establishment_date"`
}

// NewStore returns the standard flagship store for country.
func NewStore(country, established string) Store {
	return Store{
		Country:           country,
		StoreName:         country + " Flagship Store",
		Location:          country + " - Main District",
		Employees:         50,
		InventoryCapacity: 10000,
		EstablishmentDate: established,
	}
}

// Network is the set of stores plus the bonuses they grant.
type Network struct {
	Stores                 []Store `json:"stores"`
	ProductivityBonus      int     `json:"productivity_bonus"`
	ProductAttractionBonus int     `json:"product_attraction_bonus"`
}

// NewNetwork returns an empty network.
func NewNetwork() *Network {
	return &Network{Stores: []Store{}}
}

// Has reports whether a store exists in country. Matching is exact.
func (n *Network) Has(country string) bool {
	return slices.ContainsFunc(n.Stores, func(s Store) bool { return s.Country == country })
}

// ValidateBuild checks a build in country against the available cash.
// It never mutates the network.
func (n *Network) ValidateBuild(country string, cash int64) error {
	if strings.TrimSpace(country) == "" {
		return ErrEmptyCountry
	}
	if cash < BuildCost {
		return fmt.Errorf("%w: store costs %d, have %d", game.ErrInsufficientFunds, BuildCost, cash)
	}
	if n.Has(country) {
		return fmt.Errorf("%w: %s", ErrStoreExists, country)
	}
	return nil
}

// Add appends s and recomputes bonuses. Callers validate first.
func (n *Network) Add(s Store) {
	n.Stores = append(n.Stores, s)
	n.Recompute()
}

// Recompute derives both bonuses from the store count.
func (n *Network) Recompute() {
	n.ProductivityBonus = ProductivityPerStore * len(n.Stores)
	n.ProductAttractionBonus = AttractionPerStore * len(n.Stores)
}

// AvailableCountries returns the offered countries without a store yet.
func (n *Network) AvailableCountries() []string {
	out := make([]string, 0, len(Countries))
	for _, c := range Countries {
		if !n.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// Clone returns a deep copy.
func (n *Network) Clone() *Network {
	return &Network{
		Stores:                 slices.Clone(n.Stores),
		ProductivityBonus:      n.ProductivityBonus,
		ProductAttractionBonus: n.ProductAttractionBonus,
	}
}
