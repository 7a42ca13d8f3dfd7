// Package game holds the player's company state: cash, difficulty,
// research, branding, investments and released products.
package game

import (
	"errors"
	"fmt"
	"slices"
)

// Domain-rule rejections. Actions returning one of these leave state untouched.
var (
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrEmptyProductName    = errors.New("product name is required")
	ErrAlreadyResearched   = errors.New("technology already researched")
	ErrMissingPrerequisite = errors.New("technology prerequisites not researched")
	ErrUnknownInvestment   = errors.New("unknown investment type")
	ErrInvalidAmount       = errors.New("amount must be positive")
)

// State is the persisted core of a company.
type State struct {
	Cash            int64    `json:"cash"`
	Difficulty      string   `json:"difficulty"`
	ResearchedTechs []string `json:"researched_techs"`
	Products        []string `json:"products"`
}

// NewState starts a company with the preset's starting cash.
func NewState(difficulty string) State {
	p := Preset(difficulty)
	return State{
		Cash:            p.StartingCash,
		Difficulty:      p.Key,
		ResearchedTechs: []string{},
		Products:        []string{},
	}
}

// Spend deducts amount if affordable.
func (s *State) Spend(amount int64) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	if s.Cash < amount {
		return fmt.Errorf("%w: need %d, have %d", ErrInsufficientFunds, amount, s.Cash)
	}
	s.Cash -= amount
	return nil
}

// HasResearched reports whether techID is already in the researched list.
func (s *State) HasResearched(techID string) bool {
	return slices.Contains(s.ResearchedTechs, techID)
}

// ResearchOrder is a request to research one technology.
type ResearchOrder struct {
	TechID        string   `json:"tech_id"`
	Cost          int64    `json:"cost"`
	Prerequisites []string `json:"prerequisites,omitempty"`
}

// ResearchCost scales a base cost by the difficulty's R&D multiplier, rounded down.
func ResearchCost(base int64, difficulty string) int64 {
	return int64(float64(base) * Preset(difficulty).RDCostMultiplier)
}

// Research validates and pays for a technology. Returns the amount charged.
func (s *State) Research(o ResearchOrder) (int64, error) {
	if s.HasResearched(o.TechID) {
		return 0, fmt.Errorf("%w: %s", ErrAlreadyResearched, o.TechID)
	}
	for _, req := range o.Prerequisites {
		if !s.HasResearched(req) {
			return 0, fmt.Errorf("%w: %s needs %s", ErrMissingPrerequisite, o.TechID, req)
		}
	}
	cost := ResearchCost(o.Cost, s.Difficulty)
	if err := s.Spend(cost); err != nil {
		return 0, err
	}
	s.ResearchedTechs = append(s.ResearchedTechs, o.TechID)
	return cost, nil
}

// Clone returns a deep copy.
func (s State) Clone() State {
	s.ResearchedTechs = slices.Clone(s.ResearchedTechs)
	s.Products = slices.Clone(s.Products)
	return s
}
