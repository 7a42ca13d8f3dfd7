// Package competitor models the fixed roster of AI rival companies.
package competitor

import (
	"errors"
	"fmt"

	"github.com/talgya/device-tycoon/internal/entropy"
	"github.com/talgya/device-tycoon/internal/game"
)

// ErrUnknownCompetitor is returned when updating an id not in the roster.
var ErrUnknownCompetitor = errors.New("unknown competitor")

// Strategy is a competitor's behavioural stance.
type Strategy string

const (
	Aggressive   Strategy = "Aggressive"
	Balanced     Strategy = "Balanced"
	Conservative Strategy = "Conservative"
)

var strategies = [3]Strategy{Aggressive, Balanced, Conservative}

// Names is the fixed rival line-up.
var Names = []string{
	"TechNova",
	"FutureCorp",
	"InnovateTech",
	"DigitalDynamics",
	"SmartSystems",
	"NextGen Industries",
}

// Market share bounds. MaxMarketShare is the default cap.
const (
	MinMarketShare = 0.0
	MaxMarketShare = 30.0
)

// Competitor is one AI rival.
type Competitor struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Cash           int64    `json:"cash"`
	MarketShare    float64  `json:"market_share"`
	ActiveProducts int      `json:"active_products"`
	Strength       float64  `json:"strength"`
	Strategy       Strategy `json:"strategy"`
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Cash           *int64
	MarketShare    *float64
	ActiveProducts *int
	Strength       *float64
	Strategy       *Strategy
}

// Roster is the ordered set of competitors for one playthrough.
type Roster struct {
	list []Competitor
}

// NewRoster restores a roster from saved competitors.
func NewRoster(saved []Competitor) *Roster {
	r := &Roster{list: make([]Competitor, len(saved))}
	copy(r.list, saved)
	return r
}

// Generate builds the six-company roster for a difficulty.
func Generate(difficulty string, rng entropy.Source) []Competitor {
	base := game.Preset(difficulty).CompetitorStrength
	out := make([]Competitor, 0, len(Names))
	for i, name := range Names {
		out = append(out, Competitor{
			ID:             fmt.Sprintf("comp-%d", i),
			Name:           name,
			Cash:           int64(50000 + i*10000),
			MarketShare:    10 + rng.Float64()*10,
			ActiveProducts: rng.Intn(5) + 1,
			Strength:       float64(base + rng.Intn(30)),
			Strategy:       strategies[i%len(strategies)],
		})
	}
	return out
}

// EnsureInitialized fills an empty roster. Returns true if it generated one.
func (r *Roster) EnsureInitialized(difficulty string, rng entropy.Source) bool {
	if len(r.list) > 0 {
		return false
	}
	r.list = Generate(difficulty, rng)
	return true
}

// Update merges p into the competitor with id.
func (r *Roster) Update(id string, p Patch) (Competitor, error) {
	for i := range r.list {
		if r.list[i].ID != id {
			continue
		}
		c := &r.list[i]
		if p.Cash != nil {
			c.Cash = *p.Cash
		}
		if p.MarketShare != nil {
			c.MarketShare = *p.MarketShare
		}
		if p.ActiveProducts != nil {
			c.ActiveProducts = *p.ActiveProducts
		}
		if p.Strength != nil {
			c.Strength = *p.Strength
		}
		if p.Strategy != nil {
			c.Strategy = *p.Strategy
		}
		return *c, nil
	}
	return Competitor{}, fmt.Errorf("%w: %s", ErrUnknownCompetitor, id)
}

// Get returns a copy of the competitor with id.
func (r *Roster) Get(id string) (Competitor, bool) {
	for _, c := range r.list {
		if c.ID == id {
			return c, true
		}
	}
	return Competitor{}, false
}

// At returns the i-th competitor.
func (r *Roster) At(i int) Competitor {
	return r.list[i]
}

// Len returns the roster size.
func (r *Roster) Len() int {
	return len(r.list)
}

// List returns a copy of all competitors in roster order.
func (r *Roster) List() []Competitor {
	out := make([]Competitor, len(r.list))
	copy(out, r.list)
	return out
}

// ClampShare bounds a market share to [MinMarketShare, maxShare].
func ClampShare(v, maxShare float64) float64 {
	if v < MinMarketShare {
		return MinMarketShare
	}
	if v > maxShare {
		return maxShare
	}
	return v
}

// ShiftShare adds delta to the market share of target, or of every competitor
// when target is empty. Results are clamped to [0, maxShare].
func (r *Roster) ShiftShare(target string, delta, maxShare float64) error {
	if target != "" {
		c, ok := r.Get(target)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownCompetitor, target)
		}
		share := ClampShare(c.MarketShare+delta, maxShare)
		_, err := r.Update(target, Patch{MarketShare: &share})
		return err
	}
	for _, c := range r.list {
		share := ClampShare(c.MarketShare+delta, maxShare)
		if _, err := r.Update(c.ID, Patch{MarketShare: &share}); err != nil {
			return err
		}
	}
	return nil
}
