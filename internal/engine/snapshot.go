package engine

import (
	"encoding/json"
	"fmt"

	"github.com/talgya/device-tycoon/internal/competitor"
	"github.com/talgya/device-tycoon/internal/entropy"
	"github.com/talgya/device-tycoon/internal/era"
	"github.com/talgya/device-tycoon/internal/game"
	"github.com/talgya/device-tycoon/internal/market"
	"github.com/talgya/device-tycoon/internal/stores"
)

// SnapshotVersion is the save schema written by this build.
// Version 1 saves carry only game state, products and branding.
const SnapshotVersion = 2

// Snapshot is everything needed to resume a playthrough. Clock, ledger,
// roster, network and products are always captured and restored together.
type Snapshot struct {
	Version          int                     `json:"version"`
	GameState        game.State              `json:"game_state"`
	ReleasedProducts []game.ReleasedProduct  `json:"released_products"`
	Branding         *game.Branding          `json:"branding,omitempty"`
	StoreNetwork     *stores.Network         `json:"store_network,omitempty"`
	TriggeredEvents  []string                `json:"triggered_events,omitempty"`
	CurrentDay       int                     `json:"current_day,omitempty"`
	Competitors      []competitor.Competitor `json:"competitors,omitempty"`
	Investments      []game.Investment       `json:"investments,omitempty"`
	Feed             []market.Event          `json:"feed,omitempty"`
	Seed             int64                   `json:"seed,omitempty"`
}

// DecodeSnapshot parses a saved document and fills defaults for fields
// older saves lack.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	snap.normalize()
	return snap, nil
}

// Encode serialises the snapshot as JSON.
func (snap Snapshot) Encode() ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// normalize applies the compatibility defaults: an empty network, an empty
// ledger, day 1 and default branding. Bonuses are always recomputed.
func (snap *Snapshot) normalize() {
	if snap.Version == 0 {
		snap.Version = 1
	}
	if snap.GameState.Difficulty == "" {
		snap.GameState.Difficulty = game.DifficultyNormal
	}
	if snap.GameState.ResearchedTechs == nil {
		snap.GameState.ResearchedTechs = []string{}
	}
	if snap.GameState.Products == nil {
		snap.GameState.Products = []string{}
	}
	if snap.ReleasedProducts == nil {
		snap.ReleasedProducts = []game.ReleasedProduct{}
	}
	if snap.Branding == nil {
		b := game.DefaultBranding()
		snap.Branding = &b
	}
	if snap.StoreNetwork == nil {
		snap.StoreNetwork = stores.NewNetwork()
	}
	if snap.StoreNetwork.Stores == nil {
		snap.StoreNetwork.Stores = []stores.Store{}
	}
	snap.StoreNetwork.Recompute()
	if snap.TriggeredEvents == nil {
		snap.TriggeredEvents = []string{}
	}
	if snap.CurrentDay < 1 {
		snap.CurrentDay = 1
	}
	if snap.Competitors == nil {
		snap.Competitors = []competitor.Competitor{}
	}
	if snap.Investments == nil {
		snap.Investments = []game.Investment{}
	}
	if snap.Feed == nil {
		snap.Feed = []market.Event{}
	}
}

// Snapshot captures the current state as one consistent unit.
func (s *Simulation) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := make([]game.ReleasedProduct, len(s.products))
	copy(products, s.products)
	branding := s.branding

	return Snapshot{
		Version:          SnapshotVersion,
		GameState:        s.state.Clone(),
		ReleasedProducts: products,
		Branding:         &branding,
		StoreNetwork:     s.network.Clone(),
		TriggeredEvents:  s.ledger.IDs(),
		CurrentDay:       s.day,
		Competitors:      s.roster.List(),
		Investments:      s.investments.Entries(),
		Feed:             s.feed.Entries(),
		Seed:             s.seed,
	}
}

// Restore replaces the whole game with snap. The clock and the ledger are
// swapped in together, so events already applied before the save stay applied.
func (s *Simulation) Restore(snap Snapshot) {
	snap.normalize()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.day = snap.CurrentDay
	s.state = snap.GameState.Clone()
	s.branding = *snap.Branding
	s.ledger = era.NewLedger(snap.TriggeredEvents...)
	s.network = snap.StoreNetwork.Clone()
	s.products = make([]game.ReleasedProduct, len(snap.ReleasedProducts))
	copy(s.products, snap.ReleasedProducts)
	s.feed = market.NewFeed(snap.Feed)
	s.investments = game.NewInvestmentLog(snap.Investments)

	if snap.Seed != 0 {
		s.seed = snap.Seed
	}
	s.sentiment = market.NewSentiment(s.seed)
	if !s.fixedRNG {
		// Offset by day so a resumed game does not replay the opening draws.
		s.rng = entropy.NewSeeded(s.seed + int64(s.day))
	}

	s.roster = competitor.NewRoster(snap.Competitors)
	s.roster.EnsureInitialized(s.state.Difficulty, s.rng)
}

// Load builds a Simulation from a snapshot.
func Load(snap Snapshot, opts Options) *Simulation {
	if opts.Seed == 0 {
		opts.Seed = snap.Seed
	}
	s := newSimulation(opts)
	s.Restore(snap)
	return s
}
