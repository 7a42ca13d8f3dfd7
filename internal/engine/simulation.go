// Simulation owns the state of one playthrough and is the only mutator of it.
package engine

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/talgya/device-tycoon/internal/calendar"
	"github.com/talgya/device-tycoon/internal/competitor"
	"github.com/talgya/device-tycoon/internal/economy"
	"github.com/talgya/device-tycoon/internal/entropy"
	"github.com/talgya/device-tycoon/internal/era"
	"github.com/talgya/device-tycoon/internal/game"
	"github.com/talgya/device-tycoon/internal/market"
	"github.com/talgya/device-tycoon/internal/scoring"
	"github.com/talgya/device-tycoon/internal/stores"
)

// competitorActions is the flavour text for competitor feed entries.
var competitorActions = []string{
	"released a new product",
	"increased marketing spend",
	"started new research",
}

// Params tune the stochastic parts of a tick.
type Params struct {
	CompetitorActivityChance float64 // probability per tick of a competitor action
	MarketShareStep          float64 // share gained by the acting competitor
	MarketShareCap           float64 // upper bound on any competitor's share
}

// DefaultParams returns the standard tuning.
func DefaultParams() Params {
	return Params{
		CompetitorActivityChance: 0.3,
		MarketShareStep:          0.5,
		MarketShareCap:           competitor.MaxMarketShare,
	}
}

// Options configure a new Simulation.
type Options struct {
	Difficulty string
	Seed       int64          // 0 picks a random seed
	Catalog    *era.Catalog   // nil uses the built-in catalog
	Params     *Params        // nil uses DefaultParams
	Random     entropy.Source // overrides the seeded source, for tests
}

// Simulation holds one company, its rivals and the game clock.
type Simulation struct {
	mu sync.Mutex

	day         int
	state       game.State
	branding    game.Branding
	ledger      *era.Ledger
	catalog     *era.Catalog
	roster      *competitor.Roster
	network     *stores.Network
	products    []game.ReleasedProduct
	feed        *market.Feed
	investments *game.InvestmentLog
	sentiment   *market.Sentiment
	rng         entropy.Source
	seed        int64
	params      Params
	fixedRNG    bool // rng was injected and survives Restore
}

// NewGame starts a playthrough on day 1 with the difficulty's starting cash
// and a freshly generated competitor roster.
func NewGame(opts Options) *Simulation {
	s := newSimulation(opts)
	s.state = game.NewState(opts.Difficulty)
	s.roster.EnsureInitialized(s.state.Difficulty, s.rng)
	return s
}

func newSimulation(opts Options) *Simulation {
	seed := opts.Seed
	if seed == 0 {
		seed = entropy.RandomSeed()
	}
	catalog := opts.Catalog
	if catalog == nil {
		catalog = era.DefaultCatalog()
	}
	params := DefaultParams()
	if opts.Params != nil {
		params = *opts.Params
	}
	var rng entropy.Source = entropy.NewSeeded(seed)
	if opts.Random != nil {
		rng = opts.Random
	}
	return &Simulation{
		day:         1,
		branding:    game.DefaultBranding(),
		ledger:      era.NewLedger(),
		catalog:     catalog,
		roster:      competitor.NewRoster(nil),
		network:     stores.NewNetwork(),
		products:    []game.ReleasedProduct{},
		feed:        market.NewFeed(nil),
		investments: game.NewInvestmentLog(nil),
		sentiment:   market.NewSentiment(seed),
		rng:         rng,
		seed:        seed,
		params:      params,
		fixedRNG:    opts.Random != nil,
	}
}

// TickReport summarises one day of simulation.
type TickReport struct {
	Day              int                `json:"day"`
	Date             calendar.DateParts `json:"date"`
	Triggered        []era.Event        `json:"triggered,omitempty"`
	CompetitorAction *market.Event      `json:"competitor_action,omitempty"`
	Cash             int64              `json:"cash"`
}

// Advance runs one scheduler tick: the day moves forward by one, matching
// era events not yet in the ledger are applied, a competitor may act and
// competitor strength drifts with market sentiment.
func (s *Simulation) Advance() TickReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.day++
	date := calendar.DayToDateParts(s.day)
	report := TickReport{Day: s.day, Date: date}

	for _, ev := range s.catalog.FindEventsForDate(date.Year, date.Month, date.Day) {
		// The ledger mark and the effects happen under one lock, so no
		// observer sees one without the other.
		if !s.ledger.Mark(ev.ID) {
			continue
		}
		for _, eff := range ev.Effects {
			s.applyEffect(ev.ID, eff)
		}
		s.feed.Push(market.Event{
			Type:        market.TypeEraEvent,
			Title:       ev.Title,
			Description: ev.Description,
			Impact:      ev.Impact,
			Day:         s.day,
		})
		report.Triggered = append(report.Triggered, ev)
		slog.Info("era event triggered", "id", ev.ID, "day", s.day, "date", calendar.FormatISO(date))
	}

	if action, ok := s.competitorActivity(); ok {
		report.CompetitorAction = &action
	}

	s.driftSentiment()
	report.Cash = s.state.Cash
	return report
}

func (s *Simulation) applyEffect(eventID string, eff era.Effect) {
	switch eff.Type {
	case era.EffectCash:
		s.state.Cash += int64(eff.Value)
	case era.EffectCompetitorMarketShare:
		if err := s.roster.ShiftShare(eff.Target, eff.Value, s.params.MarketShareCap); err != nil {
			slog.Warn("era effect skipped", "id", eventID, "error", err)
		}
	case era.EffectSimulationParameter:
		slog.Debug("simulation parameter effect ignored", "id", eventID, "value", eff.Value)
	}
}

func (s *Simulation) competitorActivity() (market.Event, bool) {
	if s.roster.Len() == 0 {
		return market.Event{}, false
	}
	if s.rng.Float64() <= 1-s.params.CompetitorActivityChance {
		return market.Event{}, false
	}

	c := s.roster.At(s.rng.Intn(s.roster.Len()))
	action := competitorActions[s.rng.Intn(len(competitorActions))]

	share := min(c.MarketShare+s.params.MarketShareStep, s.params.MarketShareCap)
	if _, err := s.roster.Update(c.ID, competitor.Patch{MarketShare: &share}); err != nil {
		slog.Warn("competitor update failed", "id", c.ID, "error", err)
		return market.Event{}, false
	}

	ev := s.feed.Push(market.Event{
		Type:        market.TypeRelease,
		Title:       c.Name + " Activity",
		Description: c.Name + " " + action,
		Impact:      fmt.Sprintf("Market share shifted by %.1f%%", s.params.MarketShareStep),
		Day:         s.day,
	})
	slog.Debug("competitor action", "competitor", c.Name, "action", action, "share", share)
	return ev, true
}

func (s *Simulation) driftSentiment() {
	volatility := game.Preset(s.state.Difficulty).MarketVolatility
	for i := 0; i < s.roster.Len(); i++ {
		c := s.roster.At(i)
		strength := s.sentiment.Drift(c.Strength, s.day, i, volatility)
		if _, err := s.roster.Update(c.ID, competitor.Patch{Strength: &strength}); err != nil {
			slog.Warn("sentiment drift failed", "id", c.ID, "error", err)
		}
	}
}

// YearlyReport logs a summary of the company. Called on every 1 January.
func (s *Simulation) YearlyReport() {
	s.mu.Lock()
	defer s.mu.Unlock()
	slog.Info("yearly report",
		"year", calendar.DayToYear(s.day),
		"cash", humanize.Comma(s.state.Cash),
		"stores", len(s.network.Stores),
		"products", len(s.products),
		"feed", s.feed.Len(),
		"events_applied", s.ledger.Len(),
	)
}

// Status is a point-in-time view for display.
type Status struct {
	Day                    int                `json:"day"`
	Date                   calendar.DateParts `json:"date"`
	DateText               string             `json:"date_text"`
	ISODate                string             `json:"iso_date"`
	Cash                   int64              `json:"cash"`
	Difficulty             string             `json:"difficulty"`
	CompanyName            string             `json:"company_name"`
	ProductivityBonus      int                `json:"productivity_bonus"`
	ProductAttractionBonus int                `json:"product_attraction_bonus"`
	Stores                 int                `json:"stores"`
	Products               int                `json:"products"`
	EventsApplied          int                `json:"events_applied"`
	Seed                   int64              `json:"seed"`
}

// Status returns the current status.
func (s *Simulation) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	date := calendar.DayToDateParts(s.day)
	return Status{
		Day:                    s.day,
		Date:                   date,
		DateText:               calendar.Format(date),
		ISODate:                calendar.FormatISO(date),
		Cash:                   s.state.Cash,
		Difficulty:             s.state.Difficulty,
		CompanyName:            s.branding.CompanyName,
		ProductivityBonus:      s.network.ProductivityBonus,
		ProductAttractionBonus: s.network.ProductAttractionBonus,
		Stores:                 len(s.network.Stores),
		Products:               len(s.products),
		EventsApplied:          s.ledger.Len(),
		Seed:                   s.seed,
	}
}

// Day returns the current day number.
func (s *Simulation) Day() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.day
}

// Cash returns the player's cash.
func (s *Simulation) Cash() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Cash
}

// Feed returns up to n newest market events; n <= 0 returns all.
func (s *Simulation) Feed(n int) []market.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feed.Recent(n)
}

// Competitors returns the roster in order.
func (s *Simulation) Competitors() []competitor.Competitor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.List()
}

// Network returns a copy of the store network.
func (s *Simulation) Network() stores.Network {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.network.Clone()
}

// Products returns released products in release order.
func (s *Simulation) Products() []game.ReleasedProduct {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]game.ReleasedProduct, len(s.products))
	copy(out, s.products)
	return out
}

// Investments returns the investment log, newest first.
func (s *Simulation) Investments() []game.Investment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.investments.Entries()
}

// TriggeredEvents returns applied era event ids in application order.
func (s *Simulation) TriggeredEvents() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.IDs()
}

// BuildStore opens a flagship store in country.
func (s *Simulation) BuildStore(country string) (stores.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.network.ValidateBuild(country, s.state.Cash); err != nil {
		return stores.Store{}, err
	}
	if err := s.state.Spend(stores.BuildCost); err != nil {
		return stores.Store{}, err
	}
	store := stores.NewStore(country, calendar.FormatISO(calendar.DayToDateParts(s.day)))
	s.network.Add(store)
	slog.Info("store built", "country", country, "cash", humanize.Comma(s.state.Cash))
	return store, nil
}

// ReleaseInput describes a product launch.
type ReleaseInput struct {
	Name             string `json:"name"`
	Category         string `json:"category"`
	Price            int64  `json:"price"`
	ProductionVolume int64  `json:"production_volume"`
	MarketingBudget  int64  `json:"marketing_budget"`
	Logo             string `json:"logo,omitempty"`
}

func (in ReleaseInput) economics() economy.ReleaseInputs {
	return economy.ReleaseInputs{
		Price:            in.Price,
		ProductionVolume: in.ProductionVolume,
		MarketingBudget:  in.MarketingBudget,
	}
}

func (s *Simulation) modifiers() economy.Modifiers {
	return economy.Modifiers{
		ProductivityBonus: s.network.ProductivityBonus,
		AttractionBonus:   s.network.ProductAttractionBonus,
	}
}

// Quote previews a release without changing anything.
func (s *Simulation) Quote(in ReleaseInput) (economy.Quote, error) {
	if err := in.economics().Validate(); err != nil {
		return economy.Quote{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return economy.QuoteRelease(in.economics(), s.modifiers()), nil
}

// Release launches a product using the current store bonuses.
func (s *Simulation) Release(in ReleaseInput) (game.ReleasedProduct, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return game.ReleasedProduct{}, game.ErrEmptyProductName
	}
	if err := in.economics().Validate(); err != nil {
		return game.ReleasedProduct{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	q := economy.QuoteRelease(in.economics(), s.modifiers())
	if err := s.state.Spend(q.TotalCost); err != nil {
		return game.ReleasedProduct{}, err
	}

	features := []string{}
	if in.Logo != "" {
		features = append(features, in.Logo)
	}
	p := game.ReleasedProduct{
		ProductID: productID(name),
		Name:      name,
		Category:  in.Category,
		Year:      calendar.DayToYear(s.day),
		Sales:     q.AdjustedSales,
		Rating:    q.AdjustedRating,
		Price:     in.Price,
		Features:  features,
	}
	s.products = append(s.products, p)
	s.state.Products = append(s.state.Products, p.ProductID)

	s.feed.Push(market.Event{
		Type:        market.TypeRelease,
		Title:       name + " Launched",
		Description: fmt.Sprintf("%s released %s at $%s", s.branding.CompanyName, name, humanize.Comma(in.Price)),
		Impact:      fmt.Sprintf("%s units, rating %.2f", humanize.Comma(p.Sales), p.Rating),
		Day:         s.day,
	})
	slog.Info("product released", "id", p.ProductID, "cost", humanize.Comma(q.TotalCost), "sales", p.Sales)
	return p, nil
}

func productID(name string) string {
	slug := strings.ToLower(strings.Join(strings.Fields(name), "-"))
	return slug + "-" + uuid.NewString()[:8]
}

// Invest spends on company growth. Acquisitions have a fixed price.
func (s *Simulation) Invest(kind string, amount int64, description string) (game.Investment, error) {
	cost, err := game.InvestmentCost(kind, amount)
	if err != nil {
		return game.Investment{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.state.Spend(cost); err != nil {
		return game.Investment{}, err
	}
	if description == "" {
		description = defaultInvestmentDescription(kind)
	}
	inv := game.Investment{
		ID:          uuid.NewString(),
		Type:        kind,
		Amount:      cost,
		Description: description,
		Day:         s.day,
	}
	s.investments.Add(inv)
	slog.Info("investment made", "type", kind, "amount", humanize.Comma(cost))
	return inv, nil
}

func defaultInvestmentDescription(kind string) string {
	switch kind {
	case game.InvestAcquisition:
		return "Acquired a competitor (+5% market share)"
	case game.InvestMarketing:
		return "Marketing campaign"
	default:
		return "Talent recruitment drive"
	}
}

// Research pays for a technology, scaled by the difficulty's R&D multiplier.
func (s *Simulation) Research(o game.ResearchOrder) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Research(o)
}

// SetBranding replaces the company identity.
func (s *Simulation) SetBranding(b game.Branding) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.branding = b
}

// BestProducts returns the per-category awards for year.
func (s *Simulation) BestProducts(year int) []scoring.Award {
	s.mu.Lock()
	defer s.mu.Unlock()
	return scoring.BestProductsOfYear(s.products, year)
}
