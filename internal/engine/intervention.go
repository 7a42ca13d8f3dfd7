package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/talgya/device-tycoon/internal/competitor"
	"github.com/talgya/device-tycoon/internal/market"
)

// ErrEmptyReason is returned when an intervention has no explanation.
var ErrEmptyReason = errors.New("intervention reason is required")

// GrantCash adds (or with a negative amount, removes) player cash outside the
// normal rules and posts a market-shift notice. Operator tool.
func (s *Simulation) GrantCash(amount int64, reason string) (market.Event, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return market.Event{}, ErrEmptyReason
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Cash += amount
	ev := s.feed.Push(market.Event{
		Type:        market.TypeMarketShift,
		Title:       "Capital Adjustment",
		Description: reason,
		Impact:      fmt.Sprintf("Cash changed by $%s", humanize.Comma(amount)),
		Day:         s.day,
	})
	slog.Info("cash intervention", "amount", humanize.Comma(amount), "reason", reason)
	return ev, nil
}

// ShiftMarket moves competitor market share by delta (all competitors when
// target is empty) and posts a market-shift notice.
func (s *Simulation) ShiftMarket(target string, delta float64, reason string) (market.Event, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return market.Event{}, ErrEmptyReason
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if target != "" {
		if _, ok := s.roster.Get(target); !ok {
			return market.Event{}, fmt.Errorf("%w: %s", competitor.ErrUnknownCompetitor, target)
		}
	}
	if err := s.roster.ShiftShare(target, delta, s.params.MarketShareCap); err != nil {
		return market.Event{}, err
	}

	who := "All competitors"
	if c, ok := s.roster.Get(target); ok {
		who = c.Name
	}
	ev := s.feed.Push(market.Event{
		Type:        market.TypeMarketShift,
		Title:       "Market Shift",
		Description: reason,
		Impact:      fmt.Sprintf("%s: market share shifted by %+.1f%%", who, delta),
		Day:         s.day,
	})
	slog.Info("market intervention", "target", who, "delta", delta, "reason", reason)
	return ev, nil
}

// AnnouncePriceChange posts a price-change notice for a competitor.
func (s *Simulation) AnnouncePriceChange(target string, percent float64) (market.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.roster.Get(target)
	if !ok {
		return market.Event{}, fmt.Errorf("%w: %s", competitor.ErrUnknownCompetitor, target)
	}
	verb := "raised"
	if percent < 0 {
		verb = "cut"
	}
	ev := s.feed.Push(market.Event{
		Type:        market.TypePriceChange,
		Title:       c.Name + " Pricing",
		Description: fmt.Sprintf("%s %s prices across its lineup", c.Name, verb),
		Impact:      fmt.Sprintf("Prices changed by %+.0f%%", percent),
		Day:         s.day,
	})
	return ev, nil
}
