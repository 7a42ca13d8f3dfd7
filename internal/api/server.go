// Package api provides the HTTP control API for a running game.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token when an admin key is configured.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/talgya/device-tycoon/internal/calendar"
	"github.com/talgya/device-tycoon/internal/competitor"
	"github.com/talgya/device-tycoon/internal/economy"
	"github.com/talgya/device-tycoon/internal/engine"
	"github.com/talgya/device-tycoon/internal/game"
	"github.com/talgya/device-tycoon/internal/persistence"
	"github.com/talgya/device-tycoon/internal/stores"
)

// Server serves one game over HTTP.
type Server struct {
	Eng      *engine.Engine
	Store    persistence.SlotStore // nil disables the save endpoints
	AdminKey string                // Bearer token for POST endpoints. Empty = open.

	saveLimiter *RateLimiter
	mux         *chi.Mux
}

// New builds a server and its routes.
func New(eng *engine.Engine, store persistence.SlotStore, adminKey string) *Server {
	s := &Server{
		Eng:         eng,
		Store:       store,
		AdminKey:    adminKey,
		saveLimiter: NewRateLimiter(30, time.Minute),
		mux:         chi.NewRouter(),
	}
	s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/feed", s.handleFeed)
		r.Get("/competitors", s.handleCompetitors)
		r.Get("/stores", s.handleStores)
		r.Get("/products", s.handleProducts)
		r.Get("/products/best", s.handleBestProducts)
		r.Get("/investments", s.handleInvestments)
		r.Get("/calendar/{day}", s.handleCalendar)
		r.Get("/saves", s.handleListSaves)

		r.Group(func(r chi.Router) {
			r.Use(s.adminOnly)
			r.Post("/simulation/toggle", s.handleToggle)
			r.Post("/simulation/step", s.handleStep)
			r.Post("/stores", s.handleBuildStore)
			r.Post("/products/quote", s.handleQuote)
			r.Post("/products", s.handleRelease)
			r.Post("/investments", s.handleInvest)
			r.Post("/research", s.handleResearch)
			r.Post("/interventions", s.handleIntervention)

			r.With(s.saveLimiter.Middleware).Post("/saves", s.handleSave)
			r.Post("/saves/{id}/load", s.handleLoadSave)
		})
	})
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

func (s *Server) adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey != "" && !s.checkBearerToken(r) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusResponse struct {
	engine.Status
	Running bool `json:"running"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: s.Eng.Sim.Status(), Running: s.Eng.Running()})
}

func (s *Server) handleToggle(w http.ResponseWriter, _ *http.Request) {
	running := s.Eng.Toggle()
	writeJSON(w, http.StatusOK, map[string]any{"running": running, "day": s.Eng.Sim.Day()})
}

func (s *Server) handleStep(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Eng.Step())
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.Eng.Sim.Feed(limit))
}

func (s *Server) handleCompetitors(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Eng.Sim.Competitors())
}

func (s *Server) handleStores(w http.ResponseWriter, _ *http.Request) {
	n := s.Eng.Sim.Network()
	writeJSON(w, http.StatusOK, map[string]any{
		"network":   n,
		"available": n.AvailableCountries(),
		"cost":      stores.BuildCost,
	})
}

func (s *Server) handleBuildStore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Country string `json:"country"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	store, err := s.Eng.Sim.BuildStore(req.Country)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, store)
}

// releaseRequest leaves volume and marketing optional so they can default.
type releaseRequest struct {
	Name             string `json:"name"`
	Category         string `json:"category"`
	Price            int64  `json:"price"`
	ProductionVolume *int64 `json:"production_volume"`
	MarketingBudget  *int64 `json:"marketing_budget"`
	Logo             string `json:"logo"`
}

func (req releaseRequest) input() engine.ReleaseInput {
	in := engine.ReleaseInput{
		Name:             req.Name,
		Category:         req.Category,
		Price:            req.Price,
		ProductionVolume: economy.DefaultProductionVolume,
		MarketingBudget:  economy.DefaultMarketingBudget,
		Logo:             req.Logo,
	}
	if req.ProductionVolume != nil {
		in.ProductionVolume = *req.ProductionVolume
	}
	if req.MarketingBudget != nil {
		in.MarketingBudget = *req.MarketingBudget
	}
	return in
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req releaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	q, err := s.Eng.Sim.Quote(req.input())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *Server) handleRelease(w http.ResponseWriter, r *http.Request) {
	var req releaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	p, err := s.Eng.Sim.Release(req.input())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleProducts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Eng.Sim.Products())
}

func (s *Server) handleBestProducts(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year", calendar.DayToYear(s.Eng.Sim.Day()))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"year": year, "awards": s.Eng.Sim.BestProducts(year)})
}

func (s *Server) handleInvestments(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Eng.Sim.Investments())
}

func (s *Server) handleInvest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type        string `json:"type"`
		Amount      int64  `json:"amount"`
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	inv, err := s.Eng.Sim.Invest(req.Type, req.Amount, req.Description)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	var req game.ResearchOrder
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	charged, err := s.Eng.Sim.Research(req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tech_id": req.TechID, "charged": charged, "cash": s.Eng.Sim.Cash()})
}

func (s *Server) handleIntervention(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind    string  `json:"kind"` // "cash", "market-shift" or "price-change"
		Amount  int64   `json:"amount"`
		Target  string  `json:"target"`
		Delta   float64 `json:"delta"`
		Percent float64 `json:"percent"`
		Reason  string  `json:"reason"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	sim := s.Eng.Sim
	var err error
	var ev any
	switch req.Kind {
	case "cash":
		ev, err = sim.GrantCash(req.Amount, req.Reason)
	case "market-shift":
		ev, err = sim.ShiftMarket(req.Target, req.Delta, req.Reason)
	case "price-change":
		ev, err = sim.AnnouncePriceChange(req.Target, req.Percent)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown intervention kind %q", req.Kind))
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	day, err := strconv.Atoi(chi.URLParam(r, "day"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "day must be an integer")
		return
	}
	if err := calendar.ValidateDay(day); err != nil {
		writeDomainError(w, err)
		return
	}
	d := calendar.DayToDateParts(day)
	writeJSON(w, http.StatusOK, map[string]any{
		"day":  day,
		"date": d,
		"iso":  calendar.FormatISO(d),
		"text": calendar.Format(d),
	})
}

func (s *Server) handleListSaves(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		writeError(w, http.StatusServiceUnavailable, "storage disabled")
		return
	}
	slots, err := s.Store.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, slots)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		writeError(w, http.StatusServiceUnavailable, "storage disabled")
		return
	}
	var req struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ID == "" {
		req.ID = persistence.NewSlotID()
	}
	info, err := s.Store.Save(r.Context(), persistence.Slot{ID: req.ID, Name: req.Name, Snapshot: s.Eng.Sim.Snapshot()})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

// handleLoadSave restores a slot. The clock is left stopped.
func (s *Server) handleLoadSave(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		writeError(w, http.StatusServiceUnavailable, "storage disabled")
		return
	}
	id := chi.URLParam(r, "id")
	snap, err := s.Store.Load(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.Eng.Stop()
	s.Eng.Sim.Restore(snap)
	slog.Info("slot loaded", "id", id, "day", snap.CurrentDay)
	writeJSON(w, http.StatusOK, statusResponse{Status: s.Eng.Sim.Status(), Running: false})
}

// statusFor maps domain errors onto HTTP codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrInsufficientFunds),
		errors.Is(err, stores.ErrStoreExists),
		errors.Is(err, game.ErrAlreadyResearched):
		return http.StatusConflict
	case errors.Is(err, persistence.ErrSaveNotFound),
		errors.Is(err, competitor.ErrUnknownCompetitor):
		return http.StatusNotFound
	case errors.Is(err, stores.ErrEmptyCountry),
		errors.Is(err, game.ErrEmptyProductName),
		errors.Is(err, game.ErrUnknownInvestment),
		errors.Is(err, game.ErrInvalidAmount),
		errors.Is(err, game.ErrMissingPrerequisite),
		errors.Is(err, economy.ErrInvalidRelease),
		errors.Is(err, calendar.ErrInvalidDay),
		errors.Is(err, engine.ErrEmptyReason),
		errors.Is(err, persistence.ErrEmptySlotID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
	}
	writeError(w, status, err.Error())
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return n, nil
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}
