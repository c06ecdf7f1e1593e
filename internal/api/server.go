package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"wantly/internal/engine"
	"wantly/internal/models"
	"wantly/internal/scraper"
)

// Server provides the HTTP JSON API over the prioritization engine.
type Server struct {
	eng     *engine.Engine
	scraper *scraper.Scraper
	logger  *logrus.Logger
	mux     *http.ServeMux
}

// NewServer creates a Server, registers all routes, and returns it.
func NewServer(eng *engine.Engine, sc *scraper.Scraper, logger *logrus.Logger) *Server {
	s := &Server{eng: eng, scraper: sc, logger: logger, mux: http.NewServeMux()}
	s.routes()
	return s
}

// Handler returns the http.Handler that can be passed to http.Server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ---------------------------------------------------------------------------
// Routes
// ---------------------------------------------------------------------------

func (s *Server) routes() {
	// API – Items
	s.mux.HandleFunc("GET /api/items", s.handleGetItems)
	s.mux.HandleFunc("POST /api/items", s.handleCreateItem)
	s.mux.HandleFunc("GET /api/items/{id}", s.handleGetItem)
	s.mux.HandleFunc("PUT /api/items/{id}", s.handleUpdateItem)
	s.mux.HandleFunc("DELETE /api/items/{id}", s.handleDeleteItem)
	s.mux.HandleFunc("PUT /api/items/{id}/purchased", s.handleTogglePurchased)

	// API – Voting
	s.mux.HandleFunc("POST /api/items/{id}/upvote", s.handleUpvote)
	s.mux.HandleFunc("POST /api/items/{id}/downvote", s.handleDownvote)

	// API – Options
	s.mux.HandleFunc("POST /api/items/{id}/options", s.handleAddOption)
	s.mux.HandleFunc("DELETE /api/items/{id}/options/{option_id}", s.handleRemoveOption)
	s.mux.HandleFunc("PUT /api/items/{id}/options/{option_id}/select", s.handleSelectOption)
	s.mux.HandleFunc("DELETE /api/items/{id}/selection", s.handleClearSelection)

	// API – Ranking & budget
	s.mux.HandleFunc("GET /api/ranking", s.handleGetRanking)
	s.mux.HandleFunc("GET /api/budget", s.handleGetBudget)

	// API – Prefill
	s.mux.HandleFunc("POST /api/prefill", s.handlePrefill)

	// Prometheus metrics
	s.mux.Handle("GET /metrics", promhttp.Handler())
}

// ---------------------------------------------------------------------------
// JSON helpers
// ---------------------------------------------------------------------------

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.logger.WithError(err).Error("failed to encode JSON response")
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// respondEngineError maps the engine's sentinel errors onto HTTP statuses.
// All of them are recoverable client-side conditions, never 500s.
func (s *Server) respondEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "item not found")
	case errors.Is(err, engine.ErrBudgetExhausted):
		s.respondError(w, http.StatusConflict, "daily point budget exhausted")
	case errors.Is(err, engine.ErrNoPointsToRemove):
		s.respondError(w, http.StatusConflict, "item has no points to remove")
	case errors.Is(err, engine.ErrNoOptions):
		s.respondError(w, http.StatusBadRequest, "item has no options")
	default:
		s.logger.WithError(err).Error("unexpected engine error")
		s.respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON reads the request body into dst and returns an error message on
// failure.  The caller should return immediately when ok == false.
func (s *Server) decodeJSON(r *http.Request, dst any) (ok bool, errMsg string) {
	if r.Body == nil {
		return false, "request body is empty"
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return false, fmt.Sprintf("invalid JSON: %v", err)
	}
	return true, ""
}

// ---------------------------------------------------------------------------
// Items
// ---------------------------------------------------------------------------

type createItemRequest struct {
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	URL        string `json:"url"`
	ImageURL   string `json:"image_url"`
}

type updateItemRequest struct {
	Name       string `json:"name"`
	PriceCents *int64 `json:"price_cents"`
}

func (s *Server) handleGetItems(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.eng.Items())
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		s.respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.PriceCents < 0 {
		s.respondError(w, http.StatusBadRequest, "price_cents must not be negative")
		return
	}

	item := s.eng.AddItem(engine.NewItemParams{
		Name:       req.Name,
		PriceCents: req.PriceCents,
		URL:        req.URL,
		ImageURL:   req.ImageURL,
	})

	s.respondJSON(w, http.StatusCreated, item)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.eng.Item(r.PathValue("id"))
	if err != nil {
		s.respondEngineError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, item)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	price := int64(-1) // leave unchanged
	if req.PriceCents != nil {
		if *req.PriceCents < 0 {
			s.respondError(w, http.StatusBadRequest, "price_cents must not be negative")
			return
		}
		price = *req.PriceCents
	}

	item, err := s.eng.UpdateItem(r.PathValue("id"), req.Name, price)
	if err != nil {
		s.respondEngineError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := s.eng.DeleteItem(r.PathValue("id")); err != nil {
		s.respondEngineError(w, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleTogglePurchased(w http.ResponseWriter, r *http.Request) {
	item, err := s.eng.TogglePurchased(r.PathValue("id"))
	if err != nil {
		s.respondEngineError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, item)
}

// ---------------------------------------------------------------------------
// Voting
// ---------------------------------------------------------------------------

func (s *Server) handleUpvote(w http.ResponseWriter, r *http.Request) {
	item, err := s.eng.Upvote(r.PathValue("id"))
	if err != nil {
		s.respondEngineError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, item)
}

func (s *Server) handleDownvote(w http.ResponseWriter, r *http.Request) {
	item, err := s.eng.Downvote(r.PathValue("id"))
	if err != nil {
		s.respondEngineError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, item)
}

// ---------------------------------------------------------------------------
// Options
// ---------------------------------------------------------------------------

type addOptionRequest struct {
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	URL        string `json:"url"`
	ImageURL   string `json:"image_url"`
}

func (s *Server) handleAddOption(w http.ResponseWriter, r *http.Request) {
	var req addOptionRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		s.respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	item, err := s.eng.AddOption(r.PathValue("id"), models.Option{
		Name:       req.Name,
		PriceCents: req.PriceCents,
		URL:        req.URL,
		ImageURL:   req.ImageURL,
	})
	if err != nil {
		s.respondEngineError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, item)
}

func (s *Server) handleRemoveOption(w http.ResponseWriter, r *http.Request) {
	item, err := s.eng.RemoveOption(r.PathValue("id"), r.PathValue("option_id"))
	if err != nil {
		s.respondEngineError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, item)
}

func (s *Server) handleSelectOption(w http.ResponseWriter, r *http.Request) {
	item, err := s.eng.SelectOption(r.PathValue("id"), r.PathValue("option_id"))
	if err != nil {
		s.respondEngineError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, item)
}

func (s *Server) handleClearSelection(w http.ResponseWriter, r *http.Request) {
	item, err := s.eng.ClearSelectedOption(r.PathValue("id"))
	if err != nil {
		s.respondEngineError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, item)
}

// ---------------------------------------------------------------------------
// Ranking & budget
// ---------------------------------------------------------------------------

type rankingResponse struct {
	Items  []models.DisplayItem `json:"items"`
	Sort   models.SortMode      `json:"sort"`
	Frozen bool                 `json:"frozen"`
}

func (s *Server) handleGetRanking(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if sortParam := q.Get("sort"); sortParam != "" {
		switch mode := models.SortMode(sortParam); mode {
		case models.SortPointsDesc, models.SortDateAddedDesc, models.SortPriceDesc:
			s.eng.SetSortMode(mode)
		default:
			s.respondError(w, http.StatusBadRequest,
				"sort must be one of: points, date_added, price")
			return
		}
	}
	if hide := q.Get("hide_purchased"); hide != "" {
		s.eng.SetHidePurchased(hide == "true")
	}

	s.respondJSON(w, http.StatusOK, rankingResponse{
		Items:  s.eng.Ranking(),
		Sort:   s.eng.View().SortMode(),
		Frozen: s.eng.View().IsFrozen(),
	})
}

type budgetResponse struct {
	Remaining int `json:"remaining"`
	Max       int `json:"max"`
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	remaining, max := s.eng.Budget()
	s.respondJSON(w, http.StatusOK, budgetResponse{Remaining: remaining, Max: max})
}

// ---------------------------------------------------------------------------
// Prefill
// ---------------------------------------------------------------------------

type prefillRequest struct {
	URL string `json:"url"`
}

func (s *Server) handlePrefill(w http.ResponseWriter, r *http.Request) {
	var req prefillRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		s.respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	guess, err := s.scraper.Fetch(r.Context(), req.URL)
	if err != nil {
		// Prefill is best-effort: an unreachable page just means the user
		// fills the form manually.
		s.logger.WithError(err).Debug("prefill scrape failed")
		s.respondJSON(w, http.StatusOK, &scraper.ProductGuess{})
		return
	}
	s.respondJSON(w, http.StatusOK, guess)
}
