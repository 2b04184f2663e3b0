package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dom/tour-of-heroes/internal/domain"
	"github.com/dom/tour-of-heroes/internal/logging"
	"github.com/dom/tour-of-heroes/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type HeroHandler struct {
	heroService *service.HeroService
	logger      *zap.Logger
}

func NewHeroHandler(heroService *service.HeroService, logger *zap.Logger) *HeroHandler {
	return &HeroHandler{
		heroService: heroService,
		logger:      logging.OrNop(logger),
	}
}

type CreateHeroRequest struct {
	Name string `json:"name"`
}

// List serves the full roster, a name search (?name=) or an id lookup (?id=).
func (h *HeroHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var (
		heroes []*domain.Hero
		err    error
	)
	switch {
	case query.Has("id"):
		id, convErr := strconv.Atoi(query.Get("id"))
		if convErr != nil {
			http.Error(w, "Invalid hero id", http.StatusBadRequest)
			return
		}
		heroes, err = h.heroService.FindHeroes(r.Context(), id)
	case query.Has("name"):
		heroes, err = h.heroService.SearchHeroes(r.Context(), query.Get("name"))
	default:
		heroes, err = h.heroService.GetAllHeroes(r.Context())
	}
	if err != nil {
		h.logger.Error("list heroes failed", zap.String("query", r.URL.RawQuery), zap.Error(err))
		http.Error(w, "Failed to get heroes", http.StatusInternalServerError)
		return
	}

	if heroes == nil {
		heroes = []*domain.Hero{}
	}
	writeJSON(w, http.StatusOK, heroes)
}

func (h *HeroHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := heroID(w, r)
	if !ok {
		return
	}

	hero, err := h.heroService.GetHero(r.Context(), id)
	if err != nil {
		h.writeError(w, "get", id, err)
		return
	}

	writeJSON(w, http.StatusOK, hero)
}

func (h *HeroHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateHeroRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	hero, err := h.heroService.CreateHero(r.Context(), service.CreateHeroInput{Name: req.Name})
	if err != nil {
		h.writeError(w, "create", 0, err)
		return
	}

	writeJSON(w, http.StatusCreated, hero)
}

// Update replaces a hero. The body carries the full record, id included.
func (h *HeroHandler) Update(w http.ResponseWriter, r *http.Request) {
	var hero domain.Hero
	if err := json.NewDecoder(r.Body).Decode(&hero); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.heroService.UpdateHero(r.Context(), &hero); err != nil {
		h.writeError(w, "update", hero.ID, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *HeroHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := heroID(w, r)
	if !ok {
		return
	}

	hero, err := h.heroService.DeleteHero(r.Context(), id)
	if err != nil {
		h.writeError(w, "delete", id, err)
		return
	}

	writeJSON(w, http.StatusOK, hero)
}

func (h *HeroHandler) writeError(w http.ResponseWriter, op string, id int, err error) {
	switch {
	case errors.Is(err, domain.ErrHeroNotFound):
		http.Error(w, "Hero not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidHeroName), errors.Is(err, domain.ErrInvalidHeroID):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error("hero request failed", zap.String("op", op), zap.Int("heroID", id), zap.Error(err))
		http.Error(w, "Failed to "+op+" hero", http.StatusInternalServerError)
	}
}

func heroID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid hero id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
