package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pollbox/api/internal/core/domain"
	"github.com/pollbox/api/internal/core/ports"
)

// QueryHandler serves the read-only views: listings, featured polls,
// per-user dashboards and option stats.
type QueryHandler struct {
	service ports.QueryService
}

func NewQueryHandler(service ports.QueryService) *QueryHandler {
	return &QueryHandler{
		service: service,
	}
}

func (h *QueryHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	input := ports.ListPollsInput{
		Status: r.URL.Query().Get("status"),
		Query:  r.URL.Query().Get("q"),
		Sort:   r.URL.Query().Get("sort"),
		Page:   queryInt(r, "page"),
	}

	polls, err := h.service.ListPolls(r.Context(), input)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writePolls(w, polls)
}

func (h *QueryHandler) Featured(w http.ResponseWriter, r *http.Request) {
	polls, err := h.service.Featured(r.Context(), queryInt(r, "limit"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writePolls(w, polls)
}

func (h *QueryHandler) OptionStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.OptionStats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPollID) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if errors.Is(err, domain.ErrPollNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

func (h *QueryHandler) MyPolls(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(UserIDKey).(uuid.UUID)
	if !ok {
		http.Error(w, "Unauthorized: missing user context", http.StatusUnauthorized)
		return
	}

	polls, err := h.service.CreatedBy(r.Context(), userID, queryInt(r, "page"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writePolls(w, polls)
}

func (h *QueryHandler) MyParticipation(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(UserIDKey).(uuid.UUID)
	if !ok {
		http.Error(w, "Unauthorized: missing user context", http.StatusUnauthorized)
		return
	}

	polls, err := h.service.ParticipatedBy(r.Context(), userID, queryInt(r, "page"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writePolls(w, polls)
}

func writePolls(w http.ResponseWriter, polls []*domain.Poll) {
	if polls == nil {
		polls = []*domain.Poll{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(polls); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

func queryInt(r *http.Request, name string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return n
}
