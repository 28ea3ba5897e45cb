package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"bookrec/internal/domain"
	"bookrec/internal/logging"
)

// Response is the envelope of every API reply.
type Response struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  *APIError   `json:"error,omitempty"`
}

// APIError describes a failed request. Details carries the resolution for not_found and
// ambiguous titles.
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ScoredItem is one recommended book with its similarity score.
type ScoredItem struct {
	Book  domain.Book `json:"book"`
	Score float64     `json:"score"`
}

// RecommendationView is the payload of the recommendation endpoints.
type RecommendationView struct {
	Query domain.Book  `json:"query"`
	Mode  domain.Mode  `json:"mode"`
	K     int          `json:"k"`
	Items []ScoredItem `json:"items"`
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Response{Status: "success", Data: map[string]string{"status": "ok"}})
}

func (h *handler) resolve(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Resolve(r.URL.Query().Get("title"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !res.Found() {
		writeError(w, r, &domain.ResolutionError{Resolution: res})
		return
	}
	writeJSON(w, http.StatusOK, Response{Status: "success", Data: res})
}

func (h *handler) recommendations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode, k, err := modeAndK(q.Get("mode"), q.Get("k"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	rec, err := h.svc.Recommend(r.Context(), domain.Request{Title: q.Get("title"), Mode: mode, K: k})
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeRecommendation(w, r, rec)
}

func (h *handler) book(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.Book(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Status: "success", Data: b})
}

func (h *handler) similar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode, k, err := modeAndK(q.Get("mode"), q.Get("k"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	rec, err := h.svc.RecommendByID(r.Context(), chi.URLParam(r, "id"), mode, k)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeRecommendation(w, r, rec)
}

func (h *handler) writeRecommendation(w http.ResponseWriter, r *http.Request, rec domain.Recommendation) {
	books, err := h.svc.Books(rec.IDs())
	if err != nil {
		writeError(w, r, err)
		return
	}
	view := RecommendationView{Query: rec.Query, Mode: rec.Mode, K: rec.K, Items: make([]ScoredItem, len(books))}
	for i, b := range books {
		view.Items[i] = ScoredItem{Book: b, Score: rec.Items[i].Score}
	}
	writeJSON(w, http.StatusOK, Response{Status: "success", Data: view})
}

func modeAndK(rawMode, rawK string) (domain.Mode, int, error) {
	mode, err := domain.ParseMode(rawMode)
	if err != nil {
		return "", 0, err
	}
	k := 0
	if s := strings.TrimSpace(rawK); s != "" {
		if k, err = strconv.Atoi(s); err != nil {
			return "", 0, fmt.Errorf("%w: k must be an integer, got %q", domain.ErrMalformedQuery, s)
		}
	}
	return mode, k, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrMalformedQuery):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAmbiguousTitle):
		return http.StatusConflict
	case errors.Is(err, domain.ErrBookNotFound), errors.Is(err, domain.ErrUnknownBook):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	apiErr := &APIError{Code: domain.ErrorKind(err), Message: err.Error()}
	var rerr *domain.ResolutionError
	if errors.As(err, &rerr) {
		apiErr.Details = rerr.Resolution
	}
	if status >= http.StatusInternalServerError {
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, status, Response{Status: "error", Error: apiErr})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
