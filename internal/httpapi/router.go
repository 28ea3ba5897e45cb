// Package httpapi exposes the recommender as a JSON API.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bookrec/internal/domain"
	"bookrec/internal/logging"
)

// Recommender is the subset of the service the API needs.
type Recommender interface {
	Resolve(query string) (domain.Resolution, error)
	Recommend(ctx context.Context, req domain.Request) (domain.Recommendation, error)
	RecommendByID(ctx context.Context, id string, mode domain.Mode, k int) (domain.Recommendation, error)
	Book(id string) (domain.Book, error)
	Books(ids []string) ([]domain.Book, error)
}

type Options struct {
	// RateLimitPerMinute limits requests per client IP; 0 disables limiting.
	RateLimitPerMinute int
}

type handler struct {
	svc Recommender
}

// NewRouter builds the chi router with all routes and middleware.
func NewRouter(svc Recommender, opts Options) http.Handler {
	h := &handler{svc: svc}
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(correlationID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", h.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if opts.RateLimitPerMinute > 0 {
			r.Use(httprate.LimitByIP(opts.RateLimitPerMinute, time.Minute))
		}
		r.Get("/resolve", h.resolve)
		r.Get("/recommendations", h.recommendations)
		r.Get("/books/{id}", h.book)
		r.Get("/books/{id}/similar", h.similar)
	})
	return r
}

// correlationID ties log lines of one request to chi's request id.
func correlationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chimiddleware.GetReqID(r.Context())
		if id == "" {
			id = logging.GenerateCorrelationID()
		}
		w.Header().Set(chimiddleware.RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logging.ContextWithCorrelationID(r.Context(), id)))
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logging.Ctx(r.Context()).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}
