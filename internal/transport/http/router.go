package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// NewRouter wires the HTTP API. Every route except /health requires a
// bearer token.
func NewRouter(handler *Handler, events *EventsHandler, auth *Authenticator, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(hlog.NewHandler(log))
	r.Use(requestIDLogger)
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("http request")
	}))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(pr chi.Router) {
		pr.Use(auth.Middleware)

		pr.Route("/discount-requests", func(r chi.Router) {
			r.Post("/", handler.CreateRequest)
			r.Get("/", handler.ListRequests)
			r.Get("/active", handler.ListActive)
			r.Get("/{id}", handler.GetRequest)
			r.Put("/{id}", handler.UpdateRequest)
			r.Post("/{id}/approve", handler.ApproveRequest)
			r.Post("/{id}/reject", handler.RejectRequest)
		})

		pr.Get("/active-discounts", handler.ActiveDiscount)
		pr.Get("/products/{id}/calculate-price", handler.CalculatePrice)
		pr.Method(http.MethodGet, "/events", events)
	})

	return r
}

// requestIDLogger tags the request logger with chi's request id so usecase
// logs and the access log share it.
func requestIDLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("req_id", id)
			})
		}
		next.ServeHTTP(w, r)
	})
}
