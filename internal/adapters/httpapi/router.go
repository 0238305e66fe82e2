package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/wayfare-app/wayfare-api/internal/app/trips"
	"github.com/wayfare-app/wayfare-api/internal/app/users"
	"github.com/wayfare-app/wayfare-api/internal/domain"
)

// UserService is the read surface every user backend provides.
type UserService interface {
	List(ctx context.Context) ([]domain.User, error)
	Get(ctx context.Context, username string) (domain.User, error)
}

// UserStore adds the write surface available when users are stored locally.
// The federated directory backend is read-only and does not implement it.
type UserStore interface {
	UserService
	Add(ctx context.Context, in *users.UserInput) (domain.User, error)
	Update(ctx context.Context, username string, in *users.UserInput) (domain.User, error)
	Delete(ctx context.Context, username string) error
}

type RouterOptions struct {
	Trips  *trips.Service
	Users  UserService
	APIKey string
	Logger zerolog.Logger
}

// NewRouter constructs the API HTTP router.
//
// This is intentionally a thin adapter: handlers decode and validate the
// request shape, delegate to the application services, and map typed app
// errors to responses.
func NewRouter(opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	// Baseline production-safe middleware (minimal but useful).
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(opts.Logger))
	r.Use(middleware.Recoverer)
	r.Use(NewAPIKeyMiddleware(opts.APIKey))

	// Health endpoint is unauthenticated (used for infra checks).
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	th := &tripHandlers{svc: opts.Trips}
	uh := &userHandlers{svc: opts.Users}

	r.Route("/v1", func(r chi.Router) {
		r.Route("/trips", func(r chi.Router) {
			r.Get("/", th.list)
			r.Post("/", th.add)
			r.Route("/{tripId}", func(r chi.Router) {
				r.Get("/", th.get)
				r.Put("/", th.update)
				r.Delete("/", th.delete)
				r.Post("/photos", th.addPhoto)
				r.Delete("/photos", th.removePhotos)
			})
		})
		r.Route("/users", func(r chi.Router) {
			r.Get("/", uh.list)
			r.Get("/{username}", uh.get)
			// Write routes only exist when the backend can store users.
			if _, ok := opts.Users.(UserStore); ok {
				r.Post("/", uh.add)
				r.Put("/{username}", uh.update)
				r.Delete("/{username}", uh.delete)
			}
		})
	})
	return r
}

func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			// Handlers pull this logger back out to record unexpected errors.
			next.ServeHTTP(ww, r.WithContext(log.WithContext(r.Context())))
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Str("requestId", middleware.GetReqID(r.Context())).
				Msg("request")
		})
	}
}
