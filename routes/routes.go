package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/nkhatu/SwissRoundRobinApp-sub000/docs"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/handlers"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/middleware"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/models"
)

type Handlers struct {
	Auth        *handlers.AuthHandler
	Tournaments *handlers.TournamentHandler
	Groups      *handlers.GroupHandler
	Matches     *handlers.MatchHandler
	Standings   *handlers.StandingsHandler
	WebSocket   *handlers.WebSocketHandler
}

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	RequestTimeout time.Duration
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(opts.JWTSecret)
	adminOnly := middleware.RequireRole(models.RoleAdmin)
	playerOnly := middleware.RequireRole(models.RolePlayer, models.RoleAdmin)

	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Live clients keep their connection open, so they stay outside the timeout.
	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	router.Group(func(r chi.Router) {
		if opts.RequestTimeout > 0 {
			r.Use(chiMiddleware.Timeout(opts.RequestTimeout))
		}

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.With(authenticate).Get("/me", h.Auth.Me)
		})

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", h.Tournaments.ListHandler)
			r.With(authenticate, adminOnly).Post("/", h.Tournaments.CreateHandler)

			r.Route("/{tournamentID}", func(r chi.Router) {
				r.Get("/", h.Tournaments.GetByIDHandler)
				r.Get("/seeds", h.Tournaments.ListSeedsHandler)
				r.Get("/groups", h.Groups.ListHandler)
				r.Get("/groups/{groupNumber}/rounds", h.Groups.ListRoundsHandler)
				r.Get("/standings", h.Standings.GetHandler)
				r.Get("/standings/by-round", h.Standings.ByRoundHandler)
				r.Get("/round-points", h.Standings.RoundPointsHandler)
				r.Get("/live", h.Standings.LiveHandler)
				r.Get("/snapshots/latest", h.Standings.LatestSnapshotHandler)

				r.Group(func(r chi.Router) {
					r.Use(authenticate, adminOnly)
					r.Patch("/status", h.Tournaments.UpdateStatusHandler)
					r.Put("/seeds", h.Tournaments.ReplaceSeedsHandler)
					r.Post("/groups", h.Groups.AllocateHandler)
					r.Delete("/groups", h.Groups.DeleteHandler)
					r.Post("/groups/{groupNumber}/rounds", h.Groups.GenerateRoundHandler)
					r.Delete("/groups/{groupNumber}/rounds/current", h.Groups.DeleteCurrentRoundHandler)
					r.Post("/snapshots", h.Standings.ExportSnapshotHandler)
				})
			})
		})

		r.Route("/matches/{matchID}", func(r chi.Router) {
			r.With(middleware.OptionalAuthenticate(opts.JWTSecret)).Get("/", h.Matches.GetHandler)
			r.With(authenticate, playerOnly).Post("/confirm", h.Matches.ConfirmHandler)
			r.With(authenticate, adminOnly).Post("/override", h.Matches.OverrideHandler)
			r.With(authenticate, adminOnly).Post("/reopen", h.Matches.ReopenHandler)
		})
	})
}
