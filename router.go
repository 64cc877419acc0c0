package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/user/taskman-go/api"
	"github.com/user/taskman-go/auth"
	"github.com/user/taskman-go/session"
	"github.com/user/taskman-go/tasks"
	"github.com/user/taskman-go/web"
)

// application bundles everything the router needs. Keeping assembly separate
// from main lets the end-to-end tests run the real route table against
// in-memory backends.
type application struct {
	sessions     session.Store
	authHandlers *auth.Handlers
	taskHandlers *tasks.Handlers
	apiHandlers  *api.Handlers
	renderer     *web.Renderer
	logger       *zap.Logger
	startedAt    time.Time
}

// buildRouter wires middleware and routes. The session loader runs globally;
// the guard is applied per route group with the failure rendering that group
// wants.
func (app *application) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(auth.LoadSession(app.sessions, app.logger))

	// Auth pages are public; the handlers bounce authenticated users to the
	// dashboard themselves.
	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", app.authHandlers.ShowLogin())
		r.Post("/login", app.authHandlers.HandleLogin())
		r.Get("/register", app.authHandlers.ShowRegister())
		r.Post("/register", app.authHandlers.HandleRegister())
		r.Get("/logout", app.authHandlers.HandleLogout())
	})

	// Task pages: page-surface guard, rejection is a redirect to login.
	r.Route("/tasks", func(r chi.Router) {
		r.Use(auth.RequireUser(auth.RedirectToLogin))
		app.taskHandlers.RegisterRoutes(r)
	})

	// JSON API: same guard predicate, rejection is a 401 envelope. /api/info
	// stays public.
	r.Route("/api", func(r chi.Router) {
		r.Get("/info", app.apiHandlers.HandleInfo())

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireUser(auth.UnauthorizedJSON))
			r.Get("/user", app.apiHandlers.HandleUser())
			r.Get("/stats", app.apiHandlers.HandleStats())
		})
	})

	r.Get("/", app.handleHome())
	r.With(auth.RequireUser(auth.RedirectToLogin)).Get("/dashboard", app.handleDashboard())
	r.Get("/health", app.handleHealth())

	r.NotFound(app.handleNotFound())

	return r
}

// handleHome renders the landing page for both anonymous and authenticated
// visitors.
func (app *application) handleHome() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, _ := auth.PrincipalFromContext(r.Context())
		app.renderer.Render(w, http.StatusOK, "index", web.Page{
			Title: "Home - Task Manager",
			User:  principal,
		})
	}
}

// handleDashboard renders the dashboard for the authenticated user.
func (app *application) handleDashboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := auth.PrincipalFromContext(r.Context())
		if !ok {
			auth.RedirectToLogin(w, r)
			return
		}
		app.renderer.Render(w, http.StatusOK, "dashboard", web.Page{
			Title: "Dashboard",
			User:  principal,
		})
	}
}

// handleHealth reports liveness.
func (app *application) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":    "healthy",
			"uptime":    time.Since(app.startedAt).Seconds(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// handleNotFound renders the 404 page.
func (app *application) handleNotFound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, _ := auth.PrincipalFromContext(r.Context())
		app.renderer.Render(w, http.StatusNotFound, "404", web.Page{
			Title: "404 - Page Not Found",
			User:  principal,
		})
	}
}
