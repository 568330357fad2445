package http

import (
	"net/http"
	"time"

	"savesmart/internal/auth"
	"savesmart/internal/config"
	"savesmart/internal/core"
	"savesmart/internal/log"
	"savesmart/internal/storage"
)

// Server wires the route table over the entity stores and the auth
// subsystem. It embeds http.Server so callers get ListenAndServe and
// Shutdown directly.
type Server struct {
	http.Server

	store      *storage.Store
	auth       *auth.Service
	google     *auth.GoogleAuthenticator
	logger     *log.Logger
	categories *catalogHandlers[core.Category]
	types      *catalogHandlers[core.Type]

	frontendURL string
	bcryptCost  int
	version     string
}

// NewServer builds the server with all routes registered. The Google
// authenticator may be disabled (no credentials); its routes then answer
// with an explanatory error instead of panicking.
func NewServer(cfg *config.Config, logger *log.Logger, store *storage.Store, authSvc *auth.Service, google *auth.GoogleAuthenticator, version string) *Server {
	s := &Server{
		store:       store,
		auth:        authSvc,
		google:      google,
		logger:      logger.WithComponent(log.ComponentHTTP),
		frontendURL: cfg.FrontendURL,
		bcryptCost:  cfg.BcryptCost,
		version:     version,
	}
	s.categories = &catalogHandlers[core.Category]{
		server: s, store: store.Categories, label: "category",
		id: func(c core.Category) int64 { return c.ID },
	}
	s.types = &catalogHandlers[core.Type]{
		server: s, store: store.Types, label: "type",
		id: func(t core.Type) int64 { return t.ID },
	}

	mux := http.NewServeMux()
	s.routes(mux)

	s.Server = http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      log.Middleware(logger)(securityHeaders(mux)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)

	// Auth
	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("GET /api/auth/check-email/{email}", s.handleCheckEmail)
	mux.HandleFunc("GET /api/auth/check-username/{username}", s.handleCheckUsername)
	mux.HandleFunc("GET /api/auth/google", s.handleGoogleAuth)
	mux.HandleFunc("GET /api/auth/google/callback", s.handleGoogleCallback)
	mux.HandleFunc("POST /api/auth/test-google", s.handleTestGoogle)
	mux.HandleFunc("GET /api/auth/profile", s.requireAuth(s.handleProfile))
	mux.HandleFunc("POST /api/auth/logout", s.requireAuth(s.handleLogout))

	// Users
	mux.HandleFunc("POST /api/users", s.requireAuth(s.handleCreateUser))
	mux.HandleFunc("GET /api/users", s.requireAuth(s.handleListUsers))
	mux.HandleFunc("GET /api/users/stats", s.requireAuth(s.handleUserStats))
	mux.HandleFunc("GET /api/users/{id}", s.requireAuth(s.handleGetUser))
	mux.HandleFunc("PUT /api/users/{id}", s.requireAuth(s.handleUpdateUser))
	mux.HandleFunc("DELETE /api/users/{id}", s.requireAuth(s.handleDeleteUser))
	mux.HandleFunc("POST /api/users/{id}/activate", s.requireAuth(s.handleActivateUser))

	// Categories and types share one handler set.
	s.categories.register(mux, "/api/categories")
	s.types.register(mux, "/api/types")

	// Avoided expenses
	mux.HandleFunc("POST /api/avoided-expenses", s.requireAuth(s.handleCreateExpense))
	mux.HandleFunc("GET /api/avoided-expenses", s.requireAuth(s.handleListExpenses))
	mux.HandleFunc("GET /api/avoided-expenses/export", s.requireAuth(s.handleExportExpenses))
	mux.HandleFunc("GET /api/avoided-expenses/{id}", s.requireAuth(s.handleGetExpense))
	mux.HandleFunc("GET /api/avoided-expenses/{id}/with-relations", s.requireAuth(s.handleGetExpenseWithRelations))
	mux.HandleFunc("PUT /api/avoided-expenses/{id}", s.requireAuth(s.handleUpdateExpense))
	mux.HandleFunc("DELETE /api/avoided-expenses/{id}", s.requireAuth(s.handleDeleteExpense))
	mux.HandleFunc("GET /api/avoided-expenses/user/{userId}/stats", s.requireAuth(s.handleExpenseUserStats))
	mux.HandleFunc("GET /api/avoided-expenses/user/{userId}/monthly-savings", s.requireAuth(s.handleMonthlySavings))
	mux.HandleFunc("GET /api/avoided-expenses/user/{userId}/savings-by-category", s.requireAuth(s.handleSavingsByCategory))
	mux.HandleFunc("GET /api/avoided-expenses/user/{userId}/savings-by-type", s.requireAuth(s.handleSavingsByType))

	// Deficits
	mux.HandleFunc("POST /api/deficits", s.requireAuth(s.handleCreateDeficit))
	mux.HandleFunc("GET /api/deficits", s.requireAuth(s.handleListDeficits))
	mux.HandleFunc("GET /api/deficits/{id}", s.requireAuth(s.handleGetDeficit))
	mux.HandleFunc("PUT /api/deficits/{id}", s.requireAuth(s.handleUpdateDeficit))
	mux.HandleFunc("DELETE /api/deficits/{id}", s.requireAuth(s.handleDeleteDeficit))
	mux.HandleFunc("GET /api/deficits/user/{userId}", s.requireAuth(s.handleListUserDeficits))
	mux.HandleFunc("GET /api/deficits/user/{userId}/active", s.requireAuth(s.handleActiveDeficits))
	mux.HandleFunc("GET /api/deficits/user/{userId}/by-date-range", s.requireAuth(s.handleDeficitsByDateRange))
	mux.HandleFunc("GET /api/deficits/user/{userId}/stats", s.requireAuth(s.handleDeficitUserStats))

	// Goals
	mux.HandleFunc("POST /api/goals", s.requireAuth(s.handleCreateGoal))
	mux.HandleFunc("GET /api/goals", s.requireAuth(s.handleListGoals))
	mux.HandleFunc("GET /api/goals/{id}", s.requireAuth(s.handleGetGoal))
	mux.HandleFunc("PUT /api/goals/{id}", s.requireAuth(s.handleUpdateGoal))
	mux.HandleFunc("DELETE /api/goals/{id}", s.requireAuth(s.handleDeleteGoal))
	mux.HandleFunc("GET /api/goals/user/{userId}", s.requireAuth(s.handleListUserGoals))
}

// handleHealth is the liveness probe; its payload shape predates the
// envelope and is kept for client compatibility.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"success":true,"message":"SaveSmart API is running","timestamp":"` +
		time.Now().UTC().Format(time.RFC3339) + `","version":"` + s.version + `"}`))
}
