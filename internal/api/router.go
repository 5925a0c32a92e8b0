package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/treasurehunt-go/internal/api/handler"
	"github.com/mcoot/treasurehunt-go/internal/api/middleware"
	"github.com/mcoot/treasurehunt-go/internal/api/response"
	sharedmw "github.com/mcoot/treasurehunt-go/internal/middleware"
	"github.com/mcoot/treasurehunt-go/internal/services/account"
	"github.com/mcoot/treasurehunt-go/internal/services/auth"
	"github.com/mcoot/treasurehunt-go/internal/services/hunt"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	AuthService    *auth.Service
	AccountService *account.Service
	HuntController *hunt.Controller
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.AuthService, cfg.Logger)
	huntHandler := handler.NewHuntHandler(cfg.HuntController, cfg.Logger)
	adminHandler := handler.NewAdminHandler(cfg.AccountService, cfg.HuntController.Clues(), cfg.Logger)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(sharedmw.RequestID)
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(sharedmw.Logging(cfg.Logger))

	// Public routes
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)

	// Player routes
	api.Handle("/auth/me", authMiddleware(http.HandlerFunc(authHandler.Me))).Methods(http.MethodGet)
	api.Handle("/hunt/clue", authMiddleware(http.HandlerFunc(huntHandler.Clue))).Methods(http.MethodGet)
	api.Handle("/hunt/scan", authMiddleware(http.HandlerFunc(huntHandler.Scan))).Methods(http.MethodPost)

	// Admin routes (all require the admin role)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(authMiddleware)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/users", adminHandler.ListUsers).Methods(http.MethodGet)
	admin.HandleFunc("/users", adminHandler.CreateUser).Methods(http.MethodPost)
	admin.HandleFunc("/users/{id}", adminHandler.UpdateUser).Methods(http.MethodPut, http.MethodPatch)
	admin.HandleFunc("/users/{id}", adminHandler.DeleteUser).Methods(http.MethodDelete)
	admin.HandleFunc("/users/{id}/toggle", adminHandler.ToggleUser).Methods(http.MethodPatch)
	admin.HandleFunc("/users/{id}/reset", adminHandler.ResetUser).Methods(http.MethodPost)
	admin.HandleFunc("/clues", adminHandler.ListClues).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
