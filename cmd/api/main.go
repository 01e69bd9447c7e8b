package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/kbenson/userapi/internal/config"
	"github.com/kbenson/userapi/internal/handlers"
	"github.com/kbenson/userapi/internal/middleware"
	"github.com/kbenson/userapi/internal/models"
	"github.com/kbenson/userapi/internal/password"
	"github.com/kbenson/userapi/internal/store"
	"github.com/kbenson/userapi/internal/token"
	"github.com/kbenson/userapi/internal/utils"
)

const rateWindow = 15 * time.Minute

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config", "err", err)
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           level,
	})

	st, closeStore, err := openStore(cfg)
	if err != nil {
		logger.Fatal("store", "err", err)
	}
	defer closeStore()

	if err := seedAdmin(context.Background(), st, cfg); err != nil {
		logger.Fatal("seed admin", "err", err)
	}

	tokens := token.NewService(cfg.JWTSecret, cfg.TokenTTL)
	h := handlers.NewHandler(st, tokens)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(recoverJSON(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	// Auth routes sit behind a stricter limiter than the rest of the
	// API to slow brute-force attempts.
	authLimiter := httprate.Limit(10, rateWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(limitHandler("Too many authentication attempts, please try again later")),
	)
	apiLimiter := httprate.Limit(100, rateWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(limitHandler("Too many requests, please try again later")),
	)

	requireAuth := middleware.RequireAuth(st, tokens)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter)
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/profile", h.Auth.Profile)
				r.Post("/change-password", h.Auth.ChangePassword)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(apiLimiter, requireAuth)
			r.Get("/", h.Users.List)
			r.Get("/{id}", h.Users.Get)
			r.Put("/{id}", h.Users.Update)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Delete("/{id}", h.Users.Delete)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(apiLimiter, requireAuth, middleware.RequireAdmin)
			r.Get("/stats", h.Admin.Stats)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		utils.JSON(w, http.StatusOK, map[string]interface{}{
			"status":    "OK",
			"timestamp": time.Now().UTC(),
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		utils.JSONError(w, http.StatusNotFound, "Endpoint not found")
	})

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", "err", err)
	}

	logger.Info("server exited")
}

// openStore picks the Postgres store when DATABASE_URL is set and the
// in-memory store otherwise. Handlers only ever see the interface.
func openStore(cfg *config.Config) (store.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		return store.NewMemory(), func() {}, nil
	}

	db, err := store.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return store.NewPostgres(db), func() { _ = db.Close() }, nil
}

// seedAdmin creates the configured admin account if it does not exist
// yet. Without it a fresh in-memory store has no admin at all.
func seedAdmin(ctx context.Context, st store.Store, cfg *config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}
	if _, err := st.FindByEmail(ctx, cfg.AdminEmail); err == nil {
		return nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hash, err := password.Hash(cfg.AdminPassword)
	if err != nil {
		return err
	}

	return st.Insert(ctx, &models.User{
		ID:        uuid.NewString(),
		Email:     cfg.AdminEmail,
		Password:  hash,
		Name:      "Admin User",
		Role:      models.RoleAdmin,
		CreatedAt: time.Now().UTC(),
	})
}

func limitHandler(msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		utils.JSONError(w, http.StatusTooManyRequests, msg)
	}
}

// recoverJSON converts per-request panics into a generic JSON 500
// instead of crashing the process or leaking detail.
func recoverJSON(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic", "err", rec)
					utils.JSONError(w, http.StatusInternalServerError, "Internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
