package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/medaruler/unlocked-library/apperror"
	"github.com/medaruler/unlocked-library/auth"
	"github.com/medaruler/unlocked-library/config"
	"github.com/medaruler/unlocked-library/db"
	_ "github.com/medaruler/unlocked-library/docs"
	"github.com/medaruler/unlocked-library/storage"
	"github.com/medaruler/unlocked-library/users"
	"github.com/medaruler/unlocked-library/videos"
	"github.com/medaruler/unlocked-library/wiki"
)

//	@title			Unlocked Library API
//	@version		1.0
//	@description	Community video sharing and collaborative wiki backend.
//	@BasePath		/

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and the access token.

func main() {
	// Absent .env is fine in production, where configuration comes from
	// the real environment.
	bootLogger := zerolog.New(os.Stderr)
	if err := godotenv.Load(); err != nil {
		bootLogger.Warn().Msg(".env file not found, using environment as-is")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		bootLogger.Fatal().Err(err).Msg("failed to load config")
	}

	logger := newLogger(cfg)
	apperror.SetDevelopmentMode(cfg.IsDevelopment())

	pool, err := db.NewPool(cfg.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	if err := db.RunMigrations(cfg.DB, "migrations"); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	storeCtx, storeCancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := storage.NewClient(storeCtx, cfg.Storage)
	storeCancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to object storage")
	}

	authService := auth.NewAuthService(pool, *cfg.Auth, logger)
	authHandlers := auth.NewHandlers(authService)

	userService := users.NewUserService(pool, logger)
	userHandlers := users.NewUserHandlers(userService)

	videoService := videos.NewVideoService(pool, store, logger)
	videoHandlers := videos.NewHandlers(videoService, cfg.Server.MaxUploadBytes)

	wikiService := wiki.NewWikiService(pool, logger)
	wikiHandlers := wiki.NewHandlers(wikiService)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.Server.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api", func(r chi.Router) {
		r.Use(httprate.LimitByIP(100, 15*time.Minute))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandlers.HandleRegister())
			r.Post("/login", authHandlers.HandleLogin())
			r.Post("/refresh", authHandlers.HandleRefreshToken())

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAuth(authService))
				r.Get("/profile", userHandlers.HandleGetProfile())
				r.Patch("/profile", userHandlers.HandleUpdateProfile())
				r.Post("/change-password", authHandlers.HandleChangePassword())
				r.Post("/logout", authHandlers.HandleLogout())

				r.Group(func(r chi.Router) {
					r.Use(auth.RequireAdmin())
					r.Get("/users", userHandlers.HandleListUsers())
				})
			})
		})

		r.Route("/videos", func(r chi.Router) {
			r.Use(limitBodySize(cfg.Server.MaxUploadBytes))
			videoHandlers.RegisterRoutes(r, authService)
		})

		r.Route("/wiki", func(r chi.Router) {
			wikiHandlers.RegisterRoutes(r, authService)
		})
	})

	// Anything outside /api and /swagger serves the built frontend.
	r.NotFound(spaHandler("public"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Str("env", cfg.Server.Environment).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
}

func newLogger(cfg *config.AppConfig) zerolog.Logger {
	if cfg.IsDevelopment() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// limitBodySize rejects requests whose declared Content-Length exceeds max.
// Chunked requests pass through here and are cut off by the per-handler
// MaxBytesReader instead.
func limitBodySize(max int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > max {
				apperror.WriteJSON(w, http.StatusRequestEntityTooLarge, apperror.ErrorResponse{
					Message: "Upload exceeds the maximum allowed size",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// spaHandler serves static files from dir, falling back to index.html for
// client-side routes. Missing index.html yields a plain 404, which keeps
// API-only deployments working without a frontend build.
func spaHandler(dir string) http.HandlerFunc {
	fs := http.FileServer(http.Dir(dir))
	return func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(dir, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			fs.ServeHTTP(w, r)
			return
		}
		index := filepath.Join(dir, "index.html")
		if _, err := os.Stat(index); err != nil {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, index)
	}
}
