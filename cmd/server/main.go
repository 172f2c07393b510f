package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"obralog/internal/api"
	"obralog/internal/auth"
	"obralog/internal/handlers"
	"obralog/internal/logging"
	mw "obralog/internal/middleware"
	"obralog/internal/store"
)

func mustGetenv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

// jwtSecret returns the configured secret, or a random one when unset.
// A random secret means sessions do not survive a restart, which is
// acceptable for a single-user site tool.
func jwtSecret() []byte {
	if v := os.Getenv("JWT_SECRET"); v != "" {
		return []byte(v)
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		slog.Error("could not generate session secret", slog.Any("err", err))
		os.Exit(1)
	}
	slog.Warn("JWT_SECRET not set; sessions will not survive a restart")
	return []byte(hex.EncodeToString(buf))
}

func sessionTTL() time.Duration {
	if v := os.Getenv("SESSION_TTL_HOURS"); v != "" {
		if hours, err := strconv.Atoi(v); err == nil && hours > 0 {
			return time.Duration(hours) * time.Hour
		}
		slog.Warn("ignoring invalid SESSION_TTL_HOURS", slog.String("value", v))
	}
	return 24 * time.Hour
}

func main() {
	_ = godotenv.Load()

	logging.Setup()

	zlog, err := zap.NewProduction()
	if err != nil {
		slog.Error("could not build request logger", slog.Any("err", err))
		os.Exit(1)
	}
	defer zlog.Sync()

	storePath := mustGetenv("STORE_PATH", "projects.json")
	port := mustGetenv("PORT", "8080")

	st := store.Open(storePath)
	tokens := auth.NewTokenManager(jwtSecret(), sessionTTL())
	authMW := mw.NewAuthMiddleware(tokens)

	web := handlers.New(st, tokens)
	authAPI := api.NewAuthHandler(st, tokens)
	projectAPI := api.NewProjectHandler(st)
	reviewAPI := api.NewReviewHandler(st)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(mw.RequestLogger(zlog))
	r.Use(mw.Metrics)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(apiRouter chi.Router) {
		apiRouter.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
		apiRouter.Post("/auth/register", authAPI.Register)
		apiRouter.Post("/auth/login", authAPI.Login)
		apiRouter.Group(func(pr chi.Router) {
			pr.Use(authMW.RequireAuth)
			pr.Get("/project", projectAPI.Get)
			pr.Get("/reviews", reviewAPI.List)
			pr.Post("/reviews", reviewAPI.Create)
			pr.Put("/reviews/{idx}", reviewAPI.Update)
			pr.Delete("/reviews/{idx}", reviewAPI.Delete)
			pr.Get("/archive", reviewAPI.Archive)
		})
	})

	r.Group(func(pub chi.Router) {
		pub.Use(authMW.OptionalSession)
		pub.Get("/", web.Home)
	})
	r.Get("/login", web.LoginForm)
	r.Post("/login", web.Login)
	r.Get("/register", web.RegisterForm)
	r.Post("/register", web.Register)
	r.Post("/logout", web.Logout)
	r.Group(func(priv chi.Router) {
		priv.Use(authMW.RequireSession)
		priv.Get("/archive", web.Archive)
		priv.Post("/reviews", web.CreateReview)
		priv.Get("/reviews/{idx}/edit", web.EditReviewForm)
		priv.Post("/reviews/{idx}", web.UpdateReview)
		priv.Post("/reviews/{idx}/delete", web.DeleteReview)
		priv.Get("/photos/profile", web.ProfilePhoto)
		priv.Get("/photos/reviews/{idx}", web.ReviewPhoto)
	})

	srv := &http.Server{Addr: ":" + port, Handler: r}
	go func() {
		slog.Info("server starting", slog.String("addr", ":"+port), slog.String("store", storePath))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.Any("err", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutdown initiated")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	slog.Info("server stopped")
}
