package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/nmoralesc/ticket-classifier/internal/ai"
	"github.com/nmoralesc/ticket-classifier/internal/config"
	"github.com/nmoralesc/ticket-classifier/internal/tickets"
)

func main() {
	_ = godotenv.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	// --- DB ---
	dsn, err := cfg.DSN()
	if err != nil {
		logger.Fatal("bad supabase url", zap.Error(err))
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logger.Fatal("db open error", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		logger.Fatal("db ping error", zap.Error(err))
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	// --- Tickets module wiring ---
	repo := tickets.NewRepo(db)
	classifier := ai.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiModelFallback, logger)
	service := tickets.NewService(repo, classifier, logger)
	handler := tickets.NewHandler(service, repo, classifier, cfg.Environment, logger)

	tickets.RegisterRoutes(r, handler)

	logger.Info("listening", zap.String("port", cfg.Port), zap.String("env", cfg.Environment))
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
