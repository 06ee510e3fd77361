package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reelearn-backend/internal/config"
	"reelearn-backend/internal/database"
	"reelearn-backend/internal/handlers"
	"reelearn-backend/internal/middleware"
	"reelearn-backend/internal/repository"
	"reelearn-backend/internal/router"
	"reelearn-backend/internal/services"
	"reelearn-backend/internal/websocket"
)

func main() {
	log.Println("🚀 Starting ReelLearn Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	videoRepo := repository.NewVideoRepo(pool)
	quizRepo := repository.NewQuizRepo(pool)
	commentRepo := repository.NewCommentRepo(pool)

	// ──── Step 5: Initialize Gemini Client ────
	gemini, err := services.NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiConcurrentReqs)
	if err != nil {
		log.Fatalf("✗ Gemini client initialization failed: %v", err)
	}
	defer gemini.Close()
	log.Println("✓ Gemini client initialized")

	// ──── Initialize Generation Pipelines ────
	summaryService := services.NewSummaryService(gemini, videoRepo)
	quizService := services.NewQuizService(gemini, videoRepo)
	readingService := services.NewFurtherReadingService(gemini, videoRepo)
	commentSummaryService := services.NewCommentSummaryService(gemini, commentRepo, videoRepo)

	// ──── Initialize Handlers ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	generateLimiter := middleware.NewRateLimiter(redisClients.Limiter, "generate", cfg.GenerateLimitPerMin, time.Minute)

	generateHandler := handlers.NewGenerateHandler(
		summaryService,
		quizService,
		readingService,
		commentSummaryService,
		videoRepo,
		quizRepo,
		redisClients.Events,
		cfg.GenerationTimeout,
	)
	videoHandler := handlers.NewVideoHandler(videoRepo, quizRepo)
	commentHandler := handlers.NewCommentHandler(commentRepo, videoRepo)

	// ──── Step 6: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.Events)
	log.Println("✓ WebSocket hub started")

	// ──── Step 7: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		generateLimiter,
		generateHandler,
		videoHandler,
		commentHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		// Generation requests legitimately run for minutes.
		WriteTimeout: cfg.GenerationTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ ReelLearn Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
