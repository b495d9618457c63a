package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/StuartGrossman/Consigment-sub002/internal/backend"
	c "github.com/StuartGrossman/Consigment-sub002/internal/cache"
	"github.com/StuartGrossman/Consigment-sub002/internal/catalog"
	h "github.com/StuartGrossman/Consigment-sub002/internal/http"
	"github.com/StuartGrossman/Consigment-sub002/internal/journal"
	"github.com/StuartGrossman/Consigment-sub002/internal/publisher"
	"github.com/StuartGrossman/Consigment-sub002/internal/session"
	"github.com/StuartGrossman/Consigment-sub002/internal/settlement"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
)

type Config struct {
	HTTPPort        string
	BackendURL      string
	RedisAddr       string
	RedisPassword   string
	KafkaBrokers    string
	JournalPath     string
	MigrationsPath  string
	TerminalID      string
	OperatorName    string
	ConfirmMode     bool
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8090"),
		BackendURL:      getEnv("BACKEND_URL", "http://localhost:8080"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:    getEnv("KAFKA_BROKERS", ""),
		JournalPath:     getEnv("JOURNAL_PATH", "terminal.db"),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "./migrations"),
		TerminalID:      getEnv("TERMINAL_ID", "terminal-1"),
		OperatorName:    getEnv("OPERATOR_NAME", "cashier"),
		ConfirmMode:     getEnv("CONFIRM_BEFORE_ADD", "") == "true",
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()
	ctx := context.Background()

	// Backend client for lookups, shared carts, customers and settlement
	backendClient := backend.NewClient(cfg.BackendURL, cfg.RequestTimeout)
	log.Printf("Using store backend at %s", cfg.BackendURL)

	// Redis-backed lookup cache
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("Redis connection failed:", err)
	}
	log.Printf("Redis ping succeeded")
	itemCache := c.NewRedisCache(redisClient)

	lookupClient := catalog.NewClient(backendClient, itemCache)

	// Device-local receipt journal
	store, err := journal.NewStore(cfg.JournalPath)
	if err != nil {
		log.Fatalf("Failed to open receipt journal: %v", err)
	}
	defer store.Close()
	if err := store.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to migrate receipt journal: %v", err)
	}
	log.Printf("Receipt journal at %s", cfg.JournalPath)

	sinks := []session.ReceiptSink{store}

	// Optional sale-completed event stream
	if cfg.KafkaBrokers != "" {
		salePublisher := publisher.NewSalePublisher(cfg.TerminalID, strings.Split(cfg.KafkaBrokers, ",")...)
		defer salePublisher.Close()
		sinks = append(sinks, salePublisher)
		log.Printf("Publishing sale events to %s", cfg.KafkaBrokers)
	}

	engine := settlement.NewEngine(backendClient)
	terminalSession := session.New(session.Config{
		TerminalID:       cfg.TerminalID,
		OperatorName:     cfg.OperatorName,
		ConfirmBeforeAdd: cfg.ConfirmMode,
		PollInterval:     session.DefaultPollInterval,
		Cooldown:         session.DefaultCooldown,
	}, lookupClient, backendClient, backendClient, engine, sinks...)

	terminalHandler := h.NewTerminalHandler(terminalSession, cfg.RequestTimeout)

	// Setup router
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", terminalHandler.Routes)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Terminal %s listening on :%s", cfg.TerminalID, cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down terminal...")
	terminalSession.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("terminal stopped")
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
