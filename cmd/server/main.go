// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"depositrelay/internal/config"
	depositrepository "depositrelay/internal/deposit/repository"
	depositservice "depositrelay/internal/deposit/service"
	deposithttp "depositrelay/internal/deposit/transport/http"
	"depositrelay/internal/metrics"
	okxservice "depositrelay/internal/okx/service"
	"depositrelay/pkg/db"
	"depositrelay/pkg/logger"
	"depositrelay/pkg/middleware"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	log.Info("deposit relay starting", zap.String("okx_base_url", cfg.OKXBaseURL))

	metrics.InitMetrics()

	connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	database, err := db.Connect(connectCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer database.Close()
	log.Info("connected to PostgreSQL")

	ledger := depositrepository.NewPostgresLedger(database, cfg.DBTimeout)
	schemaCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = ledger.EnsureSchema(schemaCtx)
	cancel()
	if err != nil {
		log.Fatal("failed to initialize deposits table", zap.Error(err))
	}

	// --- ИНИЦИАЛИЗАЦИЯ СЛОЁВ ---
	okxClient := okxservice.NewOKXHTTPClient(okxservice.ClientOptions{
		APIKey:     cfg.OKXAPIKey,
		SecretKey:  cfg.OKXSecretKey,
		Passphrase: cfg.OKXPassphrase,
		BaseURL:    cfg.OKXBaseURL,
		ProxyAddr:  cfg.OKXProxyAddr,
		Timeout:    cfg.OKXTimeout,
	}, log)
	if cfg.OKXAPIKey == "" || cfg.OKXSecretKey == "" || cfg.OKXPassphrase == "" {
		log.Warn("OKX credentials are not fully configured; address and status requests will fail")
	}

	depositService := depositservice.NewService(
		okxservice.NewAddressResolver(okxClient, log),
		okxservice.NewStatusResolver(okxClient, cfg.HistoryLimit, log),
		ledger,
		cfg.OKXTimeout,
		log,
	)
	depositHandler := deposithttp.NewDepositHandler(depositService, log)

	// --- РОУТЕР ---
	r := chi.NewRouter()
	r.Use(middleware.MetricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Backend is running!"))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.With(middleware.BasicAuth(cfg.MetricsUser, cfg.MetricsPassword)).Handle("/metrics", promhttp.Handler())

	r.Route("/api/deposit", func(dr chi.Router) {
		dr.With(middleware.ValidateRequest).Post("/address", depositHandler.RequestAddress)
		dr.With(middleware.ValidateRequest).Post("/status", depositHandler.PollStatus)
		dr.Get("/{id}", depositHandler.GetDeposit)
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown на сигналы ОС
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig

		log.Info("shutdown signal received")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error("server shutdown failed", zap.Error(err))
		}
	}()

	log.Info("server running", zap.String("addr", server.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server failed", zap.Error(err))
	}
	log.Info("server stopped")
}
