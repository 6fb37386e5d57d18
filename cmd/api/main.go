package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ispure/ispure-go/internal/config"
	"github.com/ispure/ispure-go/internal/crypto"
	"github.com/ispure/ispure-go/internal/handler"
	"github.com/ispure/ispure-go/internal/ingest"
	"github.com/ispure/ispure-go/internal/middleware"
	"github.com/ispure/ispure-go/internal/mqtt"
	"github.com/ispure/ispure-go/internal/repository"
	"github.com/ispure/ispure-go/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, db, err := repository.NewDB(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		slog.Error("database client setup failed", "error", err)
		os.Exit(1)
	}
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		slog.Warn("index creation failed", "error", err)
	}

	tokens := crypto.NewTokenService(cfg.JWTSecret)

	authService := service.NewAuthService(
		repository.NewUserRepository(db),
		repository.NewSessionRepository(db),
		tokens,
	)
	readingService := service.NewReadingService(
		repository.NewSensorRepository(db),
		repository.NewIspuRepository(db),
	)

	authHandler := handler.NewAuthHandler(authService, handler.CookieConfig{
		Secure:   cfg.CookieSecure,
		SameSite: handler.ParseSameSite(cfg.CookieSameSite),
	})
	readingHandler := handler.NewReadingHandler(readingService)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	requireAuth := middleware.RequireAuth(tokens)

	r.Route("/api/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthRateLimit())
			r.Post("/register", authHandler.HandleRegister)
			r.Post("/login", authHandler.HandleLogin)
		})
		r.Post("/logout", authHandler.HandleLogout)
		r.Post("/refresh", authHandler.HandleRefresh)
		r.With(requireAuth).Get("/me", authHandler.HandleMe)
	})

	r.Route("/api/sensors", func(r chi.Router) {
		r.Get("/", readingHandler.HandleListSensors)
		r.Get("/lastest", readingHandler.HandleLatestSensor)
		r.With(requireAuth).Post("/", readingHandler.HandleCreateSensor)
	})

	r.Route("/api/ispu", func(r chi.Router) {
		r.Get("/", readingHandler.HandleListIspu)
		r.Get("/lastest", readingHandler.HandleLatestIspu)
		r.With(requireAuth).Post("/", readingHandler.HandleCreateIspu)
	})

	r.Route("/api/merge", func(r chi.Router) {
		r.Get("/home", readingHandler.HandleHome)
		r.Get("/detail/{type}", readingHandler.HandleDetail)
	})

	var mq *mqtt.Client
	if cfg.MQTT.Enabled() {
		mq = startIngest(ctx, cfg.MQTT, readingService)
	} else {
		slog.Info("MQTT_BROKER_URL not set, mqtt ingestion disabled")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	cancel()
	mq.Close()
	if err := client.Disconnect(shutdownCtx); err != nil {
		slog.Error("database disconnect failed", "error", err)
	}

	slog.Info("server stopped")
}

// startIngest connects to the broker and subscribes the ingestor to the
// sensor and ISPU topics. A broker that is down at startup is retried in the
// background and the subscriptions apply once it connects; a rejected
// connection is logged and ingestion stays off. The HTTP API keeps serving.
func startIngest(ctx context.Context, cfg config.MQTTConfig, store ingest.Store) *mqtt.Client {
	mq, err := mqtt.Connect(cfg.BrokerURL, cfg.ClientID)
	if err != nil {
		slog.Error("mqtt connect failed, ingestion disabled", "broker", cfg.BrokerURL, "error", err)
		return nil
	}

	ing := &ingest.Ingestor{
		Store:        store,
		SensorTopic:  cfg.SensorTopic,
		IspuTopic:    cfg.IspuTopic,
		AllowRetains: cfg.IngestRetained,
	}
	for _, topic := range []string{cfg.SensorTopic, cfg.IspuTopic} {
		if err := mq.Subscribe(topic, 1, func(m mqtt.Message) {
			ing.HandleMessage(ctx, m, time.Now().UTC())
		}); err != nil {
			slog.Error("mqtt subscribe failed", "topic", topic, "error", err)
			continue
		}
		slog.Info("mqtt ingest registered", "topic", topic)
	}
	return mq
}

func setupLogging(level string) {
	lvl := slog.LevelInfo
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	h := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(h))
}
