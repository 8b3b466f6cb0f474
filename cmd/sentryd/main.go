package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/vaultsentry/vaultsentry/internal/engine"
	"github.com/vaultsentry/vaultsentry/internal/handler"
	"github.com/vaultsentry/vaultsentry/internal/health"
	"github.com/vaultsentry/vaultsentry/internal/publish"
	"github.com/vaultsentry/vaultsentry/internal/store"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	if err := run(logger); err != nil {
		logger.Fatal("sentryd exited with error", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	// ── Configuration ────────────────────────────────────────────────────────
	viper.SetConfigName("sentryd")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("configs")
	viper.AddConfigPath(".")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("server.port", 8090)
	viper.SetDefault("server.cors_origins", []string{"http://localhost:3000"})
	viper.SetDefault("server.rate_limit_rps", 5)
	viper.SetDefault("server.rate_limit_burst", 10)
	viper.SetDefault("server.rate_limit_sweep", "5m")
	viper.SetDefault("server.rate_limit_idle_eviction", "10m")
	viper.SetDefault("database.url", "")
	viper.SetDefault("nats.url", "")
	viper.SetDefault("session.hmac_key", "")
	viper.SetDefault("engine.vault_capacity", 1024)

	if err := viper.ReadInConfig(); err != nil {
		var cfgNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgNotFound) {
			return fmt.Errorf("read config: %w", err)
		}
		logger.Warn("no config file found, using defaults and env vars")
	}

	sessionKey := []byte(viper.GetString("session.hmac_key"))
	if len(sessionKey) == 0 {
		logger.Warn("session.hmac_key is empty; session preconditions will reject every token")
	}

	// ── Storage ──────────────────────────────────────────────────────────────
	cfg := engine.Config{
		Metrics:       handler.EngineMetrics{},
		SessionKey:    sessionKey,
		VaultCapacity: viper.GetInt("engine.vault_capacity"),
		Logger:        logger,
	}
	var healthChecks []health.Check

	dbURL := viper.GetString("database.url")
	if dbURL != "" {
		db, err := pgxpool.New(context.Background(), dbURL)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer db.Close()
		if err := db.Ping(context.Background()); err != nil {
			return fmt.Errorf("ping postgres: %w", err)
		}
		logger.Info("connected to postgres")

		activity := store.NewActivity(db)
		cfg.Logs = activity
		cfg.Docs = activity
		cfg.State = activity
		cfg.Executor = activity
		cfg.Scores = store.NewPostgres(db)
		healthChecks = append(healthChecks, health.Check{Name: "postgres", Ping: db.Ping})
	} else {
		logger.Warn("no database configured, running with in-memory stores")
		activity := store.NewMemoryActivity()
		cfg.Logs = activity
		cfg.Docs = activity
		cfg.State = activity
		cfg.Executor = activity
		cfg.Scores = store.NewMemory()
	}

	eng := engine.New(cfg)
	srv := handler.New(eng, logger)

	// ── Events ───────────────────────────────────────────────────────────────
	if natsURL := viper.GetString("nats.url"); natsURL != "" {
		nc, err := nats.Connect(natsURL,
			nats.RetryOnFailedConnect(true),
			nats.MaxReconnects(-1),
		)
		if err != nil {
			return fmt.Errorf("connect to nats: %w", err)
		}
		defer nc.Drain() //nolint:errcheck
		srv.SetPublisher(publish.New(nc, logger))
		healthChecks = append(healthChecks, health.Check{
			Name: "nats",
			Ping: func(context.Context) error {
				if !nc.IsConnected() {
					return errors.New("nats connection down")
				}
				return nil
			},
		})
		logger.Info("assessment publishing enabled", zap.String("url", natsURL))
	}

	// ── Health ───────────────────────────────────────────────────────────────
	checker := health.New(health.Config{}, logger, healthChecks...)
	checker.CheckAll(context.Background())
	checkerStop := make(chan os.Signal, 1)
	go checker.Start(checkerStop)

	// ── HTTP ─────────────────────────────────────────────────────────────────
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(handler.PrometheusMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     viper.GetStringSlice("server.cors_origins"),
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", func(c *gin.Context) {
		status := http.StatusOK
		if !checker.Healthy() {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"dependencies": checker.Snapshot()})
	})
	router.GET("/metrics", handler.MetricsHandler())

	v1 := router.Group("/v1")
	v1.Use(handler.RateLimiter(handler.RateLimitConfig{
		RPS:           viper.GetInt("server.rate_limit_rps"),
		Burst:         viper.GetInt("server.rate_limit_burst"),
		SweepInterval: viper.GetDuration("server.rate_limit_sweep"),
		IdleEviction:  viper.GetDuration("server.rate_limit_idle_eviction"),
	}))
	srv.Register(v1)

	addr := fmt.Sprintf(":%d", viper.GetInt("server.port"))
	httpSrv := &http.Server{Addr: addr, Handler: router}

	go func() {
		logger.Info("sentryd listening", zap.String("addr", addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", zap.Error(err))
		}
	}()

	// ── Shutdown ─────────────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")
	close(checkerStop)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(ctx)
}
