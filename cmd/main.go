package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/crypto/bcrypt"

	"github.com/sbilibin2017/netflox-api/docs"
	"github.com/sbilibin2017/netflox-api/internal/facades"
	"github.com/sbilibin2017/netflox-api/internal/handlers"
	"github.com/sbilibin2017/netflox-api/internal/jwt"
	"github.com/sbilibin2017/netflox-api/internal/logger"
	"github.com/sbilibin2017/netflox-api/internal/middlewares"
	"github.com/sbilibin2017/netflox-api/internal/repositories"
	"github.com/sbilibin2017/netflox-api/internal/services"
	"github.com/sbilibin2017/netflox-api/internal/storage"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

const (
	shutdownTimeout = 10 * time.Second
	tmdbTimeout     = 10 * time.Second
)

// config is everything read from the environment.
type config struct {
	appHost        string
	appPort        string
	logLevel       string
	logDevelopment bool

	databaseURL      string
	dbConnectTimeout time.Duration
	dbMaxOpenConns   int
	dbMaxIdleConns   int
	dbRecheck        time.Duration
	sqlitePath       string

	jwtSecret         string
	jwtExp            time.Duration
	bcryptCost        int
	adminAuthRequired bool
	corsOrigins       []string

	tmdbAPIKey  string
	tmdbBaseURL string

	redisHost       string
	redisPort       int
	redisDB         int
	redisPassword   string
	catalogCacheTTL time.Duration

	kafkaBrokers   []string
	kafkaUserTopic string
}

// @title netflox API
// @version 1.0.0
// @description User registration and login with PostgreSQL to SQLite failover, plus a cached movie catalog
// @host localhost:5000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()
	configPath := parseFlags()

	cfg, err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Starting service version %s, commit %s, build %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// parseConfig loads environment variables from a file and returns
// the application, storage, auth, catalog and event configuration.
// A missing file is not an error; the environment and defaults still apply.
func parseConfig(path string) (cfg config, err error) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}
	getInt := func(key, defaultValue string) (int, error) {
		v, err := strconv.Atoi(getEnv(key, defaultValue))
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		return v, nil
	}
	getSeconds := func(key, defaultValue string) (time.Duration, error) {
		v, err := getInt(key, defaultValue)
		return time.Duration(v) * time.Second, err
	}
	getBool := func(key, defaultValue string) (bool, error) {
		v, err := strconv.ParseBool(getEnv(key, defaultValue))
		if err != nil {
			return false, fmt.Errorf("%s: %w", key, err)
		}
		return v, nil
	}

	// Application config
	cfg.appHost = getEnv("APP_HOST", "0.0.0.0")
	cfg.appPort = getEnv("APP_PORT", "5000")
	cfg.logLevel = getEnv("APP_LOG_LEVEL", "info")
	if cfg.logDevelopment, err = getBool("APP_LOG_DEVELOPMENT", "false"); err != nil {
		return
	}

	// Credential stores
	cfg.databaseURL = getEnv("DATABASE_URL", "")
	cfg.sqlitePath = getEnv("SQLITE_PATH", "./database.sqlite")
	if cfg.dbConnectTimeout, err = getSeconds("DB_CONNECT_TIMEOUT_SECOND", "5"); err != nil {
		return
	}
	if cfg.dbMaxOpenConns, err = getInt("DB_MAX_OPEN_CONNS", "16"); err != nil {
		return
	}
	if cfg.dbMaxIdleConns, err = getInt("DB_MAX_IDLE_CONNS", "8"); err != nil {
		return
	}
	if cfg.dbRecheck, err = getSeconds("DB_PRIMARY_RECHECK_INTERVAL_SECOND", "0"); err != nil {
		return
	}

	// Auth config
	cfg.jwtSecret = getEnv("JWT_SECRET", "supersecretkey123")
	if cfg.jwtExp, err = getSeconds("JWT_EXP_SECOND", "3600"); err != nil {
		return
	}
	if cfg.bcryptCost, err = getInt("AUTH_BCRYPT_COST", strconv.Itoa(services.DefaultHashCost)); err != nil {
		return
	}
	if cfg.bcryptCost < bcrypt.MinCost || cfg.bcryptCost > bcrypt.MaxCost {
		err = fmt.Errorf("AUTH_BCRYPT_COST: %d outside %d..%d", cfg.bcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
		return
	}
	if cfg.adminAuthRequired, err = getBool("ADMIN_AUTH_REQUIRED", "false"); err != nil {
		return
	}
	cfg.corsOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", "*"))

	// Catalog config
	cfg.tmdbAPIKey = getEnv("TMDB_API_KEY", "")
	cfg.tmdbBaseURL = getEnv("TMDB_BASE_URL", facades.DefaultTMDBBaseURL)

	// Redis config
	cfg.redisHost = getEnv("REDIS_HOST", "")
	cfg.redisPassword = getEnv("REDIS_PASSWORD", "")
	if cfg.redisPort, err = getInt("REDIS_PORT", "6379"); err != nil {
		return
	}
	if cfg.redisDB, err = getInt("REDIS_DB", "0"); err != nil {
		return
	}
	if cfg.catalogCacheTTL, err = getSeconds("CATALOG_CACHE_TTL_SECOND", "600"); err != nil {
		return
	}

	// Kafka config
	cfg.kafkaBrokers = splitList(getEnv("KAFKA_BROKERS", ""))
	cfg.kafkaUserTopic = getEnv("KAFKA_USER_TOPIC", "users.registered")

	return
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// app holds what the HTTP router serves.
type app struct {
	auth              *services.AuthService
	users             *services.UserListService
	status            handlers.StatusReporter
	catalog           handlers.CatalogBrowser // nil disables the catalog routes
	tokens            middlewares.Tokener
	adminAuthRequired bool
	corsOrigins       []string
}

// newRouter builds the chi router with middleware, API routes and swagger.
func newRouter(a app) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware(logger.Named("http")))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middlewares.RequestIDHeader},
		ExposedHeaders: []string{middlewares.RequestIDHeader},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		// Public routes
		handlers.RegisterRegisterHandler(r, handlers.NewRegisterHandler(a.auth))
		handlers.RegisterLoginHandler(r, handlers.NewLoginHandler(a.auth))
		handlers.RegisterStatusHandler(r, handlers.NewStatusHandler(a.status))

		// Admin routes
		r.Group(func(r chi.Router) {
			if a.adminAuthRequired {
				r.Use(middlewares.AuthMiddleware(a.tokens))
			}
			handlers.RegisterListUsersHandler(r, handlers.NewListUsersHandler(a.users))
		})

		if a.catalog != nil {
			handlers.RegisterCatalogHandlers(r, a.catalog)
		}
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return r
}

// openStorage opens the fallback store and, when configured, the primary,
// then probes the primary once to pick the starting state.
func openStorage(ctx context.Context, cfg config) (*storage.Router, error) {
	fallback, err := storage.OpenSQLite(cfg.sqlitePath, cfg.dbConnectTimeout)
	if err != nil {
		return nil, fmt.Errorf("open fallback store: %w", err)
	}

	var primary storage.Backend
	if cfg.databaseURL != "" {
		pg, err := storage.OpenPostgres(cfg.databaseURL, storage.PostgresOptions{
			ConnectTimeout: cfg.dbConnectTimeout,
			MaxOpenConns:   cfg.dbMaxOpenConns,
			MaxIdleConns:   cfg.dbMaxIdleConns,
		})
		if err != nil {
			logger.Log.Warnw("invalid DATABASE_URL, serving from the fallback store", "error", err)
		} else {
			primary = pg
		}
	} else {
		logger.Log.Infow("DATABASE_URL not set, serving from the fallback store")
	}

	router := storage.NewRouter(primary, fallback)
	state := router.Probe(ctx)
	logger.Log.Infow("credential store selected", "state", state.String(), "sqlite_path", cfg.sqlitePath)
	return router, nil
}

// run initializes the logger, stores, optional Redis, Kafka and catalog clients, and HTTP server.
// It sets up routes, applies middleware, and handles graceful shutdown.
// newUserEventWriter returns an async writer. Async WriteMessages never reports
// delivery errors to the caller, so failed batches are logged from Completion.
func newUserEventWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		Async:                  true,
		AllowAutoTopicCreation: true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Log.Errorw("failed to publish user events",
					"topic", topic,
					"messages", len(messages),
					"error", err,
				)
			}
		},
	}
}

func run(ctx context.Context, cfg config) error {
	if err := logger.Initialize(cfg.logLevel, cfg.logDevelopment); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Sync()
	logger.Log.Infof("Logger initialized with level %s", cfg.logLevel)

	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	router, err := openStorage(ctxShutdown, cfg)
	if err != nil {
		return err
	}
	defer router.Close()

	if cfg.dbRecheck > 0 {
		go router.WatchPrimary(ctxShutdown, cfg.dbRecheck)
	}

	tokens := jwt.New(
		jwt.WithSecretKey(cfg.jwtSecret),
		jwt.WithExpiration(cfg.jwtExp),
	)
	logger.Log.Infow("issuing access tokens", "expiration", tokens.Expiration().String())

	// Repositories and services
	userRepo := repositories.NewUserRepository(router)

	authOpts := []services.AuthOpt{services.WithHashCost(cfg.bcryptCost)}
	if len(cfg.kafkaBrokers) > 0 {
		writer := newUserEventWriter(cfg.kafkaBrokers, cfg.kafkaUserTopic)
		defer writer.Close()
		authOpts = append(authOpts, services.WithKafkaWriter(writer))
		logger.Log.Infow("publishing registration events", "brokers", cfg.kafkaBrokers, "topic", cfg.kafkaUserTopic)
	}

	a := app{
		auth:              services.NewAuthService(userRepo, userRepo, tokens, authOpts...),
		users:             services.NewUserListService(userRepo),
		status:            router,
		tokens:            tokens,
		adminAuthRequired: cfg.adminAuthRequired,
		corsOrigins:       cfg.corsOrigins,
	}

	if cfg.tmdbAPIKey != "" {
		var cache services.CatalogCache
		if cfg.redisHost != "" {
			rdb := redis.NewClient(&redis.Options{
				Addr:     fmt.Sprintf("%s:%d", cfg.redisHost, cfg.redisPort),
				Password: cfg.redisPassword,
				DB:       cfg.redisDB,
			})
			defer rdb.Close()
			if err := rdb.Ping(ctxShutdown).Err(); err != nil {
				logger.Log.Warnw("Redis unavailable, catalog cache will be bypassed until it answers", "error", err)
			}
			cache = repositories.NewCatalogCacheRepository(rdb, cfg.catalogCacheTTL)
		}
		source := facades.NewTMDBFacade(cfg.tmdbBaseURL, cfg.tmdbAPIKey, tmdbTimeout)
		a.catalog = services.NewCatalogService(source, cache)
	} else {
		logger.Log.Infow("TMDB_API_KEY not set, catalog routes disabled")
	}

	docs.SwaggerInfo.Host = fmt.Sprintf("%s:%s", cfg.appHost, cfg.appPort)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.appHost, cfg.appPort),
		Handler:           newRouter(a),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Log.Infof("HTTP server listening on %s:%s", cfg.appHost, cfg.appPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}
