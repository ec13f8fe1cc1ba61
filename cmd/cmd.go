package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"thisisjapan-backend/internal/cache"
	"thisisjapan-backend/internal/config"
	"thisisjapan-backend/internal/handlers"
	"thisisjapan-backend/internal/middleware"
	"thisisjapan-backend/internal/ranking"
	"thisisjapan-backend/internal/repository"
	"thisisjapan-backend/internal/repository/memory"
	"thisisjapan-backend/internal/repository/postgres"
	"thisisjapan-backend/internal/services"
	"thisisjapan-backend/internal/storage"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	defaultConfigPath = "config.yaml"
	limiterIdleTTL    = 10 * time.Minute
)

func Run() {
	configPath := defaultConfigPath
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		configPath = path
	}

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Entity store
	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("Failed to open store")
	}
	defer store.Close()
	log.Info().Str("driver", cfg.Storage.Driver).Msg("Store ready")

	// Ranking cache
	var rankingCache ranking.Cache
	if cfg.Redis.Addr != "" {
		client, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to redis")
		}
		defer client.Close()
		rankingCache = cache.NewRankingCache(client, cfg.Redis.RankingTTL)
		log.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Redis.RankingTTL).Msg("Ranking cache enabled")
	}

	// Image store
	var images services.ImageStore
	if cfg.AWS.S3Bucket != "" {
		s3Store, err := storage.NewS3Store(ctx, storage.S3Config{
			Region:    cfg.AWS.Region,
			Bucket:    cfg.AWS.S3Bucket,
			AccessKey: cfg.AWS.AccessKey,
			SecretKey: cfg.AWS.SecretKey,
			Endpoint:  cfg.AWS.Endpoint,
			PublicURL: cfg.AWS.PublicURL,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create image store")
		}
		images = s3Store
		log.Info().Str("bucket", cfg.AWS.S3Bucket).Msg("Image uploads enabled")
	}

	// Initialize services
	engine := ranking.NewEngine(store.Photos(), store.Words(), rankingCache)
	wsHub := services.NewWSHub()
	userService := services.NewUserService(store.Users(), cfg.JWT.Secret, cfg.JWT.TTL)
	photoService := services.NewPhotoService(store.Photos(), engine, images)
	wordService := services.NewWordService(store.Words(), engine)
	experienceService := services.NewExperienceService(store.Experiences())
	likeService := services.NewLikeService(store.Photos(), store.Words(), engine, wsHub)

	if cfg.Seed.Enabled {
		if err := services.NewSeeder(store).Seed(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed sample data")
		}
	}

	likeLimiter := middleware.NewRateLimiter(cfg.RateLimit.LikesPerSecond, cfg.RateLimit.Burst)
	likeLimiter.StartCleanup(ctx, time.Minute, limiterIdleTTL)

	router := handlers.NewRouter(handlers.Deps{
		Users:       userService,
		Photos:      photoService,
		Words:       wordService,
		Experiences: experienceService,
		Likes:       likeService,
		Hub:         wsHub,
		Store:       store,
		Auth:        middleware.NewAuth(userService, cfg.Auth.CookieName),
		LikeLimiter: likeLimiter,
		Cookie: handlers.CookieConfig{
			Name:   cfg.Auth.CookieName,
			Secure: cfg.Auth.CookieSecure,
			TTL:    cfg.JWT.TTL,
		},
		AllowedOrigin:  cfg.Server.AllowedOrigin,
		RequestTimeout: cfg.Server.RequestTimeout,
		AccessLog:      true,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// hijacked connections are not tracked by Shutdown
	wsHub.Close()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// openStore connects the configured entity store
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		store, err := postgres.Connect(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, err
		}
		if cfg.Database.Migrate {
			if err := store.Migrate(ctx); err != nil {
				store.Close()
				return nil, err
			}
		}
		return store, nil
	case config.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
