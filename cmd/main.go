package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/tinyavocado/avocado-server/internal/config"
	"github.com/tinyavocado/avocado-server/internal/handlers"
	"github.com/tinyavocado/avocado-server/internal/logger"
	"github.com/tinyavocado/avocado-server/internal/middleware"
	"github.com/tinyavocado/avocado-server/internal/repository"
	"github.com/tinyavocado/avocado-server/internal/repository/memory"
	redis_repo "github.com/tinyavocado/avocado-server/internal/repository/redis"
	sqlite_repo "github.com/tinyavocado/avocado-server/internal/repository/sqlite"
	"github.com/tinyavocado/avocado-server/internal/router"
	"github.com/tinyavocado/avocado-server/internal/server"
	"github.com/tinyavocado/avocado-server/internal/service"
)

const shutdownTimeout = 10 * time.Second

type stores struct {
	users    repository.UserRepository
	secrets  repository.SecretRepository
	sessions repository.SessionRepository
	closers  []io.Closer
}

func (s *stores) Close() {
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close store")
		}
	}
}

func newRedisClient(ctx context.Context, cfg config.RedisSettings, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis db %d: %w", db, err)
	}
	return client, nil
}

// openStores builds the repositories selected by DOCUMENT_STORE and SESSION_STORE.
// Users and secrets never share a database.
func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	s := &stores{}
	fail := func(err error) (*stores, error) {
		s.Close()
		return nil, err
	}

	switch cfg.DocumentStore {
	case "redis":
		usersClient, err := newRedisClient(ctx, cfg.RedisSettings, cfg.RedisSettings.UsersDB)
		if err != nil {
			return fail(err)
		}
		s.closers = append(s.closers, usersClient)
		secretsClient, err := newRedisClient(ctx, cfg.RedisSettings, cfg.RedisSettings.SecretsDB)
		if err != nil {
			return fail(err)
		}
		s.closers = append(s.closers, secretsClient)
		s.users = redis_repo.NewRedisUserRepository(usersClient)
		s.secrets = redis_repo.NewRedisSecretRepository(secretsClient)
	case "sqlite":
		usersDB, err := sqlite_repo.OpenUsersDB(ctx, cfg.SQLite.UsersDSN)
		if err != nil {
			return fail(err)
		}
		s.closers = append(s.closers, usersDB)
		secretsDB, err := sqlite_repo.OpenSecretsDB(ctx, cfg.SQLite.SecretsDSN)
		if err != nil {
			return fail(err)
		}
		s.closers = append(s.closers, secretsDB)
		s.users = sqlite_repo.NewSQLiteUserRepository(usersDB)
		s.secrets = sqlite_repo.NewSQLiteSecretRepository(secretsDB)
	default:
		log.Warn().Msg("Using in-memory document store; users are lost on restart")
		s.users = memory.NewMemoryUserRepository()
		s.secrets = memory.NewMemorySecretRepository()
	}

	switch cfg.SessionStore {
	case "redis":
		sessionsClient, err := newRedisClient(ctx, cfg.RedisSettings, cfg.RedisSettings.SessionsDB)
		if err != nil {
			return fail(err)
		}
		s.closers = append(s.closers, sessionsClient)
		s.sessions = redis_repo.NewRedisSessionRepository(sessionsClient)
	default:
		sessionRepo := memory.NewMemorySessionRepository(time.Minute)
		s.closers = append(s.closers, closerFunc(func() error { sessionRepo.StopCleanup(); return nil }))
		s.sessions = sessionRepo
	}

	return s, nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(cfg.LogLevel, cfg.AppEnv)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	st, err := openStores(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Str("documentStore", cfg.DocumentStore).Str("sessionStore", cfg.SessionStore).Msg("Failed to open stores")
	}
	defer st.Close()

	tokenService := service.NewTokenService(cfg.JWTSecret)
	sessionService := service.NewSessionService(st.sessions, tokenService, cfg.SessionConfig.Duration)
	authService := service.NewAuthService(
		st.users,
		service.NewSecretService(st.secrets, cfg.SecretLength),
		service.NewArgon2Hasher(cfg.Argon2),
		cfg.RequestTimeout,
	)

	app := server.New(cfg)
	router.SetupAuthRoutes(app,
		handlers.NewAuthHandler(authService, sessionService, cfg.SessionConfig),
		handlers.NewSessionHandler(sessionService, cfg.SessionConfig),
		middleware.SessionAuth(cfg.SessionConfig.CookieName, tokenService.Secret(), sessionService),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		log.Info().Str("port", cfg.Port).Str("documentStore", cfg.DocumentStore).Str("sessionStore", cfg.SessionStore).Msg("Server starting")
		if err := app.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := app.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped gracefully.")
}
