package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/talentgate/account-service/internal/api"
	"github.com/talentgate/account-service/internal/api/handler"
	"github.com/talentgate/account-service/internal/core/service"
	"github.com/talentgate/account-service/internal/infrastructure/config"
	"github.com/talentgate/account-service/internal/infrastructure/db/mongo"
	"github.com/talentgate/account-service/internal/infrastructure/db/redis"
	"github.com/talentgate/account-service/internal/infrastructure/storage"
	"github.com/talentgate/account-service/pkg/logger"
)

const (
	appName         = "accountd"
	shutdownTimeout = 10 * time.Second
)

// Server owns the HTTP server and every connection it was built on.
type Server struct {
	httpServer *http.Server
	mongo      *mongodriver.Client
	redis      *goredis.Client
	blobs      *storage.Storage
	log        zerolog.Logger
}

// bootstrap opens the backing stores.
type bootstrap struct {
	connectMongo  func(ctx context.Context, cfg mongo.Config) (*mongodriver.Client, *mongodriver.Database, error)
	ensureIndexes func(ctx context.Context, db *mongodriver.Database) error
	connectRedis  func(ctx context.Context, cfg redis.Config) (*goredis.Client, error)
	openBlobs     func(ctx context.Context, cfg config.BlobConfig) (*storage.Storage, error)
}

var defaultBootstrap = bootstrap{
	connectMongo:  mongo.Connect,
	ensureIndexes: mongo.EnsureIndexes,
	connectRedis:  redis.Connect,
	openBlobs:     storage.New,
}

// New connects to MongoDB, Redis and the blob store, creates the indexes the
// workflow's uniqueness rules rely on and wires the services into the HTTP router.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Server, error) {
	return newServer(ctx, cfg, log, defaultBootstrap)
}

func newServer(ctx context.Context, cfg *config.Config, log zerolog.Logger, boot bootstrap) (*Server, error) {
	secret, fallback := cfg.SigningSecret()
	if fallback {
		log.Warn().
			Str("env", cfg.Env).
			Msg("JWT_SECRET is not set; signing session tokens with an insecure development secret")
	}

	mongoClient, db, err := boot.connectMongo(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.StoreTimeout,
		AppName:  appName,
	})
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := boot.ensureIndexes(ctx, db); err != nil {
		_ = mongoClient.Disconnect(context.Background())
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}

	redisClient, err := boot.connectRedis(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Timeout:  cfg.StoreTimeout,
	})
	if err != nil {
		_ = mongoClient.Disconnect(context.Background())
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	blobs, err := boot.openBlobs(ctx, cfg.Blob)
	if err != nil {
		_ = redisClient.Close()
		_ = mongoClient.Disconnect(context.Background())
		return nil, fmt.Errorf("blob store: %w", err)
	}

	users := mongo.NewUserRepository(db, cfg.StoreTimeout)
	requests := mongo.NewProfileRequestRepository(db, cfg.StoreTimeout)
	limiter := redis.NewLoginLimiter(redisClient, cfg.Login.MaxAttempts, cfg.Login.Lockout)

	tokens := service.NewTokenService(secret, cfg.TokenTTL)
	authService := service.NewAuthService(users, tokens, limiter, logger.Component("auth"))
	profileService := service.NewProfileService(
		users,
		requests,
		mongo.NewTransactor(mongoClient),
		blobs,
		cfg.MaxPictureBytes,
		logger.Component("profile"),
	)

	router := api.NewRouter(api.Deps{
		Auth:     authService,
		Profiles: profileService,
		Tokens:   tokens,
		Health: map[string]handler.Pinger{
			"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
			"redis":   func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		},
		Log: log,
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		mongo: mongoClient,
		redis: redisClient,
		blobs: blobs,
		log:   log,
	}, nil
}

// Start serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.closeStores()
		return err
	case <-ctx.Done():
		s.log.Info().Msg("shutting down")
		return s.Shutdown()
	}
}

// Shutdown drains in-flight requests and closes the store connections.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(ctx)
	s.closeStores()
	return err
}

func (s *Server) closeStores() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.blobs.Close(); err != nil {
		s.log.Warn().Err(err).Msg("close blob store")
	}
	if err := s.redis.Close(); err != nil {
		s.log.Warn().Err(err).Msg("close redis")
	}
	if err := s.mongo.Disconnect(ctx); err != nil {
		s.log.Warn().Err(err).Msg("disconnect mongo")
	}
}
