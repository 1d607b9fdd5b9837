package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/docdrop-io/apiserver/config"
	"github.com/docdrop-io/apiserver/internal/db"
	"github.com/docdrop-io/apiserver/internal/handlers"
	"github.com/docdrop-io/apiserver/internal/mq"
	"github.com/docdrop-io/apiserver/internal/services"
	"github.com/docdrop-io/apiserver/internal/storage"
	"github.com/docdrop-io/apiserver/internal/store"
	"github.com/docdrop-io/apiserver/internal/token"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	broker     *mq.MQ
}

// New constructs a Server with its stores, storage backend, and routes
// wired from config.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	secret := strings.TrimSpace(cfg.Auth.JWTSecret)
	if secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	users, files, dbConn, err := newRepositories(ctx, cfg)
	if err != nil {
		return nil, err
	}

	objects, err := newObjectStorage(ctx, cfg.Storage)
	if err != nil {
		closeDB(dbConn)
		return nil, err
	}
	if err := objects.EnsureBucket(ctx); err != nil {
		closeDB(dbConn)
		return nil, err
	}

	broker, events, err := newEvents(ctx, cfg.MQ)
	if err != nil {
		closeDB(dbConn)
		return nil, err
	}

	tokens := token.NewService(secret)
	authService := services.NewAuthService(users, tokens, events)
	fileService := services.NewFileService(files, users, objects, tokens, events)

	if cfg.Auth.OpsEmail != "" && cfg.Auth.OpsPassword != "" {
		if err := authService.EnsureOpsUser(ctx, cfg.Auth.OpsEmail, cfg.Auth.OpsName, cfg.Auth.OpsPassword); err != nil {
			closeDB(dbConn)
			return nil, err
		}
	}

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	router.Get("/", handlers.Root)
	router.Get("/healthz", handlers.Healthz)

	authMiddleware := handlers.RequireAuth(authService)
	handlers.AuthRouter(router, authService)
	handlers.FileRouter(router, fileService, authMiddleware)

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		broker:     broker,
	}, nil
}

// Router exposes the chi router for route registration and tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.broker != nil {
		_ = s.broker.Close()
	}
	return s.httpServer.Close()
}

// newRepositories selects the user/file repositories from config. The
// memory backend serves dev mode and tests; postgres is the default.
func newRepositories(ctx context.Context, cfg config.Config) (services.UserRepository, services.FileRepository, *sql.DB, error) {
	if cfg.Database.Backend == config.DatabaseBackendMemory {
		return store.NewMemoryUserRepository(), store.NewMemoryFileRepository(), nil, nil
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	return store.NewUserRepository(dbConn), store.NewFileRepository(dbConn), dbConn, nil
}

func newObjectStorage(ctx context.Context, cfg config.StorageConfig) (*storage.Storage, error) {
	switch cfg.Backend {
	case config.StorageBackendMinio:
		backend, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, err
		}
		return storage.NewStorage(backend), nil
	case config.StorageBackendGCS:
		backend, err := storage.NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, err
		}
		return storage.NewStorage(backend), nil
	default:
		backend, err := storage.NewLocalClient(cfg.LocalDir)
		if err != nil {
			return nil, err
		}
		return storage.NewStorage(backend), nil
	}
}

// newEvents selects the event broker from config. With no broker
// configured the services fall back to no-op events.
func newEvents(ctx context.Context, cfg config.MQConfig) (*mq.MQ, services.Events, error) {
	var backend mq.Backend
	var err error

	switch cfg.Backend {
	case config.MQBackendRabbitMQ:
		backend, err = mq.NewRabbitMQClient(cfg.RabbitMQ)
	case config.MQBackendPubSub:
		backend, err = mq.NewPubSubClient(ctx, cfg.PubSub)
	default:
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	broker := mq.New(backend)
	return broker, mq.NewPublisher(broker), nil
}

func closeDB(dbConn *sql.DB) {
	if dbConn != nil {
		_ = dbConn.Close()
	}
}
