package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pomotrack/apiserver/config"
	"github.com/pomotrack/apiserver/internal/cache"
	"github.com/pomotrack/apiserver/internal/db"
	"github.com/pomotrack/apiserver/internal/handlers"
	"github.com/pomotrack/apiserver/internal/mq"
	"github.com/pomotrack/apiserver/internal/services"
	"github.com/pomotrack/apiserver/internal/session"
	"github.com/pomotrack/apiserver/internal/store"
	"github.com/pomotrack/apiserver/internal/store/mongostore"
	"github.com/rs/cors"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const requestTimeout = 60 * time.Second

// Server wraps the HTTP server, router and the resources it owns.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	logger     *slog.Logger
	closers    []closer
}

type closer struct {
	name  string
	close func(ctx context.Context) error
}

// repositories is the storage backend selected by the database URL.
type repositories struct {
	users   services.UserRepository
	tasks   services.TaskRepository
	records services.RecordRepository
	ping    handlers.HealthCheck
}

// New connects every configured dependency and builds the router. Resources
// opened before a failure are released.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (_ *Server, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(cfg.Session.Secret) == "" {
		return nil, errors.New("SESSION_SECRET is required")
	}
	loc, err := time.LoadLocation(cfg.ReportTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid report timezone %q: %w", cfg.ReportTimezone, err)
	}

	s := &Server{logger: logger}
	defer func() {
		if err != nil {
			s.closeResources(context.Background())
		}
	}()

	repos, err := s.openRepositories(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var revoker session.Revoker = session.NopRevoker{}
	if strings.TrimSpace(cfg.Redis.URL) != "" {
		client, err := cache.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, err
		}
		s.addCloser("redis", func(context.Context) error { return client.Close() })
		revoker = cache.NewSessionRevocationStore(client)
		logger.Info("session revocation enabled", "operation", "server_init", "component", "redis")
	}

	var publisher services.CompletionPublisher
	if strings.TrimSpace(cfg.MQ.Backend) != "" {
		queue, err := mq.Connect(ctx, cfg.MQ)
		if err != nil {
			return nil, err
		}
		s.addCloser("mq", func(context.Context) error { return queue.Close() })
		publisher = queue
		logger.Info("completion events enabled", "operation", "server_init", "component", cfg.MQ.Backend, "channel", cfg.MQ.Channel)
	}

	sessions, err := session.NewManager(session.Options{
		Secret:  cfg.Session.Secret,
		TTL:     cfg.Session.TTL,
		Secure:  cfg.IsProduction(),
		Revoker: revoker,
	})
	if err != nil {
		return nil, err
	}

	userService := services.NewUserService(repos.users, cfg.BcryptCost)
	taskService := services.NewTaskService(repos.tasks)
	recordService := services.NewRecordService(repos.records, publisher, loc, logger)
	requireSession := handlers.RequireSession(sessions)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		handlers.RequestLogger,
		handlers.Recover,
		cors.New(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type", "X-Request-Id"},
			AllowCredentials: true,
		}).Handler,
		middleware.Timeout(requestTimeout),
	)
	router.NotFound(handlers.NotFound)
	router.MethodNotAllowed(handlers.NotFound)

	handlers.HealthRouter(router, repos.ping)
	handlers.AuthRouter(router, userService, sessions, requireSession)
	handlers.TaskRouter(router, taskService, requireSession)
	handlers.RecordRouter(router, recordService, requireSession)

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	s.router = router
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

func (s *Server) openRepositories(ctx context.Context, cfg config.Config) (repositories, error) {
	backend, err := db.Backend(cfg.Database)
	if err != nil {
		return repositories{}, err
	}

	switch backend {
	case db.BackendMongo:
		client, err := mongostore.Open(ctx, cfg.Database.URL)
		if err != nil {
			return repositories{}, err
		}
		s.addCloser("mongo", client.Disconnect)

		name, err := mongostore.DatabaseName(cfg.Database.URL, cfg.Database.DBName)
		if err != nil {
			return repositories{}, err
		}
		database := client.Database(name)
		if err := mongostore.EnsureIndexes(ctx, database); err != nil {
			return repositories{}, err
		}
		s.logger.Info("storage ready", "operation", "server_init", "component", "mongodb", "database", name)

		return repositories{
			users:   mongostore.NewUserRepository(database),
			tasks:   mongostore.NewTaskRepository(database),
			records: mongostore.NewRecordRepository(database),
			ping: func(ctx context.Context) error {
				return client.Ping(ctx, readpref.Primary())
			},
		}, nil

	default:
		if cfg.AutoMigrate {
			if err := db.MigrateUp(db.PostgresURL(cfg.Database)); err != nil {
				return repositories{}, err
			}
		}
		conn, err := db.Open(ctx, cfg.Database)
		if err != nil {
			return repositories{}, err
		}
		s.addCloser("postgres", func(context.Context) error { return conn.Close() })
		s.logger.Info("storage ready", "operation", "server_init", "component", "postgres", "auto_migrate", cfg.AutoMigrate)

		return repositories{
			users:   store.NewUserRepository(conn),
			tasks:   store.NewTaskRepository(conn),
			records: store.NewRecordRepository(conn),
			ping:    conn.PingContext,
		}, nil
	}
}

func (s *Server) addCloser(name string, fn func(ctx context.Context) error) {
	s.closers = append(s.closers, closer{name: name, close: fn})
}

// closeResources releases resources in reverse order of acquisition.
func (s *Server) closeResources(ctx context.Context) {
	for i := len(s.closers) - 1; i >= 0; i-- {
		c := s.closers[i]
		if err := c.close(ctx); err != nil {
			s.logger.Warn("close failed", "operation", "server_shutdown", "component", c.name, "error", err.Error())
		}
	}
	s.closers = nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "operation", "server_start", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones until ctx is
// done, then closes the database, cache and broker connections.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.closeResources(ctx)
	return err
}
