package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/Leganyst/booking-core/internal/config"
	"github.com/Leganyst/booking-core/internal/db"
	"github.com/Leganyst/booking-core/internal/events"
	"github.com/Leganyst/booking-core/internal/graphstore"
	"github.com/Leganyst/booking-core/internal/grpcserver"
	"github.com/Leganyst/booking-core/internal/handler"
	"github.com/Leganyst/booking-core/internal/logger"
	"github.com/Leganyst/booking-core/internal/mcptools"
	"github.com/Leganyst/booking-core/internal/middleware"
	"github.com/Leganyst/booking-core/internal/model"
	"github.com/Leganyst/booking-core/internal/obs"
	"github.com/Leganyst/booking-core/internal/repository"
	"github.com/Leganyst/booking-core/internal/router"
	"github.com/Leganyst/booking-core/internal/service"
)

type App struct {
	cfg *config.Config
	log *logrus.Logger

	repos     repository.Set
	publisher events.Publisher
	core      *service.Core
	tools     *mcptools.Tools

	httpServer    *http.Server
	health        *grpcserver.HealthServer
	limiter       *middleware.RateLimiter
	traceShutdown func(context.Context) error
}

// New поднимает хранилище, брокер, трассировку и сервисы.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{
		cfg: cfg,
		log: logger.New(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.IsDev()),
	}

	shutdown, err := obs.InitTracer(ctx, cfg.OTel.Endpoint, cfg.OTel.ServiceName, cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.traceShutdown = shutdown

	if err := a.initStore(ctx); err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	if err := a.initPublisher(); err != nil {
		return nil, fmt.Errorf("init publisher: %w", err)
	}

	a.core = service.NewCore(a.repos, service.PolicyFromConfig(cfg.Booking), a.log,
		service.WithPublisher(a.publisher),
	)
	a.tools = mcptools.New(a.core.Bookings, a.core.Availability, a.core.Stats, a.log)

	return a, nil
}

func (a *App) initStore(ctx context.Context) error {
	if a.cfg.DB.Driver == config.DriverNeo4j {
		store, err := graphstore.Open(ctx, a.cfg.Neo4j)
		if err != nil {
			return err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close(ctx)
			return fmt.Errorf("neo4j schema: %w", err)
		}
		a.repos = store.Set()
		a.log.WithFields(logrus.Fields{
			"uri":      a.cfg.Neo4j.URI,
			"database": a.cfg.Neo4j.Database,
		}).Info("neo4j connected")
		return nil
	}

	gormDB, err := db.NewGormDB(a.cfg.DB, a.log)
	if err != nil {
		return err
	}
	if err := model.AutoMigrate(gormDB); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	a.repos = repository.NewGormSet(gormDB)
	a.log.WithFields(logrus.Fields{
		"driver":   a.cfg.DB.Driver,
		"host":     a.cfg.DB.Host,
		"database": a.cfg.DB.Name,
	}).Info("database connected")
	return nil
}

func (a *App) initPublisher() error {
	if a.cfg.AMQP.URL == "" {
		a.publisher = events.NewLogPublisher(a.log)
		return nil
	}
	p, err := events.NewAMQPPublisher(a.cfg.AMQP.URL, a.cfg.AMQP.Exchange)
	if err != nil {
		return err
	}
	a.publisher = p
	a.log.WithField("exchange", a.cfg.AMQP.Exchange).Info("rabbitmq publisher ready")
	return nil
}

// Engine собирает gin-движок со всеми маршрутами, включая /mcp.
func (a *App) Engine() *gin.Engine {
	mode := gin.ReleaseMode
	if a.cfg.IsDev() {
		mode = gin.DebugMode
	}

	a.limiter = middleware.NewRateLimiter(a.cfg.HTTP.RateLimitRPS, a.cfg.HTTP.RateLimitBurst)
	h := handler.NewHandler(a.core.Bookings, a.core.Availability, a.core.Hours, a.core.Stats, a.log)

	return router.InitRouter(
		router.Options{
			Mode:    mode,
			APIKeys: a.cfg.API.Keys,
			MCP:     server.NewStreamableHTTPServer(a.tools.NewServer()),
		},
		h,
		middleware.RequestID(),
		middleware.RequestLogger(a.log),
		middleware.Recovery(a.log),
		middleware.CORS(a.cfg.HTTP.CORSOrigins),
		middleware.Identify(a.cfg.API.Keys),
		a.limiter.Middleware(),
	)
}

// Run обслуживает REST, /mcp и gRPC health до SIGINT/SIGTERM.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.httpServer = &http.Server{
		Addr:         a.cfg.HTTP.Addr,
		Handler:      a.Engine(),
		ReadTimeout:  a.cfg.HTTP.ReadTimeout,
		WriteTimeout: a.cfg.HTTP.WriteTimeout,
		IdleTimeout:  a.cfg.HTTP.IdleTimeout,
	}

	errCh := make(chan error, 2)
	go func() {
		a.log.WithField("addr", a.httpServer.Addr).Info("HTTP server starting")
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	if a.cfg.GRPC.Addr != "" {
		a.health = grpcserver.NewHealthServer(a.repos.Pinger, a.cfg.GRPC.HealthInterval, a.log)
		go a.health.Watch(ctx)
		go func() {
			if err := a.health.Serve(a.cfg.GRPC.Addr); err != nil {
				errCh <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	go a.cleanupLimiter(ctx)

	select {
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.shutdown()
		return err
	}

	return a.shutdown()
}

// RunStdio обслуживает MCP по stdin/stdout; логи уходят в stderr.
func (a *App) RunStdio() error {
	return server.ServeStdio(a.tools.NewServer())
}

func (a *App) cleanupLimiter(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.limiter.Cleanup(time.Hour)
		}
	}
}

func (a *App) shutdown() error {
	a.log.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.WriteTimeout)
	defer cancel()

	var errs []error
	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("http server shutdown: %w", err))
		}
		a.log.Info("HTTP server stopped")
	}
	if a.health != nil {
		a.health.Stop()
	}

	errs = append(errs, a.Close(shutdownCtx))
	a.log.Info("app stopped")
	return errors.Join(errs...)
}

// Close освобождает брокер, хранилище и экспорт трассировки.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}
	if a.repos.Close != nil {
		if err := a.repos.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	if a.traceShutdown != nil {
		if err := a.traceShutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}
