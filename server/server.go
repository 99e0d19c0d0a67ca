package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"sync"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/customeros/mailadmin/api"
	"github.com/customeros/mailadmin/api/handlers"
	"github.com/customeros/mailadmin/config"
	"github.com/customeros/mailadmin/internal/cron"
	"github.com/customeros/mailadmin/internal/logger"
	"github.com/customeros/mailadmin/internal/tracing"
	"github.com/customeros/mailadmin/services"
)

type Server struct {
	config       *config.Config
	log          logger.Logger
	httpServer   *http.Server
	router       *gin.Engine
	services     *services.Services
	cron         *cron.CronManager
	tracerCloser io.Closer

	// fatal receives errors that must take the whole process down
	fatal        chan error
	shutdownOnce sync.Once
}

func NewServer(cfg *config.Config) (*Server, error) {
	// Initialize logger
	appLogger := logger.NewAppLogger(cfg.Logger)
	appLogger.InitLogger()

	// Initialize tracing
	tracer, closer, err := tracing.NewJaegerTracer(cfg.Tracing, appLogger)
	if err != nil {
		return nil, errors.Wrap(err, "could not initialize jaeger tracer")
	}
	opentracing.SetGlobalTracer(tracer)

	// Initialize services
	svcs, err := services.InitServices(cfg, appLogger)
	if err != nil {
		closer.Close()
		return nil, err
	}

	cronManager := cron.NewCronManager(cfg.CronConfig, appLogger, svcs.ListingCache, svcs.IMAPService)

	// Initialize Gin
	gin.SetMode(cfg.AppConfig.GinMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(gin.DefaultWriter, "/api/health"))

	return &Server{
		config:       cfg,
		log:          appLogger,
		router:       router,
		services:     svcs,
		cron:         cronManager,
		tracerCloser: closer,
		fatal:        make(chan error, 1),
		httpServer: &http.Server{
			Addr:    ":" + cfg.AppConfig.APIPort,
			Handler: router,
		},
	}, nil
}

func (s *Server) Initialize() error {
	apiHandlers := handlers.InitHandlers(s.config, s.services, s.log)
	api.RegisterRoutes(s.router, apiHandlers, s.config.AppConfig)

	return s.cron.StartCron()
}

func (s *Server) recoverWithJaeger(name string) {
	if r := recover(); r != nil {
		// Create a new span for the panic
		span := opentracing.GlobalTracer().StartSpan(
			fmt.Sprintf("panic.%s", name),
		)
		defer span.Finish()

		// Mark span as failed
		ext.Error.Set(span, true)

		// Log panic details
		span.LogKV(
			"event", "panic",
			"process", name,
			"error", fmt.Sprintf("%v", r),
			"stack", string(debug.Stack()),
		)

		s.log.Error("panic recovered", zap.String("process", name), zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
		s.signalFatal(errors.Errorf("panic in %s: %v", name, r))
	}
}

func (s *Server) wrapGoroutine(name string, fn func()) {
	defer s.recoverWithJaeger(name)
	fn()
}

func (s *Server) signalFatal(err error) {
	select {
	case s.fatal <- err:
	default:
	}
}

func (s *Server) Run() error {
	if err := s.Initialize(); err != nil {
		s.shutdown()
		return err
	}

	// Start HTTP server in a goroutine with panic recovery
	go s.wrapGoroutine("http_server", func() {
		s.log.Infof("Starting HTTP server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("HTTP server error", zap.Error(err))
			s.signalFatal(err)
		}
	})
	s.log.Info("Mailadmin is now running. Press Ctrl+C to exit.")

	return s.waitForShutdown()
}

func (s *Server) waitForShutdown() error {
	// Set up signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	var runErr error
	select {
	case sig := <-stop:
		s.log.Info("Shutting down", zap.String("signal", sig.String()))
	case runErr = <-s.fatal:
		s.log.Error("Shutting down after fatal error", zap.Error(runErr))
	}

	s.shutdown()
	return runErr
}

// shutdown stops accepting requests, then releases cron jobs, pooled
// connections, the publisher and the tracer, in that order.
func (s *Server) shutdown() {
	s.shutdownOnce.Do(func() {
		defer s.recoverWithJaeger("shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.AppConfig.ShutdownWait)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.log.Error("HTTP server shutdown error", zap.Error(err))
		} else {
			s.log.Info("HTTP server shut down successfully")
		}

		s.cron.Stop()

		if err := s.services.Close(); err != nil {
			s.log.Error("Error closing services", zap.Error(err))
		}

		if s.tracerCloser != nil {
			if err := s.tracerCloser.Close(); err != nil {
				s.log.Error("Error closing tracer", zap.Error(err))
			}
		}
		_ = s.log.Sync()
	})
}
