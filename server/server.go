// Package server wires config, logger, database, repositories, the
// canonicalization pipeline, the scheduler, the outbound sender, the
// search engine and the HTTP router together, grounded on the teacher's
// server.Server/NewServer/Run/waitForShutdown shape — minus the Jaeger
// tracer, the RabbitMQ event bus and the GraphQL surface, none of which
// has a place in this spec (SPEC_FULL.md: "Deliberately NOT wired").
package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/customeros/mailserver/api/rest"
	"github.com/customeros/mailserver/api/rest/handlers"
	"github.com/customeros/mailserver/internal/config"
	"github.com/customeros/mailserver/internal/logger"
	"github.com/customeros/mailserver/internal/repository"
	"github.com/customeros/mailserver/internal/textextract"
	"github.com/customeros/mailserver/services/canonicalize"
	"github.com/customeros/mailserver/services/outbound"
	"github.com/customeros/mailserver/services/scheduler"
	"github.com/customeros/mailserver/services/search"
)

// Server owns the process's long-lived collaborators and the HTTP listener.
type Server struct {
	cfg        *config.Config
	log        logger.Logger
	httpServer *http.Server
	router     *gin.Engine
	scheduler  *scheduler.Scheduler
}

// New constructs every collaborator against an already-open database
// connection, the way the teacher's NewServer takes a *gorm.DB rather than
// opening one itself.
func New(cfg *config.Config, db *gorm.DB) *Server {
	log := logger.New(logger.Config{Level: cfg.Logger.Level, File: cfg.Logger.File})

	repos := repository.NewRepositories(db)
	extractor := textextract.New(log)
	pipeline := canonicalize.New(log, repos.Messages, extractor)
	sched := scheduler.New(cfg.Scheduler, cfg.Extract, log, repos.Accounts, pipeline)
	sender := outbound.New(log)
	searchEngine := search.New(db, repos.Accounts)

	h := handlers.New(log, repos, sched, sender, searchEngine)

	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()
	rest.RegisterRoutes(router, h)

	return &Server{
		cfg:       cfg,
		log:       log,
		router:    router,
		scheduler: sched,
		httpServer: &http.Server{
			Addr:    cfg.App.APIHost + ":" + cfg.App.APIPort,
			Handler: router,
		},
	}
}

// Run starts the scheduler and the HTTP listener and blocks until an
// interrupt or SIGTERM triggers a graceful shutdown (spec §4.1, §6).
func (s *Server) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.log.Infof("starting account scheduler...")
	s.wrapGoroutine("scheduler", func() {
		s.scheduler.Start(ctx)
	})

	go s.wrapGoroutine("http_server", func() {
		s.log.Infof("starting HTTP server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Errorf("http server error: %v", err)
		}
	})

	return s.waitForShutdown()
}

func (s *Server) recover(name string) {
	if r := recover(); r != nil {
		s.log.Errorf("panic in %s: %v\n%s", name, r, debug.Stack())
	}
}

func (s *Server) wrapGoroutine(name string, fn func()) {
	defer s.recover(name)
	fn()
}

func (s *Server) waitForShutdown() error {
	defer s.recover("shutdown")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	s.log.Infof("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.log.Errorf("http server shutdown error: %v", err)
	} else {
		s.log.Infof("http server shut down cleanly")
	}

	s.scheduler.Stop()
	s.log.Infof("scheduler stopped")

	return nil
}
