// Package server is the web front end: an upload page that converts a
// submission workbook and offers the generated report for download.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/browser"

	"github.com/Abyblackmouth/XmlCreator40/internal/config"
	"github.com/Abyblackmouth/XmlCreator40/internal/converter"
	"github.com/Abyblackmouth/XmlCreator40/internal/logging"
	"github.com/Abyblackmouth/XmlCreator40/pkg/utils"
)

// ErrAlreadyRunning is returned by Run when the configured address is taken.
var ErrAlreadyRunning = errors.New("another instance is already running")

const shutdownTimeout = 10 * time.Second

// Converter converts one uploaded workbook.
type Converter interface {
	Convert(inputPath, outputDir string) converter.Result
}

// Server owns the router, the listener and the HTTP server for one run.
type Server struct {
	cfg       *config.Config
	logger    logging.Logger
	converter Converter
	pages     *template.Template
	router    chi.Router

	openBrowser func(url string) error

	stop     chan struct{}
	stopOnce sync.Once
}

// Option configures a Server.
type Option func(*Server)

// WithBrowserOpener replaces the function used to open the upload page.
func WithBrowserOpener(open func(url string) error) Option {
	return func(s *Server) {
		if open != nil {
			s.openBrowser = open
		}
	}
}

// New builds a Server. conv performs the conversions.
func New(cfg *config.Config, logger logging.Logger, conv Converter, opts ...Option) *Server {
	s := &Server{
		cfg:         cfg,
		logger:      logger,
		converter:   conv,
		pages:       pages,
		openBrowser: browser.OpenURL,
		stop:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.requestTimeout()))

	r.Get("/", s.handleIndex)
	r.Post("/", s.handleUpload)
	r.Get("/download/{filename}", s.handleDownload)
	r.Get("/download-template", s.handleTemplate)
	r.Post("/shutdown", s.handleShutdown)
	r.Get("/health", s.handleHealth)

	return r
}

func (s *Server) requestTimeout() time.Duration {
	if s.cfg.Server.WriteTimeoutSeconds > 0 {
		return time.Duration(s.cfg.Server.WriteTimeoutSeconds) * time.Second
	}
	return 60 * time.Second
}

// Run serves until ctx is cancelled or a shutdown is requested over HTTP,
// then shuts down gracefully. It fails immediately with ErrAlreadyRunning
// when the configured address is in use.
func (s *Server) Run(ctx context.Context) error {
	addr := s.cfg.Address()
	log := s.logger.WithField(logging.FieldAddress, addr)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("%w on %s: %v", ErrAlreadyRunning, addr, err)
	}

	fm := utils.NewFileManager("", s.cfg.Paths.OutputDir, s.cfg.Paths.UploadDir, "")
	if err := fm.EnsureDirectories(); err != nil {
		ln.Close()
		return err
	}
	s.cleanUploads()

	httpServer := &http.Server{
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.Serve(ln)
	}()

	url := "http://" + ln.Addr().String() + "/"
	log.Info("Server started", logging.F("url", url))

	if s.cfg.Server.OpenBrowser {
		if err := s.openBrowser(url); err != nil {
			log.WithError(err).Warn("Could not open browser")
		}
	}

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case <-s.stop:
		log.Info("Shutdown requested")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Info("Server stopped")
	return nil
}

// requestStop asks Run to shut down. Safe to call more than once.
func (s *Server) requestStop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Server) cleanUploads() {
	hours := s.cfg.Retention.UploadMaxAgeHours
	if hours <= 0 {
		return
	}
	removed, err := utils.CleanOldFiles(s.cfg.Paths.UploadDir, time.Duration(hours)*time.Hour)
	if err != nil {
		s.logger.WithError(err).Warn("Upload cleanup failed")
		return
	}
	if removed > 0 {
		s.logger.Info("Removed old uploads", logging.F(logging.FieldCount, removed))
	}
}
