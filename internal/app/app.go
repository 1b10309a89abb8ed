package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/ThomasTsao0704/stock-analysis-app/internal/config"
	"github.com/ThomasTsao0704/stock-analysis-app/internal/fetch"
	"github.com/ThomasTsao0704/stock-analysis-app/internal/infrastructure"
	custommw "github.com/ThomasTsao0704/stock-analysis-app/internal/middleware"
	"github.com/ThomasTsao0704/stock-analysis-app/internal/notes"
	"github.com/ThomasTsao0704/stock-analysis-app/internal/recorder"
	"github.com/ThomasTsao0704/stock-analysis-app/internal/services"
	handlers "github.com/ThomasTsao0704/stock-analysis-app/internal/transport/http"
	"github.com/ThomasTsao0704/stock-analysis-app/internal/twse"
)

// compareMonths is the trailing span of the close comparison.
const compareMonths = 3

// Application is the assembled server: configuration, services, router.
type Application struct {
	Config *config.Config
	Router *chi.Mux
	Server *http.Server
	Logger *slog.Logger

	ScreenService  *services.ScreenService
	NoteService    *services.NoteService
	CompareService *services.CompareService

	rec recorder.Recorder
}

// NewApplication loads configuration from configPath (empty means env
// only) and wires every component.
func NewApplication(configPath string) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logger, err := infrastructure.NewLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	if err := cfg.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("prepare data directories: %w", err)
	}

	fetcher := fetch.NewFetcher(cfg.Fetch.BaseURL, cfg.Paths.CacheDir, logger,
		fetch.WithTTL(cfg.Fetch.CacheTTL),
		fetch.WithHTTPClient(&http.Client{Timeout: cfg.Fetch.Timeout}))

	noteStore, err := notes.NewStore(cfg.Paths.NotesFile, logger)
	if err != nil {
		return nil, fmt.Errorf("open note store: %w", err)
	}

	var rec recorder.Recorder
	rec, err = recorder.NewSQLiteRecorder(cfg.Paths.HistoryDB)
	if err != nil {
		logger.Warn("run history disabled, sqlite open failed",
			slog.String("path", cfg.Paths.HistoryDB),
			slog.String("error", err.Error()))
		rec = recorder.Noop{}
	}

	noteService := services.NewNoteService(noteStore, cfg.Fetch.ResultTTL, logger)
	screenService := services.NewScreenService(fetcher, noteService, rec,
		cfg.Screen, cfg.Fetch.ResultTTL, logger)
	compareService := services.NewCompareService(
		twse.NewClient(cfg.Fetch.TWSEBaseURL, logger), compareMonths, logger)

	app := &Application{
		Config:         cfg,
		Logger:         logger,
		ScreenService:  screenService,
		NoteService:    noteService,
		CompareService: compareService,
		rec:            rec,
	}
	app.Router = app.buildRouter()
	app.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return app, nil
}

func (a *Application) buildRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommw.StructuredLogger(a.Logger))
	r.Use(custommw.Recoverer(a.Logger))
	r.Use(middleware.Timeout(a.Config.Server.WriteTimeout))
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/healthz", handlers.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/", handlers.NewScreenHandler(a.ScreenService, a.Logger).Routes())
		r.Mount("/notes", handlers.NewNoteHandler(a.NoteService, a.Logger).Routes())
		r.Mount("/compare", handlers.NewCompareHandler(a.CompareService, a.Logger).Routes())
	})

	return r
}

// Run starts the HTTP server and blocks until SIGINT or SIGTERM, then
// shuts down gracefully within the configured timeout.
func (a *Application) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		a.Logger.Info("shutting down", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return a.Close()
}

// Close releases resources held by the application.
func (a *Application) Close() error {
	if err := a.rec.Close(); err != nil {
		a.Logger.Warn("closing run recorder failed", slog.String("error", err.Error()))
	}
	return nil
}
