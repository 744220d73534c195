package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"

	"finitefield.org/totalcalc-web/internal/catalog"
	"finitefield.org/totalcalc-web/internal/content"
	"finitefield.org/totalcalc-web/internal/currency"
	"finitefield.org/totalcalc-web/internal/handlers"
	"finitefield.org/totalcalc-web/internal/platform/config"
	"finitefield.org/totalcalc-web/internal/platform/observability"
	"finitefield.org/totalcalc-web/internal/resolver"
	"finitefield.org/totalcalc-web/internal/sitemap"
	"finitefield.org/totalcalc-web/internal/view"
)

const requestTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg.Observability.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.Named("web")

	router, err := newRouter(cfg, logger)
	if err != nil {
		var cfgErr *catalog.ConfigError
		if errors.As(err, &cfgErr) {
			logger.Fatal("catalog declaration is invalid", zap.Strings("problems", cfgErr.Problems()))
		}
		logger.Fatal("build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("web listening",
			zap.String("addr", srv.Addr),
			zap.String("base_url", cfg.Site.BaseURL),
			zap.String("env", cfg.Environment),
			zap.Bool("dev", cfg.Dev),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal("listen", zap.Error(err))
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", zap.Error(err))
	}
}

// newRouter assembles the site from configuration. Catalog validation errors
// surface as *catalog.ConfigError.
func newRouter(cfg config.Config, logger *zap.Logger) (http.Handler, error) {
	cat, err := catalog.Default()
	if err != nil {
		return nil, err
	}
	logger.Info("catalog loaded", zap.Int("categories", len(cat.Categories())), zap.Int("calculators", cat.Len()))

	lib, err := content.Default()
	if err != nil {
		return nil, err
	}
	registry, err := currency.DefaultRegistry().WithDefault(cfg.Site.DefaultCurrency)
	if err != nil {
		return nil, fmt.Errorf("default currency: %w", err)
	}
	cookies, err := newCookieCodec(cfg, logger)
	if err != nil {
		return nil, err
	}
	gen, err := sitemap.New(cat, cfg.Site.BaseURL)
	if err != nil {
		return nil, err
	}
	renderer, err := view.New(view.Options{Dev: cfg.Dev, Dir: cfg.TemplatesDir, Logger: logger})
	if err != nil {
		return nil, err
	}
	site, err := handlers.New(handlers.Deps{
		SiteName:        cfg.Site.Name,
		NoIndex:         !cfg.Production(),
		SecureCookies:   cfg.Production(),
		GAMeasurementID: cfg.Site.GAMeasurementID,
		Catalog:         cat,
		Resolver:        resolver.New(cat),
		Sitemap:         gen,
		Registry:        registry,
		Cookies:         cookies,
		Content:         lib,
		Renderer:        renderer,
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	// RealIP trusts X-Forwarded-For; only deploy behind a proxy that sets it.
	r.Use(middleware.RealIP)
	r.Use(observability.TraceMiddleware(cfg.Observability.ProjectID))
	r.Use(observability.InjectLoggerMiddleware(logger))
	r.Use(observability.RecoveryMiddleware(logger))
	r.Use(observability.RequestLoggerMiddleware())
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Compress(5))
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/assets/*", http.StripPrefix("/assets", view.Assets()))
	site.Routes(r)
	return r, nil
}

func newCookieCodec(cfg config.Config, logger *zap.Logger) (*currency.CookieCodec, error) {
	hashKey, blockKey := cfg.Cookie.HashKey, cfg.Cookie.BlockKey
	if len(hashKey) == 0 {
		logger.Warn("cookie keys not configured, generating ephemeral keys; preferences reset on restart")
		hashKey = securecookie.GenerateRandomKey(32)
		blockKey = securecookie.GenerateRandomKey(32)
		if hashKey == nil || blockKey == nil {
			return nil, errors.New("generate cookie keys")
		}
	}
	return currency.NewCookieCodec(currency.CookieConfig{
		HashKey:  hashKey,
		BlockKey: blockKey,
		Secure:   cfg.Production(),
	})
}
