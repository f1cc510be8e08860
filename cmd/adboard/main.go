// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/adboardhq/adboard-web/internal/api"
	"github.com/adboardhq/adboard-web/internal/config"
	"github.com/adboardhq/adboard-web/internal/content"
	"github.com/adboardhq/adboard-web/internal/geo"
	"github.com/adboardhq/adboard-web/internal/geoip"
	"github.com/adboardhq/adboard-web/internal/handler"
	"github.com/adboardhq/adboard-web/internal/imaging"
	"github.com/adboardhq/adboard-web/internal/logging"
	"github.com/adboardhq/adboard-web/internal/middleware"
	"github.com/adboardhq/adboard-web/internal/render"
	"github.com/adboardhq/adboard-web/internal/scheduler"
	"github.com/adboardhq/adboard-web/internal/service"
	"github.com/adboardhq/adboard-web/internal/session"
	"github.com/adboardhq/adboard-web/internal/store"
	"github.com/adboardhq/adboard-web/internal/version"
	"github.com/adboardhq/adboard-web/web"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "AdBoard - Billboard Marketplace Web\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ADBOARD_API_BASE_URL      Backend REST API base URL (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ADBOARD_SESSION_SECRET    Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ADBOARD_DB_PATH           SQLite database path (default: ./data/adboard.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ADBOARD_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ADBOARD_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ADBOARD_MAPS_API_KEY      Maps widget and geocoding key (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ADBOARD_GOOGLE_CLIENT_ID  OAuth identity widget client ID (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if *showVersion {
		info := version.Get()
		_, _ = fmt.Printf("adboard %s (commit: %s, built: %s)\n", info.Version, info.GitCommit, info.BuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Initialize the local database (sessions + audit events)
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the event log
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	// GeoIP country resolution for audit events
	var geoResolver *geoip.Resolver
	if cfg.GeoIPEnabled() {
		geoResolver, err = geoip.Open(cfg.GeoIPDBPath, logger)
		if err != nil {
			slog.Warn("GeoIP database unavailable, events will have no country", "error", err)
		} else {
			defer func() { _ = geoResolver.Close() }()
			slog.Info("GeoIP resolver initialized", "path", cfg.GeoIPDBPath)
		}
	}

	// Session manager backed by the local database
	sessionManager := session.NewManager(db, cfg.IsDevelopment())
	sessions := session.NewStore(sessionManager)
	slog.Info("session manager initialized")

	// Backend API client
	apiClient := api.New(cfg.APIBaseURL, cfg.APIRequestTimeout())
	slog.Info("backend API client initialized", "base_url", cfg.APIBaseURL, "timeout", cfg.APIRequestTimeout())

	// Template renderer
	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}
	slog.Info("template renderer initialized")

	// Markdown marketing pages; cached outside development
	pages := content.NewStore(cfg.ContentDir, !cfg.IsDevelopment())

	// Audit event service and maintenance scheduler
	eventService := service.NewEventService(db, geoResolver)
	sched := scheduler.New(db, logger, cfg.EventRetentionDays)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	// Photo pipeline and server-side geocoding
	processor := imaging.NewProcessor()
	geocoder := geo.New(cfg.GeocodeURL, cfg.MapsAPIKey)
	if cfg.GeocodingEnabled() {
		slog.Info("server-side geocoding enabled")
	}
	if cfg.GoogleLoginEnabled() {
		slog.Info("google sign-in enabled", "client_id", cfg.GoogleClientID)
	}

	// Create router
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.StripTrailingSlash)

	securityConfig := middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())
	r.Use(middleware.SecurityHeaders(securityConfig))
	slog.Info("security headers middleware initialized", "hsts", !cfg.IsDevelopment())

	r.Use(middleware.RequestPath)
	r.Use(sessionManager.LoadAndSave)

	csrfConfig := middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment())
	csrfMiddleware := middleware.CSRF(csrfConfig)
	slog.Info("CSRF protection initialized", "secure", !cfg.IsDevelopment())

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	publicRateLimiter := middleware.NewGlobalRateLimiter(10.0, 20)
	slog.Info("login protection initialized", "rate", "10 req/s", "burst", 20)

	// Initialize handlers
	contentHandler := handler.NewContentHandler(renderer, sessions, pages)
	authHandler := handler.NewAuthHandler(apiClient, renderer, sessions, eventService, loginProtection, cfg.GoogleClientID)
	citiesHandler := handler.NewCitiesHandler(apiClient, renderer, sessions)
	billboardHandler := handler.NewBillboardHandler(apiClient, renderer, sessions, eventService, cfg.MapsAPIKey)
	bookingsHandler := handler.NewBookingsHandler(apiClient, renderer, sessions)
	profileHandler := handler.NewProfileHandler(apiClient, renderer, sessions, eventService, processor, cfg.StagingDir)
	vendorHandler := handler.NewVendorHandler(apiClient, renderer, sessions, eventService, processor, geocoder)
	healthHandler := handler.NewHealthHandler(db, apiClient)
	seoHandler := handler.NewSEOHandler(apiClient, pages, cfg.SiteURL, cfg.IsDevelopment())

	// Health check routes
	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	// Static assets
	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Crawler endpoints
	r.Get("/robots.txt", seoHandler.Robots)
	r.Get("/sitemap.xml", seoHandler.Sitemap)

	// Public browsing routes
	r.Group(func(r chi.Router) {
		r.Get(handler.RouteRoot, contentHandler.Home)
		r.Get("/pages"+handler.RouteParamSlug, contentHandler.Page)
		r.Get(handler.RouteCities, citiesHandler.List)
		r.Get(handler.RouteCities+handler.RouteParamID, citiesHandler.Billboards)
		r.Get(handler.RouteBillboards+handler.RouteParamID, billboardHandler.Detail)
	})

	// Auth routes: rate limited, CSRF protected, and pointless for signed-in users
	r.Group(func(r chi.Router) {
		r.Use(publicRateLimiter.Middleware())
		r.Use(csrfMiddleware)
		r.Use(middleware.RedirectIfAuthenticated(sessions))

		r.Get(handler.RouteSignIn, authHandler.SignInForm)
		r.With(loginProtection.Middleware()).Post(handler.RouteSignIn, authHandler.SignIn)
		r.Get(handler.RouteSignUp, authHandler.SignUpForm)
		r.Post(handler.RouteSignUp, authHandler.SignUp)
		r.Post(handler.RouteAuthGoogle, authHandler.GoogleSignIn)
	})

	// Signed-in routes: the onboarding wizard and logout
	r.Group(func(r chi.Router) {
		r.Use(csrfMiddleware)
		for _, mw := range middleware.GuardSignedIn.Middlewares(sessions) {
			r.Use(mw)
		}

		r.Get(handler.RouteProfileComplete, profileHandler.Show)
		r.Post(handler.RouteProfileComplete+"/next", profileHandler.Next)
		r.Post(handler.RouteProfileComplete+"/prev", profileHandler.Prev)
		r.Post(handler.RouteProfileComplete+"/submit", profileHandler.Submit)
		r.Get(handler.RouteLogout, authHandler.Logout)
		r.Post(handler.RouteLogout, authHandler.Logout)
	})

	// Advertiser routes: bookings and the booking flow
	r.Group(func(r chi.Router) {
		r.Use(csrfMiddleware)
		for _, mw := range middleware.GuardAdvertiser.Middlewares(sessions) {
			r.Use(mw)
		}

		r.Get(handler.RouteBookings, bookingsHandler.List)
		r.Get(handler.RouteBookings+handler.RouteParamID, bookingsHandler.Detail)
		r.Get(handler.RouteBillboards+handler.RouteParamID+"/book", billboardHandler.BookForm)
		r.Post(handler.RouteBillboards+handler.RouteParamID+"/book", billboardHandler.Book)
	})

	// Vendor routes: dashboard, inventory, booking decisions
	r.Route(handler.RouteVendor, func(r chi.Router) {
		r.Use(csrfMiddleware)
		for _, mw := range middleware.GuardVendor.Middlewares(sessions) {
			r.Use(mw)
		}

		r.Get(handler.RouteRoot, vendorHandler.Dashboard)
		r.Get(handler.RouteBillboards, vendorHandler.Billboards)
		r.Get(handler.RouteBillboards+"/new", vendorHandler.NewBillboardForm)
		r.Post(handler.RouteBillboards+"/new", vendorHandler.CreateBillboard)
		r.Get(handler.RouteBillboards+handler.RouteParamID, vendorHandler.BillboardDetail)
		r.Get(handler.RouteBookings, vendorHandler.Bookings)
		r.Get(handler.RouteBookings+handler.RouteParamID, vendorHandler.BookingDetail)
		r.Post(handler.RouteBookings+handler.RouteParamID+"/status", vendorHandler.UpdateBookingStatus)
	})

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", version.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		slog.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
