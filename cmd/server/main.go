// Package main initializes and starts the FeedlinerX API server, setting up
// configuration, logging, the user store, services, handlers and optional TLS.
package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/indranuj17/FeedlinerX/internal/config"
	"github.com/indranuj17/FeedlinerX/internal/db"
	"github.com/indranuj17/FeedlinerX/internal/logger"
	"github.com/indranuj17/FeedlinerX/internal/mail"
	"github.com/indranuj17/FeedlinerX/internal/repository"
	"github.com/indranuj17/FeedlinerX/internal/server/handler/http"
	"github.com/indranuj17/FeedlinerX/internal/service"
	"github.com/indranuj17/FeedlinerX/internal/suggest"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

// userStore is what the server needs from a backend.
type userStore interface {
	service.UserRepository
	db.PendingPruner
}

// orDefault returns s, or def when s is empty (equivalent of cmp.Or for Go < 1.22).
func orDefault(s, def string) string {
	if s != "" {
		return s
	}
	return def
}

func main() {
	// Parse flags, config file, .env and environment.
	options, err := config.Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", orDefault(version, "N/A"))
	fmt.Printf("Build date: %s\n", orDefault(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Open the single process-wide store handle.
	store, ping, closeStore, err := openStore(ctx, options)
	if err != nil {
		zapLogger.Fatal("cannot init user store", zap.String("backend", options.StoreBackend), zap.Error(err))
	}
	defer closeStore()

	// Prune abandoned signups only when a retention is configured.
	if options.PendingRetention.Duration > 0 {
		db.StartPendingCleaner(ctx, store,
			options.CleanerInterval.Duration,
			options.PendingRetention.Duration,
			zapLogger,
		)
	}

	// Verification codes go out by email when Resend is configured.
	var notifier service.Notifier = &mail.LogNotifier{Log: zapLogger}
	if options.ResendAPIKey != "" {
		notifier = mail.NewResendNotifier(options.ResendBaseURL, options.ResendAPIKey, options.MailFrom)
	} else {
		zapLogger.Warn("RESEND_API_KEY not set, verification codes are only logged")
	}

	var suggester http.Suggester = suggest.Static{}
	if options.OpenAIAPIKey != "" {
		suggester = suggest.NewOpenAI(options.OpenAIBaseURL, options.OpenAIAPIKey, options.OpenAIModel, zapLogger)
	}

	// Initialize business-logic services.
	authService := service.NewAuthService(store, notifier, zapLogger)
	messageService := service.NewMessageService(store, zapLogger)

	// Create HTTP handlers.
	secret := []byte(options.JWTSecret)
	authHandler := &http.AuthHandler{
		AuthService:  authService,
		Secret:       secret,
		CookieName:   options.CookieName,
		CookieSecure: options.CookieSecure,
		SessionTTL:   options.SessionTTL.Duration,
		Log:          zapLogger,
	}
	messageHandler := &http.MessageHandler{MessageService: messageService, Log: zapLogger}
	suggestHandler := &http.SuggestHandler{Suggester: suggester, Log: zapLogger}
	healthHandler := &http.HealthHandler{Ping: ping, Log: zapLogger}

	// Build the router with middleware and routes.
	router := http.NewRouter(authHandler, messageHandler, suggestHandler, healthHandler, http.RouterConfig{
		Secret:         secret,
		CookieName:     options.CookieName,
		AllowedOrigins: options.Origins(),
	}, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if options.TLSEnabled() {
			server.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
			zapLogger.Info("starting HTTPS server", zap.String("addr", options.Port))
			errCh <- server.ListenAndServeTLS(options.TLSCertFile, options.TLSKeyFile)
			return
		}
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			zapLogger.Error("server stopped", zap.Error(err))
		}
	case <-ctx.Done():
		zapLogger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}
}

// openStore connects the configured backend and returns the repository,
// a liveness probe and a close function.
func openStore(ctx context.Context, options *config.Options) (userStore, http.Pinger, func(), error) {
	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	switch options.StoreBackend {
	case config.BackendMongo:
		client, coll, err := db.InitMongo(initCtx, options.MongoURI, options.MongoDatabase)
		if err != nil {
			return nil, nil, nil, err
		}
		ping := func(ctx context.Context) error { return client.Ping(ctx, nil) }
		closeFn := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(ctx)
		}
		return repository.NewMongoUserRepository(coll), ping, closeFn, nil
	default:
		sqlDB, err := db.InitPostgres(initCtx, options.DatabaseDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		return repository.NewPostgresUserRepository(sqlDB), sqlDB.PingContext, func() { _ = sqlDB.Close() }, nil
	}
}
