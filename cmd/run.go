package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"tokenengine/api"
	"tokenengine/clock"
	"tokenengine/config"
	"tokenengine/database"
	"tokenengine/domain/interfaces"
	"tokenengine/domain/services"
	"tokenengine/infrastructure"
	"tokenengine/repository"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the token engine
func Run(ctx context.Context) error {
	log.Info("Starting token engine...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully")

	// Initialize NATS connection for domain events
	log.WithField("servers", cfg.NATSServers).Info("Connecting to NATS...")
	natsClient := infrastructure.NewNATSClient(cfg.NATSServers)
	if err := natsClient.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	defer natsClient.Close()
	log.Info("NATS connection established successfully")

	// Initialize unit of work factory. Every unit of work gets its own
	// transactional publisher so events only leave on commit.
	natsPublisher := infrastructure.NewNATSEventPublisher(natsClient, infrastructure.NewEventSubjectMapper())
	uowFactory := repository.NewUnitOfWorkFactory(db, func() interfaces.TransactionalEventPublisher {
		return infrastructure.NewTransactionalPublisher(natsPublisher)
	})

	// Initialize profile service client for leaderboard display names
	var profileStore interfaces.ProfileStore
	if cfg.ProfileServiceAddr != "" {
		log.WithField("addr", cfg.ProfileServiceAddr).Info("Using profile service for display names")
		profileStore = infrastructure.NewHTTPProfileStore(cfg.ProfileServiceAddr)
	} else {
		log.Info("No profile service configured, leaderboard entries will carry empty display names")
	}

	// Initialize HTTP API
	server := api.NewServer(uowFactory, profileStore, clock.New(), services.PlanDefaults{
		DailyLimit:   cfg.DailyTokenLimit,
		MonthlyTotal: cfg.MonthlyTokenTotal,
	})
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: server.Router(),
	}

	serveErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Infof("Token engine is running in %s mode...", cfg.Environment)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
	}

	// Graceful shutdown
	log.Info("Shutting down token engine...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down HTTP server")
	}
	log.Info("Shutdown completed")

	return nil
}
