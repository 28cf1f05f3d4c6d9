// cmd/api/main.go

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	gcs "cloud.google.com/go/storage"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"mempin/internal/adapter/auth"
	"mempin/internal/adapter/device"
	"mempin/internal/adapter/geocoding"
	"mempin/internal/adapter/objectstore"
	"mempin/internal/adapter/storage"
	"mempin/internal/config"
	"mempin/internal/domain/media"
	"mempin/internal/server"
	"mempin/internal/service/draft"
	"mempin/internal/service/geocode"
)

func main() {
	// Load .env if present; real environments set variables directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := initLogger(cfg.Environment)

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Initialize dependencies
	db, err := initDatabase(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	var natsConn *nats.Conn
	if cfg.NATS.URL != "" {
		natsConn, err = initNATS(cfg.NATS, log)
		if err != nil {
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
		defer natsConn.Close()
	}

	gcsClient, err := gcs.NewClient(ctx)
	if err != nil {
		log.Fatalf("Failed to create object storage client: %v", err)
	}
	defer gcsClient.Close()

	// Collaborator adapters
	geocoder := geocoding.NewClient(cfg.Geocoding.BaseURL, cfg.Geocoding.UserAgent, cfg.Geocoding.RequestTimeout)
	objectStore := objectstore.NewStore(gcsClient, objectstore.Buckets{
		Images: cfg.Upload.ImageBucket,
		Videos: cfg.Upload.VideoBucket,
		Audio:  cfg.Upload.AudioBucket,
	})
	pinStore := storage.NewPinStore(db)
	tokens := &auth.StaticTokenProvider{Token: cfg.Identity.AccessToken}

	// Device adapters backing the capture session
	spool := &device.Spool{Dir: cfg.Media.SpoolDir}
	camera := &device.StagedCamera{}
	audioDevice := &device.StagedAudioDevice{Spool: spool}
	player := &device.FilePlayer{BytesPerSecond: cfg.Media.PlaybackByteRate}
	permissions := &device.StaticPermissions{
		Denied: map[media.Permission]bool{
			media.PermissionCamera:     cfg.Media.DenyCamera,
			media.PermissionMicrophone: cfg.Media.DenyMicrophone,
			media.PermissionLocation:   cfg.Media.DenyLocation,
		},
	}

	// Draft session registry
	registry := draft.NewRegistry(draft.Deps{
		Geocoder:    geocoder,
		ObjectStore: objectStore,
		Pins:        pinStore,
		Tokens:      tokens,
		Permissions: permissions,
		AudioDevice: audioDevice,
		Player:      player,
		Camera:      camera,
		Resolver: geocode.ResolverConfig{
			Debounce:       cfg.Geocoding.Debounce,
			MinQueryLength: cfg.Geocoding.MinQueryLength,
			RegionBias:     cfg.Geocoding.RegionBias,
		},
		GeocodeRateLimit: cfg.Geocoding.RateLimitInterval,
		Events:           natsConn,
		EventSubject:     cfg.NATS.PinSubject,
		Log:              log,
	})

	// Initialize HTTP server
	httpServer := server.NewServer(cfg.Server, registry, spool, camera, audioDevice, log)

	// Start HTTP server
	go func() {
		log.Infof("Starting HTTP server on %s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-shutdown
	log.Info("Shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warnf("HTTP server shutdown error: %v", err)
	}

	log.Info("Shutdown complete")
}

func initLogger(environment string) *logrus.Entry {
	logger := logrus.New()
	if environment == "development" {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetLevel(logrus.InfoLevel)
	}
	return logger.WithField("service", "mempin-api")
}

// Initialize database connection
func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxOpenConns)

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Test connection
	if err := db.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return db, nil
}

// Initialize NATS connection
func initNATS(cfg config.NATSConfig, log *logrus.Entry) (*nats.Conn, error) {
	options := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.WithError(err).Warn("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Infof("NATS reconnected to %s", nc.ConnectedUrl())
		}),
	}

	conn, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}
	return conn, nil
}
