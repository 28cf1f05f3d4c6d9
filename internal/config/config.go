// internal/config/config.go

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	NATS        NATSConfig
	Geocoding   GeocodingConfig
	Upload      UploadConfig
	Media       MediaConfig
	Identity    IdentityConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	SSLMode      string
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
	PinSubject     string
}

// GeocodingConfig holds geocoding provider and resolver configuration
type GeocodingConfig struct {
	BaseURL           string
	UserAgent         string
	RequestTimeout    time.Duration
	RateLimitInterval time.Duration
	Debounce          time.Duration
	MinQueryLength    int
	RegionBias        string
}

// UploadConfig holds object storage configuration
type UploadConfig struct {
	ImageBucket string
	VideoBucket string
	AudioBucket string
}

// MediaConfig holds device/spool configuration
type MediaConfig struct {
	SpoolDir         string
	DenyCamera       bool
	DenyMicrophone   bool
	DenyLocation     bool
	PlaybackByteRate int64
}

// IdentityConfig holds identity provider configuration
type IdentityConfig struct {
	AccessToken string
}

// Load loads configuration from environment variables
func Load() (Config, error) {
	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Database:     getEnv("DB_NAME", "mempin"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
		},
		NATS: NATSConfig{
			URL:            getEnv("NATS_URL", ""),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 5),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 2*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 5*time.Second),
			PinSubject:     getEnv("NATS_PIN_SUBJECT", "pins.created"),
		},
		Geocoding: GeocodingConfig{
			BaseURL:           getEnv("GEOCODING_BASE_URL", "https://nominatim.openstreetmap.org"),
			UserAgent:         getEnv("GEOCODING_USER_AGENT", "mempin/1.0"),
			RequestTimeout:    getEnvAsDuration("GEOCODING_REQUEST_TIMEOUT", 10*time.Second),
			RateLimitInterval: getEnvAsDuration("GEOCODING_RATE_LIMIT_INTERVAL", 2*time.Second),
			Debounce:          getEnvAsDuration("GEOCODING_DEBOUNCE", 1*time.Second),
			MinQueryLength:    getEnvAsInt("GEOCODING_MIN_QUERY_LENGTH", 3),
			RegionBias:        getEnv("GEOCODING_REGION_BIAS", "Australia"),
		},
		Upload: UploadConfig{
			ImageBucket: getEnv("UPLOAD_IMAGE_BUCKET", "mempin-images"),
			VideoBucket: getEnv("UPLOAD_VIDEO_BUCKET", "mempin-videos"),
			AudioBucket: getEnv("UPLOAD_AUDIO_BUCKET", "mempin-audio"),
		},
		Media: MediaConfig{
			SpoolDir:         getEnv("MEDIA_SPOOL_DIR", os.TempDir()+"/mempin-spool"),
			DenyCamera:       getEnvAsBool("MEDIA_DENY_CAMERA", false),
			DenyMicrophone:   getEnvAsBool("MEDIA_DENY_MICROPHONE", false),
			DenyLocation:     getEnvAsBool("MEDIA_DENY_LOCATION", false),
			PlaybackByteRate: getEnvAsInt64("MEDIA_PLAYBACK_BYTE_RATE", 4000),
		},
		Identity: IdentityConfig{
			AccessToken: getEnv("IDENTITY_ACCESS_TOKEN", ""),
		},
	}

	return config, validate(config)
}

// validate checks if config is valid
func validate(config Config) error {
	if config.Identity.AccessToken == "" && config.Environment != "development" {
		return fmt.Errorf("identity access token must be set in non-development environments")
	}
	if config.Geocoding.UserAgent == "" {
		return fmt.Errorf("geocoding user agent must identify this client")
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
