package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Uploads  UploadsConfig
	Encoder  EncoderConfig
	Worker   WorkerConfig
	Auth     AuthConfig
	Metrics  MetricsConfig
	Tracing  TracingConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server configuration.
// ReadTimeout and WriteTimeout default to zero: encode requests stay
// open for the full ffmpeg run and uploads hold the connection through
// the whole encode attempt sequence, so any fixed deadline here would
// cut off requests the encoder timeouts deliberately allow. Only the
// header read is deadlined by default.
type ServerConfig struct {
	Port              int
	Host              string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// DatabaseConfig holds catalog store configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// RedisConfig holds Redis configuration for the catalog cache
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Enabled  bool
	TTL      time.Duration
}

// UploadsConfig holds local upload storage configuration
type UploadsConfig struct {
	Dir       string
	URLPrefix string
}

// EncoderConfig holds the content service's encoder client settings.
// WorkerURLs is a priority-ordered list of base URLs tried in sequence;
// the timeouts bound the liveness probe and the encode call respectively.
type EncoderConfig struct {
	WorkerURLs    []string
	HealthTimeout time.Duration
	EncodeTimeout time.Duration
}

// WorkerConfig holds the transcode worker's own settings
type WorkerConfig struct {
	FFmpegPath    string
	FFmpegTimeout time.Duration
	EncodedDir    string
	UploadsDir    string
}

// AuthConfig holds token validation configuration
type AuthConfig struct {
	JWTSecret string
}

// MetricsConfig holds metrics server configuration
type MetricsConfig struct {
	Enabled bool
	Port    int
}

// TracingConfig holds tracing configuration
type TracingConfig struct {
	Enabled        bool
	JaegerEndpoint string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", 5003)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.readTimeout", "0")
	viper.SetDefault("server.writeTimeout", "0")
	viper.SetDefault("server.readHeaderTimeout", "10s")
	viper.SetDefault("server.shutdownTimeout", "10s")

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.dbname", "gostream")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.maxConns", 25)
	viper.SetDefault("database.minConns", 5)

	// Redis defaults
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.enabled", true)
	viper.SetDefault("redis.ttl", "5m")

	// Uploads defaults
	viper.SetDefault("uploads.dir", "/app/uploads")
	viper.SetDefault("uploads.urlPrefix", "/uploads")

	// Encoder defaults
	viper.SetDefault("encoder.workerURLs", []string{"http://localhost:6001"})
	viper.SetDefault("encoder.healthTimeout", "2s")
	viper.SetDefault("encoder.encodeTimeout", "30m")

	// Worker defaults
	viper.SetDefault("worker.ffmpegPath", "ffmpeg")
	viper.SetDefault("worker.ffmpegTimeout", "30m")
	viper.SetDefault("worker.encodedDir", "/app/encoded")
	viper.SetDefault("worker.uploadsDir", "/app/uploads")

	// Auth defaults
	viper.SetDefault("auth.jwtSecret", "")

	// Metrics defaults
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.port", 9090)

	// Tracing defaults
	viper.SetDefault("tracing.enabled", false)
	viper.SetDefault("tracing.jaegerEndpoint", "http://localhost:14268/api/traces")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}
