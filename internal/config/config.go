package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Sync      SyncConfig
	Alerts    AlertConfig
	WebSocket WebSocketConfig
	CORS      CORSConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Port string
	Host string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN builds the Postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type JWTConfig struct {
	Secret                 string
	Expiration             time.Duration
	RefreshTokenExpiration time.Duration
}

// SyncConfig tunes the server-side view of device sync: ingestion batch size
// and the retry/queue limits advertised to clients.
type SyncConfig struct {
	BatchSize  int
	MaxRetries int
	QueueCap   int
}

// AlertConfig drives the alert feed: how often the purge job runs and, when
// the simulator is enabled, how often a simulated alert is emitted.
type AlertConfig struct {
	PurgeInterval     time.Duration
	SimulatorEnabled  bool
	SimulatorInterval time.Duration
	SimulatedTTL      time.Duration
}

type WebSocketConfig struct {
	ReadBufferSize  int
	WriteBufferSize int
	MaxMessageSize  int64
	WriteWait       time.Duration
	PongWait        time.Duration
	PingPeriod      time.Duration
	MaxConnPerUser  int
}

type CORSConfig struct {
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	godotenv.Load()

	jwtExp, err := time.ParseDuration(getEnv("JWT_EXPIRATION", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION: %w", err)
	}

	refreshExp, err := time.ParseDuration(getEnv("REFRESH_TOKEN_EXPIRATION", "168h"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_TOKEN_EXPIRATION: %w", err)
	}

	purgeInterval, err := time.ParseDuration(getEnv("ALERT_PURGE_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid ALERT_PURGE_INTERVAL: %w", err)
	}

	simInterval, err := time.ParseDuration(getEnv("ALERT_SIMULATOR_INTERVAL", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid ALERT_SIMULATOR_INTERVAL: %w", err)
	}

	simTTL, err := time.ParseDuration(getEnv("ALERT_SIMULATED_TTL", "2h"))
	if err != nil {
		return nil, fmt.Errorf("invalid ALERT_SIMULATED_TTL: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Host: getEnv("HOST", "0.0.0.0"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "prepkit"),
			Password: getEnv("DB_PASSWORD", "prepkit"),
			Name:     getEnv("DB_NAME", "prepkit"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:                 getEnv("JWT_SECRET", "dev-secret-change-in-production"),
			Expiration:             jwtExp,
			RefreshTokenExpiration: refreshExp,
		},
		Sync: SyncConfig{
			BatchSize:  getEnvAsInt("SYNC_BATCH_SIZE", 10),
			MaxRetries: getEnvAsInt("SYNC_MAX_RETRIES", 3),
			QueueCap:   getEnvAsInt("SYNC_QUEUE_CAP", 1000),
		},
		Alerts: AlertConfig{
			PurgeInterval:     purgeInterval,
			SimulatorEnabled:  getEnvAsBool("ALERT_SIMULATOR_ENABLED", false),
			SimulatorInterval: simInterval,
			SimulatedTTL:      simTTL,
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  getEnvAsInt("WS_READ_BUFFER_SIZE", 4096),
			WriteBufferSize: getEnvAsInt("WS_WRITE_BUFFER_SIZE", 4096),
			MaxMessageSize:  int64(getEnvAsInt("WS_MAX_MESSAGE_SIZE", 1048576)),
			WriteWait:       10 * time.Second,
			PongWait:        60 * time.Second,
			PingPeriod:      54 * time.Second,
			MaxConnPerUser:  getEnvAsInt("WS_MAX_CONN_PER_USER", 5),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS"),
			AllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization,X-Device-ID"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

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

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
