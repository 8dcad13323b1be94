// config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Application metadata
const (
	AppName    = "MATCHCORE"
	AppVersion = "1.0.0"
)

// Store backends for match records
const (
	StoreCassandra = "cassandra"
	StoreMemory    = "memory"
)

// Config holds every setting the server needs at startup
type Config struct {
	// ServerPort is the port on which the server will run
	ServerPort int

	LogJSON  bool
	LogDebug bool

	JWTSecret string

	// MongoDB configuration (profiles, blocks)
	MongoURI      string
	MongoDatabase string

	// Cassandra configuration (match records)
	CassandraHost     string
	CassandraUsername string
	CassandraPassword string
	CassandraKeyspace string
	CassandraPort     int

	// Redis configuration (profile cache, event bus)
	RedisURL           string
	RedisPassword      string
	RedisDB            int
	RedisEventsChannel string

	ProfileCacheTTL   time.Duration
	DiscoverScanLimit int
	StoreBackend      string
}

// Load reads .env (if present) and resolves every key against the environment
func Load() *Config {
	// A missing .env file is fine, the environment alone is enough
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort: getEnvInt("SERVER_PORT", 8088),
		LogJSON:    getEnvBool("LOG_JSON", false),
		LogDebug:   getEnvBool("LOG_DEBUG", false),
		JWTSecret:  getEnv("JWT_SECRET", "change-me-matchcore-secret"),

		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "matchcore"),

		CassandraHost:     getEnv("CASSANDRA_HOST", "localhost"),
		CassandraUsername: getEnv("CASSANDRA_USERNAME", "cassandra"),
		CassandraPassword: getEnv("CASSANDRA_PASSWORD", "cassandra"),
		CassandraKeyspace: getEnv("CASSANDRA_KEYSPACE", "matchcore"),
		CassandraPort:     getEnvInt("CASSANDRA_PORT", 9042),

		RedisURL:           getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		RedisEventsChannel: getEnv("REDIS_EVENTS_CHANNEL", "match-events"),

		ProfileCacheTTL:   getEnvDuration("PROFILE_CACHE_TTL", 30*time.Second),
		DiscoverScanLimit: getEnvInt("DISCOVER_SCAN_LIMIT", 500),
		StoreBackend:      strings.ToLower(getEnv("STORE_BACKEND", StoreCassandra)),
	}

	if cfg.StoreBackend != StoreMemory {
		cfg.StoreBackend = StoreCassandra
	}
	if cfg.DiscoverScanLimit <= 0 {
		cfg.DiscoverScanLimit = 500
	}

	return cfg
}

// getEnv gets environment variable with fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}
