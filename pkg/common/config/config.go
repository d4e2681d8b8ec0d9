package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	ServerPort   string
	ServerHost   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Env          string

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	DBMaxOpenConns   int
	DBMaxIdleConns   int
	DBConnMaxLife    time.Duration

	// Pipeline
	BatchSize       int
	CSVDataPath     string
	SkipErrors      bool
	TerminologyPath string

	// Redis
	RedisHost      string
	RedisPort      string
	RedisPassword  string
	RedisDB        int
	RunLockEnabled bool
	RunLockTTL     time.Duration

	// Kafka
	KafkaBrokers []string
	KafkaGroupID string
	EventsTopic  string
}

func Load() *Config {
	return &Config{
		ServerPort:   getEnv("SERVER_PORT", "8090"),
		ServerHost:   getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:  getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout: getDuration("WRITE_TIMEOUT", 30*time.Minute),
		Env:          getEnv("ENV", "development"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "mimic_user"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "mimic_password"),
		PostgresDB:       getEnv("POSTGRES_DB", "mimic_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		DBMaxOpenConns:   getIntEnv("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns:   getIntEnv("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLife:    getDuration("DB_CONN_MAX_LIFETIME", time.Hour),

		BatchSize:       getIntEnv("BATCH_SIZE", 1000),
		CSVDataPath:     getEnv("CSV_DATA_PATH", "./dataset"),
		SkipErrors:      getBoolEnv("SKIP_ERRORS", true),
		TerminologyPath: getEnv("TERMINOLOGY_PATH", ""),

		RedisHost:      getEnv("REDIS_HOST", "localhost"),
		RedisPort:      getEnv("REDIS_PORT", "6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getIntEnv("REDIS_DB", 0),
		RunLockEnabled: getBoolEnv("RUN_LOCK_ENABLED", false),
		RunLockTTL:     getDuration("RUN_LOCK_TTL", time.Hour),

		KafkaBrokers: getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID: getEnv("KAFKA_GROUP_ID", "clinical-warehouse"),
		EventsTopic:  getEnv("WAREHOUSE_EVENTS_TOPIC", ""),
	}
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.BatchSize <= 0 {
		return errors.New("batch size must be positive")
	}
	if c.PostgresDB == "" {
		return errors.New("postgres database name is required")
	}
	if c.RunLockEnabled && c.RunLockTTL <= 0 {
		return errors.New("run lock ttl must be positive when run lock is enabled")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var out []string
		for _, part := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
