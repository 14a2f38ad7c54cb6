package config

import (
	"fmt"
	"os"
)

// Config holds all runtime settings, loaded from the environment.
type Config struct {
	Env          string
	Port         string
	DatabaseURL  string
	JWTSecret    string
	AMQPURL      string
	AMQPExchange string
	OTLPAddr     string
	DebugRoutes  bool
}

// Load reads configuration from environment variables with local defaults.
func Load() *Config {
	dbUser := getEnv("DB_USER", "party_user")
	dbPass := getEnv("DB_PASSWORD", "password")
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbName := getEnv("DB_NAME", "party_service")
	dbSSL := getEnv("DB_SSLMODE", "disable")

	dsn := getEnv("DB_DSN", fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbUser, dbPass, dbHost, dbPort, dbName, dbSSL))

	return &Config{
		Env:          getEnv("APP_ENV", "development"),
		Port:         getEnv("PORT", "8086"),
		DatabaseURL:  dsn,
		JWTSecret:    getEnv("JWT_SECRET", "dev-secret"),
		AMQPURL:      os.Getenv("AMQP_URL"),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "party_events"),
		OTLPAddr:     getEnv("OTLP_GRPC_ADDR", "localhost:4317"),
		DebugRoutes:  getEnv("DEBUG_ROUTES", "") == "true",
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}
