package config

import (
	"fmt"
	"time"
)

// Ledger backend selection.
const (
	LedgerPostgres = "postgres"
	LedgerMemory   = "memory"
)

// Config carries everything the server needs at startup.
type Config struct {
	ListenAddr      string
	Debug           bool
	ShutdownTimeout time.Duration

	LedgerBackend string
	DBConnStr     string

	AdminToken string
	UserTokens []string
}

// Load reads configuration from the environment, applying defaults that
// match local development.
func Load() *Config {
	cfg := &Config{
		ListenAddr:      envOrDefault("HTTP_ADDR", ":8080"),
		Debug:           boolEnvOrDefault("DEBUG", false),
		ShutdownTimeout: durationEnvOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
		LedgerBackend:   envOrDefault("LEDGER_BACKEND", LedgerPostgres),
		DBConnStr:       envOrDefault("DB_CONN_STR", ""),
		AdminToken:      envOrDefault("ADMIN_TOKEN", "dev-admin-token"),
		UserTokens:      csvEnv("USER_TOKENS"),
	}

	if cfg.DBConnStr == "" {
		// Build the connection string from individual vars (Docker friendly).
		host := envOrDefault("DB_HOST", "localhost")
		port := envOrDefault("DB_PORT", "5432")
		user := envOrDefault("DB_USER", "postgres")
		password := envOrDefault("DB_PASSWORD", "postgres")
		dbname := envOrDefault("DB_NAME", "auction")

		cfg.DBConnStr = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			host, port, user, password, dbname)
	}

	return cfg
}
