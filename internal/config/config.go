package config

import (
	"fmt"
	"os"
)

// Config holds everything both services read from the environment. Values come
// from the process environment; a .env file is loaded by main before this runs.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string

	JWTSecret string

	GatewayPort string
	RelayPort   string

	EvolutionURL    string
	EvolutionAPIKey string

	// RelayPublicURL is the externally reachable base URL of the relay service,
	// registered as the provider webhook target and used to build /getFile links.
	RelayPublicURL string

	TempDir string
	Mode    string
	LogFile string
}

func Load() *Config {
	return &Config{
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getenv("POSTGRES_PORT", "5432"),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "chatfuse"),
		JWTSecret:        getenv("JWT_SECRET", "chatfuse_secret_key"),
		GatewayPort:      getenv("GATEWAY_PORT", "3010"),
		RelayPort:        getenv("RELAY_PORT", "3001"),
		EvolutionURL:     getenv("EVOLUTION_URL", "http://evolution_api:8080"),
		EvolutionAPIKey:  getenv("EVOLUTION_APIKEY", ""),
		RelayPublicURL:   getenv("RELAY_PUBLIC_URL", "http://localhost:3001"),
		TempDir:          getenv("TEMP_DIR", "temp"),
		Mode:             getenv("APP_MODE", "development"),
		LogFile:          getenv("LOG_FILE", ""),
	}
}

func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.PostgresUser, c.PostgresPassword, c.PostgresHost, c.PostgresPort, c.PostgresDB)
}

func (c *Config) Production() bool {
	return c.Mode == "production"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
