package config

import "os"

type Config struct {
	HTTP     HTTPConfig
	Postgres PostgresConfig
	Token    TokenConfig
}

type HTTPConfig struct {
	Addr string
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

// TokenConfig carries the raw env values for the session token signer.
// The TTL string is parsed and validated by the auth service, not here.
type TokenConfig struct {
	Secret string
	TTL    string
}

func Load() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr: getenv("APP_ADDR", ":8080"),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
		Token: TokenConfig{
			Secret: os.Getenv("TOKEN_SECRET"),
			TTL:    getenv("TOKEN_TTL", "1h"),
		},
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
