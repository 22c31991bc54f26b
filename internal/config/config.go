package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverMySQL  = "mysql"
)

// Config holds the service settings read from the environment.
type Config struct {
	Port        string
	GinMode     string
	StoreDriver string
	DatabaseDSN string
	JWTSecret   string
	TokenTTL    time.Duration
	AuthUsers   string
	CatalogURL  string
	CORSOrigins []string
	SeedDemo    bool
}

// Load reads .env (if present) and then the environment.
func Load() Config {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the settings from the process environment only.
func FromEnv() Config {
	return Config{
		Port:        getenv("PORT", "8081"),
		GinMode:     getenv("GIN_MODE", "release"),
		StoreDriver: strings.ToLower(getenv("STORE_DRIVER", DriverMemory)),
		DatabaseDSN: os.Getenv("DB_DSN"),
		JWTSecret:   getenv("JWT_SECRET", "dev-secret-change-me"),
		TokenTTL:    time.Duration(intFromEnv("TOKEN_TTL_HOURS", 24)) * time.Hour,
		AuthUsers:   os.Getenv("AUTH_USERS"),
		CatalogURL:  os.Getenv("CATALOG_URL"),
		CORSOrigins: splitList(getenv("CORS_ORIGINS", "http://localhost:5173")),
		SeedDemo:    getenv("SEED_DEMO", "true") == "true",
	}
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func splitList(s string) []string {
	out := make([]string, 0)
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
