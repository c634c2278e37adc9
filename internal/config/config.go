// Package config loads application configuration from environment variables.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in the
// application: strings for identifiers and secrets, ints and durations for
// tunables.
type Config struct {
	Env                string        // application environment (e.g. "dev", "prod")
	Port               string        // HTTP port to listen on
	DBUser             string        // database username
	DBPass             string        // database password (optional)
	DBHost             string        // database host address
	DBPort             string        // database port number
	DBName             string        // database name
	JWTSecret          string        // secret used to sign staff JWTs
	AccessTTLMin       int           // access token time-to-live in minutes
	RefreshTTLDays     int           // refresh token time-to-live in days
	SlotGranularityMin int           // slot step in minutes, system-wide
	LockTimeout        time.Duration // booking write lock acquisition bound
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Booking tunables fall
// back to sensible defaults so a bare deployment still serves.
func Load() Config {
	return Config{
		Env:                must("APP_ENV"),
		Port:               must("APP_PORT"),
		DBUser:             must("DB_USER"),
		DBPass:             os.Getenv("DB_PASS"), // empty allowed
		DBHost:             must("DB_HOST"),
		DBPort:             must("DB_PORT"),
		DBName:             must("DB_NAME"),
		JWTSecret:          must("JWT_SECRET"),
		AccessTTLMin:       mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays:     mustInt("REFRESH_TOKEN_TTL_DAYS"),
		SlotGranularityMin: envInt("SLOT_GRANULARITY_MIN", 30),
		LockTimeout:        envDur("BOOKING_LOCK_TIMEOUT", 3*time.Second),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
