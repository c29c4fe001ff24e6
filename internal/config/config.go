package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by PARLEY_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("PARLEY_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}

// StoreBackend returns the session store backend.
// Defaults to "memory" if not set.
// Valid values: memory, sqlite, postgres
func StoreBackend() string {
	b := os.Getenv("STORE_BACKEND")
	if b == "" {
		return "memory"
	}
	return b
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

// SQLitePath returns the sqlite database path.
// Defaults to "parley.db" if not set.
func SQLitePath() string {
	p := os.Getenv("SQLITE_PATH")
	if p == "" {
		return "parley.db"
	}
	return p
}

// DomainPath returns the domain description file.
// Defaults to "domain.yaml" if not set.
func DomainPath() string {
	p := os.Getenv("DOMAIN_PATH")
	if p == "" {
		return "domain.yaml"
	}
	return p
}

// NLUProvider returns the configured interpreter.
// Defaults to "pattern" if not set.
// Valid values: pattern, mock
func NLUProvider() string {
	p := os.Getenv("NLU_PROVIDER")
	if p == "" {
		return "pattern"
	}
	return p
}

// NLGProvider returns the configured renderer.
// Defaults to "template" if not set.
// Valid values: template, mock
func NLGProvider() string {
	p := os.Getenv("NLG_PROVIDER")
	if p == "" {
		return "template"
	}
	return p
}

// MaxIterations returns the per-phase rule application cap.
// Defaults to 100 if not set.
func MaxIterations() int {
	n, err := strconv.Atoi(os.Getenv("MAX_ITERATIONS"))
	if err != nil || n <= 0 {
		return 100
	}
	return n
}

// SessionTTLHours returns how long idle sessions are retained.
// Defaults to 72 if not set.
func SessionTTLHours() int {
	n, err := strconv.Atoi(os.Getenv("SESSION_TTL_HOURS"))
	if err != nil || n <= 0 {
		return 72
	}
	return n
}

// MonitorRPS returns the snapshot reload rate limit.
// Defaults to 4 if not set.
func MonitorRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("MONITOR_RPS"), 64)
	if err != nil || rps <= 0 {
		return 4
	}
	return rps
}

// MonitorBurst returns the burst size for snapshot reloads.
// Defaults to 2 if not set.
func MonitorBurst() int {
	burst, err := strconv.Atoi(os.Getenv("MONITOR_BURST"))
	if err != nil || burst <= 0 {
		return 2
	}
	return burst
}

// AgentID returns the system speaker identifier.
// Defaults to "system" if not set.
func AgentID() string {
	id := os.Getenv("AGENT_ID")
	if id == "" {
		return "system"
	}
	return id
}
