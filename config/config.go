package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends understood by TASK_STORE.
const (
	StoreFirestore = "firestore"
	StoreMemory    = "memory"
)

type Config struct {
	Port           string
	AllowedOrigins []string

	TaskStore               string
	FirebaseCredentialsPath string
	FirebaseProjectID       string
	TasksCollection         string
	AuthDisabled            bool

	DB DBConfig

	NatsURL string

	LogLevel string
	LogFile  string

	// Viewports narrower than this use the stacked (narrow) board layout.
	MobileBreakpoint float64
	WarningDismiss   time.Duration
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// Enabled reports whether a Postgres host was configured.
func (c DBConfig) Enabled() bool {
	return c.Host != ""
}

func Default() Config {
	return Config{
		Port:             "8080",
		AllowedOrigins:   []string{"*"},
		TaskStore:        StoreFirestore,
		TasksCollection:  "tasks",
		DB:               DBConfig{Port: "5432", SSLMode: "disable"},
		LogLevel:         "info",
		MobileBreakpoint: 768,
		WarningDismiss:   3 * time.Second,
	}
}

// Load reads the configuration from the environment, falling back to Default
// for anything unset. godotenv is expected to have run already.
func Load() Config {
	cfg := Default()

	if v := os.Getenv("SERVER_PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitList(v)
	}

	if v := strings.ToLower(os.Getenv("TASK_STORE")); v != "" {
		cfg.TaskStore = v
	}
	cfg.FirebaseCredentialsPath = os.Getenv("FIREBASE_CREDENTIALS_PATH")
	cfg.FirebaseProjectID = os.Getenv("FIREBASE_PROJECT_ID")
	if v := os.Getenv("TASKS_COLLECTION"); v != "" {
		cfg.TasksCollection = v
	}
	cfg.AuthDisabled = getEnvBool("AUTH_DISABLED")

	cfg.DB.Host = os.Getenv("DB_HOST")
	if v := os.Getenv("DB_PORT"); v != "" {
		cfg.DB.Port = v
	}
	cfg.DB.User = os.Getenv("DB_USER")
	cfg.DB.Password = os.Getenv("DB_PASSWORD")
	cfg.DB.Name = os.Getenv("DB_NAME")
	if v := os.Getenv("DB_SSLMODE"); v != "" {
		cfg.DB.SSLMode = v
	}

	cfg.NatsURL = os.Getenv("NATS_URL")

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	cfg.LogFile = os.Getenv("LOG_FILE")

	if v, err := strconv.ParseFloat(os.Getenv("MOBILE_BREAKPOINT"), 64); err == nil && v > 0 {
		cfg.MobileBreakpoint = v
	}
	if v, err := strconv.Atoi(os.Getenv("WARNING_DISMISS_MS")); err == nil && v > 0 {
		cfg.WarningDismiss = time.Duration(v) * time.Millisecond
	}

	return cfg
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}
