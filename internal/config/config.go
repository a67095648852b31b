package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBPath        string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	SessionSecret string
	GinMode       string
	ServerAddr    string
	BaseURL       string
	LogLevel      string
	OpenAIAPIKey  string

	ResetTokenSecret string
	ResetTokenTTL    time.Duration

	// AuthBackends lists the permission backends registered at startup, by name.
	AuthBackends []string

	// LoginMaxAttempts disables login throttling when zero.
	LoginMaxAttempts int
	LoginLockout     time.Duration
}

var defaults = map[string]any{
	"DB_DRIVER":               "mysql",
	"DB_HOST":                 "localhost",
	"DB_PORT":                 "3306",
	"DB_USER":                 "taskuser",
	"DB_PASSWORD":             "taskpassword",
	"DB_NAME":                 "tasktrack",
	"DB_PATH":                 "./tasktrack.db",
	"REDIS_HOST":              "localhost",
	"REDIS_PORT":              "6379",
	"REDIS_PASSWORD":          "",
	"SESSION_SECRET":          "default-secret-key-change-me",
	"GIN_MODE":                "debug",
	"SERVER_ADDR":             ":8080",
	"BASE_URL":                "http://localhost:8080",
	"LOG_LEVEL":               "info",
	"OPENAI_API_KEY":          "",
	"RESET_TOKEN_SECRET":      "",
	"RESET_TOKEN_TTL_MINUTES": 60 * 24 * 3,
	"AUTH_BACKENDS":           "email",
	"LOGIN_MAX_ATTEMPTS":      0,
	"LOGIN_LOCKOUT_MINUTES":   15,
}

// Load reads configuration from the environment, an optional .env file and an
// optional config.yaml in the working directory or ./config.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("Failed to read config file: %v", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{
		DBDriver:         strings.ToLower(getString(v, "DB_DRIVER")),
		DBHost:           getString(v, "DB_HOST"),
		DBPort:           getString(v, "DB_PORT"),
		DBUser:           getString(v, "DB_USER"),
		DBPassword:       getString(v, "DB_PASSWORD"),
		DBName:           getString(v, "DB_NAME"),
		DBPath:           getString(v, "DB_PATH"),
		RedisHost:        getString(v, "REDIS_HOST"),
		RedisPort:        getString(v, "REDIS_PORT"),
		RedisPassword:    v.GetString("REDIS_PASSWORD"),
		SessionSecret:    getString(v, "SESSION_SECRET"),
		GinMode:          getString(v, "GIN_MODE"),
		ServerAddr:       getString(v, "SERVER_ADDR"),
		BaseURL:          strings.TrimRight(getString(v, "BASE_URL"), "/"),
		LogLevel:         getString(v, "LOG_LEVEL"),
		OpenAIAPIKey:     v.GetString("OPENAI_API_KEY"),
		ResetTokenSecret: v.GetString("RESET_TOKEN_SECRET"),
		ResetTokenTTL:    time.Duration(v.GetInt("RESET_TOKEN_TTL_MINUTES")) * time.Minute,
		AuthBackends:     splitList(getString(v, "AUTH_BACKENDS")),
		LoginMaxAttempts: v.GetInt("LOGIN_MAX_ATTEMPTS"),
		LoginLockout:     time.Duration(v.GetInt("LOGIN_LOCKOUT_MINUTES")) * time.Minute,
	}

	// Reset links fall back to the session secret so a single secret is enough in development.
	if cfg.ResetTokenSecret == "" {
		cfg.ResetTokenSecret = cfg.SessionSecret
	}

	return cfg
}

// RedisAddr returns host:port for the Redis server.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

func getString(v *viper.Viper, key string) string {
	value := strings.TrimSpace(v.GetString(key))
	if value == "" {
		if fallback, ok := defaults[key].(string); ok {
			return fallback
		}
	}
	return value
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}
