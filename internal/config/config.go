// Package config loads the bot configuration from environment variables. A
// .env file in the working directory, if present, is loaded first; variables
// already set in the environment take precedence over it.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/whisper/chat-bot/internal/message"
)

// Config holds the bot settings.
type Config struct {
	NATSURL           string
	RedisAddr         string
	DatabaseURL       string // Postgres settings store when set, Redis otherwise
	SettingsCacheTTL  time.Duration
	SettingsCacheSize int
	Language          string
	Platforms         []message.Platform
	MetricsAddr       string
}

// Default returns the configuration used when no variables are set.
func Default() Config {
	return Config{
		NATSURL:           "nats://localhost:4222",
		RedisAddr:         "localhost:6379",
		SettingsCacheTTL:  30 * time.Second,
		SettingsCacheSize: 10000,
		Language:          "en",
		Platforms:         []message.Platform{message.PlatformSlack, message.PlatformDiscord},
		MetricsAddr:       ":9102",
	}
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] .env: %v", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds the configuration from a variable lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	config := Default()

	if v := getenv("NATS_URL"); v != "" {
		config.NATSURL = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		config.RedisAddr = v
	}
	config.DatabaseURL = getenv("DATABASE_URL")
	if v := getenv("SETTINGS_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return config, fmt.Errorf("config: SETTINGS_CACHE_TTL: %w", err)
		}
		config.SettingsCacheTTL = d
	}
	if v := getenv("SETTINGS_CACHE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return config, fmt.Errorf("config: SETTINGS_CACHE_SIZE: invalid value %q", v)
		}
		config.SettingsCacheSize = n
	}
	if v := getenv("BOT_LANGUAGE"); v != "" {
		config.Language = v
	}
	if v := getenv("BOT_PLATFORMS"); v != "" {
		platforms, err := parsePlatforms(v)
		if err != nil {
			return config, err
		}
		config.Platforms = platforms
	}
	if v := getenv("METRICS_ADDR"); v != "" {
		config.MetricsAddr = v
	}

	return config, nil
}

func parsePlatforms(v string) ([]message.Platform, error) {
	var platforms []message.Platform
	for _, p := range strings.Split(v, ",") {
		switch p := message.Platform(strings.ToLower(strings.TrimSpace(p))); p {
		case "":
		case message.PlatformSlack, message.PlatformDiscord:
			platforms = append(platforms, p)
		default:
			return nil, fmt.Errorf("config: BOT_PLATFORMS: unknown platform %q", p)
		}
	}
	if len(platforms) == 0 {
		return nil, fmt.Errorf("config: BOT_PLATFORMS: no platforms enabled")
	}
	return platforms, nil
}
