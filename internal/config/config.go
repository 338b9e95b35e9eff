// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes bot settings such as
// platform credentials and identifiers, the persistence connection, the daily
// schedule, logging, the ops HTTP surface, and observability.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // zone database for SCHEDULE_TIMEZONE on minimal images

	"github.com/diamondburned/arikawa/v3/discord"
)

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "wyr-bot")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// DiscordConfig holds platform credentials and the snowflakes the bot acts on.
type DiscordConfig struct {
	Token            string            // DISCORD_TOKEN
	AppID            discord.AppID     // DISCORD_APP_ID
	GuildID          discord.GuildID   // DISCORD_GUILD_ID
	DailyChannelID   discord.ChannelID // DAILY_CHANNEL_ID
	AuthorizedUserID discord.UserID    // AUTHORIZED_USER_ID
	ErrorNotifyID    discord.UserID    // ERROR_NOTIFY_USER_ID (optional)
	Status           string            // BOT_STATUS
}

// ScheduleConfig holds the daily trigger and vote collection settings.
type ScheduleConfig struct {
	Default      string         // DEFAULT_SCHEDULE, e.g. "0 8 * * *"
	TimeZone     string         // SCHEDULE_TIMEZONE
	Location     *time.Location // resolved from TimeZone
	LiveReload   bool           // SCHEDULE_LIVE_RELOAD
	CollectorTTL time.Duration  // COLLECTOR_TTL
	Retention    time.Duration  // VOTE_RETENTION, 0 disables pruning
}

// ScrapeConfig holds the question source HTTP settings.
type ScrapeConfig struct {
	Timeout   time.Duration // SCRAPE_TIMEOUT
	UserAgent string        // SCRAPE_USER_AGENT
}

// NotifyConfig throttles direct messages sent to the error recipient.
type NotifyConfig struct {
	Rate  float64 // NOTIFY_RATE, tokens per second
	Burst int     // NOTIFY_BURST
}

// Config holds all configuration values for the bot process.
type Config struct {
	Discord  DiscordConfig
	Schedule ScheduleConfig
	Scrape   ScrapeConfig
	Notify   NotifyConfig

	// Persistence
	DBDriver string // sqlite|postgres
	DBDSN    string // sqlite path or postgres connection string

	// Ops HTTP
	HTTPAddr          string        // "" disables the server
	ReadHeaderTimeout time.Duration // e.g. 5s
	WriteTimeout      time.Duration // e.g. 10s
	GinMode           string        // debug|release|test

	// Logging
	LogLevel  string // debug|info|warn|error|fatal|panic
	LogPretty bool   // console writer instead of JSON

	// Observability
	OTEL OTELConfig
}

// PurgeConfig is the reduced configuration used by the command purge utility.
type PurgeConfig struct {
	Token     string
	AppID     discord.AppID
	GuildID   discord.GuildID
	LogLevel  string
	LogPretty bool
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		Discord: DiscordConfig{
			Token:  strings.TrimSpace(getenv("DISCORD_TOKEN", "")),
			Status: getenv("BOT_STATUS", "Tu préfères ?"),
		},
		Schedule: ScheduleConfig{
			Default:      strings.TrimSpace(getenv("DEFAULT_SCHEDULE", "0 8 * * *")),
			TimeZone:     getenv("SCHEDULE_TIMEZONE", "Europe/Paris"),
			LiveReload:   getbool("SCHEDULE_LIVE_RELOAD", true),
			CollectorTTL: getdur("COLLECTOR_TTL", 24*time.Hour),
			Retention:    getdur("VOTE_RETENTION", 0),
		},
		Scrape: ScrapeConfig{
			Timeout:   getdur("SCRAPE_TIMEOUT", 15*time.Second),
			UserAgent: getenv("SCRAPE_USER_AGENT", "wyr-bot/1.0"),
		},
		Notify: NotifyConfig{
			Rate:  getfloat("NOTIFY_RATE", 0.2),
			Burst: getint("NOTIFY_BURST", 3),
		},

		DBDriver: strings.ToLower(getenv("DB_DRIVER", "sqlite")),
		DBDSN:    getenv("DB_DSN", "bot.db"),

		HTTPAddr:          os.Getenv("HTTP_ADDR"),
		ReadHeaderTimeout: getdur("HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		WriteTimeout:      getdur("HTTP_WRITE_TIMEOUT", 10*time.Second),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty: getbool("LOG_PRETTY", false),

		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "wyr-bot"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}
	if _, ok := os.LookupEnv("HTTP_ADDR"); !ok {
		cfg.HTTPAddr = ":8081"
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	if cfg.DBDriver == "postgresql" || cfg.DBDriver == "pg" {
		cfg.DBDriver = "postgres"
	}

	// --- snowflakes ---
	var err error
	if cfg.Discord.AppID, err = snowflake[discord.AppID]("DISCORD_APP_ID", false); err != nil {
		return cfg, err
	}
	if cfg.Discord.GuildID, err = snowflake[discord.GuildID]("DISCORD_GUILD_ID", false); err != nil {
		return cfg, err
	}
	if cfg.Discord.DailyChannelID, err = snowflake[discord.ChannelID]("DAILY_CHANNEL_ID", true); err != nil {
		return cfg, err
	}
	if cfg.Discord.AuthorizedUserID, err = snowflake[discord.UserID]("AUTHORIZED_USER_ID", true); err != nil {
		return cfg, err
	}
	if cfg.Discord.ErrorNotifyID, err = snowflake[discord.UserID]("ERROR_NOTIFY_USER_ID", false); err != nil {
		return cfg, err
	}

	// --- validation ---
	if err := validateLogLevel(cfg.LogLevel); err != nil {
		return cfg, err
	}
	if cfg.Discord.Token == "" {
		return cfg, errors.New("DISCORD_TOKEN must not be empty")
	}
	switch cfg.DBDriver {
	case "sqlite", "postgres":
	default:
		return cfg, errors.New("DB_DRIVER must be one of: sqlite, postgres")
	}
	if strings.TrimSpace(cfg.DBDSN) == "" {
		return cfg, errors.New("DB_DSN must not be empty")
	}
	loc, err := time.LoadLocation(cfg.Schedule.TimeZone)
	if err != nil {
		return cfg, fmt.Errorf("SCHEDULE_TIMEZONE: %w", err)
	}
	cfg.Schedule.Location = loc
	if cfg.Schedule.Default == "" {
		return cfg, errors.New("DEFAULT_SCHEDULE must not be empty")
	}
	if cfg.Schedule.CollectorTTL <= 0 {
		return cfg, errors.New("COLLECTOR_TTL must be > 0")
	}
	if cfg.Schedule.Retention < 0 {
		return cfg, errors.New("VOTE_RETENTION must be >= 0")
	}
	if cfg.Scrape.Timeout <= 0 {
		return cfg, errors.New("SCRAPE_TIMEOUT must be > 0")
	}
	if cfg.Notify.Rate < 0 {
		return cfg, errors.New("NOTIFY_RATE must be >= 0")
	}
	if cfg.Notify.Burst < 1 {
		return cfg, errors.New("NOTIFY_BURST must be >= 1")
	}
	if cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// LoadPurge reads the subset of settings needed to purge guild commands.
func LoadPurge() (PurgeConfig, error) {
	cfg := PurgeConfig{
		Token:     strings.TrimSpace(getenv("DISCORD_TOKEN", "")),
		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty: getbool("LOG_PRETTY", true),
	}
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	if err := validateLogLevel(cfg.LogLevel); err != nil {
		return cfg, err
	}
	if cfg.Token == "" {
		return cfg, errors.New("DISCORD_TOKEN must not be empty")
	}
	var err error
	if cfg.AppID, err = snowflake[discord.AppID]("DISCORD_APP_ID", true); err != nil {
		return cfg, err
	}
	if cfg.GuildID, err = snowflake[discord.GuildID]("DISCORD_GUILD_ID", true); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateLogLevel(lvl string) error {
	switch lvl {
	case "debug", "info", "warn", "error", "fatal", "panic":
		return nil
	default:
		return errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
}

// ---- helpers ----

// snowflake parses a platform identifier from the environment. A missing
// optional value yields the zero (invalid) ID.
func snowflake[T ~uint64](k string, required bool) (T, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		if required {
			return 0, fmt.Errorf("%s must not be empty", k)
		}
		return 0, nil
	}
	sf, err := discord.ParseSnowflake(v)
	if err != nil || !sf.IsValid() {
		return 0, fmt.Errorf("%s must be a valid snowflake", k)
	}
	return T(sf), nil
}

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
