package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultEnvFile is the dotenv file read when COMPASS_ENV_FILE is not set.
const DefaultEnvFile = ".env"

// Settings profiles and the resolvers they enable, in dispatch order.
var profiles = map[string][]string{
	"default":    {"Google", "Here"},
	"production": {"Google", "Here"},
	"dev":        {"Mock"},
	"test":       {"Mock"},
}

// Config holds the configuration settings for the geocoding service.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - Settings: The settings profile selecting the default resolvers.
// - Resolvers: The ordered resolver names; the first one is the primary.
// - Port: The port for the HTTP API and monitoring endpoints.
// - HTTPTimeout: The transport timeout of a single provider request.
// - Workers: The number of concurrent backfill workers.
// - Interval: The duration between backfill polls.
// - Database: Configuration settings for the PostgreSQL database.
type Config struct {
	Env         string         // Env is the current environment: local, development, production.
	Settings    string         // Settings is the profile name: default, production, dev, test.
	Resolvers   []string       // Resolvers lists provider names in dispatch order.
	Port        int            // Port is the HTTP server port.
	HTTPTimeout time.Duration  // HTTPTimeout bounds a single provider request.
	Workers     int            // Workers is the number of concurrent backfill workers.
	Interval    time.Duration  // Interval is the duration between backfill polls.
	BatchSize   int            // BatchSize is the number of addresses fetched per poll.
	MaxAttempts int            // MaxAttempts is the number of tries before an address is left alone.
	Database    PostgresConfig // Database holds the postgres database configuration
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string // Host is the database server address.
	Port     string // Port is the database server port.
	User     string // User is the database user.
	Password string // Password is the database user's password.
	Name     string // Name is the name of the database.
}

// EnvFile returns the dotenv file path configured by COMPASS_ENV_FILE.
func EnvFile() string {
	if path, ok := os.LookupEnv("COMPASS_ENV_FILE"); ok {
		return path
	}

	return DefaultEnvFile
}

// MustLoad reads the configuration from the process environment, falling back to the
// optional dotenv file at envFile. It panics on malformed values.
func MustLoad(envFile string) *Config {
	v := viper.New()
	v.SetDefault("settings", "default")
	v.SetDefault("compass_env", "production")
	v.SetDefault("compass_port", "5000")
	v.SetDefault("compass_http_timeout", "10s")
	v.SetDefault("compass_workers", "10")
	v.SetDefault("compass_interval", "10m")
	v.SetDefault("compass_batch_size", "100")
	v.SetDefault("compass_max_attempts", "5")
	v.SetDefault("db_port", "5432")

	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			v.SetConfigFile(envFile)
			v.SetConfigType("env")
			if err = v.ReadInConfig(); err != nil {
				panic("failed to read env file " + envFile)
			}
		}
	}
	v.AutomaticEnv()

	settings := strings.ToLower(v.GetString("settings"))
	resolvers, ok := profiles[settings]
	if !ok {
		panic("unknown settings profile " + settings + ", expected default, production, dev or test")
	}
	if override := v.GetString("geocoding_resolvers"); override != "" {
		resolvers = splitList(override)
	}

	port, err := strconv.Atoi(v.GetString("compass_port"))
	if err != nil {
		panic("failed to parse port from configuration")
	}

	timeout, err := time.ParseDuration(v.GetString("compass_http_timeout"))
	if err != nil {
		panic("failed to parse http timeout from configuration")
	}

	interval, err := time.ParseDuration(v.GetString("compass_interval"))
	if err != nil {
		panic("failed to parse interval from configuration")
	}

	workers, err := strconv.Atoi(v.GetString("compass_workers"))
	if err != nil {
		panic("failed to parse workers from configuration, must be an integer types")
	}

	batchSize, err := strconv.Atoi(v.GetString("compass_batch_size"))
	if err != nil {
		panic("failed to parse batch size from configuration")
	}

	maxAttempts, err := strconv.Atoi(v.GetString("compass_max_attempts"))
	if err != nil {
		panic("failed to parse max attempts from configuration")
	}

	return &Config{
		Env:         v.GetString("compass_env"),
		Settings:    settings,
		Resolvers:   resolvers,
		Port:        port,
		HTTPTimeout: timeout,
		Workers:     workers,
		Interval:    interval,
		BatchSize:   batchSize,
		MaxAttempts: maxAttempts,
		Database: PostgresConfig{
			Host:     v.GetString("db_host"),
			Port:     v.GetString("db_port"),
			User:     v.GetString("db_username"),
			Password: v.GetString("db_password"),
			Name:     v.GetString("db_name"),
		},
	}
}

// Environ returns the variables of the optional dotenv file overlaid with the process
// environment. Provider credentials are looked up in this map.
func Environ(envFile string) map[string]string {
	env := map[string]string{}
	if envFile != "" {
		if values, err := godotenv.Read(envFile); err == nil {
			env = values
		}
	}

	for _, entry := range os.Environ() {
		if key, value, ok := strings.Cut(entry, "="); ok {
			env[key] = value
		}
	}

	return env
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	return items
}
