// Package config arma la configuración del proceso: defaults, después un
// archivo TOML opcional y por último variables de entorno.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	NotifierLog     = "log"
	NotifierWebhook = "webhook"
	NotifierKafka   = "kafka"
)

type Config struct {
	Addr string

	DB struct {
		Driver     string
		DSN        string
		SQLitePath string
	}

	Reminders struct {
		Enabled     bool
		Interval    time.Duration
		WindowDays  int
		Concurrency int
		LockTTL     time.Duration
		ClinicName  string
		CountryCode string
	}

	Notifier struct {
		Kind string

		WebhookURL          string
		WebhookAPIKey       string
		WebhookAPIKeyHeader string
		WebhookTimeout      time.Duration

		KafkaBrokers []string
		KafkaTopic   string
	}

	// RedisURL vacío = sin lock distribuido (una sola réplica).
	RedisURL string

	Log struct {
		Level  string
		Format string
		App    string
	}

	SeedSampleData bool
}

// Default devuelve la configuración de dev: memoria, log notifier, scan diario.
func Default() *Config {
	c := &Config{Addr: ":8080"}
	c.DB.Driver = DriverMemory
	c.DB.SQLitePath = "data/vaccinations.db"

	c.Reminders.Enabled = true
	c.Reminders.Interval = 24 * time.Hour
	c.Reminders.WindowDays = 3
	c.Reminders.Concurrency = 4
	c.Reminders.LockTTL = 10 * time.Minute
	c.Reminders.ClinicName = "Andy Pet Clinic"
	c.Reminders.CountryCode = "2"

	c.Notifier.Kind = NotifierLog
	c.Notifier.WebhookAPIKeyHeader = "X-Api-Key"
	c.Notifier.WebhookTimeout = 5 * time.Second
	c.Notifier.KafkaTopic = "vaccination-reminders"

	c.Log.Level = "info"
	c.Log.Format = "text"
	c.Log.App = "pet-vaccination-tracker"
	return c
}

// Load aplica defaults, archivo (path o CONFIG_FILE) y env, y valida.
func Load(path string) (*Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if strings.TrimSpace(path) != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate controla combinaciones que no tienen sentido.
func (c *Config) Validate() error {
	var errs []error

	switch c.DB.Driver {
	case DriverMemory, DriverSQLite:
	case DriverPostgres:
		if strings.TrimSpace(c.DB.DSN) == "" {
			errs = append(errs, errors.New("db: postgres driver requires DB_DSN"))
		}
	default:
		errs = append(errs, fmt.Errorf("db: unknown driver %q", c.DB.Driver))
	}

	if c.Reminders.Interval <= 0 {
		errs = append(errs, errors.New("reminders: interval must be > 0"))
	}
	if c.Reminders.WindowDays <= 0 {
		errs = append(errs, errors.New("reminders: window days must be > 0"))
	}
	if c.Reminders.Concurrency <= 0 {
		errs = append(errs, errors.New("reminders: concurrency must be > 0"))
	}

	switch c.Notifier.Kind {
	case NotifierLog:
	case NotifierWebhook:
		if strings.TrimSpace(c.Notifier.WebhookURL) == "" {
			errs = append(errs, errors.New("notifier: webhook requires WEBHOOK_URL"))
		}
	case NotifierKafka:
		if len(c.Notifier.KafkaBrokers) == 0 {
			errs = append(errs, errors.New("notifier: kafka requires KAFKA_BROKERS"))
		}
	default:
		errs = append(errs, fmt.Errorf("notifier: unknown kind %q", c.Notifier.Kind))
	}

	return errors.Join(errs...)
}

// fileConfig es el formato TOML. Las duraciones van como string ("24h").
type fileConfig struct {
	Addr string `toml:"addr"`

	DB struct {
		Driver     string `toml:"driver"`
		DSN        string `toml:"dsn"`
		SQLitePath string `toml:"sqlite_path"`
	} `toml:"db"`

	Reminders struct {
		Enabled     *bool  `toml:"enabled"`
		Interval    string `toml:"interval"`
		WindowDays  *int   `toml:"window_days"`
		Concurrency int    `toml:"concurrency"`
		LockTTL     string `toml:"lock_ttl"`
		ClinicName  string `toml:"clinic_name"`
		CountryCode string `toml:"country_code"`
	} `toml:"reminders"`

	Notifier struct {
		Kind string `toml:"kind"`

		Webhook struct {
			URL          string `toml:"url"`
			APIKey       string `toml:"api_key"`
			APIKeyHeader string `toml:"api_key_header"`
			Timeout      string `toml:"timeout"`
		} `toml:"webhook"`

		Kafka struct {
			Brokers []string `toml:"brokers"`
			Topic   string   `toml:"topic"`
		} `toml:"kafka"`
	} `toml:"notifier"`

	Redis struct {
		URL string `toml:"url"`
	} `toml:"redis"`

	Log struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
		App    string `toml:"app"`
	} `toml:"log"`

	SeedSampleData *bool `toml:"seed_sample_data"`
}

func (c *Config) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var f fileConfig
	if err := toml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}

	setString(&c.Addr, f.Addr)
	setString(&c.DB.Driver, f.DB.Driver)
	setString(&c.DB.DSN, f.DB.DSN)
	setString(&c.DB.SQLitePath, f.DB.SQLitePath)

	if f.Reminders.Enabled != nil {
		c.Reminders.Enabled = *f.Reminders.Enabled
	}
	if f.Reminders.WindowDays != nil {
		c.Reminders.WindowDays = *f.Reminders.WindowDays
	}
	if f.Reminders.Concurrency != 0 {
		c.Reminders.Concurrency = f.Reminders.Concurrency
	}
	setString(&c.Reminders.ClinicName, f.Reminders.ClinicName)
	setString(&c.Reminders.CountryCode, f.Reminders.CountryCode)

	setString(&c.Notifier.Kind, f.Notifier.Kind)
	setString(&c.Notifier.WebhookURL, f.Notifier.Webhook.URL)
	setString(&c.Notifier.WebhookAPIKey, f.Notifier.Webhook.APIKey)
	setString(&c.Notifier.WebhookAPIKeyHeader, f.Notifier.Webhook.APIKeyHeader)
	if len(f.Notifier.Kafka.Brokers) > 0 {
		c.Notifier.KafkaBrokers = f.Notifier.Kafka.Brokers
	}
	setString(&c.Notifier.KafkaTopic, f.Notifier.Kafka.Topic)

	setString(&c.RedisURL, f.Redis.URL)

	setString(&c.Log.Level, f.Log.Level)
	setString(&c.Log.Format, f.Log.Format)
	setString(&c.Log.App, f.Log.App)

	if f.SeedSampleData != nil {
		c.SeedSampleData = *f.SeedSampleData
	}

	var errs []error
	errs = append(errs, parseDuration(&c.Reminders.Interval, "reminders.interval", f.Reminders.Interval))
	errs = append(errs, parseDuration(&c.Reminders.LockTTL, "reminders.lock_ttl", f.Reminders.LockTTL))
	errs = append(errs, parseDuration(&c.Notifier.WebhookTimeout, "notifier.webhook.timeout", f.Notifier.Webhook.Timeout))
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		c.Addr = ":" + strings.TrimPrefix(v, ":")
	}
	overrideString(&c.DB.Driver, "DB_DRIVER")
	overrideString(&c.DB.DSN, "DB_DSN")
	overrideString(&c.DB.SQLitePath, "SQLITE_PATH")

	// DB_DSN sin DB_DRIVER: postgres, como antes
	if os.Getenv("DB_DRIVER") == "" && os.Getenv("DB_DSN") != "" {
		c.DB.Driver = DriverPostgres
	}

	overrideString(&c.Reminders.ClinicName, "CLINIC_NAME")
	overrideString(&c.Reminders.CountryCode, "WHATSAPP_COUNTRY_CODE")

	overrideString(&c.Notifier.Kind, "NOTIFIER")
	overrideString(&c.Notifier.WebhookURL, "WEBHOOK_URL")
	overrideString(&c.Notifier.WebhookAPIKey, "WEBHOOK_API_KEY")
	overrideString(&c.Notifier.KafkaTopic, "KAFKA_TOPIC")
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Notifier.KafkaBrokers = splitList(v)
	}

	overrideString(&c.RedisURL, "REDIS_URL")

	overrideString(&c.Log.Level, "LOG_LEVEL")
	overrideString(&c.Log.Format, "LOG_FORMAT")
	overrideString(&c.Log.App, "APP_NAME")

	return errors.Join(
		overrideBool(&c.Reminders.Enabled, "REMINDERS_ENABLED"),
		overrideDuration(&c.Reminders.Interval, "REMINDER_INTERVAL"),
		overrideInt(&c.Reminders.WindowDays, "REMINDER_WINDOW_DAYS"),
		overrideBool(&c.SeedSampleData, "SEED_SAMPLE_DATA"),
	)
}

func setString(dest *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dest = strings.TrimSpace(v)
	}
}

func parseDuration(dest *time.Duration, name, v string) error {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dest = d
	return nil
}

func overrideString(dest *string, key string) {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		*dest = val
	}
}

func overrideDuration(dest *time.Duration, key string) error {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dest = parsed
	return nil
}

func overrideBool(dest *bool, key string) error {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "1", "true", "yes", "y", "on":
		*dest = true
	case "0", "false", "no", "n", "off":
		*dest = false
	default:
		return fmt.Errorf("%s: invalid bool %q", key, val)
	}
	return nil
}

func overrideInt(dest *int, key string) error {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dest = parsed
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
