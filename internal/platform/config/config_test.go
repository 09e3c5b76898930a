package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv deja vacías las variables que lee Load durante el test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONFIG_FILE", "PORT", "DB_DRIVER", "DB_DSN", "SQLITE_PATH",
		"REMINDERS_ENABLED", "REMINDER_INTERVAL", "REMINDER_WINDOW_DAYS",
		"NOTIFIER", "WEBHOOK_URL", "WEBHOOK_API_KEY", "KAFKA_BROKERS", "KAFKA_TOPIC",
		"REDIS_URL", "CLINIC_NAME", "WHATSAPP_COUNTRY_CODE",
		"LOG_LEVEL", "LOG_FORMAT", "APP_NAME", "SEED_SAMPLE_DATA",
	} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, DriverMemory, cfg.DB.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Reminders.Interval)
	assert.Equal(t, 3, cfg.Reminders.WindowDays)
	assert.Equal(t, NotifierLog, cfg.Notifier.Kind)
	assert.Equal(t, "Andy Pet Clinic", cfg.Reminders.ClinicName)
	assert.False(t, cfg.SeedSampleData)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
addr = ":9090"
seed_sample_data = true

[db]
driver = "sqlite"
sqlite_path = "/tmp/vax.db"

[reminders]
interval = "1h"
window_days = 5
clinic_name = "Vet Norte"

[notifier]
kind = "kafka"

[notifier.kafka]
brokers = ["k1:9092", "k2:9092"]
topic = "reminders"
`)

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("REMINDER_WINDOW_DAYS", "2")
	t.Setenv("PORT", "7000")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "/tmp/vax.db", cfg.DB.SQLitePath)
	assert.Equal(t, time.Hour, cfg.Reminders.Interval)
	assert.Equal(t, 2, cfg.Reminders.WindowDays)
	assert.Equal(t, "Vet Norte", cfg.Reminders.ClinicName)
	assert.Equal(t, NotifierKafka, cfg.Notifier.Kind)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Notifier.KafkaBrokers)
	assert.Equal(t, "reminders", cfg.Notifier.KafkaTopic)
	assert.True(t, cfg.SeedSampleData)
}

func TestLoad_DSNImpliesPostgres(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DSN", "postgres://localhost/vax")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
}

func TestLoad_Errors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"bad interval", map[string]string{"REMINDER_INTERVAL": "daily"}},
		{"bad window", map[string]string{"REMINDER_WINDOW_DAYS": "three"}},
		{"bad bool", map[string]string{"SEED_SAMPLE_DATA": "maybe"}},
		{"unknown driver", map[string]string{"DB_DRIVER": "mongo"}},
		{"postgres without dsn", map[string]string{"DB_DRIVER": "postgres"}},
		{"webhook without url", map[string]string{"NOTIFIER": "webhook"}},
		{"kafka without brokers", map[string]string{"NOTIFIER": "kafka"}},
		{"unknown notifier", map[string]string{"NOTIFIER": "pigeon"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoad_BadFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "addr = "))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "[reminders]\ninterval = \"soon\"\n"))
	assert.Error(t, err)
}
