package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeConfig(t *testing.T) string {
	t.Helper()

	for _, k := range []string{"CONFIG_FILE", "DB_DRIVER", "DB_DSN", "SQLITE_PATH", "NOTIFIER", "REDIS_URL", "SEED_SAMPLE_DATA"} {
		t.Setenv(k, "")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "clinicctl.toml")
	body := "[db]\ndriver = \"sqlite\"\nsqlite_path = \"" + filepath.ToSlash(filepath.Join(dir, "vax.db")) + "\"\n\n[log]\nlevel = \"error\"\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestCatalogCmd(t *testing.T) {
	out, err := runCmd(t, "catalog")
	require.NoError(t, err)

	assert.Contains(t, out, "rabies-1y")
	assert.Contains(t, out, "deworming-2w")
	assert.Contains(t, out, "Anti-fleas")
}

func TestDueScanHistory_SQLite(t *testing.T) {
	cfg := writeConfig(t)

	out, err := runCmd(t, "due", "--config", cfg, "--seed", "--now", "2025-03-10", "--days", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Whiskers")
	assert.Contains(t, out, "Buddy")
	assert.Contains(t, out, "2025-03-12")
	assert.NotContains(t, out, "Max")

	out, err = runCmd(t, "scan", "--config", cfg, "--now", "2025-03-10", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "selected=2 skipped=0")

	out, err = runCmd(t, "scan", "--config", cfg, "--now", "2025-03-10")
	require.NoError(t, err)
	assert.Contains(t, out, "selected=2 sent=2 failed=0 skipped=0")

	// los flags quedaron persistidos: el segundo scan no selecciona nada
	out, err = runCmd(t, "scan", "--config", cfg, "--now", "2025-03-10")
	require.NoError(t, err)
	assert.Contains(t, out, "selected=0 sent=0")

	out, err = runCmd(t, "history", "pet-2", "--config", cfg, "--outcome", "sent")
	require.NoError(t, err)
	assert.Contains(t, out, "sent")
	assert.Contains(t, out, "log")
}

func TestWhatsAppCmd(t *testing.T) {
	cfg := writeConfig(t)

	_, err := runCmd(t, "due", "--config", cfg, "--seed", "--now", "2025-03-10")
	require.NoError(t, err)

	out, err := runCmd(t, "whatsapp", "pet-1", "nope", "--config", cfg)
	assert.Error(t, err)
	assert.Empty(t, out)
}

func TestDueCmd_InvalidArgs(t *testing.T) {
	_, err := runCmd(t, "due", "--days", "500")
	assert.Error(t, err)

	cfg := writeConfig(t)
	_, err = runCmd(t, "due", "--config", cfg, "--now", "10/03/2025")
	assert.Error(t, err)

	_, err = runCmd(t, "history", "pet-1", "--config", cfg, "--outcome", "bounced")
	assert.Error(t, err)
}
