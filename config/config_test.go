package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.False(t, cfg.Database.Enabled())
	assert.Equal(t, "users.json", cfg.Storage.UsersFile)
	assert.Equal(t, "orders.json", cfg.Storage.OrdersFile)
	assert.Equal(t, "vidgen_session", cfg.Session.CookieName)
	assert.Equal(t, "GBP", cfg.PayPal.Currency)
	assert.Equal(t, PayPalSandboxURL, cfg.PayPal.APIBase())
	assert.Equal(t, 120, cfg.Replicate.TimeoutSeconds)
	assert.NotEmpty(t, cfg.Replicate.PlaceholderURL)
	assert.False(t, cfg.OSS.Enabled())
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
server:
  port: 9000
database:
  driver: sqlite
  dsn: app.db
paypal:
  env: live
  plan_ids:
    basic: P-BASIC
email:
  username: bot@example.com
plans:
  basic:
    name: Basic
    price: 19.99
    credits: 4
    max_duration: 10
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.True(t, cfg.Database.Enabled())
	assert.Equal(t, "app.db", cfg.Database.ConnString())
	assert.Equal(t, PayPalLiveURL, cfg.PayPal.APIBase())
	assert.Equal(t, "P-BASIC", cfg.PayPal.PlanIDs["basic"])
	assert.Equal(t, "bot@example.com", cfg.Email.From)
	assert.Equal(t, PlanConfig{Name: "Basic", Price: 19.99, Credits: 4, MaxDuration: 10}, cfg.Plans["basic"])
}

func TestLoad_LocalFileWins(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "server:\n  port: 9000\n")
	writeFile(t, dir, "config.local.yaml", "server:\n  port: 9100\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "server:\n  port: 9000\n")
	t.Setenv("SERVER_PORT", "9200")
	t.Setenv("SESSION_SECRET", "s3cret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9200, cfg.Server.Port)
	assert.Equal(t, "s3cret", cfg.Session.Secret)
}

func TestLoad_LegacyEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "user:pw@tcp(db:3306)/app")
	t.Setenv("PAYPAL_CLIENT_ID", "client")
	t.Setenv("PAYPAL_SECRET", "secret")
	t.Setenv("PAYPAL_PLAN_PRO", "P-PRO")
	t.Setenv("REPLICATE_API_TOKEN", "r8_token")
	t.Setenv("SMTP_EMAIL", "mail@example.com")
	t.Setenv("SMTP_PASS", "app-password")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "user:pw@tcp(db:3306)/app", cfg.Database.ConnString())
	assert.Equal(t, "client", cfg.PayPal.ClientID)
	assert.Equal(t, "secret", cfg.PayPal.Secret)
	assert.Equal(t, "P-PRO", cfg.PayPal.PlanIDs["pro"])
	assert.Equal(t, "r8_token", cfg.Replicate.APIToken)
	assert.Equal(t, "mail@example.com", cfg.Email.Username)
	assert.Equal(t, "mail@example.com", cfg.Email.From)
	assert.Equal(t, "app-password", cfg.Email.Password)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "VIDGEN_TEST_TOKEN=from-dotenv\nREPLICATE_API_TOKEN=from-dotenv\n")
	// godotenv 直接写进程环境，且不覆盖已有变量
	t.Setenv("REPLICATE_API_TOKEN", "")
	os.Unsetenv("REPLICATE_API_TOKEN")
	t.Cleanup(func() { os.Unsetenv("VIDGEN_TEST_TOKEN") })

	cfg, err := Load(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Replicate.APIToken)
	assert.Equal(t, "from-dotenv", os.Getenv("VIDGEN_TEST_TOKEN"))
}

func TestDatabaseConfig_ConnString(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 3306, Username: "u", Password: "p", Database: "app"}
	assert.True(t, c.Enabled())
	assert.Equal(t, "u:p@tcp(db:3306)/app?charset=utf8mb4&parseTime=True&loc=Local", c.ConnString())
}
