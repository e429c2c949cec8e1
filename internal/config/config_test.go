package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigDefaultsWhenMissing(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadConfig(filepath.Join(dir, "missing.yaml"), filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "www.w3.org", cfg.Minutes.Host)
	assert.Equal(t, 1.0, cfg.Logic.RateLimit)
	assert.Equal(t, "outcomes", cfg.DB.Collections.Outcomes)
	assert.Equal(t, 30*time.Second, cfg.Timeout())
}

func TestLoadConfigYAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
log_level: debug
minutes:
  host: minutes.example.org
  respect_robots: true
logic:
  rate_limit: 2.5
  transcript: true
  repositories: [acme/widgets, did-core]
  max_concurrent_workers: 0
irc:
  nick: linker
  channels: ["#did"]
`)
	// godotenv writes to the process environment; t.Setenv restores it afterwards.
	t.Setenv("M2G_TOKEN", "")
	require.NoError(t, os.Unsetenv("M2G_TOKEN"))
	envFile := writeFile(t, dir, "test.env", "M2G_TOKEN=from-dotenv\nM2G_IRC_NICK=from-dotenv\n")
	t.Setenv("M2G_IRC_NICK", "from-env")
	t.Setenv("M2G_RATE_LIMIT", "0.5")

	cfg, err := LoadConfig(path, envFile)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "minutes.example.org", cfg.Minutes.Host)
	assert.True(t, cfg.Minutes.RespectRobots)
	assert.Equal(t, 0.5, cfg.Logic.RateLimit)
	assert.True(t, cfg.Logic.Transcript)
	assert.Equal(t, []string{"acme/widgets", "did-core"}, cfg.Logic.Repositories)
	assert.Equal(t, -1, cfg.Workers())
	assert.Equal(t, "from-dotenv", cfg.GitHub.Token)
	assert.Equal(t, "from-env", cfg.IRC.Nick)
	assert.Equal(t, []string{"#did"}, cfg.IRC.Channels)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	noEnv := filepath.Join(dir, "none.env")

	_, err := LoadConfig(writeFile(t, dir, "a.yaml", "logic:\n  rate_limit: 0\n"), noEnv)
	assert.Error(t, err)

	_, err = LoadConfig(writeFile(t, dir, "b.yaml", "logic:\n  repositories: [a/b/c]\n"), noEnv)
	assert.Error(t, err)

	_, err = LoadConfig(writeFile(t, dir, "c.yaml", "logic: [not, a, map]\n"), noEnv)
	assert.Error(t, err)
}

func TestValidateRateLimit(t *testing.T) {
	assert.NoError(t, ValidateRateLimit(0.1))
	for _, bad := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		assert.Error(t, ValidateRateLimit(bad))
	}
}

func TestEngineArgs(t *testing.T) {
	cfg := Default()
	date, err := ParseDate("2024-03-01")
	require.NoError(t, err)
	args := cfg.NewEngineArgs("#did", date)
	require.NoError(t, args.Validate())

	assert.Equal(t, "https://www.w3.org/2024/03/01-did-minutes.html", args.MinutesURL(cfg.Minutes.Host))
	assert.Equal(t, []string{"wg/did"}, args.GroupList())
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), args.MinDate())

	args.URL = "https://example.org/m.html"
	args.Groups = "wg/a,cg/b"
	assert.Equal(t, "https://example.org/m.html", args.MinutesURL(cfg.Minutes.Host))
	assert.Equal(t, []string{"wg/a", "cg/b"}, args.GroupList())

	args.Repositories = []string{"acme/widgets", "did-core"}
	repos, err := args.ExtraRepositories()
	require.NoError(t, err)
	require.Len(t, repos, 2)
	assert.Equal(t, "w3c/did-core", repos[1].String())

	args.Channel = ""
	assert.Error(t, args.Validate())
}
