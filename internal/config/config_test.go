package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/neurolearn/shell/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), "neurolearn.toml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))

	return p
}

func TestLoad_defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	p := writeFile(t, `
[http]
listen = "127.0.0.1:9000"
max_in_flight = 10
request_timeout = "1.5s"
debug = true

[storage]
driver = "badger"
path = "/var/lib/neurolearn"

[log]
level = "debug"
format = "json"
`)

	cfg, err := config.Load(p)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.Listen)
	assert.Equal(t, 10, cfg.HTTP.MaxInFlight)
	assert.Equal(t, 1500*time.Millisecond, cfg.HTTP.RequestTimeout.Duration)
	assert.Equal(t, 60*time.Second, cfg.HTTP.BacklogTimeout.Duration)
	assert.True(t, cfg.HTTP.Debug)
	assert.Empty(t, cfg.API.BaseURL)
	assert.Equal(t, "http://127.0.0.1:9000", cfg.APIBaseURL())
	assert.Equal(t, config.DriverBadger, cfg.Storage.Driver)
	assert.Equal(t, "/var/lib/neurolearn", cfg.Storage.Path)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_errors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = config.Load(writeFile(t, "[http]\nlisten = "))
	assert.Error(t, err)

	_, err = config.Load(writeFile(t, "[http]\nlisten = \":1\"\nport = 2\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown keys http.port")

	_, err = config.Load(writeFile(t, "[http]\nrequest_timeout = \"soon\"\n"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	cfg := config.Default()
	cfg.HTTP.Listen = ""
	cfg.HTTP.BacklogLimit = 5
	cfg.HTTP.DebugUser = "admin"
	cfg.API.BaseURL = "localhost"
	cfg.Storage.Driver = "sqlite"
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)

	for _, msg := range []string{
		"http.listen is empty",
		"http.backlog_limit requires http.max_in_flight",
		"http.debug_password is empty",
		`api.base_url "localhost" is not an absolute URL`,
		`storage.driver "sqlite"`,
		`log.format "xml"`,
	} {
		assert.Contains(t, err.Error(), msg)
	}
}

func TestConfig_APIBaseURL(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://localhost:8000", cfg.APIBaseURL())

	for listen, want := range map[string]string{
		":9000":          "http://localhost:9000",
		"0.0.0.0:8080":   "http://localhost:8080",
		"[::]:8080":      "http://localhost:8080",
		"10.0.0.5:80":    "http://10.0.0.5:80",
		"[::1]:8000":     "http://[::1]:8000",
		"api.local:8443": "http://api.local:8443",
	} {
		cfg.HTTP.Listen = listen
		assert.Equal(t, want, cfg.APIBaseURL(), listen)
	}

	cfg.HTTP.Listen = ":9000"
	cfg.API.BaseURL = "https://neurolearn.example"
	assert.Equal(t, "https://neurolearn.example", cfg.APIBaseURL())
}
