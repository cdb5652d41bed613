// Package config loads NeuroLearn settings from TOML over defaults.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Storage drivers.
const (
	DriverMemory = "memory"
	DriverBadger = "badger"
)

// Config is the application configuration.
type Config struct {
	HTTP    HTTP    `toml:"http"`
	API     API     `toml:"api"`
	Storage Storage `toml:"storage"`
	Log     Log     `toml:"log"`
}

// HTTP configures the server.
type HTTP struct {
	Listen string `toml:"listen"`

	// MaxInFlight limits concurrently served requests, 0 disables the limit.
	MaxInFlight    int      `toml:"max_in_flight"`
	BacklogLimit   int      `toml:"backlog_limit"`
	BacklogTimeout Duration `toml:"backlog_timeout"`

	// RequestTimeout cancels request context after the duration, 0 disables it.
	RequestTimeout Duration `toml:"request_timeout"`

	// Debug mounts the profiler at /debug, guarded by basic auth when
	// DebugUser is set.
	Debug         bool   `toml:"debug"`
	DebugUser     string `toml:"debug_user"`
	DebugPassword string `toml:"debug_password"`
}

// API configures the resource store client.
type API struct {
	// BaseURL of the API, empty value points to the local server, see
	// Config.APIBaseURL.
	BaseURL string `toml:"base_url"`
}

// Storage selects the resource repository.
type Storage struct {
	Driver string `toml:"driver"`

	// Path is the badger directory, empty path keeps data in memory.
	Path string `toml:"path"`
}

// Log configures zap.
type Log struct {
	Level       string `toml:"level"`
	Format      string `toml:"format"`
	Development bool   `toml:"development"`
}

// Duration is a time.Duration decoded from strings like "1.5s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}

	d.Duration = v

	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns built-in settings.
func Default() Config {
	return Config{
		HTTP: HTTP{
			Listen:         ":8000",
			BacklogTimeout: Duration{60 * time.Second},
		},
		Storage: Storage{
			Driver: DriverMemory,
		},
		Log: Log{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the TOML file at path over defaults, empty path keeps defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}

		return Config{}, fmt.Errorf("read config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	return cfg, nil
}

// APIBaseURL returns api.base_url, or the address of the local server
// derived from http.listen when it is not set.
func (c Config) APIBaseURL() string {
	if c.API.BaseURL != "" {
		return c.API.BaseURL
	}

	host, port, err := net.SplitHostPort(c.HTTP.Listen)
	if err != nil {
		return "http://" + c.HTTP.Listen
	}

	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}

	return "http://" + net.JoinHostPort(host, port)
}

// Validate checks settings consistency.
func (c Config) Validate() error {
	var errs []error

	if c.HTTP.Listen == "" {
		errs = append(errs, errors.New("http.listen is empty"))
	}

	if c.HTTP.MaxInFlight < 0 || c.HTTP.BacklogLimit < 0 {
		errs = append(errs, errors.New("http limits must not be negative"))
	}

	if c.HTTP.BacklogLimit > 0 && c.HTTP.MaxInFlight == 0 {
		errs = append(errs, errors.New("http.backlog_limit requires http.max_in_flight"))
	}

	if c.HTTP.DebugUser != "" && c.HTTP.DebugPassword == "" {
		errs = append(errs, errors.New("http.debug_password is empty"))
	}

	if u, err := url.Parse(c.API.BaseURL); c.API.BaseURL != "" && (err != nil || u.Scheme == "" || u.Host == "") {
		errs = append(errs, fmt.Errorf("api.base_url %q is not an absolute URL", c.API.BaseURL))
	}

	switch c.Storage.Driver {
	case DriverMemory, DriverBadger:
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q is not one of %s, %s", c.Storage.Driver, DriverMemory, DriverBadger))
	}

	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not one of json, console", c.Log.Format))
	}

	return errors.Join(errs...)
}
