package internal

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/notesman/internal/ledger"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Ledger LedgerConfig      `yaml:"ledger"`
	Watch  WatchConfig       `yaml:"watch"`
	Auth   AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Ledger.Validate(); err != nil {
		return fmt.Errorf("ledger: %w", err)
	}
	if err := c.Watch.Validate(); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// LedgerConfig controls how ledger documents are recognised and named.
type LedgerConfig struct {
	// Extension every current document must carry, including the dot.
	Extension string `yaml:"extension"`
	// Naming selects the side-document naming scheme: auto, dotted or legacy.
	Naming  string       `yaml:"naming"`
	Markers ledger.Rules `yaml:"markers"`
}

// Validate validates the ledger configuration.
func (c *LedgerConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Extension, validation.Required, validation.By(func(v interface{}) error {
			if s, _ := v.(string); !strings.HasPrefix(s, ".") {
				return fmt.Errorf("must start with a dot")
			}
			return nil
		})),
		validation.Field(&c.Naming, validation.In(ledger.NamingAuto, ledger.NamingDotted, ledger.NamingLegacy)),
	); err != nil {
		return err
	}
	return c.Markers.Validate()
}

// WatchConfig holds file watcher settings used by the watch and serve modes.
type WatchConfig struct {
	// Debounce is how long the document must stay quiet before a run.
	Debounce time.Duration `yaml:"debounce"`
	// AutoProcess runs the ledger when the current document changes. When
	// false, changes are only reported.
	AutoProcess bool `yaml:"auto_process"`
}

// Validate validates the watcher configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Required, validation.Min(10*time.Millisecond)),
	)
}

// AuthConfig holds authentication configuration for the HTTP API.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Ledger: LedgerConfig{
			Extension: ".md",
			Naming:    ledger.NamingAuto,
			Markers:   ledger.DefaultRules(),
		},
		Watch: WatchConfig{
			Debounce:    500 * time.Millisecond,
			AutoProcess: true,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
