package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Wiki    WikiConfig        `yaml:"wiki"`
	Archive ArchiveConfig     `yaml:"archive"`
	Queue   QueueConfig       `yaml:"queue"`
	Auth    AuthConfig        `yaml:"auth"`
	MRU     MRUConfig         `yaml:"mru"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Wiki.Validate(); err != nil {
		return err
	}
	if err := c.Archive.Validate(); err != nil {
		return err
	}
	if err := c.Queue.Validate(); err != nil {
		return err
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

// WikiConfig holds the path to the notes directory.
type WikiConfig struct {
	Location string `yaml:"location"`
}

// Validate validates the wiki configuration.
func (c *WikiConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Location, validation.Required),
	)
}

// ArchiveConfig holds the path to the compressed page archive.
type ArchiveConfig struct {
	Location string `yaml:"location"`
}

// Validate validates the archive configuration.
func (c *ArchiveConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Location, validation.Required),
	)
}

// QueueConfig holds the durable job queue configuration.
type QueueConfig struct {
	Path            string `yaml:"path"`
	BatchSize       int    `yaml:"batch_size"`
	DrainIntervalMS int    `yaml:"drain_interval_ms"`
}

// DrainInterval returns the idle pause between processor batches.
func (c *QueueConfig) DrainInterval() time.Duration {
	return time.Duration(c.DrainIntervalMS) * time.Millisecond
}

// Validate validates the queue configuration.
func (c *QueueConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.BatchSize, validation.Min(0)),
		validation.Field(&c.DrainIntervalMS, validation.Min(0)),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
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

// MRUConfig holds the recency cache configuration.
type MRUConfig struct {
	Size int `yaml:"size"`
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 6683,
			},
		},
		Wiki: WikiConfig{
			Location: "./wiki",
		},
		Archive: ArchiveConfig{
			Location: "./archive",
		},
		Queue: QueueConfig{
			Path: "./tendril-queue.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
