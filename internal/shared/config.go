package shared

import (
	_ "embed"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Google   GoogleConfig   `toml:"google"`
	Sheets   SheetsConfig   `toml:"sheets"`
	Session  SessionConfig  `toml:"session"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
}

// GoogleConfig contains the OAuth2 client registered with Google.
type GoogleConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// SheetsConfig addresses the spreadsheet holding the measurements.
type SheetsConfig struct {
	SpreadsheetID     string `toml:"spreadsheet_id"`
	Range             string `toml:"range"`
	RequestsPerMinute int    `toml:"requests_per_minute"`
}

// SessionConfig controls the credential lifecycle.
type SessionConfig struct {
	// RenewalBuffer is the assumed token lifetime, kept shorter than the provider's real one.
	RenewalBuffer string `toml:"renewal_buffer"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains settings for the loopback listener that receives the OAuth redirect.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// placeholders are the example values config.example.toml ships with.
var placeholders = map[string]bool{
	"your_google_client_id": true,
	"your_spreadsheet_id":   true,
}

func requireSetting(key, value string) error {
	switch {
	case value == "":
		return fmt.Errorf("%w: %s is empty", ErrMissingConfig, key)
	case placeholders[value]:
		return fmt.Errorf("%w: %s still holds the example value %q", ErrMissingConfig, key, value)
	}
	return nil
}

// Validate reports settings that must be filled in before the app can talk to Google.
func (c *Config) Validate() error {
	if err := requireSetting("google.client_id", c.Google.ClientID); err != nil {
		return err
	}
	if err := requireSetting("sheets.spreadsheet_id", c.Sheets.SpreadsheetID); err != nil {
		return err
	}
	if c.Sheets.Range == "" {
		return fmt.Errorf("%w: sheets.range is empty", ErrMissingConfig)
	}
	if _, err := c.Session.Buffer(); err != nil {
		return err
	}
	return nil
}

// Buffer parses RenewalBuffer, defaulting to 55 minutes when unset.
func (s SessionConfig) Buffer() (time.Duration, error) {
	if s.RenewalBuffer == "" {
		return 55 * time.Minute, nil
	}

	d, err := time.ParseDuration(s.RenewalBuffer)
	if err != nil {
		return 0, fmt.Errorf("%w: session.renewal_buffer: %v", ErrInvalidConfig, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: session.renewal_buffer must be positive", ErrInvalidConfig)
	}
	return d, nil
}

// Addr returns the host:port the OAuth callback listener binds to.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
