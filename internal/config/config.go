// Package config loads ziactl settings from a YAML file and ZIA_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/tphakala/go-zia"
)

const envconfigPrefix = "ZIA"

// Config holds the connection settings for one ZIA tenant.
type Config struct {
	// Cloud is the API host, e.g. zsapi.zscalerbeta.net.
	Cloud       string        `yaml:"url"`
	Username    string        `yaml:"username"`
	Password    string        `yaml:"password"`
	APIKey      string        `yaml:"cloud_api_key" split_words:"true"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts int           `yaml:"max_attempts" split_words:"true"`
}

// Load reads path, when given, and then applies environment overrides
// (ZIA_CLOUD, ZIA_USERNAME, ZIA_PASSWORD, ZIA_API_KEY, ZIA_TIMEOUT,
// ZIA_MAX_ATTEMPTS).
// A missing file is an error; an empty path skips the file.
func Load(path string) (*Config, error) {
	c := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process(envconfigPrefix, c); err != nil {
		return nil, fmt.Errorf("error getting configuration from environment: %w", err)
	}

	return c, nil
}

// Validate reports every missing or invalid setting at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.Cloud == "" {
		result = multierror.Append(result, errors.New("url (ZIA_CLOUD) is required"))
	}
	if c.Username == "" {
		result = multierror.Append(result, errors.New("username (ZIA_USERNAME) is required"))
	}
	if c.Password == "" {
		result = multierror.Append(result, errors.New("password (ZIA_PASSWORD) is required"))
	}
	if c.APIKey == "" {
		result = multierror.Append(result, errors.New("cloud_api_key (ZIA_API_KEY) is required"))
	}
	if c.Timeout < 0 {
		result = multierror.Append(result, fmt.Errorf("timeout must not be negative, got %s", c.Timeout))
	}
	if c.MaxAttempts < 0 {
		result = multierror.Append(result, fmt.Errorf("max_attempts must not be negative, got %d", c.MaxAttempts))
	}

	return result.ErrorOrNil()
}

// ClientOptions translates the settings into client options. Zero values
// leave the client defaults in place.
func (c *Config) ClientOptions() []zia.ClientOption {
	opts := []zia.ClientOption{
		zia.WithCloud(c.Cloud),
		zia.WithCredentials(c.Username, c.Password, c.APIKey),
	}
	if c.Timeout > 0 {
		opts = append(opts, zia.WithTimeout(c.Timeout))
	}
	if c.MaxAttempts > 0 {
		opts = append(opts, zia.WithMaxAttempts(c.MaxAttempts))
	}
	return opts
}
