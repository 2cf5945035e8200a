package config

import (
	"fmt"
	"net/mail"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/nishad/ffqf/internal/errors"
	"github.com/nishad/ffqf/internal/models"
	"github.com/nishad/ffqf/internal/paths"
)

const (
	DefaultENAURL  = "https://www.ebi.ac.uk/ena/portal/api/"
	DefaultNCBIURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/"
	DefaultTool    = "ffqf"
	DefaultTimeout = 30 * time.Second

	defaultENAConcurrency = 10
	// NCBI allows 3 requests per second, 10 with an API key.
	defaultNCBIConcurrency = 3
	ncbiAPIKeyRate         = 10
)

// Config represents the ffqf configuration. It is read once at startup and
// passed by value afterwards.
type Config struct {
	ENA  APISettings `yaml:"ena"`  // ENA portal API (run mapping and run information)
	NCBI APISettings `yaml:"ncbi"` // NCBI E-utilities (file links)
}

// APISettings contains the settings of one upstream API
type APISettings struct {
	BaseURL           string        `yaml:"api_url"`
	Timeout           time.Duration `yaml:"timeout"`             // per request
	Concurrency       int           `yaml:"concurrency"`         // max simultaneous requests
	RequestsPerSecond float64       `yaml:"requests_per_second"` // max request rate
	Email             string        `yaml:"email,omitempty"`
	Tool              string        `yaml:"tool,omitempty"`
	APIKey            string        `yaml:"api_key,omitempty"`
	Fields            []string      `yaml:"fields,omitempty"` // ENA run information fields
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		ENA: APISettings{
			BaseURL:           DefaultENAURL,
			Timeout:           DefaultTimeout,
			Concurrency:       defaultENAConcurrency,
			RequestsPerSecond: defaultENAConcurrency,
			Fields:            models.Fields(),
		},
		NCBI: APISettings{
			BaseURL:           DefaultNCBIURL,
			Timeout:           DefaultTimeout,
			Concurrency:       defaultNCBIConcurrency,
			RequestsPerSecond: defaultNCBIConcurrency,
			Tool:              DefaultTool,
		},
	}
}

// Load loads configuration from a YAML file on top of the defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	const op errors.Op = "config.Load"

	// Start with defaults
	config := DefaultConfig()

	path = paths.ExpandHome(path)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.E(op, errors.KindConfig, err, "failed to read config file")
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.E(op, errors.KindConfig, err, "failed to parse config file")
	}

	return config, nil
}

// Save writes the configuration to path as YAML. The file may hold an API
// key, so it is only readable by the owner.
func (c *Config) Save(path string) error {
	const op errors.Op = "config.Save"

	path = paths.ExpandHome(path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.E(op, errors.KindIO, err, "failed to create config directory")
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.E(op, errors.KindConfig, err, "failed to marshal config")
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.E(op, errors.KindIO, err, "failed to write config file")
	}

	return nil
}

// ReadDotEnv reads KEY=value pairs from a .env file without touching the
// process environment. A missing file yields an empty map.
func ReadDotEnv(path string) (map[string]string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return map[string]string{}, nil
	}

	env, err := godotenv.Read(path)
	if err != nil {
		return nil, errors.E(errors.Op("config.ReadDotEnv"), errors.KindConfig, err,
			"failed to parse "+path)
	}

	return env, nil
}

// LookupFunc finds the value of an environment variable.
type LookupFunc func(key string) (string, bool)

// Lookup returns a LookupFunc that prefers the process environment and falls
// back to the given .env values.
func Lookup(dotenv map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
}

// ApplyEnv overrides settings from FFQF_ENA_* and FFQF_NCBI_* variables.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if err := c.ENA.applyEnv("FFQF_ENA_", lookup); err != nil {
		return err
	}
	return c.NCBI.applyEnv("FFQF_NCBI_", lookup)
}

func (s *APISettings) applyEnv(prefix string, lookup LookupFunc) error {
	const op errors.Op = "config.ApplyEnv"

	str := func(name string, dst *string) {
		if v, ok := lookup(prefix + name); ok && v != "" {
			*dst = v
		}
	}

	str("API_URL", &s.BaseURL)
	str("EMAIL", &s.Email)
	str("TOOL", &s.Tool)
	str("API_KEY", &s.APIKey)

	if v, ok := lookup(prefix + "FIELDS"); ok && v != "" {
		s.Fields = strings.Split(v, ",")
	}

	if v, ok := lookup(prefix + "TIMEOUT"); ok && v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return errors.E(op, errors.KindConfig, err, prefix+"TIMEOUT")
		}
		s.Timeout = d
	}

	if v, ok := lookup(prefix + "CONCURRENCY"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.E(op, errors.KindConfig, err, prefix+"CONCURRENCY")
		}
		s.Concurrency = n
	}

	if v, ok := lookup(prefix + "RATE"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.E(op, errors.KindConfig, err, prefix+"RATE")
		}
		s.RequestsPerSecond = f
	}

	return nil
}

// parseTimeout accepts Go durations ("10s") and plain seconds ("10").
func parseTimeout(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}

// ApplyDefaults fills in settings derived from other settings.
func (c *Config) ApplyDefaults() {
	if c.NCBI.APIKey != "" && c.NCBI.RequestsPerSecond == defaultNCBIConcurrency {
		c.NCBI.RequestsPerSecond = ncbiAPIKeyRate
	}
	if len(c.ENA.Fields) == 0 {
		c.ENA.Fields = models.Fields()
	}
}

// Finalize applies derived defaults and validates the configuration.
func (c *Config) Finalize() error {
	c.ApplyDefaults()
	return c.Validate()
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	if err := c.ENA.validate("ena"); err != nil {
		return err
	}
	if err := c.NCBI.validate("ncbi"); err != nil {
		return err
	}

	const op errors.Op = "config.Validate"

	if c.NCBI.Email == "" {
		return errors.Errorf(op, errors.KindConfig,
			"an email address is required to identify with the NCBI E-utilities")
	}
	if _, err := mail.ParseAddress(c.NCBI.Email); err != nil {
		return errors.E(op, errors.KindConfig, err, fmt.Sprintf("invalid email %q", c.NCBI.Email))
	}

	return nil
}

func (s *APISettings) validate(name string) error {
	const op errors.Op = "config.Validate"

	u, err := url.Parse(s.BaseURL)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.Errorf(op, errors.KindConfig, "%s: api_url %q is not an absolute http(s) URL",
			name, s.BaseURL)
	}
	if s.Timeout <= 0 {
		return errors.Errorf(op, errors.KindConfig, "%s: timeout must be positive", name)
	}
	if s.Concurrency <= 0 {
		return errors.Errorf(op, errors.KindConfig, "%s: concurrency must be positive", name)
	}
	if s.RequestsPerSecond <= 0 {
		return errors.Errorf(op, errors.KindConfig, "%s: requests_per_second must be positive", name)
	}

	return nil
}
