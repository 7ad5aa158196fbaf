// Package config handles YAML configuration for sshcld.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file name looked up next to the
// executable (packaged defaults) and in the user's home directory.
const FileName = "sshcld.yaml"

// Connection template keys.
const (
	SSHConnectionKey    = "ssh_connection_string"
	AWSSSMConnectionKey = "aws_ssm_connection_string"
)

// Config is the merged configuration of one invocation.
type Config struct {
	DefaultCloud string `yaml:"default_cloud,omitempty"`
	CloudRegion  string `yaml:"cloud_region,omitempty"`
	CloudProfile string `yaml:"cloud_profile,omitempty"`

	SSHConnectionString           string `yaml:"ssh_connection_string,omitempty"`
	SSHConnectionStringEnabled    bool   `yaml:"ssh_connection_string_enabled,omitempty"`
	AWSSSMConnectionString        string `yaml:"aws_ssm_connection_string,omitempty"`
	AWSSSMConnectionStringEnabled bool   `yaml:"aws_ssm_connection_string_enabled,omitempty"`

	PrintableTags []string `yaml:"printable_tags,omitempty"`
	Filters       string   `yaml:"filters,omitempty"`

	// Extra keeps keys sshcld does not know about. Scalars among them are
	// available to connection templates as %key%.
	Extra map[string]any `yaml:",inline"`
}

// ConfigurationError is returned when no usable configuration exists.
type ConfigurationError struct {
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// DefaultPaths returns the packaged default and user configuration paths.
// A path that cannot be determined is returned empty and skipped by Load.
func DefaultPaths() (defaultPath, userPath string) {
	if exe, err := os.Executable(); err == nil {
		defaultPath = filepath.Join(filepath.Dir(exe), FileName)
	}
	if home, err := os.UserHomeDir(); err == nil {
		userPath = filepath.Join(home, FileName)
	}
	return defaultPath, userPath
}

// Load reads the default and user configuration files and merges them
// shallowly, user keys winning. Missing, unreadable and malformed files
// count as empty documents; if both are empty a ConfigurationError is
// returned.
func Load(defaultPath, userPath string) (*Config, error) {
	merged := merge(readDocument(defaultPath), readDocument(userPath))
	if len(merged) == 0 {
		return nil, &ConfigurationError{
			Message: "configuration cannot be empty, either default or user-defined configuration file should exist",
		}
	}

	cfg, err := decode(merged)
	if err != nil {
		return nil, &ConfigurationError{Message: "invalid configuration", Err: err}
	}
	return cfg, nil
}

// readDocument returns the top-level mapping of the YAML file at path.
func readDocument(path string) map[string]any {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			log.Debug().Str("path", path).Msg("config file not found")
		case errors.Is(err, fs.ErrPermission):
			log.Warn().Str("path", path).Msg("YAML config has incorrect permissions")
		default:
			log.Warn().Err(err).Str("path", path).Msg("YAML config cannot be read")
		}
		return nil
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("YAML config is invalid")
		return nil
	}

	log.Debug().Str("path", path).Int("keys", len(doc)).Msg("config file loaded")
	return doc
}

// merge overlays override on base one key at a time. Nested values are
// replaced, not merged.
func merge(base, override map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}

func decode(doc map[string]any) (*Config, error) {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode merged config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode merged config: %w", err)
	}
	return cfg, nil
}

// ConnectionTemplate returns the template stored under key and whether
// the connection string it builds is enabled. Unknown keys are looked up
// in Extra, with the toggle under key + "_enabled". An empty key stands
// for a provider without a native client: no template, gated by the
// native client toggle.
func (c *Config) ConnectionTemplate(key string) (tmpl string, enabled bool) {
	switch key {
	case SSHConnectionKey:
		return c.SSHConnectionString, c.SSHConnectionStringEnabled
	case AWSSSMConnectionKey:
		return c.AWSSSMConnectionString, c.AWSSSMConnectionStringEnabled
	case "":
		return "", c.AWSSSMConnectionStringEnabled
	}

	tmpl, _ = c.Extra[key].(string)
	enabled, _ = c.Extra[key+"_enabled"].(bool)
	return tmpl, enabled
}

// Variables returns the configuration values usable as %name% tokens in
// connection templates: every scalar key of the merged configuration.
// The modeled keys are always present, empty when unset, and
// printable_tags is joined with commas.
func (c *Config) Variables() map[string]string {
	vars := map[string]string{
		"default_cloud":                  c.DefaultCloud,
		"cloud_region":                   c.CloudRegion,
		"cloud_profile":                  c.CloudProfile,
		"filters":                        c.Filters,
		SSHConnectionKey:                 c.SSHConnectionString,
		SSHConnectionKey + "_enabled":    strconv.FormatBool(c.SSHConnectionStringEnabled),
		AWSSSMConnectionKey:              c.AWSSSMConnectionString,
		AWSSSMConnectionKey + "_enabled": strconv.FormatBool(c.AWSSSMConnectionStringEnabled),
		"printable_tags":                 strings.Join(c.PrintableTags, ","),
	}

	for k, v := range c.Extra {
		switch val := v.(type) {
		case string:
			vars[k] = val
		case bool, int, int64, float64:
			vars[k] = fmt.Sprint(val)
		}
	}
	return vars
}
