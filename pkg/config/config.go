/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ssargent/keepsake/pkg/codec"
)

// Config represents the keepsake configuration
type Config struct {
	DataDir   string   `yaml:"data_dir"`
	Extension string   `yaml:"extension"`
	Codec     string   `yaml:"codec"`
	Security  Security `yaml:"security"`
	Logging   Logging  `yaml:"logging"`
}

// Security contains settings for sealed codecs
type Security struct {
	Passphrase string `yaml:"passphrase,omitempty"`
}

// Logging contains logging configuration
type Logging struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		DataDir:   "./saves",
		Extension: "json",
		Codec:     "json",
		Logging: Logging{
			Level: "info",
		},
	}
}

// Validate checks that the configuration can build a store
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if strings.TrimPrefix(c.Extension, ".") == "" {
		return fmt.Errorf("extension is required")
	}
	if _, err := codec.ByName(c.Codec, c.Security.Passphrase); err != nil {
		return fmt.Errorf("invalid codec: %w", err)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}
	return nil
}

// LoadConfig reads the YAML file at configPath over DefaultConfig, so keys
// missing from the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config file does not exist: %s", configPath)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}
	config.Extension = strings.TrimPrefix(config.Extension, ".")

	return config, nil
}

// SaveConfig writes config as YAML, creating the parent directory. The file
// is 0600 because it may hold the sealed-codec passphrase.
func SaveConfig(config *Config, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateSecureKey returns n random bytes, hex encoded.
func GenerateSecureKey(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("key length must be positive, got %d", n)
	}
	key := make([]byte, n)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("failed to generate secure key: %w", err)
	}
	return hex.EncodeToString(key), nil
}

// BootstrapOptions selects what BootstrapConfig writes. Empty fields take
// the defaults; an empty Extension means the codec's own extension.
type BootstrapOptions struct {
	DataDir    string
	Codec      string
	Extension  string
	Passphrase string
	// Rekey replaces Passphrase with a fresh one. Records sealed with the
	// old passphrase can no longer be opened.
	Rekey bool
}

// BootstrapConfig writes a new configuration built from opts. Sealed codecs
// keep opts.Passphrase when one is given and get a generated one otherwise.
func BootstrapConfig(configPath string, opts BootstrapOptions) (*Config, error) {
	config := DefaultConfig()
	if opts.DataDir != "" {
		config.DataDir = opts.DataDir
	}
	if opts.Codec != "" {
		config.Codec = opts.Codec
	}

	if strings.HasPrefix(config.Codec, "sealed-") {
		config.Security.Passphrase = opts.Passphrase
		if config.Security.Passphrase == "" || opts.Rekey {
			passphrase, err := GenerateSecureKey(32) // 256 bits
			if err != nil {
				return nil, fmt.Errorf("failed to generate passphrase: %w", err)
			}
			config.Security.Passphrase = passphrase
		}
	}

	c, err := codec.ByName(config.Codec, config.Security.Passphrase)
	if err != nil {
		return nil, err
	}
	config.Extension = strings.TrimPrefix(opts.Extension, ".")
	if config.Extension == "" {
		config.Extension = codec.DefaultExtension(c)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns ~/.config/keepsake/config.yaml, or
// ./keepsake.yaml when there is no home directory.
func GetDefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "keepsake.yaml"
	}
	return filepath.Join(home, ".config", "keepsake", "config.yaml")
}

// ConfigExists reports whether a regular file sits at configPath.
func ConfigExists(configPath string) bool {
	info, err := os.Stat(configPath)
	return err == nil && info.Mode().IsRegular()
}
