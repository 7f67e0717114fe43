/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ssargent/dtafile/pkg/dta"
	"gopkg.in/yaml.v3"
)

// Config represents the dtafile configuration
type Config struct {
	Codec   Codec   `yaml:"codec"`
	Server  Server  `yaml:"server"`
	Catalog Catalog `yaml:"catalog"`
	Logging Logging `yaml:"logging"`
}

// Codec holds the defaults applied to every decode and encode
type Codec struct {
	Charset       string `yaml:"charset"`
	TargetVersion string `yaml:"target_version"`
	Limits        Limits `yaml:"limits"`
}

// Limits bounds allocations driven by untrusted length fields
type Limits struct {
	MaxLabels    int `yaml:"max_labels"`
	MaxLabelText int `yaml:"max_label_text"`
	MaxCells     int `yaml:"max_cells"`
}

// Server contains HTTP API configuration
type Server struct {
	Port      int    `yaml:"port"`
	Bind      string `yaml:"bind"`
	APIKey    string `yaml:"api_key"`
	CacheSize int    `yaml:"cache_size"`
	MaxUpload int64  `yaml:"max_upload"`
}

// Catalog contains storage configuration for uploaded files
type Catalog struct {
	DataDir  string `yaml:"data_dir"`
	Compress bool   `yaml:"compress"`
}

// Logging contains logging configuration
type Logging struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Codec: Codec{
			Charset:       "raw",
			TargetVersion: "8",
			Limits: Limits{
				MaxLabels:    dta.DefaultLimits.MaxLabels,
				MaxLabelText: dta.DefaultLimits.MaxLabelText,
				MaxCells:     dta.DefaultLimits.MaxCells,
			},
		},
		Server: Server{
			Port:      8080,
			Bind:      "127.0.0.1",
			APIKey:    "auto",
			CacheSize: 64,
			MaxUpload: 256 << 20,
		},
		Catalog: Catalog{
			DataDir:  "./data",
			Compress: true,
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from the specified path
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// unset keys keep their defaults
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write with secure permissions (0600), the file may hold the API key
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks values that would otherwise fail much later
func (c *Config) Validate() error {
	if _, err := dta.CharmapByName(c.Codec.Charset); err != nil {
		return err
	}
	if _, err := c.Codec.Version(); err != nil {
		return err
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Server.Port)
	}
	if l := c.Codec.Limits; l.MaxLabels < 0 || l.MaxLabelText < 0 || l.MaxCells < 0 {
		return fmt.Errorf("codec limits must not be negative")
	}
	if _, err := parseLevel(c.Logging.Level); err != nil {
		return err
	}
	return nil
}

// Version returns the target generation for encodes
func (c Codec) Version() (dta.Version, error) {
	v, err := dta.ParseVersion(c.TargetVersion)
	if err != nil {
		return 0, err
	}
	if !v.Writable() {
		return 0, fmt.Errorf("target version %s cannot be written", v)
	}
	return v, nil
}

// Options turns the codec section into decoder and encoder options
func (c Codec) Options() ([]dta.Option, error) {
	cm, err := dta.CharmapByName(c.Charset)
	if err != nil {
		return nil, err
	}
	opts := []dta.Option{
		dta.WithLimits(dta.Limits{
			MaxLabels:    c.Limits.MaxLabels,
			MaxLabelText: c.Limits.MaxLabelText,
			MaxCells:     c.Limits.MaxCells,
		}),
	}
	if cm != nil {
		opts = append(opts, dta.WithCharmap(cm))
	}
	return opts, nil
}

// NewLogger builds a text logger at the configured level
func (l Logging) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(l.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

// GenerateSecureKey generates a cryptographically secure random key
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// BootstrapConfig writes a default configuration with a generated API key
func BootstrapConfig(configPath string, dataDir string) (*Config, error) {
	config := DefaultConfig()
	if dataDir != "" {
		config.Catalog.DataDir = dataDir
	}

	apiKey, err := GenerateSecureKey(32) // 256 bits
	if err != nil {
		return nil, fmt.Errorf("failed to generate API key: %w", err)
	}
	config.Server.APIKey = apiKey

	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./dtafile.yaml"
	}

	// For Linux/macOS, use ~/.config/dtafile/config.yaml
	configDir := filepath.Join(homeDir, ".config", "dtafile")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
