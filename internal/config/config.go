package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/agentx-labs/uikit/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Keys understood by the CLI.
const (
	KeyRegistryURL     = "registry.url"
	KeyRegistryTimeout = "registry.timeout"
	KeyConcurrency     = "concurrency"
)

// Defaults for settings that are absent from the file and environment.
const (
	DefaultRegistryTimeout = 30 * time.Second
	DefaultConcurrency     = 8
)

// Dir returns the path to the user config directory (~/.uikit/).
func Dir() string {
	if dir := os.Getenv(branding.EnvVar("HOME")); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.uikit/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
func Load() {
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.SetEnvKeyReplacer(envReplacer)
	viper.AutomaticEnv()

	viper.SetDefault(KeyRegistryURL, branding.RegistryURL())
	viper.SetDefault(KeyRegistryTimeout, DefaultRegistryTimeout.String())
	viper.SetDefault(KeyConcurrency, DefaultConcurrency)

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// RegistryURL returns the base URL of the default registry.
func RegistryURL() string {
	if u := viper.GetString(KeyRegistryURL); u != "" {
		return u
	}
	return branding.RegistryURL()
}

// RegistryTimeout returns the per-request timeout for remote registries.
// Unparseable values fall back to DefaultRegistryTimeout.
func RegistryTimeout() time.Duration {
	d := viper.GetDuration(KeyRegistryTimeout)
	if d <= 0 {
		return DefaultRegistryTimeout
	}
	return d
}

// Concurrency returns the fetch fan-out limit.
func Concurrency() int {
	n := viper.GetInt(KeyConcurrency)
	if n <= 0 {
		return DefaultConcurrency
	}
	return n
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
