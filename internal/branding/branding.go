// Package branding provides compile-time identity values for the CLI.
//
// Forkers edit branding.yaml in this package; Go's //go:embed bakes it into
// the binary.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName         string `yaml:"cli_name"`
	DisplayName     string `yaml:"display_name"`
	Description     string `yaml:"description"`
	HomeDir         string `yaml:"home_dir"`
	EnvPrefix       string `yaml:"env_prefix"`
	GoModule        string `yaml:"go_module"`
	RegistryURL     string `yaml:"registry_url"`
	RegistryName    string `yaml:"registry_name"`
	SchemaURL       string `yaml:"schema_url"`
	ConfigFileName  string `yaml:"config_file_name"`
	PlaceholderIcon string `yaml:"placeholder_icon"`
}

func load() {
	once.Do(func() {
		// Set hard defaults in case the embedded file is missing/empty.
		defaults = brand{
			CLIName:         "uikit",
			DisplayName:     "UIKit",
			Description:     "Copy UI components from a registry into your project",
			HomeDir:         ".uikit",
			EnvPrefix:       "UIKIT",
			GoModule:        "github.com/agentx-labs/uikit",
			RegistryURL:     "https://ui.shadcn.com/r",
			RegistryName:    "@shadcn",
			SchemaURL:       "https://ui.shadcn.com/schema.json",
			ConfigFileName:  "components.json",
			PlaceholderIcon: "IconPlaceholder",
		}
		// Overlay with embedded YAML values.
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "uikit").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name (e.g., "UIKit").
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".uikit").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "UIKIT").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GoModule returns the Go module path. Not consumed at runtime.
func GoModule() string { load(); return defaults.GoModule }

// RegistryURL returns the base URL of the built-in registry.
func RegistryURL() string { load(); return defaults.RegistryURL }

// RegistryName returns the namespace of the built-in registry (e.g., "@shadcn").
func RegistryName() string { load(); return defaults.RegistryName }

// SchemaURL returns the $schema value written into new project config files.
func SchemaURL() string { load(); return defaults.SchemaURL }

// ConfigFileName returns the project config file name (e.g., "components.json").
func ConfigFileName() string { load(); return defaults.ConfigFileName }

// PlaceholderIcon returns the JSX element name registry sources use for
// library-agnostic icons.
func PlaceholderIcon() string { load(); return defaults.PlaceholderIcon }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("HOME") → "UIKIT_HOME".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
