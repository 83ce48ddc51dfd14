package project

import (
	"errors"
	"fmt"

	"github.com/agentx-labs/uikit/internal/branding"
)

// ErrInvalidConfiguration is matched by every ConfigError.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// ConfigError reports a missing or invalid project setting.
type ConfigError struct {
	Path   string // file involved, if any
	Field  string // setting, e.g. "aliases.ui"
	Item   string // registry item that needed it, if any
	Reason string
	Remedy string // overrides the generated hint
	Err    error
}

func (e *ConfigError) Error() string {
	msg := "invalid configuration"
	if e.Path != "" {
		msg += " in " + e.Path
	}
	if e.Field != "" {
		msg += fmt.Sprintf(": %s", e.Field)
	}
	if e.Item != "" {
		msg += fmt.Sprintf(" (needed by %s)", e.Item)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Is matches ErrInvalidConfiguration.
func (e *ConfigError) Is(target error) bool { return target == ErrInvalidConfiguration }

// Hint suggests how to recover.
func (e *ConfigError) Hint() string {
	switch {
	case e.Remedy != "":
		return e.Remedy
	case e.Field != "":
		return fmt.Sprintf("set %q in %s", e.Field, branding.ConfigFileName())
	case e.Path != "":
		return fmt.Sprintf("fix %s; see %s for the expected shape", e.Path, branding.SchemaURL())
	default:
		return fmt.Sprintf("run %s from the project root", branding.CLIName())
	}
}
