package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agentx-labs/uikit/internal/branding"
)

// Sentinels matched with errors.Is.
var (
	ErrItemNotFound     = errors.New("registry item not found")
	ErrCyclicDependency = errors.New("cyclic registry dependency")
)

// ItemNotFoundError reports a reference that no source could serve. Timeouts
// and transport failures are reported this way too, with the cause in Err.
type ItemNotFoundError struct {
	Name   string // reference as requested
	Source string // URL, directory, or bucket that was asked
	Err    error  // underlying cause, if any
}

func (e *ItemNotFoundError) Error() string {
	msg := fmt.Sprintf("item %q not found", e.Name)
	if e.Source != "" {
		msg += " at " + e.Source
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ItemNotFoundError) Unwrap() error { return e.Err }

// Is matches ErrItemNotFound.
func (e *ItemNotFoundError) Is(target error) bool { return target == ErrItemNotFound }

// Hint suggests how to recover.
func (e *ItemNotFoundError) Hint() string {
	return fmt.Sprintf("check the name with `%s view %s`, or the registry with `%s config get registry.url`",
		branding.CLIName(), e.Name, branding.CLIName())
}

// CycleError reports a registry dependency cycle. Path starts and ends with
// the same item, e.g. [a b a].
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return "cyclic dependency: " + strings.Join(e.Path, " → ")
}

// Is matches ErrCyclicDependency.
func (e *CycleError) Is(target error) bool { return target == ErrCyclicDependency }

// Hint suggests how to recover.
func (e *CycleError) Hint() string {
	return "remove one of the registryDependencies edges in the cycle, or install the items with --no-deps"
}

func notFound(name, source string, err error) error {
	if errors.Is(err, errNotFoundStatus) {
		err = nil
	}
	return &ItemNotFoundError{Name: name, Source: source, Err: err}
}
