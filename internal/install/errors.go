package install

import (
	"errors"
	"fmt"
)

// ErrUnresolvedTarget is matched by every TargetError.
var ErrUnresolvedTarget = errors.New("unresolved target")

// TargetError reports a file whose destination cannot be determined.
type TargetError struct {
	Item   string
	File   string
	Reason string
}

func (e *TargetError) Error() string {
	return fmt.Sprintf("cannot place %s from %s: %s", e.File, e.Item, e.Reason)
}

// Is matches ErrUnresolvedTarget.
func (e *TargetError) Is(target error) bool { return target == ErrUnresolvedTarget }

// Hint suggests how to recover.
func (e *TargetError) Hint() string {
	return "pass --path to choose a directory, or ask the registry author to set a target for this file"
}
