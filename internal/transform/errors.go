package transform

import (
	"errors"
	"fmt"
)

// ErrTransform is matched by every TransformError.
var ErrTransform = errors.New("transform failed")

// TransformError reports a file that a pipeline stage could not rewrite.
// The owning item is not written.
type TransformError struct {
	Item   string
	File   string
	Stage  string
	Reason string
	Err    error
}

func (e *TransformError) Error() string {
	msg := fmt.Sprintf("transforming %s", e.File)
	if e.Item != "" {
		msg += fmt.Sprintf(" (%s)", e.Item)
	}
	msg += fmt.Sprintf(" at stage %s", e.Stage)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TransformError) Unwrap() error { return e.Err }

// Is matches ErrTransform.
func (e *TransformError) Is(target error) bool { return target == ErrTransform }

// Hint suggests how to recover.
func (e *TransformError) Hint() string {
	if e.Stage == StageErase {
		return `set "tsx": true in components.json to install the TypeScript source unchanged`
	}
	return "the registry item source may be malformed; report it to the registry author"
}
