package transform

import (
	"context"
	"fmt"
	"slices"

	"github.com/agentx-labs/uikit/internal/logging"
	"github.com/agentx-labs/uikit/internal/manifest"
	"github.com/agentx-labs/uikit/internal/project"
)

// Context is what the stages know about the file being transformed: the
// owning item and the project seed. A Context may be reused for every file
// of one item.
type Context struct {
	Item *manifest.Item
	Seed *project.Seed

	warnings []Warning
	packages []string
}

// Warning is a non-fatal problem a stage left in place.
type Warning struct {
	File    string
	Stage   string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s (%s): %s", w.File, w.Stage, w.Message)
}

// Warnings returns the warnings collected so far.
func (c *Context) Warnings() []Warning { return c.warnings }

// Packages returns the npm packages that rewritten code now imports, in
// first-seen order.
func (c *Context) Packages() []string { return c.packages }

func (c *Context) require(pkgs ...string) {
	for _, p := range pkgs {
		if !slices.Contains(c.packages, p) {
			c.packages = append(c.packages, p)
		}
	}
}

func (c *Context) itemName() string {
	if c.Item == nil {
		return ""
	}
	return c.Item.Name
}

func (c *Context) warn(ctx context.Context, file, stage, format string, args ...any) {
	w := Warning{File: file, Stage: stage, Message: fmt.Sprintf(format, args...)}
	c.warnings = append(c.warnings, w)
	logging.FromContext(ctx).Warn(w.Message, "item", c.itemName(), "file", file, "stage", stage)
}
